package consolesvc

import (
	"errors"
	"sync"
)

// ErrSubmissionInFlight is returned when a mutation is submitted while another
// one from the same view has not completed.
var ErrSubmissionInFlight = errors.New("submission in flight")

// Status is the submission state of a view.
type Status int

const (
	StatusIdle Status = iota
	StatusSubmitting
)

func (s Status) String() string {
	if s == StatusSubmitting {
		return "submitting"
	}

	return "idle"
}

// Notice is the message/error pair a view shows after an action.
type Notice struct {
	Message string `json:"message,omitempty" yaml:"message,omitempty"`
	Error   string `json:"error,omitempty"   yaml:"error,omitempty"`
}

// Request slots. Each slot has its own generation counter; a new request
// in a slot supersedes the previous one.
const (
	slotList     = "list"
	slotSearch   = "search"
	slotMutation = "mutation"
)

type ticket struct {
	slot string
	gen  uint64
}

// viewState is the transient state every view shares: submission status,
// notice, and one generation counter per request slot.
type viewState struct {
	m      sync.Mutex
	status Status
	notice Notice
	gens   map[string]uint64
}

func newViewState() *viewState {
	return &viewState{gens: make(map[string]uint64)}
}

// startQuery opens a new generation in slot. Queries never block each other;
// a later one simply wins.
func (s *viewState) startQuery(slot string) ticket {
	s.m.Lock()
	defer s.m.Unlock()

	s.gens[slot]++

	return ticket{slot: slot, gen: s.gens[slot]}
}

// startMutation moves the view from Idle to Submitting.
func (s *viewState) startMutation() (ticket, error) {
	s.m.Lock()
	defer s.m.Unlock()

	if s.status == StatusSubmitting {
		return ticket{}, ErrSubmissionInFlight
	}

	s.status = StatusSubmitting
	s.gens[slotMutation]++

	return ticket{slot: slotMutation, gen: s.gens[slotMutation]}, nil
}

// finish runs apply if t is still the current generation of its slot and
// reports whether it did. A finished mutation returns the view to Idle.
func (s *viewState) finish(t ticket, apply func()) bool {
	s.m.Lock()
	defer s.m.Unlock()

	if s.gens[t.slot] != t.gen {
		return false
	}

	if t.slot == slotMutation {
		s.status = StatusIdle
	}

	apply()

	return true
}

// reset drops every pending request and clears the notice, as when the view
// is left.
func (s *viewState) reset() {
	s.m.Lock()
	defer s.m.Unlock()

	for slot := range s.gens {
		s.gens[slot]++
	}

	s.gens[slotMutation]++
	s.status = StatusIdle
	s.notice = Notice{}
}

// Caller must hold s.m.
func (s *viewState) succeed(msg string) {
	s.notice = Notice{Message: msg}
}

// Caller must hold s.m.
func (s *viewState) fail(msg string) {
	s.notice.Error = msg
}

// reject records a locally rejected action.
func (s *viewState) reject(msg string) {
	s.m.Lock()
	defer s.m.Unlock()

	s.notice = Notice{Error: msg}
}

func (s *viewState) snapshot() (Status, Notice) {
	s.m.Lock()
	defer s.m.Unlock()

	return s.status, s.notice
}
