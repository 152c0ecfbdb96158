package session

import (
	"context"
	"sync"

	"github.com/mkrupp/homecase-console/internal/domain"
)

// MemorySessionRepository keeps the session in process memory. It does not
// survive a restart and is meant for tests and one-shot scripting.
type MemorySessionRepository struct {
	m      sync.Mutex
	values map[string]string
}

var _ Repository = (*MemorySessionRepository)(nil)

// NewMemorySessionRepository creates an empty repository.
func NewMemorySessionRepository() *MemorySessionRepository {
	return &MemorySessionRepository{values: make(map[string]string)}
}

// Load implements Repository.Load.
func (r *MemorySessionRepository) Load(context.Context) (domain.Session, error) {
	r.m.Lock()
	defer r.m.Unlock()

	return sessionFromValues(r.values[domain.SessionKeyToken], r.values[domain.SessionKeyRole]), nil
}

// Save implements Repository.Save.
func (r *MemorySessionRepository) Save(_ context.Context, s domain.Session) error {
	r.m.Lock()
	defer r.m.Unlock()

	clear(r.values)

	if token, ok := s.Token(); ok {
		r.values[domain.SessionKeyToken] = token
	}

	if role, ok := s.Role(); ok {
		r.values[domain.SessionKeyRole] = role.String()
	}

	return nil
}

// Clear implements Repository.Clear.
func (r *MemorySessionRepository) Clear(context.Context) error {
	r.m.Lock()
	defer r.m.Unlock()

	clear(r.values)

	return nil
}

// Close implements Repository.Close.
func (r *MemorySessionRepository) Close() error {
	return nil
}
