package authsvc

import (
	"context"
	"fmt"
	"sync"

	"github.com/mkrupp/homecase-console/internal/domain"
	"github.com/mkrupp/homecase-console/internal/infra/logging"
	"github.com/mkrupp/homecase-console/internal/repo/session"
)

// SessionReader gives read access to the current session. Views and the
// access gate receive this interface; only AuthService writes.
type SessionReader interface {
	Session(ctx context.Context) (domain.Session, error)
}

// SessionStore is the durable token/role store. Every read goes to the
// repository, so a logout from another process is seen on the next read.
type SessionStore struct {
	repo session.Repository
	log  logging.Logger
	m    sync.Mutex
}

var _ SessionReader = (*SessionStore)(nil)

// NewSessionStore wraps a session repository.
func NewSessionStore(repo session.Repository) *SessionStore {
	return &SessionStore{
		repo: repo,
		log:  logging.GetLogger("svc.authsvc.session_store"),
	}
}

// Get returns the stored session; the zero session when logged out.
func (s *SessionStore) Get(ctx context.Context) (domain.Session, error) {
	sess, err := s.repo.Load(ctx)
	if err != nil {
		return domain.Session{}, fmt.Errorf("load session: %w", err)
	}

	return sess, nil
}

// Session implements SessionReader.
func (s *SessionStore) Session(ctx context.Context) (domain.Session, error) {
	return s.Get(ctx)
}

// Set stores token and role, replacing any previous session. An empty token
// clears the session.
func (s *SessionStore) Set(ctx context.Context, token string, role domain.Role) error {
	s.m.Lock()
	defer s.m.Unlock()

	if err := s.repo.Save(ctx, domain.NewSession(token, role)); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	s.log.DebugContext(ctx, "session stored", "role", role.String())

	return nil
}

// Clear removes the stored session.
func (s *SessionStore) Clear(ctx context.Context) error {
	s.m.Lock()
	defer s.m.Unlock()

	if err := s.repo.Clear(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}

	s.log.DebugContext(ctx, "session cleared")

	return nil
}

// clearIfToken removes the session only while it still holds token, so a
// late 401 for an old token cannot log out a newer login.
func (s *SessionStore) clearIfToken(ctx context.Context, token string) (bool, error) {
	s.m.Lock()
	defer s.m.Unlock()

	current, err := s.repo.Load(ctx)
	if err != nil {
		return false, fmt.Errorf("load session: %w", err)
	}

	if stored, ok := current.Token(); !ok || stored != token {
		return false, nil
	}

	if err := s.repo.Clear(ctx); err != nil {
		return false, fmt.Errorf("clear session: %w", err)
	}

	return true, nil
}

// Close releases the underlying repository.
func (s *SessionStore) Close() error {
	if err := s.repo.Close(); err != nil {
		return fmt.Errorf("close session repository: %w", err)
	}

	return nil
}
