package authsvc

import (
	"context"
	"errors"
	"fmt"

	"github.com/mkrupp/homecase-console/internal/domain"
	"github.com/mkrupp/homecase-console/internal/infra/logging"
	transport "github.com/mkrupp/homecase-console/internal/infra/transport/http"
	"github.com/mkrupp/homecase-console/internal/svc/authsvc/authclient"
)

// AuthConfig contains configuration parameters for the authentication service.
type AuthConfig struct {
	// RequireRole aborts a login whose token carries no recognised role claim.
	// When false such a login succeeds with a role-less session, which the
	// access gate then refuses for every protected route.
	RequireRole bool `env:"REQUIRE_ROLE" default:"false"`
}

// AuthService owns the session lifecycle. It is the only writer of the
// session store: login sets it, logout and a server-side token rejection clear it.
type AuthService struct {
	Config   AuthConfig
	Client   authclient.LoginClient
	Sessions *SessionStore
	Log      logging.Logger
}

var (
	_ SessionReader         = (*AuthService)(nil)
	_ transport.TokenSource = (*AuthService)(nil)
)

// NewAuthService creates a new AuthService.
func NewAuthService(client authclient.LoginClient, sessions *SessionStore, cfg AuthConfig) *AuthService {
	return &AuthService{
		Config:   cfg,
		Client:   client,
		Sessions: sessions,
		Log:      logging.GetLogger("svc.authsvc.auth_service"),
	}
}

// Login exchanges credentials for a token, decodes its role and stores both.
// On any failure the previously stored session is left untouched.
func (s *AuthService) Login(ctx context.Context, creds domain.Credentials) (_ domain.Session, err error) {
	log := s.Log.With(logging.Group("user", "username", creds.Username))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "login failed", "error", err)
		} else {
			log.DebugContext(ctx, "login successful")
		}
	}()

	if err := creds.Validate(); err != nil {
		return domain.Session{}, err
	}

	token, err := s.Client.RequestToken(ctx, creds)
	if err != nil {
		return domain.Session{}, fmt.Errorf("request token: %w", err)
	}

	role, err := DecodeRole(token)

	switch {
	case err == nil:
	case errors.Is(err, domain.ErrNoRoleClaim) && !s.Config.RequireRole:
		log.WarnContext(ctx, "token carries no usable role; continuing without one", "error", err)
	default:
		return domain.Session{}, fmt.Errorf("decode role: %w", err)
	}

	if err := s.Sessions.Set(ctx, token, role); err != nil {
		return domain.Session{}, err
	}

	log = log.With("role", role.String())

	return domain.NewSession(token, role), nil
}

// Logout clears the stored session.
func (s *AuthService) Logout(ctx context.Context) (err error) {
	defer func() {
		if err != nil {
			s.Log.ErrorContext(ctx, "logout failed", "error", err)
		} else {
			s.Log.DebugContext(ctx, "logged out")
		}
	}()

	return s.Sessions.Clear(ctx)
}

// Session implements SessionReader.
func (s *AuthService) Session(ctx context.Context) (domain.Session, error) {
	return s.Sessions.Get(ctx)
}

// Token implements transport.TokenSource. A store read failure is logged and
// treated as no token.
func (s *AuthService) Token(ctx context.Context) (string, bool) {
	sess, err := s.Sessions.Get(ctx)
	if err != nil {
		s.Log.ErrorContext(ctx, "read session failed", "error", err)

		return "", false
	}

	return sess.Token()
}

// TokenRejected implements transport.TokenSource. The session is cleared if it
// still holds the rejected token, so the next navigation lands on the login route.
func (s *AuthService) TokenRejected(ctx context.Context, token string) {
	cleared, err := s.Sessions.clearIfToken(ctx, token)

	switch {
	case err != nil:
		s.Log.ErrorContext(ctx, "clear rejected session failed", "error", err)
	case cleared:
		s.Log.WarnContext(ctx, "session expired or revoked; logged out")
	}
}

// Close releases the session store.
func (s *AuthService) Close() error {
	return s.Sessions.Close()
}
