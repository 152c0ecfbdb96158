package domain

// Fixed storage keys for the persisted session values.
const (
	SessionKeyToken = "token"
	SessionKeyRole  = "role"
)

// Session is the locally persisted authentication state.
// The zero value is the logged-out session.
type Session struct {
	token string
	role  Role
}

// NewSession creates a session. The role is dropped when the token is empty
// so that a role never exists without a token.
func NewSession(token string, role Role) Session {
	if token == "" {
		return Session{}
	}

	return Session{token: token, role: role}
}

// Token returns the bearer token and whether one is present.
func (s Session) Token() (string, bool) {
	return s.token, s.token != ""
}

// Role returns the decoded role and whether one is present.
func (s Session) Role() (Role, bool) {
	return s.role, s.role != RoleNone
}

// HasToken reports whether the session carries a token.
func (s Session) HasToken() bool {
	return s.token != ""
}

// HasRole reports whether the session carries a role.
func (s Session) HasRole() bool {
	return s.role != RoleNone
}

// IsAdmin reports whether the session role is ADMIN.
// Advisory only: the server authorizes every operation on its own.
func (s Session) IsAdmin() bool {
	return s.token != "" && s.role == RoleAdmin
}
