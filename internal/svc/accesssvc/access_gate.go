package accesssvc

import "github.com/mkrupp/homecase-console/internal/domain"

// Decision is the outcome of an access check.
type Decision int

const (
	// Allow lets the navigation proceed to the requested route.
	Allow Decision = iota + 1
	// RedirectToLogin sends the user to the login route instead.
	RedirectToLogin
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case RedirectToLogin:
		return "redirect-to-login"
	default:
		return "unknown"
	}
}

// Authorize decides whether session may reach a route restricted to allowed.
// A session without a token, without a role, or with a role outside allowed is
// redirected to login. The result depends only on the arguments.
func Authorize(session domain.Session, allowed domain.RoleSet) Decision {
	if !session.HasToken() {
		return RedirectToLogin
	}

	role, ok := session.Role()
	if !ok || !allowed.Contains(role) {
		return RedirectToLogin
	}

	return Allow
}
