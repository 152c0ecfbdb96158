package domain

import "errors"

var (
	// ErrInvalidCredentials is returned when the login endpoint rejects the username/password combination.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrNoUsername is returned when a login is attempted without a username.
	ErrNoUsername = errors.New("no username")
	// ErrNoPassword is returned when a login is attempted without a password.
	ErrNoPassword = errors.New("no password")
)

// Credentials is the username/password pair submitted to the login endpoint.
type Credentials struct {
	Username string
	Password string
}

// Validate reports missing fields.
func (c Credentials) Validate() error {
	if c.Username == "" {
		return ErrNoUsername
	}

	if c.Password == "" {
		return ErrNoPassword
	}

	return nil
}
