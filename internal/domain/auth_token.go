package domain

import "errors"

var (
	// ErrNoAuthToken is returned when an authentication token is required but not provided.
	ErrNoAuthToken = errors.New("no auth token")
	// ErrInvalidAuthToken is returned when a token does not have the three-segment structure
	// or its payload cannot be decoded.
	ErrInvalidAuthToken = errors.New("invalid auth token")
	// ErrNoRoleClaim is returned when a token payload carries no recognised role claim.
	// Callers may treat it as a degraded but usable session.
	ErrNoRoleClaim = errors.New("no role claim")
	// ErrUnauthorized is returned when the current session lacks the role for an action.
	ErrUnauthorized = errors.New("unauthorized")
)

// AuthTokenResponse is the body returned by the login endpoint.
type AuthTokenResponse struct {
	AccessToken string `json:"accessToken"`
}
