package authclient

import (
	"context"

	"github.com/mkrupp/homecase-console/internal/domain"
)

// LoginClient exchanges credentials for a bearer token.
type LoginClient interface {
	// RequestToken submits the credentials to the login endpoint.
	// Returns domain.ErrInvalidCredentials when the endpoint rejects them, and an
	// error wrapping domain.ErrTransportFailure for network or protocol faults.
	RequestToken(ctx context.Context, creds domain.Credentials) (string, error)
}
