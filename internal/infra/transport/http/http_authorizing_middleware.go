package http

import (
	"context"
	"net/http"

	"github.com/mkrupp/homecase-console/internal/infra/logging"
)

// AuthorizationHeader carries the bearer token.
const AuthorizationHeader = "Authorization"

// TokenSource supplies the bearer token for outgoing calls and is told when
// the server rejects it.
type TokenSource interface {
	// Token returns the current token and whether one is available.
	Token(ctx context.Context) (string, bool)

	// TokenRejected is called when a request carrying token was answered
	// with 401 Unauthorized.
	TokenRejected(ctx context.Context, token string)
}

// AuthorizingRoundTripper attaches "Authorization: Bearer <token>" to every
// request while a token is available. Requests without a token are sent
// unauthenticated and left for the server to refuse.
// A 401 response is reported back to the TokenSource.
func AuthorizingRoundTripper(
	next http.RoundTripper,
	tokens TokenSource,
	log logging.Logger,
) http.RoundTripper {
	return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
		ctx := r.Context()

		token, ok := tokens.Token(ctx)
		if !ok {
			log.DebugContext(ctx, "no token available")

			return next.RoundTrip(r)
		}

		r = r.Clone(ctx)
		r.Header.Set(AuthorizationHeader, "Bearer "+token)

		resp, err := next.RoundTrip(r)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode == http.StatusUnauthorized {
			log.WarnContext(ctx, "token rejected by server")
			tokens.TokenRejected(ctx, token)
		}

		return resp, nil
	})
}
