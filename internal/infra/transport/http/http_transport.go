package http

import (
	"net/http"
	"time"

	"github.com/mkrupp/homecase-console/internal/infra/logging"
)

// HTTPClientConfig contains configuration parameters for outgoing HTTP calls.
type HTTPClientConfig struct {
	// Timeout bounds every request including reading the response body
	Timeout time.Duration `env:"TIMEOUT" default:"15s"`
	// UserAgent is sent with every request
	UserAgent string `env:"USER_AGENT" default:"homecase-console"`
}

// RoundTripperFunc adapts a function to http.RoundTripper.
type RoundTripperFunc func(*http.Request) (*http.Response, error)

// RoundTrip implements http.RoundTripper.
func (f RoundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

// NewHTTPClient returns an *http.Client whose transport carries the standard
// client middleware: panic rescue, request tracing, logging and, when tokens
// is non-nil, bearer authorization.
// If base is nil, http.DefaultTransport is used.
func NewHTTPClient(cfg HTTPClientConfig, base http.RoundTripper, tokens TokenSource) *http.Client {
	log := logging.GetLogger("infra.transport.http")

	if base == nil {
		base = http.DefaultTransport
	}

	transport := base

	if cfg.UserAgent != "" {
		transport = UserAgentRoundTripper(transport, cfg.UserAgent)
	}

	if tokens != nil {
		transport = AuthorizingRoundTripper(transport, tokens, log)
	}

	transport = LoggingRoundTripper(transport, log)
	transport = TracingRoundTripper(transport)
	transport = RescueingRoundTripper(transport, log)

	//nolint:exhaustruct
	return &http.Client{
		Transport: transport,
		Timeout:   cfg.Timeout,
	}
}

// UserAgentRoundTripper sets the User-Agent header unless the request already has one.
func UserAgentRoundTripper(next http.RoundTripper, userAgent string) http.RoundTripper {
	return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
		if r.Header.Get("User-Agent") != "" {
			return next.RoundTrip(r)
		}

		r = r.Clone(r.Context())
		r.Header.Set("User-Agent", userAgent)

		return next.RoundTrip(r)
	})
}
