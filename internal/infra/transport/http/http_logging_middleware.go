package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/mkrupp/homecase-console/internal/infra/logging"
)

// LoggingRoundTripper logs outgoing requests and their outcome at DEBUG.
// Failures are reported once, by whoever classifies them for the user.
func LoggingRoundTripper(next http.RoundTripper, log logging.Logger) http.RoundTripper {
	return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
		ctx := r.Context()
		start := time.Now()

		log.DebugContext(ctx, "request", slog.Group("http",
			"url", r.URL.Redacted(),
			"method", r.Method,
		))

		resp, err := next.RoundTrip(r)
		if err != nil {
			log.DebugContext(ctx, "request failed", slog.Group("http",
				"url", r.URL.Redacted(),
				"method", r.Method,
				"duration", time.Since(start),
			), "error", err)

			return nil, err
		}

		log.DebugContext(ctx, "response", slog.Group("http",
			"url", r.URL.Redacted(),
			"method", r.Method,
			"status", resp.StatusCode,
			"duration", time.Since(start),
		))

		return resp, nil
	})
}
