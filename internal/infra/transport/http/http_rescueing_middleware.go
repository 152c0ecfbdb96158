package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/mkrupp/homecase-console/internal/infra/logging"
)

// ErrTransportPanic is returned when a round tripper further down the chain panicked.
var ErrTransportPanic = errors.New("transport panic")

// RescueingRoundTripper recovers from panics in the transport chain and turns
// them into an error, so a faulty transport surfaces as a failed request.
func RescueingRoundTripper(next http.RoundTripper, log logging.Logger) http.RoundTripper {
	return RoundTripperFunc(func(r *http.Request) (resp *http.Response, err error) {
		defer func() {
			if p := recover(); p != nil {
				log.ErrorContext(r.Context(), "request panic", slog.Group("http",
					"url", r.URL.Redacted(),
					"method", r.Method,
				), slog.Group("error",
					"panic", p,
					"stack", string(debug.Stack()),
				))

				resp = nil
				err = fmt.Errorf("%w: %v", ErrTransportPanic, p)
			}
		}()

		return next.RoundTrip(r)
	})
}
