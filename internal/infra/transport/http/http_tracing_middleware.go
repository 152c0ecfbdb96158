package http

import (
	"net/http"

	context_ "github.com/mkrupp/homecase-console/internal/infra/context"
	"github.com/mkrupp/homecase-console/internal/util/ident"
)

// TraceIDHeader carries the request id to the server.
const TraceIDHeader = "X-Request-ID"

// TracingRoundTripper sends X-Request-ID on every request. The id is taken from
// the context when present, otherwise a new one is generated and stored in the
// request context so later middleware logs it.
func TracingRoundTripper(next http.RoundTripper) http.RoundTripper {
	return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
		ctx := r.Context()

		traceID, ok := context_.TraceIDFromContext(ctx)
		if !ok {
			traceID = ident.NewTraceID()
			ctx = context_.WithTraceID(ctx, traceID)
		}

		r = r.Clone(ctx)

		if traceID != "" {
			r.Header.Set(TraceIDHeader, traceID)
		}

		return next.RoundTrip(r)
	})
}
