package consolesvc

import (
	"context"
	"errors"

	"github.com/mkrupp/homecase-console/internal/domain"
	"github.com/mkrupp/homecase-console/internal/infra/logging"
)

// Outcome classifies how a remote call ended for the view.
type Outcome int

const (
	// OutcomeSuccess means the Success variant was applied.
	OutcomeSuccess Outcome = iota + 1
	// OutcomeFailure means the server returned its Failure variant.
	OutcomeFailure
	// OutcomeTransportFailure means no tagged result was received.
	OutcomeTransportFailure
	// OutcomeDiscarded means the response arrived after its request was superseded.
	OutcomeDiscarded
	// OutcomeRejected means the action was refused locally and nothing was sent.
	OutcomeRejected
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeFailure:
		return "failure"
	case OutcomeTransportFailure:
		return "transport-failure"
	case OutcomeDiscarded:
		return "discarded"
	case OutcomeRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Handlers reflect one tagged result into view state.
type Handlers[T any] struct {
	OnSuccess func(T)
	OnError   func(domain.ErrorDetail)
	// OnTransportFailure is optional; Dispatch calls it when no tagged result arrived.
	OnTransportFailure func(error)
}

// Apply calls exactly one of h.OnSuccess or h.OnError, exactly once.
// It never touches session or routing state.
func Apply[T any](res domain.Result[T], h Handlers[T]) Outcome {
	outcome := OutcomeSuccess

	res.Match(
		func(v T) {
			if h.OnSuccess != nil {
				h.OnSuccess(v)
			}
		},
		func(d domain.ErrorDetail) {
			outcome = OutcomeFailure

			if h.OnError != nil {
				h.OnError(d)
			}
		},
	)

	return outcome
}

// Dispatch applies the pair returned by a catalog call. A non-nil err is a
// Transport Failure and never reaches OnSuccess or OnError. Failures are
// logged with their full detail; what the user sees is up to the handlers.
func Dispatch[T any](
	ctx context.Context,
	log logging.Logger,
	res domain.Result[T],
	err error,
	h Handlers[T],
) Outcome {
	if err != nil {
		if !errors.Is(err, domain.ErrTransportFailure) {
			err = errors.Join(domain.ErrTransportFailure, err)
		}

		log.ErrorContext(ctx, "transport failure", "error", err)

		if h.OnTransportFailure != nil {
			h.OnTransportFailure(err)
		}

		return OutcomeTransportFailure
	}

	onError := h.OnError
	h.OnError = func(d domain.ErrorDetail) {
		log.WarnContext(ctx, "operation failed",
			logging.Group("error",
				"statusCode", d.StatusCode,
				"cause", d.Cause,
				"message", d.Message,
				"context", string(d.Context),
			),
		)

		if onError != nil {
			onError(d)
		}
	}

	return Apply(res, h)
}
