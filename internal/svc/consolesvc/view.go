package consolesvc

import (
	"context"
	"fmt"

	"github.com/mkrupp/homecase-console/internal/domain"
	"github.com/mkrupp/homecase-console/internal/infra/logging"
	"github.com/mkrupp/homecase-console/internal/svc/authsvc"
)

// view carries what every entity view needs: session access for
// role-conditional actions, a logger and the transient state.
type view struct {
	sessions authsvc.SessionReader
	log      logging.Logger
	state    *viewState
}

func newView(sessions authsvc.SessionReader, name string) view {
	return view{
		sessions: sessions,
		log:      logging.GetLogger("svc.consolesvc." + name),
		state:    newViewState(),
	}
}

// Status returns the submission status.
func (v *view) Status() Status {
	status, _ := v.state.snapshot()

	return status
}

// Notice returns the current message/error pair.
func (v *view) Notice() Notice {
	_, notice := v.state.snapshot()

	return notice
}

// requireAdmin refuses the action locally unless the session role is ADMIN.
// The server still authorizes the operation itself.
func (v *view) requireAdmin(ctx context.Context) error {
	sess, err := v.sessions.Session(ctx)
	if err != nil {
		return fmt.Errorf("read session: %w", err)
	}

	if !sess.IsAdmin() {
		v.state.reject(MsgNotAllowed)

		return domain.ErrUnauthorized
	}

	return nil
}

// rejectInput records a local validation failure.
func (v *view) rejectInput(ctx context.Context, msg string, err error) (Outcome, error) {
	v.log.DebugContext(ctx, "input rejected", "error", err)
	v.state.reject(msg)

	return OutcomeRejected, err
}

// submit runs one mutation through Idle -> Submitting -> Idle and reflects
// its result into the notice.
func submit[T any](
	ctx context.Context,
	v *view,
	action Action,
	call func(context.Context) (domain.Result[T], error),
	onSuccess func(T),
) (Outcome, error) {
	t, err := v.state.startMutation()
	if err != nil {
		v.log.WarnContext(ctx, "submission rejected", "error", err)
		v.state.reject(MsgBusy)

		return OutcomeRejected, err
	}

	res, callErr := call(ctx)

	outcome := OutcomeDiscarded

	applied := v.state.finish(t, func() {
		outcome = Dispatch(ctx, v.log, res, callErr, Handlers[T]{
			OnSuccess: func(value T) {
				v.state.succeed(action.Success)

				if onSuccess != nil {
					onSuccess(value)
				}
			},
			OnError: func(d domain.ErrorDetail) {
				v.state.fail(action.FailureMessage(d))
			},
			OnTransportFailure: func(error) {
				v.state.fail(action.GenericMessage())
			},
		})
	})
	if !applied {
		v.log.DebugContext(ctx, "late response discarded")
	}

	return outcome, nil
}

// fetch runs one query in slot; a newer query in the same slot wins.
func fetch[T any](
	ctx context.Context,
	v *view,
	slot string,
	action Action,
	call func(context.Context) (domain.Result[T], error),
	onSuccess func(T),
	onFailure func(),
) Outcome {
	t := v.state.startQuery(slot)

	res, callErr := call(ctx)

	outcome := OutcomeDiscarded

	applied := v.state.finish(t, func() {
		outcome = Dispatch(ctx, v.log, res, callErr, Handlers[T]{
			OnSuccess: func(value T) {
				if action.Success != "" {
					v.state.succeed(action.Success)
				}

				onSuccess(value)
			},
			OnError: func(d domain.ErrorDetail) {
				v.state.fail(action.FailureMessage(d))

				if onFailure != nil {
					onFailure()
				}
			},
			OnTransportFailure: func(error) {
				v.state.fail(action.GenericMessage())

				if onFailure != nil {
					onFailure()
				}
			},
		})
	})
	if !applied {
		v.log.DebugContext(ctx, "late response discarded", "slot", slot)
	}

	return outcome
}
