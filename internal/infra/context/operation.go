package context

import (
	"context"
)

const contextKeyOperation = contextKey("operation")

// OperationFromContext extracts the remote operation name (e.g. "createProduct").
func OperationFromContext(ctx context.Context) (string, bool) {
	op, ok := ctx.Value(contextKeyOperation).(string)

	return op, ok && op != ""
}

// WithOperation tags the context with the remote operation being executed.
func WithOperation(ctx context.Context, op string) context.Context {
	return context.WithValue(ctx, contextKeyOperation, op)
}
