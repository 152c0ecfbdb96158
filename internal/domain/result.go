package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrTransportFailure classifies faults that never produced a tagged result:
	// network errors, timeouts, malformed or unexpected responses.
	ErrTransportFailure = errors.New("transport failure")
	// ErrUnexpectedTypename is returned when a union response names neither variant.
	ErrUnexpectedTypename = errors.New("unexpected __typename")
)

// ErrorDetail is the Failure variant returned by the API.
type ErrorDetail struct {
	StatusCode int             `json:"statusCode"`
	Cause      string          `json:"cause"`
	Message    string          `json:"message"`
	Context    json.RawMessage `json:"context,omitempty"`
}

// Error implements error so a Domain Failure can be carried as an error value.
func (d ErrorDetail) Error() string {
	if d.Cause == "" {
		return fmt.Sprintf("%d: %s", d.StatusCode, d.Message)
	}

	return fmt.Sprintf("%d %s: %s", d.StatusCode, d.Cause, d.Message)
}

// Result is the tagged outcome of a remote operation: exactly one of
// Success(T) or Failure(ErrorDetail).
type Result[T any] struct {
	value  T
	detail *ErrorDetail
}

// Success wraps a payload.
func Success[T any](value T) Result[T] {
	return Result[T]{value: value}
}

// Failure wraps an error detail.
func Failure[T any](detail ErrorDetail) Result[T] {
	return Result[T]{detail: &detail}
}

// IsSuccess reports whether the Success variant is populated.
func (r Result[T]) IsSuccess() bool {
	return r.detail == nil
}

// Value returns the payload and true for Success.
func (r Result[T]) Value() (T, bool) {
	if r.detail != nil {
		var zero T

		return zero, false
	}

	return r.value, true
}

// Detail returns the error detail and true for Failure.
func (r Result[T]) Detail() (ErrorDetail, bool) {
	if r.detail == nil {
		return ErrorDetail{}, false
	}

	return *r.detail, true
}

// Match calls exactly one of onSuccess or onFailure.
func (r Result[T]) Match(onSuccess func(T), onFailure func(ErrorDetail)) {
	if r.detail != nil {
		onFailure(*r.detail)

		return
	}

	onSuccess(r.value)
}
