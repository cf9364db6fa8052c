// Copyright 2026 The snag Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package snag

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/snaghttp/snag/request"
	"github.com/snaghttp/snag/transient"
)

// A Code classifies an Error.
type Code string

const (
	// CodeConfiguration marks an invalid option or an unknown hook
	// phase, detected before any transport work is done.
	CodeConfiguration Code = "ERR_CONFIGURATION"
	// CodeTransport marks a connection-level failure while making a
	// request attempt.
	CodeTransport Code = "ERR_TRANSPORT"
	// CodePolicy marks a response rejected by policy: a terminal
	// non-2xx/3xx status under throwHttpErrors, or a redirect chain
	// exceeding maxRedirects.
	CodePolicy Code = "ERR_POLICY"
	// CodeRetryExhausted marks a retriable failure for which the
	// retry budget was already spent. The underlying failure remains
	// available via Unwrap.
	CodeRetryExhausted Code = "ERR_RETRY_EXHAUSTED"
	// CodeCancelled marks cancellation of the request context. Errors
	// with this code never pass through beforeError hooks.
	CodeCancelled Code = "ERR_CANCELLED"
	// CodeHook marks an error returned, or a panic raised, by a hook.
	CodeHook Code = "ERR_HOOK"
)

// An Error is the unified error shape a failed request surfaces, and
// the value passed through the beforeRetry and beforeError phases.
//
// beforeError hooks receive and return an *Error and may mutate or
// replace it; whatever the last hook returns is what the caller sees.
type Error struct {
	// Code classifies the failure.
	Code Code

	// Name is the display name used by Error(). It defaults to
	// "RequestError"; beforeError hooks may rename it.
	Name string

	// Message is the display message used by Error(). If empty, the
	// message of the wrapped cause is used.
	Message string

	// Response is a snapshot of the response associated with the
	// failure, if there was one.
	Response *request.PlainResponse

	// RetryCount is the number of retries made before the failure
	// became terminal, or the retry count at the time a beforeRetry
	// hook observes the error.
	RetryCount int

	// ExecutionID identifies the execution the error arose in. It is
	// the zero UUID for configuration errors raised outside any
	// execution.
	ExecutionID uuid.UUID

	cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	name := e.Name
	if name == "" {
		name = "RequestError"
	}
	msg := e.Message
	if msg == "" && e.cause != nil {
		msg = e.cause.Error()
	}
	if msg == "" {
		msg = string(e.Code)
	}
	return name + ": " + msg
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports a match against another *Error with the same code, so
// errors.Is(err, &Error{Code: CodePolicy}) tests the classification
// without regard to the remaining fields.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// Timeout reports whether the underlying cause was a timeout.
func (e *Error) Timeout() bool {
	return transient.Categorize(e.cause) == transient.Timeout
}

// StatusCode returns the status code of the attached response
// snapshot, or zero if the error carries no response.
func (e *Error) StatusCode() int {
	if e.Response == nil {
		return 0
	}
	return e.Response.StatusCode
}

func newError(code Code, cause error) *Error {
	var e *Error
	if errors.As(cause, &e) && e.Code == code {
		return e
	}
	return &Error{Code: code, cause: cause}
}

func configErrorf(format string, args ...interface{}) *Error {
	return &Error{Code: CodeConfiguration, Message: fmt.Sprintf(format, args...)}
}

// normalizeError folds any request-time failure into the unified
// *Error shape, attaching the execution's ID, retry count, and
// response snapshot.
func normalizeError(e *request.Execution, code Code, cause error) *Error {
	err := newError(code, cause)
	err.ExecutionID = e.ID
	err.RetryCount = e.Attempt
	if err.Response == nil && e.Response != nil {
		err.Response = e.Response.Plain()
	}
	return err
}

// cancelError builds the terminal error for a cancelled or deadlined
// context. It keeps the context error reachable via Unwrap so callers
// can test errors.Is(err, context.Canceled).
func cancelError(e *request.Execution, ctx context.Context) *Error {
	return normalizeError(e, CodeCancelled, ctx.Err())
}

// hookFault wraps an error returned by, or a panic recovered from, a
// hook.
func hookFault(phase Phase, v interface{}) error {
	if err, ok := v.(error); ok {
		return fmt.Errorf("snag: %s hook failed: %w", phase, err)
	}
	return fmt.Errorf("snag: %s hook panicked: %v", phase, v)
}
