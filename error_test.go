// Copyright 2026 The snag Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package snag

import (
	"context"
	"errors"
	"fmt"
	"syscall"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snaghttp/snag/request"
)

func TestErrorError(t *testing.T) {
	t.Run("default name", func(t *testing.T) {
		err := &Error{Code: CodeTransport, Message: "boom"}
		assert.Equal(t, "RequestError: boom", err.Error())
	})
	t.Run("custom name", func(t *testing.T) {
		err := &Error{Code: CodePolicy, Name: "HTTPError", Message: "404"}
		assert.Equal(t, "HTTPError: 404", err.Error())
	})
	t.Run("message from cause", func(t *testing.T) {
		err := newError(CodeTransport, errors.New("connection refused"))
		assert.Equal(t, "RequestError: connection refused", err.Error())
	})
	t.Run("message from code", func(t *testing.T) {
		err := &Error{Code: CodeCancelled}
		assert.Equal(t, "RequestError: ERR_CANCELLED", err.Error())
	})
}

func TestErrorIs(t *testing.T) {
	err := newError(CodePolicy, nil)
	assert.True(t, errors.Is(err, &Error{Code: CodePolicy}))
	assert.False(t, errors.Is(err, &Error{Code: CodeTransport}))
	assert.False(t, errors.Is(err, context.Canceled))

	wrapped := fmt.Errorf("outer: %w", err)
	assert.True(t, errors.Is(wrapped, &Error{Code: CodePolicy}))
}

func TestErrorUnwrap(t *testing.T) {
	cause := syscall.ECONNRESET
	err := newError(CodeTransport, cause)
	assert.True(t, errors.Is(err, syscall.ECONNRESET))
	assert.Same(t, err, newError(CodeTransport, err))

	exhausted := newError(CodeRetryExhausted, err)
	require.NotSame(t, err, exhausted)
	assert.True(t, errors.Is(exhausted, &Error{Code: CodeTransport}))
	assert.True(t, errors.Is(exhausted, syscall.ECONNRESET))
}

func TestErrorStatusCode(t *testing.T) {
	err := &Error{Code: CodePolicy}
	assert.Equal(t, 0, err.StatusCode())
	err.Response = &request.PlainResponse{StatusCode: 503}
	assert.Equal(t, 503, err.StatusCode())
}

func TestErrorTimeout(t *testing.T) {
	assert.False(t, newError(CodeTransport, errors.New("x")).Timeout())
	assert.True(t, newError(CodeTransport, timeoutCause{}).Timeout())
}

type timeoutCause struct{}

func (timeoutCause) Error() string { return "deadline exceeded" }
func (timeoutCause) Timeout() bool { return true }

func TestNormalizeError(t *testing.T) {
	e := request.NewExecution(request.Raw{request.OptURL: "http://test"})
	e.Attempt = 2
	e.Response = &request.Response{StatusCode: 500, Body: []byte("oops")}

	err := normalizeError(e, CodeTransport, errors.New("reset"))
	assert.Equal(t, CodeTransport, err.Code)
	assert.Equal(t, e.ID, err.ExecutionID)
	assert.Equal(t, 2, err.RetryCount)
	require.NotNil(t, err.Response)
	assert.Equal(t, 500, err.Response.StatusCode)
	assert.Equal(t, []byte("oops"), err.Response.Body)
}

func TestCancelError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	e := request.NewExecution(nil)

	err := cancelError(e, ctx)
	assert.Equal(t, CodeCancelled, err.Code)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, e.ID, err.ExecutionID)
}

func TestConfigErrorf(t *testing.T) {
	err := configErrorf("snag: bad %s", "thing")
	assert.Equal(t, CodeConfiguration, err.Code)
	assert.Equal(t, "RequestError: snag: bad thing", err.Error())
	assert.Equal(t, uuid.UUID{}, err.ExecutionID)
}

func TestHookFault(t *testing.T) {
	cause := errors.New("kaboom")
	err := hookFault(BeforeRequest, cause)
	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "beforeRequest hook failed")

	err = hookFault(Init, "string panic")
	assert.Contains(t, err.Error(), "init hook panicked: string panic")
}
