// Copyright 2026 The snag Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package snag

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snaghttp/snag/request"
)

func TestHooksOn(t *testing.T) {
	var h Hooks
	h.OnInit(func(context.Context, request.Raw) error { return nil })
	h.OnBeforeRequest(func(context.Context, *request.Options) (*request.Response, error) { return nil, nil })
	h.OnBeforeRedirect(func(context.Context, *request.Options, *request.PlainResponse) error { return nil })
	h.OnBeforeRetry(func(context.Context, *request.Options, *Error) error { return nil })
	h.OnAfterResponse(func(_ context.Context, r *request.Response, _ RetryTrigger) (*request.Response, error) { return r, nil })
	h.OnBeforeError(func(_ context.Context, e *Error) *Error { return e })
	for _, p := range Phases() {
		assert.Equal(t, 1, h.Len(p), p.Name())
	}
}

func TestHooksOnNilPanics(t *testing.T) {
	var h Hooks
	assert.PanicsWithValue(t, "snag: nil hook", func() { h.OnInit(nil) })
	assert.PanicsWithValue(t, "snag: nil hook", func() { h.OnBeforeRequest(nil) })
	assert.PanicsWithValue(t, "snag: nil hook", func() { h.OnBeforeRedirect(nil) })
	assert.PanicsWithValue(t, "snag: nil hook", func() { h.OnBeforeRetry(nil) })
	assert.PanicsWithValue(t, "snag: nil hook", func() { h.OnAfterResponse(nil) })
	assert.PanicsWithValue(t, "snag: nil hook", func() { h.OnBeforeError(nil) })
}

func TestHooksAdd(t *testing.T) {
	t.Run("unnamed types", func(t *testing.T) {
		var h Hooks
		require.NoError(t, h.Add("init", func(context.Context, request.Raw) error { return nil }))
		require.NoError(t, h.Add("beforeRequest", func(context.Context, *request.Options) (*request.Response, error) { return nil, nil }))
		require.NoError(t, h.Add("beforeRedirect", func(context.Context, *request.Options, *request.PlainResponse) error { return nil }))
		require.NoError(t, h.Add("beforeRetry", func(context.Context, *request.Options, *Error) error { return nil }))
		require.NoError(t, h.Add("afterResponse", func(_ context.Context, r *request.Response, _ RetryTrigger) (*request.Response, error) { return r, nil }))
		require.NoError(t, h.Add("beforeError", func(_ context.Context, e *Error) *Error { return e }))
		for _, p := range Phases() {
			assert.Equal(t, 1, h.Len(p), p.Name())
		}
	})
	t.Run("named types", func(t *testing.T) {
		var h Hooks
		require.NoError(t, h.Add("init", InitHook(func(context.Context, request.Raw) error { return nil })))
		require.NoError(t, h.Add("beforeError", BeforeErrorHook(func(_ context.Context, e *Error) *Error { return e })))
		assert.Equal(t, 1, h.Len(Init))
		assert.Equal(t, 1, h.Len(BeforeError))
	})
	t.Run("unknown phase", func(t *testing.T) {
		var h Hooks
		err := h.Add("afterRedirect", func(context.Context, request.Raw) error { return nil })
		require.Error(t, err)
		assert.True(t, errors.Is(err, &Error{Code: CodeConfiguration}))
	})
	t.Run("wrong signature", func(t *testing.T) {
		var h Hooks
		for _, p := range Phases() {
			err := h.Add(p.Name(), func() {})
			require.Error(t, err, p.Name())
			assert.True(t, errors.Is(err, &Error{Code: CodeConfiguration}), p.Name())
			assert.Contains(t, err.Error(), "is not a valid "+p.Name()+" hook")
			assert.Equal(t, 0, h.Len(p), p.Name())
		}
	})
}

func TestHooksSequence(t *testing.T) {
	var h Hooks
	h.OnInit(func(context.Context, request.Raw) error { return nil })
	h.OnInit(func(context.Context, request.Raw) error { return nil })

	seq := h.Sequence(Init)
	require.Len(t, seq, 2)
	seq[0] = nil

	again := h.Sequence(Init)
	require.Len(t, again, 2)
	assert.NotNil(t, again[0])
	assert.Empty(t, h.Sequence(BeforeError))
}

func TestHooksExtend(t *testing.T) {
	var parent Hooks
	parent.OnInit(func(context.Context, request.Raw) error { return nil })

	child := parent.Extend()
	child.OnInit(func(context.Context, request.Raw) error { return nil })
	child.OnBeforeError(func(_ context.Context, e *Error) *Error { return e })

	assert.Equal(t, 1, parent.Len(Init))
	assert.Equal(t, 0, parent.Len(BeforeError))
	assert.Equal(t, 2, child.Len(Init))
	assert.Equal(t, 1, child.Len(BeforeError))

	parent.OnBeforeRetry(func(context.Context, *request.Options, *Error) error { return nil })
	assert.Equal(t, 0, child.Len(BeforeRetry))
}

func TestRunInit(t *testing.T) {
	ctx := context.Background()
	t.Run("order and mutation", func(t *testing.T) {
		var h Hooks
		h.OnInit(func(_ context.Context, raw request.Raw) error {
			raw["a"] = 1
			return nil
		})
		h.OnInit(func(_ context.Context, raw request.Raw) error {
			assert.Equal(t, 1, raw["a"])
			raw["b"] = 2
			return nil
		})
		raw := request.Raw{}
		require.NoError(t, h.runInit(ctx, raw))
		assert.Equal(t, request.Raw{"a": 1, "b": 2}, raw)
	})
	t.Run("error stops chain", func(t *testing.T) {
		var h Hooks
		fault := errors.New("bad")
		var second bool
		h.OnInit(func(context.Context, request.Raw) error { return fault })
		h.OnInit(func(context.Context, request.Raw) error { second = true; return nil })
		err := h.runInit(ctx, request.Raw{})
		assert.True(t, errors.Is(err, fault))
		assert.False(t, second)
	})
	t.Run("cancelled context", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		var h Hooks
		var ran bool
		h.OnInit(func(context.Context, request.Raw) error { ran = true; return nil })
		err := h.runInit(cancelled, request.Raw{})
		assert.True(t, errors.Is(err, context.Canceled))
		assert.False(t, ran)
	})
	t.Run("empty", func(t *testing.T) {
		var h Hooks
		assert.NoError(t, h.runInit(ctx, nil))
	})
}

func TestRunBeforeRequest(t *testing.T) {
	ctx := context.Background()
	opts := &request.Options{}
	t.Run("short circuit skips remaining", func(t *testing.T) {
		var h Hooks
		canned := &request.Response{StatusCode: 204}
		var third bool
		h.OnBeforeRequest(func(context.Context, *request.Options) (*request.Response, error) { return nil, nil })
		h.OnBeforeRequest(func(context.Context, *request.Options) (*request.Response, error) { return canned, nil })
		h.OnBeforeRequest(func(context.Context, *request.Options) (*request.Response, error) { third = true; return nil, nil })
		resp, err := h.runBeforeRequest(ctx, opts)
		require.NoError(t, err)
		assert.Same(t, canned, resp)
		assert.False(t, third)
	})
	t.Run("no short circuit", func(t *testing.T) {
		var h Hooks
		h.OnBeforeRequest(func(context.Context, *request.Options) (*request.Response, error) { return nil, nil })
		resp, err := h.runBeforeRequest(ctx, opts)
		require.NoError(t, err)
		assert.Nil(t, resp)
	})
}

func TestRunAfterResponse(t *testing.T) {
	ctx := context.Background()
	t.Run("replacement visible downstream", func(t *testing.T) {
		var h Hooks
		first := &request.Response{StatusCode: 200}
		replaced := &request.Response{StatusCode: 201}
		h.OnAfterResponse(func(context.Context, *request.Response, RetryTrigger) (*request.Response, error) {
			return replaced, nil
		})
		h.OnAfterResponse(func(_ context.Context, r *request.Response, _ RetryTrigger) (*request.Response, error) {
			assert.Same(t, replaced, r)
			return r, nil
		})
		var armed bool
		out, err := h.runAfterResponse(ctx, first, nil, &armed)
		require.NoError(t, err)
		assert.Same(t, replaced, out)
	})
	t.Run("armed trigger stops chain", func(t *testing.T) {
		var h Hooks
		var second bool
		h.OnAfterResponse(func(_ context.Context, r *request.Response, retry RetryTrigger) (*request.Response, error) {
			return retry(nil), nil
		})
		h.OnAfterResponse(func(_ context.Context, r *request.Response, _ RetryTrigger) (*request.Response, error) {
			second = true
			return r, nil
		})
		var armed bool
		trigger := RetryTrigger(func(request.Raw) *request.Response {
			armed = true
			return &request.Response{}
		})
		resp := &request.Response{StatusCode: 200}
		out, err := h.runAfterResponse(ctx, resp, trigger, &armed)
		require.NoError(t, err)
		assert.Same(t, resp, out)
		assert.False(t, second)
	})
}

func TestRunBeforeError(t *testing.T) {
	ctx := context.Background()
	t.Run("mutation and replacement", func(t *testing.T) {
		var h Hooks
		h.OnBeforeError(func(_ context.Context, e *Error) *Error {
			e.Name = "HTTPError"
			return e
		})
		replacement := &Error{Code: CodePolicy, Name: "Replaced"}
		h.OnBeforeError(func(_ context.Context, e *Error) *Error {
			assert.Equal(t, "HTTPError", e.Name)
			return replacement
		})
		out := h.runBeforeError(ctx, &Error{Code: CodePolicy})
		assert.Same(t, replacement, out)
	})
	t.Run("nil return keeps current", func(t *testing.T) {
		var h Hooks
		h.OnBeforeError(func(context.Context, *Error) *Error { return nil })
		in := &Error{Code: CodeTransport}
		assert.Same(t, in, h.runBeforeError(ctx, in))
	})
}
