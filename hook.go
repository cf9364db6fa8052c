// Copyright 2026 The snag Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package snag

import (
	"context"

	"github.com/snaghttp/snag/request"
)

// An InitHook runs once per configuration merge, against the raw
// option mapping, before normalization. It may mutate the mapping in
// place; a later hook observes mutations made by all earlier hooks.
type InitHook func(ctx context.Context, raw request.Raw) error

// A BeforeRequestHook runs against the normalized options before the
// transport call. Returning a non-nil response short-circuits the
// transport: the remaining beforeRequest hooks are skipped and the
// returned response proceeds through the pipeline as if received.
type BeforeRequestHook func(ctx context.Context, opts *request.Options) (*request.Response, error)

// A BeforeRedirectHook runs before a redirect is followed. It receives
// the options already updated for the new target, and a read-only
// snapshot of the redirecting response.
type BeforeRedirectHook func(ctx context.Context, opts *request.Options, resp *request.PlainResponse) error

// A BeforeRetryHook runs after a failed attempt for which a retry will
// be made, before the retry wait. It may mutate the options used for
// the next attempt.
type BeforeRetryHook func(ctx context.Context, opts *request.Options, err *Error) error

// An AfterResponseHook runs against a terminal (non-redirect)
// response. It returns a response, possibly the one it was given, or
// the sentinel produced by invoking retry, which diverts the pipeline
// into the retry path with the supplied options patch merged in.
type AfterResponseHook func(ctx context.Context, resp *request.Response, retry RetryTrigger) (*request.Response, error)

// A BeforeErrorHook runs against a terminal failure, exactly once per
// failure, before the error is surfaced. It receives and returns an
// *Error and may mutate or replace it.
type BeforeErrorHook func(ctx context.Context, err *Error) *Error

// A RetryTrigger is the one-shot callback offered to afterResponse
// hooks. Invoking it with an options patch arms a retry and returns a
// sentinel response which the hook must return; the pipeline then
// skips the remaining afterResponse hooks, re-merges the patch over
// the raw configuration, re-runs init, and retries. The trigger may be
// invoked at most once per afterResponse chain invocation; a second
// invocation panics.
//
// If the retry budget is already spent, the trigger arms nothing and
// the sentinel resolves to the current response.
type RetryTrigger func(patch request.Raw) *request.Response

// Hooks stores, per lifecycle phase, an ordered sequence of hooks. The
// zero value is an empty registry ready for use.
//
// Registration is not safe for concurrent use with execution; install
// hooks before sharing the registry between requests. A registry being
// executed concurrently is read-only and needs no locking.
type Hooks struct {
	init           []InitHook
	beforeRequest  []BeforeRequestHook
	beforeRedirect []BeforeRedirectHook
	beforeRetry    []BeforeRetryHook
	afterResponse  []AfterResponseHook
	beforeError    []BeforeErrorHook
}

// OnInit appends a hook to the init phase sequence.
func (h *Hooks) OnInit(f InitHook) {
	if f == nil {
		panic("snag: nil hook")
	}
	h.init = append(h.init, f)
}

// OnBeforeRequest appends a hook to the beforeRequest phase sequence.
func (h *Hooks) OnBeforeRequest(f BeforeRequestHook) {
	if f == nil {
		panic("snag: nil hook")
	}
	h.beforeRequest = append(h.beforeRequest, f)
}

// OnBeforeRedirect appends a hook to the beforeRedirect phase
// sequence.
func (h *Hooks) OnBeforeRedirect(f BeforeRedirectHook) {
	if f == nil {
		panic("snag: nil hook")
	}
	h.beforeRedirect = append(h.beforeRedirect, f)
}

// OnBeforeRetry appends a hook to the beforeRetry phase sequence.
func (h *Hooks) OnBeforeRetry(f BeforeRetryHook) {
	if f == nil {
		panic("snag: nil hook")
	}
	h.beforeRetry = append(h.beforeRetry, f)
}

// OnAfterResponse appends a hook to the afterResponse phase sequence.
func (h *Hooks) OnAfterResponse(f AfterResponseHook) {
	if f == nil {
		panic("snag: nil hook")
	}
	h.afterResponse = append(h.afterResponse, f)
}

// OnBeforeError appends a hook to the beforeError phase sequence.
func (h *Hooks) OnBeforeError(f BeforeErrorHook) {
	if f == nil {
		panic("snag: nil hook")
	}
	h.beforeError = append(h.beforeError, f)
}

// Add appends a hook to the phase named by name. It is the duck-typed
// counterpart of the OnX methods for callers that carry phase names as
// data. The error has code CodeConfiguration if name is not a
// recognized phase name or fn does not have the named phase's hook
// signature.
func (h *Hooks) Add(name string, fn interface{}) error {
	p, err := ParsePhase(name)
	if err != nil {
		return err
	}
	switch p {
	case Init:
		switch f := fn.(type) {
		case InitHook:
			h.OnInit(f)
		case func(context.Context, request.Raw) error:
			h.OnInit(f)
		default:
			return signatureError(p, fn)
		}
	case BeforeRequest:
		switch f := fn.(type) {
		case BeforeRequestHook:
			h.OnBeforeRequest(f)
		case func(context.Context, *request.Options) (*request.Response, error):
			h.OnBeforeRequest(f)
		default:
			return signatureError(p, fn)
		}
	case BeforeRedirect:
		switch f := fn.(type) {
		case BeforeRedirectHook:
			h.OnBeforeRedirect(f)
		case func(context.Context, *request.Options, *request.PlainResponse) error:
			h.OnBeforeRedirect(f)
		default:
			return signatureError(p, fn)
		}
	case BeforeRetry:
		switch f := fn.(type) {
		case BeforeRetryHook:
			h.OnBeforeRetry(f)
		case func(context.Context, *request.Options, *Error) error:
			h.OnBeforeRetry(f)
		default:
			return signatureError(p, fn)
		}
	case AfterResponse:
		switch f := fn.(type) {
		case AfterResponseHook:
			h.OnAfterResponse(f)
		case func(context.Context, *request.Response, RetryTrigger) (*request.Response, error):
			h.OnAfterResponse(f)
		default:
			return signatureError(p, fn)
		}
	case BeforeError:
		switch f := fn.(type) {
		case BeforeErrorHook:
			h.OnBeforeError(f)
		case func(context.Context, *Error) *Error:
			h.OnBeforeError(f)
		default:
			return signatureError(p, fn)
		}
	}
	return nil
}

func signatureError(p Phase, fn interface{}) error {
	return configErrorf("snag: %T is not a valid %s hook", fn, p)
}

// Len returns the number of hooks registered for the phase.
func (h *Hooks) Len(p Phase) int {
	switch p {
	case Init:
		return len(h.init)
	case BeforeRequest:
		return len(h.beforeRequest)
	case BeforeRedirect:
		return len(h.beforeRedirect)
	case BeforeRetry:
		return len(h.beforeRetry)
	case AfterResponse:
		return len(h.afterResponse)
	case BeforeError:
		return len(h.beforeError)
	default:
		return 0
	}
}

// Sequence returns a copy of the ordered hook sequence for the phase.
// Mutating the returned slice cannot corrupt the registry.
func (h *Hooks) Sequence(p Phase) []interface{} {
	out := make([]interface{}, 0, h.Len(p))
	switch p {
	case Init:
		for _, f := range h.init {
			out = append(out, f)
		}
	case BeforeRequest:
		for _, f := range h.beforeRequest {
			out = append(out, f)
		}
	case BeforeRedirect:
		for _, f := range h.beforeRedirect {
			out = append(out, f)
		}
	case BeforeRetry:
		for _, f := range h.beforeRetry {
			out = append(out, f)
		}
	case AfterResponse:
		for _, f := range h.afterResponse {
			out = append(out, f)
		}
	case BeforeError:
		for _, f := range h.beforeError {
			out = append(out, f)
		}
	}
	return out
}

// Extend returns a child registry seeded with copies of the parent's
// sequences. Hooks appended to the child are invisible to the parent,
// and vice versa.
func (h *Hooks) Extend() *Hooks {
	child := &Hooks{
		init:           make([]InitHook, len(h.init)),
		beforeRequest:  make([]BeforeRequestHook, len(h.beforeRequest)),
		beforeRedirect: make([]BeforeRedirectHook, len(h.beforeRedirect)),
		beforeRetry:    make([]BeforeRetryHook, len(h.beforeRetry)),
		afterResponse:  make([]AfterResponseHook, len(h.afterResponse)),
		beforeError:    make([]BeforeErrorHook, len(h.beforeError)),
	}
	copy(child.init, h.init)
	copy(child.beforeRequest, h.beforeRequest)
	copy(child.beforeRedirect, h.beforeRedirect)
	copy(child.beforeRetry, h.beforeRetry)
	copy(child.afterResponse, h.afterResponse)
	copy(child.beforeError, h.beforeError)
	return child
}

// Phase runners. Each runs its sequence in registration order, one
// hook at a time, stopping early on context cancellation, a hook
// error, or a phase-specific short-circuit. Panic recovery is the
// executor's job, not the runners'.

func (h *Hooks) runInit(ctx context.Context, raw request.Raw) error {
	for _, f := range h.init {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := f(ctx, raw); err != nil {
			return hookFault(Init, err)
		}
	}
	return nil
}

func (h *Hooks) runBeforeRequest(ctx context.Context, opts *request.Options) (*request.Response, error) {
	for _, f := range h.beforeRequest {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		resp, err := f(ctx, opts)
		if err != nil {
			return nil, hookFault(BeforeRequest, err)
		}
		if resp != nil {
			return resp, nil
		}
	}
	return nil, nil
}

func (h *Hooks) runBeforeRedirect(ctx context.Context, opts *request.Options, resp *request.PlainResponse) error {
	for _, f := range h.beforeRedirect {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := f(ctx, opts, resp); err != nil {
			return hookFault(BeforeRedirect, err)
		}
	}
	return nil
}

func (h *Hooks) runBeforeRetry(ctx context.Context, opts *request.Options, reqErr *Error) error {
	for _, f := range h.beforeRetry {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := f(ctx, opts, reqErr); err != nil {
			return hookFault(BeforeRetry, err)
		}
	}
	return nil
}

// runAfterResponse stops the chain as soon as the retry trigger has
// been armed, so no hook after the arming one runs. The armed flag is
// owned by the trigger closure the executor built.
func (h *Hooks) runAfterResponse(ctx context.Context, resp *request.Response, retry RetryTrigger, armed *bool) (*request.Response, error) {
	for _, f := range h.afterResponse {
		if err := ctx.Err(); err != nil {
			return resp, err
		}
		out, err := f(ctx, resp, retry)
		if err != nil {
			return resp, hookFault(AfterResponse, err)
		}
		if *armed {
			return resp, nil
		}
		if out != nil {
			resp = out
		}
	}
	return resp, nil
}

func (h *Hooks) runBeforeError(ctx context.Context, reqErr *Error) *Error {
	for _, f := range h.beforeError {
		if ctx.Err() != nil {
			return reqErr
		}
		if out := f(ctx, reqErr); out != nil {
			reqErr = out
		}
	}
	return reqErr
}
