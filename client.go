// Copyright 2026 The snag Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package snag

import (
	"context"
	"io"
	"net/http"
	urlpkg "net/url"
	"time"

	"github.com/snaghttp/snag/request"
	"github.com/snaghttp/snag/retry"
	"github.com/snaghttp/snag/timeout"
)

// An HTTPDoer implements a Do method in the same manner as the Go
// standard library http.Client from the net/http package.
//
// The HTTPDoer installed in a Client must not follow redirects itself:
// the Client follows redirects so it can run beforeRedirect hooks
// between hops. Set CheckRedirect to return http.ErrUseLastResponse on
// any http.Client used as an HTTPDoer. The doer the zero value Client
// falls back to is configured this way already.
type HTTPDoer interface {
	Do(r *http.Request) (*http.Response, error)
}

var emptyHooks = Hooks{}

// noRedirectClient is the fallback doer for the zero value Client.
var noRedirectClient = &http.Client{
	CheckRedirect: func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	},
}

// A Client is a hook-driven HTTP request client. Its zero value is a
// valid configuration.
//
// The zero value client uses a redirect-suppressed variant of
// http.DefaultClient as the HTTPDoer, timeout.DefaultPolicy as the
// timeout policy, retry.DefaultPolicy as the retry policy, no
// defaults, and an empty hook registry.
//
// A Client is safe for concurrent use by multiple goroutines once its
// configuration and hooks are in place: concurrent requests run as
// independent pipeline instances sharing only the read-only registry
// and defaults. Clients should be reused rather than created per
// request, since the underlying HTTPDoer typically caches TCP
// connections.
//
// On top of the transport features provided by the HTTPDoer, Client
// adds the hook pipeline (init, beforeRequest, beforeRedirect,
// beforeRetry, afterResponse, beforeError), redirect following with
// per-hop hooks, a retry loop driven by a pluggable retry policy,
// per-attempt timeouts driven by a pluggable timeout policy, and full
// response body buffering.
type Client struct {
	// HTTPDoer specifies the mechanics of sending HTTP requests and
	// receiving responses. If nil, a redirect-suppressed variant of
	// http.DefaultClient is used.
	HTTPDoer HTTPDoer

	// RetryPolicy decides when failed attempts are retried and how
	// long to wait before retrying. If nil, retry.DefaultPolicy is
	// used. The per-request retry option bounds retries regardless of
	// policy.
	RetryPolicy retry.Policy

	// TimeoutPolicy specifies how to set timeouts on individual
	// request attempts. If nil, timeout.DefaultPolicy is used. The
	// per-request timeout option overrides it.
	TimeoutPolicy timeout.Policy

	// Hooks is the hook registry consulted at each lifecycle phase.
	// If nil, no hooks run.
	Hooks *Hooks

	// Defaults is a raw configuration merged under the per-request
	// configuration before init hooks run.
	Defaults request.Raw

	// Logger receives debug output if non-nil.
	Logger Logger

	// Metrics receives lifecycle observations if non-nil.
	Metrics *MetricsCollector
}

// Extend derives a child client from c: policies and doer are shared,
// the hook registry is copied so registrations on the child never
// reach the parent, and defaults is merged over the parent's defaults.
func (c *Client) Extend(defaults request.Raw) *Client {
	return &Client{
		HTTPDoer:      c.HTTPDoer,
		RetryPolicy:   c.RetryPolicy,
		TimeoutPolicy: c.TimeoutPolicy,
		Hooks:         c.hooks().Extend(),
		Defaults:      request.Merge(c.Defaults, defaults),
		Logger:        c.Logger,
		Metrics:       c.Metrics,
	}
}

// Do executes a request described by the raw configuration, running
// the full hook pipeline around it.
//
// The configuration passed in is merged over the client's Defaults;
// the merged mapping is what init hooks receive and mutate, after
// which it is normalized into typed options. The url option is
// required. Do never mutates raw itself.
//
// An error is returned if, after any retries permitted by the retry
// policy and the request's retry budget, the final attempt ended in
// failure. The error is always an *Error carrying a code from the
// taxonomy in this package, and it has passed through the beforeError
// hooks exactly once, except for cancellation, which surfaces without
// running beforeError. A non-2xx status code is not a failure unless
// the throwHttpErrors option is set.
//
// If the returned error is nil, the returned response is non-nil with
// a fully buffered body.
func (c *Client) Do(ctx context.Context, raw request.Raw) (*request.Response, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	hooks := c.hooks()
	e := request.NewExecution(request.Merge(c.Defaults, raw))
	e.Start = time.Now()
	if c.Metrics != nil {
		c.Metrics.startRequest()
	}
	resp, err := c.pipeline(ctx, e, hooks)
	e.End = time.Now()
	if c.Metrics != nil {
		c.Metrics.endRequest(e, err)
	}
	if err != nil {
		c.logf("execution %s failed after %d attempt(s): %v", e.ID, e.Attempt+1, err)
		return nil, err
	}
	return resp, nil
}

// pipeline drives one execution through the phase state machine.
func (c *Client) pipeline(ctx context.Context, e *request.Execution, hooks *Hooks) (*request.Response, error) {
	retryPolicy := c.retryPolicy()
	runInit := true

	for {
		if runInit {
			if err := c.phase(ctx, Init, func() error {
				return hooks.runInit(ctx, e.Raw)
			}); err != nil {
				return c.finish(ctx, e, hooks, c.classify(ctx, e, err))
			}
			opts, err := request.Normalize(e.Raw)
			if err != nil {
				return c.finish(ctx, e, hooks, normalizeError(e, CodeConfiguration, err))
			}
			e.Options = opts
			runInit = false
		}

		resp, attemptErr := c.attempt(ctx, e, hooks)
		if attemptErr == nil {
			final, patch, armed, hookErr := c.afterResponse(ctx, e, hooks, resp)
			if hookErr != nil {
				return c.finish(ctx, e, hooks, c.classify(ctx, e, hookErr))
			}
			if !armed {
				return final, nil
			}
			if e.Attempt >= e.Options.RetryLimit {
				// Budget spent: the trigger resolves to the current
				// response and no retry happens.
				return final, nil
			}
			retryErr := normalizeError(e, CodePolicy, nil)
			retryErr.Message = "retry requested by afterResponse hook"
			if err := c.rest(ctx, e, hooks, retryPolicy, retryErr); err != nil {
				return c.finish(ctx, e, hooks, c.classify(ctx, e, err))
			}
			e.Raw = request.Merge(e.Raw, patch)
			runInit = true
			continue
		}
		if attemptErr.Code == CodeCancelled {
			return c.finish(ctx, e, hooks, attemptErr)
		}
		if e.Attempt < e.Options.RetryLimit && retryPolicy.Decide(e) {
			if err := c.rest(ctx, e, hooks, retryPolicy, attemptErr); err != nil {
				return c.finish(ctx, e, hooks, c.classify(ctx, e, err))
			}
			continue
		}
		if retryPolicy.Decide(e) {
			// The failure was retriable but the budget is spent.
			attemptErr = normalizeError(e, CodeRetryExhausted, attemptErr)
		}
		return c.finish(ctx, e, hooks, attemptErr)
	}
}

// rest runs the beforeRetry phase and sleeps out the retry wait, then
// advances the execution to its next attempt. Exactly one of
// beforeRetry and beforeError runs per failure, so a fault inside a
// beforeRetry hook aborts the retry and is reported by the caller
// through beforeError.
func (c *Client) rest(ctx context.Context, e *request.Execution, hooks *Hooks, policy retry.Policy, reqErr *Error) error {
	if err := c.phase(ctx, BeforeRetry, func() error {
		return hooks.runBeforeRetry(ctx, e.Options, reqErr)
	}); err != nil {
		return err
	}
	wait := policy.Wait(e)
	c.logf("execution %s: retrying attempt %d in %v: %v", e.ID, e.Attempt+1, wait, reqErr)
	if c.Metrics != nil {
		c.Metrics.incRetry(e.Options.Method)
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
		return ctx.Err()
	}
	e.Attempt++
	e.Response = nil
	e.Err = nil
	return nil
}

// attempt makes one request attempt: the beforeRequest phase, the
// transport call (unless short-circuited), body buffering, and the
// redirect chain with its beforeRedirect hooks. On success it returns
// the terminal response for the attempt; on failure it returns a
// normalized *Error and leaves e.Response set if a response was
// received.
func (c *Client) attempt(ctx context.Context, e *request.Execution, hooks *Hooks) (*request.Response, *Error) {
	opts := e.Options
	e.Redirects = 0

	for {
		var short *request.Response
		if err := c.phase(ctx, BeforeRequest, func() error {
			var err error
			short, err = hooks.runBeforeRequest(ctx, opts)
			return err
		}); err != nil {
			return nil, c.classify(ctx, e, err)
		}

		var resp *request.Response
		if short != nil {
			resp = short
			resp.RetryCount = e.Attempt
			if resp.Request == nil {
				resp.Request = opts
			}
			if resp.URL == nil {
				resp.URL = opts.URL
			}
			c.logf("execution %s: beforeRequest hook short-circuited transport", e.ID)
		} else {
			var err *Error
			resp, err = c.sendAndReceive(ctx, e)
			if err != nil {
				return nil, err
			}
		}
		e.Response = resp

		if loc, redirect := redirectTarget(opts, resp); redirect {
			if e.Redirects >= opts.MaxRedirects {
				reqErr := normalizeError(e, CodePolicy, nil)
				reqErr.Message = "maximum redirects exceeded"
				return nil, reqErr
			}
			redirectOptions(opts, resp.StatusCode, loc)
			if err := c.phase(ctx, BeforeRedirect, func() error {
				return hooks.runBeforeRedirect(ctx, opts, resp.Plain())
			}); err != nil {
				return nil, c.classify(ctx, e, err)
			}
			e.Redirects++
			c.logf("execution %s: following redirect %d to %s", e.ID, e.Redirects, opts.URL)
			continue
		}

		if opts.ThrowHTTPErrors && !resp.OK() && !isRedirectStatus(resp.StatusCode) {
			reqErr := normalizeError(e, CodePolicy, nil)
			reqErr.Message = "response code " + http.StatusText(resp.StatusCode) + " was not expected"
			return nil, reqErr
		}
		return resp, nil
	}
}

// sendAndReceive performs the transport call for the current attempt
// under the attempt timeout, and buffers the response body before the
// timeout context is released.
func (c *Client) sendAndReceive(ctx context.Context, e *request.Execution) (*request.Response, *Error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.attemptTimeout(e))
	defer cancel()
	e.Request = e.Options.ToRequest(attemptCtx)

	httpResp, err := c.doer().Do(e.Request)
	if err != nil {
		if ctx.Err() != nil {
			return nil, cancelError(e, ctx)
		}
		e.Err = err
		if e.Timeout() {
			e.AttemptTimeouts++
		}
		return nil, normalizeError(e, CodeTransport, err)
	}

	body, err := readBody(httpResp)
	if err != nil {
		if ctx.Err() != nil {
			return nil, cancelError(e, ctx)
		}
		e.Err = err
		if e.Timeout() {
			e.AttemptTimeouts++
		}
		return nil, normalizeError(e, CodeTransport, err)
	}

	return &request.Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       body,
		URL:        e.Request.URL,
		RetryCount: e.Attempt,
		Request:    e.Options,
	}, nil
}

func readBody(resp *http.Response) ([]byte, error) {
	defer func() {
		_ = resp.Body.Close()
	}()
	return io.ReadAll(resp.Body)
}

// afterResponse runs the afterResponse phase with a fresh one-shot
// retry trigger. It returns the final response (current response if
// the trigger fired), the trigger's options patch, and whether the
// trigger fired.
func (c *Client) afterResponse(ctx context.Context, e *request.Execution, hooks *Hooks, resp *request.Response) (*request.Response, request.Raw, bool, error) {
	sentinel := new(request.Response)
	var armed bool
	var patch request.Raw
	trigger := RetryTrigger(func(p request.Raw) *request.Response {
		if armed {
			panic("snag: retry trigger invoked twice in one afterResponse invocation")
		}
		armed = true
		patch = p
		return sentinel
	})

	var final *request.Response
	err := c.phase(ctx, AfterResponse, func() error {
		var runErr error
		final, runErr = hooks.runAfterResponse(ctx, resp, trigger, &armed)
		return runErr
	})
	if err != nil {
		return nil, nil, false, err
	}
	return final, patch, armed, nil
}

// finish routes a terminal failure through the beforeError phase
// exactly once and surfaces whatever the last hook returned.
// Cancellation bypasses beforeError.
func (c *Client) finish(ctx context.Context, e *request.Execution, hooks *Hooks, reqErr *Error) (*request.Response, error) {
	if ctx.Err() != nil && reqErr.Code != CodeCancelled {
		reqErr = cancelError(e, ctx)
	}
	if reqErr.Code != CodeCancelled {
		out := reqErr
		err := c.phase(ctx, BeforeError, func() error {
			out = hooks.runBeforeError(ctx, reqErr)
			return nil
		})
		if err != nil {
			// A faulting beforeError hook cannot re-enter the phase;
			// the fault replaces the error being reported.
			reqErr = normalizeError(e, CodeHook, err)
		} else if out != nil {
			reqErr = out
		}
	}
	e.Err = reqErr
	return nil, reqErr
}

// classify folds a phase runner error into the *Error taxonomy:
// context errors become CodeCancelled, anything else is a hook fault.
func (c *Client) classify(ctx context.Context, e *request.Execution, err error) *Error {
	if ctx.Err() != nil {
		return cancelError(e, ctx)
	}
	return normalizeError(e, CodeHook, err)
}

// phase runs fn with panic recovery and, when a metrics collector is
// installed, times the phase. Recovered panics surface as hook faults.
func (c *Client) phase(ctx context.Context, p Phase, fn func() error) (err error) {
	start := time.Now()
	defer func() {
		if c.Metrics != nil {
			c.Metrics.observePhase(p, time.Since(start))
		}
		if r := recover(); r != nil {
			err = hookFault(p, r)
		}
	}()
	return fn()
}

func (c *Client) attemptTimeout(e *request.Execution) time.Duration {
	if e.Options.Timeout > 0 {
		return e.Options.Timeout
	}
	return c.timeoutPolicy().Timeout(e)
}

func (c *Client) doer() HTTPDoer {
	if c.HTTPDoer == nil {
		return noRedirectClient
	}
	return c.HTTPDoer
}

func (c *Client) retryPolicy() retry.Policy {
	if c.RetryPolicy == nil {
		return retry.DefaultPolicy
	}
	return c.RetryPolicy
}

func (c *Client) timeoutPolicy() timeout.Policy {
	if c.TimeoutPolicy == nil {
		return timeout.DefaultPolicy
	}
	return c.TimeoutPolicy
}

func (c *Client) hooks() *Hooks {
	if c.Hooks == nil {
		return &emptyHooks
	}
	return c.Hooks
}

func (c *Client) logf(format string, args ...interface{}) {
	if c.Logger != nil {
		c.Logger.Debugf(format, args...)
	}
}

// isRedirectStatus reports whether code is a redirect status the
// client knows how to follow.
func isRedirectStatus(code int) bool {
	switch code {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		return true
	}
	return false
}

// redirectTarget resolves the Location header of a redirect response
// against the current URL. The second return value is false when the
// response is not a followable redirect.
func redirectTarget(opts *request.Options, resp *request.Response) (*urlpkg.URL, bool) {
	if !opts.FollowRedirect || !isRedirectStatus(resp.StatusCode) {
		return nil, false
	}
	loc := resp.Header.Get("Location")
	if loc == "" {
		return nil, false
	}
	u, err := opts.URL.Parse(loc)
	if err != nil {
		return nil, false
	}
	return u, true
}

// redirectOptions updates the options in place for the redirect
// target. A 303, and a 301 or 302 answering a non-GET/HEAD request,
// switch the method to GET and drop the body, matching net/http
// redirect semantics.
func redirectOptions(opts *request.Options, status int, target *urlpkg.URL) {
	if status == http.StatusSeeOther ||
		((status == http.StatusMovedPermanently || status == http.StatusFound) &&
			opts.Method != "GET" && opts.Method != "HEAD") {
		opts.Method = "GET"
		opts.Body = nil
		opts.Header.Del("Content-Type")
		opts.Header.Del("Content-Length")
	}
	if target.Host != opts.URL.Host {
		// Sensitive headers do not cross hosts.
		opts.Header.Del("Authorization")
		opts.Header.Del("Cookie")
		opts.Host = target.Host
	}
	opts.URL = target
}
