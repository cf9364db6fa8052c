// Copyright 2026 The snag Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package snag

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/snaghttp/snag/request"
)

// A RetryNotice announces one stream-mode retry. Stream mode does not
// run beforeRetry or afterResponse hooks; retries are observable only
// through these notices.
type RetryNotice struct {
	// Attempt is the zero-based number of the attempt that failed.
	Attempt int

	// Err is the failure that caused the retry.
	Err *Error

	// Wait is the period slept before the retried attempt.
	Wait time.Duration
}

// A Stream is a live, unbuffered response body. It is returned by
// Client.Stream once a terminal response has been received; the body
// has not been read and is consumed through the Stream itself.
type Stream struct {
	response *request.PlainResponse
	body     io.ReadCloser
	retries  chan RetryNotice
}

// Response returns the response metadata: status code, headers, and
// final URL. The snapshot's Body field is nil; the body is read
// through the Stream.
func (s *Stream) Response() *request.PlainResponse {
	return s.response
}

// Retries returns the channel carrying one RetryNotice per retry made
// while establishing the stream. All retries happen before Stream is
// returned, so the channel is already closed and holds the complete
// history; ranging over it never blocks.
func (s *Stream) Retries() <-chan RetryNotice {
	return s.retries
}

// Read reads from the live response body.
func (s *Stream) Read(p []byte) (int, error) {
	return s.body.Read(p)
}

// Close closes the live response body. Closing without reading to the
// end may prevent connection reuse by the underlying transport.
func (s *Stream) Close() error {
	return s.body.Close()
}

// Stream executes a request like Do but hands the response body over
// unbuffered, as a Stream, instead of reading it into memory.
//
// Stream mode runs the init, beforeRequest, beforeRedirect, and
// beforeError phases exactly as Do does, but bypasses afterResponse
// and beforeRetry: retries are decided by the retry policy alone and
// announced as RetryNotice values available from Stream.Retries. The
// rerunInitOnRetry option chooses whether a stream retry re-merges the
// raw configuration and re-runs init hooks, or reuses the already
// normalized options.
//
// The per-attempt timeout policy is not consulted: the body's lifetime
// belongs to the caller, so the request is bounded only by ctx.
func (c *Client) Stream(ctx context.Context, raw request.Raw) (*Stream, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	hooks := c.hooks()
	e := request.NewExecution(request.Merge(c.Defaults, raw))
	e.Start = time.Now()
	if c.Metrics != nil {
		c.Metrics.startRequest()
	}
	s, err := c.streamPipeline(ctx, e, hooks)
	e.End = time.Now()
	if c.Metrics != nil {
		c.Metrics.endRequest(e, err)
	}
	if err != nil {
		c.logf("stream execution %s failed after %d attempt(s): %v", e.ID, e.Attempt+1, err)
		return nil, err
	}
	return s, nil
}

func (c *Client) streamPipeline(ctx context.Context, e *request.Execution, hooks *Hooks) (*Stream, error) {
	retryPolicy := c.retryPolicy()
	var notices []RetryNotice
	runInit := true

	for {
		if runInit {
			if err := c.phase(ctx, Init, func() error {
				return hooks.runInit(ctx, e.Raw)
			}); err != nil {
				return streamFail(c.finish(ctx, e, hooks, c.classify(ctx, e, err)))
			}
			opts, err := request.Normalize(e.Raw)
			if err != nil {
				return streamFail(c.finish(ctx, e, hooks, normalizeError(e, CodeConfiguration, err)))
			}
			e.Options = opts
			runInit = false
		}

		body, attemptErr := c.streamAttempt(ctx, e, hooks)
		if attemptErr == nil {
			retries := make(chan RetryNotice, len(notices))
			for _, n := range notices {
				retries <- n
			}
			close(retries)
			return &Stream{
				response: &request.PlainResponse{
					StatusCode: e.Response.StatusCode,
					Header:     e.Response.Header,
					URL:        e.Response.URL,
				},
				body:    body,
				retries: retries,
			}, nil
		}
		if attemptErr.Code == CodeCancelled {
			return streamFail(c.finish(ctx, e, hooks, attemptErr))
		}
		if e.Attempt < e.Options.RetryLimit && retryPolicy.Decide(e) {
			wait := retryPolicy.Wait(e)
			notices = append(notices, RetryNotice{Attempt: e.Attempt, Err: attemptErr, Wait: wait})
			c.logf("stream execution %s: retrying attempt %d in %v: %v", e.ID, e.Attempt+1, wait, attemptErr)
			if c.Metrics != nil {
				c.Metrics.incRetry(e.Options.Method)
			}
			timer := time.NewTimer(wait)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return streamFail(c.finish(ctx, e, hooks, cancelError(e, ctx)))
			}
			e.Attempt++
			e.Response = nil
			e.Err = nil
			if e.Options.RerunInitOnRetry {
				runInit = true
			}
			continue
		}
		if retryPolicy.Decide(e) {
			attemptErr = normalizeError(e, CodeRetryExhausted, attemptErr)
		}
		return streamFail(c.finish(ctx, e, hooks, attemptErr))
	}
}

// streamAttempt makes one stream-mode attempt. It parallels
// Client.attempt but leaves the terminal response body unread,
// returning it live. Redirect hop bodies are drained and closed before
// following.
func (c *Client) streamAttempt(ctx context.Context, e *request.Execution, hooks *Hooks) (io.ReadCloser, *Error) {
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

		if short != nil {
			short.RetryCount = e.Attempt
			if short.Request == nil {
				short.Request = opts
			}
			if short.URL == nil {
				short.URL = opts.URL
			}
			e.Response = short
			return readCloserOver(short.Body), nil
		}

		e.Request = opts.ToRequest(ctx)
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

		resp := &request.Response{
			StatusCode: httpResp.StatusCode,
			Header:     httpResp.Header,
			URL:        e.Request.URL,
			RetryCount: e.Attempt,
			Request:    opts,
		}
		e.Response = resp

		if loc, redirect := redirectTarget(opts, resp); redirect {
			_, _ = io.Copy(io.Discard, httpResp.Body)
			_ = httpResp.Body.Close()
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
			continue
		}

		if opts.ThrowHTTPErrors && !resp.OK() && !isRedirectStatus(resp.StatusCode) {
			_, _ = io.Copy(io.Discard, httpResp.Body)
			_ = httpResp.Body.Close()
			reqErr := normalizeError(e, CodePolicy, nil)
			reqErr.Message = "response code " + httpResp.Status + " was not expected"
			return nil, reqErr
		}
		return httpResp.Body, nil
	}
}

func streamFail(_ *request.Response, err error) (*Stream, error) {
	return nil, err
}

func readCloserOver(b []byte) io.ReadCloser {
	return io.NopCloser(bytes.NewReader(b))
}
