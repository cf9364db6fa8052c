// Copyright 2026 The snag Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"context"
	"net/http"
	urlpkg "net/url"
	"time"

	"github.com/google/uuid"

	"github.com/snaghttp/snag/transient"
)

// A PlainResponse is a read-only snapshot of a received response. It is
// the value handed to beforeRedirect hooks, and the value attached to
// errors that carry a response.
type PlainResponse struct {
	// StatusCode is the HTTP status code of the response.
	StatusCode int

	// Header contains the response header fields.
	Header http.Header

	// Body is the fully buffered response body.
	Body []byte

	// URL is the URL the response was received from.
	URL *urlpkg.URL
}

// A Response is the rich response value passed through the
// afterResponse phase and ultimately returned to the caller. Later
// hooks in a phase observe mutations made by earlier hooks in the same
// phase.
type Response struct {
	// StatusCode is the HTTP status code of the response.
	StatusCode int

	// Header contains the response header fields.
	Header http.Header

	// Body is the fully buffered response body.
	Body []byte

	// URL is the URL the response was received from, after any
	// redirects.
	URL *urlpkg.URL

	// RetryCount is the number of retries that preceded this
	// response. Zero means the response came from the initial attempt.
	RetryCount int

	// Request references the normalized options that produced this
	// response.
	Request *Options
}

// OK reports whether the response status code is in the 2xx range.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Plain returns a read-only snapshot of the response.
func (r *Response) Plain() *PlainResponse {
	return &PlainResponse{
		StatusCode: r.StatusCode,
		Header:     r.Header,
		Body:       r.Body,
		URL:        r.URL,
	}
}

// An Execution represents the state of a single logical request as it
// moves through the hook pipeline, the transport, and the retry loop.
//
// Hooks and policies may attach arbitrary data to an Execution using
// SetValue and read it back with Value. They should treat the exported
// fields as owned by the pipeline: the pipeline updates them as the
// execution progresses, and policies read them to make retry and
// timeout decisions.
type Execution struct {
	// ID uniquely identifies this execution. It is assigned when the
	// execution is created and never changes, so hooks can correlate
	// log lines and metrics across attempts.
	ID uuid.UUID

	// Raw is the merged raw configuration the execution started from.
	// It is re-merged when an afterResponse retry trigger supplies a
	// patch.
	Raw Raw

	// Options is the normalized configuration for the current attempt
	// chain. It is re-derived from Raw whenever Raw is re-merged.
	Options *Options

	// Attempt is the zero-based number of the current attempt. It is
	// zero on the initial attempt, one on the first retry, and so on.
	Attempt int

	// Redirects counts the redirect hops followed in the current
	// attempt.
	Redirects int

	// AttemptTimeouts counts the attempts that ended in a timeout.
	AttemptTimeouts int

	// Start is the time the execution started.
	Start time.Time

	// End is the time the execution ended. It is the zero time while
	// the execution is in flight.
	End time.Time

	// Request is the HTTP request made in the current or most recent
	// attempt.
	Request *http.Request

	// Response is the response received in the most recent attempt,
	// or nil if the attempt ended in an error or is still underway.
	Response *Response

	// Err is the error from the most recent attempt, or nil. While
	// the execution is in flight it may fluctuate between nil and
	// non-nil values as attempts fail and are retried.
	Err error

	data context.Context
}

// NewExecution creates an execution for the given merged raw
// configuration, assigning it a fresh ID.
func NewExecution(raw Raw) *Execution {
	return &Execution{
		ID:  uuid.New(),
		Raw: raw,
	}
}

// StatusCode returns the status code of the most recent response, or
// zero if there is none.
func (e *Execution) StatusCode() int {
	if e.Response == nil {
		return 0
	}
	return e.Response.StatusCode
}

// Header returns the headers of the most recent response, or a nil
// header if there is none. A nil header is safe for reads.
func (e *Execution) Header() http.Header {
	if e.Response == nil {
		var nilHeader http.Header
		return nilHeader
	}
	return e.Response.Header
}

// Duration returns the duration of the execution: zero before it
// starts, time since Start while in flight, and End minus Start once
// ended.
func (e *Execution) Duration() time.Duration {
	if !e.Started() {
		return 0
	} else if !e.Ended() {
		return time.Since(e.Start)
	}
	return e.End.Sub(e.Start)
}

// Started indicates whether the execution has started.
func (e *Execution) Started() bool {
	return e.Start != (time.Time{})
}

// Ended indicates whether the execution has ended.
func (e *Execution) Ended() bool {
	return e.End != (time.Time{})
}

// Timeout indicates whether Err currently contains a non-nil value
// which indicates a timeout. Timeout may return false even when
// AttemptTimeouts is positive, if the most recent attempt did not time
// out.
func (e *Execution) Timeout() bool {
	return transient.Categorize(e.Err) == transient.Timeout
}

// SetValue attaches arbitrary data to the execution.
//
// The key must follow the same rules as the key parameter of
// context.WithValue: it may not be nil, it must be comparable, and it
// should not be of a built-in type, to avoid collisions between
// unrelated hooks writing into the same execution.
func (e *Execution) SetValue(key, value interface{}) {
	ctx := e.data
	if ctx == nil {
		ctx = context.Background()
	}
	e.data = context.WithValue(ctx, key, value)
}

// Value returns the data value associated with this execution for key,
// or nil if there is none.
func (e *Execution) Value(key interface{}) interface{} {
	if e.data == nil {
		return nil
	}
	return e.data.Value(key)
}
