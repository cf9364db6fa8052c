// Copyright 2026 The snag Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retry

import (
	"time"

	"github.com/snaghttp/snag/request"
	"github.com/snaghttp/snag/transient"
)

// A Decider decides if a retry should be done.
//
// Implementations of Decider must be safe for concurrent use by
// multiple goroutines.
//
// Use the built-in constructors Times, StatusCode, Method, and Before,
// and the built-in decider TransientErr; or implement your own. Use
// DeciderFunc to convert an ordinary function into a Decider and to
// compose deciders logically with DeciderFunc.And and DeciderFunc.Or.
type Decider interface {
	Decide(e *request.Execution) bool
}

// The DeciderFunc type is an adapter to allow the use of ordinary
// functions as retry deciders. It implements the Decider interface and
// provides the logical composition methods And and Or.
//
// Every DeciderFunc must be safe for concurrent use by multiple
// goroutines.
type DeciderFunc func(e *request.Execution) bool

// DefaultTimes is the number of times DefaultPolicy will retry. It
// matches request.DefaultRetryLimit, the budget normalization applies
// when the retry option is unset.
const DefaultTimes = request.DefaultRetryLimit

// DefaultDecider is a general-purpose retry decider suitable for
// common use cases. It allows up to DefaultTimes retries of idempotent
// requests which failed with a transient error or received one of the
// status codes 408, 413, 429, 500, 502, 503 or 504.
var DefaultDecider = Times(DefaultTimes).
	And(Method("GET", "HEAD", "PUT", "DELETE", "OPTIONS", "TRACE")).
	And(StatusCode(408, 413, 429, 500, 502, 503, 504).Or(TransientErr))

// TransientErr is a decider that indicates a retry if the current
// error is transient according to transient.Categorize.
//
// TransientErr only looks at the error, so it always returns false
// when a valid HTTP response was received. Compose it with a status
// code decider for more complete behavior.
var TransientErr DeciderFunc = transientErr

// Decide returns true if a retry should be done, and false otherwise,
// after examining the current execution state.
func (f DeciderFunc) Decide(e *request.Execution) bool {
	return f(e)
}

// And composes two retry deciders into a new decider which returns
// true only if both sub-deciders return true. Short-circuit logic is
// used, so g is not evaluated if f returns false.
func (f DeciderFunc) And(g DeciderFunc) DeciderFunc {
	return func(e *request.Execution) bool {
		return f(e) && g(e)
	}
}

// Or composes two retry deciders into a new decider which returns true
// if either sub-decider returns true. Short-circuit logic is used, so
// g is not evaluated if f returns true.
func (f DeciderFunc) Or(g DeciderFunc) DeciderFunc {
	return func(e *request.Execution) bool {
		return f(e) || g(e)
	}
}

// Times constructs a retry decider which allows up to n retries. The
// returned decider returns true while the execution attempt index
// e.Attempt is less than n, and false otherwise.
func Times(n int) DeciderFunc {
	return func(e *request.Execution) bool {
		return e.Attempt < n
	}
}

// Before constructs a retry decider allowing retries until a certain
// amount of time has elapsed since the start of the execution.
func Before(d time.Duration) DeciderFunc {
	return func(e *request.Execution) bool {
		return e.Duration() < d
	}
}

// StatusCode constructs a retry decider allowing retries based on the
// HTTP response status code of the most recent attempt.
func StatusCode(ss ...int) DeciderFunc {
	ss2 := make([]int, len(ss))
	copy(ss2, ss)
	return func(e *request.Execution) bool {
		for _, s := range ss2 {
			if e.StatusCode() == s {
				return true
			}
		}
		return false
	}
}

// Method constructs a retry decider allowing retries only for the
// listed HTTP methods. Use it to restrict retrying to idempotent
// requests.
func Method(ms ...string) DeciderFunc {
	ms2 := make([]string, len(ms))
	copy(ms2, ms)
	return func(e *request.Execution) bool {
		if e.Options == nil {
			return false
		}
		for _, m := range ms2 {
			if e.Options.Method == m {
				return true
			}
		}
		return false
	}
}

func transientErr(e *request.Execution) bool {
	return transient.Categorize(e.Err) != transient.Not
}
