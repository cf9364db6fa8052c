// Copyright 2026 The snag Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package transient classifies errors by whether a retry of the HTTP
// request attempt that produced them has any prospect of success.
package transient

import (
	"errors"
	"syscall"
)

// A Category is the transience category of a particular error, as
// reported by Categorize.
//
// The category Not means the error is not transient from the
// perspective of completing an HTTP request attempt, in other words a
// retry after encountering this error is very unlikely to succeed. All
// other categories indicate the error is transient and a retry has
// some prospect of success.
type Category int

const (
	// Not indicates any non-transient error.
	Not Category = iota
	// Timeout indicates a client-side timeout. The server may be going
	// through a temporary period of slowness, or the client may succeed
	// on a future attempt waiting longer.
	//
	// Categorize returns Timeout if the error or any of its wrapped
	// causes has a Timeout() function that reports true.
	Timeout
	// ConnRefused indicates the remote host refused the connection
	// (POSIX ECONNREFUSED). Connection refusal is classified transient
	// because it commonly occurs while the remote service is starting
	// or restarting and is momentarily not listening on its port.
	ConnRefused
	// ConnReset indicates the remote host sent an RST on a previously
	// active TCP connection (POSIX ECONNRESET). Resets are typical of
	// services being bounced mid-response and of load balancers
	// recycling backends, so a retry has a high probability of success.
	ConnReset
	// BrokenPipe indicates a write on a connection the peer had
	// already closed (POSIX EPIPE). Like ConnReset, it usually means
	// the remote end went away between attempts.
	BrokenPipe
	// Unreachable indicates the network or host was unreachable
	// (POSIX ENETUNREACH or EHOSTUNREACH), a condition that routing
	// convergence often cures within a retry window.
	Unreachable
)

// Categorize returns the transience category of the given error. A nil
// error, and an error that is not transient from the perspective of
// completing an HTTP request attempt, both produce Not.
//
// Categorize examines wrapped cause errors contained within err, not
// just err itself. It never consults a Temporary() method, as the
// semantics of Temporary() are not well defined.
func Categorize(err error) Category {
	if err == nil {
		return Not
	}

	var t hasTimeout
	if errors.As(err, &t) && t.Timeout() {
		return Timeout
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		switch errno {
		case syscall.ECONNRESET:
			return ConnReset
		case syscall.ECONNREFUSED:
			return ConnRefused
		case syscall.EPIPE:
			return BrokenPipe
		case syscall.ENETUNREACH, syscall.EHOSTUNREACH:
			return Unreachable
		}
	}

	return Not
}

type hasTimeout interface {
	Timeout() bool
}
