// Copyright 2026 The snag Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package snag

import "strconv"

// A Phase identifies one named point in the request lifecycle at which
// a hook sequence runs.
type Phase int

const (
	// Init identifies the phase that runs once per configuration
	// merge, before normalization. Init hooks receive the raw,
	// untyped option mapping and may add, rewrite, or delete keys;
	// a later hook observes the mutations made by all earlier hooks.
	Init Phase = iota
	// BeforeRequest identifies the phase that runs against the
	// normalized options before the transport call. A hook may
	// short-circuit the transport by returning a non-nil response;
	// if one does, the remaining beforeRequest hooks are skipped and
	// the returned response proceeds through the pipeline as if it
	// had been received from the transport.
	BeforeRequest
	// BeforeRedirect identifies the phase that runs when a redirect
	// response is about to be followed. Hooks receive the options
	// already updated for the new target, and a read-only snapshot
	// of the redirecting response.
	BeforeRedirect
	// BeforeRetry identifies the phase that runs after a failed
	// attempt for which a retry will be made, before the retry wait.
	// Exactly one of BeforeRetry and BeforeError runs per failed
	// attempt, never both and never neither.
	BeforeRetry
	// AfterResponse identifies the phase that runs against a terminal
	// (non-redirect) response. Each hook returns a response, possibly
	// the one it was given, or invokes the retry trigger to divert
	// into the retry path; invoking the trigger skips the remaining
	// afterResponse hooks of that invocation.
	AfterResponse
	// BeforeError identifies the phase a terminal failure passes
	// through exactly once before being surfaced to the caller. Each
	// hook receives and returns an *Error, and may replace fields or
	// the error value itself.
	BeforeError
	// phaseSentinel provides the total number of phases typed as a
	// Phase.
	phaseSentinel

	// numPhases provides the total number of phases as an int.
	numPhases = int(phaseSentinel)
)

var phaseNames = []string{
	"init",
	"beforeRequest",
	"beforeRedirect",
	"beforeRetry",
	"afterResponse",
	"beforeError",
}

// Phases returns a slice containing all phases, in the order in which
// they can first occur within a request.
func Phases() []Phase {
	return []Phase{
		Init,
		BeforeRequest,
		BeforeRedirect,
		BeforeRetry,
		AfterResponse,
		BeforeError,
	}
}

// ParsePhase resolves a phase name, as used in the duck-typed hook
// registration surface, to its Phase. The error is an *Error with code
// CodeConfiguration if the name is not one of the six recognized
// phase names.
func ParsePhase(name string) (Phase, error) {
	for i, n := range phaseNames {
		if n == name {
			return Phase(i), nil
		}
	}
	return 0, &Error{
		Code:    CodeConfiguration,
		Message: "snag: unknown hook phase " + strconv.Quote(name),
	}
}

// Valid reports whether p is one of the six recognized phases.
func (p Phase) Valid() bool {
	return p >= 0 && p < phaseSentinel
}

// Name returns the name of the phase.
func (p Phase) Name() string {
	return phaseNames[int(p)]
}

// String returns the name of the phase.
func (p Phase) String() string {
	return p.Name()
}
