// Copyright 2026 The snag Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package retry provides flexible policies for retrying failed request
// attempts, and for deciding how long to wait before retrying.
//
// The interface Policy defines a retry policy. A Policy instance can
// be constructed with NewPolicy by providing a decision-maker,
// Decider, and a wait time calculator, Waiter. Both have constructors
// for common cases, so a useful policy can be assembled quickly:
//
//	decider := retry.Times(3).
//		And(retry.Method("GET", "HEAD")).
//		And(retry.StatusCode(503).Or(retry.TransientErr))
//	waiter := retry.NewExpWaiter(100*time.Millisecond, 2*time.Second, nil)
//	policy := retry.NewPolicy(decider, waiter)
//
// Note that the client consults the policy in addition to the
// per-request retry option: a request whose retry budget is zero is
// never retried regardless of policy.
package retry
