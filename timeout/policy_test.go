// Copyright 2026 The snag Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package timeout

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/snaghttp/snag/request"
)

type timeoutErr struct{}

func (timeoutErr) Error() string { return "timed out" }
func (timeoutErr) Timeout() bool { return true }

func TestFixed(t *testing.T) {
	p := Fixed(time.Second)
	assert.Equal(t, time.Second, p.Timeout(&request.Execution{}))
	assert.Equal(t, time.Second, p.Timeout(&request.Execution{
		Err:             timeoutErr{},
		AttemptTimeouts: 3,
	}))
}

func TestInfinite(t *testing.T) {
	assert.Equal(t, time.Duration(1<<63-1), Infinite.Timeout(&request.Execution{}))
}

func TestAdaptive(t *testing.T) {
	p := Adaptive(200*time.Millisecond, time.Second, 10*time.Second)

	// No preceding timeout: usual value.
	assert.Equal(t, 200*time.Millisecond, p.Timeout(&request.Execution{}))

	// Previous attempt timed out for the first time.
	e := &request.Execution{Err: timeoutErr{}, AttemptTimeouts: 1}
	assert.Equal(t, time.Second, p.Timeout(e))

	// Second and later timeouts reuse the last element.
	e.AttemptTimeouts = 2
	assert.Equal(t, 10*time.Second, p.Timeout(e))
	e.AttemptTimeouts = 9
	assert.Equal(t, 10*time.Second, p.Timeout(e))

	// A non-timeout error between timeouts goes back to usual.
	e = &request.Execution{AttemptTimeouts: 2}
	assert.Equal(t, 200*time.Millisecond, p.Timeout(e))
}

func TestDefaultPolicy(t *testing.T) {
	assert.Equal(t, 5*time.Second, DefaultPolicy.Timeout(&request.Execution{}))
}
