// Copyright 2026 The snag Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transient

import (
	"errors"
	"fmt"
	"net/url"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
)

type timeoutErr struct{}

func (timeoutErr) Error() string { return "timed out" }
func (timeoutErr) Timeout() bool { return true }

type notTimeoutErr struct{}

func (notTimeoutErr) Error() string { return "not a timeout" }
func (notTimeoutErr) Timeout() bool { return false }

func TestCategorize(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		expected Category
	}{
		{"nil", nil, Not},
		{"plain", errors.New("x"), Not},
		{"timeout", timeoutErr{}, Timeout},
		{"timeout false", notTimeoutErr{}, Not},
		{"wrapped timeout", fmt.Errorf("outer: %w", timeoutErr{}), Timeout},
		{"url error timeout", &url.Error{Op: "Get", URL: "http://x", Err: timeoutErr{}}, Timeout},
		{"conn reset", syscall.ECONNRESET, ConnReset},
		{"conn refused", syscall.ECONNREFUSED, ConnRefused},
		{"broken pipe", syscall.EPIPE, BrokenPipe},
		{"net unreachable", syscall.ENETUNREACH, Unreachable},
		{"host unreachable", syscall.EHOSTUNREACH, Unreachable},
		{"wrapped errno", fmt.Errorf("dial: %w", syscall.ECONNREFUSED), ConnRefused},
		{"other errno", syscall.ENOENT, Not},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert.Equal(t, testCase.expected, Categorize(testCase.err))
		})
	}
}
