// Copyright 2026 The snag Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package snag

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPhases(t *testing.T) {
	ps := Phases()
	require.Len(t, ps, numPhases)
	assert.Equal(t, []Phase{Init, BeforeRequest, BeforeRedirect, BeforeRetry, AfterResponse, BeforeError}, ps)
	for i, p := range ps {
		assert.Equal(t, Phase(i), p)
		assert.True(t, p.Valid())
	}
}

func TestPhaseName(t *testing.T) {
	testCases := []struct {
		phase Phase
		name  string
	}{
		{Init, "init"},
		{BeforeRequest, "beforeRequest"},
		{BeforeRedirect, "beforeRedirect"},
		{BeforeRetry, "beforeRetry"},
		{AfterResponse, "afterResponse"},
		{BeforeError, "beforeError"},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert.Equal(t, testCase.name, testCase.phase.Name())
			assert.Equal(t, testCase.name, testCase.phase.String())
		})
	}
}

func TestParsePhase(t *testing.T) {
	t.Run("known", func(t *testing.T) {
		for _, p := range Phases() {
			parsed, err := ParsePhase(p.Name())
			require.NoError(t, err)
			assert.Equal(t, p, parsed)
		}
	})
	t.Run("unknown", func(t *testing.T) {
		for _, name := range []string{"", "Init", "before-request", "afterResponse "} {
			_, err := ParsePhase(name)
			require.Error(t, err)
			var reqErr *Error
			require.True(t, errors.As(err, &reqErr))
			assert.Equal(t, CodeConfiguration, reqErr.Code)
			assert.Contains(t, reqErr.Error(), "unknown hook phase")
		}
	})
}

func TestPhaseValid(t *testing.T) {
	assert.False(t, Phase(-1).Valid())
	assert.False(t, phaseSentinel.Valid())
	assert.True(t, Init.Valid())
	assert.True(t, BeforeError.Valid())
}
