// Copyright 2026 The snag Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package snag

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snaghttp/snag/request"
)

type recordingLogger struct {
	lines []string
}

func (l *recordingLogger) Debugf(format string, args ...interface{}) {
	l.lines = append(l.lines, fmt.Sprintf(format, args...))
}

func TestClientLogsFailures(t *testing.T) {
	doer := &mockHTTPDoer{}
	logger := &recordingLogger{}
	client := &Client{HTTPDoer: doer, Logger: logger}

	_, err := client.Do(context.Background(), request.Raw{})

	require.Error(t, err)
	require.NotEmpty(t, logger.lines)
	assert.Contains(t, logger.lines[len(logger.lines)-1], "failed after 1 attempt(s)")
}

func TestNewSimpleLogger(t *testing.T) {
	logger := NewSimpleLogger()
	require.NotNil(t, logger)
	logger.Debugf("spot check %d", 1)
}
