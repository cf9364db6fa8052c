// Copyright 2026 The snag Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBodyBytes(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		b, err := BodyBytes(nil)
		require.NoError(t, err)
		assert.Nil(t, b)
	})
	t.Run("string", func(t *testing.T) {
		b, err := BodyBytes("foo")
		require.NoError(t, err)
		assert.Equal(t, []byte("foo"), b)
	})
	t.Run("bytes", func(t *testing.T) {
		in := []byte("bar")
		b, err := BodyBytes(in)
		require.NoError(t, err)
		assert.Equal(t, in, b)
	})
	t.Run("reader", func(t *testing.T) {
		b, err := BodyBytes(strings.NewReader("baz"))
		require.NoError(t, err)
		assert.Equal(t, []byte("baz"), b)
	})
	t.Run("read closer", func(t *testing.T) {
		rc := &trackingCloser{Reader: strings.NewReader("qux")}
		b, err := BodyBytes(rc)
		require.NoError(t, err)
		assert.Equal(t, []byte("qux"), b)
		assert.True(t, rc.closed)
	})
	t.Run("read error", func(t *testing.T) {
		_, err := BodyBytes(io.NopCloser(failingReader{}))
		assert.EqualError(t, err, "bang")
	})
	t.Run("close error", func(t *testing.T) {
		rc := &trackingCloser{Reader: strings.NewReader(""), closeErr: errors.New("boom")}
		_, err := BodyBytes(rc)
		assert.EqualError(t, err, "boom")
	})
	t.Run("invalid type", func(t *testing.T) {
		_, err := BodyBytes(42)
		assert.Error(t, err)
	})
}

type trackingCloser struct {
	io.Reader
	closed   bool
	closeErr error
}

func (c *trackingCloser) Close() error {
	c.closed = true
	return c.closeErr
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("bang")
}
