// SPDX-FileCopyrightText: © 2025 The gmx authors
// SPDX-License-Identifier: Apache-2.0

package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gomarkup/gmx/token"
)

func TestCursor(t *testing.T) {
	stream, err := token.TokenizeString("test.gmx", "a b c")
	require.NoError(t, err)

	c := NewCursor(stream)

	assert.Equal(t, "a", c.Peek(0).Text())
	assert.Equal(t, "c", c.Peek(2).Text())
	assert.Nil(t, c.Peek(3))

	tok, err := c.Next()
	require.NoError(t, err)
	assert.Equal(t, "a", tok.Text())

	mark := c.Mark()

	fork := c.Fork()
	_, err = fork.Next()
	require.NoError(t, err)
	_, err = fork.Next()
	require.NoError(t, err)
	assert.True(t, fork.EOF())

	// the fork advanced, the original did not
	assert.Equal(t, "b", c.Peek(0).Text())

	c.Sync(fork)
	assert.True(t, c.EOF())
	assert.Equal(t, "b c", c.Consumed(mark).Text())

	_, err = c.Next()
	assert.ErrorIs(t, err, ErrUnexpectedEnd)
}

func TestCursorSpanSince(t *testing.T) {
	stream, err := token.TokenizeString("test.gmx", "one two")
	require.NoError(t, err)

	c := NewCursor(stream)
	mark := c.Mark()

	_, _ = c.Next()
	_, _ = c.Next()

	span := c.SpanSince(mark)
	assert.Equal(t, 0, span.Begin().Offset)
	assert.Equal(t, 7, span.End().Offset)

	// nothing consumed yields a zero-width span at the current token
	empty := c.SpanSince(c.Mark())
	assert.Equal(t, empty.Begin(), empty.End())
}
