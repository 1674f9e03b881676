// SPDX-FileCopyrightText: © 2025 The gmx authors
// SPDX-License-Identifier: Apache-2.0

package parser

import (
	"errors"

	"github.com/gomarkup/gmx/token"
)

// ErrUnexpectedEnd is returned by Cursor.Next when the stream is exhausted.
var ErrUnexpectedEnd = errors.New("unexpected end of token stream")

// A Cursor is a position into a token stream. Advancing one cursor never
// affects another, so forks can be used for speculative lookahead and
// thrown away.
type Cursor struct {
	stream token.Stream
	index  int
}

func NewCursor(s token.Stream) *Cursor {
	return &Cursor{stream: s}
}

// Peek returns the k-th unconsumed token without advancing, or nil when
// looking past the end. Peek(0) is the token Next would return.
func (c *Cursor) Peek(k int) token.Token {
	if c.index+k >= len(c.stream) {
		return nil
	}

	return c.stream[c.index+k]
}

// Next consumes and returns the next token.
func (c *Cursor) Next() (token.Token, error) {
	if c.index >= len(c.stream) {
		return nil, ErrUnexpectedEnd
	}

	tok := c.stream[c.index]
	c.index++

	return tok, nil
}

// Fork returns an independent cursor at the same position.
func (c *Cursor) Fork() *Cursor {
	return &Cursor{stream: c.stream, index: c.index}
}

// Sync moves this cursor to the position of a fork.
func (c *Cursor) Sync(fork *Cursor) {
	c.index = fork.index
}

// Mark returns the current position for a later SpanSince.
func (c *Cursor) Mark() int {
	return c.index
}

// Consumed returns the tokens between a mark and the current position.
func (c *Cursor) Consumed(mark int) token.Stream {
	return c.stream[mark:c.index]
}

// SpanSince returns the combined span of all tokens consumed since mark.
// When nothing was consumed, it degrades to the span of the token at the
// mark, so that diagnostics still point somewhere useful.
func (c *Cursor) SpanSince(mark int) token.Position {
	if mark < c.index {
		return c.stream[mark:c.index].Span()
	}

	if mark < len(c.stream) {
		t := c.stream[mark]
		return token.Position{BeginPos: t.Begin(), EndPos: t.End()}
	}

	if n := len(c.stream); n > 0 {
		t := c.stream[n-1]
		return token.Position{BeginPos: t.End(), EndPos: t.End()}
	}

	return token.Position{}
}

// EOF reports whether all tokens have been consumed.
func (c *Cursor) EOF() bool {
	return c.index >= len(c.stream)
}
