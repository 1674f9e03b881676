// SPDX-FileCopyrightText: © 2025 The gmx authors
// SPDX-License-Identifier: Apache-2.0

package token

import "strconv"

// Node contains access to the start and end positions of a token.
type Node interface {
	Begin() Pos
	End() Pos
}

// A Pos describes a resolved position within a file.
type Pos struct {
	// File contains the file path as given to the lexer.
	File string
	// Line denotes the one-based line number in the denoted File.
	Line int
	// Col denotes the one-based column number in the denoted Line.
	Col int
	// Offset is the zero-based byte offset in the file.
	Offset int
}

// String returns the content in the "file:line:col" format.
func (p Pos) String() string {
	return p.File + ":" + strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Col)
}

// After reports whether p is located behind other.
func (p Pos) After(other Pos) bool {
	return p.Offset > other.Offset
}

// A Position is a span between two positions. It is embedded into every
// token and borrowed by everything derived from tokens, so that
// diagnostics can always point back into the original input.
type Position struct {
	BeginPos Pos
	EndPos   Pos
}

func (p Position) Begin() Pos {
	return p.BeginPos
}

func (p Position) End() Pos {
	return p.EndPos
}

// Union returns the smallest span covering p and other.
func (p Position) Union(other Position) Position {
	result := p

	if other.BeginPos.Offset < result.BeginPos.Offset {
		result.BeginPos = other.BeginPos
	}

	if other.EndPos.Offset > result.EndPos.Offset {
		result.EndPos = other.EndPos
	}

	return result
}

// Span builds a Position covering all the given nodes.
func Span(nodes ...Node) Position {
	var result Position

	for i, n := range nodes {
		p := Position{BeginPos: n.Begin(), EndPos: n.End()}
		if i == 0 {
			result = p
		} else {
			result = result.Union(p)
		}
	}

	return result
}

// NewNode returns a plain span for positional errors.
func NewNode(begin, end Pos) Node {
	return Position{BeginPos: begin, EndPos: end}
}
