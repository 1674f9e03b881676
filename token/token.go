// SPDX-FileCopyrightText: © 2025 The gmx authors
// SPDX-License-Identifier: Apache-2.0

package token

import "strings"

// A Token is one atomic unit of the host token stream. The host tokenizer
// has already classified it as an identifier, punctuation, a literal or a
// delimited group; the markup parser never sees raw characters.
type Token interface {
	Node
	// Text returns the token as it would be written in source. Delimited
	// groups include their delimiters.
	Text() string
}

// An Ident is an identifier: [A-Za-z_][A-Za-z0-9_]*.
type Ident struct {
	Position
	Value string
}

func (t *Ident) Text() string {
	return t.Value
}

// A Punct is a single punctuation rune, like '<', '/', '=' or '!'.
type Punct struct {
	Position
	Value rune
}

func (t *Punct) Text() string {
	return string(t.Value)
}

// LiteralKind classifies a Literal.
type LiteralKind int

const (
	// LitString is a quoted string. Value holds the unescaped content,
	// Raw the original quoted form.
	LitString LiteralKind = iota
	// LitNumber is an integer or decimal number. Value equals Raw.
	LitNumber
)

// A Literal is a string or number literal.
type Literal struct {
	Position
	Kind  LiteralKind
	Value string
	Raw   string
}

func (t *Literal) Text() string {
	return t.Raw
}

// Delim identifies the delimiter pair of a Group.
type Delim int

const (
	Brace   Delim = iota // {...}
	Bracket              // [...]
	Paren                // (...)
)

func (d Delim) Open() rune {
	return [...]rune{'{', '[', '('}[d]
}

func (d Delim) Close() rune {
	return [...]rune{'}', ']', ')'}[d]
}

// A Group is a delimited region. The host tokenizer guarantees that the
// closing delimiter was present and matched, recursively; consumers may
// rely on it and never re-balance delimiters themselves.
type Group struct {
	Position
	Delim  Delim
	Tokens Stream
}

func (t *Group) Text() string {
	return string(t.Delim.Open()) + t.Tokens.Text() + string(t.Delim.Close())
}

// A Stream is a flat sequence of tokens at one nesting level.
type Stream []Token

// IsEmpty reports whether the stream holds no tokens.
func (s Stream) IsEmpty() bool {
	return len(s) == 0
}

// Span returns the source span covering the whole stream, or the zero
// Position for an empty stream.
func (s Stream) Span() Position {
	if len(s) == 0 {
		return Position{}
	}

	return Position{BeginPos: s[0].Begin(), EndPos: s[len(s)-1].End()}
}

// Text reconstructs an approximation of the original source from the
// stream. The host tokenizer discarded raw layout, so only adjacency
// survives: a gap between two tokens becomes a single space, a line
// advance becomes a newline.
func (s Stream) Text() string {
	var sb strings.Builder

	for i, tok := range s {
		if i > 0 {
			prev := s[i-1]
			switch {
			case tok.Begin().Line > prev.End().Line:
				sb.WriteByte('\n')
			case tok.Begin().Offset > prev.End().Offset:
				sb.WriteByte(' ')
			}
		}

		sb.WriteString(tok.Text())
	}

	return sb.String()
}
