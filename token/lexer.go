// SPDX-FileCopyrightText: © 2025 The gmx authors
// SPDX-License-Identifier: Apache-2.0

package token

import (
	"fmt"
	"io"
	"strings"
	"unicode"
)

// Lexer is the host tokenizer. It turns raw template source into a
// delimiter-balanced Stream of Ident, Punct, Literal and Group tokens.
// Whitespace is dropped; its former presence is still visible through the
// byte offsets of adjacent tokens.
//
// The lexer is the only place that balances delimiters. Everything
// downstream receives grouped streams and relies on that guarantee.
type Lexer struct {
	filename string
	runes    []rune
	pos      []Pos // position of each rune in runes
	eof      Pos   // position just past the input
	index    int
}

// NewLexer creates a new instance, ready to tokenize the given input.
func NewLexer(filename string, r io.Reader) (*Lexer, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("unable to read %s: %w", filename, err)
	}

	l := &Lexer{filename: filename}

	p := Pos{File: filename, Line: 1, Col: 1}
	for _, r := range string(buf) {
		l.runes = append(l.runes, r)
		l.pos = append(l.pos, p)

		p.Offset += len(string(r))
		p.Col++

		if r == '\n' {
			p.Line++
			p.Col = 1
		}
	}

	l.eof = p

	return l, nil
}

// Tokenize reads all tokens from a named input.
func Tokenize(filename string, r io.Reader) (Stream, error) {
	l, err := NewLexer(filename, r)
	if err != nil {
		return nil, err
	}

	return l.Tokenize()
}

// TokenizeString reads all tokens from an in-memory template.
func TokenizeString(filename, text string) (Stream, error) {
	return Tokenize(filename, strings.NewReader(text))
}

// Tokenize consumes the whole input and returns a grouped stream.
// A stray or unterminated delimiter is fatal: no well-formed stream
// exists in that case.
func (l *Lexer) Tokenize() (Stream, error) {
	return l.scanStream(nil)
}

// scanStream scans tokens until end of input, or until the close
// delimiter of the given open group is found.
func (l *Lexer) scanStream(open *Group) (Stream, error) {
	var stream Stream

	for {
		l.skipWhitespace()

		r, ok := l.peekR()
		if !ok {
			if open != nil {
				return nil, NewPosError(
					NewNode(open.BeginPos, open.BeginPos),
					fmt.Sprintf("unterminated '%c' group", open.Delim.Open()),
				).SetHint("the host stream must be delimiter-balanced")
			}

			return stream, nil
		}

		switch {
		case r == '}' || r == ']' || r == ')':
			if open != nil && r == open.Delim.Close() {
				l.nextR()
				open.EndPos = l.at()

				return stream, nil
			}

			p := l.at()
			l.nextR()

			return nil, NewPosError(
				NewNode(p, l.at()),
				fmt.Sprintf("unexpected closing delimiter '%c'", r),
			)
		case r == '{' || r == '[' || r == '(':
			group, err := l.scanGroup()
			if err != nil {
				return nil, err
			}

			stream = append(stream, group)
		case r == '"':
			lit, err := l.scanString()
			if err != nil {
				return nil, err
			}

			stream = append(stream, lit)
		case unicode.IsDigit(r):
			stream = append(stream, l.scanNumber())
		case identStart(r):
			stream = append(stream, l.scanIdent())
		default:
			p := l.at()
			l.nextR()
			stream = append(stream, &Punct{
				Position: Position{BeginPos: p, EndPos: l.at()},
				Value:    r,
			})
		}
	}
}

func (l *Lexer) scanGroup() (*Group, error) {
	p := l.at()
	r, _ := l.nextR()

	var delim Delim

	switch r {
	case '{':
		delim = Brace
	case '[':
		delim = Bracket
	case '(':
		delim = Paren
	}

	group := &Group{
		Position: Position{BeginPos: p},
		Delim:    delim,
	}

	inner, err := l.scanStream(group)
	if err != nil {
		return nil, err
	}

	group.Tokens = inner

	return group, nil
}

func (l *Lexer) scanString() (*Literal, error) {
	p := l.at()
	l.nextR() // opening quote

	var value strings.Builder
	var raw strings.Builder

	raw.WriteByte('"')

	for {
		r, ok := l.nextR()
		if !ok {
			return nil, NewPosError(NewNode(p, l.at()), "unterminated string literal")
		}

		raw.WriteRune(r)

		if r == '"' {
			break
		}

		if r == '\\' {
			esc, ok := l.nextR()
			if !ok {
				return nil, NewPosError(NewNode(p, l.at()), "unterminated string literal")
			}

			raw.WriteRune(esc)

			switch esc {
			case 'n':
				value.WriteByte('\n')
			case 't':
				value.WriteByte('\t')
			default:
				value.WriteRune(esc)
			}

			continue
		}

		value.WriteRune(r)
	}

	return &Literal{
		Position: Position{BeginPos: p, EndPos: l.at()},
		Kind:     LitString,
		Value:    value.String(),
		Raw:      raw.String(),
	}, nil
}

func (l *Lexer) scanNumber() *Literal {
	p := l.at()

	var sb strings.Builder

	for {
		r, ok := l.peekR()
		if !ok || !(unicode.IsDigit(r) || r == '.' || r == '_') {
			break
		}

		l.nextR()
		sb.WriteRune(r)
	}

	return &Literal{
		Position: Position{BeginPos: p, EndPos: l.at()},
		Kind:     LitNumber,
		Value:    sb.String(),
		Raw:      sb.String(),
	}
}

func (l *Lexer) scanIdent() *Ident {
	p := l.at()

	var sb strings.Builder

	for {
		r, ok := l.peekR()
		if !ok || !identPart(r) {
			break
		}

		l.nextR()
		sb.WriteRune(r)
	}

	return &Ident{
		Position: Position{BeginPos: p, EndPos: l.at()},
		Value:    sb.String(),
	}
}

func (l *Lexer) skipWhitespace() {
	for {
		r, ok := l.peekR()
		if !ok || !unicode.IsSpace(r) {
			return
		}

		l.nextR()
	}
}

// at returns the position of the next unread rune.
func (l *Lexer) at() Pos {
	if l.index < len(l.pos) {
		return l.pos[l.index]
	}

	return l.eof
}

func (l *Lexer) peekR() (rune, bool) {
	if l.index >= len(l.runes) {
		return 0, false
	}

	return l.runes[l.index], true
}

func (l *Lexer) nextR() (rune, bool) {
	if l.index >= len(l.runes) {
		return 0, false
	}

	r := l.runes[l.index]
	l.index++

	return r, true
}

func identStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func identPart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
