// SPDX-FileCopyrightText: © 2025 The gmx authors
// SPDX-License-Identifier: Apache-2.0

// Package flow lowers control-flow expression blocks into custom nodes.
//
// A raw-expression block whose first token is the keyword "if", "for" or
// "match" is not an ordinary expression: it carries nested markup in its
// braced bodies. Expand rewrites such blocks into parser.Custom nodes,
// one labelled section per branch, with the bodies parsed as markup.
package flow

import (
	"fmt"

	"github.com/gomarkup/gmx/parser"
	"github.com/gomarkup/gmx/token"
)

// Expand rewrites control-flow expression blocks in the given nodes.
// The returned diagnostics come from the bodies' markup parses and from
// malformed or disabled flow blocks; the input tree is not modified.
//
// Expansion requires Config.AllowCustomPrefixes. Without it, flow-shaped
// blocks stay raw expressions and each one yields an
// unsupported-construct diagnostic.
func Expand(nodes []parser.Node, cfg parser.Config) ([]parser.Node, []parser.Diagnostic) {
	e := &expander{cfg: cfg, collector: parser.NewCollector()}

	out := parser.Rewrite(nodes, e.rewrite)

	return out, e.collector.Diagnostics()
}

type expander struct {
	cfg       parser.Config
	collector *parser.Collector
}

func (e *expander) rewrite(r *parser.RawExpr) parser.Node {
	head, ok := keyword(r.Tokens)
	if !ok {
		return nil
	}

	if !e.cfg.AllowCustomPrefixes {
		e.diag(parser.UnsupportedConstruct, r.Position,
			"%q blocks are not enabled (allow-custom-prefixes)", head)

		return nil
	}

	c := parser.NewCursor(r.Tokens)
	c.Next() // the keyword

	var (
		node *parser.Custom
		err  string
	)

	switch head {
	case "if":
		node, err = e.expandIf(c, r)
	case "for":
		node, err = e.expandFor(c, r)
	case "match":
		node, err = e.expandMatch(c, r)
	}

	if err != "" {
		e.diag(parser.UnsupportedConstruct, r.Position, "malformed %s block: %s", head, err)

		return nil
	}

	return node
}

// expandIf lowers `if cond { … } [else if cond { … }]* [else { … }]`.
func (e *expander) expandIf(c *parser.Cursor, r *parser.RawExpr) (*parser.Custom, string) {
	node := &parser.Custom{Position: r.Position, Name: "if"}

	sec, err := e.branch(c, "if", true)
	if err != "" {
		return nil, err
	}

	node.Sections = append(node.Sections, sec)

	for isKeyword(c.Peek(0), "else") {
		c.Next()

		if isKeyword(c.Peek(0), "if") {
			c.Next()

			sec, err := e.branch(c, "else if", true)
			if err != "" {
				return nil, err
			}

			node.Sections = append(node.Sections, sec)

			continue
		}

		sec, err := e.branch(c, "else", false)
		if err != "" {
			return nil, err
		}

		node.Sections = append(node.Sections, sec)

		break
	}

	if !c.EOF() {
		return nil, "unexpected tokens after the last branch"
	}

	return node, ""
}

// expandFor lowers `for head { … }` into a single-section node.
func (e *expander) expandFor(c *parser.Cursor, r *parser.RawExpr) (*parser.Custom, string) {
	sec, err := e.branch(c, "for", true)
	if err != "" {
		return nil, err
	}

	if !c.EOF() {
		return nil, "unexpected tokens after the body"
	}

	return &parser.Custom{
		Position: r.Position,
		Name:     "for",
		Sections: []parser.Section{sec},
	}, ""
}

// expandMatch lowers `match subject { pattern => { … }, … }`. The subject
// becomes the first section ("match", no children), each arm a "case"
// section with the pattern as its tokens.
func (e *expander) expandMatch(c *parser.Cursor, r *parser.RawExpr) (*parser.Custom, string) {
	mark := c.Mark()

	body := advanceToBody(c)
	if body == nil {
		return nil, "expected a braced arm list"
	}

	subject := c.Consumed(mark)
	subject = subject[:len(subject)-1] // drop the body group

	if subject.IsEmpty() {
		return nil, "missing match subject"
	}

	node := &parser.Custom{
		Position: r.Position,
		Name:     "match",
		Sections: []parser.Section{{
			Position: subject.Span(),
			Label:    "match",
			Tokens:   subject,
		}},
	}

	if !c.EOF() {
		return nil, "unexpected tokens after the arm list"
	}

	arms := parser.NewCursor(body.Tokens)

	for !arms.EOF() {
		armMark := arms.Mark()

		armBody := advanceToArrowBody(arms)
		if armBody == nil {
			return nil, "expected `pattern => { … }` arm"
		}

		pattern := arms.Consumed(armMark)
		pattern = pattern[:len(pattern)-3] // drop `=`, `>` and the body group

		if pattern.IsEmpty() {
			return nil, "arm has no pattern"
		}

		node.Sections = append(node.Sections, parser.Section{
			Position: pattern.Span().Union(armBody.Position),
			Label:    "case",
			Tokens:   pattern,
			Children: e.markup(armBody),
		})

		if p, ok := arms.Peek(0).(*token.Punct); ok && p.Value == ',' {
			arms.Next()
		}
	}

	return node, ""
}

// branch consumes an optional condition (or loop header) up to a braced
// body and parses the body as markup.
func (e *expander) branch(c *parser.Cursor, label string, wantHead bool) (parser.Section, string) {
	mark := c.Mark()

	body := advanceToBody(c)
	if body == nil {
		return parser.Section{}, "expected a braced body"
	}

	head := c.Consumed(mark)
	head = head[:len(head)-1] // drop the body group

	if wantHead && head.IsEmpty() {
		return parser.Section{}, "missing condition before the body"
	}

	if !wantHead && !head.IsEmpty() {
		return parser.Section{}, "unexpected tokens before the body"
	}

	span := body.Position
	if !head.IsEmpty() {
		span = head.Span().Union(body.Position)
	}

	return parser.Section{
		Position: span,
		Label:    label,
		Tokens:   head,
		Children: e.markup(body),
	}, ""
}

// markup parses a braced body as markup with the surrounding
// configuration and expands nested flow blocks in it.
func (e *expander) markup(body *token.Group) []parser.Node {
	frag, diags, err := parser.Parse(e.cfg, body.Tokens)
	if err != nil {
		// the config was validated by the enclosing parse already
		return nil
	}

	for _, d := range diags {
		e.collector.Collect(d)
	}

	return parser.Rewrite(frag.Children, e.rewrite)
}

// advanceToBody consumes tokens up to and including the next top-level
// brace group and returns that group, or nil when there is none.
func advanceToBody(c *parser.Cursor) *token.Group {
	for {
		t, err := c.Next()
		if err != nil {
			return nil
		}

		if g, ok := t.(*token.Group); ok && g.Delim == token.Brace {
			return g
		}
	}
}

// advanceToArrowBody consumes tokens up to and including a `=> { … }`
// and returns the body group, or nil when the arm never completes.
func advanceToArrowBody(c *parser.Cursor) *token.Group {
	for {
		t, err := c.Next()
		if err != nil {
			return nil
		}

		p, ok := t.(*token.Punct)
		if !ok || p.Value != '=' {
			continue
		}

		gt, ok := c.Peek(0).(*token.Punct)
		if !ok || gt.Value != '>' {
			continue
		}

		c.Next()

		g, ok := c.Peek(0).(*token.Group)
		if !ok || g.Delim != token.Brace {
			return nil
		}

		c.Next()

		return g
	}
}

func keyword(s token.Stream) (string, bool) {
	if len(s) == 0 {
		return "", false
	}

	id, ok := s[0].(*token.Ident)
	if !ok {
		return "", false
	}

	switch id.Value {
	case "if", "for", "match":
		return id.Value, true
	}

	return "", false
}

func isKeyword(t token.Token, kw string) bool {
	id, ok := t.(*token.Ident)
	return ok && id.Value == kw
}

func (e *expander) diag(code parser.Code, span token.Position, format string, args ...any) {
	e.collector.Collect(parser.Diagnostic{
		Severity: e.cfg.SeverityFor(code),
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Spans:    []token.Position{span},
	})
}
