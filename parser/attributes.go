// SPDX-FileCopyrightText: © 2025 The gmx authors
// SPDX-License-Identifier: Apache-2.0

package parser

import (
	"github.com/gomarkup/gmx/token"
)

// tagEnd describes how an open tag terminated.
type tagEnd int

const (
	attrsOpen      tagEnd = iota // ">"
	attrsSelfClose               // "/>"
	attrsEOF                     // input ended inside the tag
)

// parseAttributes consumes one tag's attribute list, positioned right
// after the tag name, up to and including the tag-closing punctuation.
// Malformed pieces produce diagnostics and re-synchronization at the next
// plausible attribute boundary, never an abort.
func (p *Parser) parseAttributes(c *Cursor, depth int) (Attributes, tagEnd) {
	var attrs Attributes

	// first occurrence of each key, for duplicate reporting
	seen := map[string]int{}

	for {
		t := c.Peek(0)
		if t == nil {
			return attrs, attrsEOF
		}

		switch tok := t.(type) {
		case *token.Punct:
			switch tok.Value {
			case '>':
				c.Next()
				return attrs, attrsOpen
			case '/':
				if isPunct(c.Peek(1), '>') {
					c.Next()
					c.Next()

					return attrs, attrsSelfClose
				}

				c.Next()
				p.diag(MalformedAttribute, "", spans(tok.Position),
					"stray '/' in open tag, expected \"/>\"")
			default:
				c.Next()
				p.diag(MalformedAttribute, "", spans(tok.Position),
					"expected an attribute name, found %q", tok.Text())
				p.skipToAttrBoundary(c)
			}
		case *token.Group:
			c.Next()

			if tok.Delim != token.Brace {
				p.diag(MalformedAttribute, "", spans(tok.Position),
					"expected an attribute name, found %q", tok.Text())
				p.skipToAttrBoundary(c)

				continue
			}

			if !p.cfg.AllowSpreadAttributes {
				p.diag(UnsupportedConstruct, "", spans(tok.Position),
					"spread attributes are not enabled (allow-spread-attributes)")

				continue
			}

			attrs = append(attrs, Attribute{
				Position: tok.Position,
				Spread:   true,
				Tokens:   tok.Tokens,
			})
		case *token.Ident:
			attr, ok := p.parseAttribute(c, depth)
			if !ok {
				continue
			}

			if prev, dup := seen[attr.Key]; dup {
				p.diag(DuplicateAttribute, "",
					spans(attr.KeySpan, attrs[prev].KeySpan),
					"duplicate attribute %q, the last value wins", attr.Key)

				if p.cfg.DedupeAttributes {
					attrs = append(attrs[:prev], attrs[prev+1:]...)
					reindexAttrs(attrs, seen)
				}
			}

			seen[attr.Key] = len(attrs)
			attrs = append(attrs, attr)
		default:
			c.Next()
			p.diag(MalformedAttribute, "", spans(token.Span(t)),
				"expected an attribute name, found %q", t.Text())
			p.skipToAttrBoundary(c)
		}
	}
}

// parseAttribute parses one "key", "key=value" or spreadless attribute.
// The cursor is positioned at an identifier.
func (p *Parser) parseAttribute(c *Cursor, depth int) (Attribute, bool) {
	key, keySpan := p.parseDottedName(c)

	attr := Attribute{
		Position: keySpan,
		Key:      key,
		KeySpan:  keySpan,
	}

	if !isPunct(c.Peek(0), '=') {
		// bare key, boolean attribute
		return attr, true
	}

	c.Next() // '='

	value, ok := p.parseAttributeValue(c, depth, keySpan)
	if !ok {
		return Attribute{}, false
	}

	attr.Value = value
	attr.Position = keySpan.Union(value.Position)

	return attr, true
}

func (p *Parser) parseAttributeValue(c *Cursor, depth int, keySpan token.Position) (*Value, bool) {
	t := c.Peek(0)
	if t == nil {
		p.diag(MalformedAttribute, "", spans(keySpan),
			"attribute has '=' but no value")

		return nil, false
	}

	switch tok := t.(type) {
	case *token.Literal:
		c.Next()

		if p.cfg.AttributeValueAsExpression {
			return &Value{
				Position: tok.Position,
				Kind:     ValueExpr,
				Tokens:   token.Stream{tok},
			}, true
		}

		return &Value{
			Position: tok.Position,
			Kind:     ValueLiteral,
			Literal:  tok.Value,
		}, true
	case *token.Group:
		if tok.Delim != token.Brace {
			break
		}

		c.Next()

		return &Value{
			Position: tok.Position,
			Kind:     ValueExpr,
			Tokens:   tok.Tokens,
		}, true
	case *token.Punct:
		if tok.Value != '<' || !isIdent(c.Peek(1)) {
			break
		}

		// nested short element value, like icon=<Warning/>
		el := p.parseElement(c, depth+1)
		if el == nil {
			return nil, false
		}

		return &Value{
			Position: token.Position{BeginPos: el.Begin(), EndPos: el.End()},
			Kind:     ValueElement,
			Element:  el,
		}, true
	case *token.Ident:
		if p.cfg.AttributeValueAsExpression {
			c.Next()

			return &Value{
				Position: tok.Position,
				Kind:     ValueExpr,
				Tokens:   token.Stream{tok},
			}, true
		}
	}

	p.diag(MalformedAttribute, "", spans(token.Span(t), keySpan),
		"%q is not a valid attribute value, expected a literal, a braced expression or an element", t.Text())
	c.Next()
	p.skipToAttrBoundary(c)

	return nil, false
}

// skipToAttrBoundary drops tokens until the next plausible start of an
// attribute or the end of the tag.
func (p *Parser) skipToAttrBoundary(c *Cursor) {
	for {
		t := c.Peek(0)
		if t == nil {
			return
		}

		if isIdent(t) || isPunct(t, '>') || isPunct(t, '/') {
			return
		}

		if g, ok := t.(*token.Group); ok && g.Delim == token.Brace {
			return
		}

		c.Next()
	}
}

func reindexAttrs(attrs Attributes, seen map[string]int) {
	for k := range seen {
		delete(seen, k)
	}

	for i, a := range attrs {
		if !a.Spread {
			seen[a.Key] = i
		}
	}
}

func spans(ps ...token.Position) []token.Position {
	return ps
}

func isPunct(t token.Token, r rune) bool {
	pt, ok := t.(*token.Punct)
	return ok && pt.Value == r
}

func isIdent(t token.Token) bool {
	_, ok := t.(*token.Ident)
	return ok
}
