// SPDX-FileCopyrightText: © 2025 The gmx authors
// SPDX-License-Identifier: Apache-2.0

package parser

import (
	"fmt"
	"strings"

	"github.com/gomarkup/gmx/token"
)

// Parser turns a host token stream into a node tree. One Parser serves
// one invocation: it owns the frame stack of open tags and the
// diagnostic collector, and neither survives the parse.
//
// The parser never aborts on user input. Structural problems produce
// diagnostics and a best-effort repair; the tree that comes back is
// always complete enough to walk.
type Parser struct {
	cfg       Config
	collector *Collector

	// open holds the enclosing open tags, innermost last. Fragments use
	// the empty name.
	open []openTag
}

type openTag struct {
	name string
	span token.Position
}

// New creates a parser for a single invocation.
func New(cfg Config) (*Parser, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid parser configuration: %w", err)
	}

	return &Parser{
		cfg:       cfg,
		collector: NewCollector(),
	}, nil
}

// Parse consumes a whole stream and returns the root fragment together
// with all diagnostics, in emission order. The only error is an invalid
// configuration.
func Parse(cfg Config, stream token.Stream) (*Fragment, []Diagnostic, error) {
	p, err := New(cfg)
	if err != nil {
		return nil, nil, err
	}

	root := p.ParseStream(stream)

	return root, p.collector.Diagnostics(), nil
}

// ParseStream consumes the stream into an implicit root fragment.
func (p *Parser) ParseStream(stream token.Stream) *Fragment {
	c := NewCursor(stream)

	root := &Fragment{Position: stream.Span()}

	for {
		root.Children = append(root.Children, p.parseNodes(c, 1)...)

		if c.EOF() {
			break
		}

		// parseNodes only stops early on a close tag, which at the top
		// level has nothing to close.
		name, span, _ := readCloseTag(c)

		p.diag(LexicalMismatch, "", spans(span),
			"close tag </%s> has no corresponding open tag", name)
	}

	return root
}

// Diagnostics returns everything collected so far.
func (p *Parser) Diagnostics() []Diagnostic {
	return p.collector.Diagnostics()
}

// parseNodes parses sibling nodes until the stream ends or a close tag
// is ahead; close tags are left for the enclosing frame.
func (p *Parser) parseNodes(c *Cursor, depth int) []Node {
	var nodes []Node

	for {
		t := c.Peek(0)
		if t == nil {
			return nodes
		}

		if p.closeTagAhead(c) {
			return nodes
		}

		switch {
		case p.fragmentAhead(c):
			nodes = append(nodes, p.parseFragment(c, depth))
		case p.declAhead(c):
			if n := p.parseMarkupDecl(c); n != nil {
				nodes = append(nodes, n)
			}
		case p.openTagAhead(c):
			if el := p.parseElement(c, depth); el != nil {
				nodes = append(nodes, el)
			}
		case isBraceGroup(t):
			c.Next()
			g := t.(*token.Group)
			nodes = append(nodes, &RawExpr{Position: g.Position, Tokens: g.Tokens})
		default:
			if text := p.parseText(c); text != nil {
				nodes = append(nodes, text)
			}
		}
	}
}

// parseText accumulates tokens into one text run, stopping at anything
// that looks like tag syntax, at a braced expression, or at the end. A
// lone '<' with no tag-like follow-up is folded into the run.
func (p *Parser) parseText(c *Cursor) *Text {
	mark := c.Mark()

	for {
		t := c.Peek(0)
		if t == nil || isBraceGroup(t) || p.tagSyntaxAhead(c) {
			break
		}

		c.Next()
	}

	consumed := c.Consumed(mark)
	if consumed.IsEmpty() {
		return nil
	}

	value := consumed.Text()
	if p.cfg.TrimText {
		value = strings.TrimSpace(value)
		if value == "" {
			return nil
		}
	}

	return &Text{Position: c.SpanSince(mark), Value: value}
}

func (p *Parser) parseElement(c *Cursor, depth int) *Element {
	mark := c.Mark()
	lt, _ := c.Next() // '<'

	name, nameSpan := p.parseDottedName(c)

	el := &Element{
		Name:     name,
		NameSpan: nameSpan,
	}

	p.open = append(p.open, openTag{name: name, span: nameSpan})
	defer func() {
		p.open = p.open[:len(p.open)-1]
	}()

	attrs, end := p.parseAttributes(c, depth)
	el.Attributes = attrs
	el.OpenSpan = token.Position{BeginPos: lt.Begin(), EndPos: c.SpanSince(mark).EndPos}
	el.Position = el.OpenSpan

	switch end {
	case attrsEOF:
		p.diag(UnclosedElement, closeFix(name), spans(nameSpan),
			"open tag <%s> has no corresponding close tag", name)

		return el
	case attrsSelfClose:
		el.SelfClosing = true

		return el
	}

	if depth >= p.cfg.MaxDepth {
		p.diag(DepthLimitExceeded, "", spans(nameSpan),
			"markup is nested deeper than %d levels, the subtree of <%s> was truncated",
			p.cfg.MaxDepth, name)

		if closeSpan, ok := p.skipToClose(c, name); ok {
			el.CloseSpan = closeSpan
			el.Position = el.OpenSpan.Union(closeSpan)
		}

		return el
	}

	el.Children = p.parseNodes(c, depth+1)
	el.Position = el.OpenSpan.Union(c.SpanSince(mark))

	if c.EOF() {
		p.diag(UnclosedElement, closeFix(name), spans(nameSpan),
			"open tag <%s> has no corresponding close tag", name)

		return el
	}

	// a close tag is ahead, but possibly not ours
	fork := c.Fork()
	closeName, closeSpan, _ := readCloseTag(fork)

	if closeName == name {
		c.Sync(fork)
		el.CloseSpan = closeSpan
		el.Position = el.OpenSpan.Union(closeSpan)

		return el
	}

	if p.enclosingOpen(closeName) {
		// the close tag belongs to an ancestor: close this element
		// implicitly and leave the tag where it is
		p.diag(LexicalMismatch, closeFix(name), spans(nameSpan, closeSpan),
			"close tag </%s> does not match open tag <%s>, <%s> is closed implicitly",
			closeName, name, name)

		return el
	}

	// nothing above will ever match this close tag: assume it was meant
	// to close the current element and re-synchronize behind it
	c.Sync(fork)
	el.CloseSpan = closeSpan
	el.Position = el.OpenSpan.Union(closeSpan)

	p.diag(LexicalMismatch, closeFix(name), spans(closeSpan, nameSpan),
		"close tag </%s> does not match open tag <%s>", closeName, name)

	return el
}

func (p *Parser) parseFragment(c *Cursor, depth int) *Fragment {
	mark := c.Mark()
	lt, _ := c.Next() // '<'
	c.Next()          // '>'

	openSpan := c.SpanSince(mark)

	frag := &Fragment{
		Position: openSpan,
	}

	p.open = append(p.open, openTag{name: "", span: openSpan})
	defer func() {
		p.open = p.open[:len(p.open)-1]
	}()

	if depth >= p.cfg.MaxDepth {
		p.diag(DepthLimitExceeded, "", spans(openSpan),
			"markup is nested deeper than %d levels, the fragment subtree was truncated",
			p.cfg.MaxDepth)
		p.skipToFragmentClose(c)
		frag.Position = openSpan.Union(c.SpanSince(mark))

		return frag
	}

	frag.Children = p.parseNodes(c, depth+1)
	frag.Position = token.Position{BeginPos: lt.Begin(), EndPos: c.SpanSince(mark).EndPos}

	if c.EOF() {
		p.diag(UnclosedElement, "</>", spans(openSpan),
			"fragment <> has no corresponding close tag")

		return frag
	}

	fork := c.Fork()
	closeName, closeSpan, _ := readCloseTag(fork)

	if closeName == "" {
		c.Sync(fork)
		frag.Position = frag.Position.Union(closeSpan)

		return frag
	}

	if p.enclosingOpen(closeName) {
		p.diag(LexicalMismatch, "</>", spans(openSpan, closeSpan),
			"close tag </%s> does not match fragment <>, the fragment is closed implicitly", closeName)

		return frag
	}

	c.Sync(fork)
	frag.Position = frag.Position.Union(closeSpan)

	p.diag(LexicalMismatch, "</>", spans(closeSpan, openSpan),
		"close tag </%s> does not match fragment <>", closeName)

	return frag
}

// parseMarkupDecl parses "<!-- ... -->" and "<!DOCTYPE ...>". Anything
// else after "<!" is unsupported.
func (p *Parser) parseMarkupDecl(c *Cursor) Node {
	mark := c.Mark()
	c.Next() // '<'
	c.Next() // '!'

	if isPunct(c.Peek(0), '-') && isPunct(c.Peek(1), '-') {
		c.Next()
		c.Next()

		payloadMark := c.Mark()

		for {
			if c.EOF() {
				p.diag(UnclosedElement, "-->", spans(c.SpanSince(mark)),
					"comment is never closed")

				return &Comment{
					Position: c.SpanSince(mark),
					Value:    c.Consumed(payloadMark).Text(),
				}
			}

			if isPunct(c.Peek(0), '-') && isPunct(c.Peek(1), '-') && isPunct(c.Peek(2), '>') {
				break
			}

			c.Next()
		}

		value := c.Consumed(payloadMark).Text()

		c.Next()
		c.Next()
		c.Next()

		return &Comment{Position: c.SpanSince(mark), Value: value}
	}

	if id, ok := c.Peek(0).(*token.Ident); ok && strings.EqualFold(id.Value, "doctype") {
		c.Next()

		payloadMark := c.Mark()

		for !c.EOF() && !isPunct(c.Peek(0), '>') {
			c.Next()
		}

		value := c.Consumed(payloadMark).Text()

		if c.EOF() {
			p.diag(UnclosedElement, ">", spans(c.SpanSince(mark)),
				"doctype is never closed")
		} else {
			c.Next() // '>'
		}

		return &Doctype{Position: c.SpanSince(mark), Value: value}
	}

	p.diag(UnsupportedConstruct, "", spans(c.SpanSince(mark)),
		"unsupported markup declaration after \"<!\"")

	return nil
}

// parseDottedName reads a tag or attribute name: an identifier, possibly
// continued by '-', '.' or ':' separated identifiers.
func (p *Parser) parseDottedName(c *Cursor) (string, token.Position) {
	id, _ := c.Next()
	ident := id.(*token.Ident)

	name := ident.Value
	span := ident.Position

	for {
		sep := c.Peek(0)
		if !(isPunct(sep, '-') || isPunct(sep, '.') || isPunct(sep, ':')) || !isIdent(c.Peek(1)) {
			break
		}

		c.Next()
		next, _ := c.Next()

		name += sep.Text() + next.Text()
		span.EndPos = next.End()
	}

	return name, span
}

// enclosingOpen reports whether any frame below the current one carries
// the given name.
func (p *Parser) enclosingOpen(name string) bool {
	for i := len(p.open) - 2; i >= 0; i-- {
		if p.open[i].name == name {
			return true
		}
	}

	return false
}

// skipToClose discards the subtree of an over-deep element up to and
// including its matching close tag. Same-name nested elements are
// tracked so the right close tag terminates the skip.
func (p *Parser) skipToClose(c *Cursor, name string) (token.Position, bool) {
	level := 1

	for {
		if c.EOF() {
			return token.Position{}, false
		}

		if p.closeTagAhead(c) {
			fork := c.Fork()
			closeName, closeSpan, _ := readCloseTag(fork)
			c.Sync(fork)

			if closeName == name {
				level--
				if level == 0 {
					return closeSpan, true
				}
			}

			continue
		}

		if p.openTagAhead(c) {
			fork := c.Fork()
			fork.Next() // '<'
			openName, _ := p.parseDottedName(fork)
			selfClosing := scanTagEnd(fork)
			c.Sync(fork)

			if openName == name && !selfClosing {
				level++
			}

			continue
		}

		c.Next()
	}
}

// skipToFragmentClose discards tokens up to and including the matching
// "</>" of an over-deep fragment.
func (p *Parser) skipToFragmentClose(c *Cursor) {
	level := 1

	for {
		if c.EOF() {
			return
		}

		if p.fragmentAhead(c) {
			c.Next()
			c.Next()
			level++

			continue
		}

		if isPunct(c.Peek(0), '<') && isPunct(c.Peek(1), '/') && isPunct(c.Peek(2), '>') {
			c.Next()
			c.Next()
			c.Next()

			level--
			if level == 0 {
				return
			}

			continue
		}

		c.Next()
	}
}

// readCloseTag consumes "</name>" (or "</>" with an empty name) and
// returns the name and the covered span. Junk between the name and '>'
// is skipped.
func readCloseTag(c *Cursor) (string, token.Position, bool) {
	lt, err := c.Next() // '<'
	if err != nil {
		return "", token.Position{}, false
	}

	c.Next() // '/'

	span := token.Position{BeginPos: lt.Begin(), EndPos: lt.End()}

	name := ""
	if isIdent(c.Peek(0)) {
		id, _ := c.Next()
		name = id.(*token.Ident).Value
		span.EndPos = id.End()

		for {
			sep := c.Peek(0)
			if !(isPunct(sep, '-') || isPunct(sep, '.') || isPunct(sep, ':')) || !isIdent(c.Peek(1)) {
				break
			}

			s, _ := c.Next()
			next, _ := c.Next()
			name += s.Text() + next.Text()
			span.EndPos = next.End()
		}
	}

	for !c.EOF() && !isPunct(c.Peek(0), '>') {
		c.Next()
	}

	if gt, err := c.Next(); err == nil {
		span.EndPos = gt.End()
	}

	return name, span, true
}

// scanTagEnd consumes a fork up to and including the '>' of an open tag
// and reports whether the tag was self-closing.
func scanTagEnd(c *Cursor) bool {
	slash := false

	for {
		t := c.Peek(0)
		if t == nil {
			return false
		}

		c.Next()

		if isPunct(t, '>') {
			return slash
		}

		slash = isPunct(t, '/')
	}
}

func (p *Parser) tagSyntaxAhead(c *Cursor) bool {
	if !isPunct(c.Peek(0), '<') {
		return false
	}

	next := c.Peek(1)

	return isIdent(next) || isPunct(next, '/') || isPunct(next, '>') || isPunct(next, '!')
}

func (p *Parser) openTagAhead(c *Cursor) bool {
	return isPunct(c.Peek(0), '<') && isIdent(c.Peek(1))
}

func (p *Parser) closeTagAhead(c *Cursor) bool {
	return isPunct(c.Peek(0), '<') && isPunct(c.Peek(1), '/')
}

func (p *Parser) fragmentAhead(c *Cursor) bool {
	return isPunct(c.Peek(0), '<') && isPunct(c.Peek(1), '>')
}

func (p *Parser) declAhead(c *Cursor) bool {
	return isPunct(c.Peek(0), '<') && isPunct(c.Peek(1), '!')
}

func isBraceGroup(t token.Token) bool {
	g, ok := t.(*token.Group)
	return ok && g.Delim == token.Brace
}

func closeFix(name string) string {
	return "</" + name + ">"
}

func (p *Parser) diag(code Code, fix string, sp []token.Position, format string, args ...any) {
	p.collector.Collect(Diagnostic{
		Severity: p.cfg.SeverityFor(code),
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Spans:    sp,
		Fix:      fix,
	})
}
