// SPDX-FileCopyrightText: © 2025 The gmx authors
// SPDX-License-Identifier: Apache-2.0

package parser

import (
	"github.com/gomarkup/gmx/token"
)

// A Node is one parsed unit of markup. The set of variants is closed:
// Element, Fragment, Text, RawExpr, Comment, Doctype and Custom. Visitors
// can therefore match exhaustively without an "unknown node" fallback.
type Node interface {
	token.Node
	node()
}

// An Element is a named tag with attributes and children.
type Element struct {
	token.Position
	Name string
	// NameSpan covers the tag name in the open tag.
	NameSpan   token.Position
	Attributes Attributes
	Children   []Node
	// SelfClosing is set for elements terminated with "/>".
	SelfClosing bool
	// OpenSpan covers "<name ...>".
	OpenSpan token.Position
	// CloseSpan covers "</name>". It is the zero span for self-closing
	// elements and for elements whose close tag had to be synthesized.
	CloseSpan token.Position
}

func (*Element) node() {}

// A Fragment is a tagless sequence of children: the implicit document
// root, or an explicit "<>...</>" region.
type Fragment struct {
	token.Position
	Children []Node
}

func (*Fragment) node() {}

// A Text node is a run of adjacent non-markup tokens. Its value is
// reconstructed from the tokens, so original layout is approximated, not
// preserved.
type Text struct {
	token.Position
	Value string
}

func (*Text) node() {}

// A RawExpr is an embedded braced expression, kept as an opaque token
// stream for the backend to interpret.
type RawExpr struct {
	token.Position
	Tokens token.Stream
}

func (*RawExpr) node() {}

// A Comment is "<!-- ... -->" with the literal payload.
type Comment struct {
	token.Position
	Value string
}

func (*Comment) node() {}

// A Doctype is "<!DOCTYPE ...>" with the literal payload after the
// keyword.
type Doctype struct {
	token.Position
	Value string
}

func (*Doctype) node() {}

// A Custom node is an extension variant, produced by visitors such as the
// flow package, never by the core parser itself. It carries a
// discriminant plus one or more labelled sections of child nodes.
type Custom struct {
	token.Position
	Name     string
	Sections []Section
}

func (*Custom) node() {}

// A Section is one labelled part of a Custom node, e.g. the "then" and
// "else" branches of a conditional.
type Section struct {
	token.Position
	Label string
	// Tokens holds the section's head expression, like a loop header or a
	// match pattern. May be empty.
	Tokens   token.Stream
	Children []Node
}

// ValueKind classifies an attribute value.
type ValueKind int

const (
	// ValueLiteral is a string or number literal.
	ValueLiteral ValueKind = iota
	// ValueExpr is a raw expression, either a braced group or any value
	// under the attribute-value-as-expression option.
	ValueExpr
	// ValueElement is a nested short element value, like on="<error/>".
	ValueElement
)

// A Value is an attribute value.
type Value struct {
	token.Position
	Kind ValueKind
	// Literal holds the unescaped literal text for ValueLiteral.
	Literal string
	// Tokens holds the expression stream for ValueExpr.
	Tokens token.Stream
	// Element holds the nested element for ValueElement.
	Element *Element
}

// An Attribute is one key/value pair of a tag. A nil Value means the
// attribute is boolean ("present"). A spread attribute has no key at
// all; its expression stream is in Tokens.
type Attribute struct {
	token.Position
	Key string
	// KeySpan covers the key only.
	KeySpan token.Position
	Spread  bool
	// Tokens holds the spread expression when Spread is set.
	Tokens token.Stream
	Value  *Value
}

// IsBoolean reports whether the attribute was written without a value.
func (a Attribute) IsBoolean() bool {
	return !a.Spread && a.Value == nil
}

// Attributes is the ordered attribute list of one tag. Duplicates are
// retained unless the configuration deduplicates them.
type Attributes []Attribute

// Get returns the attribute for key. With duplicates retained, the last
// occurrence wins.
func (as Attributes) Get(key string) (Attribute, bool) {
	for i := len(as) - 1; i >= 0; i-- {
		if !as[i].Spread && as[i].Key == key {
			return as[i], true
		}
	}

	return Attribute{}, false
}

// Has reports whether key is present.
func (as Attributes) Has(key string) bool {
	_, ok := as.Get(key)
	return ok
}
