// SPDX-FileCopyrightText: © 2025 The gmx authors
// SPDX-License-Identifier: Apache-2.0

// Package encoder renders a parsed markup tree into gomponents nodes.
//
// Static trees render without help. Raw expressions and custom nodes
// have no value at render time, so the caller supplies a Resolver that
// maps them to gomponents nodes; without one they are an error.
package encoder

import (
	"fmt"
	"strings"

	g "maragu.dev/gomponents"

	"github.com/gomarkup/gmx/parser"
	"github.com/gomarkup/gmx/token"
)

// A Resolver supplies render-time values for the dynamic parts of a
// tree. Expr handles `{…}` in child position, AttrValue handles `{…}`
// attribute values and spreads (spreads come with an empty key), Custom
// handles extension nodes such as the flow package's output.
type Resolver interface {
	Expr(tokens token.Stream, span token.Position) (g.Node, error)
	AttrValue(key string, tokens token.Stream, span token.Position) (g.Node, error)
	Custom(c *parser.Custom) (g.Node, error)
}

type Options struct {
	// Resolver may be nil for fully static trees.
	Resolver Resolver
}

// Render converts a tree into a single gomponents node. More than one
// root renders as a group.
func Render(nodes []parser.Node, opts Options) (g.Node, error) {
	out, err := renderNodes(nodes, opts)
	if err != nil {
		return nil, err
	}

	if len(out) == 1 {
		return out[0], nil
	}

	return g.Group(out), nil
}

// RenderString renders a tree straight to markup text.
func RenderString(nodes []parser.Node, opts Options) (string, error) {
	node, err := Render(nodes, opts)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	if err := node.Render(&sb); err != nil {
		return "", err
	}

	return sb.String(), nil
}

func renderNodes(nodes []parser.Node, opts Options) ([]g.Node, error) {
	var out []g.Node

	for _, n := range nodes {
		r, err := renderNode(n, opts)
		if err != nil {
			return nil, err
		}

		if r != nil {
			out = append(out, r)
		}
	}

	return out, nil
}

func renderNode(n parser.Node, opts Options) (g.Node, error) {
	switch n := n.(type) {
	case *parser.Element:
		return renderElement(n, opts)
	case *parser.Fragment:
		children, err := renderNodes(n.Children, opts)
		if err != nil {
			return nil, err
		}

		return g.Group(children), nil
	case *parser.Text:
		return g.Text(n.Value), nil
	case *parser.Comment:
		return g.Raw("<!--" + n.Value + "-->"), nil
	case *parser.Doctype:
		return g.Raw("<!doctype " + n.Value + ">"), nil
	case *parser.RawExpr:
		if opts.Resolver == nil {
			return nil, posErr(n.Begin(), "raw expression {%s} requires a resolver", n.Tokens.Text())
		}

		return opts.Resolver.Expr(n.Tokens, n.Position)
	case *parser.Custom:
		if opts.Resolver == nil {
			return nil, posErr(n.Begin(), "custom node %q requires a resolver", n.Name)
		}

		return opts.Resolver.Custom(n)
	default:
		return nil, posErr(n.Begin(), "cannot render node type %T", n)
	}
}

func renderElement(el *parser.Element, opts Options) (g.Node, error) {
	var args []g.Node

	for _, a := range el.Attributes {
		node, err := renderAttr(a, opts)
		if err != nil {
			return nil, err
		}

		args = append(args, node)
	}

	children, err := renderNodes(el.Children, opts)
	if err != nil {
		return nil, err
	}

	return g.El(el.Name, append(args, children...)...), nil
}

func renderAttr(a parser.Attribute, opts Options) (g.Node, error) {
	if a.Spread {
		if opts.Resolver == nil {
			return nil, posErr(a.Begin(), "spread attribute {%s} requires a resolver", a.Tokens.Text())
		}

		return opts.Resolver.AttrValue("", a.Tokens, a.Position)
	}

	if a.IsBoolean() {
		return g.Attr(a.Key), nil
	}

	switch a.Value.Kind {
	case parser.ValueLiteral:
		return g.Attr(a.Key, a.Value.Literal), nil
	case parser.ValueExpr:
		if opts.Resolver == nil {
			return nil, posErr(a.Begin(), "attribute %q has an expression value and requires a resolver", a.Key)
		}

		return opts.Resolver.AttrValue(a.Key, a.Value.Tokens, a.Value.Position)
	default:
		// an element as attribute value has no meaning in flat markup
		return nil, posErr(a.Begin(), "attribute %q holds an element value, which only code generation supports", a.Key)
	}
}

func posErr(pos token.Pos, format string, args ...any) error {
	return fmt.Errorf("%s: %s", pos.String(), fmt.Sprintf(format, args...))
}
