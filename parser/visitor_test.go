// SPDX-FileCopyrightText: © 2025 The gmx authors
// SPDX-License-Identifier: Apache-2.0

package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWalk(t *testing.T) {
	root, diags := mustParse(t, DefaultConfig(),
		`<div icon=<Warning/>><span>a</span>{expr}</div><>b</>`)
	require.Empty(t, diags)

	var visited []string
	Walk(root.Children, func(n Node) bool {
		switch n := n.(type) {
		case *Element:
			visited = append(visited, n.Name)
		case *Fragment:
			visited = append(visited, "<>")
		case *Text:
			visited = append(visited, "t:"+n.Value)
		case *RawExpr:
			visited = append(visited, "x:"+n.Tokens.Text())
		}

		return true
	})

	assert.Equal(t, []string{"div", "Warning", "span", "t:a", "x:expr", "<>", "t:b"}, visited)
}

func TestWalkSkipsChildren(t *testing.T) {
	root, diags := mustParse(t, DefaultConfig(), "<a><b><c/></b></a><d/>")
	require.Empty(t, diags)

	var visited []string
	Walk(root.Children, func(n Node) bool {
		el, ok := n.(*Element)
		if !ok {
			return true
		}

		visited = append(visited, el.Name)

		return el.Name != "b"
	})

	assert.Equal(t, []string{"a", "b", "d"}, visited)
}

func TestRewrite(t *testing.T) {
	root, diags := mustParse(t, DefaultConfig(), "<p>{greeting}</p>")
	require.Empty(t, diags)

	out := Rewrite(root.Children, func(r *RawExpr) Node {
		return &Text{Position: r.Position, Value: "hello"}
	})

	assert.Equal(t, `<p>
  "hello"`, dump(out))

	// the input tree is untouched
	assert.Equal(t, `<p>
  {greeting}`, dump(root.Children))
}

func TestRewriteKeepsNodeOnNil(t *testing.T) {
	root, diags := mustParse(t, DefaultConfig(), "{a}{b}")
	require.Empty(t, diags)

	out := Rewrite(root.Children, func(r *RawExpr) Node {
		if r.Tokens.Text() == "a" {
			return &Text{Value: "A"}
		}

		return nil
	})

	assert.Equal(t, "\"A\"\n{b}", dump(out))
}
