// SPDX-FileCopyrightText: © 2025 The gmx authors
// SPDX-License-Identifier: Apache-2.0

package codegen

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gomarkup/gmx/flow"
	"github.com/gomarkup/gmx/parser"
	"github.com/gomarkup/gmx/token"
)

func parseNodes(t *testing.T, text string) []parser.Node {
	t.Helper()

	stream, err := token.TokenizeString("test.gmx", text)
	require.NoError(t, err)

	cfg := parser.DefaultConfig()
	cfg.AllowCustomPrefixes = true
	cfg.AllowSpreadAttributes = true

	root, diags, err := parser.Parse(cfg, stream)
	require.NoError(t, err)
	require.Empty(t, diags)

	out, diags := flow.Expand(root.Children, cfg)
	require.Empty(t, diags)

	return out
}

func TestFileStatic(t *testing.T) {
	nodes := parseNodes(t, `<div class="a" disabled><span>{expr}</span></div>`)

	src, err := File(nodes, Options{Package: "views", FuncName: "Page"})
	require.NoError(t, err)

	want := `// Code generated by gmx; DO NOT EDIT.

package views

import (
	g "maragu.dev/gomponents"
	h "maragu.dev/gomponents/html"
)

func Page() g.Node {
	return h.Div(h.Class("a"), h.Disabled(), h.Span(g.Text(expr)))
}
`

	if diff := cmp.Diff(want, string(src)); diff != "" {
		t.Errorf("generated source mismatch (-want +got):\n%s", diff)
	}
}

func TestFileNonHTMLElement(t *testing.T) {
	nodes := parseNodes(t, `<widget kind="x">hi</widget>`)

	src, err := File(nodes, Options{Package: "views", FuncName: "W"})
	require.NoError(t, err)

	assert.Contains(t, string(src), `g.El("widget", g.Attr("kind", "x"), g.Text("hi"))`)
	assert.NotContains(t, string(src), "gomponents/html")
}

func TestFileNodeExprSplice(t *testing.T) {
	nodes := parseNodes(t, `<div>{Card(user)}</div>`)

	src, err := File(nodes, Options{Package: "views", FuncName: "P"})
	require.NoError(t, err)

	// capitalized calls already yield a Node, no Text wrapping
	assert.Contains(t, string(src), "h.Div(Card(user))")
}

func TestFileBoolAttrExpr(t *testing.T) {
	nodes := parseNodes(t, `<input disabled={locked}/>`)

	src, err := File(nodes, Options{Package: "views", FuncName: "P"})
	require.NoError(t, err)

	assert.Contains(t, string(src), "g.If(locked, h.Disabled())")
}

func TestFileFlow(t *testing.T) {
	nodes := parseNodes(t, `<ul>{for _, it := range items { <li>{it}</li> }}</ul>`)

	src, err := File(nodes, Options{Package: "views", FuncName: "List"})
	require.NoError(t, err)

	got := string(src)
	assert.Contains(t, got, "func() g.Node {")
	assert.Contains(t, got, "var out []g.Node")
	assert.Contains(t, got, "for _, it := range items {")
	assert.Contains(t, got, "out = append(out, h.Li(g.Text(it)))")
	assert.Contains(t, got, "return g.Group(out)")
}

func TestFileIfElse(t *testing.T) {
	nodes := parseNodes(t, `{if ok { <a></a> } else { <b></b> }}`)

	src, err := File(nodes, Options{Package: "views", FuncName: "P"})
	require.NoError(t, err)

	got := string(src)
	assert.Contains(t, got, "if ok {")
	assert.Contains(t, got, "} else {")
	assert.Contains(t, got, "return nil")
}

func TestFileMatch(t *testing.T) {
	nodes := parseNodes(t, `{match state { "on" => { <b>on</b> } }}`)

	src, err := File(nodes, Options{Package: "views", FuncName: "P"})
	require.NoError(t, err)

	got := string(src)
	assert.Contains(t, got, "switch state {")
	assert.Contains(t, got, `case "on":`)
}

func TestFileElementValuedAttr(t *testing.T) {
	nodes := parseNodes(t, `<x icon=<img src="i.png"/>></x>`)

	src, err := File(nodes, Options{Package: "views", FuncName: "P"})
	require.NoError(t, err)

	got := string(src)
	assert.Contains(t, got, `gmxAttr("icon", h.Img(h.Src("i.png")))`)
	assert.Contains(t, got, "func gmxAttr(key string, n g.Node) g.Node {")
	assert.Contains(t, got, `"strings"`)
}

func TestFileInvalidExpression(t *testing.T) {
	nodes := parseNodes(t, "<p>{a ++ b}</p>")

	_, err := File(nodes, Options{Package: "views", FuncName: "P"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a valid Go expression")
	assert.Contains(t, err.Error(), "test.gmx:1:")
}

func TestFileOptionValidation(t *testing.T) {
	nodes := parseNodes(t, "<p></p>")

	_, err := File(nodes, Options{Package: "1bad", FuncName: "P"})
	assert.Error(t, err)

	_, err = File(nodes, Options{Package: "views", FuncName: "func"})
	assert.Error(t, err)
}

func TestFileDeterministic(t *testing.T) {
	nodes := parseNodes(t, `<div id="x"><p>a</p><p>b</p></div>`)

	first, err := File(nodes, Options{Package: "views", FuncName: "P"})
	require.NoError(t, err)

	second, err := File(nodes, Options{Package: "views", FuncName: "P"})
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
}

func TestFuncNameFor(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"user-card.gmx", "UserCard"},
		{"views/page.gmx", "Page"},
		{"nav_bar.gmx", "NavBar"},
		{"index.gmx", "Index"},
		{"1col.gmx", "Template1col"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FuncNameFor(tt.in), tt.in)
	}
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "views/page.gmx.go", Filename("views/page.gmx"))
}
