// SPDX-FileCopyrightText: © 2025 The gmx authors
// SPDX-License-Identifier: Apache-2.0

package parser

import (
	"fmt"
	"strings"
	"testing"

	"github.com/r3labs/diff/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gomarkup/gmx/token"
)

func mustParse(t *testing.T, cfg Config, text string) (*Fragment, []Diagnostic) {
	t.Helper()

	stream, err := token.TokenizeString("test.gmx", text)
	require.NoError(t, err)

	root, diags, err := Parse(cfg, stream)
	require.NoError(t, err)

	return root, diags
}

// dump renders a tree in a compact one-node-per-line form, so tests can
// state the expected shape as a literal.
func dump(nodes []Node) string {
	var sb strings.Builder
	dumpInto(&sb, nodes, 0)

	return strings.TrimRight(sb.String(), "\n")
}

func dumpInto(sb *strings.Builder, nodes []Node, indent int) {
	pad := strings.Repeat("  ", indent)

	for _, n := range nodes {
		switch n := n.(type) {
		case *Element:
			sb.WriteString(pad + "<" + n.Name)
			for _, a := range n.Attributes {
				sb.WriteString(" " + dumpAttr(a))
			}
			if n.SelfClosing {
				sb.WriteString("/>\n")
			} else {
				sb.WriteString(">\n")
				dumpInto(sb, n.Children, indent+1)
			}
		case *Fragment:
			sb.WriteString(pad + "<>\n")
			dumpInto(sb, n.Children, indent+1)
		case *Text:
			fmt.Fprintf(sb, "%s%q\n", pad, n.Value)
		case *RawExpr:
			sb.WriteString(pad + "{" + n.Tokens.Text() + "}\n")
		case *Comment:
			fmt.Fprintf(sb, "%s<!-- %q\n", pad, n.Value)
		case *Doctype:
			fmt.Fprintf(sb, "%s<!doctype %s\n", pad, n.Value)
		case *Custom:
			sb.WriteString(pad + "@" + n.Name + "\n")
			for _, s := range n.Sections {
				fmt.Fprintf(sb, "%s  :%s (%s)\n", pad, s.Label, s.Tokens.Text())
				dumpInto(sb, s.Children, indent+2)
			}
		}
	}
}

func dumpAttr(a Attribute) string {
	if a.Spread {
		return "{" + a.Tokens.Text() + "}"
	}

	if a.Value == nil {
		return a.Key
	}

	switch a.Value.Kind {
	case ValueLiteral:
		return fmt.Sprintf("%s=%q", a.Key, a.Value.Literal)
	case ValueExpr:
		return a.Key + "={" + a.Value.Tokens.Text() + "}"
	default:
		return a.Key + "=<" + a.Value.Element.Name + ">"
	}
}

func codes(diags []Diagnostic) []Code {
	var cs []Code
	for _, d := range diags {
		cs = append(cs, d.Code)
	}

	return cs
}

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		want  string
		codes []Code
	}{
		{
			name: "empty input",
			text: "",
			want: "",
		},
		{
			name: "plain text",
			text: "hello world",
			want: `"hello world"`,
		},
		{
			name: "self closing element",
			text: "<br/>",
			want: "<br/>",
		},
		{
			name: "element with children",
			text: `<div class="a" disabled><span>{expr}</span></div>`,
			want: `<div class="a" disabled>
  <span>
    {expr}`,
		},
		{
			name: "fragment",
			text: "<>a<b/></>",
			want: `<>
  "a"
  <b/>`,
		},
		{
			name: "dotted and namespaced names",
			text: `<ui.card data-id="1" xlink:href="x"/>`,
			want: `<ui.card data-id="1" xlink:href="x"/>`,
		},
		{
			name: "braced expression between siblings",
			text: "<p>count is {count + 1}!</p>",
			want: `<p>
  "count is"
  {count + 1}
  "!"`,
		},
		{
			name: "attribute value kinds",
			text: `<a s="x" n=42 e={f(y)} el=<Icon kind="warn"/>/>`,
			want: `<a s="x" n="42" e={f(y)} el=<Icon>/>`,
		},
		{
			name: "comment and doctype",
			text: "<!doctype html><!-- a note --><p></p>",
			want: `<!doctype html
<!-- "a note"
<p>`,
		},
		{
			name: "lone less-than folds into text",
			text: "a < 3",
			want: `"a < 3"`,
		},
		{
			name:  "less-than before ident starts a tag",
			text:  "a < b",
			want:  "\"a\"\n<b>",
			codes: []Code{UnclosedElement},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root, diags := mustParse(t, DefaultConfig(), tt.text)

			assert.Equal(t, tt.want, dump(root.Children))
			assert.Equal(t, tt.codes, codes(diags))
		})
	}
}

func TestParseRecovery(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		want  string
		codes []Code
	}{
		{
			name: "mismatched close tag closes inner implicitly",
			text: "<a><b></a>",
			want: `<a>
  <b>`,
			codes: []Code{LexicalMismatch},
		},
		{
			name: "mismatched close tag consumed when nothing encloses",
			text: "<a>x</b><c/>",
			want: `<a>
  "x"
<c/>`,
			codes: []Code{LexicalMismatch},
		},
		{
			name:  "stray close tag at the root",
			text:  "</x>hello",
			want:  `"hello"`,
			codes: []Code{LexicalMismatch},
		},
		{
			name: "unclosed elements at end of input",
			text: "<a><b>",
			want: `<a>
  <b>`,
			codes: []Code{UnclosedElement, UnclosedElement},
		},
		{
			name:  "input ends inside an open tag",
			text:  `<a href="x"`,
			want:  `<a href="x">`,
			codes: []Code{UnclosedElement},
		},
		{
			name:  "unterminated comment",
			text:  "<!-- oops",
			want:  `<!-- "oops"`,
			codes: []Code{UnclosedElement},
		},
		{
			name: "fragment closed by ancestor element",
			text: "<a><>x</a>",
			want: `<a>
  <>
    "x"`,
			codes: []Code{LexicalMismatch},
		},
		{
			name:  "garbage inside open tag",
			text:  `<a = href="x">y</a>`,
			want:  "<a href=\"x\">\n  \"y\"",
			codes: []Code{MalformedAttribute},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root, diags := mustParse(t, DefaultConfig(), tt.text)

			assert.Equal(t, tt.want, dump(root.Children))
			assert.Equal(t, tt.codes, codes(diags))
		})
	}
}

func TestParseMismatchSpans(t *testing.T) {
	root, diags := mustParse(t, DefaultConfig(), "<a><b></a>")

	require.Len(t, diags, 1)

	d := diags[0]
	assert.Equal(t, LexicalMismatch, d.Code)
	assert.Equal(t, Error, d.Severity)
	assert.Equal(t, "</b>", d.Fix)

	// both sides of the mismatch are anchored: the open tag name of <b>
	// and the whole </a> close tag
	require.Len(t, d.Spans, 2)
	assert.Equal(t, 4, d.Spans[0].Begin().Offset)
	assert.Equal(t, 6, d.Spans[1].Begin().Offset)
	assert.Equal(t, 10, d.Spans[1].End().Offset)

	// the close tag still closed <a>
	el := root.Children[0].(*Element)
	assert.Equal(t, "a", el.Name)
	assert.Equal(t, 10, el.End().Offset)
}

func TestParseDuplicateAttributes(t *testing.T) {
	t.Run("kept by default, last wins", func(t *testing.T) {
		root, diags := mustParse(t, DefaultConfig(), `<x a="1" a="2"/>`)

		el := root.Children[0].(*Element)
		require.Len(t, el.Attributes, 2)

		a, ok := el.Attributes.Get("a")
		require.True(t, ok)
		assert.Equal(t, "2", a.Value.Literal)

		require.Len(t, diags, 1)
		assert.Equal(t, DuplicateAttribute, diags[0].Code)
		assert.Equal(t, Warning, diags[0].Severity)
		assert.False(t, HasErrors(diags))
	})

	t.Run("deduped on request", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.DedupeAttributes = true

		root, diags := mustParse(t, cfg, `<x a="1" b a="2"/>`)

		el := root.Children[0].(*Element)
		assert.Equal(t, `<x b a="2"/>`, dump([]Node{el}))
		assert.Equal(t, []Code{DuplicateAttribute}, codes(diags))
	})
}

func TestParseDepthLimit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxDepth = 2

	root, diags := mustParse(t, cfg, "<a><b><c>deep</c></b>after</a>")

	assert.Equal(t, []Code{DepthLimitExceeded}, codes(diags))

	// the subtree of <b> is truncated, but parsing resumes behind it
	assert.Equal(t, `<a>
  <b>
  "after"`, dump(root.Children))
}

func TestParseSpreadAttributes(t *testing.T) {
	t.Run("disabled by default", func(t *testing.T) {
		root, diags := mustParse(t, DefaultConfig(), "<x {props}/>")

		assert.Equal(t, "<x/>", dump(root.Children))
		assert.Equal(t, []Code{UnsupportedConstruct}, codes(diags))
	})

	t.Run("enabled", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.AllowSpreadAttributes = true

		root, diags := mustParse(t, cfg, "<x {props} id={id}/>")

		assert.Empty(t, diags)
		assert.Equal(t, "<x {props} id={id}/>", dump(root.Children))
	})
}

func TestParseUnclosedDowngrade(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AllowUnclosedElements = true

	_, diags := mustParse(t, cfg, "<a><b>")

	require.Len(t, diags, 2)
	for _, d := range diags {
		assert.Equal(t, Warning, d.Severity)
	}

	assert.False(t, HasErrors(diags))
}

func TestParseSeverityOverride(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Severities = map[Code]Severity{DuplicateAttribute: Error}

	_, diags := mustParse(t, cfg, `<x a="1" a="2"/>`)

	require.Len(t, diags, 1)
	assert.True(t, HasErrors(diags))
}

func TestParseTrimText(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TrimText = true

	root, diags := mustParse(t, cfg, "<p>\n  hi there\n</p>")

	assert.Empty(t, diags)
	assert.Equal(t, "<p>\n  \"hi there\"", dump(root.Children))
}

func TestParseTreeShape(t *testing.T) {
	root, diags := mustParse(t, DefaultConfig(), `<p id="x">hi</p>`)
	require.Empty(t, diags)

	want := &Fragment{
		Children: []Node{
			&Element{
				Name: "p",
				Attributes: Attributes{{
					Key:   "id",
					Value: &Value{Kind: ValueLiteral, Literal: "x"},
				}},
				Children: []Node{&Text{Value: "hi"}},
			},
		},
	}

	stripSpans(root)

	changes, err := diff.Diff(want, root)
	require.NoError(t, err)
	assert.Empty(t, changes)
}

// stripSpans zeroes every position in the tree so diffs only see shape.
func stripSpans(n Node) {
	zero := token.Position{}

	switch n := n.(type) {
	case *Element:
		n.Position = zero
		n.NameSpan = zero
		n.OpenSpan = zero
		n.CloseSpan = zero

		for i := range n.Attributes {
			n.Attributes[i].Position = zero
			n.Attributes[i].KeySpan = zero
			n.Attributes[i].Tokens = nil

			if v := n.Attributes[i].Value; v != nil {
				v.Position = zero
				v.Tokens = nil
				if v.Element != nil {
					stripSpans(v.Element)
				}
			}
		}

		for _, c := range n.Children {
			stripSpans(c)
		}
	case *Fragment:
		n.Position = zero
		for _, c := range n.Children {
			stripSpans(c)
		}
	case *Text:
		n.Position = zero
	case *RawExpr:
		n.Position = zero
		n.Tokens = nil
	case *Comment:
		n.Position = zero
	case *Doctype:
		n.Position = zero
	case *Custom:
		n.Position = zero
		for i := range n.Sections {
			n.Sections[i].Position = zero
			n.Sections[i].Tokens = nil
			for _, c := range n.Sections[i].Children {
				stripSpans(c)
			}
		}
	}
}

func TestParseLargeFlatInput(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 300; i++ {
		fmt.Fprintf(&sb, "<li id=\"i%d\">item</li>", i)
	}

	root, diags := mustParse(t, DefaultConfig(), sb.String())

	assert.Empty(t, diags)
	assert.Len(t, root.Children, 300)
}
