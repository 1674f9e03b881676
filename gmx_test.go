// SPDX-FileCopyrightText: © 2025 The gmx authors
// SPDX-License-Identifier: Apache-2.0

package gmx

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gomarkup/gmx/parser"
	"github.com/gomarkup/gmx/token"
)

func TestParse(t *testing.T) {
	res, err := Parse("page.gmx", strings.NewReader(`<div id="x">hi</div>`), parser.DefaultConfig())
	require.NoError(t, err)

	assert.False(t, res.HasErrors())
	require.Len(t, res.Nodes, 1)

	el := res.Nodes[0].(*parser.Element)
	assert.Equal(t, "div", el.Name)
}

func TestParseStringCollectsDiagnostics(t *testing.T) {
	res, err := ParseString("page.gmx", "<a><b></a>", parser.DefaultConfig())
	require.NoError(t, err)

	assert.True(t, res.HasErrors())
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, parser.LexicalMismatch, res.Diagnostics[0].Code)

	// the tree is still usable
	require.Len(t, res.Nodes, 1)
}

func TestParseStringExpandsFlow(t *testing.T) {
	cfg := parser.DefaultConfig()
	cfg.AllowCustomPrefixes = true

	res, err := ParseString("page.gmx", "{if ok { <a></a> }}", cfg)
	require.NoError(t, err)
	require.Empty(t, res.Diagnostics)

	custom, ok := res.Nodes[0].(*parser.Custom)
	require.True(t, ok)
	assert.Equal(t, "if", custom.Name)
}

func TestParseStringFlowDisabled(t *testing.T) {
	res, err := ParseString("page.gmx", "{if ok { <a></a> }}", parser.DefaultConfig())
	require.NoError(t, err)

	// without the prefix option the block stays a raw expression and
	// gets flagged
	_, ok := res.Nodes[0].(*parser.RawExpr)
	assert.True(t, ok)
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, parser.UnsupportedConstruct, res.Diagnostics[0].Code)
}

func TestParseUnbalancedDelimiterIsFatal(t *testing.T) {
	_, err := ParseString("page.gmx", "<p>{oops</p>", parser.DefaultConfig())
	require.Error(t, err)

	var posErr *token.PosError
	assert.ErrorAs(t, err, &posErr)
}
