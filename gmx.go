// SPDX-FileCopyrightText: © 2025 The gmx authors
// SPDX-License-Identifier: Apache-2.0

// Package gmx parses an XML-like markup dialect that is embedded in
// pre-tokenized source, producing a node tree plus recoverable
// diagnostics instead of failing on the first problem.
//
// The subpackages do the work: token holds the lexer and source
// positions, parser the tree and diagnostics, flow the control-flow
// extension, encoder and codegen the gomponents backends. This package
// ties lexing, parsing and flow expansion together for the common case.
package gmx

import (
	"io"

	"github.com/gomarkup/gmx/flow"
	"github.com/gomarkup/gmx/parser"
	"github.com/gomarkup/gmx/token"
)

// Result is a completed parse. Nodes is always a usable tree, even when
// Diagnostics carries errors.
type Result struct {
	Nodes       []parser.Node
	Diagnostics []parser.Diagnostic
}

// HasErrors reports whether any diagnostic has error severity.
// Warnings alone leave a result acceptable.
func (r *Result) HasErrors() bool {
	return parser.HasErrors(r.Diagnostics)
}

// Parse lexes and parses markup from r. Control-flow expression blocks
// are expanded when AllowCustomPrefixes is set; without it they stay raw
// expressions and are flagged.
//
// The returned error is fatal: unbalanced delimiters from the lexer or
// an invalid configuration. Everything recoverable lands in
// Result.Diagnostics.
func Parse(filename string, r io.Reader, cfg parser.Config) (*Result, error) {
	stream, err := token.Tokenize(filename, r)
	if err != nil {
		return nil, err
	}

	return parseStream(stream, cfg)
}

// ParseString is Parse for in-memory sources.
func ParseString(filename, text string, cfg parser.Config) (*Result, error) {
	stream, err := token.TokenizeString(filename, text)
	if err != nil {
		return nil, err
	}

	return parseStream(stream, cfg)
}

func parseStream(stream token.Stream, cfg parser.Config) (*Result, error) {
	root, diags, err := parser.Parse(cfg, stream)
	if err != nil {
		return nil, err
	}

	nodes, flowDiags := flow.Expand(root.Children, cfg)
	diags = append(diags, flowDiags...)

	return &Result{Nodes: nodes, Diagnostics: diags}, nil
}
