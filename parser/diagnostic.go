// SPDX-FileCopyrightText: © 2025 The gmx authors
// SPDX-License-Identifier: Apache-2.0

package parser

import (
	"fmt"
	"strings"

	"github.com/gomarkup/gmx/token"
)

// Severity classifies how bad a Diagnostic is.
type Severity int

const (
	Warning Severity = iota
	Error
)

func (s Severity) String() string {
	if s == Error {
		return "error"
	}

	return "warning"
}

// Code identifies the kind of a Diagnostic.
type Code string

const (
	// LexicalMismatch is a close tag whose name differs from its open tag,
	// or a close tag with no open tag at all.
	LexicalMismatch Code = "lexical-mismatch"
	// UnclosedElement is an element or markup construct still open when
	// the input ends.
	UnclosedElement Code = "unclosed-element"
	// MalformedAttribute is an attribute whose key or value could not be
	// parsed as a literal or expression.
	MalformedAttribute Code = "malformed-attribute"
	// DuplicateAttribute is a repeated attribute key on one tag.
	DuplicateAttribute Code = "duplicate-attribute"
	// UnsupportedConstruct is a construct gated off by the configuration.
	UnsupportedConstruct Code = "unsupported-construct"
	// DepthLimitExceeded is markup nested deeper than Config.MaxDepth.
	DepthLimitExceeded Code = "depth-limit-exceeded"
)

var knownCodes = map[Code]bool{
	LexicalMismatch:      true,
	UnclosedElement:      true,
	MalformedAttribute:   true,
	DuplicateAttribute:   true,
	UnsupportedConstruct: true,
	DepthLimitExceeded:   true,
}

// defaultSeverities maps structural problems to errors and stylistic ones
// to warnings.
var defaultSeverities = map[Code]Severity{
	LexicalMismatch:      Error,
	UnclosedElement:      Error,
	MalformedAttribute:   Error,
	DuplicateAttribute:   Warning,
	UnsupportedConstruct: Error,
	DepthLimitExceeded:   Error,
}

// A Diagnostic is one recoverable parse problem. Diagnostics are values,
// never panics or returned errors: the parser records them and keeps
// going, and the caller decides whether any of them block compilation.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	// Spans holds at least one source span; the first one is the primary
	// location, later ones point at related regions (e.g. the open tag a
	// close tag failed to match).
	Spans []token.Position
	// Fix optionally holds replacement text for the primary span.
	Fix string
}

func (d Diagnostic) String() string {
	var sb strings.Builder

	if len(d.Spans) > 0 {
		sb.WriteString(d.Spans[0].Begin().String())
		sb.WriteString(": ")
	}

	fmt.Fprintf(&sb, "%s: %s (%s)", d.Severity, d.Message, d.Code)

	return sb.String()
}

// A Collector accumulates diagnostics for one parse invocation. It is
// append-only and not safe for concurrent use; concurrent parses each get
// their own collector.
type Collector struct {
	diags []Diagnostic
}

func NewCollector() *Collector {
	return &Collector{}
}

// Collect appends a diagnostic.
func (c *Collector) Collect(d Diagnostic) {
	c.diags = append(c.diags, d)
}

// Diagnostics returns all collected diagnostics in emission order.
func (c *Collector) Diagnostics() []Diagnostic {
	return c.diags
}

// HasErrors reports whether any collected diagnostic is an error.
func (c *Collector) HasErrors() bool {
	for _, d := range c.diags {
		if d.Severity == Error {
			return true
		}
	}

	return false
}

// HasErrors reports whether any diagnostic in the list is an error.
func HasErrors(diags []Diagnostic) bool {
	for _, d := range diags {
		if d.Severity == Error {
			return true
		}
	}

	return false
}
