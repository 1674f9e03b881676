// SPDX-FileCopyrightText: © 2025 The gmx authors
// SPDX-License-Identifier: Apache-2.0

// Package report renders parse diagnostics for terminals. The layout
// follows the usual compiler style: a severity header, the location, the
// offending source line with an underline, and an optional suggestion.
package report

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/gomarkup/gmx/parser"
	"github.com/gomarkup/gmx/token"
)

var (
	errorStyle      = color.New(color.FgRed, color.Bold)
	warningStyle    = color.New(color.FgHiYellow, color.Bold)
	codeStyle       = color.New(color.FgYellow, color.Bold)
	fileStyle       = color.New(color.FgCyan, color.Bold)
	lineStyle       = color.New(color.FgHiBlue, color.Bold)
	messageStyle    = color.New(color.FgRed, color.Bold)
	suggestionStyle = color.New(color.FgGreen, color.Bold)
)

// A Renderer formats diagnostics against the sources they refer to.
// Sources are registered up front; a diagnostic for an unknown file still
// renders, just without a snippet.
type Renderer struct {
	sources map[string][]string
}

func NewRenderer() *Renderer {
	return &Renderer{sources: map[string][]string{}}
}

// AddSource registers the text of a file for snippet rendering.
func (r *Renderer) AddSource(filename, text string) {
	r.sources[filename] = strings.Split(text, "\n")
}

// RenderAll renders every diagnostic, in order.
func (r *Renderer) RenderAll(diags []parser.Diagnostic) string {
	var sb strings.Builder

	for _, d := range diags {
		sb.WriteString(r.Render(d))
	}

	return sb.String()
}

// Render formats a single diagnostic.
func (r *Renderer) Render(d parser.Diagnostic) string {
	var sb strings.Builder

	switch d.Severity {
	case parser.Error:
		sb.WriteString(errorStyle.Sprint("error: "))
	default:
		sb.WriteString(warningStyle.Sprint("warning: "))
	}

	sb.WriteString(codeStyle.Sprintf("%s\n", d.Code))

	if len(d.Spans) == 0 {
		sb.WriteString(messageStyle.Sprintf("%s\n", d.Message))

		return sb.String()
	}

	primary := d.Spans[0]
	width := lineNumWidth(primary)
	padding := strings.Repeat(" ", width+1)

	sb.WriteString(lineStyle.Sprintf("%s--> ", strings.Repeat(" ", width)))
	sb.WriteString(fileStyle.Sprintf("%s\n", primary.Begin().String()))

	r.snippet(&sb, primary, padding, width)

	sb.WriteString(lineStyle.Sprintf("%s= ", padding))
	sb.WriteString(messageStyle.Sprintf("%s\n", d.Message))

	for _, span := range d.Spans[1:] {
		sb.WriteString(lineStyle.Sprintf("%srelated: ", padding))
		sb.WriteString(fileStyle.Sprintf("%s\n", span.Begin().String()))
		r.snippet(&sb, span, padding, width)
	}

	if d.Fix != "" {
		sb.WriteString(suggestionStyle.Sprint("suggestion: "))
		sb.WriteString(lineStyle.Sprintf("%s\n", d.Fix))
	}

	return sb.String()
}

// snippet writes the first source line of a span with an underline. When
// the source is unknown, nothing is written.
func (r *Renderer) snippet(sb *strings.Builder, span token.Position, padding string, width int) {
	begin := span.Begin()

	lines, ok := r.sources[begin.File]
	if !ok || begin.Line < 1 || begin.Line > len(lines) {
		return
	}

	line := lines[begin.Line-1]

	sb.WriteString(lineStyle.Sprintf("%s|\n", padding))
	sb.WriteString(lineStyle.Sprintf("%*d | ", width, begin.Line))
	sb.WriteString(line + "\n")

	start := begin.Col - 1
	if start < 0 || start > len(line) {
		start = 0
	}

	length := underlineLength(span, line, start)

	sb.WriteString(lineStyle.Sprintf("%s| ", padding))
	sb.WriteString(strings.Repeat(" ", start))
	sb.WriteString(messageStyle.Sprintf("%s\n", strings.Repeat("~", length)))
}

// underlineLength covers the span on its first line only; spans reaching
// further are underlined to the end of that line.
func underlineLength(span token.Position, line string, start int) int {
	end := len(line)
	if span.End().Line == span.Begin().Line && span.End().Col-1 <= len(line) {
		end = span.End().Col - 1
	}

	if end <= start {
		return 1
	}

	return end - start
}

func lineNumWidth(span token.Position) int {
	return len(fmt.Sprintf("%d", span.Begin().Line))
}

// Summary condenses a diagnostic list into a one-line count, e.g.
// "2 errors, 1 warning".
func Summary(diags []parser.Diagnostic) string {
	var errs, warns int

	for _, d := range diags {
		if d.Severity == parser.Error {
			errs++
		} else {
			warns++
		}
	}

	var parts []string
	if errs > 0 {
		parts = append(parts, plural(errs, "error"))
	}

	if warns > 0 {
		parts = append(parts, plural(warns, "warning"))
	}

	if len(parts) == 0 {
		return "no problems"
	}

	return strings.Join(parts, ", ")
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}

	return fmt.Sprintf("%d %ss", n, noun)
}
