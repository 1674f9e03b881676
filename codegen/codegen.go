// SPDX-FileCopyrightText: © 2025 The gmx authors
// SPDX-License-Identifier: Apache-2.0

// Package codegen emits Go source files that build a parsed markup tree
// with gomponents calls. The output is deterministic and gofmt-clean,
// meant to be written next to the template and checked in.
package codegen

import (
	"bytes"
	"fmt"
	"go/format"
	"go/printer"
	gotoken "go/token"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/gomarkup/gmx/parser"
)

type Options struct {
	// Package is the package clause of the generated file.
	Package string
	// FuncName is the exported (or unexported) function the template
	// becomes; it takes no arguments and returns a gomponents Node.
	FuncName string
}

// helperAttrNode renders an element-valued attribute to its markup text.
const helperAttrNode = "gmxAttr"

// File generates a complete Go source file for one template tree.
func File(nodes []parser.Node, opts Options) ([]byte, error) {
	if !isGoIdent(opts.Package) {
		return nil, fmt.Errorf("codegen: %q is not a valid package name", opts.Package)
	}

	if !isGoIdent(opts.FuncName) {
		return nil, fmt.Errorf("codegen: %q is not a valid function name", opts.FuncName)
	}

	l := &lowerer{}

	expr, err := l.nodes(nodes)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer

	buf.WriteString("// Code generated by gmx; DO NOT EDIT.\n\n")
	buf.WriteString("package " + opts.Package + "\n\n")

	buf.WriteString("import (\n")
	if l.usesAttrHelper {
		buf.WriteString("\t\"strings\"\n\n")
	}
	buf.WriteString("\tg \"maragu.dev/gomponents\"\n")
	if l.usesHTML {
		buf.WriteString("\th \"maragu.dev/gomponents/html\"\n")
	}
	buf.WriteString(")\n\n")

	buf.WriteString("func " + opts.FuncName + "() g.Node {\n\treturn ")

	if err := printer.Fprint(&buf, gotoken.NewFileSet(), expr); err != nil {
		return nil, fmt.Errorf("codegen: printing %s: %w", opts.FuncName, err)
	}

	buf.WriteString("\n}\n")

	if l.usesAttrHelper {
		buf.WriteString("\nfunc " + helperAttrNode + "(key string, n g.Node) g.Node {\n" +
			"\tvar sb strings.Builder\n" +
			"\t_ = n.Render(&sb)\n" +
			"\treturn g.Attr(key, sb.String())\n" +
			"}\n")
	}

	src, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("codegen: generated source does not format: %w", err)
	}

	return src, nil
}

// Filename maps a template path to its generated sibling, e.g.
// "views/page.gmx" to "views/page.gmx.go".
func Filename(templatePath string) string {
	return templatePath + ".go"
}

// FuncNameFor derives an exported Go identifier from a template file
// name: "user-card.gmx" becomes "UserCard".
func FuncNameFor(filename string) string {
	base := filepath.Base(filename)
	if i := strings.IndexByte(base, '.'); i >= 0 {
		base = base[:i]
	}

	var out []rune
	upper := true

	for _, r := range base {
		if r == '-' || r == '_' || r == ' ' {
			upper = true
			continue
		}

		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}

		if upper {
			r = unicode.ToUpper(r)
			upper = false
		}

		out = append(out, r)
	}

	if len(out) == 0 || unicode.IsDigit(out[0]) {
		return "Template" + string(out)
	}

	return string(out)
}

func isGoIdent(s string) bool {
	if s == "" {
		return false
	}

	for i, r := range s {
		if unicode.IsLetter(r) || r == '_' {
			continue
		}

		if i > 0 && unicode.IsDigit(r) {
			continue
		}

		return false
	}

	_, reserved := goKeywords[s]

	return !reserved
}

var goKeywords = map[string]struct{}{
	"break": {}, "case": {}, "chan": {}, "const": {}, "continue": {},
	"default": {}, "defer": {}, "else": {}, "fallthrough": {}, "for": {},
	"func": {}, "go": {}, "goto": {}, "if": {}, "import": {},
	"interface": {}, "map": {}, "package": {}, "range": {}, "return": {},
	"select": {}, "struct": {}, "switch": {}, "type": {}, "var": {},
}
