// SPDX-FileCopyrightText: © 2025 The gmx authors
// SPDX-License-Identifier: Apache-2.0

package codegen

import (
	"fmt"
	goast "go/ast"
	goparser "go/parser"
	gotoken "go/token"

	"github.com/gomarkup/gmx/parser"
	"github.com/gomarkup/gmx/token"
)

// lowerer turns a markup tree into Go expressions over gomponents.
// It records which imports the generated code ends up needing.
type lowerer struct {
	usesHTML       bool
	usesAttrHelper bool
}

// nodes lowers a node list to a single expression evaluating to a
// gomponents Node.
func (l *lowerer) nodes(nodes []parser.Node) (goast.Expr, error) {
	if len(nodes) == 0 {
		return goast.NewIdent("nil"), nil
	}

	if len(nodes) == 1 {
		return l.node(nodes[0])
	}

	elts := make([]goast.Expr, 0, len(nodes))
	for _, n := range nodes {
		ex, err := l.node(n)
		if err != nil {
			return nil, err
		}

		elts = append(elts, ex)
	}

	return call(sel("g", "Group"), nodeSlice(elts)), nil
}

func (l *lowerer) node(n parser.Node) (goast.Expr, error) {
	switch n := n.(type) {
	case *parser.Text:
		return call(sel("g", "Text"), strLit(n.Value)), nil
	case *parser.Comment:
		return call(sel("g", "Raw"), strLit("<!--"+n.Value+"-->")), nil
	case *parser.Doctype:
		return call(sel("g", "Raw"), strLit("<!doctype "+n.Value+">")), nil
	case *parser.Fragment:
		return l.nodes(n.Children)
	case *parser.RawExpr:
		return l.expr(n.Tokens, n.Position)
	case *parser.Element:
		return l.element(n)
	case *parser.Custom:
		return l.custom(n)
	default:
		return nil, fmt.Errorf("%s: cannot generate code for node type %T", n.Begin(), n)
	}
}

// expr splices a raw expression. Calls to capitalized functions are
// assumed to already yield a Node (Div/If/MyComponent); everything else
// is wrapped in Text and left to the Go compiler to typecheck.
func (l *lowerer) expr(tokens token.Stream, span token.Position) (goast.Expr, error) {
	ex, err := parseGoExpr(tokens, span)
	if err != nil {
		return nil, err
	}

	if isLikelyNodeExpr(ex) {
		return ex, nil
	}

	return call(sel("g", "Text"), ex), nil
}

func (l *lowerer) element(el *parser.Element) (goast.Expr, error) {
	var args []goast.Expr

	// attrs first, then children
	for _, a := range el.Attributes {
		ax, err := l.attr(a)
		if err != nil {
			return nil, err
		}

		args = append(args, ax)
	}

	for _, c := range el.Children {
		cx, err := l.node(c)
		if err != nil {
			return nil, err
		}

		args = append(args, cx)
	}

	if fn := htmlElementFunc(el.Name); fn != "" {
		l.usesHTML = true
		return call(sel("h", fn), args...), nil
	}

	return call(sel("g", "El"), append([]goast.Expr{strLit(el.Name)}, args...)...), nil
}

func (l *lowerer) attr(a parser.Attribute) (goast.Expr, error) {
	if a.Spread {
		// a spread must evaluate to a Node carrying attributes
		return parseGoExpr(a.Tokens, a.Position)
	}

	if a.IsBoolean() {
		if fn := htmlBoolAttrFunc(a.Key); fn != "" {
			l.usesHTML = true
			return call(sel("h", fn)), nil
		}

		return call(sel("g", "Attr"), strLit(a.Key)), nil
	}

	switch a.Value.Kind {
	case parser.ValueLiteral:
		if fn := htmlStringAttrFunc(a.Key); fn != "" {
			l.usesHTML = true
			return call(sel("h", fn), strLit(a.Value.Literal)), nil
		}

		return call(sel("g", "Attr"), strLit(a.Key), strLit(a.Value.Literal)), nil
	case parser.ValueExpr:
		ex, err := parseGoExpr(a.Value.Tokens, a.Value.Position)
		if err != nil {
			return nil, err
		}

		// `disabled={cond}` includes the attribute only when cond holds
		if fn := htmlBoolAttrFunc(a.Key); fn != "" {
			l.usesHTML = true
			return call(sel("g", "If"), ex, call(sel("h", fn))), nil
		}

		if fn := htmlStringAttrFunc(a.Key); fn != "" {
			l.usesHTML = true
			return call(sel("h", fn), ex), nil
		}

		return call(sel("g", "Attr"), strLit(a.Key), ex), nil
	default:
		// element value: serialize it and pass the markup as the string
		return l.elementValueAttr(a)
	}
}

func (l *lowerer) elementValueAttr(a parser.Attribute) (goast.Expr, error) {
	ex, err := l.element(a.Value.Element)
	if err != nil {
		return nil, err
	}

	// gmxAttr is emitted once per generated file, see codegen.go
	l.usesAttrHelper = true

	return call(goast.NewIdent(helperAttrNode), strLit(a.Key), ex), nil
}

// custom lowers control-flow nodes into immediately invoked function
// literals, so a branch or loop fits where an expression is expected.
func (l *lowerer) custom(c *parser.Custom) (goast.Expr, error) {
	switch c.Name {
	case "if":
		return l.lowerIf(c)
	case "for":
		return l.lowerFor(c)
	case "match":
		return l.lowerMatch(c)
	default:
		return nil, fmt.Errorf("%s: cannot generate code for custom node %q", c.Begin(), c.Name)
	}
}

func (l *lowerer) lowerIf(c *parser.Custom) (goast.Expr, error) {
	var (
		first *goast.IfStmt
		last  *goast.IfStmt
	)

	for _, sec := range c.Sections {
		body, err := l.nodes(sec.Children)
		if err != nil {
			return nil, err
		}

		ret := &goast.BlockStmt{List: []goast.Stmt{&goast.ReturnStmt{Results: []goast.Expr{body}}}}

		if sec.Label == "else" {
			last.Else = ret

			continue
		}

		cond, err := parseGoExpr(sec.Tokens, sec.Position)
		if err != nil {
			return nil, err
		}

		stmt := &goast.IfStmt{Cond: cond, Body: ret}
		if first == nil {
			first = stmt
		} else {
			last.Else = stmt
		}

		last = stmt
	}

	return iife(
		first,
		&goast.ReturnStmt{Results: []goast.Expr{goast.NewIdent("nil")}},
	), nil
}

func (l *lowerer) lowerFor(c *parser.Custom) (goast.Expr, error) {
	sec := c.Sections[0]

	body, err := l.nodes(sec.Children)
	if err != nil {
		return nil, err
	}

	loop, err := parseGoLoop(sec.Tokens, sec.Position)
	if err != nil {
		return nil, err
	}

	out := goast.NewIdent("out")
	appendStmt := &goast.AssignStmt{
		Lhs: []goast.Expr{out},
		Tok: gotoken.ASSIGN,
		Rhs: []goast.Expr{call(goast.NewIdent("append"), out, body)},
	}

	setLoopBody(loop, &goast.BlockStmt{List: []goast.Stmt{appendStmt}})

	return iife(
		&goast.DeclStmt{Decl: &goast.GenDecl{
			Tok: gotoken.VAR,
			Specs: []goast.Spec{&goast.ValueSpec{
				Names: []*goast.Ident{out},
				Type:  &goast.ArrayType{Elt: sel("g", "Node")},
			}},
		}},
		loop,
		&goast.ReturnStmt{Results: []goast.Expr{call(sel("g", "Group"), out)}},
	), nil
}

func (l *lowerer) lowerMatch(c *parser.Custom) (goast.Expr, error) {
	subject, err := parseGoExpr(c.Sections[0].Tokens, c.Sections[0].Position)
	if err != nil {
		return nil, err
	}

	sw := &goast.SwitchStmt{Tag: subject, Body: &goast.BlockStmt{}}

	for _, sec := range c.Sections[1:] {
		pattern, err := parseGoExpr(sec.Tokens, sec.Position)
		if err != nil {
			return nil, err
		}

		body, err := l.nodes(sec.Children)
		if err != nil {
			return nil, err
		}

		sw.Body.List = append(sw.Body.List, &goast.CaseClause{
			List: []goast.Expr{pattern},
			Body: []goast.Stmt{&goast.ReturnStmt{Results: []goast.Expr{body}}},
		})
	}

	return iife(
		sw,
		&goast.ReturnStmt{Results: []goast.Expr{goast.NewIdent("nil")}},
	), nil
}

// parseGoExpr parses token text as a Go expression, anchoring failures
// to the markup source.
func parseGoExpr(tokens token.Stream, span token.Position) (goast.Expr, error) {
	src := tokens.Text()

	ex, err := goparser.ParseExpr(src)
	if err != nil {
		return nil, fmt.Errorf("%s: %q is not a valid Go expression: %w", span.Begin(), src, err)
	}

	return ex, nil
}

// parseGoLoop parses a loop header (everything between `for` and the
// body) into a for or range statement with an empty body.
func parseGoLoop(tokens token.Stream, span token.Position) (goast.Stmt, error) {
	src := tokens.Text()

	file, err := goparser.ParseFile(gotoken.NewFileSet(), "",
		"package p\nfunc _() {\nfor "+src+" {\n}\n}", goparser.SkipObjectResolution)
	if err != nil {
		return nil, fmt.Errorf("%s: %q is not a valid loop header: %w", span.Begin(), src, err)
	}

	fn := file.Decls[0].(*goast.FuncDecl)

	stmt := fn.Body.List[0]
	switch stmt.(type) {
	case *goast.ForStmt, *goast.RangeStmt:
		return stmt, nil
	}

	return nil, fmt.Errorf("%s: %q is not a valid loop header", span.Begin(), src)
}

func setLoopBody(loop goast.Stmt, body *goast.BlockStmt) {
	switch s := loop.(type) {
	case *goast.ForStmt:
		s.Body = body
	case *goast.RangeStmt:
		s.Body = body
	}
}

// iife wraps statements in `func() g.Node { … }()`.
func iife(stmts ...goast.Stmt) goast.Expr {
	return call(&goast.FuncLit{
		Type: &goast.FuncType{
			Params:  &goast.FieldList{},
			Results: &goast.FieldList{List: []*goast.Field{{Type: sel("g", "Node")}}},
		},
		Body: &goast.BlockStmt{List: stmts},
	})
}

func isLikelyNodeExpr(ex goast.Expr) bool {
	// calls to capitalized identifiers are assumed to return Node
	ce, ok := ex.(*goast.CallExpr)
	if !ok {
		return false
	}

	switch fun := ce.Fun.(type) {
	case *goast.Ident:
		if fun.Name == "" {
			return false
		}

		b := fun.Name[0]

		return b >= 'A' && b <= 'Z'
	case *goast.SelectorExpr:
		b := fun.Sel.Name[0]

		return b >= 'A' && b <= 'Z'
	default:
		return false
	}
}

func call(fun goast.Expr, args ...goast.Expr) *goast.CallExpr {
	return &goast.CallExpr{Fun: fun, Args: args}
}

func sel(pkg, name string) goast.Expr {
	return &goast.SelectorExpr{X: goast.NewIdent(pkg), Sel: goast.NewIdent(name)}
}

func strLit(s string) goast.Expr {
	return &goast.BasicLit{Kind: gotoken.STRING, Value: fmt.Sprintf("%q", s)}
}

func nodeSlice(elts []goast.Expr) goast.Expr {
	return &goast.CompositeLit{
		Type: &goast.ArrayType{Elt: sel("g", "Node")},
		Elts: elts,
	}
}

func htmlElementFunc(tag string) string {
	switch tag {
	case "a":
		return "A"
	case "button":
		return "Button"
	case "div":
		return "Div"
	case "footer":
		return "Footer"
	case "form":
		return "Form"
	case "h1":
		return "H1"
	case "h2":
		return "H2"
	case "h3":
		return "H3"
	case "header":
		return "Header"
	case "img":
		return "Img"
	case "input":
		return "Input"
	case "label":
		return "Label"
	case "li":
		return "Li"
	case "main":
		return "Main"
	case "nav":
		return "Nav"
	case "p":
		return "P"
	case "section":
		return "Section"
	case "span":
		return "Span"
	case "ul":
		return "Ul"
	default:
		return ""
	}
}

func htmlStringAttrFunc(key string) string {
	switch key {
	case "class":
		return "Class"
	case "href":
		return "Href"
	case "id":
		return "ID"
	case "src":
		return "Src"
	case "style":
		return "Style"
	default:
		return ""
	}
}

func htmlBoolAttrFunc(key string) string {
	switch key {
	case "checked":
		return "Checked"
	case "disabled":
		return "Disabled"
	case "required":
		return "Required"
	case "selected":
		return "Selected"
	default:
		return ""
	}
}
