// SPDX-FileCopyrightText: © 2025 The gmx authors
// SPDX-License-Identifier: Apache-2.0

package parser

// Walk visits nodes in pre-order, each node exactly once. When fn returns
// false, the children of the current node are skipped. Elements nested in
// attribute values are visited as well, so traversal is total.
func Walk(nodes []Node, fn func(Node) bool) {
	for _, n := range nodes {
		walkNode(n, fn)
	}
}

func walkNode(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}

	switch t := n.(type) {
	case *Element:
		for _, a := range t.Attributes {
			if a.Value != nil && a.Value.Kind == ValueElement && a.Value.Element != nil {
				walkNode(a.Value.Element, fn)
			}
		}

		Walk(t.Children, fn)
	case *Fragment:
		Walk(t.Children, fn)
	case *Custom:
		for _, s := range t.Sections {
			Walk(s.Children, fn)
		}
	}
}

// A RewriteFunc may replace a raw-expression node. Returning nil keeps
// the node as it is. Replacements are spliced in without being visited
// again, so a rewrite cannot loop on its own output.
type RewriteFunc func(*RawExpr) Node

// Rewrite returns a tree in which raw-expression nodes may have been
// replaced by fn. Tree shape is otherwise unchanged.
func Rewrite(nodes []Node, fn RewriteFunc) []Node {
	if len(nodes) == 0 {
		return nodes
	}

	result := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		result = append(result, rewriteNode(n, fn))
	}

	return result
}

func rewriteNode(n Node, fn RewriteFunc) Node {
	switch t := n.(type) {
	case *RawExpr:
		if repl := fn(t); repl != nil {
			return repl
		}

		return t
	case *Element:
		clone := *t
		clone.Children = Rewrite(t.Children, fn)

		return &clone
	case *Fragment:
		clone := *t
		clone.Children = Rewrite(t.Children, fn)

		return &clone
	case *Custom:
		clone := *t
		clone.Sections = make([]Section, len(t.Sections))

		for i, s := range t.Sections {
			s.Children = Rewrite(s.Children, fn)
			clone.Sections[i] = s
		}

		return &clone
	default:
		return n
	}
}
