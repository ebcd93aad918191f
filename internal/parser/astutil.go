package parser

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// nodeText returns the source slice spanned by node.
func nodeText(node *sitter.Node, content []byte) string {
	if node == nil {
		return ""
	}
	start, end := node.StartByte(), node.EndByte()
	if start > uint(len(content)) || end > uint(len(content)) || start > end {
		return ""
	}
	return string(content[start:end])
}

// nodeLine returns the 1-based source line a node starts on.
func nodeLine(node *sitter.Node) int {
	if node == nil {
		return 0
	}
	return int(node.StartPosition().Row) + 1
}

func nodeEndLine(node *sitter.Node) int {
	if node == nil {
		return 0
	}
	return int(node.EndPosition().Row) + 1
}

func nodeColumn(node *sitter.Node) int {
	if node == nil {
		return 0
	}
	return int(node.StartPosition().Column) + 1
}

// firstChildOfKind returns the first direct child whose Kind matches.
func firstChildOfKind(node *sitter.Node, kind string) *sitter.Node {
	if node == nil {
		return nil
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		c := node.Child(i)
		if c != nil && c.Kind() == kind {
			return c
		}
	}
	return nil
}

// childrenOfKind returns every direct child whose Kind matches.
func childrenOfKind(node *sitter.Node, kind string) []*sitter.Node {
	if node == nil {
		return nil
	}
	var out []*sitter.Node
	for i := uint(0); i < node.ChildCount(); i++ {
		c := node.Child(i)
		if c != nil && c.Kind() == kind {
			out = append(out, c)
		}
	}
	return out
}

// children returns every direct child node.
func children(node *sitter.Node) []*sitter.Node {
	if node == nil {
		return nil
	}
	out := make([]*sitter.Node, 0, node.ChildCount())
	for i := uint(0); i < node.ChildCount(); i++ {
		if c := node.Child(i); c != nil {
			out = append(out, c)
		}
	}
	return out
}

// walk visits node and every descendant depth-first, pre-order. visit
// returning false skips descending into that node's children.
func walk(node *sitter.Node, visit func(n *sitter.Node) bool) {
	if node == nil {
		return
	}
	if !visit(node) {
		return
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		walk(node.Child(i), visit)
	}
}

// ancestorKinds collects the Kind of every ancestor of node, innermost
// first, up to the tree root.
func ancestorKinds(node *sitter.Node) []string {
	var out []string
	for p := node.Parent(); p != nil; p = p.Parent() {
		out = append(out, p.Kind())
	}
	return out
}

// hasAncestorKind reports whether any ancestor of node matches one of
// kinds — used for isConditional / reference-kind classification.
func hasAncestorKind(node *sitter.Node, kinds ...string) bool {
	set := make(map[string]bool, len(kinds))
	for _, k := range kinds {
		set[k] = true
	}
	for p := node.Parent(); p != nil; p = p.Parent() {
		if set[p.Kind()] {
			return true
		}
	}
	return false
}

// bodyLineCount returns the number of source lines a node's body spans.
func bodyLineCount(node *sitter.Node) int {
	if node == nil {
		return 0
	}
	return nodeEndLine(node) - nodeLine(node) + 1
}

// trimIdentifier strips brackets/whitespace noise from an extracted name.
func trimIdentifier(s string) string {
	return strings.TrimSpace(strings.Trim(s, "()[]{}"))
}

// qualifiedName joins an enclosing-scope chain (outermost first) with ".",
// capping depth at 3 enclosing frames per spec.md §4.1.1.
func qualifiedName(chain []string, leaf string) string {
	if len(chain) > 3 {
		chain = chain[len(chain)-3:]
	}
	parts := append(append([]string{}, chain...), leaf)
	return strings.Join(parts, ".")
}

// containsYield reports whether the subtree contains a yield expression,
// used for generator detection (spec.md §4.1.1) without descending into
// nested function bodies (a yield inside a nested function belongs to
// that function, not the enclosing one).
func containsYield(node *sitter.Node, yieldKinds ...string) bool {
	found := false
	var visit func(n *sitter.Node)
	nested := map[string]bool{
		nkFunctionDeclaration: true, nkFunctionExpression: true,
		nkArrowFunction: true, nkGeneratorExpression: true, nkMethodDefinition: true,
		nkPyFunctionDef: true,
	}
	visit = func(n *sitter.Node) {
		if n == nil || found {
			return
		}
		for _, yk := range yieldKinds {
			if n.Kind() == yk {
				found = true
				return
			}
		}
		if nested[n.Kind()] {
			return // don't descend into a nested function's own body
		}
		for i := uint(0); i < n.ChildCount(); i++ {
			visit(n.Child(i))
			if found {
				return
			}
		}
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		visit(node.Child(i))
	}
	return found
}

// contextSnippet returns ~40 chars of source around a node's use site, for
// SymbolReference.Context (spec.md §3).
func contextSnippet(content []byte, node *sitter.Node) string {
	start := int(node.StartByte())
	end := int(node.EndByte())
	const radius = 20
	lo := start - radius
	if lo < 0 {
		lo = 0
	}
	hi := end + radius
	if hi > len(content) {
		hi = len(content)
	}
	snippet := string(content[lo:hi])
	return strings.ReplaceAll(strings.TrimSpace(snippet), "\n", " ")
}
