package syntax

// Node is the view of a syntax tree node that metric visitors rely on.
//
// Implementations must be pointer types: visitors compare nodes by identity
// (==), never structurally, so two equal-looking subtrees at different
// positions stay distinguishable. Trees must be finite and acyclic.
type Node interface {
	Kind() Kind

	// NumChildren returns the number of ordered children.
	NumChildren() int

	// Child returns the i-th child, or nil when i is out of range.
	Child(i int) Node

	// Condition returns the guarding expression of an if, conditional,
	// while, do, for or assert node. It is one of the node's children.
	// Returns nil when the node has none.
	Condition() Node

	// HasElse reports whether an if node has an else branch.
	HasElse() bool

	// IsForEach reports whether a loop iterates over a collection.
	IsForEach() bool

	// IsDefault reports whether a switch label is the default label.
	IsDefault() bool

	// IsScopeBoundary reports whether the node opens a separately measured
	// unit, such as a nested type or method.
	IsScopeBoundary() bool
}

// Walk visits n and its descendants depth-first in pre-order. When fn
// returns false the children of that node are skipped.
func Walk(n Node, fn func(Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for i := range n.NumChildren() {
		Walk(n.Child(i), fn)
	}
}

// ChildrenOfKind returns the direct children of n with the given kind.
func ChildrenOfKind(n Node, kind Kind) []Node {
	if n == nil {
		return nil
	}
	var out []Node
	for i := range n.NumChildren() {
		if c := n.Child(i); c != nil && c.Kind() == kind {
			out = append(out, c)
		}
	}
	return out
}

// FirstChildOfKind returns the first direct child of n with the given kind,
// or nil.
func FirstChildOfKind(n Node, kind Kind) Node {
	if n == nil {
		return nil
	}
	for i := range n.NumChildren() {
		if c := n.Child(i); c != nil && c.Kind() == kind {
			return c
		}
	}
	return nil
}
