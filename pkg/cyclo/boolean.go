package cyclo

import "github.com/panbanda/cyclo/pkg/syntax"

// BooleanExpressionComplexity counts the short-circuit && and || operators
// in expr. Nested scope boundaries (for example an anonymous class inside
// the expression) are not searched. A nil expression scores 0.
func BooleanExpressionComplexity(expr syntax.Node) int {
	if expr == nil {
		return 0
	}

	count := 0
	syntax.Walk(expr, func(n syntax.Node) bool {
		if n != expr && n.IsScopeBoundary() {
			return false
		}
		if n.Kind().IsConnective() {
			count += connectives(n)
		}
		return true
	})
	return count
}

// connectives is the number of operators joining a connective's operands.
// Front ends may build an n-ary node for a && b && c or nest binary ones.
func connectives(n syntax.Node) int {
	if ops := n.NumChildren() - 1; ops > 1 {
		return ops
	}
	return 1
}
