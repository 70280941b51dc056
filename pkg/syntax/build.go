package syntax

// Shorthand constructors for assembling trees by hand. Front ends that need
// source positions use NewElement with WithSource instead.

// Leaf returns a childless element of KindOther.
func Leaf() *Element {
	return NewElement(KindOther)
}

// Group returns a KindOther element wrapping children.
func Group(children ...*Element) *Element {
	return NewElement(KindOther, WithChildren(children...))
}

// Unit returns a scope boundary wrapping a measured body, such as a method
// or a nested type declaration.
func Unit(children ...*Element) *Element {
	return NewElement(KindOther, WithBoundary(true), WithChildren(children...))
}

// Expr returns an expression element.
func Expr(children ...*Element) *Element {
	return NewElement(KindExpression, WithChildren(children...))
}

// Block returns a block statement element.
func Block(children ...*Element) *Element {
	return NewElement(KindBlockStatement, WithChildren(children...))
}

// And returns a short-circuit conjunction over operands.
func And(operands ...*Element) *Element {
	return NewElement(KindConditionalAnd, WithChildren(operands...))
}

// Or returns a short-circuit disjunction over operands.
func Or(operands ...*Element) *Element {
	return NewElement(KindConditionalOr, WithChildren(operands...))
}

// If returns an if statement. els may be nil.
func If(cond, then, els *Element) *Element {
	return NewElement(KindIf,
		WithCondition(cond),
		WithChildren(cond, then, els),
		WithElse(els != nil),
	)
}

// Ternary returns a conditional expression.
func Ternary(cond, then, els *Element) *Element {
	return NewElement(KindConditional, WithCondition(cond), WithChildren(cond, then, els))
}

// While returns a while loop.
func While(cond, body *Element) *Element {
	return NewElement(KindWhile, WithCondition(cond), WithChildren(cond, body))
}

// Do returns a do-while loop.
func Do(body, cond *Element) *Element {
	return NewElement(KindDo, WithCondition(cond), WithChildren(body, cond))
}

// For returns a counting for loop. cond may be nil.
func For(cond, body *Element) *Element {
	return NewElement(KindFor, WithCondition(cond), WithChildren(cond, body))
}

// ForEach returns a loop over a collection.
func ForEach(iterable, body *Element) *Element {
	return NewElement(KindForEach, WithChildren(iterable, body))
}

// Lambda returns a lambda expression.
func Lambda(body *Element) *Element {
	return NewElement(KindLambda, WithChildren(body))
}

// Catch returns a catch clause.
func Catch(body *Element) *Element {
	return NewElement(KindCatch, WithChildren(body))
}

// Throw returns a throw statement.
func Throw(expr *Element) *Element {
	return NewElement(KindThrow, WithChildren(expr))
}

// Finally returns a finally clause.
func Finally(body *Element) *Element {
	return NewElement(KindFinally, WithChildren(body))
}

// Assert returns an assert statement. message may be nil.
func Assert(cond, message *Element) *Element {
	return NewElement(KindAssert, WithCondition(cond), WithChildren(cond, message))
}

// Switch returns a switch statement. The selector becomes child 0, followed
// by labels, block statements and labeled rules in source order.
func Switch(selector *Element, body ...*Element) *Element {
	return NewElement(KindSwitchStatement, WithChildren(selector), WithChildren(body...))
}

// SwitchExpr is Switch for the expression form.
func SwitchExpr(selector *Element, body ...*Element) *Element {
	return NewElement(KindSwitchExpression, WithChildren(selector), WithChildren(body...))
}

// Case returns a non-default switch label carrying one expression per case
// value.
func Case(values ...*Element) *Element {
	exprs := make([]*Element, 0, len(values))
	for _, v := range values {
		if v == nil {
			continue
		}
		if v.kind != KindExpression {
			v = Expr(v)
		}
		exprs = append(exprs, v)
	}
	return NewElement(KindSwitchLabel, WithChildren(exprs...))
}

// Default returns the default switch label.
func Default() *Element {
	return NewElement(KindSwitchLabel, WithDefault(true))
}

// Rule returns an arrow-form switch rule: a label and its single body.
func Rule(label, body *Element) *Element {
	return NewElement(KindSwitchLabeledRule, WithChildren(label, body))
}
