// Package cyclo computes McCabe cyclomatic complexity for a single unit,
// typically a method or constructor, over a syntax.Node tree.
//
// The score starts at 1 for the single linear path through the unit and
// grows by one for each decision point found by the rule table in this
// file. Decision points inside nested units (local or anonymous classes,
// nested methods) belong to those units and are not counted.
//
//	score := cyclo.Compute(method, cyclo.NewOptions(cyclo.ConsiderAssert))
package cyclo

import "github.com/panbanda/cyclo/pkg/syntax"

// Compute returns the cyclomatic complexity of the unit rooted at top.
// The result is always at least 1. Compute is safe to call concurrently
// on shared trees.
func Compute(top syntax.Node, opts Options) int {
	v := NewVisitor(top, opts)
	v.Visit(top)
	return v.Value()
}

// Visitor accumulates the complexity of one unit. A Visitor must not be
// shared between goroutines or reused for another unit.
type Visitor struct {
	top   syntax.Node
	opts  Options
	value int
}

// NewVisitor creates a visitor measuring the unit rooted at top.
func NewVisitor(top syntax.Node, opts Options) *Visitor {
	return &Visitor{top: top, opts: opts, value: 1}
}

// Value returns the complexity accumulated so far.
func (v *Visitor) Value() int {
	return v.value
}

// Visit applies the rule for n and descends into its children. Scope
// boundaries other than the top node are skipped entirely.
func (v *Visitor) Visit(n syntax.Node) {
	if n == nil {
		return
	}
	if n.IsScopeBoundary() && n != v.top {
		return
	}

	if k := n.Kind(); int(k) < syntax.NumKinds {
		rules[k](v, n)
	}

	for i := range n.NumChildren() {
		v.Visit(n.Child(i))
	}
}

func (v *Visitor) add(delta int) {
	if delta > 0 {
		v.value += delta
	}
}

func (v *Visitor) addBooleanPaths(expr syntax.Node) {
	if v.opts.ConsiderBooleanPaths() {
		v.add(BooleanExpressionComplexity(expr))
	}
}

type rule func(v *Visitor, n syntax.Node)

// rules holds one entry per syntax.Kind. TestRuleTableComplete fails when a
// kind is added without an entry here.
var rules = [syntax.NumKinds]rule{
	syntax.KindIf:                ifRule,
	syntax.KindConditional:       guardedRule,
	syntax.KindWhile:             guardedRule,
	syntax.KindDo:                guardedRule,
	syntax.KindFor:               forRule,
	syntax.KindForEach:           branchRule,
	syntax.KindSwitchStatement:   switchRule,
	syntax.KindSwitchExpression:  switchRule,
	syntax.KindCatch:             branchRule,
	syntax.KindThrow:             branchRule,
	syntax.KindFinally:           branchRule,
	syntax.KindLambda:            branchRule,
	syntax.KindAssert:            assertRule,
	syntax.KindSwitchLabel:       passiveRule,
	syntax.KindSwitchLabeledRule: passiveRule,
	syntax.KindBlockStatement:    passiveRule,
	syntax.KindExpression:        passiveRule,
	syntax.KindConditionalAnd:    passiveRule,
	syntax.KindConditionalOr:     passiveRule,
	syntax.KindOther:             passiveRule,
}

// passiveRule is for kinds scored by an enclosing switch or by the boolean
// analyzer, or not at all.
func passiveRule(*Visitor, syntax.Node) {}

func branchRule(v *Visitor, _ syntax.Node) {
	v.add(1)
}

func guardedRule(v *Visitor, n syntax.Node) {
	v.add(1)
	v.addBooleanPaths(n.Condition())
}

func ifRule(v *Visitor, n syntax.Node) {
	v.add(1)
	if n.HasElse() {
		v.add(1)
	}
	v.addBooleanPaths(n.Condition())
}

func forRule(v *Visitor, n syntax.Node) {
	v.add(1)
	if !n.IsForEach() {
		v.addBooleanPaths(n.Condition())
	}
}

// assertRule scores assert like `if (!cond) throw ...`.
func assertRule(v *Visitor, n syntax.Node) {
	if !v.opts.ConsiderAssert() {
		return
	}
	v.add(2)
	v.addBooleanPaths(n.Condition())
}

// switchRule scores the labels of a switch. Child 0 is the selector; the
// remaining children are labels, block statements and arrow rules.
//
// A default label is the fallback path and never counts. Without boolean
// paths a colon label only counts when a statement follows it directly, so
// stacked labels sharing one body count once. With boolean paths each case
// value counts. Arrow rules only count under boolean paths.
func switchRule(v *Visitor, n syntax.Node) {
	booleanPaths := v.opts.ConsiderBooleanPaths()
	if booleanPaths {
		v.add(BooleanExpressionComplexity(n.Child(0)))
	}

	for i := range n.NumChildren() {
		child := n.Child(i)
		if child == nil {
			continue
		}

		switch child.Kind() {
		case syntax.KindSwitchLabel:
			if child.IsDefault() {
				continue
			}
			if booleanPaths {
				v.add(labelValues(child))
			} else if next := n.Child(i + 1); next != nil && next.Kind() == syntax.KindBlockStatement {
				v.add(1)
			}

		case syntax.KindSwitchLabeledRule:
			label := syntax.FirstChildOfKind(child, syntax.KindSwitchLabel)
			if label == nil || label.IsDefault() {
				continue
			}
			if booleanPaths {
				v.add(labelValues(label))
			}
		}
	}
}

// labelValues is the number of case values carried by a label.
func labelValues(label syntax.Node) int {
	return len(syntax.ChildrenOfKind(label, syntax.KindExpression))
}
