// Package syntax defines the read-only syntax tree consumed by the
// cyclomatic complexity visitor.
//
// Trees are produced by a front end (see package parser) or assembled by
// hand with the constructors in this package. Once built, a tree is never
// mutated, so any number of goroutines may read it concurrently.
package syntax

// Kind discriminates syntax nodes. The set is closed: every consumer that
// switches over Kind is expected to handle all of Kinds().
type Kind uint8

const (
	KindOther Kind = iota
	KindIf
	KindConditional
	KindWhile
	KindDo
	KindFor
	KindForEach
	KindSwitchStatement
	KindSwitchExpression
	KindSwitchLabel
	KindSwitchLabeledRule
	KindCatch
	KindThrow
	KindFinally
	KindAssert
	KindLambda
	KindBlockStatement
	KindExpression
	KindConditionalAnd
	KindConditionalOr

	// NumKinds is the number of defined kinds. Tables indexed by Kind
	// should be sized with it.
	NumKinds int = iota
)

var kindNames = [NumKinds]string{
	KindOther:             "other",
	KindIf:                "if",
	KindConditional:       "conditional",
	KindWhile:             "while",
	KindDo:                "do",
	KindFor:               "for",
	KindForEach:           "foreach",
	KindSwitchStatement:   "switch",
	KindSwitchExpression:  "switch_expression",
	KindSwitchLabel:       "label",
	KindSwitchLabeledRule: "rule",
	KindCatch:             "catch",
	KindThrow:             "throw",
	KindFinally:           "finally",
	KindAssert:            "assert",
	KindLambda:            "lambda",
	KindBlockStatement:    "block",
	KindExpression:        "expression",
	KindConditionalAnd:    "and",
	KindConditionalOr:     "or",
}

// String returns the short lowercase name of the kind.
func (k Kind) String() string {
	if int(k) < NumKinds {
		return kindNames[k]
	}
	return "invalid"
}

// Kinds returns every defined kind in declaration order.
func Kinds() []Kind {
	kinds := make([]Kind, NumKinds)
	for i := range kinds {
		kinds[i] = Kind(i)
	}
	return kinds
}

// IsSwitch reports whether k is either form of switch.
func (k Kind) IsSwitch() bool {
	return k == KindSwitchStatement || k == KindSwitchExpression
}

// IsConnective reports whether k is a short-circuit boolean operator.
func (k Kind) IsConnective() bool {
	return k == KindConditionalAnd || k == KindConditionalOr
}
