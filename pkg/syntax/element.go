package syntax

import (
	"fmt"
	"strings"
)

// Element is the concrete, immutable Node implementation. Elements are
// created with NewElement or the shorthand constructors in build.go and must
// not be modified once they are reachable from another goroutine.
type Element struct {
	kind      Kind
	children  []*Element
	condition *Element
	hasElse   bool
	isDefault bool
	boundary  bool

	typ       string
	name      string
	startLine uint32
	endLine   uint32
}

var _ Node = (*Element)(nil)

// ElementOption configures an Element at construction time.
type ElementOption func(*Element)

// WithChildren appends ordered children. Nil entries are dropped.
func WithChildren(children ...*Element) ElementOption {
	return func(e *Element) {
		for _, c := range children {
			if c != nil {
				e.children = append(e.children, c)
			}
		}
	}
}

// WithCondition marks cond as the guarding expression. If cond is not
// already a child it is inserted as the first child.
func WithCondition(cond *Element) ElementOption {
	return func(e *Element) {
		e.condition = cond
	}
}

// WithElse marks an if element as having an else branch.
func WithElse(hasElse bool) ElementOption {
	return func(e *Element) {
		e.hasElse = hasElse
	}
}

// WithDefault marks a switch label as the default label.
func WithDefault(isDefault bool) ElementOption {
	return func(e *Element) {
		e.isDefault = isDefault
	}
}

// WithBoundary marks the element as opening a separately measured unit.
func WithBoundary(boundary bool) ElementOption {
	return func(e *Element) {
		e.boundary = boundary
	}
}

// WithSource records where the element came from: the grammar node type,
// an optional declared name and the 1-based line span.
func WithSource(typ, name string, startLine, endLine uint32) ElementOption {
	return func(e *Element) {
		e.typ = typ
		e.name = name
		e.startLine = startLine
		e.endLine = endLine
	}
}

// NewElement creates an element of the given kind.
func NewElement(kind Kind, opts ...ElementOption) *Element {
	e := &Element{kind: kind}
	for _, opt := range opts {
		opt(e)
	}
	if e.condition != nil && !e.hasChild(e.condition) {
		e.children = append([]*Element{e.condition}, e.children...)
	}
	return e
}

func (e *Element) hasChild(c *Element) bool {
	for _, child := range e.children {
		if child == c {
			return true
		}
	}
	return false
}

func (e *Element) Kind() Kind { return e.kind }

func (e *Element) NumChildren() int { return len(e.children) }

func (e *Element) Child(i int) Node {
	if i < 0 || i >= len(e.children) {
		return nil
	}
	return e.children[i]
}

// ElementAt returns the i-th child with its concrete type, or nil.
func (e *Element) ElementAt(i int) *Element {
	if i < 0 || i >= len(e.children) {
		return nil
	}
	return e.children[i]
}

func (e *Element) Condition() Node {
	if e.condition == nil {
		return nil
	}
	return e.condition
}

func (e *Element) HasElse() bool { return e.hasElse }

func (e *Element) IsForEach() bool { return e.kind == KindForEach }

func (e *Element) IsDefault() bool { return e.isDefault }

func (e *Element) IsScopeBoundary() bool { return e.boundary }

// Type returns the grammar node type the element was lowered from.
func (e *Element) Type() string { return e.typ }

// Name returns the declared name, if the element declares one.
func (e *Element) Name() string { return e.name }

// StartLine returns the 1-based first line, or 0 if unknown.
func (e *Element) StartLine() uint32 { return e.startLine }

// EndLine returns the 1-based last line, or 0 if unknown.
func (e *Element) EndLine() uint32 { return e.endLine }

// String renders the subtree as an s-expression, e.g.
// (if (expression (and other other)) block block else).
func (e *Element) String() string {
	var sb strings.Builder
	e.write(&sb)
	return sb.String()
}

func (e *Element) write(sb *strings.Builder) {
	if len(e.children) == 0 && !e.decorated() {
		sb.WriteString(e.kind.String())
		return
	}
	sb.WriteByte('(')
	sb.WriteString(e.kind.String())
	if e.boundary {
		sb.WriteString(" !")
	}
	if e.isDefault {
		sb.WriteString(" default")
	}
	for _, c := range e.children {
		sb.WriteByte(' ')
		c.write(sb)
	}
	if e.hasElse {
		sb.WriteString(" else")
	}
	sb.WriteByte(')')
}

func (e *Element) decorated() bool {
	return e.boundary || e.isDefault || e.hasElse
}

// GoString helps test failure output point at the offending element.
func (e *Element) GoString() string {
	if e.typ == "" {
		return fmt.Sprintf("syntax.Element{%s}", e.kind)
	}
	return fmt.Sprintf("syntax.Element{%s %s@%d}", e.kind, e.typ, e.startLine)
}
