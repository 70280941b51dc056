package parser

import (
	"strconv"
	"strings"

	"github.com/panbanda/cyclo/pkg/syntax"
	sitter "github.com/smacker/go-tree-sitter"
)

// UnitKind distinguishes the declarations measured on their own.
type UnitKind string

const (
	UnitMethod      UnitKind = "method"
	UnitConstructor UnitKind = "constructor"
)

// Unit is a method or constructor with a body. Node is the lowered
// declaration: a scope boundary meant to be passed as the top node.
// ClassIndex points into Document.Classes, or is -1 outside any class.
type Unit struct {
	Name       string
	Signature  string
	Class      string
	ClassIndex int
	Kind       UnitKind
	StartLine  uint32
	EndLine    uint32
	Node       *syntax.Element
}

// Class is a type declaration or an anonymous class body. Member types are
// named Outer.Inner; anonymous bodies Outer$1, Outer$2 and so on; local
// classes Outer$1Local, numbered per name as javac does.
type Class struct {
	Name      string
	Kind      string
	StartLine uint32
	EndLine   uint32
}

// Document is a lowered compilation unit. Units and Classes are in source
// order.
type Document struct {
	Path    string
	Root    *syntax.Element
	Units   []Unit
	Classes []Class
}

// Lower converts a parse result into a syntax tree and collects its units.
func Lower(result *ParseResult) *Document {
	doc := &Document{Path: result.Path}
	if result.Tree == nil {
		return doc
	}

	l := &lowerer{
		src:       result.Source,
		doc:       doc,
		anonymous: make(map[string]int),
		local:     make(map[string]int),
	}
	doc.Root = l.lower(result.Tree.RootNode())
	return doc
}

// Units returns the measurable units of a parse result.
func Units(result *ParseResult) []Unit {
	return Lower(result).Units
}

var typeDeclarations = map[string]string{
	"class_declaration":           "class",
	"interface_declaration":       "interface",
	"enum_declaration":            "enum",
	"record_declaration":          "record",
	"annotation_type_declaration": "annotation",
}

// expressionParents are the non-expression node types whose switch child is
// used as a value. Every other parent, apart from *_expression nodes, holds
// the switch as a statement. The distinction is only reported; both kinds
// score alike.
var expressionParents = map[string]bool{
	"argument_list":        true,
	"array_initializer":    true,
	"element_value_pair":   true,
	"expression_statement": true,
	"return_statement":     true,
	"variable_declarator":  true,
	"yield_statement":      true,
}

// memberParents hold type declarations that are members rather than local
// classes.
var memberParents = map[string]bool{
	"program":                true,
	"class_body":             true,
	"interface_body":         true,
	"enum_body_declarations": true,
	"annotation_type_body":   true,
}

// nonValueLabelParts are switch label children that are not case values.
var nonValueLabelParts = map[string]bool{
	"pattern":        true,
	"type_pattern":   true,
	"record_pattern": true,
	"guard":          true,
}

type lowerer struct {
	src       []byte
	doc       *Document
	classes   []int // indexes into doc.Classes, innermost last
	anonymous map[string]int
	local     map[string]int
}

// enclosing returns the innermost class name and index, or "" and -1.
func (l *lowerer) enclosing() (string, int) {
	if len(l.classes) == 0 {
		return "", -1
	}
	i := l.classes[len(l.classes)-1]
	return l.doc.Classes[i].Name, i
}

func (l *lowerer) lower(n *sitter.Node) *syntax.Element {
	if n == nil || !n.IsNamed() {
		return nil
	}

	typ := n.Type()
	switch typ {
	case "line_comment", "block_comment", "comment":
		return nil
	case "if_statement":
		return l.ifStatement(n)
	case "while_statement":
		return l.guarded(n, syntax.KindWhile)
	case "do_statement":
		return l.guarded(n, syntax.KindDo)
	case "for_statement":
		return l.guarded(n, syntax.KindFor)
	case "ternary_expression":
		return l.guarded(n, syntax.KindConditional)
	case "enhanced_for_statement":
		return l.element(n, syntax.KindForEach)
	case "lambda_expression":
		return l.element(n, syntax.KindLambda)
	case "catch_clause":
		return l.element(n, syntax.KindCatch)
	case "finally_clause":
		return l.element(n, syntax.KindFinally)
	case "throw_statement":
		return l.element(n, syntax.KindThrow)
	case "assert_statement":
		return l.assertStatement(n)
	case "switch_expression", "switch_statement":
		return l.switchNode(n)
	case "binary_expression":
		return l.element(n, operatorKind(n))
	case "method_declaration", "constructor_declaration", "compact_constructor_declaration":
		return l.unit(n)
	case "class_body":
		if p := n.Parent(); p != nil && (p.Type() == "object_creation_expression" || p.Type() == "enum_constant") {
			return l.anonymousClass(n)
		}
	}

	if kind, ok := typeDeclarations[typ]; ok {
		return l.typeDeclaration(n, kind)
	}
	return l.element(n, syntax.KindOther)
}

func (l *lowerer) children(n *sitter.Node) []*syntax.Element {
	var out []*syntax.Element
	for i := range int(n.NamedChildCount()) {
		if c := l.lower(n.NamedChild(i)); c != nil {
			out = append(out, c)
		}
	}
	return out
}

func (l *lowerer) source(n *sitter.Node, name string) syntax.ElementOption {
	return syntax.WithSource(n.Type(), name, n.StartPoint().Row+1, n.EndPoint().Row+1)
}

func (l *lowerer) element(n *sitter.Node, kind syntax.Kind, opts ...syntax.ElementOption) *syntax.Element {
	opts = append(opts, syntax.WithChildren(l.children(n)...), l.source(n, ""))
	return syntax.NewElement(kind, opts...)
}

// condition lowers a guarding expression into an Expression element,
// unwrapping the parentheses Java requires around most conditions.
func (l *lowerer) condition(n *sitter.Node) *syntax.Element {
	if n.Type() == "parenthesized_expression" {
		return syntax.NewElement(syntax.KindExpression, syntax.WithChildren(l.children(n)...), l.source(n, ""))
	}
	return syntax.NewElement(syntax.KindExpression, syntax.WithChildren(l.lower(n)), l.source(n, ""))
}

// guarded lowers a node whose "condition" field becomes its Condition.
func (l *lowerer) guarded(n *sitter.Node, kind syntax.Kind, opts ...syntax.ElementOption) *syntax.Element {
	condNode := n.ChildByFieldName("condition")

	var (
		cond     *syntax.Element
		children []*syntax.Element
	)
	for i := range int(n.NamedChildCount()) {
		child := n.NamedChild(i)
		if cond == nil && sameNode(child, condNode) {
			cond = l.condition(child)
			children = append(children, cond)
			continue
		}
		if c := l.lower(child); c != nil {
			children = append(children, c)
		}
	}

	opts = append(opts, syntax.WithChildren(children...), syntax.WithCondition(cond), l.source(n, ""))
	return syntax.NewElement(kind, opts...)
}

func (l *lowerer) ifStatement(n *sitter.Node) *syntax.Element {
	return l.guarded(n, syntax.KindIf, syntax.WithElse(n.ChildByFieldName("alternative") != nil))
}

// assertStatement lowers `assert cond : message`; the first expression is
// the condition.
func (l *lowerer) assertStatement(n *sitter.Node) *syntax.Element {
	var (
		cond     *syntax.Element
		children []*syntax.Element
	)
	for i := range int(n.NamedChildCount()) {
		child := n.NamedChild(i)
		if isComment(child) {
			continue
		}
		if cond == nil {
			cond = l.condition(child)
			children = append(children, cond)
			continue
		}
		if c := l.lower(child); c != nil {
			children = append(children, c)
		}
	}

	return syntax.NewElement(syntax.KindAssert,
		syntax.WithChildren(children...),
		syntax.WithCondition(cond),
		l.source(n, ""))
}

// switchNode lowers a switch into [selector, labels and statements...].
// Statement groups are flattened so that each label is followed by the
// statements it guards, each wrapped in a BlockStatement. Arrow rules become
// SwitchLabeledRule elements holding their label and body.
func (l *lowerer) switchNode(n *sitter.Node) *syntax.Element {
	kind := syntax.KindSwitchStatement
	if p := n.Parent(); p != nil && (strings.HasSuffix(p.Type(), "_expression") || expressionParents[p.Type()]) {
		kind = syntax.KindSwitchExpression
	}

	var children []*syntax.Element
	if sel := n.ChildByFieldName("condition"); sel != nil {
		children = append(children, l.condition(sel))
	}

	body := n.ChildByFieldName("body")
	if body == nil {
		return syntax.NewElement(kind, syntax.WithChildren(children...), l.source(n, ""))
	}

	for i := range int(body.NamedChildCount()) {
		child := body.NamedChild(i)
		switch child.Type() {
		case "switch_block_statement_group":
			children = append(children, l.statementGroup(child)...)
		case "switch_rule":
			children = append(children, l.switchRule(child))
		default:
			if c := l.lower(child); c != nil {
				children = append(children, c)
			}
		}
	}

	return syntax.NewElement(kind, syntax.WithChildren(children...), l.source(n, ""))
}

func (l *lowerer) statementGroup(n *sitter.Node) []*syntax.Element {
	var out []*syntax.Element
	for i := range int(n.NamedChildCount()) {
		child := n.NamedChild(i)
		if child.Type() == "switch_label" {
			out = append(out, l.switchLabel(child))
			continue
		}
		if c := l.lower(child); c != nil {
			out = append(out, syntax.NewElement(syntax.KindBlockStatement,
				syntax.WithChildren(c), l.source(child, "")))
		}
	}
	return out
}

func (l *lowerer) switchRule(n *sitter.Node) *syntax.Element {
	var children []*syntax.Element
	for i := range int(n.NamedChildCount()) {
		child := n.NamedChild(i)
		if child.Type() == "switch_label" {
			children = append(children, l.switchLabel(child))
			continue
		}
		if c := l.lower(child); c != nil {
			children = append(children, c)
		}
	}
	return syntax.NewElement(syntax.KindSwitchLabeledRule, syntax.WithChildren(children...), l.source(n, ""))
}

// switchLabel lowers a case or default label. Each case value becomes an
// Expression child; patterns and guards are kept as plain children.
func (l *lowerer) switchLabel(n *sitter.Node) *syntax.Element {
	isDefault := false
	for i := range int(n.ChildCount()) {
		if n.Child(i).Type() == "default" {
			isDefault = true
			break
		}
	}

	var children []*syntax.Element
	for i := range int(n.NamedChildCount()) {
		child := n.NamedChild(i)
		if isComment(child) {
			continue
		}
		if nonValueLabelParts[child.Type()] {
			children = append(children, l.lower(child))
			continue
		}
		children = append(children, syntax.NewElement(syntax.KindExpression,
			syntax.WithChildren(l.lower(child)), l.source(child, "")))
	}

	return syntax.NewElement(syntax.KindSwitchLabel,
		syntax.WithChildren(children...),
		syntax.WithDefault(isDefault),
		l.source(n, ""))
}

func (l *lowerer) typeDeclaration(n *sitter.Node, kind string) *syntax.Element {
	name := GetNodeText(n.ChildByFieldName("name"), l.src)
	outer, _ := l.enclosing()
	switch {
	case outer == "":
	case n.Parent() != nil && memberParents[n.Parent().Type()]:
		name = outer + "." + name
	default:
		key := outer + "$" + name
		l.local[key]++
		name = outer + "$" + strconv.Itoa(l.local[key]) + name
	}
	return l.class(n, name, kind)
}

func (l *lowerer) anonymousClass(n *sitter.Node) *syntax.Element {
	outer, _ := l.enclosing()
	l.anonymous[outer]++
	return l.class(n, outer+"$"+strconv.Itoa(l.anonymous[outer]), "anonymous")
}

func (l *lowerer) class(n *sitter.Node, name, kind string) *syntax.Element {
	l.doc.Classes = append(l.doc.Classes, Class{
		Name:      name,
		Kind:      kind,
		StartLine: n.StartPoint().Row + 1,
		EndLine:   n.EndPoint().Row + 1,
	})

	l.classes = append(l.classes, len(l.doc.Classes)-1)
	children := l.children(n)
	l.classes = l.classes[:len(l.classes)-1]

	return syntax.NewElement(syntax.KindOther,
		syntax.WithChildren(children...),
		syntax.WithBoundary(true),
		l.source(n, name))
}

// unit lowers a method or constructor. Declarations without a body
// (abstract, interface and native methods) are boundaries but not units.
func (l *lowerer) unit(n *sitter.Node) *syntax.Element {
	name := GetNodeText(n.ChildByFieldName("name"), l.src)
	hasBody := n.ChildByFieldName("body") != nil

	slot := -1
	if hasBody {
		kind := UnitMethod
		if n.Type() != "method_declaration" {
			kind = UnitConstructor
		}
		class, index := l.enclosing()
		slot = len(l.doc.Units)
		l.doc.Units = append(l.doc.Units, Unit{
			Name:       name,
			Signature:  name + "(" + strings.Join(l.parameterTypes(n), ", ") + ")",
			Class:      class,
			ClassIndex: index,
			Kind:       kind,
			StartLine:  n.StartPoint().Row + 1,
			EndLine:    n.EndPoint().Row + 1,
		})
	}

	el := syntax.NewElement(syntax.KindOther,
		syntax.WithChildren(l.children(n)...),
		syntax.WithBoundary(true),
		l.source(n, name))
	if slot >= 0 {
		l.doc.Units[slot].Node = el
	}
	return el
}

// parameterTypes lists the declared parameter types. A compact record
// constructor takes the record's component types.
func (l *lowerer) parameterTypes(n *sitter.Node) []string {
	params := n.ChildByFieldName("parameters")
	if params == nil && n.Type() == "compact_constructor_declaration" {
		for p := n.Parent(); p != nil; p = p.Parent() {
			if p.Type() == "record_declaration" {
				params = p.ChildByFieldName("parameters")
				break
			}
		}
	}
	if params == nil {
		return nil
	}

	var types []string
	for i := range int(params.NamedChildCount()) {
		p := params.NamedChild(i)
		switch p.Type() {
		case "formal_parameter":
			types = append(types, l.compactText(p.ChildByFieldName("type")))
		case "spread_parameter":
			for j := range int(p.NamedChildCount()) {
				c := p.NamedChild(j)
				if c.Type() != "modifiers" && c.Type() != "variable_declarator" {
					types = append(types, l.compactText(c)+"...")
					break
				}
			}
		}
	}
	return types
}

func (l *lowerer) compactText(n *sitter.Node) string {
	return strings.Join(strings.Fields(GetNodeText(n, l.src)), " ")
}

// operatorKind maps a binary expression to a connective kind when its
// operator short-circuits.
func operatorKind(n *sitter.Node) syntax.Kind {
	for i := range int(n.ChildCount()) {
		child := n.Child(i)
		if child.IsNamed() {
			continue
		}
		switch child.Type() {
		case "&&":
			return syntax.KindConditionalAnd
		case "||":
			return syntax.KindConditionalOr
		}
	}
	return syntax.KindOther
}

func isComment(n *sitter.Node) bool {
	switch n.Type() {
	case "line_comment", "block_comment", "comment":
		return true
	}
	return false
}

// sameNode compares tree-sitter nodes by position and type.
func sameNode(a, b *sitter.Node) bool {
	if a == nil || b == nil {
		return false
	}
	return a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte() && a.Type() == b.Type()
}
