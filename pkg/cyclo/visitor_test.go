package cyclo

import (
	"sync"
	"testing"

	"github.com/panbanda/cyclo/pkg/syntax"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	leaf  = syntax.Leaf
	expr  = syntax.Expr
	block = syntax.Block
)

// method wraps statements in a scope boundary, the way a front end lowers a
// method declaration.
func method(body ...*syntax.Element) *syntax.Element {
	return syntax.Unit(block(body...))
}

func andCond() *syntax.Element { return expr(syntax.And(leaf(), leaf())) }
func orCond() *syntax.Element  { return expr(syntax.Or(leaf(), leaf())) }

var (
	countPaths = DefaultOptions()
	plain      = NewOptions(IgnoreBooleanPaths)
)

func TestRuleTableComplete(t *testing.T) {
	for _, k := range syntax.Kinds() {
		assert.NotNil(t, rules[k], "no rule for kind %s", k)
	}
}

func TestComputeBaseline(t *testing.T) {
	assert.Equal(t, 1, Compute(method(), countPaths))
	assert.Equal(t, 1, Compute(method(leaf(), expr(leaf()), block()), plain))
	assert.Equal(t, 1, Compute(nil, countPaths))
}

func TestComputeStatements(t *testing.T) {
	tests := []struct {
		name      string
		body      *syntax.Element
		plain     int
		withPaths int
	}{
		{"if", syntax.If(expr(leaf()), block(), nil), 2, 2},
		{"if else", syntax.If(expr(leaf()), block(), block()), 3, 3},
		{"if and", syntax.If(andCond(), block(), nil), 2, 3},
		{"if else or", syntax.If(orCond(), block(), block()), 3, 4},
		{"else if chain", syntax.If(expr(leaf()), block(), syntax.If(expr(leaf()), block(), block())), 5, 5},
		{"while", syntax.While(expr(leaf()), block()), 2, 2},
		{"while and", syntax.While(andCond(), block()), 2, 3},
		{"do or", syntax.Do(block(), orCond()), 2, 3},
		{"for", syntax.For(expr(leaf()), block()), 2, 2},
		{"for and", syntax.For(andCond(), block()), 2, 3},
		{"for without condition", syntax.For(nil, block()), 2, 2},
		{"foreach", syntax.ForEach(expr(leaf()), block()), 2, 2},
		{"foreach connective in iterable", syntax.ForEach(andCond(), block()), 2, 2},
		{"ternary", syntax.Ternary(expr(leaf()), leaf(), leaf()), 2, 2},
		{"ternary and", syntax.Ternary(andCond(), leaf(), leaf()), 2, 3},
		{"lambda", syntax.Lambda(block()), 2, 2},
		{"catch", syntax.Catch(block()), 2, 2},
		{"throw", syntax.Throw(expr(leaf())), 2, 2},
		{"finally", syntax.Finally(block()), 2, 2},
		{"try catch finally", syntax.Group(block(), syntax.Catch(block()), syntax.Catch(block()), syntax.Finally(block())), 4, 4},
		{"nested ifs", syntax.If(expr(leaf()), block(syntax.If(andCond(), block(), nil)), nil), 3, 4},
		{"lambda body counts", syntax.Lambda(block(syntax.If(expr(leaf()), block(), nil))), 3, 3},
		{"connective outside a condition", expr(syntax.And(leaf(), leaf())), 1, 1},
		{"ternary inside condition", syntax.If(expr(syntax.Ternary(expr(leaf()), leaf(), leaf())), block(), nil), 3, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.plain, Compute(method(tt.body), plain), "ignoring boolean paths")
			assert.Equal(t, tt.withPaths, Compute(method(tt.body), countPaths), "counting boolean paths")
		})
	}
}

func TestComputeAssert(t *testing.T) {
	simple := method(syntax.Assert(expr(leaf()), nil))
	withOr := method(syntax.Assert(orCond(), expr(leaf())))

	tests := []struct {
		name string
		unit *syntax.Element
		opts Options
		want int
	}{
		{"ignored by default", withOr, DefaultOptions(), 1},
		{"ignored without boolean paths", withOr, plain, 1},
		{"considered", simple, NewOptions(ConsiderAssert), 3},
		{"considered with or", withOr, NewOptions(ConsiderAssert), 4},
		{"considered with or, paths ignored", withOr, NewOptions(ConsiderAssert, IgnoreBooleanPaths), 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Compute(tt.unit, tt.opts))
		})
	}
}

func TestComputeAssertStillDescends(t *testing.T) {
	unit := method(syntax.Assert(expr(syntax.Ternary(expr(leaf()), leaf(), leaf())), nil))

	assert.Equal(t, 2, Compute(unit, DefaultOptions()))
	assert.Equal(t, 4, Compute(unit, NewOptions(ConsiderAssert)))
}

func TestComputeSwitchColonLabels(t *testing.T) {
	tests := []struct {
		name      string
		sw        *syntax.Element
		plain     int
		withPaths int
	}{
		{
			"three cases with bodies",
			syntax.Switch(expr(leaf()),
				syntax.Case(leaf()), block(),
				syntax.Case(leaf()), block(),
				syntax.Case(leaf()), block()),
			4, 4,
		},
		{
			"default never counts",
			syntax.Switch(expr(leaf()),
				syntax.Case(leaf()), block(),
				syntax.Default(), block()),
			2, 2,
		},
		{
			"multi-value label",
			syntax.Switch(expr(leaf()),
				syntax.Case(leaf(), leaf()), block()),
			2, 3,
		},
		{
			"stacked labels share a body",
			syntax.Switch(expr(leaf()),
				syntax.Case(leaf()),
				syntax.Case(leaf()), block(),
				syntax.Default(), block()),
			2, 3,
		},
		{
			"trailing empty label",
			syntax.Switch(expr(leaf()),
				syntax.Case(leaf()), block(),
				syntax.Case(leaf())),
			2, 3,
		},
		{
			"selector connective",
			syntax.Switch(andCond(),
				syntax.Case(leaf()), block()),
			2, 3,
		},
		{
			"label without values",
			syntax.Switch(expr(leaf()),
				syntax.Case(), block()),
			2, 1,
		},
		{
			"empty switch",
			syntax.Switch(expr(leaf())),
			1, 1,
		},
		{
			"body decisions count",
			syntax.Switch(expr(leaf()),
				syntax.Case(leaf()), block(syntax.If(expr(leaf()), block(), nil))),
			3, 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.plain, Compute(method(tt.sw), plain), "ignoring boolean paths")
			assert.Equal(t, tt.withPaths, Compute(method(tt.sw), countPaths), "counting boolean paths")
		})
	}
}

func TestComputeSwitchRules(t *testing.T) {
	sw := syntax.SwitchExpr(expr(leaf()),
		syntax.Rule(syntax.Case(leaf()), expr(leaf())),
		syntax.Rule(syntax.Case(leaf(), leaf(), leaf()), block()),
		syntax.Rule(syntax.Default(), syntax.Throw(expr(leaf()))))

	// Arrow rules only contribute when boolean paths are counted; the throw
	// in the default rule counts either way.
	assert.Equal(t, 2, Compute(method(sw), plain))
	assert.Equal(t, 6, Compute(method(sw), countPaths))
}

func TestComputeSwitchStatementAndExpressionAgree(t *testing.T) {
	body := func() []*syntax.Element {
		return []*syntax.Element{
			syntax.Case(leaf(), leaf()), block(),
			syntax.Case(leaf()),
			syntax.Case(leaf()), block(),
			syntax.Default(), block(),
		}
	}

	for _, opts := range []Options{plain, countPaths} {
		stmt := Compute(method(syntax.Switch(orCond(), body()...)), opts)
		exprForm := Compute(method(syntax.SwitchExpr(orCond(), body()...)), opts)
		assert.Equal(t, stmt, exprForm, "options %s", opts)
	}
}

func TestComputeNestedSwitch(t *testing.T) {
	inner := syntax.Switch(expr(leaf()), syntax.Case(leaf()), block(), syntax.Case(leaf()), block())
	outer := syntax.Switch(expr(leaf()), syntax.Case(leaf()), block(inner), syntax.Case(leaf()), block())

	assert.Equal(t, 5, Compute(method(outer), plain))
}

func TestComputeScopeBoundaries(t *testing.T) {
	nested := syntax.Unit(block(
		syntax.If(expr(leaf()), block(), block()),
		syntax.While(andCond(), block()),
	))
	outer := method(
		syntax.If(expr(leaf()), block(), nil),
		syntax.Group(nested),
	)

	assert.Equal(t, 2, Compute(outer, countPaths), "nested unit must not leak into the outer score")
	assert.Equal(t, 5, Compute(nested, countPaths), "nested unit measured on its own")
}

func TestComputeTopNodeIdentity(t *testing.T) {
	// Two structurally identical units: only the designated top node is
	// entered.
	a := syntax.Unit(syntax.If(expr(leaf()), block(), nil))
	b := syntax.Unit(syntax.If(expr(leaf()), block(), nil))
	file := syntax.Group(a, b)

	assert.Equal(t, 2, Compute(a, plain))
	assert.Equal(t, 2, Compute(b, plain))
	assert.Equal(t, 1, Compute(file, plain))

	v := NewVisitor(a, plain)
	v.Visit(file)
	assert.Equal(t, 2, v.Value(), "only the top node's subtree is measured")
}

func TestComputeNonBoundaryTop(t *testing.T) {
	body := block(syntax.If(expr(leaf()), block(), nil), syntax.Catch(block()))
	assert.Equal(t, 3, Compute(body, plain))
}

func TestComputeIdempotent(t *testing.T) {
	unit := method(
		syntax.If(andCond(), block(), block()),
		syntax.Switch(orCond(), syntax.Case(leaf(), leaf()), block(), syntax.Default(), block()),
		syntax.Assert(orCond(), nil),
	)
	opts := NewOptions(ConsiderAssert)

	first := Compute(unit, opts)
	require.Equal(t, 10, first)
	assert.Equal(t, first, Compute(unit, opts))
}

func TestComputeConcurrent(t *testing.T) {
	unit := method(
		syntax.For(andCond(), block(syntax.If(orCond(), block(), nil))),
		syntax.Lambda(block(syntax.Throw(expr(leaf())))),
	)
	want := map[Options]int{
		countPaths: Compute(unit, countPaths),
		plain:      Compute(unit, plain),
	}
	require.Equal(t, 7, want[countPaths])
	require.Equal(t, 5, want[plain])

	var wg sync.WaitGroup
	for i := range 32 {
		opts := countPaths
		if i%2 == 0 {
			opts = plain
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, want[opts], Compute(unit, opts))
		}()
	}
	wg.Wait()
}

func TestVisitorValueStartsAtOne(t *testing.T) {
	v := NewVisitor(method(), DefaultOptions())
	assert.Equal(t, 1, v.Value())
	v.Visit(nil)
	assert.Equal(t, 1, v.Value())
}
