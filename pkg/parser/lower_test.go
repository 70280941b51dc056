package parser

import (
	"testing"

	"github.com/panbanda/cyclo/pkg/cyclo"
	"github.com/panbanda/cyclo/pkg/syntax"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	withPaths = cyclo.DefaultOptions()
	noPaths   = cyclo.NewOptions(cyclo.IgnoreBooleanPaths)
)

func lowerJava(t *testing.T, src string) *Document {
	t.Helper()

	p := New()
	defer p.Close()

	result, err := p.Parse([]byte(src), LangJava, "Test.java")
	require.NoError(t, err)
	return Lower(result)
}

func unitNamed(t *testing.T, doc *Document, name string) Unit {
	t.Helper()
	for _, u := range doc.Units {
		if u.Name == name {
			return u
		}
	}
	require.Failf(t, "unit not found", "no unit named %q in %d units", name, len(doc.Units))
	return Unit{}
}

// score wraps method in a class and measures it. Units nested inside the
// method come after it in source order.
func score(t *testing.T, method string, opts cyclo.Options) int {
	t.Helper()
	doc := lowerJava(t, "class T {\n"+method+"\n}\n")
	require.NotEmpty(t, doc.Units)
	return cyclo.Compute(doc.Units[0].Node, opts)
}

func TestLowerScores(t *testing.T) {
	tests := []struct {
		name      string
		method    string
		plain     int
		withPaths int
	}{
		{
			"straight line",
			`int simple() { return 1; }`,
			1, 1,
		},
		{
			"if with connective and else-if",
			`int branches(int x) {
				if (x > 0 && x < 10) { return 1; } else if (x < 0) { return -1; }
				return 0;
			}`,
			4, 5,
		},
		{
			"loops",
			`void loops(int[] xs, int n, boolean ok, boolean a, boolean b, boolean c) {
				for (int i = 0; i < n && ok; i++) { }
				for (int x : xs) { }
				while (a || b) { }
				do { } while (c);
			}`,
			5, 7,
		},
		{
			"for without condition",
			`void spin() { for (;;) { break; } }`,
			2, 2,
		},
		{
			"try catch finally throw",
			`void io() {
				try { f(); }
				catch (java.io.IOException e) { }
				catch (RuntimeException e) { throw e; }
				finally { g(); }
			}`,
			5, 5,
		},
		{
			"ternary with connective",
			`int pick(boolean a, boolean b) { return a && b ? 1 : 0; }`,
			2, 3,
		},
		{
			"connective outside a condition",
			`boolean both(boolean a, boolean b) { return a && b; }`,
			1, 1,
		},
		{
			"parenthesized connectives",
			`void m(boolean a, boolean b, boolean c) { if ((a || b) && c) { } }`,
			2, 4,
		},
		{
			"stacked labels share a body",
			`void m(int x) { switch (x) { case 1: case 2: foo(); break; default: } }`,
			2, 3,
		},
		{
			"comment between stacked labels",
			`void m(int x) {
				switch (x) {
					case 1: // falls through
					case 2:
						foo();
						break;
					default:
						bar();
				}
			}`,
			2, 3,
		},
		{
			"multi-value colon label",
			`void m(int x) { switch (x) { case 1, 2: foo(); break; case 3: bar(); } }`,
			3, 4,
		},
		{
			"arrow rules",
			`int m(int x) {
				return switch (x) {
					case 1, 2 -> 10;
					case 3 -> 20;
					default -> throw new IllegalStateException();
				};
			}`,
			2, 5,
		},
		{
			"pattern labels and guards",
			`int m(Object o) {
				return switch (o) {
					case Integer i when i > 0 && i < 3 -> 1;
					case String s -> 2;
					default -> 0;
				};
			}`,
			1, 1,
		},
		{
			"lambda counts for the enclosing method",
			`void run(boolean ready) { Runnable r = () -> { if (ready) go(); }; }`,
			3, 3,
		},
		{
			"anonymous class excluded",
			`void run(boolean flag) {
				Object o = new Object() {
					public String toString() { return flag ? "a" : "b"; }
				};
			}`,
			1, 1,
		},
		{
			"local class excluded",
			`void run() {
				class Local { int f(int x) { return x > 0 ? 1 : 0; } }
				if (true) { }
			}`,
			2, 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.plain, score(t, tt.method, noPaths), "ignoring boolean paths")
			assert.Equal(t, tt.withPaths, score(t, tt.method, withPaths), "counting boolean paths")
		})
	}
}

func TestLowerAssert(t *testing.T) {
	method := `void check(int x) { assert x > 0 || x < -5 : "bad"; }`

	assert.Equal(t, 1, score(t, method, cyclo.DefaultOptions()))
	assert.Equal(t, 4, score(t, method, cyclo.NewOptions(cyclo.ConsiderAssert)))
	assert.Equal(t, 3, score(t, method, cyclo.NewOptions(cyclo.ConsiderAssert, cyclo.IgnoreBooleanPaths)))
}

func TestLowerUnits(t *testing.T) {
	src := `package acme;

class Outer {
    Outer(int size) { }

    void run(boolean ready) {
        Object o = new Object() {
            public String toString() { return "x"; }
        };
    }

    static java.util.Map<String, Integer> index(String first, String... rest) { return null; }

    class Inner {
        void nested() { }
    }
}

interface Shape {
    double area();
    default String describe() { return "shape"; }
}
`
	doc := lowerJava(t, src)

	names := make([]string, 0, len(doc.Units))
	for _, u := range doc.Units {
		names = append(names, u.Name)
	}
	assert.Equal(t, []string{"Outer", "run", "toString", "index", "nested", "describe"}, names)

	ctor := unitNamed(t, doc, "Outer")
	assert.Equal(t, UnitConstructor, ctor.Kind)
	assert.Equal(t, "Outer(int)", ctor.Signature)
	assert.Equal(t, "Outer", ctor.Class)
	assert.Equal(t, uint32(4), ctor.StartLine)

	run := unitNamed(t, doc, "run")
	assert.Equal(t, UnitMethod, run.Kind)
	assert.Equal(t, "run(boolean)", run.Signature)
	assert.Equal(t, uint32(6), run.StartLine)
	assert.Equal(t, uint32(10), run.EndLine)

	assert.Equal(t, "Outer$1", unitNamed(t, doc, "toString").Class)
	assert.Equal(t, "index(String, String...)", unitNamed(t, doc, "index").Signature)
	assert.Equal(t, "Outer.Inner", unitNamed(t, doc, "nested").Class)
	assert.Equal(t, "Shape", unitNamed(t, doc, "describe").Class)

	classes := make([]string, 0, len(doc.Classes))
	for _, c := range doc.Classes {
		classes = append(classes, c.Name+":"+c.Kind)
	}
	assert.Equal(t, []string{"Outer:class", "Outer$1:anonymous", "Outer.Inner:class", "Shape:interface"}, classes)
}

func TestLowerLocalClassNames(t *testing.T) {
	doc := lowerJava(t, `class Outer {
    void a() { class Local { void f() { } } }
    void b() {
        class Local { void g() { } }
        class Helper { void h() { } }
    }
    static class Member { }
}`)

	names := make([]string, 0, len(doc.Classes))
	for _, c := range doc.Classes {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"Outer", "Outer$1Local", "Outer$2Local", "Outer$1Helper", "Outer.Member"}, names)

	for _, u := range doc.Units {
		require.GreaterOrEqual(t, u.ClassIndex, 0, "unit %s", u.Name)
		assert.Equal(t, u.Class, doc.Classes[u.ClassIndex].Name, "unit %s", u.Name)
	}
	assert.Equal(t, 1, unitNamed(t, doc, "f").ClassIndex)
	assert.Equal(t, 2, unitNamed(t, doc, "g").ClassIndex)
	assert.Equal(t, 3, unitNamed(t, doc, "h").ClassIndex)
}

func TestLowerUnitNodes(t *testing.T) {
	doc := lowerJava(t, `class A { void a() { if (x) { } } void b() { } }`)
	require.Len(t, doc.Units, 2)

	for _, u := range doc.Units {
		require.NotNil(t, u.Node)
		assert.True(t, u.Node.IsScopeBoundary(), "unit %s must be a boundary", u.Name)
		assert.Equal(t, "method_declaration", u.Node.Type())
		assert.Equal(t, u.Name, u.Node.Name())
	}

	// The file root is not a unit; measuring it skips every declaration.
	require.NotNil(t, doc.Root)
	assert.False(t, doc.Root.IsScopeBoundary())
	assert.Equal(t, 1, cyclo.Compute(doc.Root, withPaths))
}

func TestLowerRecordCompactConstructor(t *testing.T) {
	doc := lowerJava(t, `record Point(int x, int y) {
    Point {
        if (x < 0) throw new IllegalArgumentException();
    }
}`)
	require.Len(t, doc.Units, 1)

	u := doc.Units[0]
	assert.Equal(t, UnitConstructor, u.Kind)
	assert.Equal(t, "Point", u.Class)
	assert.Equal(t, 3, cyclo.Compute(u.Node, withPaths))
}

func TestLowerConditionShape(t *testing.T) {
	doc := lowerJava(t, `class A { void a(boolean p, boolean q) { while (p && q) { } } }`)
	require.Len(t, doc.Units, 1)

	loop := findFirst(doc.Units[0].Node, syntax.KindWhile)
	require.NotNil(t, loop)
	require.Len(t, syntax.ChildrenOfKind(loop, syntax.KindExpression), 1)

	cond := loop.Condition()
	require.NotNil(t, cond)
	assert.Equal(t, syntax.KindExpression, cond.Kind())
	assert.Equal(t, 1, cyclo.BooleanExpressionComplexity(cond))
}

func TestLowerSwitchKind(t *testing.T) {
	tests := []struct {
		name   string
		method string
		want   syntax.Kind
	}{
		{"block", `void m(int x) { switch (x) { default: } }`, syntax.KindSwitchStatement},
		{"labeled", `void m(int x) { outer: switch (x) { default: break outer; } }`, syntax.KindSwitchStatement},
		{"lambda block body", `void m(int x) { Runnable r = () -> { switch (x) { default: } }; }`, syntax.KindSwitchStatement},
		{"rule block body", `void m(int x, int y) { switch (x) { case 1 -> { switch (y) { default -> { } } } default -> { } } }`, syntax.KindSwitchStatement},
		{"if branch", `void m(int x, boolean b) { if (b) switch (x) { default: } }`, syntax.KindSwitchStatement},
		{"return", `int m(int x) { return switch (x) { default -> 0; }; }`, syntax.KindSwitchExpression},
		{"initializer", `void m(int x) { int y = switch (x) { default -> 0; }; }`, syntax.KindSwitchExpression},
		{"argument", `void m(int x) { f(switch (x) { default -> 0; }); }`, syntax.KindSwitchExpression},
		{"lambda expression body", `void m(int x) { java.util.function.IntSupplier s = () -> switch (x) { default -> 0; }; }`, syntax.KindSwitchExpression},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := lowerJava(t, "class T {\n"+tt.method+"\n}\n")
			require.NotEmpty(t, doc.Units)

			var kinds []syntax.Kind
			syntax.Walk(doc.Units[0].Node, func(n syntax.Node) bool {
				if n.Kind().IsSwitch() {
					kinds = append(kinds, n.Kind())
				}
				return true
			})
			require.NotEmpty(t, kinds)
			for _, k := range kinds {
				assert.Equal(t, tt.want, k)
			}
		})
	}
}

func TestLowerIsStable(t *testing.T) {
	src := `class S {
    int m(int x, boolean a, boolean b) {
        switch (x) { case 1: case 2: return a || b ? 1 : 2; default: return 0; }
    }
}`
	first := lowerJava(t, src)
	second := lowerJava(t, src)
	require.Len(t, first.Units, 1)
	require.Len(t, second.Units, 1)

	for _, opts := range []cyclo.Options{withPaths, noPaths} {
		assert.Equal(t,
			cyclo.Compute(first.Units[0].Node, opts),
			cyclo.Compute(second.Units[0].Node, opts))
	}
	assert.Equal(t, first.Units[0].Node.String(), second.Units[0].Node.String())
}

func findFirst(root syntax.Node, kind syntax.Kind) syntax.Node {
	var found syntax.Node
	syntax.Walk(root, func(n syntax.Node) bool {
		if found != nil {
			return false
		}
		if n.Kind() == kind {
			found = n
			return false
		}
		return true
	})
	return found
}
