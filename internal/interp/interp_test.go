package interp_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/spellshift/eldritch/internal/diag"
	"github.com/spellshift/eldritch/internal/interp"
	"github.com/spellshift/eldritch/internal/parser"
	"github.com/spellshift/eldritch/internal/value"
)

func run(t *testing.T, src string) value.Value {
	t.Helper()
	prog, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	root := value.NewRoot(value.StdPrinter{Out: func(string) {}, Err: func(string) {}})
	in := interp.New(root)
	v, err := in.Run(prog)
	if err != nil {
		t.Fatalf("run error: %v", err)
	}
	return v
}

func runErr(t *testing.T, src string) error {
	t.Helper()
	prog, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	root := value.NewRoot(value.StdPrinter{Out: func(string) {}, Err: func(string) {}})
	in := interp.New(root)
	_, err = in.Run(prog)
	if err == nil {
		t.Fatal("expected a runtime error, got none")
	}
	return err
}

func TestArithmeticAndPrecedence(t *testing.T) {
	v := run(t, "2 + 3 * 4\n")
	if diff := cmp.Diff(int64(14), v.AsInt()); diff != "" {
		t.Fatalf("value mismatch (-want +got):\n%s", diff)
	}
}

func TestUnaryBeforePower(t *testing.T) {
	v := run(t, "-2 ** 2\n")
	if diff := cmp.Diff(int64(-4), v.AsInt()); diff != "" {
		t.Fatalf("-2**2 mismatch (-want +got):\n%s", diff)
	}
}

func TestClosureUpvalue(t *testing.T) {
	v := run(t, `
def make_counter():
    n = 0
    def bump():
        n += 1
        return n
    return bump

c = make_counter()
c()
c()
c()
`)
	if diff := cmp.Diff(int64(3), v.AsInt()); diff != "" {
		t.Fatalf("counter mismatch (-want +got):\n%s", diff)
	}
}

func TestTupleUnpackWithStarTarget(t *testing.T) {
	v := run(t, `
a, *rest, z = [1, 2, 3, 4, 5]
rest
`)
	if v.Kind() != value.KindList {
		t.Fatalf("expected rest to be a list, got %s", v.Kind())
	}
	if diff := cmp.Diff("[2, 3, 4]", value.Display(v)); diff != "" {
		t.Fatalf("rest mismatch (-want +got):\n%s", diff)
	}
}

func TestTupleUnpackArityMismatch(t *testing.T) {
	err := runErr(t, "a, b = [1, 2, 3]\n")
	if err == nil {
		t.Fatal("expected a ValueError")
	}
}

func TestAugmentedAssignPreservesListIdentity(t *testing.T) {
	v := run(t, `
l = [1]
id1 = l
l += [2]
id1 == l
`)
	if !v.AsBool() {
		t.Fatal("expected id1 == l after in-place += ")
	}
}

func TestForLoopSnapshotsIterable(t *testing.T) {
	v := run(t, `
xs = [1, 2, 3]
total = 0
for x in xs:
    total += x
    xs.append(99)
total
`)
	if diff := cmp.Diff(int64(6), v.AsInt()); diff != "" {
		t.Fatalf("for-loop snapshot mismatch (-want +got):\n%s", diff)
	}
}

func TestListComprehensionWithFilter(t *testing.T) {
	v := run(t, "[x * x for x in [1, 2, 3, 4, 5] if x % 2 == 0]\n")
	if diff := cmp.Diff("[4, 16]", value.Display(v)); diff != "" {
		t.Fatalf("comprehension mismatch (-want +got):\n%s", diff)
	}
}

func TestDictComprehensionSortedIteration(t *testing.T) {
	v := run(t, "{k: k * 2 for k in [3, 1, 2]}\n")
	if diff := cmp.Diff("{1: 2, 2: 4, 3: 6}", value.Display(v)); diff != "" {
		t.Fatalf("dict comprehension mismatch (-want +got):\n%s", diff)
	}
}

func TestFunctionCallDefaultsAndKwargs(t *testing.T) {
	v := run(t, `
def greet(name, greeting="hi"):
    return greeting + " " + name

greet("world", greeting="hello")
`)
	if diff := cmp.Diff("hello world", v.AsString()); diff != "" {
		t.Fatalf("kwarg binding mismatch (-want +got):\n%s", diff)
	}
}

func TestFunctionCallVarargsAndKwargs(t *testing.T) {
	v := run(t, `
def collect(first, *rest, **opts):
    return [first, len(rest), len(opts)]

collect(1, 2, 3, a=1, b=2)
`)
	if diff := cmp.Diff("[1, 2, 2]", value.Display(v)); diff != "" {
		t.Fatalf("varargs/kwargs mismatch (-want +got):\n%s", diff)
	}
}

func TestMissingRequiredArgumentErrors(t *testing.T) {
	runErr(t, `
def need(a, b):
    return a + b

need(1)
`)
}

func TestRecursionLimitRaisesRecursionError(t *testing.T) {
	err := runErr(t, `
def loop(n):
    return loop(n + 1)

loop(0)
`)
	if err == nil {
		t.Fatal("expected RecursionError")
	}
	var de *diag.Error
	if !errors.As(err, &de) || de.ErrKind != diag.RecursionError {
		t.Fatalf("got %v, want RecursionError", err)
	}
}

func TestEvalSharesEnvironment(t *testing.T) {
	v := run(t, `
eval("x = 41")
eval("x + 1")
`)
	if diff := cmp.Diff(int64(42), v.AsInt()); diff != "" {
		t.Fatalf("eval-shared-env mismatch (-want +got):\n%s", diff)
	}
}

func TestFStringInterpolation(t *testing.T) {
	v := run(t, `
name = "eldritch"
f"hello {name}, {1 + 1}!"
`)
	if diff := cmp.Diff("hello eldritch, 2!", v.AsString()); diff != "" {
		t.Fatalf("f-string mismatch (-want +got):\n%s", diff)
	}
}

func TestCycleSafeEqualityAndDisplay(t *testing.T) {
	v := run(t, `
a = []
b = []
a.append(b)
b.append(a)
a == b
`)
	if !v.AsBool() {
		t.Fatal("expected cyclic lists to compare equal")
	}
	self := run(t, "a = []\na.append(a)\na\n")
	if diff := cmp.Diff("[[...]]", value.Display(self)); diff != "" {
		t.Fatalf("cyclic display mismatch (-want +got):\n%s", diff)
	}
}

func TestUndefinedNameErrorSuggestsClosestMatch(t *testing.T) {
	err := runErr(t, `
lenght = 3
print(length)
`)
	if err == nil {
		t.Fatal("expected NameError")
	}
	if !strings.Contains(err.Error(), "Did you mean: 'lenght'?") {
		t.Fatalf("got %v, want a suggestion of 'lenght'", err)
	}
}
