package builtins

import (
	"testing"

	"github.com/spellshift/eldritch/internal/token"
	"github.com/spellshift/eldritch/internal/value"
)

type fakeCaller struct{}

func (fakeCaller) Call(callee value.Value, args []value.Value, kwargs map[string]value.Value, span token.Span) (value.Value, error) {
	return callee.NativeFunction().Call(args, kwargs)
}

func fn(f func(args []value.Value, kwargs map[string]value.Value) (value.Value, error)) value.Value {
	return value.NewNativeFunction(&value.NativeFunction{Name: "fn", Call: f})
}

func invoke(t *testing.T, name string, args ...value.Value) value.Value {
	t.Helper()
	v, err := table(fakeCaller{})[name](args, nil)
	if err != nil {
		t.Fatalf("%s: %v", name, err)
	}
	return v
}

func TestAbs(t *testing.T) {
	if invoke(t, "abs", value.Int(-5)).AsInt() != 5 {
		t.Fatal("expected abs(-5) == 5")
	}
	if invoke(t, "abs", value.Float(-2.5)).AsFloat() != 2.5 {
		t.Fatal("expected abs(-2.5) == 2.5")
	}
}

func TestBool(t *testing.T) {
	if invoke(t, "bool", value.Int(0)).AsBool() {
		t.Fatal("expected bool(0) == False")
	}
	if !invoke(t, "bool", value.String("x")).AsBool() {
		t.Fatal("expected bool(\"x\") == True")
	}
}

func TestChrAndOrdRoundTrip(t *testing.T) {
	ch := invoke(t, "chr", value.Int(65))
	if ch.AsString() != "A" {
		t.Fatalf("got %q, want A", ch.AsString())
	}
	code := invoke(t, "ord", ch)
	if code.AsInt() != 65 {
		t.Fatalf("got %d, want 65", code.AsInt())
	}
}

func TestHex(t *testing.T) {
	if got := invoke(t, "hex", value.Int(255)).AsString(); got != "0xff" {
		t.Fatalf("got %q, want 0xff", got)
	}
}

func TestIntParsesStringWithBase(t *testing.T) {
	if invoke(t, "int", value.String("ff"), value.Int(16)).AsInt() != 255 {
		t.Fatal("expected int(\"ff\", 16) == 255")
	}
}

func TestIntRejectsMalformedString(t *testing.T) {
	if _, err := table(fakeCaller{})["int"]([]value.Value{value.String("nope")}, nil); err == nil {
		t.Fatal("expected an error for a malformed numeric string")
	}
}

func TestStrAndRepr(t *testing.T) {
	if invoke(t, "str", value.Int(5)).AsString() != "5" {
		t.Fatal("expected str(5) == \"5\"")
	}
	if invoke(t, "repr", value.String("hi")).AsString() != `"hi"` {
		t.Fatalf("got %q, want quoted repr", invoke(t, "repr", value.String("hi")).AsString())
	}
}

func TestBytesFromString(t *testing.T) {
	v := invoke(t, "bytes", value.String("ab"))
	if string(v.AsBytes()) != "ab" {
		t.Fatalf("got %q, want ab", v.AsBytes())
	}
}

func TestLenOnListAndString(t *testing.T) {
	lst := value.NewList([]value.Value{value.Int(1), value.Int(2), value.Int(3)})
	if invoke(t, "len", lst).AsInt() != 3 {
		t.Fatal("expected len of a 3-element list to be 3")
	}
	if invoke(t, "len", value.String("hello")).AsInt() != 5 {
		t.Fatal("expected len(\"hello\") == 5")
	}
}

func TestListFromRange(t *testing.T) {
	r := invoke(t, "range", value.Int(3))
	v := invoke(t, "list", r)
	if v.List().Len() != 3 {
		t.Fatalf("got %d elements, want 3", v.List().Len())
	}
}

func TestTupleFromList(t *testing.T) {
	lst := value.NewList([]value.Value{value.Int(1), value.Int(2)})
	v := invoke(t, "tuple", lst)
	if len(v.Tuple()) != 2 {
		t.Fatalf("got %d elements, want 2", len(v.Tuple()))
	}
}

func TestSetDedupes(t *testing.T) {
	lst := value.NewList([]value.Value{value.Int(1), value.Int(1), value.Int(2)})
	v := invoke(t, "set", lst)
	if v.Set().Len() != 2 {
		t.Fatalf("got %d elements, want 2 unique", v.Set().Len())
	}
}

func TestReversed(t *testing.T) {
	lst := value.NewList([]value.Value{value.Int(1), value.Int(2), value.Int(3)})
	v := invoke(t, "reversed", lst)
	out := v.List().Snapshot()
	if out[0].AsInt() != 3 || out[2].AsInt() != 1 {
		t.Fatalf("got %v, want reversed order", out)
	}
}

func TestEnumerateYieldsIndexValuePairs(t *testing.T) {
	lst := value.NewList([]value.Value{value.String("a"), value.String("b")})
	v := invoke(t, "enumerate", lst)
	pairs := v.List().Snapshot()
	if len(pairs) != 2 {
		t.Fatalf("got %d pairs, want 2", len(pairs))
	}
	first := pairs[0].Tuple()
	if first[0].AsInt() != 0 || first[1].AsString() != "a" {
		t.Fatalf("got %v, want (0, \"a\")", first)
	}
}

func TestRangeWithStartStopStep(t *testing.T) {
	v := invoke(t, "range", value.Int(0), value.Int(10), value.Int(2))
	out := v.List().Snapshot()
	if len(out) != 5 || out[1].AsInt() != 2 {
		t.Fatalf("got %v, want [0,2,4,6,8]", out)
	}
}

func TestZipStopsAtShortestSequence(t *testing.T) {
	a := value.NewList([]value.Value{value.Int(1), value.Int(2), value.Int(3)})
	b := value.NewList([]value.Value{value.String("x"), value.String("y")})
	v := invoke(t, "zip", a, b)
	if v.List().Len() != 2 {
		t.Fatalf("got %d pairs, want 2", v.List().Len())
	}
}

func TestMapAppliesFunction(t *testing.T) {
	double := fn(func(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
		return value.Int(args[0].AsInt() * 2), nil
	})
	lst := value.NewList([]value.Value{value.Int(1), value.Int(2), value.Int(3)})
	v := invoke(t, "map", double, lst)
	out := v.List().Snapshot()
	if out[0].AsInt() != 2 || out[2].AsInt() != 6 {
		t.Fatalf("got %v, want doubled values", out)
	}
}

func TestFilterKeepsTruthyResults(t *testing.T) {
	isEven := fn(func(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
		return value.Bool(args[0].AsInt()%2 == 0), nil
	})
	lst := value.NewList([]value.Value{value.Int(1), value.Int(2), value.Int(3), value.Int(4)})
	v := invoke(t, "filter", isEven, lst)
	if v.List().Len() != 2 {
		t.Fatalf("got %d elements, want 2", v.List().Len())
	}
}

func TestReduceAccumulates(t *testing.T) {
	add := fn(func(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
		return value.Int(args[0].AsInt() + args[1].AsInt()), nil
	})
	lst := value.NewList([]value.Value{value.Int(1), value.Int(2), value.Int(3), value.Int(4)})
	v := invoke(t, "reduce", add, lst, value.Int(0))
	if v.AsInt() != 10 {
		t.Fatalf("got %d, want 10", v.AsInt())
	}
}

func TestSortedDefaultAscending(t *testing.T) {
	lst := value.NewList([]value.Value{value.Int(3), value.Int(1), value.Int(2)})
	v := invoke(t, "sorted", lst)
	out := v.List().Snapshot()
	if out[0].AsInt() != 1 || out[2].AsInt() != 3 {
		t.Fatalf("got %v, want ascending order", out)
	}
}

func TestMaxAndMin(t *testing.T) {
	lst := value.NewList([]value.Value{value.Int(3), value.Int(7), value.Int(1)})
	if invoke(t, "max", lst).AsInt() != 7 {
		t.Fatal("expected max == 7")
	}
	if invoke(t, "min", lst).AsInt() != 1 {
		t.Fatal("expected min == 1")
	}
}

func TestAssertPassesAndFails(t *testing.T) {
	if _, err := table(fakeCaller{})["assert"]([]value.Value{value.Bool(true)}, nil); err != nil {
		t.Fatalf("expected assert(True) to pass, got %v", err)
	}
	if _, err := table(fakeCaller{})["assert"]([]value.Value{value.Bool(false)}, nil); err == nil {
		t.Fatal("expected assert(False) to fail")
	}
}

func TestAssertEqPassesAndFails(t *testing.T) {
	if _, err := table(fakeCaller{})["assert_eq"]([]value.Value{value.Int(1), value.Int(1)}, nil); err != nil {
		t.Fatalf("expected assert_eq(1, 1) to pass, got %v", err)
	}
	if _, err := table(fakeCaller{})["assert_eq"]([]value.Value{value.Int(1), value.Int(2)}, nil); err == nil {
		t.Fatal("expected assert_eq(1, 2) to fail")
	}
}

func TestFailAlwaysErrors(t *testing.T) {
	if _, err := table(fakeCaller{})["fail"]([]value.Value{value.String("boom")}, nil); err == nil {
		t.Fatal("expected fail() to always return an error")
	}
}

func TestAllAndAny(t *testing.T) {
	allTrue := value.NewList([]value.Value{value.Bool(true), value.Bool(true)})
	mixed := value.NewList([]value.Value{value.Bool(false), value.Bool(true)})
	if !invoke(t, "all", allTrue).AsBool() {
		t.Fatal("expected all([True, True]) == True")
	}
	if invoke(t, "all", mixed).AsBool() {
		t.Fatal("expected all([False, True]) == False")
	}
	if !invoke(t, "any", mixed).AsBool() {
		t.Fatal("expected any([False, True]) == True")
	}
}

func TestType(t *testing.T) {
	if invoke(t, "type", value.Int(1)).AsString() != "int" {
		t.Fatalf("got %q, want int", invoke(t, "type", value.Int(1)).AsString())
	}
	if invoke(t, "type", value.String("x")).AsString() != "string" {
		t.Fatalf("got %q, want string", invoke(t, "type", value.String("x")).AsString())
	}
}

func TestBuiltinsListsNames(t *testing.T) {
	v := invoke(t, "builtins")
	if v.List().Len() != len(Names) {
		t.Fatalf("got %d names, want %d", v.List().Len(), len(Names))
	}
}
