package library

import (
	"testing"

	"github.com/spellshift/eldritch/internal/diag"
	"github.com/spellshift/eldritch/internal/value"
)

func TestTableDispatchRoutesToMethod(t *testing.T) {
	tbl := &Table{Name: "demo", Methods: map[string]Method{
		"double": func(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
			n, err := Int("double", args[0])
			if err != nil {
				return value.None, err
			}
			return value.Int(n * 2), nil
		},
	}}
	v, err := tbl.Dispatch("double", []value.Value{value.Int(21)}, nil)
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if v.AsInt() != 42 {
		t.Fatalf("got %d, want 42", v.AsInt())
	}
}

func TestTableDispatchUnknownMethod(t *testing.T) {
	tbl := &Table{Name: "demo", Methods: map[string]Method{}}
	if _, err := tbl.Dispatch("missing", nil, nil); err == nil {
		t.Fatal("expected an error for an unknown method")
	}
}

func TestArityMismatch(t *testing.T) {
	if err := Arity("f", []value.Value{value.Int(1)}, 2); err == nil {
		t.Fatal("expected an arity error")
	}
	if err := Arity("f", []value.Value{value.Int(1), value.Int(2)}, 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestArityRange(t *testing.T) {
	if err := ArityRange("f", []value.Value{}, 1, 2); err == nil {
		t.Fatal("expected an error for too few args")
	}
	if err := ArityRange("f", []value.Value{value.Int(1), value.Int(2), value.Int(3)}, 1, 2); err == nil {
		t.Fatal("expected an error for too many args")
	}
	if err := ArityRange("f", []value.Value{value.Int(1)}, 1, 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestStrTypeMismatch(t *testing.T) {
	if _, err := Str("f", value.Int(1)); err == nil {
		t.Fatal("expected a TypeError coercing an int as a string")
	}
}

func TestStringListRoundTrip(t *testing.T) {
	v := ToStringList([]string{"b", "a"})
	ss, err := StringList("f", v)
	if err != nil {
		t.Fatalf("StringList: %v", err)
	}
	if len(ss) != 2 || ss[0] != "b" || ss[1] != "a" {
		t.Fatalf("got %v", ss)
	}
}

func TestStringDictRoundTrip(t *testing.T) {
	v := ToStringDict(map[string]string{"k": "v"})
	m, err := StringDict("f", v)
	if err != nil {
		t.Fatalf("StringDict: %v", err)
	}
	if m["k"] != "v" {
		t.Fatalf("got %v", m)
	}
}

func TestOptStringFallback(t *testing.T) {
	s, err := OptString("f", value.None, "default")
	if err != nil {
		t.Fatalf("OptString: %v", err)
	}
	if s != "default" {
		t.Fatalf("got %q, want default", s)
	}
}

func TestMethodErrorPreservesKind(t *testing.T) {
	err := MethodError(diag.ValueError, "bad value")
	de, ok := err.(*diag.Error)
	if !ok {
		t.Fatalf("got %T, want *diag.Error", err)
	}
	if de.ErrKind != diag.ValueError {
		t.Fatalf("got %v, want ValueError", de.ErrKind)
	}
}

func TestRegisterDefinesForeign(t *testing.T) {
	root := value.NewRoot(value.StdPrinter{})
	Register(root, "demo", &Table{Name: "demo"})
	v, ok := root.Get("demo")
	if !ok || v.Kind() != value.KindForeign {
		t.Fatalf("expected a Foreign value bound to 'demo'")
	}
}
