package regexlib

import (
	"testing"

	"github.com/spellshift/eldritch/internal/value"
)

func call(t *testing.T, d value.Dispatcher, method string, args ...value.Value) value.Value {
	t.Helper()
	v, err := d.Dispatch(method, args, nil)
	if err != nil {
		t.Fatalf("%s: %v", method, err)
	}
	return v
}

func TestMatchCapturesGroup(t *testing.T) {
	re := New()
	v := call(t, re, "match", value.String(`id=(\d+)`), value.String("id=42"))
	if v.AsString() != "42" {
		t.Fatalf("got %q, want 42", v.AsString())
	}
}

func TestMatchNoHitReturnsEmptyString(t *testing.T) {
	re := New()
	v := call(t, re, "match", value.String(`(nope)`), value.String("nothing here"))
	if v.AsString() != "" {
		t.Fatalf("got %q, want empty", v.AsString())
	}
}

func TestMatchAllReturnsEveryMatch(t *testing.T) {
	re := New()
	v := call(t, re, "match_all", value.String(`\d+`), value.String("a1 b22 c333"))
	lst := v.List()
	if lst.Len() != 3 {
		t.Fatalf("got %d matches, want 3", lst.Len())
	}
}

func TestReplaceOnlyFirstOccurrence(t *testing.T) {
	re := New()
	v := call(t, re, "replace", value.String(`a`), value.String("banana"), value.String("X"))
	if v.AsString() != "bXnana" {
		t.Fatalf("got %q, want bXnana", v.AsString())
	}
}

func TestReplaceAllOccurrences(t *testing.T) {
	re := New()
	v := call(t, re, "replace_all", value.String(`a`), value.String("banana"), value.String("X"))
	if v.AsString() != "bXnXnX" {
		t.Fatalf("got %q, want bXnXnX", v.AsString())
	}
}

func TestReplaceDoesNotExpandDollarSign(t *testing.T) {
	re := New()
	v := call(t, re, "replace", value.String(`a`), value.String("a"), value.String("$1 literal"))
	if v.AsString() != "$1 literal" {
		t.Fatalf("got %q, want the replacement inserted verbatim", v.AsString())
	}
}
