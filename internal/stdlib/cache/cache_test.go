package cache

import (
	"testing"

	"github.com/spellshift/eldritch/internal/library"
	"github.com/spellshift/eldritch/internal/value"
)

func dispatch(t *testing.T, d value.Dispatcher, method string, args ...value.Value) value.Value {
	t.Helper()
	v, err := d.Dispatch(method, args, nil)
	if err != nil {
		t.Fatalf("%s: %v", method, err)
	}
	return v
}

func TestSetThenGet(t *testing.T) {
	c := New(NewStore())
	dispatch(t, c, "set", value.String("k"), value.Int(42))
	v := dispatch(t, c, "get", value.String("k"))
	if v.AsInt() != 42 {
		t.Fatalf("got %d, want 42", v.AsInt())
	}
}

func TestGetMissingReturnsDefault(t *testing.T) {
	c := New(NewStore())
	v := dispatch(t, c, "get", value.String("missing"), value.String("fallback"))
	if v.AsString() != "fallback" {
		t.Fatalf("got %q, want fallback", v.AsString())
	}
}

func TestDeleteReportsExistence(t *testing.T) {
	c := New(NewStore())
	dispatch(t, c, "set", value.String("k"), value.Int(1))
	existed := dispatch(t, c, "delete", value.String("k"))
	if !existed.AsBool() {
		t.Fatal("expected delete to report the key existed")
	}
	goneAgain := dispatch(t, c, "delete", value.String("k"))
	if goneAgain.AsBool() {
		t.Fatal("expected the second delete to report false")
	}
}

func TestKeysListsAllEntries(t *testing.T) {
	c := New(NewStore())
	dispatch(t, c, "set", value.String("a"), value.Int(1))
	dispatch(t, c, "set", value.String("b"), value.Int(2))
	keys, err := library.StringList("keys", dispatch(t, c, "keys"))
	if err != nil {
		t.Fatalf("StringList: %v", err)
	}
	if len(keys) != 2 {
		t.Fatalf("got %v, want 2 keys", keys)
	}
}

func TestSharedStoreVisibleAcrossInstances(t *testing.T) {
	store := NewStore()
	a := New(store)
	b := New(store)
	dispatch(t, a, "set", value.String("shared"), value.Int(7))
	v := dispatch(t, b, "get", value.String("shared"))
	if v.AsInt() != 7 {
		t.Fatalf("got %d, want 7 visible through a second handle on the same store", v.AsInt())
	}
}
