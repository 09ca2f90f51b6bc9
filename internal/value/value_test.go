package value

import "testing"

// TestDictKeyCrossPromotesNumerics covers spec.md's "numeric
// cross-promotion (1 == 1.0 → True)" requirement: a dict/set's hash key
// scheme must collapse Int/Float/Bool the same way Equal does, so
// assigning 1 and then 1.0 overwrites the same entry rather than creating
// a second one.
func TestDictKeyCrossPromotesNumerics(t *testing.T) {
	d := NewDict()
	if err := d.Set(Int(1), String("a")); err != nil {
		t.Fatalf("Set(1, a): %v", err)
	}
	if err := d.Set(Float(1.0), String("b")); err != nil {
		t.Fatalf("Set(1.0, b): %v", err)
	}
	if d.Len() != 1 {
		t.Fatalf("len = %d, want 1 (1 and 1.0 must share a key)", d.Len())
	}
	got, ok, err := d.Get(Int(1))
	if err != nil || !ok || got.AsString() != "b" {
		t.Fatalf("Get(1) = %v, %v, %v; want \"b\", true, nil", got, ok, err)
	}
	got, ok, err = d.Get(Bool(true))
	if err != nil || !ok || got.AsString() != "b" {
		t.Fatalf("Get(True) = %v, %v, %v; want the entry keyed by 1/1.0", got, ok, err)
	}
}

func TestSetDedupesCrossPromotedNumerics(t *testing.T) {
	s := NewSet()
	if err := s.Add(Int(1)); err != nil {
		t.Fatalf("Add(1): %v", err)
	}
	if err := s.Add(Float(1.0)); err != nil {
		t.Fatalf("Add(1.0): %v", err)
	}
	if err := s.Add(Bool(true)); err != nil {
		t.Fatalf("Add(True): %v", err)
	}
	if s.Len() != 1 {
		t.Fatalf("len = %d, want 1 (1, 1.0, and True must collapse to one member)", s.Len())
	}
}

func TestDictKeyKeepsDistinctNonEqualNumerics(t *testing.T) {
	d := NewDict()
	if err := d.Set(Int(1), String("a")); err != nil {
		t.Fatalf("Set(1, a): %v", err)
	}
	if err := d.Set(Int(2), String("b")); err != nil {
		t.Fatalf("Set(2, b): %v", err)
	}
	if d.Len() != 2 {
		t.Fatalf("len = %d, want 2", d.Len())
	}
}
