package timelib

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

func TestNowIsFrozenInFakeBinding(t *testing.T) {
	v := call(t, NewFake(), "now")
	if v.AsInt() != 1704067200 {
		t.Fatalf("got %d, want the fixed 2024-01-01T00:00:00Z epoch", v.AsInt())
	}
}

func TestSleepIsNoOpInFakeBinding(t *testing.T) {
	d := NewFake()
	call(t, d, "sleep", value.Float(1000))
}

func TestFormatToEpochParsesYMD(t *testing.T) {
	v := call(t, NewFake(), "format_to_epoch", value.String("2024-01-02"), value.String("%Y-%m-%d"))
	if v.AsInt() != 1704153600 {
		t.Fatalf("got %d, want 2024-01-02T00:00:00Z epoch", v.AsInt())
	}
}

func TestFormatToReadableFormatsEpoch(t *testing.T) {
	v := call(t, NewFake(), "format_to_readable", value.Int(1704067200), value.String("%Y-%m-%d %H:%M:%S"))
	if v.AsString() != "2024-01-01 00:00:00" {
		t.Fatalf("got %q, want 2024-01-01 00:00:00", v.AsString())
	}
}

func TestFormatToEpochRejectsMismatchedFormat(t *testing.T) {
	if _, err := NewFake().Dispatch("format_to_epoch", []value.Value{value.String("not-a-date"), value.String("%Y-%m-%d")}, nil); err == nil {
		t.Fatal("expected an error for a non-matching date string")
	}
}
