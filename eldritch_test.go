package eldritch

import (
	"testing"

	"github.com/spellshift/eldritch/internal/value"
)

func TestInterpretSimpleExpression(t *testing.T) {
	ie := New(nil, Options{FakeLibraries: true})
	v, err := ie.Interpret("1 + 2")
	if err != nil {
		t.Fatalf("Interpret: %v", err)
	}
	if got := v.AsInt(); got != 3 {
		t.Fatalf("got %d, want 3", got)
	}
}

func TestDefineVariableInjectsInputParams(t *testing.T) {
	ie := New(nil, Options{FakeLibraries: true})
	ie.DefineVariable("input_params", value.String("hello"))
	v, err := ie.Interpret("input_params")
	if err != nil {
		t.Fatalf("Interpret: %v", err)
	}
	if v.AsString() != "hello" {
		t.Fatalf("got %q, want hello", v.AsString())
	}
}

func TestFakeLibrariesInstallsStdlib(t *testing.T) {
	ie := New(nil, Options{FakeLibraries: true})
	v, err := ie.Interpret(`sys.hostname()`)
	if err != nil {
		t.Fatalf("Interpret: %v", err)
	}
	if v.AsString() == "" {
		t.Fatal("expected a non-empty fake hostname")
	}
}

func TestTriggerEventRunsRegisteredCallback(t *testing.T) {
	ie := New(nil, Options{FakeLibraries: true})
	if _, err := ie.Interpret(`
seen = []
def on_start(args):
    seen.append(args)

events.register(events.ON_CALLBACK_START, on_start)
`); err != nil {
		t.Fatalf("Interpret: %v", err)
	}
	ie.TriggerEvent("ON_CALLBACK_START", []value.Value{value.None})
	v, err := ie.Interpret("len(seen)")
	if err != nil {
		t.Fatalf("Interpret: %v", err)
	}
	if v.AsInt() != 1 {
		t.Fatalf("got %d callback invocations, want 1", v.AsInt())
	}
}
