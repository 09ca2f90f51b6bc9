package events

import (
	"log/slog"
	"testing"

	"github.com/spellshift/eldritch/internal/token"
	"github.com/spellshift/eldritch/internal/value"
)

type recordingCaller struct {
	calls [][]value.Value
}

func (r *recordingCaller) Call(callee value.Value, args []value.Value, kwargs map[string]value.Value, span token.Span) (value.Value, error) {
	r.calls = append(r.calls, args)
	return value.None, nil
}

func fn() value.Value {
	return value.NewNativeFunction(&value.NativeFunction{Name: "cb", Call: func(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
		return value.None, nil
	}})
}

func TestListReturnsSortedEventNames(t *testing.T) {
	lib := New(&recordingCaller{}, slog.Default())
	v, err := lib.Dispatcher().Dispatch("list", nil, nil)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	names := v.List().Snapshot()
	if len(names) != 4 {
		t.Fatalf("got %d names, want 4", len(names))
	}
	if names[0].AsString() >= names[1].AsString() {
		t.Fatalf("expected sorted names, got %v", names)
	}
}

func TestRegisterRejectsUnknownEvent(t *testing.T) {
	lib := New(&recordingCaller{}, slog.Default())
	_, err := lib.Dispatcher().Dispatch("register", []value.Value{value.String("ON_BOGUS"), fn()}, nil)
	if err == nil {
		t.Fatal("expected an error for an unknown event name")
	}
}

func TestRegisterRejectsNonCallable(t *testing.T) {
	lib := New(&recordingCaller{}, slog.Default())
	_, err := lib.Dispatcher().Dispatch("register", []value.Value{value.String(OnCallbackStart), value.Int(1)}, nil)
	if err == nil {
		t.Fatal("expected an error for a non-callable second argument")
	}
}

func TestTriggerEventInvokesRegisteredCallback(t *testing.T) {
	caller := &recordingCaller{}
	lib := New(caller, slog.Default())
	if _, err := lib.Dispatcher().Dispatch("register", []value.Value{value.String(OnTaskStart), fn()}, nil); err != nil {
		t.Fatalf("register: %v", err)
	}
	lib.TriggerEvent(OnTaskStart, []value.Value{value.Int(42)})
	if len(caller.calls) != 1 || caller.calls[0][0].AsInt() != 42 {
		t.Fatalf("got %+v, want one call with arg 42", caller.calls)
	}
}

func TestTriggerEventIsolatesCallbackErrors(t *testing.T) {
	failing := value.NewNativeFunction(&value.NativeFunction{Name: "bad", Call: func(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
		return value.None, nil
	}})
	caller := &erroringCaller{}
	lib := New(caller, slog.Default())
	if _, err := lib.Dispatcher().Dispatch("register", []value.Value{value.String(OnTaskEnd), failing}, nil); err != nil {
		t.Fatalf("register: %v", err)
	}
	// Must not panic even though the caller always errors.
	lib.TriggerEvent(OnTaskEnd, nil)
}

type erroringCaller struct{}

func (erroringCaller) Call(callee value.Value, args []value.Value, kwargs map[string]value.Value, span token.Span) (value.Value, error) {
	return value.None, errAlwaysFails
}

var errAlwaysFails = &testErr{}

type testErr struct{}

func (*testErr) Error() string { return "callback failed" }
