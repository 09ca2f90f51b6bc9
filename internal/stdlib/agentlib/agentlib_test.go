package agentlib

import (
	"testing"

	"github.com/spellshift/eldritch/internal/agentiface"
	"github.com/spellshift/eldritch/internal/value"
)

type stubEvaluator struct {
	lastSource string
	result     value.Value
	err        error
}

func (s *stubEvaluator) Eval(source string) (value.Value, error) {
	s.lastSource = source
	return s.result, s.err
}

func call(t *testing.T, d value.Dispatcher, method string, args ...value.Value) value.Value {
	t.Helper()
	v, err := d.Dispatch(method, args, nil)
	if err != nil {
		t.Fatalf("%s: %v", method, err)
	}
	return v
}

func TestGetSetConfigRoundTrip(t *testing.T) {
	a := agentiface.NewFake()
	d := New(a, nil)
	call(t, d, "set_config", value.String("key"), value.String("val"))
	got := call(t, d, "get_config")
	v, ok, err := got.Dict().Get(value.String("key"))
	if err != nil || !ok || v.AsString() != "val" {
		t.Fatalf("got v=%v ok=%v err=%v, want val", v, ok, err)
	}
}

func TestCallbackIntervalRoundTrip(t *testing.T) {
	a := agentiface.NewFake()
	d := New(a, nil)
	call(t, d, "set_callback_interval", value.Int(120))
	if got := call(t, d, "get_callback_interval").AsInt(); got != 120 {
		t.Fatalf("got %d, want 120", got)
	}
}

func TestSetCallbackURIUpdatesActiveTransport(t *testing.T) {
	a := agentiface.NewFake()
	d := New(a, nil)
	call(t, d, "set_callback_uri", value.String("https://new.example/cb"))
	got := call(t, d, "get_transport")
	uri, _, _ := got.Dict().Get(value.String("uri"))
	if uri.AsString() != "https://new.example/cb" {
		t.Fatalf("got %q, want the updated uri", uri.AsString())
	}
}

func TestListTransportsIncludesSeededDefault(t *testing.T) {
	a := agentiface.NewFake()
	d := New(a, nil)
	v := call(t, d, "list_transports")
	if v.List().Len() != 1 {
		t.Fatalf("got %d transports, want 1", v.List().Len())
	}
}

func TestSetTransportUnknownNameErrors(t *testing.T) {
	a := agentiface.NewFake()
	d := New(a, nil)
	if _, err := d.Dispatch("set_transport", []value.Value{value.String("bogus")}, nil); err == nil {
		t.Fatal("expected an error for an unknown transport name")
	}
}

func TestListTasksEmptyByDefault(t *testing.T) {
	a := agentiface.NewFake()
	d := New(a, nil)
	v := call(t, d, "list_tasks")
	if v.List().Len() != 0 {
		t.Fatalf("got %d tasks, want 0", v.List().Len())
	}
}

func TestStopTaskSucceedsEvenWithoutATask(t *testing.T) {
	a := agentiface.NewFake()
	d := New(a, nil)
	call(t, d, "stop_task", value.Int(1))
}

func TestEvalWithoutEvaluatorReportsNotWired(t *testing.T) {
	a := agentiface.NewFake()
	d := New(a, nil)
	if _, err := d.Dispatch("eval", []value.Value{value.String("1 + 1")}, nil); err == nil {
		t.Fatal("expected an error when no Evaluator is wired")
	}
}

func TestEvalDelegatesToEvaluator(t *testing.T) {
	a := agentiface.NewFake()
	ev := &stubEvaluator{result: value.Int(2)}
	d := New(a, ev)
	got := call(t, d, "eval", value.String("1 + 1"))
	if got.AsInt() != 2 {
		t.Fatalf("got %d, want 2", got.AsInt())
	}
	if ev.lastSource != "1 + 1" {
		t.Fatalf("got source %q, want 1 + 1", ev.lastSource)
	}
}
