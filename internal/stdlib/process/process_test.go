package process

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

func TestListReturnsFakeProcesses(t *testing.T) {
	v := call(t, NewFake(), "list")
	if v.List().Len() != 2 {
		t.Fatalf("got %d processes, want 2", v.List().Len())
	}
}

func TestInfoDefaultsToCurrentFakeProcess(t *testing.T) {
	v := call(t, NewFake(), "info")
	name, ok, err := v.Dict().Get(value.String("name"))
	if err != nil || !ok || name.AsString() != "eldritch" {
		t.Fatalf("got name=%v ok=%v err=%v, want eldritch", name, ok, err)
	}
}

func TestInfoUnknownPidErrors(t *testing.T) {
	if _, err := NewFake().Dispatch("info", []value.Value{value.Int(99999)}, nil); err == nil {
		t.Fatal("expected an error for an unknown pid")
	}
}

func TestNameLooksUpByPid(t *testing.T) {
	v := call(t, NewFake(), "name", value.Int(1))
	if v.AsString() != "init" {
		t.Fatalf("got %q, want init", v.AsString())
	}
}

func TestKillRemovesProcessFromFakeTable(t *testing.T) {
	fk := NewFake()
	call(t, fk, "kill", value.Int(1337))
	if _, err := fk.Dispatch("info", []value.Value{value.Int(1337)}, nil); err == nil {
		t.Fatal("expected the killed pid to no longer be found")
	}
}

func TestNetstatReturnsFakeConnection(t *testing.T) {
	v := call(t, NewFake(), "netstat")
	if v.List().Len() != 1 {
		t.Fatalf("got %d connections, want 1", v.List().Len())
	}
	conn, present := v.List().Get(0)
	if !present {
		t.Fatal("expected a connection at index 0")
	}
	state, ok, err := conn.Dict().Get(value.String("state"))
	if err != nil || !ok || state.AsString() != "LISTEN" {
		t.Fatalf("got state=%v ok=%v err=%v, want LISTEN", state, ok, err)
	}
}
