package assets

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/spellshift/eldritch/internal/agentiface"
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

func TestReadFallsBackToEmbedded(t *testing.T) {
	v := call(t, NewFake(), "read", value.String("print/main.eldritch"))
	if v.AsString() != "print(\"This script just prints\")\n" {
		t.Fatalf("got %q", v.AsString())
	}
}

func TestReadMissingNameErrors(t *testing.T) {
	if _, err := NewFake().Dispatch("read", []value.Value{value.String("nope")}, nil); err == nil {
		t.Fatal("expected an error for a missing asset")
	}
}

func TestReadPrefersAgentManifestOverEmbedded(t *testing.T) {
	a := agentiface.NewFake()
	a.Assets["tool"] = []byte("from-agent")
	fsys := fstest.MapFS{"tool": &fstest.MapFile{Data: []byte("from-embedded")}}
	d := New(a, fsys, Manifest{}, "")
	v := call(t, d, "read", value.String("tool"))
	if v.AsString() != "from-agent" {
		t.Fatalf("got %q, want the agent-served variant to win", v.AsString())
	}
}

func TestReadBinaryReturnsBytes(t *testing.T) {
	fsys := fstest.MapFS{"blob": &fstest.MapFile{Data: []byte{0x00, 0x01, 0x02}}}
	d := New(agentiface.NewFake(), fsys, Manifest{}, "")
	v := call(t, d, "read_binary", value.String("blob"))
	if len(v.AsBytes()) != 3 {
		t.Fatalf("got %d bytes, want 3", len(v.AsBytes()))
	}
}

func TestListMergesManifestAndEmbeddedNames(t *testing.T) {
	fsys := fstest.MapFS{"embedded.txt": &fstest.MapFile{Data: []byte("x")}}
	manifest := Manifest{"remote-tool": {"remote-tool@v1.0.0"}}
	d := New(agentiface.NewFake(), fsys, manifest, "")
	v := call(t, d, "list")
	names := make(map[string]bool)
	for _, n := range v.List().Snapshot() {
		names[n.AsString()] = true
	}
	if !names["remote-tool"] || !names["embedded.txt"] {
		t.Fatalf("got %v, want both remote-tool and embedded.txt listed", names)
	}
}

func TestResolveVersionPicksNewestSemver(t *testing.T) {
	im := &impl{manifest: Manifest{"tool": {"tool@v1.0.0", "tool@v1.2.0", "tool@v1.1.0"}}}
	if got := im.resolveVersion("tool"); got != "tool@v1.2.0" {
		t.Fatalf("got %q, want tool@v1.2.0", got)
	}
}

func TestCopyWritesFetchedBytesToDestination(t *testing.T) {
	fsys := fstest.MapFS{"src.txt": &fstest.MapFile{Data: []byte("payload")}}
	d := New(agentiface.NewFake(), fsys, Manifest{}, "")
	dst := filepath.Join(t.TempDir(), "out.txt")
	call(t, d, "copy", value.String("src.txt"), value.String(dst))
	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("reading copied file: %v", err)
	}
	if string(got) != "payload" {
		t.Fatalf("got %q, want payload", got)
	}
}
