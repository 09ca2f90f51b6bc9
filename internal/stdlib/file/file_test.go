package file

import (
	"path/filepath"
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

func TestWriteThenRead(t *testing.T) {
	f := New(nil)
	p := filepath.Join(t.TempDir(), "out.txt")
	call(t, f, "write", value.String(p), value.String("hello"))
	v := call(t, f, "read", value.String(p))
	if v.AsString() != "hello" {
		t.Fatalf("got %q, want hello", v.AsString())
	}
}

func TestAppendAddsToExistingContent(t *testing.T) {
	f := New(nil)
	p := filepath.Join(t.TempDir(), "out.txt")
	call(t, f, "write", value.String(p), value.String("a"))
	call(t, f, "append", value.String(p), value.String("b"))
	v := call(t, f, "read", value.String(p))
	if v.AsString() != "ab" {
		t.Fatalf("got %q, want ab", v.AsString())
	}
}

func TestExistsIsFileIsDir(t *testing.T) {
	f := New(nil)
	dir := t.TempDir()
	file := filepath.Join(dir, "a.txt")
	call(t, f, "write", value.String(file), value.String("x"))

	if !call(t, f, "exists", value.String(file)).AsBool() {
		t.Fatal("expected the file to exist")
	}
	if !call(t, f, "is_file", value.String(file)).AsBool() {
		t.Fatal("expected is_file to be true")
	}
	if call(t, f, "is_dir", value.String(file)).AsBool() {
		t.Fatal("expected is_dir to be false for a regular file")
	}
	if !call(t, f, "is_dir", value.String(dir)).AsBool() {
		t.Fatal("expected is_dir to be true for the directory")
	}
}

func TestReplaceOnlyFirstOccurrence(t *testing.T) {
	f := New(nil)
	p := filepath.Join(t.TempDir(), "out.txt")
	call(t, f, "write", value.String(p), value.String("foo foo foo"))
	call(t, f, "replace", value.String(p), value.String("foo"), value.String("bar"))
	v := call(t, f, "read", value.String(p))
	if v.AsString() != "bar foo foo" {
		t.Fatalf("got %q, want only the first occurrence replaced", v.AsString())
	}
}

func TestReplaceAllOccurrences(t *testing.T) {
	f := New(nil)
	p := filepath.Join(t.TempDir(), "out.txt")
	call(t, f, "write", value.String(p), value.String("foo foo foo"))
	call(t, f, "replace_all", value.String(p), value.String("foo"), value.String("bar"))
	v := call(t, f, "read", value.String(p))
	if v.AsString() != "bar bar bar" {
		t.Fatalf("got %q, want every occurrence replaced", v.AsString())
	}
}

func TestParentDir(t *testing.T) {
	f := New(nil)
	v := call(t, f, "parent_dir", value.String("/a/b/c.txt"))
	if v.AsString() != "/a/b" {
		t.Fatalf("got %q, want /a/b", v.AsString())
	}
}

func TestMkdirWithParentCreatesNestedDirs(t *testing.T) {
	f := New(nil)
	dir := t.TempDir()
	nested := filepath.Join(dir, "a", "b")
	if _, err := f.Dispatch("mkdir", []value.Value{value.String(nested)}, map[string]value.Value{"parent": value.Bool(true)}); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if !call(t, f, "is_dir", value.String(nested)).AsBool() {
		t.Fatal("expected mkdir(parent=true) to create nested directories")
	}
}
