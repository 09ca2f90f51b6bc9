package sysinfo

import (
	"os"
	"runtime"
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

func TestGetPIDMatchesProcess(t *testing.T) {
	v := call(t, New(), "get_pid")
	if v.AsInt() <= 0 {
		t.Fatalf("got %d, want a positive pid", v.AsInt())
	}
	if v.AsInt() != int64(os.Getpid()) {
		t.Fatalf("got %d, want os.Getpid() = %d", v.AsInt(), os.Getpid())
	}
}

func TestGetOSReportsCurrentPlatform(t *testing.T) {
	v := call(t, New(), "get_os")
	platform, ok, err := v.Dict().Get(value.String("platform"))
	if err != nil || !ok {
		t.Fatalf("expected a platform key, err=%v ok=%v", err, ok)
	}
	if platform.AsString() != runtime.GOOS {
		t.Fatalf("got %q, want %q", platform.AsString(), runtime.GOOS)
	}
}

func TestIsLinuxMatchesRuntimeGOOS(t *testing.T) {
	v := call(t, New(), "is_linux")
	if v.AsBool() != (runtime.GOOS == "linux") {
		t.Fatalf("got %v, want %v", v.AsBool(), runtime.GOOS == "linux")
	}
}

func TestIsMacosUsesCorrectMethodName(t *testing.T) {
	// Regression test: isPlatform's error message must name "is_macos",
	// not "is_darwin", when arity is violated.
	_, err := New().Dispatch("is_macos", []value.Value{value.Int(1)}, nil)
	if err == nil {
		t.Fatal("expected an arity error")
	}
	if got := err.Error(); !contains(got, "is_macos") {
		t.Fatalf("error message %q does not mention is_macos", got)
	}
}

func contains(s, substr string) bool {
	return len(s) >= len(substr) && (func() bool {
		for i := 0; i+len(substr) <= len(s); i++ {
			if s[i:i+len(substr)] == substr {
				return true
			}
		}
		return false
	})()
}

func TestGetEnvIncludesProcessEnvironment(t *testing.T) {
	t.Setenv("ELDRITCH_SYSINFO_TEST_VAR", "present")
	v := call(t, New(), "get_env")
	got, ok, err := v.Dict().Get(value.String("ELDRITCH_SYSINFO_TEST_VAR"))
	if err != nil || !ok || got.AsString() != "present" {
		t.Fatalf("expected get_env to include the test var, got ok=%v err=%v val=%v", ok, err, got)
	}
}
