package repl

import (
	"testing"

	"github.com/spellshift/eldritch/internal/interp"
	"github.com/spellshift/eldritch/internal/value"
)

func newSession() *REPL {
	env := value.NewRoot(value.StdPrinter{})
	in := interp.New(env)
	return New(in, env)
}

func TestNormalExpressionIsComplete(t *testing.T) {
	r := newSession()
	res := r.Input("1 + 2")
	if res.Status != StatusComplete {
		t.Fatalf("status = %v, want complete", res.Status)
	}
	if res.Payload != "1 + 2" {
		t.Fatalf("payload = %q, want the echoed source \"1 + 2\"", res.Payload)
	}
}

// TestCompletedTurnEchoesSubmittedSource covers spec.md §8 scenario 5: a
// completed turn's payload is the submitted source text, not the
// evaluated result, for both a multi-line block and a single line — both
// of which evaluate to None here (a FuncDef, a print() call).
func TestCompletedTurnEchoesSubmittedSource(t *testing.T) {
	r := newSession()
	res := r.Input("def foo():")
	if res.Status != StatusIncomplete {
		t.Fatalf("status = %v, want incomplete", res.Status)
	}
	res = r.Input("  pass")
	if res.Status != StatusIncomplete {
		t.Fatalf("status = %v, want incomplete", res.Status)
	}
	res = r.Input("")
	if res.Status != StatusComplete {
		t.Fatalf("status = %v, want complete", res.Status)
	}
	if res.Payload != "def foo():\n  pass\n" {
		t.Fatalf("payload = %q, want %q", res.Payload, "def foo():\n  pass\n")
	}

	r2 := newSession()
	res2 := r2.Input("print('hello')")
	if res2.Status != StatusComplete {
		t.Fatalf("status = %v, want complete", res2.Status)
	}
	if res2.Payload != "print('hello')" {
		t.Fatalf("payload = %q, want %q", res2.Payload, "print('hello')")
	}
}

func TestColonLineEntersBlockMode(t *testing.T) {
	r := newSession()
	res := r.Input("if True:")
	if res.Status != StatusIncomplete {
		t.Fatalf("status = %v, want incomplete", res.Status)
	}
	if r.Mode() != ModeBlock {
		t.Fatalf("mode = %v, want ModeBlock", r.Mode())
	}
	res = r.Input("    x = 5")
	if res.Status != StatusIncomplete {
		t.Fatalf("status = %v, want incomplete", res.Status)
	}
	res = r.Input("")
	if res.Status != StatusComplete {
		t.Fatalf("status = %v, want complete", res.Status)
	}
	if r.Mode() != ModeNormal {
		t.Fatalf("mode = %v, want ModeNormal after blank line", r.Mode())
	}
}

func TestHistoryRecordsAcceptedBlocks(t *testing.T) {
	r := newSession()
	r.Input("x = 1")
	r.Input("y = 2")
	hist := r.History()
	if len(hist) != 2 || hist[0] != "x = 1" || hist[1] != "y = 2" {
		t.Fatalf("history = %v", hist)
	}
}

func TestReverseISearchFindsMostRecentMatch(t *testing.T) {
	r := newSession()
	r.Input("x = 1")
	r.Input("y = 2")
	r.Input("search_target = 3")
	r.EnterReverseISearch()
	res := r.Input("search")
	if res.Payload != "search_target = 3" {
		t.Fatalf("payload = %q, want the matching history entry", res.Payload)
	}
	res = r.Input("\r")
	if r.Mode() != ModeNormal {
		t.Fatalf("mode after accept = %v, want ModeNormal", r.Mode())
	}
	if res.Payload != "search_target = 3" {
		t.Fatalf("accepted payload = %q", res.Payload)
	}
}

func TestCompleteFiltersKeywordsAndPrefix(t *testing.T) {
	r := newSession()
	r.Input("foo = 1")
	r.Input("foobar = 2")
	r.Input("bar = 3")
	names := r.Complete("foo", 3)
	if len(names) != 2 || names[0] != "foo" || names[1] != "foobar" {
		t.Fatalf("completions = %v", names)
	}
}

func TestSyntaxErrorRendersDiagnostic(t *testing.T) {
	r := newSession()
	res := r.Input("1 +")
	if res.Status != StatusComplete {
		t.Fatalf("status = %v, want complete (error still ends the turn)", res.Status)
	}
	if res.Payload == "" {
		t.Fatal("expected a rendered diagnostic payload")
	}
}
