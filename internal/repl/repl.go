// Package repl implements the Eldritch v2 REPL engine (§4.8): a headless
// state machine with Normal, Block-accumulating, and ReverseISearch modes,
// bounded history, and name completion over the live environment. It has
// no terminal/readline dependency of its own — no library in the example
// pack offers a headless, driver-agnostic REPL state machine, so this is
// built on the standard library alone and driven by whatever front end
// (a TTY loop, a test, a host UI) feeds it lines via Input.
package repl

import (
	"sort"
	"strings"

	"github.com/spellshift/eldritch/internal/diag"
	"github.com/spellshift/eldritch/internal/interp"
	"github.com/spellshift/eldritch/internal/token"
	"github.com/spellshift/eldritch/internal/value"
)

// Mode is one of the three REPL states (§4.8).
type Mode int

const (
	ModeNormal Mode = iota
	ModeBlock
	ModeReverseISearch
)

// Status is the result shape a headless caller uses to decide whether to
// prompt for another line ("incomplete", block still accumulating) or
// display output and return to Normal ("complete").
type Status string

const (
	StatusComplete   Status = "complete"
	StatusIncomplete Status = "incomplete"
)

// Result is the `{status, payload}` output shape from §4.8.
type Result struct {
	Status  Status
	Payload string
}

// blockKeywords are the tokens that, appearing anywhere in a Normal-mode
// line, start block accumulation even without a trailing colon (e.g. a
// one-line `if x: y` still reads as block-shaped per §4.8's wording).
var blockKeywords = []string{"def", "if", "else", "for", "while"}

// REPL drives one interpreter instance through the Normal/Block/
// ReverseISearch state machine. It is not safe for concurrent use by
// multiple goroutines driving the same session.
type REPL struct {
	in      *interp.Interp
	env     *value.Env
	mode    Mode
	buf     []string // accumulating block lines
	history []string // bounded, oldest first

	maxHistory int

	// reverse-i-search state
	searchQuery string
	searchHit   int // index into history of the current match, -1 = none
}

const defaultMaxHistory = 1000

// New constructs a REPL against an already-wired interpreter (libraries
// installed, root env populated) and its root environment.
func New(in *interp.Interp, env *value.Env) *REPL {
	return &REPL{in: in, env: env, mode: ModeNormal, maxHistory: defaultMaxHistory}
}

// SetMaxHistory overrides the bounded-history capacity; 0 disables
// history retention entirely.
func (r *REPL) SetMaxHistory(n int) { r.maxHistory = n }

// Mode reports the REPL's current state.
func (r *REPL) Mode() Mode { return r.mode }

// Prompt returns the prompt string appropriate to the current mode
// (§4.8: "the prompt changes, e.g. `>>> ` vs `... `").
func (r *REPL) Prompt() string {
	switch r.mode {
	case ModeBlock:
		return "... "
	case ModeReverseISearch:
		return "(reverse-i-search)`" + r.searchQuery + "': "
	default:
		return ">>> "
	}
}

// Input feeds one line of input to the REPL and returns the outcome. In
// ModeReverseISearch, line is treated as a raw keystroke batch appended to
// the running query rather than a submitted statement; callers wanting
// single-keystroke search behavior should call Input once per keystroke.
func (r *REPL) Input(line string) Result {
	switch r.mode {
	case ModeReverseISearch:
		return r.searchInput(line)
	case ModeBlock:
		return r.blockInput(line)
	default:
		return r.normalInput(line)
	}
}

func (r *REPL) normalInput(line string) Result {
	if startsBlock(line) {
		r.buf = []string{line}
		r.mode = ModeBlock
		return Result{Status: StatusIncomplete}
	}
	return r.submit(line, line)
}

func (r *REPL) blockInput(line string) Result {
	if strings.TrimSpace(line) == "" {
		src := strings.Join(r.buf, "\n")
		r.buf = nil
		r.mode = ModeNormal
		return r.submit(src, src+"\n")
	}
	r.buf = append(r.buf, line)
	return Result{Status: StatusIncomplete}
}

// startsBlock applies §4.8's Normal-mode transition rule: a line ending in
// ':' or containing any of the block keywords enters Block-accumulating
// mode.
func startsBlock(line string) bool {
	trimmed := strings.TrimRight(line, " \t")
	if strings.HasSuffix(trimmed, ":") {
		return true
	}
	fields := strings.FieldsFunc(line, func(r rune) bool {
		return !(r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'))
	})
	for _, f := range fields {
		for _, kw := range blockKeywords {
			if f == kw {
				return true
			}
		}
	}
	return false
}

// submit runs src against the live interpreter/environment and records it
// in history. Per §4.8 scenario 5, a completed turn's Payload echoes back
// the submitted source (payload: the raw line for a single-line
// submission, the newline-joined block plus a trailing newline for a
// completed block) rather than the evaluated result — or the rendered
// diagnostic when Eval fails.
func (r *REPL) submit(src, payload string) Result {
	r.record(src)
	if _, err := r.in.Eval(r.env, src, token.Span{}); err != nil {
		return Result{Status: StatusComplete, Payload: r.renderErr(src, err)}
	}
	return Result{Status: StatusComplete, Payload: payload}
}

func (r *REPL) renderErr(src string, err error) string {
	if de, ok := err.(*diag.Error); ok {
		return diag.Render(src, de)
	}
	return err.Error()
}

func (r *REPL) record(src string) {
	if r.maxHistory <= 0 {
		return
	}
	r.history = append(r.history, src)
	if len(r.history) > r.maxHistory {
		r.history = r.history[len(r.history)-r.maxHistory:]
	}
}

// History returns the bounded ordered list of previously accepted blocks,
// oldest first.
func (r *REPL) History() []string {
	return append([]string(nil), r.history...)
}

// EnterReverseISearch transitions into ReverseISearch mode with an empty
// query.
func (r *REPL) EnterReverseISearch() {
	r.mode = ModeReverseISearch
	r.searchQuery = ""
	r.searchHit = -1
}

func (r *REPL) searchInput(keys string) Result {
	switch keys {
	case "\x1b": // Escape cancels
		r.mode = ModeNormal
		r.searchQuery = ""
		return Result{Status: StatusComplete}
	case "\r", "\n": // Enter accepts the current match
		r.mode = ModeNormal
		payload := ""
		if r.searchHit >= 0 {
			payload = r.history[r.searchHit]
		}
		r.searchQuery = ""
		return Result{Status: StatusIncomplete, Payload: payload}
	}
	r.searchQuery += keys
	r.searchHit = r.findMatch(r.searchHit)
	payload := ""
	if r.searchHit >= 0 {
		payload = r.history[r.searchHit]
	}
	return Result{Status: StatusIncomplete, Payload: payload}
}

// RepeatSearch steps backwards through older matches of the current query
// (§4.8: "re-triggering steps backwards through older matches").
func (r *REPL) RepeatSearch() Result {
	start := r.searchHit - 1
	r.searchHit = r.findMatch(start)
	payload := ""
	if r.searchHit >= 0 {
		payload = r.history[r.searchHit]
	}
	return Result{Status: StatusIncomplete, Payload: payload}
}

// findMatch scans history backwards from index start (inclusive; the
// newest entry when start is out of range) for the most recent entry
// containing the current query.
func (r *REPL) findMatch(start int) int {
	if r.searchQuery == "" {
		return -1
	}
	if start < 0 || start >= len(r.history) {
		start = len(r.history) - 1
	}
	for i := start; i >= 0; i-- {
		if strings.Contains(r.history[i], r.searchQuery) {
			return i
		}
	}
	return -1
}

// Complete returns completion candidates for prefix: names bound in the
// live environment, filtered to those starting with prefix and excluding
// language keywords. cursor is accepted for API symmetry with editor
// completion hooks that report a partial-word cursor position distinct
// from len(prefix); this implementation completes the whole prefix.
func (r *REPL) Complete(prefix string, cursor int) []string {
	var out []string
	for _, name := range r.env.Names() {
		if isKeyword(name) {
			continue
		}
		if strings.HasPrefix(name, prefix) {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

var keywords = map[string]bool{
	"def": true, "if": true, "elif": true, "else": true, "for": true, "while": true,
	"return": true, "break": true, "continue": true, "pass": true, "lambda": true,
	"and": true, "or": true, "not": true, "in": true, "is": true, "None": true,
	"True": true, "False": true, "import": true,
}

func isKeyword(name string) bool { return keywords[name] }
