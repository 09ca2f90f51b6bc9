// Package diag implements Eldritch's diagnostic rendering: error kinds
// with spans, caret-aligned source rendering, and NameError "did you
// mean" suggestions (§4.9).
package diag

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/levenshtein"

	"github.com/spellshift/eldritch/internal/token"
)

// Kind is EldritchErrorKind from §4.9, mapped to canonical Python-style
// names (§7).
type Kind string

const (
	TypeError     Kind = "TypeError"
	ValueError    Kind = "ValueError"
	IndexError    Kind = "IndexError"
	KeyError      Kind = "KeyError"
	AttributeError Kind = "AttributeError"
	NameError     Kind = "NameError"
	RuntimeError  Kind = "RuntimeError"
	RecursionError Kind = "RecursionError"
	SyntaxError   Kind = "SyntaxError"
)

// Error is the structured error type threaded through the whole runtime,
// mirroring the teacher's pkgs/errors.DevCmdError (Type/Message/Cause +
// Unwrap).
type Error struct {
	ErrKind Kind
	Span    token.Span
	Msg     string
	Cause   error
}

func New(kind Kind, span token.Span, msg string) *Error {
	return &Error{ErrKind: kind, Span: span, Msg: msg}
}

func Wrap(kind Kind, span token.Span, msg string, cause error) *Error {
	return &Error{ErrKind: kind, Span: span, Msg: msg, Cause: cause}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.ErrKind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Cause }

// Render produces a multi-line diagnostic: the error message, the source
// line (leading whitespace trimmed for display, original column
// preserved), and a caret pointing at the span start (§4.9).
func Render(source string, e *Error) string {
	lines := strings.Split(source, "\n")
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s\n", e.ErrKind, e.Msg)
	if e.Span.Line < 1 || e.Span.Line > len(lines) {
		return b.String()
	}
	line := lines[e.Span.Line-1]
	trimmed := strings.TrimLeft(line, " \t")
	trimCount := len(line) - len(trimmed)
	col := columnOf(source, e.Span) - trimCount
	if col < 0 {
		col = 0
	}
	fmt.Fprintf(&b, "%4d | %s\n", e.Span.Line, trimmed)
	fmt.Fprintf(&b, "       %s^-- here\n", strings.Repeat(" ", col))
	return b.String()
}

// columnOf returns the 0-based column of span.Start within its line.
func columnOf(source string, sp token.Span) int {
	lineStart := 0
	for i := 0; i < sp.Start && i < len(source); i++ {
		if source[i] == '\n' {
			lineStart = i + 1
		}
	}
	if sp.Start < lineStart {
		return 0
	}
	return sp.Start - lineStart
}

// SuggestName runs a Levenshtein scan over candidate names and returns the
// closest match within threshold max(2, len(name)/3), or "" if none
// qualifies (§4.9).
func SuggestName(name string, candidates []string) string {
	threshold := len(name) / 3
	if threshold < 2 {
		threshold = 2
	}
	best := ""
	bestDist := threshold + 1
	sorted := append([]string(nil), candidates...)
	sort.Strings(sorted)
	for _, c := range sorted {
		if c == name {
			continue
		}
		d := levenshtein.Distance(name, c)
		if d < bestDist {
			bestDist = d
			best = c
		}
	}
	if bestDist > threshold {
		return ""
	}
	return best
}

// NameErrorMessage builds the canonical NameError message, including a
// "did you mean" suggestion when one clears the threshold.
func NameErrorMessage(name string, candidates []string) string {
	msg := fmt.Sprintf("name '%s' is not defined", name)
	if s := SuggestName(name, candidates); s != "" {
		msg += fmt.Sprintf(". Did you mean: '%s'?", s)
	}
	return msg
}
