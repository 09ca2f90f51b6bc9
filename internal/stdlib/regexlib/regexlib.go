// Package regexlib implements the regex standard library (§4.7). Go's
// regexp is RE2 and doesn't support backreferences/lookaround the way the
// original Rust `regex` crate's Python-flavored patterns can be written;
// rather than silently diverging on those patterns, match/match_all/
// replace/replace_all compile with dlclark/regexp2 (a pack dependency,
// see DESIGN.md), which implements .NET-flavored regex with backreferences
// and lookaround and is close enough to Python's `re` for this surface.
package regexlib

import (
	"github.com/dlclark/regexp2"

	"github.com/spellshift/eldritch/internal/diag"
	"github.com/spellshift/eldritch/internal/library"
	"github.com/spellshift/eldritch/internal/value"
)

func New() value.Dispatcher {
	return &library.Table{Name: "regex", Methods: map[string]library.Method{
		"match":       matchMethod,
		"match_all":   matchAllMethod,
		"replace":     replaceMethod,
		"replace_all": replaceAllMethod,
	}}
}

func compile(pattern string) (*regexp2.Regexp, error) {
	re, err := regexp2.Compile(pattern, regexp2.None)
	if err != nil {
		return nil, library.MethodError(diag.ValueError, "invalid regex pattern: "+err.Error())
	}
	return re, nil
}

func matchMethod(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	if err := library.Arity("match", args, 2); err != nil {
		return value.None, err
	}
	pattern, err := library.Str("match", args[0])
	if err != nil {
		return value.None, err
	}
	haystack, err := library.Str("match", args[1])
	if err != nil {
		return value.None, err
	}
	re, err := compile(pattern)
	if err != nil {
		return value.None, err
	}
	m, err := re.FindStringMatch(haystack)
	if err != nil {
		return value.None, err
	}
	if m == nil {
		return value.String(""), nil
	}
	groups := m.Groups()
	if len(groups) > 2 {
		return value.None, library.MethodError(diag.ValueError, "match() pattern must have exactly one capture group")
	}
	if len(groups) < 2 {
		return value.String(""), nil
	}
	return value.String(groups[1].String()), nil
}

func matchAllMethod(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	if err := library.Arity("match_all", args, 2); err != nil {
		return value.None, err
	}
	pattern, err := library.Str("match_all", args[0])
	if err != nil {
		return value.None, err
	}
	haystack, err := library.Str("match_all", args[1])
	if err != nil {
		return value.None, err
	}
	re, err := compile(pattern)
	if err != nil {
		return value.None, err
	}
	var out []value.Value
	m, err := re.FindStringMatch(haystack)
	for m != nil && err == nil {
		out = append(out, value.String(m.String()))
		m, err = re.FindNextMatch(m)
	}
	if err != nil {
		return value.None, err
	}
	return value.NewList(out), nil
}

func replaceMethod(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	return doReplace(args, false)
}

func replaceAllMethod(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	return doReplace(args, true)
}

// doReplace performs a literal (no backreference expansion) replacement,
// matching §4.7's "literal replacement, no backrefs".
func doReplace(args []value.Value, all bool) (value.Value, error) {
	if err := library.Arity("replace", args, 3); err != nil {
		return value.None, err
	}
	pattern, err := library.Str("replace", args[0])
	if err != nil {
		return value.None, err
	}
	haystack, err := library.Str("replace", args[1])
	if err != nil {
		return value.None, err
	}
	replacement, err := library.Str("replace", args[2])
	if err != nil {
		return value.None, err
	}
	re, err := compile(pattern)
	if err != nil {
		return value.None, err
	}
	count := 1
	if all {
		count = -1
	}
	escaped := literalReplacement(replacement)
	out, err := re.Replace(haystack, escaped, 0, count)
	if err != nil {
		return value.None, err
	}
	return value.String(out), nil
}

// literalReplacement escapes regexp2's `$` replacement-group syntax so the
// replacement text is inserted verbatim rather than backreference-expanded.
func literalReplacement(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '$' {
			out = append(out, '$', '$')
			continue
		}
		out = append(out, s[i])
	}
	return string(out)
}
