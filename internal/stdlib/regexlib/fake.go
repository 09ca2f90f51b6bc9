package regexlib

import (
	"github.com/spellshift/eldritch/internal/library"
	"github.com/spellshift/eldritch/internal/value"
)

// NewFake returns the real regex engine: matching is pure/deterministic
// given (pattern, haystack), so there is no I/O or host state worth
// canning — the "fake" still exists to satisfy the uniform selection
// protocol (§4.6), it just delegates.
func NewFake() value.Dispatcher {
	real := New().(*library.Table)
	methods := make(map[string]library.Method, len(real.Methods))
	for k, v := range real.Methods {
		methods[k] = v
	}
	return &library.Table{Name: "regex", Methods: methods}
}
