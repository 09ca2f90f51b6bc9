package crypto

import (
	"github.com/spellshift/eldritch/internal/library"
	"github.com/spellshift/eldritch/internal/value"
)

// NewFake returns the real crypto library: hashing, AES, and base64 are
// pure functions of their arguments, so there is no host state to fake —
// NewFake exists to satisfy the uniform real/fake selection protocol
// (§4.6) rather than to return different output.
func NewFake() value.Dispatcher {
	real := New().(*library.Table)
	methods := make(map[string]library.Method, len(real.Methods))
	for k, v := range real.Methods {
		methods[k] = v
	}
	return &library.Table{Name: "crypto", Methods: methods}
}
