package cache

import "github.com/spellshift/eldritch/internal/value"

// NewFake returns a cache library over a fresh, isolated Store — the real
// and fake implementations share the same code; a test just wants a store
// that does not leak across test cases (§4.6 fake bindings).
func NewFake() value.Dispatcher {
	return New(NewStore())
}
