package randomlib

import "github.com/spellshift/eldritch/internal/value"

// NewFake returns a random library seeded deterministically (fixed seed
// 42), so scripted tests can assert exact output instead of only shape
// (§4.6 fake bindings).
func NewFake() value.Dispatcher {
	return newWithSource(NewDeterministicSource(42))
}
