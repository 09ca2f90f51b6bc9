package report

import (
	"github.com/spellshift/eldritch/internal/agentiface"
	"github.com/spellshift/eldritch/internal/value"
)

// NewFake returns a report library wired to an agentiface.Fake, so
// reported messages land in the fake's recorded slices instead of going
// anywhere real (§4.6 fake bindings).
func NewFake() value.Dispatcher {
	return New(agentiface.NewFake())
}
