package agentlib

import (
	"github.com/spellshift/eldritch/internal/agentiface"
	"github.com/spellshift/eldritch/internal/value"
)

// fakeEvaluator ignores the source it is given and returns None with no
// error, so agent.eval against the fake binding always succeeds without
// running anything.
type fakeEvaluator struct{}

func (fakeEvaluator) Eval(source string) (value.Value, error) {
	return value.None, nil
}

// NewFake returns an agent library over agentiface.NewFake(), with eval()
// a no-op rather than wired to a real interpreter (§4.6 fake bindings).
func NewFake() value.Dispatcher {
	return New(agentiface.NewFake(), fakeEvaluator{})
}
