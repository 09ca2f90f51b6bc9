package events

import (
	"log/slog"

	"github.com/spellshift/eldritch/internal/token"
	"github.com/spellshift/eldritch/internal/value"
)

// noopCaller satisfies Caller without an interpreter behind it: every
// invocation immediately returns None (§4.6 fake bindings).
type noopCaller struct{}

func (noopCaller) Call(callee value.Value, args []value.Value, kwargs map[string]value.Value, span token.Span) (value.Value, error) {
	return value.None, nil
}

// NewFake returns an events library whose triggered callbacks resolve to
// None rather than running through a real interpreter.
func NewFake() *Library {
	return New(noopCaller{}, slog.Default())
}
