package interp

import "github.com/spellshift/eldritch/internal/value"

// FlowKind is the internal control-flow signal threaded through statement
// execution (§3, "Flow signal").
type FlowKind int

const (
	FlowNext FlowKind = iota
	FlowBreak
	FlowContinue
	FlowReturn
)

func (k FlowKind) String() string {
	switch k {
	case FlowBreak:
		return "break"
	case FlowContinue:
		return "continue"
	case FlowReturn:
		return "return"
	default:
		return "next"
	}
}

// Flow is returned by statement execution; loops and function bodies
// inspect it after every statement and clear it at scope boundaries where
// appropriate (§4.4).
type Flow struct {
	Kind  FlowKind
	Value value.Value
}
