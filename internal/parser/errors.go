package parser

import (
	"fmt"

	"github.com/spellshift/eldritch/internal/token"
)

// Error is a parse-time syntax error; it always carries the offending
// token's span (§4.2).
type Error struct {
	Msg  string
	Span token.Span
}

func (e *Error) Error() string { return e.Msg }

func errAt(tok token.Token, format string, args ...any) *Error {
	return &Error{Msg: fmt.Sprintf(format, args...), Span: tok.Span}
}
