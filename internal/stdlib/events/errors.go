package events

import (
	"github.com/spellshift/eldritch/internal/diag"
	"github.com/spellshift/eldritch/internal/library"
	"github.com/spellshift/eldritch/internal/value"
)

func unknownEventErr(name string) error {
	return library.MethodError(diag.ValueError, "register() unknown event name: "+name)
}

func notCallableErr(v value.Value) error {
	return library.MethodError(diag.TypeError, "register() expected a callable, got '"+v.Kind().String()+"'")
}
