// Package events implements the events standard library (§4.7):
// registration of script callbacks against a fixed set of event names,
// and a host-callable trigger path. Per-callback errors are isolated —
// logged via slog, not propagated — so one bad handler never aborts the
// others (§7 "Event callbacks are error-isolated").
package events

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/spellshift/eldritch/internal/library"
	"github.com/spellshift/eldritch/internal/token"
	"github.com/spellshift/eldritch/internal/value"
)

const (
	OnCallbackStart = "ON_CALLBACK_START"
	OnCallbackEnd   = "ON_CALLBACK_END"
	OnTaskStart     = "ON_TASK_START"
	OnTaskEnd       = "ON_TASK_END"
)

var eventNames = []string{OnCallbackStart, OnCallbackEnd, OnTaskStart, OnTaskEnd}

// Caller invokes a script callable with already-evaluated args; satisfied
// structurally by interp.Interp's Call, avoiding an import cycle the same
// way internal/builtins.Caller does.
type Caller interface {
	Call(callee value.Value, args []value.Value, kwargs map[string]value.Value, span token.Span) (value.Value, error)
}

type Library struct {
	mu        sync.Mutex
	log       *slog.Logger
	caller    Caller
	callbacks map[string][]value.Value
}

func New(caller Caller, log *slog.Logger) *Library {
	if log == nil {
		log = slog.Default()
	}
	return &Library{log: log, caller: caller, callbacks: make(map[string][]value.Value)}
}

func (l *Library) Dispatcher() value.Dispatcher {
	consts := make(map[string]value.Value, len(eventNames))
	for _, n := range eventNames {
		consts[n] = value.String(n)
	}
	return &library.Table{Name: "events", Consts: consts, Methods: map[string]library.Method{
		"list":     l.list,
		"register": l.register,
	}}
}

func (l *Library) list(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	if err := library.Arity("list", args, 0); err != nil {
		return value.None, err
	}
	names := append([]string(nil), eventNames...)
	sort.Strings(names)
	return library.ToStringList(names), nil
}

func (l *Library) register(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	if err := library.Arity("register", args, 2); err != nil {
		return value.None, err
	}
	name, err := library.Str("register", args[0])
	if err != nil {
		return value.None, err
	}
	if !isKnownEvent(name) {
		return value.None, unknownEventErr(name)
	}
	fn := args[1]
	switch fn.Kind() {
	case value.KindFunction, value.KindNativeFunction, value.KindBoundMethod:
	default:
		return value.None, notCallableErr(fn)
	}
	l.mu.Lock()
	l.callbacks[name] = append(l.callbacks[name], fn)
	l.mu.Unlock()
	return value.None, nil
}

// TriggerEvent is the host-callable trigger path (§4.7, §6 "host calls
// trigger_event(name, args) to run script-registered callbacks").
func (l *Library) TriggerEvent(name string, args []value.Value) {
	l.mu.Lock()
	fns := append([]value.Value(nil), l.callbacks[name]...)
	l.mu.Unlock()
	for _, fn := range fns {
		if _, err := l.caller.Call(fn, args, nil, token.Span{}); err != nil {
			l.log.Error("event callback failed", "event", name, "error", err)
		}
	}
}

func isKnownEvent(name string) bool {
	for _, n := range eventNames {
		if n == name {
			return true
		}
	}
	return false
}
