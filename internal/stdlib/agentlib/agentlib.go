// Package agentlib implements the agent standard library (§4.7): runtime
// knobs a script uses to inspect and steer the host implant, delegating
// every call to internal/agentiface.Agent. eval(code) is the one method
// that reaches back into the interpreter rather than the Agent; it is
// wired through a small Evaluator interface to avoid an import cycle with
// internal/interp, the same pattern internal/stdlib/events uses for its
// Caller.
package agentlib

import (
	"github.com/spellshift/eldritch/internal/agentiface"
	"github.com/spellshift/eldritch/internal/diag"
	"github.com/spellshift/eldritch/internal/library"
	"github.com/spellshift/eldritch/internal/value"
)

// Evaluator runs a snippet of Eldritch source in the calling script's
// interpreter and returns its result, backing agent.eval(code).
type Evaluator interface {
	Eval(source string) (value.Value, error)
}

type impl struct {
	agent agentiface.Agent
	eval  Evaluator
}

// New wires the real agent library against a, an Agent implementation,
// and ev, the interpreter's Evaluator. ev may be nil, in which case
// eval(code) fails with a RuntimeError (a host that never wires an
// Evaluator has chosen not to expose nested evaluation).
func New(a agentiface.Agent, ev Evaluator) value.Dispatcher {
	im := &impl{agent: a, eval: ev}
	return &library.Table{Name: "agent", Methods: map[string]library.Method{
		"get_config":             im.getConfig,
		"set_config":             im.setConfig,
		"get_callback_interval":  im.getCallbackInterval,
		"set_callback_interval":  im.setCallbackInterval,
		"set_callback_uri":       im.setCallbackURI,
		"list_transports":        im.listTransports,
		"get_transport":          im.getTransport,
		"set_transport":          im.setTransport,
		"list_tasks":             im.listTasks,
		"stop_task":              im.stopTask,
		"eval":                   im.evalCode,
	}}
}

func (im *impl) getConfig(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	if err := library.Arity("get_config", args, 0); err != nil {
		return value.None, err
	}
	return library.ToStringDict(im.agent.GetConfig()), nil
}

func (im *impl) setConfig(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	if err := library.Arity("set_config", args, 2); err != nil {
		return value.None, err
	}
	key, err := library.Str("set_config", args[0])
	if err != nil {
		return value.None, err
	}
	val, err := library.Str("set_config", args[1])
	if err != nil {
		return value.None, err
	}
	im.agent.SetConfig(key, val)
	return value.None, nil
}

func (im *impl) getCallbackInterval(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	if err := library.Arity("get_callback_interval", args, 0); err != nil {
		return value.None, err
	}
	return value.Int(im.agent.GetCallbackInterval()), nil
}

func (im *impl) setCallbackInterval(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	if err := library.Arity("set_callback_interval", args, 1); err != nil {
		return value.None, err
	}
	seconds, err := library.Int("set_callback_interval", args[0])
	if err != nil {
		return value.None, err
	}
	im.agent.SetCallbackInterval(seconds)
	return value.None, nil
}

func (im *impl) setCallbackURI(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	if err := library.Arity("set_callback_uri", args, 1); err != nil {
		return value.None, err
	}
	uri, err := library.Str("set_callback_uri", args[0])
	if err != nil {
		return value.None, err
	}
	im.agent.SetCallbackURI(uri)
	return value.None, nil
}

func transportDict(t agentiface.Transport) value.Value {
	d := value.NewDictValue()
	d.Dict().Set(value.String("name"), value.String(t.Name))
	d.Dict().Set(value.String("uri"), value.String(t.URI))
	return d
}

func (im *impl) listTransports(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	if err := library.Arity("list_transports", args, 0); err != nil {
		return value.None, err
	}
	ts := im.agent.ListTransports()
	out := make([]value.Value, len(ts))
	for i, t := range ts {
		out[i] = transportDict(t)
	}
	return value.NewList(out), nil
}

func (im *impl) getTransport(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	if err := library.Arity("get_transport", args, 0); err != nil {
		return value.None, err
	}
	return transportDict(im.agent.GetTransport()), nil
}

func (im *impl) setTransport(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	if err := library.Arity("set_transport", args, 1); err != nil {
		return value.None, err
	}
	name, err := library.Str("set_transport", args[0])
	if err != nil {
		return value.None, err
	}
	if err := im.agent.SetTransport(name); err != nil {
		return value.None, library.MethodError(diag.ValueError, err.Error())
	}
	return value.None, nil
}

// listTasks and stopTask are deliberately thin: §9 leaves the external
// scheduler's task semantics unspecified, so this only forwards to
// whatever agentiface.Agent implementation the host supplies.
func (im *impl) listTasks(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	if err := library.Arity("list_tasks", args, 0); err != nil {
		return value.None, err
	}
	tasks, err := im.agent.ListTasks()
	if err != nil {
		return value.None, library.MethodError(diag.RuntimeError, err.Error())
	}
	out := make([]value.Value, len(tasks))
	for i, t := range tasks {
		d := value.NewDictValue()
		d.Dict().Set(value.String("id"), value.Int(t.ID))
		d.Dict().Set(value.String("name"), value.String(t.Name))
		d.Dict().Set(value.String("status"), value.String(t.Status))
		out[i] = d
	}
	return value.NewList(out), nil
}

func (im *impl) stopTask(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	if err := library.Arity("stop_task", args, 1); err != nil {
		return value.None, err
	}
	id, err := library.Int("stop_task", args[0])
	if err != nil {
		return value.None, err
	}
	if err := im.agent.StopTask(id); err != nil {
		return value.None, library.MethodError(diag.RuntimeError, err.Error())
	}
	return value.None, nil
}

func (im *impl) evalCode(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	if err := library.Arity("eval", args, 1); err != nil {
		return value.None, err
	}
	code, err := library.Str("eval", args[0])
	if err != nil {
		return value.None, err
	}
	if im.eval == nil {
		return value.None, library.MethodError(diag.RuntimeError, "eval() not wired by this host")
	}
	return im.eval.Eval(code)
}
