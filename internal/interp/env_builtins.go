package interp

import (
	"sort"
	"strings"

	"github.com/spellshift/eldritch/internal/diag"
	"github.com/spellshift/eldritch/internal/token"
	"github.com/spellshift/eldritch/internal/value"
)

// envBuiltinNames are the handful of built-ins from §4.5/§4.4 whose
// behavior depends on the caller's environment (print/eprint go through the
// Printer attached to the root env; dir/libs introspect scope; eval shares
// the calling scope and the interpreter's recursion budget) rather than
// just their arguments. evalCall intercepts calls to these names before
// falling back to generic NativeFunction dispatch.
var envBuiltinNames = map[string]bool{
	"print": true, "eprint": true, "dir": true, "libs": true, "eval": true,
}

// installEnvBuiltins registers placeholder bindings for the env-aware
// built-ins so type(print), dir(), and NameError suggestions see them; the
// placeholders themselves only fire when a script calls through an alias
// rather than the literal name (evalCall intercepts the direct case).
func (in *Interp) installEnvBuiltins() {
	for name := range envBuiltinNames {
		name := name
		in.Root.DefineLocal(name, value.NewNativeFunction(&value.NativeFunction{
			Name: name,
			Call: func(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
				return value.None, &diag.Error{ErrKind: diag.RuntimeError, Msg: name + "() must be called directly, not through an alias"}
			},
		}))
	}
}

// envAwareCall dispatches the env-aware built-ins. ok is false when name
// does not name one of them, in which case the caller falls back to
// generic evaluation.
func (in *Interp) envAwareCall(env *value.Env, name string, positional []value.Value, span token.Span) (value.Value, bool, error) {
	switch name {
	case "print":
		v, err := in.biPrint(env, positional, span, false)
		return v, true, err
	case "eprint":
		v, err := in.biPrint(env, positional, span, true)
		return v, true, err
	case "dir":
		v, err := in.biDir(env, positional, span)
		return v, true, err
	case "libs":
		v, err := in.biLibs(positional, span)
		return v, true, err
	case "eval":
		v, err := in.biEval(env, positional, span)
		return v, true, err
	}
	return value.None, false, nil
}

func (in *Interp) biPrint(env *value.Env, args []value.Value, span token.Span, toErr bool) (value.Value, error) {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = value.Display(a)
	}
	text := strings.Join(parts, " ")
	p := env.RootPrinter()
	if p == nil {
		return value.None, nil
	}
	if toErr {
		p.PrintErr(span.Line, text)
	} else {
		p.PrintOut(span.Line, text)
	}
	return value.None, nil
}

// biDir implements dir(): with no argument it lists names visible in the
// calling scope (minus the language keywords); with a Foreign argument it
// lists the library's published members and bound-method names.
func (in *Interp) biDir(env *value.Env, args []value.Value, span token.Span) (value.Value, error) {
	if len(args) == 0 {
		names := env.Names()
		out := make([]string, 0, len(names))
		for _, n := range names {
			if _, isKeyword := token.Keywords[n]; !isKeyword {
				out = append(out, n)
			}
		}
		sort.Strings(out)
		return stringList(out), nil
	}
	if len(args) != 1 {
		return value.None, diag.New(diag.TypeError, span, "dir() takes at most one argument")
	}
	recv := args[0]
	if recv.Kind() != value.KindForeign {
		return value.None, diag.New(diag.TypeError, span, "dir() argument must be a library instance")
	}
	members := recv.Foreign().Impl.Members()
	out := make([]string, 0, len(members))
	for k := range members {
		out = append(out, k)
	}
	sort.Strings(out)
	return stringList(out), nil
}

// biLibs lists the names of every library registered in the root
// environment (§4.6: "a process-wide ordered list of registered host
// libraries").
func (in *Interp) biLibs(args []value.Value, span token.Span) (value.Value, error) {
	if len(args) != 0 {
		return value.None, diag.New(diag.TypeError, span, "libs() takes no arguments")
	}
	var names []string
	for _, n := range in.Root.Names() {
		if v, ok := in.Root.Get(n); ok && v.Kind() == value.KindForeign {
			names = append(names, n)
		}
	}
	sort.Strings(names)
	return stringList(names), nil
}

func (in *Interp) biEval(env *value.Env, args []value.Value, span token.Span) (value.Value, error) {
	if len(args) != 1 || args[0].Kind() != value.KindString {
		return value.None, diag.New(diag.TypeError, span, "eval() takes exactly one string argument")
	}
	return in.Eval(env, args[0].AsString(), span)
}

func stringList(ss []string) value.Value {
	out := make([]value.Value, len(ss))
	for i, s := range ss {
		out[i] = value.String(s)
	}
	return value.NewList(out)
}
