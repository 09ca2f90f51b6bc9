package interp

import (
	"strconv"

	"github.com/spellshift/eldritch/internal/ast"
	"github.com/spellshift/eldritch/internal/diag"
	"github.com/spellshift/eldritch/internal/token"
	"github.com/spellshift/eldritch/internal/value"
)

// evalCall resolves the callee and evaluates arguments (expanding `*args`/
// `**kwargs` unpacking), then dispatches on the callee's Kind.
func (in *Interp) evalCall(env *value.Env, n *ast.CallExpr) (value.Value, error) {
	callee, err := in.evalExpr(env, n.Func)
	if err != nil {
		return value.None, err
	}
	if id, ok := n.Func.(*ast.Ident); ok && envBuiltinNames[id.Name] {
		if bound, ok := env.Get(id.Name); ok && bound.Kind() == value.KindNativeFunction && bound.NativeFunction().Name == id.Name {
			var args []value.Value
			for _, a := range n.Args {
				v, err := in.evalExpr(env, a.Value)
				if err != nil {
					return value.None, err
				}
				if a.Star {
					elts, err := iterate(v)
					if err != nil {
						return value.None, diag.New(diag.TypeError, a.Value.Span(), err.Error())
					}
					args = append(args, elts...)
					continue
				}
				if a.DStar || a.Name != "" {
					return value.None, diag.New(diag.TypeError, n.Span(), id.Name+"() does not accept keyword arguments")
				}
				args = append(args, v)
			}
			if v, handled, err := in.envAwareCall(env, id.Name, args, n.Span()); handled {
				return v, err
			}
		}
	}
	var positional []value.Value
	kwargs := make(map[string]value.Value)
	for _, a := range n.Args {
		v, err := in.evalExpr(env, a.Value)
		if err != nil {
			return value.None, err
		}
		switch {
		case a.Star:
			elts, err := iterate(v)
			if err != nil {
				return value.None, diag.New(diag.TypeError, a.Value.Span(), err.Error())
			}
			positional = append(positional, elts...)
		case a.DStar:
			if v.Kind() != value.KindDict {
				return value.None, diag.New(diag.TypeError, a.Value.Span(), "argument after ** must be a dict")
			}
			for _, k := range v.Dict().SortedKeys() {
				if k.Kind() != value.KindString {
					return value.None, diag.New(diag.TypeError, a.Value.Span(), "keywords must be strings")
				}
				kv, _, _ := v.Dict().Get(k)
				kwargs[k.AsString()] = kv
			}
		case a.Name != "":
			kwargs[a.Name] = v
		default:
			positional = append(positional, v)
		}
	}
	return in.Call(callee, positional, kwargs, n.Span())
}

// Call dispatches a resolved callee Value with already-evaluated
// arguments. Exported so builtins (map/filter/reduce/sorted key=...) can
// invoke user callables.
func (in *Interp) Call(callee value.Value, args []value.Value, kwargs map[string]value.Value, span token.Span) (value.Value, error) {
	switch callee.Kind() {
	case value.KindFunction:
		return in.callFunction(callee.Function(), args, kwargs, span)
	case value.KindNativeFunction:
		v, err := callee.NativeFunction().Call(args, kwargs)
		if err != nil {
			return value.None, nativeErr(span, err)
		}
		return v, nil
	case value.KindBoundMethod:
		bm := callee.BoundMethod()
		v, err := bm.Receiver.Impl.Dispatch(bm.Method, args, kwargs)
		if err != nil {
			return value.None, nativeErr(span, err)
		}
		return v, nil
	}
	return value.None, diag.New(diag.TypeError, span, "'"+callee.Kind().String()+"' object is not callable")
}

// callFunction implements the argument-binding protocol from §4.4:
// positional slots first, surplus to *args, keywords fill remaining slots
// or go to **kwargs, unfilled defaultless formals error.
func (in *Interp) callFunction(fn *value.Function, args []value.Value, kwargs map[string]value.Value, span token.Span) (value.Value, error) {
	in.depth++
	defer func() { in.depth-- }()
	if in.depth > MaxDepth {
		return value.None, diag.New(diag.RecursionError, span, "maximum recursion depth exceeded")
	}
	in.stack = append(in.stack, frame{name: fn.Name, span: span})
	defer func() { in.stack = in.stack[:len(in.stack)-1] }()

	call := fn.Env.NewChild()
	params := fn.Params.Positional
	kwargs = cloneKwargs(kwargs)

	n := len(args)
	if n > len(params) {
		n = len(params)
	}
	for i := 0; i < n; i++ {
		call.DefineLocal(params[i].Name, args[i])
	}
	surplus := args[n:]
	if len(surplus) > 0 {
		if fn.Params.StarArgs == "" {
			return value.None, diag.New(diag.TypeError, span, callArityMsg(fn.Name, len(params), len(args)))
		}
		call.DefineLocal(fn.Params.StarArgs, value.NewTuple(append([]value.Value(nil), surplus...)))
	} else if fn.Params.StarArgs != "" {
		call.DefineLocal(fn.Params.StarArgs, value.NewTuple(nil))
	}

	for i := n; i < len(params); i++ {
		p := params[i]
		if kv, ok := kwargs[p.Name]; ok {
			call.DefineLocal(p.Name, kv)
			delete(kwargs, p.Name)
			continue
		}
		if p.Default != nil {
			dv, err := in.evalExpr(fn.Env, p.Default)
			if err != nil {
				return value.None, err
			}
			call.DefineLocal(p.Name, dv)
			continue
		}
		return value.None, diag.New(diag.TypeError, span, "'"+fn.Name+"'() missing required argument: '"+p.Name+"'")
	}
	for i := 0; i < n; i++ {
		if _, ok := kwargs[params[i].Name]; ok {
			return value.None, diag.New(diag.TypeError, span, "'"+fn.Name+"'() got multiple values for argument '"+params[i].Name+"'")
		}
	}

	if len(kwargs) > 0 {
		if fn.Params.KwArgs == "" {
			for name := range kwargs {
				return value.None, diag.New(diag.TypeError, span, "'"+fn.Name+"'() got an unexpected keyword argument '"+name+"'")
			}
		}
		kw := value.NewDictValue()
		for k, v := range kwargs {
			kw.Dict().Set(value.String(k), v)
		}
		call.DefineLocal(fn.Params.KwArgs, kw)
	} else if fn.Params.KwArgs != "" {
		call.DefineLocal(fn.Params.KwArgs, value.NewDictValue())
	}

	prevFn := in.current
	in.current = fn.Name
	flow, err := in.execBlock(call, fn.Body)
	in.current = prevFn
	if err != nil {
		return value.None, err
	}
	if flow.Kind == FlowReturn {
		return flow.Value, nil
	}
	return value.None, nil
}

// nativeErr attaches the call-site span to an error surfaced by a built-in
// or library call, preserving its EldritchErrorKind when it already carries
// one (built-ins raise typed diag.Errors for arity/type/value mistakes,
// §4.5) and defaulting to RuntimeError otherwise (library methods return
// plain error strings, §4.7).
func nativeErr(span token.Span, err error) error {
	if de, ok := err.(*diag.Error); ok {
		return diag.New(de.ErrKind, span, de.Msg)
	}
	return diag.Wrap(diag.RuntimeError, span, err.Error(), err)
}

func cloneKwargs(m map[string]value.Value) map[string]value.Value {
	out := make(map[string]value.Value, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func callArityMsg(name string, want, got int) string {
	noun := "argument"
	if want != 1 {
		noun = "arguments"
	}
	return "'" + name + "'() takes " + strconv.Itoa(want) + " " + noun + " (" + strconv.Itoa(got) + " given)"
}
