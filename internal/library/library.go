// Package library implements the §4.6 library binding layer: registration
// of host-provided libraries into the root environment, and the typed
// marshalling (FromValue/ToValue) used when a BoundMethod is invoked.
package library

import (
	"fmt"
	"sort"

	"github.com/spf13/cast"

	"github.com/spellshift/eldritch/internal/diag"
	"github.com/spellshift/eldritch/internal/value"
)

// Method is one library entry point: already-evaluated script arguments in,
// a Value or an error string out (§4.7: "every method returns either a
// successful Value or an error string").
type Method func(args []value.Value, kwargs map[string]value.Value) (value.Value, error)

// Table is the default value.Dispatcher implementation: a name, a fixed set
// of published constants, and a method lookup table. Every internal/stdlib
// package builds one of these for its real and fake modes rather than
// hand-writing a Dispatch switch, mirroring the teacher's decorator/registry
// pattern (`runtime/decorators`) that maps a declared name to a handler.
type Table struct {
	Name    string
	Consts  map[string]value.Value
	Methods map[string]Method
}

func (t *Table) TypeName() string { return t.Name }

func (t *Table) Members() map[string]value.Value {
	out := make(map[string]value.Value, len(t.Consts)+len(t.Methods))
	for k, v := range t.Consts {
		out[k] = v
	}
	for name := range t.Methods {
		out[name] = value.NewNativeFunction(&value.NativeFunction{Name: name})
	}
	return out
}

func (t *Table) Dispatch(method string, args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	fn, ok := t.Methods[method]
	if !ok {
		return value.None, fmt.Errorf("'%s' object has no attribute '%s'", t.Name, method)
	}
	return fn(args, kwargs)
}

// Register binds impl into root under name (§4.6 "registration at
// interpreter construction"), installing it as a Foreign Value.
func Register(root *value.Env, name string, impl value.Dispatcher) {
	root.DefineLocal(name, value.NewForeign(&value.Foreign{Name: name, Impl: impl}))
}

// ---- typed marshalling (FromValue side) ----
//
// Each helper names the Rust-side declared type it stands in for (§4.6:
// Int, String, Bytes, List<T>, Map<K,V>, Option<T>) and produces a
// TypeError naming the expected type on mismatch, as the spec requires.

// Arity checks the exact positional argument count for a method named fn.
func Arity(fn string, args []value.Value, want int) error {
	if len(args) != want {
		noun := "argument"
		if want != 1 {
			noun = "arguments"
		}
		return fmt.Errorf("%s() takes exactly %d %s (%d given)", fn, want, noun, len(args))
	}
	return nil
}

// ArityRange checks a method's positional argument count falls in [min,max].
func ArityRange(fn string, args []value.Value, min, max int) error {
	if len(args) < min || len(args) > max {
		return fmt.Errorf("%s() takes from %d to %d arguments (%d given)", fn, min, max, len(args))
	}
	return nil
}

func typeMismatch(fn, want string, got value.Value) error {
	return &diag.Error{ErrKind: diag.TypeError, Msg: fmt.Sprintf("%s() expected %s, got '%s'", fn, want, got.Kind().String())}
}

// Str marshals a String Value's content (FromValue: String).
func Str(fn string, v value.Value) (string, error) {
	if v.Kind() != value.KindString {
		return "", typeMismatch(fn, "a string", v)
	}
	return v.AsString(), nil
}

// Int marshals an Int Value (FromValue: Int).
func Int(fn string, v value.Value) (int64, error) {
	if v.Kind() != value.KindInt {
		return 0, typeMismatch(fn, "an int", v)
	}
	return v.AsInt(), nil
}

// Float coerces Int or Float Values to float64, matching the language's own
// numeric-tower widening (§4.3).
func Float(fn string, v value.Value) (float64, error) {
	switch v.Kind() {
	case value.KindFloat:
		return v.AsFloat(), nil
	case value.KindInt:
		return float64(v.AsInt()), nil
	}
	return 0, typeMismatch(fn, "a number", v)
}

// Bool marshals a Bool Value.
func Bool(fn string, v value.Value) (bool, error) {
	if v.Kind() != value.KindBool {
		return false, typeMismatch(fn, "a bool", v)
	}
	return v.AsBool(), nil
}

// Bytes marshals a Bytes Value (FromValue: Bytes).
func Bytes(fn string, v value.Value) ([]byte, error) {
	if v.Kind() != value.KindBytes {
		return nil, typeMismatch(fn, "bytes", v)
	}
	return v.AsBytes(), nil
}

// StringList marshals a List<String> Value, using cast.ToStringE per
// element so numeric/bool elements still coerce the way a loosely-typed
// script author would expect when passing e.g. a list of header values.
func StringList(fn string, v value.Value) ([]string, error) {
	if v.Kind() != value.KindList {
		return nil, typeMismatch(fn, "a list", v)
	}
	elts := v.List().Snapshot()
	out := make([]string, len(elts))
	for i, e := range elts {
		s, err := cast.ToStringE(elemAny(e))
		if err != nil {
			return nil, fmt.Errorf("%s() list element %d: %v", fn, i, err)
		}
		out[i] = s
	}
	return out, nil
}

// StringDict marshals a Map<String,String> Value (FromValue: Map<K,V>),
// e.g. request headers or query parameters.
func StringDict(fn string, v value.Value) (map[string]string, error) {
	if v.Kind() != value.KindDict {
		return nil, typeMismatch(fn, "a dict", v)
	}
	out := make(map[string]string)
	for _, k := range v.Dict().SortedKeys() {
		dv, _, _ := v.Dict().Get(k)
		ks, err := cast.ToStringE(elemAny(k))
		if err != nil {
			return nil, fmt.Errorf("%s() dict key: %v", fn, err)
		}
		vs, err := cast.ToStringE(elemAny(dv))
		if err != nil {
			return nil, fmt.Errorf("%s() dict value for %q: %v", fn, ks, err)
		}
		out[ks] = vs
	}
	return out, nil
}

// OptString marshals Option<String>: None (or an absent kwarg) yields the
// fallback, anything else must be a String.
func OptString(fn string, v value.Value, fallback string) (string, error) {
	if v.Kind() == value.KindNone {
		return fallback, nil
	}
	return Str(fn, v)
}

// OptBool marshals Option<Bool>.
func OptBool(fn string, v value.Value, fallback bool) (bool, error) {
	if v.Kind() == value.KindNone {
		return fallback, nil
	}
	return Bool(fn, v)
}

// Kwarg looks up an optional keyword argument, returning value.None when
// absent so callers can feed it straight to an Opt* marshaller.
func Kwarg(kwargs map[string]value.Value, name string) value.Value {
	if v, ok := kwargs[name]; ok {
		return v
	}
	return value.None
}

// elemAny bridges a Value to Go's any for cast's generic coercions,
// covering the scalar kinds a StringList/StringDict element can hold.
func elemAny(v value.Value) any {
	switch v.Kind() {
	case value.KindString:
		return v.AsString()
	case value.KindInt:
		return v.AsInt()
	case value.KindFloat:
		return v.AsFloat()
	case value.KindBool:
		return v.AsBool()
	}
	return value.Display(v)
}

// ---- typed marshalling (ToValue side) ----

// ToStringList converts a []string return value back into a script List.
func ToStringList(ss []string) value.Value {
	out := make([]value.Value, len(ss))
	for i, s := range ss {
		out[i] = value.String(s)
	}
	return value.NewList(out)
}

// ToStringDict converts a map[string]string return value into a script
// Dict, with deterministic (sorted) construction order (§9: dict ordering).
func ToStringDict(m map[string]string) value.Value {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	d := value.NewDictValue()
	for _, k := range keys {
		d.Dict().Set(value.String(k), value.String(m[k]))
	}
	return d
}

// MethodError builds a library-level failure that keeps a specific
// EldritchErrorKind instead of the default plain-string-becomes-RuntimeError
// path (§4.7) — e.g. an unknown base64 variant reads as ValueError, not a
// generic RuntimeError. The span is filled in by the caller (interp.Call,
// via nativeErr) at the call site, so only Kind and Msg matter here.
func MethodError(kind diag.Kind, msg string) error {
	return &diag.Error{ErrKind: kind, Msg: msg}
}
