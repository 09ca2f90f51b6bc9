package interp

import (
	"sort"
	"strings"

	"github.com/spellshift/eldritch/internal/diag"
	"github.com/spellshift/eldritch/internal/token"
	"github.com/spellshift/eldritch/internal/value"
)

// typeMethod resolves a built-in method on a container/scalar Value
// (list.append, dict.get, set.add, str.split, ...), returning a
// NativeFunction bound to recv. Returns ok=false for an unknown attribute
// so the caller can fall back to its own AttributeError message.
func typeMethod(recv value.Value, name string, span token.Span) (value.Value, bool) {
	var call func(args []value.Value, kwargs map[string]value.Value) (value.Value, error)
	switch recv.Kind() {
	case value.KindList:
		call = listMethod(recv, name, span)
	case value.KindDict:
		call = dictMethod(recv, name, span)
	case value.KindSet:
		call = setMethod(recv, name, span)
	case value.KindString:
		call = stringMethod(recv, name, span)
	case value.KindBytes:
		call = bytesMethod(recv, name, span)
	}
	if call == nil {
		return value.None, false
	}
	return value.NewNativeFunction(&value.NativeFunction{Name: name, Call: call}), true
}

func arg(args []value.Value, i int) value.Value {
	if i < len(args) {
		return args[i]
	}
	return value.None
}

func listMethod(recv value.Value, name string, span token.Span) func([]value.Value, map[string]value.Value) (value.Value, error) {
	l := recv.List()
	switch name {
	case "append":
		return func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
			l.Append(args...)
			return value.None, nil
		}
	case "extend":
		return func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
			elts, err := iterate(arg(args, 0))
			if err != nil {
				return value.None, err
			}
			l.Append(elts...)
			return value.None, nil
		}
	case "pop":
		return func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
			i := l.Len() - 1
			if len(args) > 0 {
				i = int(args[0].AsInt())
				if i < 0 {
					i += l.Len()
				}
			}
			v, ok := l.Get(i)
			if !ok {
				return value.None, diag.New(diag.IndexError, span, "pop index out of range")
			}
			snap := l.Snapshot()
			snap = append(snap[:i], snap[i+1:]...)
			replaceList(l, snap)
			return v, nil
		}
	case "insert":
		return func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
			i := int(arg(args, 0).AsInt())
			snap := l.Snapshot()
			if i < 0 {
				i += len(snap)
			}
			if i < 0 {
				i = 0
			}
			if i > len(snap) {
				i = len(snap)
			}
			snap = append(snap[:i], append([]value.Value{arg(args, 1)}, snap[i:]...)...)
			replaceList(l, snap)
			return value.None, nil
		}
	case "remove":
		return func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
			snap := l.Snapshot()
			for i, e := range snap {
				if value.Equal(e, arg(args, 0)) {
					snap = append(snap[:i], snap[i+1:]...)
					replaceList(l, snap)
					return value.None, nil
				}
			}
			return value.None, diag.New(diag.ValueError, span, "list.remove(x): x not in list")
		}
	case "index":
		return func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
			for i, e := range l.Snapshot() {
				if value.Equal(e, arg(args, 0)) {
					return value.Int(int64(i)), nil
				}
			}
			return value.None, diag.New(diag.ValueError, span, "value not in list")
		}
	case "count":
		return func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
			n := 0
			for _, e := range l.Snapshot() {
				if value.Equal(e, arg(args, 0)) {
					n++
				}
			}
			return value.Int(int64(n)), nil
		}
	case "sort":
		return func(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
			snap := l.Snapshot()
			rev := false
			if r, ok := kwargs["reverse"]; ok {
				rev = value.IsTruthy(r)
			}
			var sortErr error
			sort.SliceStable(snap, func(i, j int) bool {
				lt, err := value.Less(snap[i], snap[j])
				if err != nil {
					sortErr = err
				}
				if rev {
					return !lt
				}
				return lt
			})
			if sortErr != nil {
				return value.None, diag.New(diag.TypeError, span, sortErr.Error())
			}
			replaceList(l, snap)
			return value.None, nil
		}
	case "reverse":
		return func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
			snap := l.Snapshot()
			for i, j := 0, len(snap)-1; i < j; i, j = i+1, j-1 {
				snap[i], snap[j] = snap[j], snap[i]
			}
			replaceList(l, snap)
			return value.None, nil
		}
	case "clear":
		return func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
			replaceList(l, nil)
			return value.None, nil
		}
	case "copy":
		return func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
			return value.NewList(l.Snapshot()), nil
		}
	}
	return nil
}

// replaceList overwrites a ListData's contents in place, preserving its
// identity (§8's augmented-in-place invariant applies to mutating methods
// too, since callers may hold other references to the same list).
func replaceList(l *value.ListData, elts []value.Value) {
	l.ReplaceAll(elts)
}

func dictMethod(recv value.Value, name string, span token.Span) func([]value.Value, map[string]value.Value) (value.Value, error) {
	d := recv.Dict()
	switch name {
	case "get":
		return func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
			v, ok, err := d.Get(arg(args, 0))
			if err != nil {
				return value.None, diag.New(diag.TypeError, span, err.Error())
			}
			if !ok {
				if len(args) > 1 {
					return args[1], nil
				}
				return value.None, nil
			}
			return v, nil
		}
	case "keys":
		return func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
			return value.NewList(d.SortedKeys()), nil
		}
	case "values":
		return func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
			var out []value.Value
			for _, k := range d.SortedKeys() {
				v, _, _ := d.Get(k)
				out = append(out, v)
			}
			return value.NewList(out), nil
		}
	case "items":
		return func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
			var out []value.Value
			for _, k := range d.SortedKeys() {
				v, _, _ := d.Get(k)
				out = append(out, value.NewTuple([]value.Value{k, v}))
			}
			return value.NewList(out), nil
		}
	case "pop":
		return func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
			v, ok, err := d.Get(arg(args, 0))
			if err != nil {
				return value.None, diag.New(diag.TypeError, span, err.Error())
			}
			if !ok {
				if len(args) > 1 {
					return args[1], nil
				}
				return value.None, diag.New(diag.KeyError, span, "'"+value.Repr(arg(args, 0))+"'")
			}
			d.Delete(arg(args, 0))
			return v, nil
		}
	case "setdefault":
		return func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
			v, ok, err := d.Get(arg(args, 0))
			if err != nil {
				return value.None, diag.New(diag.TypeError, span, err.Error())
			}
			if ok {
				return v, nil
			}
			dv := arg(args, 1)
			if err := d.Set(arg(args, 0), dv); err != nil {
				return value.None, diag.New(diag.TypeError, span, err.Error())
			}
			return dv, nil
		}
	case "update":
		return func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
			other := arg(args, 0)
			if other.Kind() != value.KindDict {
				return value.None, diag.New(diag.TypeError, span, "update() argument must be a dict")
			}
			for _, k := range other.Dict().SortedKeys() {
				v, _, _ := other.Dict().Get(k)
				if err := d.Set(k, v); err != nil {
					return value.None, diag.New(diag.TypeError, span, err.Error())
				}
			}
			return value.None, nil
		}
	case "clear":
		return func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
			for _, k := range d.SortedKeys() {
				d.Delete(k)
			}
			return value.None, nil
		}
	case "copy":
		return func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
			out := value.NewDictValue()
			for _, k := range d.SortedKeys() {
				v, _, _ := d.Get(k)
				out.Dict().Set(k, v)
			}
			return out, nil
		}
	}
	return nil
}

func setMethod(recv value.Value, name string, span token.Span) func([]value.Value, map[string]value.Value) (value.Value, error) {
	s := recv.Set()
	switch name {
	case "add":
		return func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
			if err := s.Add(arg(args, 0)); err != nil {
				return value.None, diag.New(diag.TypeError, span, err.Error())
			}
			return value.None, nil
		}
	case "remove":
		return func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
			ok, err := s.Remove(arg(args, 0))
			if err != nil {
				return value.None, diag.New(diag.TypeError, span, err.Error())
			}
			if !ok {
				return value.None, diag.New(diag.KeyError, span, "'"+value.Repr(arg(args, 0))+"'")
			}
			return value.None, nil
		}
	case "discard":
		return func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
			s.Remove(arg(args, 0))
			return value.None, nil
		}
	case "union":
		return func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
			out, err := value.BitOr(recv, arg(args, 0))
			return out, wrapType(span, err)
		}
	case "intersection":
		return func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
			out, err := value.BitAnd(recv, arg(args, 0))
			return out, wrapType(span, err)
		}
	case "difference":
		return func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
			out, err := value.Sub(recv, arg(args, 0))
			return out, wrapType(span, err)
		}
	case "clear":
		return func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
			for _, e := range s.Snapshot() {
				s.Remove(e)
			}
			return value.None, nil
		}
	case "copy":
		return func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
			out := value.NewSetValue()
			for _, e := range s.Snapshot() {
				out.Set().Add(e)
			}
			return out, nil
		}
	}
	return nil
}

func stringMethod(recv value.Value, name string, span token.Span) func([]value.Value, map[string]value.Value) (value.Value, error) {
	s := recv.AsString()
	switch name {
	case "split":
		return func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
			var parts []string
			if len(args) == 0 || args[0].Kind() == value.KindNone {
				parts = strings.Fields(s)
			} else {
				parts = strings.Split(s, args[0].AsString())
			}
			out := make([]value.Value, len(parts))
			for i, p := range parts {
				out[i] = value.String(p)
			}
			return value.NewList(out), nil
		}
	case "join":
		return func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
			elts, err := iterate(arg(args, 0))
			if err != nil {
				return value.None, diag.New(diag.TypeError, span, err.Error())
			}
			parts := make([]string, len(elts))
			for i, e := range elts {
				if e.Kind() != value.KindString {
					return value.None, diag.New(diag.TypeError, span, "sequence item: expected str instance")
				}
				parts[i] = e.AsString()
			}
			return value.String(strings.Join(parts, s)), nil
		}
	case "strip":
		return func(args []value.Value, _ map[string]value.Value) (value.Value, error) { return value.String(strings.TrimSpace(s)), nil }
	case "lstrip":
		return func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
			return value.String(strings.TrimLeft(s, " \t\n\r")), nil
		}
	case "rstrip":
		return func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
			return value.String(strings.TrimRight(s, " \t\n\r")), nil
		}
	case "upper":
		return func(args []value.Value, _ map[string]value.Value) (value.Value, error) { return value.String(strings.ToUpper(s)), nil }
	case "lower":
		return func(args []value.Value, _ map[string]value.Value) (value.Value, error) { return value.String(strings.ToLower(s)), nil }
	case "replace":
		return func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
			return value.String(strings.ReplaceAll(s, arg(args, 0).AsString(), arg(args, 1).AsString())), nil
		}
	case "startswith":
		return func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
			return value.Bool(strings.HasPrefix(s, arg(args, 0).AsString())), nil
		}
	case "endswith":
		return func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
			return value.Bool(strings.HasSuffix(s, arg(args, 0).AsString())), nil
		}
	case "find":
		return func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
			return value.Int(int64(strings.Index(s, arg(args, 0).AsString()))), nil
		}
	case "format":
		return func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
			out, err := value.FormatMethod(s, args)
			return value.String(out), wrapType(span, err)
		}
	case "encode":
		return func(args []value.Value, _ map[string]value.Value) (value.Value, error) { return value.Bytes([]byte(s)), nil }
	}
	return nil
}

func bytesMethod(recv value.Value, name string, span token.Span) func([]value.Value, map[string]value.Value) (value.Value, error) {
	b := recv.AsBytes()
	switch name {
	case "decode":
		return func(args []value.Value, _ map[string]value.Value) (value.Value, error) { return value.String(string(b)), nil }
	case "hex":
		return func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
			const digits = "0123456789abcdef"
			out := make([]byte, len(b)*2)
			for i, c := range b {
				out[i*2] = digits[c>>4]
				out[i*2+1] = digits[c&0xf]
			}
			return value.String(string(out)), nil
		}
	}
	return nil
}
