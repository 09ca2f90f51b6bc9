// Package builtins implements the fixed table of universal functions from
// §4.5: len, range, map/filter/reduce, sorted, zip, the scalar/container
// constructors, and the assert family. Arity and type errors use the
// Python-style message templates §4.5 calls for.
package builtins

import (
	"sort"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/spellshift/eldritch/internal/diag"
	"github.com/spellshift/eldritch/internal/token"
	"github.com/spellshift/eldritch/internal/value"
)

// Caller is the subset of *interp.Interp that built-ins needing to invoke a
// script callable (map, filter, reduce, sorted's key=) depend on. Declared
// here rather than imported to keep this package a leaf: interp installs
// this table into its root environment, so interp depending on builtins
// (not the reverse) is the only direction that avoids a cycle.
type Caller interface {
	Call(callee value.Value, args []value.Value, kwargs map[string]value.Value, span token.Span) (value.Value, error)
}

// Names lists the required built-in set from §4.5, returned (sorted) by
// builtins().
var Names = []string{
	"abs", "all", "any", "assert", "assert_eq", "bool", "builtins", "bytes",
	"chr", "dir", "enumerate", "eprint", "eval", "fail", "filter", "hex",
	"int", "len", "libs", "list", "map", "max", "min", "ord", "print",
	"range", "reduce", "repr", "reversed", "set", "sorted", "str", "tuple",
	"type", "zip",
}

// Install registers every built-in that does not need the calling
// environment (print/eprint/dir/libs/eval are env-aware and are installed
// separately by the interpreter, see interp.installEnvBuiltins).
func Install(root *value.Env, caller Caller) {
	for name, fn := range table(caller) {
		root.DefineLocal(name, value.NewNativeFunction(&value.NativeFunction{Name: name, Call: fn}))
	}
}

type callFn = func(args []value.Value, kwargs map[string]value.Value) (value.Value, error)

func table(caller Caller) map[string]callFn {
	return map[string]callFn{
		"abs":       biAbs,
		"all":       biAll,
		"any":       biAny,
		"assert":    biAssert,
		"assert_eq": biAssertEq,
		"bool":      biBool,
		"builtins":  biBuiltins,
		"bytes":     biBytes,
		"chr":       biChr,
		"enumerate": biEnumerate,
		"fail":      biFail,
		"filter":    biFilter(caller),
		"hex":       biHex,
		"int":       biInt,
		"len":       biLen,
		"list":      biList,
		"map":       biMap(caller),
		"max":       biMax(caller),
		"min":       biMin(caller),
		"ord":       biOrd,
		"range":     biRange,
		"reduce":    biReduce(caller),
		"repr":      biRepr,
		"reversed":  biReversed,
		"set":       biSet,
		"sorted":    biSorted(caller),
		"str":       biStr,
		"tuple":     biTuple,
		"type":      biType,
		"zip":       biZip,
	}
}

func arityErr(name string, want string, got int) error {
	return &diag.Error{ErrKind: diag.TypeError, Msg: name + "() takes " + want + " (" + strconv.Itoa(got) + " given)"}
}

func typeErr(msg string) error {
	return &diag.Error{ErrKind: diag.TypeError, Msg: msg}
}

func valueErr(msg string) error {
	return &diag.Error{ErrKind: diag.ValueError, Msg: msg}
}

func isNumeric(v value.Value) bool {
	return v.Kind() == value.KindInt || v.Kind() == value.KindFloat
}

func asFloat(v value.Value) float64 {
	if v.Kind() == value.KindInt {
		return float64(v.AsInt())
	}
	return v.AsFloat()
}

func iterate(v value.Value) ([]value.Value, error) {
	switch v.Kind() {
	case value.KindList:
		return v.List().Snapshot(), nil
	case value.KindTuple:
		return v.Tuple(), nil
	case value.KindSet:
		return v.Set().Snapshot(), nil
	case value.KindDict:
		return v.Dict().SortedKeys(), nil
	case value.KindString:
		out := make([]value.Value, 0, len(v.AsString()))
		for _, r := range v.AsString() {
			out = append(out, value.String(string(r)))
		}
		return out, nil
	case value.KindBytes:
		out := make([]value.Value, 0, len(v.AsBytes()))
		for _, b := range v.AsBytes() {
			out = append(out, value.Int(int64(b)))
		}
		return out, nil
	}
	return nil, typeErr("'" + v.Kind().String() + "' object is not iterable")
}

// ---- scalars ----

func biAbs(args []value.Value, _ map[string]value.Value) (value.Value, error) {
	if len(args) != 1 {
		return value.None, arityErr("abs", "exactly one argument", len(args))
	}
	switch args[0].Kind() {
	case value.KindInt:
		n := args[0].AsInt()
		if n < 0 {
			n = -n
		}
		return value.Int(n), nil
	case value.KindFloat:
		f := args[0].AsFloat()
		if f < 0 {
			f = -f
		}
		return value.Float(f), nil
	}
	return value.None, typeErr("bad operand type for abs(): '" + args[0].Kind().String() + "'")
}

func biBool(args []value.Value, _ map[string]value.Value) (value.Value, error) {
	if len(args) > 1 {
		return value.None, arityErr("bool", "at most one argument", len(args))
	}
	if len(args) == 0 {
		return value.Bool(false), nil
	}
	return value.Bool(value.IsTruthy(args[0])), nil
}

func biChr(args []value.Value, _ map[string]value.Value) (value.Value, error) {
	if len(args) != 1 {
		return value.None, arityErr("chr", "exactly one argument", len(args))
	}
	if args[0].Kind() != value.KindInt {
		return value.None, typeErr("an integer is required (got type " + args[0].Kind().String() + ")")
	}
	n := args[0].AsInt()
	if n < 0 || n > 0x10FFFF {
		return value.None, valueErr("chr() arg not in range(0x110000)")
	}
	return value.String(string(rune(n))), nil
}

func biOrd(args []value.Value, _ map[string]value.Value) (value.Value, error) {
	if len(args) != 1 {
		return value.None, arityErr("ord", "exactly one argument", len(args))
	}
	if args[0].Kind() != value.KindString {
		return value.None, typeErr("ord() expected string, got " + args[0].Kind().String())
	}
	r := []rune(args[0].AsString())
	if len(r) != 1 {
		return value.None, typeErr("ord() expected a character, but string of length " + strconv.Itoa(len(r)) + " found")
	}
	return value.Int(int64(r[0])), nil
}

func biHex(args []value.Value, _ map[string]value.Value) (value.Value, error) {
	if len(args) != 1 {
		return value.None, arityErr("hex", "exactly one argument", len(args))
	}
	if args[0].Kind() != value.KindInt {
		return value.None, typeErr("'" + args[0].Kind().String() + "' object cannot be interpreted as an integer")
	}
	n := args[0].AsInt()
	if n < 0 {
		return value.String("-0x" + strconv.FormatInt(-n, 16)), nil
	}
	return value.String("0x" + strconv.FormatInt(n, 16)), nil
}

func biInt(args []value.Value, _ map[string]value.Value) (value.Value, error) {
	if len(args) == 0 {
		return value.Int(0), nil
	}
	if len(args) > 2 {
		return value.None, arityErr("int", "at most 2 arguments", len(args))
	}
	if args[0].Kind() == value.KindInt {
		return args[0], nil
	}
	if args[0].Kind() == value.KindFloat {
		return value.Int(int64(args[0].AsFloat())), nil
	}
	if args[0].Kind() != value.KindString {
		return value.None, typeErr("int() argument must be a string or a number, not '" + args[0].Kind().String() + "'")
	}
	s := strings.TrimSpace(args[0].AsString())
	base := int64(10)
	if len(args) == 2 {
		if args[1].Kind() != value.KindInt {
			return value.None, typeErr("'" + args[1].Kind().String() + "' object cannot be interpreted as an integer")
		}
		base = args[1].AsInt()
	}
	if base != 0 && (base < 2 || base > 36) {
		return value.None, valueErr("int() base must be >= 2 and <= 36, or 0")
	}
	neg := false
	trimmed := s
	if strings.HasPrefix(trimmed, "-") {
		neg = true
		trimmed = trimmed[1:]
	} else if strings.HasPrefix(trimmed, "+") {
		trimmed = trimmed[1:]
	}
	parseBase := base
	if base == 0 {
		switch {
		case strings.HasPrefix(trimmed, "0x") || strings.HasPrefix(trimmed, "0X"):
			parseBase, trimmed = 16, trimmed[2:]
		case strings.HasPrefix(trimmed, "0o") || strings.HasPrefix(trimmed, "0O"):
			parseBase, trimmed = 8, trimmed[2:]
		case strings.HasPrefix(trimmed, "0b") || strings.HasPrefix(trimmed, "0B"):
			parseBase, trimmed = 2, trimmed[2:]
		default:
			parseBase = 10
		}
	} else if base == 16 && (strings.HasPrefix(trimmed, "0x") || strings.HasPrefix(trimmed, "0X")) {
		trimmed = trimmed[2:]
	} else if base == 8 && (strings.HasPrefix(trimmed, "0o") || strings.HasPrefix(trimmed, "0O")) {
		trimmed = trimmed[2:]
	} else if base == 2 && (strings.HasPrefix(trimmed, "0b") || strings.HasPrefix(trimmed, "0B")) {
		trimmed = trimmed[2:]
	}
	n, err := strconv.ParseInt(trimmed, int(parseBase), 64)
	if err != nil {
		return value.None, valueErr("invalid literal for int() with base " + strconv.FormatInt(base, 10) + ": '" + s + "'")
	}
	if neg {
		n = -n
	}
	return value.Int(n), nil
}

func biStr(args []value.Value, _ map[string]value.Value) (value.Value, error) {
	if len(args) == 0 {
		return value.String(""), nil
	}
	if len(args) != 1 {
		return value.None, arityErr("str", "exactly one argument", len(args))
	}
	return value.String(value.Display(args[0])), nil
}

func biRepr(args []value.Value, _ map[string]value.Value) (value.Value, error) {
	if len(args) != 1 {
		return value.None, arityErr("repr", "exactly one argument", len(args))
	}
	return value.String(value.Repr(args[0])), nil
}

func biBytes(args []value.Value, _ map[string]value.Value) (value.Value, error) {
	if len(args) == 0 {
		return value.Bytes(nil), nil
	}
	if len(args) > 2 {
		return value.None, arityErr("bytes", "at most 2 arguments", len(args))
	}
	switch args[0].Kind() {
	case value.KindString:
		return value.Bytes([]byte(args[0].AsString())), nil
	case value.KindInt:
		return value.Bytes(make([]byte, args[0].AsInt())), nil
	case value.KindList, value.KindTuple:
		elts, _ := iterate(args[0])
		out := make([]byte, len(elts))
		for i, e := range elts {
			if e.Kind() != value.KindInt || e.AsInt() < 0 || e.AsInt() > 255 {
				return value.None, valueErr("bytes must be in range(0, 256)")
			}
			out[i] = byte(e.AsInt())
		}
		return value.Bytes(out), nil
	}
	return value.None, typeErr("cannot convert '" + args[0].Kind().String() + "' object to bytes")
}

// ---- containers ----

func biLen(args []value.Value, _ map[string]value.Value) (value.Value, error) {
	if len(args) != 1 {
		return value.None, arityErr("len", "exactly one argument", len(args))
	}
	v := args[0]
	switch v.Kind() {
	case value.KindString:
		return value.Int(int64(len([]rune(v.AsString())))), nil
	case value.KindBytes:
		return value.Int(int64(len(v.AsBytes()))), nil
	case value.KindList:
		return value.Int(int64(v.List().Len())), nil
	case value.KindTuple:
		return value.Int(int64(len(v.Tuple()))), nil
	case value.KindDict:
		return value.Int(int64(v.Dict().Len())), nil
	case value.KindSet:
		return value.Int(int64(v.Set().Len())), nil
	}
	return value.None, typeErr("object of type '" + v.Kind().String() + "' has no len()")
}

func biList(args []value.Value, _ map[string]value.Value) (value.Value, error) {
	if len(args) == 0 {
		return value.NewList(nil), nil
	}
	if len(args) != 1 {
		return value.None, arityErr("list", "at most one argument", len(args))
	}
	elts, err := iterate(args[0])
	if err != nil {
		return value.None, err
	}
	return value.NewList(append([]value.Value(nil), elts...)), nil
}

func biTuple(args []value.Value, _ map[string]value.Value) (value.Value, error) {
	if len(args) == 0 {
		return value.NewTuple(nil), nil
	}
	if len(args) != 1 {
		return value.None, arityErr("tuple", "at most one argument", len(args))
	}
	elts, err := iterate(args[0])
	if err != nil {
		return value.None, err
	}
	return value.NewTuple(elts), nil
}

func biSet(args []value.Value, _ map[string]value.Value) (value.Value, error) {
	out := value.NewSetValue()
	if len(args) == 0 {
		return out, nil
	}
	if len(args) != 1 {
		return value.None, arityErr("set", "at most one argument", len(args))
	}
	elts, err := iterate(args[0])
	if err != nil {
		return value.None, err
	}
	for _, e := range elts {
		if err := out.Set().Add(e); err != nil {
			return value.None, typeErr(err.Error())
		}
	}
	return out, nil
}

func biReversed(args []value.Value, _ map[string]value.Value) (value.Value, error) {
	if len(args) != 1 {
		return value.None, arityErr("reversed", "exactly one argument", len(args))
	}
	elts, err := iterate(args[0])
	if err != nil {
		return value.None, err
	}
	out := make([]value.Value, len(elts))
	for i, e := range elts {
		out[len(elts)-1-i] = e
	}
	return value.NewList(out), nil
}

func biEnumerate(args []value.Value, _ map[string]value.Value) (value.Value, error) {
	if len(args) == 0 || len(args) > 2 {
		return value.None, arityErr("enumerate", "1 to 2 arguments", len(args))
	}
	start := int64(0)
	if len(args) == 2 {
		if args[1].Kind() != value.KindInt {
			return value.None, typeErr("'" + args[1].Kind().String() + "' object cannot be interpreted as an integer")
		}
		start = args[1].AsInt()
	}
	elts, err := iterate(args[0])
	if err != nil {
		return value.None, err
	}
	out := make([]value.Value, len(elts))
	for i, e := range elts {
		out[i] = value.NewTuple([]value.Value{value.Int(start + int64(i)), e})
	}
	return value.NewList(out), nil
}

func biRange(args []value.Value, _ map[string]value.Value) (value.Value, error) {
	var start, stop, step int64
	switch len(args) {
	case 1:
		start, step = 0, 1
		if args[0].Kind() != value.KindInt {
			return value.None, typeErr("'" + args[0].Kind().String() + "' object cannot be interpreted as an integer")
		}
		stop = args[0].AsInt()
	case 2:
		step = 1
		for _, a := range args {
			if a.Kind() != value.KindInt {
				return value.None, typeErr("'" + a.Kind().String() + "' object cannot be interpreted as an integer")
			}
		}
		start, stop = args[0].AsInt(), args[1].AsInt()
	case 3:
		for _, a := range args {
			if a.Kind() != value.KindInt {
				return value.None, typeErr("'" + a.Kind().String() + "' object cannot be interpreted as an integer")
			}
		}
		start, stop, step = args[0].AsInt(), args[1].AsInt(), args[2].AsInt()
		if step == 0 {
			return value.None, valueErr("range() arg 3 must not be zero")
		}
	default:
		return value.None, arityErr("range", "from 1 to 3 arguments", len(args))
	}
	var ints []int
	switch {
	case step > 0 && start < stop:
		ints = lo.RangeWithSteps(int(start), int(stop), int(step))
	case step < 0 && start > stop:
		ints = lo.RangeWithSteps(int(start), int(stop), int(step))
	}
	out := make([]value.Value, len(ints))
	for i, n := range ints {
		out[i] = value.Int(int64(n))
	}
	return value.NewList(out), nil
}

func biZip(args []value.Value, _ map[string]value.Value) (value.Value, error) {
	seqs := make([][]value.Value, len(args))
	minLen := -1
	for i, a := range args {
		elts, err := iterate(a)
		if err != nil {
			return value.None, err
		}
		seqs[i] = elts
		if minLen == -1 || len(elts) < minLen {
			minLen = len(elts)
		}
	}
	if minLen == -1 {
		minLen = 0
	}
	out := make([]value.Value, minLen)
	for i := 0; i < minLen; i++ {
		row := make([]value.Value, len(seqs))
		for j, s := range seqs {
			row[j] = s[i]
		}
		out[i] = value.NewTuple(row)
	}
	return value.NewList(out), nil
}

// ---- higher order ----

func biMap(caller Caller) callFn {
	return func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
		if len(args) < 2 {
			return value.None, arityErr("map", "at least 2 arguments", len(args))
		}
		fn := args[0]
		elts, err := iterate(args[1])
		if err != nil {
			return value.None, err
		}
		var callErr error
		out := lo.Map(elts, func(e value.Value, _ int) value.Value {
			if callErr != nil {
				return value.None
			}
			v, err := caller.Call(fn, []value.Value{e}, nil, token.Span{})
			if err != nil {
				callErr = err
				return value.None
			}
			return v
		})
		if callErr != nil {
			return value.None, callErr
		}
		return value.NewList(out), nil
	}
}

func biFilter(caller Caller) callFn {
	return func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
		if len(args) != 2 {
			return value.None, arityErr("filter", "exactly 2 arguments", len(args))
		}
		fn := args[0]
		elts, err := iterate(args[1])
		if err != nil {
			return value.None, err
		}
		var callErr error
		out := lo.Filter(elts, func(e value.Value, _ int) bool {
			if callErr != nil {
				return false
			}
			if fn.Kind() == value.KindNone {
				return value.IsTruthy(e)
			}
			v, err := caller.Call(fn, []value.Value{e}, nil, token.Span{})
			if err != nil {
				callErr = err
				return false
			}
			return value.IsTruthy(v)
		})
		if callErr != nil {
			return value.None, callErr
		}
		return value.NewList(out), nil
	}
}

func biReduce(caller Caller) callFn {
	return func(args []value.Value, _ map[string]value.Value) (value.Value, error) {
		if len(args) < 2 || len(args) > 3 {
			return value.None, arityErr("reduce", "2 or 3 arguments", len(args))
		}
		fn := args[0]
		elts, err := iterate(args[1])
		if err != nil {
			return value.None, err
		}
		if len(args) == 2 && len(elts) == 0 {
			return value.None, typeErr("reduce() of empty iterable with no initial value")
		}
		acc := value.None
		rest := elts
		if len(args) == 3 {
			acc = args[2]
		} else {
			acc = elts[0]
			rest = elts[1:]
		}
		var callErr error
		result := lo.Reduce(rest, func(agg value.Value, e value.Value, _ int) value.Value {
			if callErr != nil {
				return agg
			}
			v, err := caller.Call(fn, []value.Value{agg, e}, nil, token.Span{})
			if err != nil {
				callErr = err
				return agg
			}
			return v
		}, acc)
		if callErr != nil {
			return value.None, callErr
		}
		return result, nil
	}
}

func biSorted(caller Caller) callFn {
	return func(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
		if len(args) != 1 {
			return value.None, arityErr("sorted", "exactly one argument", len(args))
		}
		elts, err := iterate(args[0])
		if err != nil {
			return value.None, err
		}
		out := append([]value.Value(nil), elts...)
		keyFn, hasKey := kwargs["key"]
		reverse := false
		if r, ok := kwargs["reverse"]; ok {
			reverse = value.IsTruthy(r)
		}
		keys := out
		if hasKey {
			keys = make([]value.Value, len(out))
			for i, e := range out {
				kv, err := caller.Call(keyFn, []value.Value{e}, nil, token.Span{})
				if err != nil {
					return value.None, err
				}
				keys[i] = kv
			}
		}
		var sortErr error
		sort.SliceStable(out, func(i, j int) bool {
			if sortErr != nil {
				return false
			}
			lt, err := value.Less(keys[i], keys[j])
			if err != nil {
				sortErr = err
				return false
			}
			return lt
		})
		if sortErr != nil {
			return value.None, typeErr(sortErr.Error())
		}
		if reverse {
			for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
				out[i], out[j] = out[j], out[i]
			}
		}
		return value.NewList(out), nil
	}
}

func biMax(caller Caller) callFn { return biExtreme(caller, "max", false) }
func biMin(caller Caller) callFn { return biExtreme(caller, "min", true) }

func biExtreme(caller Caller, name string, wantMin bool) callFn {
	return func(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
		var elts []value.Value
		if len(args) == 1 {
			var err error
			elts, err = iterate(args[0])
			if err != nil {
				return value.None, err
			}
		} else if len(args) > 1 {
			elts = args
		} else {
			return value.None, arityErr(name, "at least 1 argument", len(args))
		}
		if len(elts) == 0 {
			if dv, ok := kwargs["default"]; ok {
				return dv, nil
			}
			return value.None, valueErr(name + "() arg is an empty sequence")
		}
		keyFn, hasKey := kwargs["key"]
		keyOf := func(v value.Value) (value.Value, error) {
			if !hasKey {
				return v, nil
			}
			return caller.Call(keyFn, []value.Value{v}, nil, token.Span{})
		}
		best := elts[0]
		bestKey, err := keyOf(best)
		if err != nil {
			return value.None, err
		}
		for _, e := range elts[1:] {
			k, err := keyOf(e)
			if err != nil {
				return value.None, err
			}
			lt, err := value.Less(k, bestKey)
			if err != nil {
				return value.None, typeErr(err.Error())
			}
			if (wantMin && lt) || (!wantMin && !lt && !value.Equal(k, bestKey)) {
				best, bestKey = e, k
			}
		}
		return best, nil
	}
}

// ---- assertions / introspection ----

func biAssert(args []value.Value, _ map[string]value.Value) (value.Value, error) {
	if len(args) == 0 || len(args) > 2 {
		return value.None, arityErr("assert", "1 or 2 arguments", len(args))
	}
	if value.IsTruthy(args[0]) {
		return value.None, nil
	}
	msg := "assertion failed"
	if len(args) == 2 {
		msg = value.Display(args[1])
	}
	return value.None, &diag.Error{ErrKind: diag.RuntimeError, Msg: msg}
}

func biAssertEq(args []value.Value, _ map[string]value.Value) (value.Value, error) {
	if len(args) < 2 || len(args) > 3 {
		return value.None, arityErr("assert_eq", "2 or 3 arguments", len(args))
	}
	if value.Equal(args[0], args[1]) {
		return value.None, nil
	}
	msg := "assert_eq failed: " + value.Repr(args[0]) + " != " + value.Repr(args[1])
	if len(args) == 3 {
		msg = value.Display(args[2])
	}
	return value.None, &diag.Error{ErrKind: diag.RuntimeError, Msg: msg}
}

func biFail(args []value.Value, _ map[string]value.Value) (value.Value, error) {
	msg := "fail() called"
	if len(args) > 0 {
		msg = value.Display(args[0])
	}
	return value.None, &diag.Error{ErrKind: diag.RuntimeError, Msg: msg}
}

func biAll(args []value.Value, _ map[string]value.Value) (value.Value, error) {
	if len(args) != 1 {
		return value.None, arityErr("all", "exactly one argument", len(args))
	}
	elts, err := iterate(args[0])
	if err != nil {
		return value.None, err
	}
	for _, e := range elts {
		if !value.IsTruthy(e) {
			return value.Bool(false), nil
		}
	}
	return value.Bool(true), nil
}

func biAny(args []value.Value, _ map[string]value.Value) (value.Value, error) {
	if len(args) != 1 {
		return value.None, arityErr("any", "exactly one argument", len(args))
	}
	elts, err := iterate(args[0])
	if err != nil {
		return value.None, err
	}
	for _, e := range elts {
		if value.IsTruthy(e) {
			return value.Bool(true), nil
		}
	}
	return value.Bool(false), nil
}

func biType(args []value.Value, _ map[string]value.Value) (value.Value, error) {
	if len(args) != 1 {
		return value.None, arityErr("type", "exactly one argument", len(args))
	}
	return value.String(args[0].Kind().String()), nil
}

func biBuiltins(args []value.Value, _ map[string]value.Value) (value.Value, error) {
	if len(args) != 0 {
		return value.None, arityErr("builtins", "no arguments", len(args))
	}
	names := append([]string(nil), Names...)
	sort.Strings(names)
	out := make([]value.Value, len(names))
	for i, n := range names {
		out[i] = value.String(n)
	}
	return value.NewList(out), nil
}
