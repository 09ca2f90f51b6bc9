// Operations: arithmetic, comparison, bitwise, slicing, string formatting
// (§4.3). Kept in this package (rather than a separate `ops` package) so
// comparison can back DictData's sorted-iteration invariant without an
// import cycle; the spec's component table still treats this as a
// distinct concern.
package value

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// TypeError is returned for operand/type mismatches in operators; the
// interpreter wraps it into an EldritchErrorKind TypeError diagnostic.
type TypeError struct{ Msg string }

func (e *TypeError) Error() string { return e.Msg }

func typeErr(format string, args ...any) error {
	return &TypeError{Msg: fmt.Sprintf(format, args...)}
}

// ---- Arithmetic ----

func Add(a, b Value) (Value, error) {
	switch {
	case a.kind == KindInt && b.kind == KindInt:
		return Int(a.i + b.i), nil
	case isNumeric(a) && isNumeric(b):
		af, _ := numericToFloat(a)
		bf, _ := numericToFloat(b)
		return Float(af + bf), nil
	case a.kind == KindString && b.kind == KindString:
		return String(a.s + b.s), nil
	case a.kind == KindBytes && b.kind == KindBytes:
		return Bytes(append(append([]byte{}, a.bytes...), b.bytes...)), nil
	case a.kind == KindList && b.kind == KindList:
		return NewList(append(a.list.Snapshot(), b.list.Snapshot()...)), nil
	case a.kind == KindTuple && b.kind == KindTuple:
		return NewTuple(append(append([]Value{}, a.tuple...), b.tuple...)), nil
	case a.kind == KindSet && b.kind == KindSet:
		return setUnion(a, b)
	case a.kind == KindDict && b.kind == KindDict:
		return dictMerge(a, b)
	}
	return None, typeErr("unsupported operand type(s) for +: '%s' and '%s'", a.Kind(), b.Kind())
}

func Sub(a, b Value) (Value, error) {
	if a.kind == KindInt && b.kind == KindInt {
		return Int(a.i - b.i), nil
	}
	if isNumeric(a) && isNumeric(b) {
		af, _ := numericToFloat(a)
		bf, _ := numericToFloat(b)
		return Float(af - bf), nil
	}
	if a.kind == KindSet && b.kind == KindSet {
		out := NewSetValue()
		for _, e := range a.set.Snapshot() {
			if ok, _ := b.set.Contains(e); !ok {
				out.set.Add(e)
			}
		}
		return out, nil
	}
	return None, typeErr("unsupported operand type(s) for -: '%s' and '%s'", a.Kind(), b.Kind())
}

func Mul(a, b Value) (Value, error) {
	switch {
	case a.kind == KindInt && b.kind == KindInt:
		return Int(a.i * b.i), nil
	case isNumeric(a) && isNumeric(b):
		af, _ := numericToFloat(a)
		bf, _ := numericToFloat(b)
		return Float(af * bf), nil
	case a.kind == KindString && b.kind == KindInt:
		return String(repeatString(a.s, b.i)), nil
	case a.kind == KindInt && b.kind == KindString:
		return String(repeatString(b.s, a.i)), nil
	case a.kind == KindList && b.kind == KindInt:
		return NewList(repeatSlice(a.list.Snapshot(), b.i)), nil
	case a.kind == KindInt && b.kind == KindList:
		return NewList(repeatSlice(b.list.Snapshot(), a.i)), nil
	case a.kind == KindTuple && b.kind == KindInt:
		return NewTuple(repeatSlice(a.tuple, b.i)), nil
	case a.kind == KindInt && b.kind == KindTuple:
		return NewTuple(repeatSlice(b.tuple, a.i)), nil
	}
	return None, typeErr("unsupported operand type(s) for *: '%s' and '%s'", a.Kind(), b.Kind())
}

func repeatString(s string, n int64) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat(s, int(n))
}

func repeatSlice(s []Value, n int64) []Value {
	if n <= 0 {
		return nil
	}
	out := make([]Value, 0, int64(len(s))*n)
	for i := int64(0); i < n; i++ {
		out = append(out, s...)
	}
	return out
}

func Div(a, b Value) (Value, error) {
	if !isNumeric(a) || !isNumeric(b) {
		return None, typeErr("unsupported operand type(s) for /: '%s' and '%s'", a.Kind(), b.Kind())
	}
	af, _ := numericToFloat(a)
	bf, _ := numericToFloat(b)
	if bf == 0 {
		return None, fmt.Errorf("division by zero")
	}
	return Float(af / bf), nil
}

func FloorDiv(a, b Value) (Value, error) {
	if !isNumeric(a) || !isNumeric(b) {
		return None, typeErr("unsupported operand type(s) for //: '%s' and '%s'", a.Kind(), b.Kind())
	}
	if a.kind == KindInt && b.kind == KindInt {
		if b.i == 0 {
			return None, fmt.Errorf("integer division or modulo by zero")
		}
		q := a.i / b.i
		if (a.i%b.i != 0) && ((a.i < 0) != (b.i < 0)) {
			q--
		}
		return Int(q), nil
	}
	af, _ := numericToFloat(a)
	bf, _ := numericToFloat(b)
	if bf == 0 {
		return None, fmt.Errorf("float floor division by zero")
	}
	return Float(math.Floor(af / bf)), nil
}

func Mod(a, b Value) (Value, error) {
	if !isNumeric(a) || !isNumeric(b) {
		return None, typeErr("unsupported operand type(s) for %%: '%s' and '%s'", a.Kind(), b.Kind())
	}
	if a.kind == KindInt && b.kind == KindInt {
		if b.i == 0 {
			return None, fmt.Errorf("integer division or modulo by zero")
		}
		m := a.i % b.i
		if m != 0 && ((m < 0) != (b.i < 0)) {
			m += b.i
		}
		return Int(m), nil
	}
	af, _ := numericToFloat(a)
	bf, _ := numericToFloat(b)
	if bf == 0 {
		return None, fmt.Errorf("float modulo")
	}
	m := math.Mod(af, bf)
	if m != 0 && ((m < 0) != (bf < 0)) {
		m += bf
	}
	return Float(m), nil
}

// Pow implements `**`; a negative integer exponent (or overflow) promotes
// the result to Float, per §4.3.
func Pow(a, b Value) (Value, error) {
	if !isNumeric(a) || !isNumeric(b) {
		return None, typeErr("unsupported operand type(s) for **: '%s' and '%s'", a.Kind(), b.Kind())
	}
	if a.kind == KindInt && b.kind == KindInt && b.i >= 0 {
		result, overflow := intPow(a.i, b.i)
		if !overflow {
			return Int(result), nil
		}
	}
	af, _ := numericToFloat(a)
	bf, _ := numericToFloat(b)
	return Float(math.Pow(af, bf)), nil
}

func intPow(base, exp int64) (int64, bool) {
	var result int64 = 1
	for i := int64(0); i < exp; i++ {
		next := result * base
		if base != 0 && next/base != result {
			return 0, true
		}
		result = next
	}
	return result, false
}

// ---- Bitwise ----

func BitAnd(a, b Value) (Value, error) {
	if a.kind == KindInt && b.kind == KindInt {
		return Int(a.i & b.i), nil
	}
	if a.kind == KindSet && b.kind == KindSet {
		out := NewSetValue()
		for _, e := range a.set.Snapshot() {
			if ok, _ := b.set.Contains(e); ok {
				out.set.Add(e)
			}
		}
		return out, nil
	}
	return None, typeErr("unsupported operand type(s) for &: '%s' and '%s'", a.Kind(), b.Kind())
}

func BitOr(a, b Value) (Value, error) {
	if a.kind == KindInt && b.kind == KindInt {
		return Int(a.i | b.i), nil
	}
	if a.kind == KindSet && b.kind == KindSet {
		return setUnion(a, b)
	}
	if a.kind == KindDict && b.kind == KindDict {
		return dictMerge(a, b)
	}
	return None, typeErr("unsupported operand type(s) for |: '%s' and '%s'", a.Kind(), b.Kind())
}

func BitXor(a, b Value) (Value, error) {
	if a.kind == KindInt && b.kind == KindInt {
		return Int(a.i ^ b.i), nil
	}
	if a.kind == KindSet && b.kind == KindSet {
		out := NewSetValue()
		for _, e := range a.set.Snapshot() {
			if ok, _ := b.set.Contains(e); !ok {
				out.set.Add(e)
			}
		}
		for _, e := range b.set.Snapshot() {
			if ok, _ := a.set.Contains(e); !ok {
				out.set.Add(e)
			}
		}
		return out, nil
	}
	return None, typeErr("unsupported operand type(s) for ^: '%s' and '%s'", a.Kind(), b.Kind())
}

func BitNot(a Value) (Value, error) {
	if a.kind == KindInt {
		return Int(^a.i), nil
	}
	return None, typeErr("bad operand type for unary ~: '%s'", a.Kind())
}

func Lshift(a, b Value) (Value, error) {
	if a.kind == KindInt && b.kind == KindInt {
		if b.i < 0 {
			return None, fmt.Errorf("negative shift count")
		}
		return Int(a.i << uint64(b.i)), nil
	}
	return None, typeErr("unsupported operand type(s) for <<: '%s' and '%s'", a.Kind(), b.Kind())
}

func Rshift(a, b Value) (Value, error) {
	if a.kind == KindInt && b.kind == KindInt {
		if b.i < 0 {
			return None, fmt.Errorf("negative shift count")
		}
		return Int(a.i >> uint64(b.i)), nil
	}
	return None, typeErr("unsupported operand type(s) for >>: '%s' and '%s'", a.Kind(), b.Kind())
}

func setUnion(a, b Value) (Value, error) {
	out := NewSetValue()
	for _, e := range a.set.Snapshot() {
		out.set.Add(e)
	}
	for _, e := range b.set.Snapshot() {
		out.set.Add(e)
	}
	return out, nil
}

// dictMerge implements right-biased `|`/`+` for dicts per §4.3.
func dictMerge(a, b Value) (Value, error) {
	out := NewDictValue()
	for _, k := range a.dict.SortedKeys() {
		v, _, _ := a.dict.Get(k)
		out.dict.Set(k, v)
	}
	for _, k := range b.dict.SortedKeys() {
		v, _, _ := b.dict.Get(k)
		out.dict.Set(k, v)
	}
	return out, nil
}

// ---- Comparison ----

// Less implements the strict-less-than ordering used by `sorted`, `<`,
// and dict sorted-iteration (§4.3). Ordering across incompatible types is
// an error, except that numeric kinds always cross-promote.
func Less(a, b Value) (bool, error) {
	if isNumeric(a) && isNumeric(b) {
		af, _ := numericToFloat(a)
		bf, _ := numericToFloat(b)
		return af < bf, nil
	}
	if a.kind != b.kind {
		return false, typeErr("'<' not supported between instances of '%s' and '%s'", a.Kind(), b.Kind())
	}
	switch a.kind {
	case KindString:
		return a.s < b.s, nil
	case KindBytes:
		return string(a.bytes) < string(b.bytes), nil
	case KindTuple:
		return lessSeq(a.tuple, b.tuple)
	case KindList:
		return lessSeq(a.list.Snapshot(), b.list.Snapshot())
	}
	return false, typeErr("'<' not supported between instances of '%s' and '%s'", a.Kind(), b.Kind())
}

func lessSeq(a, b []Value) (bool, error) {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if Equal(a[i], b[i]) {
			continue
		}
		return Less(a[i], b[i])
	}
	return len(a) < len(b), nil
}

func Compare(op string, a, b Value) (Value, error) {
	switch op {
	case "==":
		return Bool(Equal(a, b)), nil
	case "!=":
		return Bool(!Equal(a, b)), nil
	case "<":
		lt, err := Less(a, b)
		return Bool(lt), err
	case "<=":
		if Equal(a, b) {
			return Bool(true), nil
		}
		lt, err := Less(a, b)
		return Bool(lt), err
	case ">":
		lt, err := Less(b, a)
		return Bool(lt), err
	case ">=":
		if Equal(a, b) {
			return Bool(true), nil
		}
		lt, err := Less(b, a)
		return Bool(lt), err
	}
	return None, fmt.Errorf("unknown comparison operator %q", op)
}

// ---- Slicing ----

// normalizeIndex clamps a Python-style (possibly negative) slice index.
func normalizeIndex(i, length int) int {
	if i < 0 {
		i += length
	}
	if i < 0 {
		i = 0
	}
	if i > length {
		i = length
	}
	return i
}

// SliceIndices resolves start/stop/step (any may be nil, meaning
// "omitted") into concrete bounds, per §4.3.
func SliceIndices(start, stop, step *int64, length int) (int, int, int, error) {
	s := int64(1)
	if step != nil {
		s = *step
		if s == 0 {
			return 0, 0, 0, fmt.Errorf("slice step cannot be zero")
		}
	}
	var lo, hi int
	if s > 0 {
		lo, hi = 0, length
		if start != nil {
			lo = normalizeIndex(int(*start), length)
		}
		if stop != nil {
			hi = normalizeIndex(int(*stop), length)
		}
	} else {
		lo, hi = length-1, -1
		if start != nil {
			lo = normalizeIndexNeg(int(*start), length)
		}
		if stop != nil {
			hi = normalizeIndexNeg(int(*stop), length)
		}
	}
	return lo, hi, int(s), nil
}

func normalizeIndexNeg(i, length int) int {
	if i < 0 {
		i += length
		if i < -1 {
			i = -1
		}
		return i
	}
	if i >= length {
		return length - 1
	}
	return i
}

// SliceValues materializes seq[start:stop:step] for any of List/Tuple.
func SliceValues(elts []Value, start, stop, step *int64) []Value {
	lo, hi, s, err := SliceIndices(start, stop, step, len(elts))
	if err != nil {
		return nil
	}
	var out []Value
	if s > 0 {
		for i := lo; i < hi; i += s {
			out = append(out, elts[i])
		}
	} else {
		for i := lo; i > hi; i += s {
			out = append(out, elts[i])
		}
	}
	return out
}

// SliceString implements String/Bytes slicing, operating on runes for
// String (char-based per §4.3) and bytes for Bytes.
func SliceString(s string, start, stop, step *int64) string {
	runes := []rune(s)
	lo, hi, st, err := SliceIndices(start, stop, step, len(runes))
	if err != nil {
		return ""
	}
	var out []rune
	if st > 0 {
		for i := lo; i < hi; i += st {
			out = append(out, runes[i])
		}
	} else {
		for i := lo; i > hi; i += st {
			out = append(out, runes[i])
		}
	}
	return string(out)
}

func SliceBytes(b []byte, start, stop, step *int64) []byte {
	lo, hi, st, err := SliceIndices(start, stop, step, len(b))
	if err != nil {
		return nil
	}
	var out []byte
	if st > 0 {
		for i := lo; i < hi; i += st {
			out = append(out, b[i])
		}
	} else {
		for i := lo; i > hi; i += st {
			out = append(out, b[i])
		}
	}
	return out
}

// ---- String formatting (§4.3) ----

// PercentFormat implements `"%d"/"%s"/"%r" % val` with a single value or a
// Tuple of values.
func PercentFormat(format string, arg Value) (string, error) {
	var args []Value
	if arg.kind == KindTuple {
		args = arg.tuple
	} else {
		args = []Value{arg}
	}
	var b strings.Builder
	ai := 0
	r := []rune(format)
	for i := 0; i < len(r); i++ {
		if r[i] != '%' {
			b.WriteRune(r[i])
			continue
		}
		if i+1 >= len(r) {
			return "", fmt.Errorf("incomplete format")
		}
		i++
		if r[i] == '%' {
			b.WriteByte('%')
			continue
		}
		if ai >= len(args) {
			return "", fmt.Errorf("not enough arguments for format string")
		}
		v := args[ai]
		ai++
		switch r[i] {
		case 'd':
			switch v.kind {
			case KindInt:
				b.WriteString(strconv.FormatInt(v.i, 10))
			case KindFloat:
				b.WriteString(strconv.FormatInt(int64(v.f), 10))
			default:
				return "", typeErr("%%d format: a number is required, not %s", v.Kind())
			}
		case 's':
			b.WriteString(Display(v))
		case 'r':
			b.WriteString(Repr(v))
		default:
			return "", fmt.Errorf("unsupported format character %q", r[i])
		}
	}
	if ai != len(args) {
		return "", fmt.Errorf("not all arguments converted during string formatting")
	}
	return b.String(), nil
}

// FormatMethod implements `"...{}...".format(args...)` with positional
// placeholders `{}`/`{0}`.
func FormatMethod(format string, args []Value) (string, error) {
	var b strings.Builder
	auto := 0
	r := []rune(format)
	for i := 0; i < len(r); i++ {
		switch r[i] {
		case '{':
			if i+1 < len(r) && r[i+1] == '{' {
				b.WriteByte('{')
				i++
				continue
			}
			j := i + 1
			for j < len(r) && r[j] != '}' {
				j++
			}
			if j >= len(r) {
				return "", fmt.Errorf("Single '{' encountered in format string")
			}
			spec := string(r[i+1 : j])
			idx := auto
			if spec != "" {
				n, err := strconv.Atoi(spec)
				if err != nil {
					return "", fmt.Errorf("invalid format spec %q", spec)
				}
				idx = n
			} else {
				auto++
			}
			if idx < 0 || idx >= len(args) {
				return "", fmt.Errorf("Replacement index %d out of range for positional args tuple", idx)
			}
			b.WriteString(Display(args[idx]))
			i = j
		case '}':
			if i+1 < len(r) && r[i+1] == '}' {
				b.WriteByte('}')
				i++
				continue
			}
			return "", fmt.Errorf("Single '}' encountered in format string")
		default:
			b.WriteRune(r[i])
		}
	}
	return b.String(), nil
}
