package value

import (
	"fmt"
	"strconv"
	"strings"
)

// Display renders a Value the way `str()`/`print` would (§4.5). Container
// re-entry during the walk substitutes "[...]"/"{...}" per §3.
func Display(v Value) string {
	var b strings.Builder
	writeDisplay(&b, v, newVisitSet(), false)
	return b.String()
}

// Repr renders a Value the way `repr()`/`%r` would: strings are quoted.
func Repr(v Value) string {
	var b strings.Builder
	writeDisplay(&b, v, newVisitSet(), true)
	return b.String()
}

func FormatFloat(f float64) string {
	if f == float64(int64(f)) && !isInfOrNaN(f) {
		return strconv.FormatFloat(f, 'f', 1, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func isInfOrNaN(f float64) bool {
	return f != f || f > 1.7e308 || f < -1.7e308
}

func writeDisplay(b *strings.Builder, v Value, vs *visitSet, repr bool) {
	switch v.kind {
	case KindNone:
		b.WriteString("None")
	case KindBool:
		if v.b {
			b.WriteString("True")
		} else {
			b.WriteString("False")
		}
	case KindInt:
		b.WriteString(strconv.FormatInt(v.i, 10))
	case KindFloat:
		b.WriteString(FormatFloat(v.f))
	case KindString:
		if repr {
			b.WriteString(strconv.Quote(v.s))
		} else {
			b.WriteString(v.s)
		}
	case KindBytes:
		b.WriteString("b")
		b.WriteString(strconv.Quote(string(v.bytes)))
	case KindTuple:
		b.WriteByte('(')
		for i, e := range v.tuple {
			if i > 0 {
				b.WriteString(", ")
			}
			writeDisplay(b, e, vs, true)
		}
		if len(v.tuple) == 1 {
			b.WriteByte(',')
		}
		b.WriteByte(')')
	case KindList:
		if !vs.enter(v.list) {
			b.WriteString("[...]")
			return
		}
		defer vs.leave(v.list)
		b.WriteByte('[')
		for i, e := range v.list.Snapshot() {
			if i > 0 {
				b.WriteString(", ")
			}
			writeDisplay(b, e, vs, true)
		}
		b.WriteByte(']')
	case KindDict:
		if !vs.enter(v.dict) {
			b.WriteString("{...}")
			return
		}
		defer vs.leave(v.dict)
		b.WriteByte('{')
		for i, k := range v.dict.SortedKeys() {
			if i > 0 {
				b.WriteString(", ")
			}
			writeDisplay(b, k, vs, true)
			b.WriteString(": ")
			val, _, _ := v.dict.Get(k)
			writeDisplay(b, val, vs, true)
		}
		b.WriteByte('}')
	case KindSet:
		if !vs.enter(v.set) {
			b.WriteString("{...}")
			return
		}
		defer vs.leave(v.set)
		elts := v.set.Snapshot()
		if len(elts) == 0 {
			b.WriteString("set()")
			return
		}
		b.WriteByte('{')
		for i, e := range elts {
			if i > 0 {
				b.WriteString(", ")
			}
			writeDisplay(b, e, vs, true)
		}
		b.WriteByte('}')
	case KindFunction:
		fmt.Fprintf(b, "<function %s>", v.fn.Name)
	case KindNativeFunction:
		fmt.Fprintf(b, "<built-in function %s>", v.nfn.Name)
	case KindBoundMethod:
		fmt.Fprintf(b, "<bound method %s.%s>", v.bound.Receiver.Name, v.bound.Method)
	case KindForeign:
		fmt.Fprintf(b, "<%s>", v.fgn.Name)
	}
}
