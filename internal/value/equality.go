package value

// visitSet tracks container identities already entered during a single
// equality or display walk, realizing the cycle-safe visitor from §3/§9.
type visitSet struct {
	seen map[any]bool
}

func newVisitSet() *visitSet { return &visitSet{seen: make(map[any]bool)} }

func (vs *visitSet) enter(id any) bool {
	if vs.seen[id] {
		return false
	}
	vs.seen[id] = true
	return true
}

func (vs *visitSet) leave(id any) { delete(vs.seen, id) }

// Equal implements Value equality per §4.3 "Comparison": numeric
// cross-promotion, no cross-type equality otherwise, cycle-safe for
// containers (re-entry on an already-visited identity returns true,
// the "optimistic assumption, validated by other elements" from §3).
func Equal(a, b Value) bool {
	return equal(a, b, newVisitSet())
}

func equal(a, b Value, vs *visitSet) bool {
	if isNumeric(a) && isNumeric(b) {
		af, aIsF := numericToFloat(a)
		bf, bIsF := numericToFloat(b)
		_ = aIsF
		_ = bIsF
		if a.kind == KindFloat && a.f != a.f { // NaN
			return false
		}
		if b.kind == KindFloat && b.f != b.f {
			return false
		}
		return af == bf
	}
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNone:
		return true
	case KindBool:
		return a.b == b.b
	case KindString:
		return a.s == b.s
	case KindBytes:
		return string(a.bytes) == string(b.bytes)
	case KindTuple:
		if len(a.tuple) != len(b.tuple) {
			return false
		}
		for i := range a.tuple {
			if !equal(a.tuple[i], b.tuple[i], vs) {
				return false
			}
		}
		return true
	case KindList:
		if a.list == b.list {
			return true
		}
		if !vs.enter(a.list) {
			return true
		}
		defer vs.leave(a.list)
		sa, sb := a.list.Snapshot(), b.list.Snapshot()
		if len(sa) != len(sb) {
			return false
		}
		for i := range sa {
			if !equal(sa[i], sb[i], vs) {
				return false
			}
		}
		return true
	case KindDict:
		if a.dict == b.dict {
			return true
		}
		if !vs.enter(a.dict) {
			return true
		}
		defer vs.leave(a.dict)
		ka, kb := a.dict.SortedKeys(), b.dict.SortedKeys()
		if len(ka) != len(kb) {
			return false
		}
		for i := range ka {
			if !equal(ka[i], kb[i], vs) {
				return false
			}
			va, _, _ := a.dict.Get(ka[i])
			vb, _, _ := b.dict.Get(kb[i])
			if !equal(va, vb, vs) {
				return false
			}
		}
		return true
	case KindSet:
		if a.set == b.set {
			return true
		}
		if !vs.enter(a.set) {
			return true
		}
		defer vs.leave(a.set)
		sa, sb := a.set.Snapshot(), b.set.Snapshot()
		if len(sa) != len(sb) {
			return false
		}
		for _, ev := range sa {
			found, _ := b.set.Contains(ev)
			if !found {
				return false
			}
		}
		return true
	case KindFunction:
		return a.fn == b.fn
	case KindNativeFunction:
		return a.nfn == b.nfn
	case KindBoundMethod:
		return a.bound == b.bound
	case KindForeign:
		return a.fgn == b.fgn
	}
	return false
}

func isNumeric(v Value) bool {
	return v.kind == KindInt || v.kind == KindFloat || v.kind == KindBool
}

func numericToFloat(v Value) (float64, bool) {
	switch v.kind {
	case KindInt:
		return float64(v.i), false
	case KindFloat:
		return v.f, true
	case KindBool:
		if v.b {
			return 1, false
		}
		return 0, false
	}
	return 0, false
}
