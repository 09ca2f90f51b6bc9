// Package value implements the Eldritch runtime Value sum type (§3), the
// chained Environment scope, and cycle-safe equality/display for the
// shared mutable containers (List, Dictionary, Set).
package value

import (
	"fmt"
	"sort"
	"sync"

	"github.com/spellshift/eldritch/internal/ast"
)

// Kind tags a Value's dynamic type. The interpreter never branches on a Go
// type-switch for dispatch outside this package; everywhere else it asks a
// Value for its Kind (§9, "Tagged value sum").
type Kind int

const (
	KindNone Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindBytes
	KindList
	KindTuple
	KindDict
	KindSet
	KindFunction
	KindNativeFunction
	KindBoundMethod
	KindForeign
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "NoneType"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindBytes:
		return "bytes"
	case KindList:
		return "list"
	case KindTuple:
		return "tuple"
	case KindDict:
		return "dict"
	case KindSet:
		return "set"
	case KindFunction, KindNativeFunction, KindBoundMethod:
		return "function"
	case KindForeign:
		return "foreign"
	}
	return "unknown"
}

// Value is the tagged sum described in §3. It is intentionally a single
// struct rather than an interface: every variant is cheap to copy (the
// mutable containers hold a pointer to their shared backing store), and a
// closed struct keeps Kind-based dispatch exhaustive and allocation-free
// for scalars.
type Value struct {
	kind  Kind
	b     bool
	i     int64
	f     float64
	s     string
	bytes []byte
	list  *ListData
	tuple []Value
	dict  *DictData
	set   *SetData
	fn    *Function
	nfn   *NativeFunction
	bound *BoundMethod
	fgn   *Foreign
}

func (v Value) Kind() Kind { return v.kind }

var None = Value{kind: KindNone}

func Bool(b bool) Value    { return Value{kind: KindBool, b: b} }
func Int(i int64) Value    { return Value{kind: KindInt, i: i} }
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }
func String(s string) Value { return Value{kind: KindString, s: s} }
func Bytes(b []byte) Value  { return Value{kind: KindBytes, bytes: b} }

func (v Value) AsBool() bool     { return v.b }
func (v Value) AsInt() int64     { return v.i }
func (v Value) AsFloat() float64 { return v.f }
func (v Value) AsString() string { return v.s }
func (v Value) AsBytes() []byte  { return v.bytes }

// ---- List ----

// ListData is the shared, mutable backing store for List values (§3:
// "shared ownership with interior mutability"). A read/write mutex
// realizes the read/write-lock discipline from §5 so the printer,
// equality, and iteration snapshot paths can run concurrently while a
// single writer excludes all of them.
type ListData struct {
	mu   sync.RWMutex
	elts []Value
}

func NewList(elts []Value) Value {
	return Value{kind: KindList, list: &ListData{elts: elts}}
}

func (l *ListData) Snapshot() []Value {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Value, len(l.elts))
	copy(out, l.elts)
	return out
}

func (l *ListData) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.elts)
}

func (l *ListData) Get(i int) (Value, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if i < 0 || i >= len(l.elts) {
		return None, false
	}
	return l.elts[i], true
}

func (l *ListData) Set(i int, v Value) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if i < 0 || i >= len(l.elts) {
		return false
	}
	l.elts[i] = v
	return true
}

func (l *ListData) Append(v ...Value) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.elts = append(l.elts, v...)
}

// ReplaceAll overwrites the list's contents in place, preserving identity
// for methods like sort/reverse/pop/insert that rebuild the backing slice.
func (l *ListData) ReplaceAll(elts []Value) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.elts = elts
}

func (v Value) List() *ListData { return v.list }

// ---- Tuple ----

func NewTuple(elts []Value) Value { return Value{kind: KindTuple, tuple: elts} }
func (v Value) Tuple() []Value    { return v.tuple }

// ---- Dict ----

// DictData is the shared ordered map described in §3: iteration and
// hash-equality both walk keys sorted per Less.
type DictData struct {
	mu   sync.RWMutex
	keys []Value
	vals map[string]Value // keyed by a canonical string encoding, see dictKey
}

func NewDict() *DictData {
	return &DictData{vals: make(map[string]Value)}
}

func NewDictValue() Value { return Value{kind: KindDict, dict: NewDict()} }

func (v Value) Dict() *DictData { return v.dict }

// numericKey canonicalizes Int/Float/Bool to the same key representation
// Equal's numeric cross-promotion uses (equality.go's numericToFloat), so
// that e.g. 1, 1.0, and True collide in a dict/set exactly when Equal
// says they're equal.
func numericKey(k Value) string {
	f, _ := numericToFloat(k)
	return fmt.Sprintf("num:%v", f)
}

func dictKey(k Value) (string, error) {
	switch k.kind {
	case KindInt, KindFloat, KindBool:
		return numericKey(k), nil
	case KindString:
		return "s:" + k.s, nil
	case KindBytes:
		return "y:" + string(k.bytes), nil
	case KindNone:
		return "n", nil
	case KindTuple:
		s := "t:("
		for _, e := range k.tuple {
			ek, err := dictKey(e)
			if err != nil {
				return "", err
			}
			s += ek + ","
		}
		return s + ")", nil
	default:
		return "", fmt.Errorf("unhashable type: '%s'", k.Kind())
	}
}

func (d *DictData) Set(k, v Value) error {
	key, err := dictKey(k)
	if err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, exists := d.vals[key]; !exists {
		d.keys = append(d.keys, k)
	} else {
		for i, ek := range d.keys {
			if ck, _ := dictKey(ek); ck == key {
				d.keys[i] = k
				break
			}
		}
	}
	d.vals[key] = v
	return nil
}

func (d *DictData) Get(k Value) (Value, bool, error) {
	key, err := dictKey(k)
	if err != nil {
		return None, false, err
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	v, ok := d.vals[key]
	return v, ok, nil
}

func (d *DictData) Delete(k Value) (bool, error) {
	key, err := dictKey(k)
	if err != nil {
		return false, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.vals[key]; !ok {
		return false, nil
	}
	delete(d.vals, key)
	for i, ek := range d.keys {
		if ck, _ := dictKey(ek); ck == key {
			d.keys = append(d.keys[:i], d.keys[i+1:]...)
			break
		}
	}
	return true, nil
}

func (d *DictData) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.keys)
}

// SortedKeys returns a snapshot of keys in ascending order per §3's
// sorted-iteration invariant.
func (d *DictData) SortedKeys() []Value {
	d.mu.RLock()
	keys := make([]Value, len(d.keys))
	copy(keys, d.keys)
	d.mu.RUnlock()
	sort.SliceStable(keys, func(i, j int) bool {
		less, _ := Less(keys[i], keys[j])
		return less
	})
	return keys
}

// ---- Set ----

type SetData struct {
	mu   sync.RWMutex
	keys []Value
	has  map[string]bool
}

func NewSet() *SetData { return &SetData{has: make(map[string]bool)} }
func NewSetValue() Value { return Value{kind: KindSet, set: NewSet()} }
func (v Value) Set() *SetData { return v.set }

func (s *SetData) Add(v Value) error {
	key, err := dictKey(v)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.has[key] {
		s.has[key] = true
		s.keys = append(s.keys, v)
	}
	return nil
}

func (s *SetData) Contains(v Value) (bool, error) {
	key, err := dictKey(v)
	if err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.has[key], nil
}

func (s *SetData) Remove(v Value) (bool, error) {
	key, err := dictKey(v)
	if err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.has[key] {
		return false, nil
	}
	delete(s.has, key)
	for i, e := range s.keys {
		if ek, _ := dictKey(e); ek == key {
			s.keys = append(s.keys[:i], s.keys[i+1:]...)
			break
		}
	}
	return true, nil
}

func (s *SetData) Snapshot() []Value {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Value, len(s.keys))
	copy(out, s.keys)
	return out
}

func (s *SetData) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.keys)
}

// ---- Function / NativeFunction / BoundMethod / Foreign ----

// Function is a closure: its body AST plus the environment it captured at
// definition time.
type Function struct {
	Name   string
	Params ast.Params
	Body   []ast.Stmt
	Env    *Env
}

func NewFunction(f *Function) Value { return Value{kind: KindFunction, fn: f} }
func (v Value) Function() *Function { return v.fn }

// NativeFunction wraps a Go adapter for a built-in (§4.5).
type NativeFunction struct {
	Name string
	Call func(args []Value, kwargs map[string]Value) (Value, error)
}

func NewNativeFunction(n *NativeFunction) Value { return Value{kind: KindNativeFunction, nfn: n} }
func (v Value) NativeFunction() *NativeFunction  { return v.nfn }

// BoundMethod captures a library Foreign receiver plus a method name
// (§4.6).
type BoundMethod struct {
	Receiver *Foreign
	Method   string
}

func NewBoundMethod(b *BoundMethod) Value { return Value{kind: KindBoundMethod, bound: b} }
func (v Value) BoundMethod() *BoundMethod { return v.bound }

// Dispatcher is the minimal interface a host-provided library instance
// must satisfy (§9: "an interface with two methods ... is sufficient").
type Dispatcher interface {
	TypeName() string
	Dispatch(method string, args []Value, kwargs map[string]Value) (Value, error)
	Members() map[string]Value // published constants, e.g. event names
}

// Foreign is an opaque handle to a host-provided library instance.
type Foreign struct {
	Name string
	Impl Dispatcher
}

func NewForeign(f *Foreign) Value { return Value{kind: KindForeign, fgn: f} }
func (v Value) Foreign() *Foreign { return v.fgn }

// IsTruthy implements Python-style truthiness.
func IsTruthy(v Value) bool {
	switch v.kind {
	case KindNone:
		return false
	case KindBool:
		return v.b
	case KindInt:
		return v.i != 0
	case KindFloat:
		return v.f != 0
	case KindString:
		return v.s != ""
	case KindBytes:
		return len(v.bytes) > 0
	case KindList:
		return v.list.Len() > 0
	case KindTuple:
		return len(v.tuple) > 0
	case KindDict:
		return v.dict.Len() > 0
	case KindSet:
		return v.set.Len() > 0
	default:
		return true
	}
}
