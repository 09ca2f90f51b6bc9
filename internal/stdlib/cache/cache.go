// Package cache implements the cache standard library (§4.7): a
// process-wide string->Value store shared by every script the interpreter
// runs, guarded the same way the teacher guards its own global registries
// (a single mutex around a plain map; see DESIGN.md for why sync.Map was
// passed over in favor of an explicit mutex here).
package cache

import (
	"sort"
	"sync"

	"github.com/spellshift/eldritch/internal/library"
	"github.com/spellshift/eldritch/internal/value"
)

// Store is the shared backing map; a single Store may be wired into
// multiple interpreter instances so scripts running concurrently in the
// same process observe each other's writes (spec §4 "process-wide...
// writers do not starve readers; operations are atomic at the single-key
// grain").
type Store struct {
	mu   sync.RWMutex
	data map[string]value.Value
}

func NewStore() *Store {
	return &Store{data: make(map[string]value.Value)}
}

func (s *Store) get(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	if err := library.ArityRange("get", args, 1, 2); err != nil {
		return value.None, err
	}
	key, err := library.Str("get", args[0])
	if err != nil {
		return value.None, err
	}
	def := value.None
	if len(args) == 2 {
		def = args[1]
	}
	s.mu.RLock()
	v, ok := s.data[key]
	s.mu.RUnlock()
	if !ok {
		return def, nil
	}
	return v, nil
}

func (s *Store) set(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	if err := library.Arity("set", args, 2); err != nil {
		return value.None, err
	}
	key, err := library.Str("set", args[0])
	if err != nil {
		return value.None, err
	}
	s.mu.Lock()
	s.data[key] = args[1]
	s.mu.Unlock()
	return value.None, nil
}

func (s *Store) delete(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	if err := library.Arity("delete", args, 1); err != nil {
		return value.None, err
	}
	key, err := library.Str("delete", args[0])
	if err != nil {
		return value.None, err
	}
	s.mu.Lock()
	_, existed := s.data[key]
	delete(s.data, key)
	s.mu.Unlock()
	return value.Bool(existed), nil
}

func (s *Store) keys(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	if err := library.Arity("keys", args, 0); err != nil {
		return value.None, err
	}
	s.mu.RLock()
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	s.mu.RUnlock()
	sort.Strings(keys)
	return library.ToStringList(keys), nil
}

// New returns the real cache library backed by store. Callers that want
// every interpreter instance to share one cache pass the same *Store to
// each New call; callers that want per-interpreter isolation pass a fresh
// NewStore() each time.
func New(store *Store) value.Dispatcher {
	return &library.Table{Name: "cache", Methods: map[string]library.Method{
		"get":    store.get,
		"set":    store.set,
		"delete": store.delete,
		"keys":   store.keys,
	}}
}
