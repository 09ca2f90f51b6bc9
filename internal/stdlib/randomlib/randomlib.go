// Package randomlib implements the random standard library (§4.7):
// crypto/rand-seeded math/rand/v2 usage plus google/uuid.
package randomlib

import (
	"crypto/rand"
	"encoding/binary"
	"math/rand/v2"

	"github.com/google/uuid"

	"github.com/spellshift/eldritch/internal/diag"
	"github.com/spellshift/eldritch/internal/library"
	"github.com/spellshift/eldritch/internal/value"
)

const defaultCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Source abstracts the PRNG so the fake binding can be seeded
// deterministically instead of from crypto/rand.
type Source struct{ rng *rand.Rand }

// NewSource seeds a ChaCha8-backed generator from crypto/rand, the way a
// security-sensitive script-facing random() ought to be seeded.
func NewSource() *Source {
	var seed [32]byte
	_, _ = rand.Read(seed[:])
	return &Source{rng: rand.New(rand.NewChaCha8(seed))}
}

// NewDeterministicSource seeds from a fixed, caller-supplied value — used
// by the fake binding for reproducible test output.
func NewDeterministicSource(seed uint64) *Source {
	var b [32]byte
	binary.LittleEndian.PutUint64(b[:8], seed)
	return &Source{rng: rand.New(rand.NewChaCha8(b))}
}

func New() value.Dispatcher { return newWithSource(NewSource()) }

func newWithSource(src *Source) value.Dispatcher {
	return &library.Table{Name: "random", Methods: map[string]library.Method{
		"bool":   src.boolMethod,
		"int":    src.intMethod,
		"string": src.stringMethod,
		"bytes":  src.bytesMethod,
		"uuid":   src.uuidMethod,
	}}
}

func (s *Source) boolMethod(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	if err := library.Arity("bool", args, 0); err != nil {
		return value.None, err
	}
	return value.Bool(s.rng.IntN(2) == 1), nil
}

func (s *Source) intMethod(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	if err := library.Arity("int", args, 2); err != nil {
		return value.None, err
	}
	min, err := library.Int("int", args[0])
	if err != nil {
		return value.None, err
	}
	max, err := library.Int("int", args[1])
	if err != nil {
		return value.None, err
	}
	if min >= max {
		return value.None, library.MethodError(diag.ValueError, "random.int() min must be less than max")
	}
	return value.Int(min + s.rng.Int64N(max-min)), nil
}

func (s *Source) stringMethod(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	if err := library.ArityRange("string", args, 1, 1); err != nil {
		return value.None, err
	}
	n, err := library.Int("string", args[0])
	if err != nil {
		return value.None, err
	}
	charset, err := library.OptString("string", library.Kwarg(kwargs, "charset"), defaultCharset)
	if err != nil {
		return value.None, err
	}
	if len(charset) == 0 {
		return value.None, library.MethodError(diag.ValueError, "random.string() charset must not be empty")
	}
	out := make([]byte, n)
	for i := range out {
		out[i] = charset[s.rng.IntN(len(charset))]
	}
	return value.String(string(out)), nil
}

func (s *Source) bytesMethod(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	if err := library.Arity("bytes", args, 1); err != nil {
		return value.None, err
	}
	n, err := library.Int("bytes", args[0])
	if err != nil {
		return value.None, err
	}
	out := make([]byte, n)
	for i := range out {
		out[i] = byte(s.rng.IntN(256))
	}
	return value.Bytes(out), nil
}

func (s *Source) uuidMethod(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	if err := library.Arity("uuid", args, 0); err != nil {
		return value.None, err
	}
	return value.String(uuid.New().String()), nil
}
