// Package identity derives stable, comparable keys from section and item values.
//
// A [Key] wraps any comparable value. Keys produced from the same value with the
// same deterministic extractor are always equal, so they can be used to match
// rows across snapshots independently of their position.
//
// Extractors cover the common ways a value carries its identity:
//
//	identity.Self[string]()                      // the value is its own key
//	identity.ByPath(func(c Contact) int { return c.ID })
//	identity.ByID[Message]()                     // Message implements ID() any
package identity

import (
	"fmt"
	"reflect"

	"github.com/go-drift/sectionlist/pkg/errors"
)

// Key is an opaque, comparable identity. The zero Key is valid and distinct from
// every key holding a value.
type Key struct {
	value any
	// ordinal is non-zero only for synthetic keys minted for duplicates.
	ordinal int
}

// Of wraps a comparable value in a Key without going through an extractor.
func Of[K comparable](v K) Key {
	return Key{value: v}
}

// Synthetic returns a key derived from base that can never equal a key
// produced by an extractor. ordinal must be positive.
func Synthetic(base Key, ordinal int) Key {
	if ordinal <= 0 {
		ordinal = 1
	}
	return Key{value: base.value, ordinal: ordinal}
}

// Value returns the wrapped value.
func (k Key) Value() any {
	return k.value
}

// IsSynthetic reports whether k was minted by Synthetic.
func (k Key) IsSynthetic() bool {
	return k.ordinal != 0
}

// Base returns the extractor-produced key a synthetic key was derived from.
func (k Key) Base() Key {
	return Key{value: k.value}
}

func (k Key) String() string {
	if k.ordinal != 0 {
		return fmt.Sprintf("%v#%d", k.value, k.ordinal)
	}
	return fmt.Sprint(k.value)
}

// Extractor projects a value onto its identity.
type Extractor[T any] func(T) (any, error)

// Identifiable is implemented by values that expose their own identity.
type Identifiable interface {
	ID() any
}

// Identify derives the key of value. It fails if extract is nil, if extract
// fails, or if the extracted value is not comparable or not equal to itself.
func Identify[T any](value T, extract Extractor[T]) (Key, error) {
	if extract == nil {
		return Key{}, errors.New("identity.Identify", errors.KindIdentity, errors.ErrNoExtractor)
	}
	raw, err := extract(value)
	if err != nil {
		return Key{}, errors.New("identity.Identify", errors.KindIdentity, err)
	}
	if raw != nil && !reflect.ValueOf(raw).Comparable() {
		return Key{}, errors.New("identity.Identify", errors.KindIdentity,
			fmt.Errorf("%w: %T", errors.ErrUnhashableKey, raw))
	}
	// NaN, or anything holding one, never matches itself.
	if raw != raw {
		return Key{}, errors.New("identity.Identify", errors.KindIdentity,
			fmt.Errorf("%w: %v", errors.ErrUnstableKey, raw))
	}
	if k, ok := raw.(Key); ok {
		return k, nil
	}
	return Key{value: raw}, nil
}

// Self uses the value itself as its key.
func Self[T comparable]() Extractor[T] {
	return func(v T) (any, error) { return v, nil }
}

// ByPath uses a projected field of the value as its key.
func ByPath[T any, K comparable](path func(T) K) Extractor[T] {
	if path == nil {
		return nil
	}
	return func(v T) (any, error) { return path(v), nil }
}

// ByID uses the value's ID method.
func ByID[T Identifiable]() Extractor[T] {
	return func(v T) (any, error) { return v.ID(), nil }
}

// Func adapts a fallible function into an Extractor.
func Func[T any](fn func(T) (any, error)) Extractor[T] {
	if fn == nil {
		return nil
	}
	return Extractor[T](fn)
}
