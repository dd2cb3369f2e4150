package config

import "encoding/json"

// Optional holds a value that may be absent. Absent is distinct from a present
// zero value: an Optional holding an empty map is present.
type Optional[T any] struct {
	value   T
	present bool
}

// Some returns a present Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, present: true}
}

// None returns an absent Optional.
func None[T any]() Optional[T] {
	return Optional[T]{}
}

// Get returns the held value and whether it is present.
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.present
}

// IsPresent reports whether a value is held.
func (o Optional[T]) IsPresent() bool {
	return o.present
}

// OrElse returns the held value, or fallback when absent.
func (o Optional[T]) OrElse(fallback T) T {
	if o.present {
		return o.value
	}
	return fallback
}

// MarshalYAML encodes an absent Optional as null.
func (o Optional[T]) MarshalYAML() (any, error) {
	if !o.present {
		return nil, nil
	}
	return o.value, nil
}

// MarshalJSON encodes an absent Optional as null.
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.present {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}
