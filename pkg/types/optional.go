package types

import "encoding/json"

// Optional distinguishes the three states a JSON object field can be in:
// absent, explicit null, and a concrete value. Absent means "leave the
// stored value unchanged", null means "clear it". Plain pointers cannot
// represent the difference, so update requests use this type instead.
type Optional[T any] struct {
	set   bool
	valid bool
	value T
}

// Of returns a present, non-null Optional holding v.
func Of[T any](v T) Optional[T] {
	return Optional[T]{set: true, valid: true, value: v}
}

// Null returns a present Optional holding an explicit null.
func Null[T any]() Optional[T] {
	return Optional[T]{set: true}
}

// IsSet reports whether the field appeared in the request at all.
func (o Optional[T]) IsSet() bool {
	return o.set
}

// IsNull reports whether the field was an explicit JSON null.
func (o Optional[T]) IsNull() bool {
	return o.set && !o.valid
}

// Get returns the value and whether a non-null value is present.
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.set && o.valid
}

// Value returns the held value, zero if absent or null.
func (o Optional[T]) Value() T {
	return o.value
}

// UnmarshalJSON is only invoked for fields present in the payload, so an
// absent field keeps the zero Optional (IsSet() == false).
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.set = true
	if string(data) == "null" {
		o.valid = false
		return nil
	}
	if err := json.Unmarshal(data, &o.value); err != nil {
		return err
	}
	o.valid = true
	return nil
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.set || !o.valid {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}
