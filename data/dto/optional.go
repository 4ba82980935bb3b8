package dto

import (
	"bytes"
	"encoding/json"
)

// Optional wraps a partial-update field so the merge can tell apart a
// field that was omitted, a field explicitly set to null, and a field
// carrying a value. A bare pointer collapses the first two cases.
type Optional[T any] struct {
	Value T
	Valid bool // false when the field was null
	Set   bool // false when the field was absent from the body
}

// Some returns an Optional carrying a value.
func Some[T any](value T) Optional[T] {
	return Optional[T]{Value: value, Valid: true, Set: true}
}

// Null returns an Optional that clears the field.
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true}
}

// UnmarshalJSON is called by encoding/json for both values and explicit
// nulls; absent fields never reach it, so Set stays false for them.
func (o *Optional[T]) UnmarshalJSON(b []byte) error {
	o.Set = true
	if bytes.Equal(b, []byte("null")) {
		var zero T
		o.Value = zero
		o.Valid = false
		return nil
	}
	if err := json.Unmarshal(b, &o.Value); err != nil {
		return err
	}
	o.Valid = true
	return nil
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Set || !o.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}
