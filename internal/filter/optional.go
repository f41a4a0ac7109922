package filter

import (
	"bytes"
	"encoding/json"
)

// Opt is a tagged optional value. The zero Opt is absent, so a zero T
// wrapped with Some is still a present value.
type Opt[T any] struct {
	value T
	set   bool
}

func Some[T any](v T) Opt[T] {
	return Opt[T]{value: v, set: true}
}

func None[T any]() Opt[T] {
	return Opt[T]{}
}

// FromPtr treats a nil pointer as absent.
func FromPtr[T any](p *T) Opt[T] {
	if p == nil {
		return Opt[T]{}
	}
	return Some(*p)
}

func (o Opt[T]) Get() (T, bool) {
	return o.value, o.set
}

func (o Opt[T]) IsSet() bool {
	return o.set
}

func (o Opt[T]) OrElse(def T) T {
	if o.set {
		return o.value
	}
	return def
}

func (o Opt[T]) MarshalJSON() ([]byte, error) {
	if !o.set {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}

// UnmarshalJSON maps an explicit null to absent. A missing key never calls
// UnmarshalJSON and leaves the zero Opt, which is also absent.
func (o *Opt[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*o = Opt[T]{}
		return nil
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*o = Some(v)
	return nil
}
