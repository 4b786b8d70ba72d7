package atomic

import (
	"go.uber.org/atomic"
)

// stored wraps the value so that zero values of E can be stored: the
// underlying atomic.Value cannot tell a stored zero value from no value.
type stored[E any] struct {
	val E
	set bool
}

// Value is a typed atomic value. The zero Value is not usable, create one
// with NewValue.
type Value[E any] struct {
	val *atomic.Value
}

func NewValue[E any]() Value[E] {
	return Value[E]{
		val: &atomic.Value{},
	}
}

// Set atomically stores the given value.
func (c Value[E]) Set(e E) {
	c.val.Store(stored[E]{val: e, set: true})
}

// Get returns the stored value and whether any value was stored.
func (c Value[E]) Get() (E, bool) {
	loaded := c.val.Load()
	if loaded == nil {
		var zero E
		return zero, false
	}
	return loaded.(stored[E]).val, true
}
