package throttle

import "slices"

// Key identifies the caller or resource being throttled. Values are rendered
// with fmt.Sprint and joined in order, so two keys address the same counters
// iff their value sequences are equal.
type Key interface {
	Values() []any
}

// SimpleKey is an ordered list of identifying values, for example a route
// name followed by a user id.
type SimpleKey []any

// NewKey builds a SimpleKey from values.
func NewKey(values ...any) SimpleKey {
	return SimpleKey(values)
}

// Values returns a copy of the key's values.
func (k SimpleKey) Values() []any {
	return slices.Clone([]any(k))
}
