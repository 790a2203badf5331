// Package ptr has helpers for optional payload fields.
package ptr

// To returns a pointer to v.
func To[T any](v T) *T {
	return &v
}

// Deref returns the value p points to, or the zero value for nil.
func Deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

// NonZero returns a pointer to v, or nil when v is the zero value.
func NonZero[T comparable](v T) *T {
	var zero T
	if v == zero {
		return nil
	}
	return &v
}
