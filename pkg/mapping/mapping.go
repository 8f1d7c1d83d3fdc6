// Package mapping holds small helpers for moving between optional and
// concrete values at the persistence boundary.
package mapping

// Pointer returns a pointer to v.
func Pointer[T any](v T) *T {
	return &v
}

// Value dereferences v, falling back to the zero value when absent.
func Value[T any](v *T) T {
	if v == nil {
		var zero T
		return zero
	}
	return *v
}

// Or dereferences v, falling back to def when absent.
func Or[T any](v *T, def T) T {
	if v == nil {
		return def
	}
	return *v
}
