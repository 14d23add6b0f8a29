package utils //nolint:revive // var-naming: utils is an acceptable package name for shared utilities

// ToPtr returns a pointer to v. Useful for SDK fields that take *string,
// *bool and friends.
func ToPtr[T any](v T) *T {
	return &v
}

// FromPtr dereferences p, returning the zero value when p is nil.
func FromPtr[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}
