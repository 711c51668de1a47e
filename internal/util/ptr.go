// Package util holds small generic helpers
package util

// Ptr returns a pointer to v, for optional settings given as literals
func Ptr[T any](v T) *T {
	return &v
}
