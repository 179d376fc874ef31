// ABOUTME: Outcome is the two-branch result of a call that degrades instead of failing.
// ABOUTME: Either the real value, or a static fallback plus the logged reason.
package llm

// Outcome holds either a real result or a degraded fallback.
type Outcome[T any] struct {
	Value    T
	Degraded bool
	Reason   string
}

// Ok wraps a real result.
func Ok[T any](v T) Outcome[T] {
	return Outcome[T]{Value: v}
}

// Degrade wraps a fallback value with the reason the real path was abandoned.
func Degrade[T any](fallback T, reason string) Outcome[T] {
	return Outcome[T]{Value: fallback, Degraded: true, Reason: reason}
}
