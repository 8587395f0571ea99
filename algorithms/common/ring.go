package common

import "math"

// Ring arithmetic shared by everything that walks a pitch-class ring.

// Wrap reduces x into 0..n-1. n must be positive.
func Wrap(x, n int) int {
	m := x % n
	if m < 0 {
		m += n
	}
	return m
}

// RingOffset returns the position k steps away from x on a ring of size n,
// i.e. (x + n + k) mod n for any k, including |k| >= n.
func RingOffset(x, k, n int) int {
	return Wrap(x+k, n)
}

// ForwardDistance is the ring distance travelled going up from a to b: (b - a) mod n.
func ForwardDistance(a, b, n int) int {
	return Wrap(b-a, n)
}

// StepTowardZero moves v toward zero by step without crossing it.
// A non-positive step leaves v unchanged.
func StepTowardZero(v, step float64) float64 {
	if step <= 0 {
		return v
	}
	switch {
	case v > 0:
		return math.Max(v-step, 0)
	case v < 0:
		return math.Min(v+step, 0)
	default:
		return 0
	}
}
