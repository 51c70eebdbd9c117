// Package util contains misc internal utilities.
package util

// ClampInt limits v to the inclusive range [low, high]
func ClampInt(v, low, high int) int {
	if v < low {
		return low
	}
	if v > high {
		return high
	}
	return v
}

// MulNonNeg multiplies nonnegative integers and reports whether the
// product overflowed.  Used for pixel buffer size arithmetic, where a
// silent wraparound would corrupt memory on the C side.
func MulNonNeg(a, b int) (int, bool) {
	if a < 0 || b < 0 {
		return 0, false
	}
	if a == 0 || b == 0 {
		return 0, true
	}
	p := a * b
	if p/b != a {
		return 0, false
	}
	return p, true
}

// AddNonNeg adds nonnegative integers and reports whether the sum overflowed
func AddNonNeg(a, b int) (int, bool) {
	if a < 0 || b < 0 {
		return 0, false
	}
	s := a + b
	if s < a {
		return 0, false
	}
	return s, true
}

// IntSliceContains returns true if v is present in s
func IntSliceContains(s []int, v int) bool {
	for _, e := range s {
		if e == v {
			return true
		}
	}
	return false
}
