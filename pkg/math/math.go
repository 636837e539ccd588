package math

import "golang.org/x/exp/constraints"

// Max calculates the maximum of two numbers.
func Max[T constraints.Integer | constraints.Float](a, b T) T {
	if a > b {
		return a
	}
	return b
}

// Min calculates the minimum of two numbers.
func Min[T constraints.Integer | constraints.Float](a, b T) T {
	if a < b {
		return a
	}
	return b
}

// NextPow2 returns the smallest power of two >= x, or 1 for x < 1.
func NextPow2[T constraints.Integer](x T) T {
	n := T(1)
	for n < x {
		n <<= 1
	}
	return n
}
