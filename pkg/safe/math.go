package safe

import "math"

// Overflow-checked int64 arithmetic for monetary micros. An overflow in
// market arithmetic is a bug, never a recoverable condition, so every
// function panics instead of returning an error.

// SafeAdd returns a+b, panicking on overflow.
func SafeAdd(a, b int64) int64 {
	sum := a + b
	// Overflow flips the sign of the result relative to both operands.
	if (a > 0 && b > 0 && sum <= 0) || (a < 0 && b < 0 && sum >= 0) {
		panic("SAFE_ADD_OVERFLOW")
	}
	return sum
}

// SafeSub returns a-b, panicking on overflow.
func SafeSub(a, b int64) int64 {
	if b == math.MinInt64 {
		// -MinInt64 is not representable; a-b overflows unless a < 0.
		if a >= 0 {
			panic("SAFE_SUB_OVERFLOW")
		}
		return a - b
	}
	return SafeAdd(a, -b)
}

// SafeMul returns a*b, panicking on overflow.
func SafeMul(a, b int64) int64 {
	if a == 0 || b == 0 {
		return 0
	}
	if a == math.MinInt64 || b == math.MinInt64 {
		// MinInt64 only survives multiplication by 1.
		if a == 1 {
			return b
		}
		if b == 1 {
			return a
		}
		panic("SAFE_MUL_OVERFLOW")
	}
	prod := a * b
	if prod/b != a {
		panic("SAFE_MUL_OVERFLOW")
	}
	return prod
}

// SafeDiv returns a/b, panicking on division by zero and on the one
// overflowing quotient, MinInt64 / -1.
func SafeDiv(a, b int64) int64 {
	if b == 0 {
		panic("SAFE_DIV_BY_ZERO")
	}
	if a == math.MinInt64 && b == -1 {
		panic("SAFE_DIV_OVERFLOW")
	}
	return a / b
}
