package utils

import "math/bits"

// IsPowerOfTwo reports whether the given n is a power of two.
func IsPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// CeilToPowerOfTwo returns n if it is a power-of-two, otherwise the next-highest power-of-two.
// The minimum returned value is 2.
func CeilToPowerOfTwo(n int) int {
	if n <= 2 {
		return 2
	}
	if IsPowerOfTwo(n) {
		return n
	}
	shift := bits.Len(uint(n))
	if shift >= bits.UintSize-1 {
		panic("argument is too large")
	}
	return 1 << shift
}

// FloorToPowerOfTwo returns n if it is a power-of-two, otherwise the next-lowest power-of-two.
func FloorToPowerOfTwo(n int) int {
	if n <= 2 {
		return n
	}
	return 1 << (bits.Len(uint(n)) - 1)
}
