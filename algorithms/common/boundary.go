package common

// Boundary index mappings for windowed 2D operations. The policy (reflect
// vs. replicate) is part of each filter's contract, so both live here with
// explicit names rather than hiding behind a default.

// ClampIndex maps an out-of-range index to the nearest edge (replicate
// boundary: a b c d -> a a | a b c d | d d).
func ClampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// ReflectIndex maps an out-of-range index by mirroring about the array
// edges, edge sample included (reflect boundary: a b c d -> b a | a b c d | d c).
func ReflectIndex(i, n int) int {
	if n == 1 {
		return 0
	}

	period := 2 * n
	i = ((i % period) + period) % period
	if i >= n {
		i = period - 1 - i
	}
	return i
}

// NextPowerOfTwo finds the next power of 2 >= n
func NextPowerOfTwo(n int) int {
	if n <= 0 {
		return 1
	}

	power := 1
	for power < n {
		power <<= 1
	}
	return power
}
