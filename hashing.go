// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package zudd

// Hash functions

func _TRIPLE(a, b, c, len int) int {
	return int(_PAIR64(uint64(c), _PAIR(a, b, len), uint64(len)))
}

// _QUAD hashes an operation code together with its three operands.
func _QUAD(op, a, b, c, len int) int {
	return int(_PAIR64(uint64(op), uint64(_TRIPLE(a, b, c, len)), uint64(len)))
}

// _PAIR is a mapping function that maps (bijectively) a pair of integer (a, b)
// into a unique integer. It is therefore a perfect hash: no collisions
func _PAIR(a, b, len int) uint64 {
	return (((uint64(a+b) * uint64(a+b+1)) / 2) + uint64(a)) % uint64(len)
}

func _PAIR64(a, b, len uint64) uint64 {
	return (((((a + b) % len) * ((a + b + 1) % len)) / 2) + a) % len
}
