package bitutils

// ReadBit returns the bit at index `idx` in the byte slice `b` (big endian).
// The function panics, if the byte slice is too short.
func ReadBit(b []byte, idx int) int {
	return int(b[idx>>3]>>(7-uint(idx&7))) & 1
}

// SetBit sets the bit at index `i` in the byte slice `b`.
// The function panics, if the byte slice is too short.
func SetBit(b []byte, i int) {
	b[i>>3] |= 1 << (7 - uint(i&7))
}

// MakeBitVector allocates a byte slice of minimal size that can hold numberBits.
func MakeBitVector(numberBits int) []byte {
	return make([]byte, (numberBits+7)>>3)
}
