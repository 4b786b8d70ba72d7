package bitutils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBitVector(t *testing.T) {
	for n := 0; n < 40; n++ {
		require.Len(t, MakeBitVector(n), (n+7)/8)
	}

	b := MakeBitVector(16)
	SetBit(b, 0)
	SetBit(b, 9)
	require.Equal(t, []byte{0x80, 0x40}, b)

	for i := 0; i < 16; i++ {
		expected := 0
		if i == 0 || i == 9 {
			expected = 1
		}
		require.Equal(t, expected, ReadBit(b, i), "bit %d", i)
	}
}
