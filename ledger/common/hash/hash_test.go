package hash_test

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/sha3"

	"github.com/servicechain/executor/ledger/common/hash"
)

func TestHash(t *testing.T) {
	r := time.Now().UnixNano()
	rng := rand.New(rand.NewSource(r))
	t.Logf("math rand seed is %d", r)

	t.Run("lengthSanity", func(t *testing.T) {
		assert.Equal(t, 32, hash.HashLen)
	})

	t.Run("HashLeaf", func(t *testing.T) {
		var path hash.Hash

		for i := 0; i < 500; i++ {
			value := make([]byte, i)
			rng.Read(path[:])
			rng.Read(value)
			h := hash.HashLeaf(path, value)

			hasher := sha3.New256()
			_, _ = hasher.Write(path[:])
			_, _ = hasher.Write(value)
			expected := hasher.Sum(nil)
			assert.Equal(t, expected, h[:])
		}
	})

	t.Run("HashInterNode", func(t *testing.T) {
		var h1, h2 hash.Hash

		for i := 0; i < 500; i++ {
			rng.Read(h1[:])
			rng.Read(h2[:])
			h := hash.HashInterNode(h1, h2)

			hasher := sha3.New256()
			_, _ = hasher.Write(h1[:])
			_, _ = hasher.Write(h2[:])
			expected := hasher.Sum(nil)
			assert.Equal(t, expected, h[:])
		}
	})

	t.Run("ToHash", func(t *testing.T) {
		_, err := hash.ToHash([]byte{1, 2, 3})
		require.Error(t, err)

		var b [32]byte
		b[0] = 7
		h, err := hash.ToHash(b[:])
		require.NoError(t, err)
		require.Equal(t, byte(7), h[0])
	})
}

func TestDefaultHashes(t *testing.T) {
	require.Equal(t, hash.Sum256(nil), hash.GetDefaultHashForHeight(0))
	for i := 1; i <= hash.TreeHeight; i++ {
		prev := hash.GetDefaultHashForHeight(i - 1)
		require.Equal(t, hash.HashInterNode(prev, prev), hash.GetDefaultHashForHeight(i))
		require.True(t, hash.IsDefault(hash.GetDefaultHashForHeight(i), i))
	}
}
