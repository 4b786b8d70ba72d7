package hash

import (
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/sha3"
)

// HashLen is the ledger default output hash length in bytes
const HashLen = 32

// Hash is the hash type used in all ledger
type Hash [HashLen]byte

// DummyHash is an arbitrary hash value, used in function errors.
// DummyHash represents a valid hash value.
var DummyHash Hash

func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// HashLeaf returns the hash value for leaf nodes.
//
// note that we don't include the keys here as they are already included in the path.
func HashLeaf(path Hash, value []byte) Hash {
	hasher := sha3.New256()
	_, _ = hasher.Write(path[:])
	_, _ = hasher.Write(value)
	var h Hash
	hasher.Sum(h[:0])
	return h
}

// HashInterNode returns the hash value for intermediate nodes.
func HashInterNode(hash1 Hash, hash2 Hash) Hash {
	hasher := sha3.New256()
	_, _ = hasher.Write(hash1[:])
	_, _ = hasher.Write(hash2[:])
	var h Hash
	hasher.Sum(h[:0])
	return h
}

// Sum256 returns the SHA3-256 digest of data.
func Sum256(data []byte) Hash {
	return Hash(sha3.Sum256(data))
}

// ToHash converts a byte slice into a Hash.
// It returns an error if the slice has an invalid length.
func ToHash(bytes []byte) (Hash, error) {
	var h Hash
	if len(bytes) != len(h) {
		return DummyHash, fmt.Errorf("expecting %d bytes but got %d bytes", len(h), len(bytes))
	}
	copy(h[:], bytes)
	return h, nil
}
