package types

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"golang.org/x/crypto/sha3"
)

// HashLen is the length of a digest in bytes
const HashLen = common.HashLength

// Hash is a SHA3-256 digest. It encodes to 0x-prefixed hex in JSON and TOML.
type Hash = common.Hash

// Address is a 20-byte account address.
type Address = common.Address

// ZeroHash is the all-zero digest.
var ZeroHash = Hash{}

// ZeroAddress is the all-zero address.
var ZeroAddress = Address{}

// Digest returns the SHA3-256 digest of data.
func Digest(data []byte) Hash {
	return Hash(sha3.Sum256(data))
}

// AddressFromPubKey derives an account address from a public key:
// the last 20 bytes of the SHA3-256 digest of the key.
func AddressFromPubKey(pubkey []byte) Address {
	h := Digest(pubkey)
	return common.BytesToAddress(h[HashLen-common.AddressLength:])
}

// ParseAddress parses a hex encoded address, with or without 0x prefix.
func ParseAddress(s string) (Address, error) {
	s = withHexPrefix(s)
	if !common.IsHexAddress(s) {
		return ZeroAddress, fmt.Errorf("invalid address %q", s)
	}
	return common.HexToAddress(s), nil
}

// ParseHash parses a hex encoded 32-byte digest, with or without 0x prefix.
func ParseHash(s string) (Hash, error) {
	b, err := hexutil.Decode(withHexPrefix(s))
	if err != nil || len(b) != HashLen {
		return ZeroHash, fmt.Errorf("invalid hash %q", s)
	}
	return common.BytesToHash(b), nil
}

func withHexPrefix(s string) string {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return s
	}
	return "0x" + s
}
