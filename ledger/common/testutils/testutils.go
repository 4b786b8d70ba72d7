// Package testutils provides fixtures for ledger tests.
package testutils

import (
	"encoding/binary"
	"fmt"
	"math/rand"

	"github.com/servicechain/executor/ledger"
)

// PathByUint16 returns a path (32 bytes) given a uint16 (big endian)
func PathByUint16(inp uint16) ledger.Path {
	var p ledger.Path
	binary.BigEndian.PutUint16(p[:], inp)
	return p
}

// LightPayload returns a payload with a short key and 2 byte value
func LightPayload(key uint16, value uint16) *ledger.Payload {
	v := make([]byte, 2)
	binary.BigEndian.PutUint16(v, value)
	return ledger.NewPayload(ledger.NewKeyID("test", fmt.Sprintf("%d", key)), v)
}

// RandomPaths generates n random (no repetition) paths
func RandomPaths(rng *rand.Rand, n int) []ledger.Path {
	paths := make([]ledger.Path, 0, n)
	alreadySelectPaths := make(map[ledger.Path]struct{})
	for len(paths) < n {
		var path ledger.Path
		rng.Read(path[:])
		if _, found := alreadySelectPaths[path]; found {
			continue
		}
		paths = append(paths, path)
		alreadySelectPaths[path] = struct{}{}
	}
	return paths
}

// RandomPayloads returns n random non-empty payloads
func RandomPayloads(rng *rand.Rand, n int, minByteSize int, maxByteSize int) []ledger.Payload {
	res := make([]ledger.Payload, 0, n)
	for i := 0; i < n; i++ {
		size := minByteSize
		if maxByteSize > minByteSize {
			size += rng.Intn(maxByteSize - minByteSize)
		}
		if size == 0 {
			size = 1
		}
		value := make([]byte, size)
		rng.Read(value)
		res = append(res, *ledger.NewPayload(ledger.NewKeyID("test", fmt.Sprintf("k%d", i)), value))
	}
	return res
}

// RandomUniqueKeys generates n random unique keys in the given namespace
func RandomUniqueKeys(rng *rand.Rand, namespace string, n int) []ledger.KeyID {
	keys := make([]ledger.KeyID, 0, n)
	seen := make(map[string]struct{})
	for len(keys) < n {
		b := make([]byte, 8)
		rng.Read(b)
		if _, ok := seen[string(b)]; ok {
			continue
		}
		seen[string(b)] = struct{}{}
		keys = append(keys, ledger.NewKeyID(namespace, string(b)))
	}
	return keys
}

// RandomValues returns n random non-empty values with variable sizes (minByteSize <= size < maxByteSize)
func RandomValues(rng *rand.Rand, n int, minByteSize, maxByteSize int) []ledger.Value {
	values := make([]ledger.Value, 0, n)
	for i := 0; i < n; i++ {
		byteSize := maxByteSize
		if minByteSize < maxByteSize {
			byteSize = minByteSize + rng.Intn(maxByteSize-minByteSize)
		}
		if byteSize == 0 {
			byteSize = 1
		}
		value := make([]byte, byteSize)
		rng.Read(value)
		values = append(values, value)
	}
	return values
}
