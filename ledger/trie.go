package ledger

import (
	"encoding/hex"
	"fmt"

	"github.com/servicechain/executor/ledger/common/bitutils"
	"github.com/servicechain/executor/ledger/common/hash"
)

// PathLen is the length of a trie path in bytes
const PathLen = hash.HashLen

// Path captures storage path of a payload;
// where we store a payload in the ledger
type Path hash.Hash

// DummyPath is an arbitrary path value, used in function error returns.
var DummyPath = Path(hash.DummyHash)

func (p Path) String() string {
	return hex.EncodeToString(p[:])
}

// ToPath converts a byte slice into a path.
// It returns an error if the slice has an invalid length.
func ToPath(pathBytes []byte) (Path, error) {
	var path Path
	if len(pathBytes) != len(path) {
		return DummyPath, fmt.Errorf("expecting %d bytes but got %d bytes", len(path), len(pathBytes))
	}
	copy(path[:], pathBytes)
	return path, nil
}

// Payload is the smallest immutable storable unit in ledger
type Payload struct {
	Key   KeyID
	Value Value
}

// NewPayload returns a new payload
func NewPayload(key KeyID, value Value) *Payload {
	return &Payload{Key: key, Value: value}
}

// EmptyPayload returns an empty payload
func EmptyPayload() *Payload {
	return &Payload{}
}

// Size returns the size of the payload
func (p *Payload) Size() int {
	return p.Key.Size() + p.Value.Size()
}

// IsEmpty returns true if the payload holds no value. Empty payloads are not stored.
func (p *Payload) IsEmpty() bool {
	return p == nil || len(p.Value) == 0
}

func (p *Payload) String() string {
	return p.Key.String() + " " + p.Value.String()
}

// Equals compares this payload to another payload
func (p *Payload) Equals(other *Payload) bool {
	if p == nil || other == nil {
		return p.IsEmpty() && other.IsEmpty()
	}
	return p.Key == other.Key && p.Value.Equals(other.Value)
}

// DeepCopy returns a deep copy of the payload
func (p *Payload) DeepCopy() *Payload {
	if p == nil {
		return nil
	}
	return &Payload{Key: p.Key, Value: p.Value.DeepCopy()}
}

// TrieRead captures a trie read query
type TrieRead struct {
	RootHash State
	Paths    []Path
}

// TrieUpdate holds all data for a trie update
type TrieUpdate struct {
	RootHash State
	Paths    []Path
	Payloads []*Payload
}

// Size returns number of paths in the trie update
func (u *TrieUpdate) Size() int {
	return len(u.Paths)
}

// IsEmpty returns true if the update holds no paths
func (u *TrieUpdate) IsEmpty() bool {
	return u.Size() == 0
}

// TrieProof includes all the information needed to walk
// through a trie branch from an specific leaf node (key)
// up to the root of the trie.
//
// An exclusion proof either ends in an empty subtree (empty Payload) or in a compact
// leaf holding a different path; in the latter case LeafPath and Payload describe that leaf.
type TrieProof struct {
	Path      Path        // queried path
	LeafPath  Path        // path of the leaf the walk ended in
	Payload   *Payload    // payload of the leaf the walk ended in
	Interims  []hash.Hash // the non-default intermediate nodes in the proof
	Inclusion bool        // flag indicating if this is an inclusion or exclusion proof
	Flags     []byte      // The flags of the proofs (is set if an intermediate node has a non-default)
	Steps     uint16      // number of edges between the root and the node the walk ended in
}

// NewTrieProof creates a new instance of Trie Proof
func NewTrieProof() *TrieProof {
	return &TrieProof{
		Payload:   EmptyPayload(),
		Interims:  make([]hash.Hash, 0),
		Inclusion: false,
		Flags:     make([]byte, PathLen),
		Steps:     0,
	}
}

// TrieBatchProof is a struct that holds the proofs for several keys
//
// so there is no need for two calls (read, proofs)
type TrieBatchProof struct {
	Proofs []*TrieProof
}

// NewTrieBatchProofWithEmptyProofs creates an instance of TrieBatchProof
// filled with n newly created proofs (empty)
func NewTrieBatchProofWithEmptyProofs(numberOfProofs int) *TrieBatchProof {
	bp := &TrieBatchProof{Proofs: make([]*TrieProof, numberOfProofs)}
	for i := 0; i < numberOfProofs; i++ {
		bp.Proofs[i] = NewTrieProof()
	}
	return bp
}

// Size returns the number of proofs
func (bp *TrieBatchProof) Size() int {
	return len(bp.Proofs)
}

// Paths returns the slice of paths for this batch proof
func (bp *TrieBatchProof) Paths() []Path {
	paths := make([]Path, len(bp.Proofs))
	for i, p := range bp.Proofs {
		paths[i] = p.Path
	}
	return paths
}

// Payloads returns the slice of paths for this batch proof
func (bp *TrieBatchProof) Payloads() []*Payload {
	payloads := make([]*Payload, len(bp.Proofs))
	for i, p := range bp.Proofs {
		payloads[i] = p.Payload
	}
	return payloads
}

// ComputeCompactValue computes the value for the node considering the sub tree
// to only include this value and default values.
func ComputeCompactValue(path hash.Hash, value []byte, nodeHeight int) hash.Hash {
	// start with the leaf at height 0 and hash our way up to nodeHeight
	out := hash.HashLeaf(path, value)
	for h := 1; h <= nodeHeight; h++ {
		def := hash.GetDefaultHashForHeight(h - 1)
		if bitutils.ReadBit(path[:], hash.TreeHeight-h) == 1 {
			out = hash.HashInterNode(def, out)
		} else {
			out = hash.HashInterNode(out, def)
		}
	}
	return out
}

// VerifyTrieProof verifies a single trie proof against the expected state.
func VerifyTrieProof(p *TrieProof, expectedState State) bool {
	leafHeight := hash.TreeHeight - int(p.Steps)
	if leafHeight < 0 || leafHeight > hash.TreeHeight {
		return false
	}
	if len(p.Flags) != PathLen {
		return false
	}

	var computed hash.Hash
	switch {
	case p.Inclusion:
		if p.Payload.IsEmpty() || p.LeafPath != p.Path {
			return false
		}
		computed = ComputeCompactValue(hash.Hash(p.Path), p.Payload.Value, leafHeight)
	case !p.Payload.IsEmpty():
		// exclusion: the walk ended in a leaf holding another path with the same prefix
		if p.LeafPath == p.Path {
			return false
		}
		for i := 0; i < int(p.Steps); i++ {
			if bitutils.ReadBit(p.LeafPath[:], i) != bitutils.ReadBit(p.Path[:], i) {
				return false
			}
		}
		computed = ComputeCompactValue(hash.Hash(p.LeafPath), p.Payload.Value, leafHeight)
	default:
		// exclusion: the walk ended in an empty subtree
		computed = hash.GetDefaultHashForHeight(leafHeight)
	}

	// hash our way upwards towards the root, consuming interims from the bottom
	proofIndex := len(p.Interims) - 1
	for h := leafHeight + 1; h <= hash.TreeHeight; h++ {
		bitIndex := hash.TreeHeight - h
		var siblingHash hash.Hash
		if bitutils.ReadBit(p.Flags, bitIndex) == 1 {
			if proofIndex < 0 {
				return false
			}
			siblingHash = p.Interims[proofIndex]
			proofIndex--
		} else {
			siblingHash = hash.GetDefaultHashForHeight(h - 1)
		}
		if bitutils.ReadBit(p.Path[:], bitIndex) == 1 {
			computed = hash.HashInterNode(siblingHash, computed)
		} else {
			computed = hash.HashInterNode(computed, siblingHash)
		}
	}
	return proofIndex == -1 && computed == hash.Hash(expectedState)
}

// VerifyTrieBatchProof verifies all the proofs inside the batch proof
func VerifyTrieBatchProof(bp *TrieBatchProof, expectedState State) bool {
	for _, p := range bp.Proofs {
		if !VerifyTrieProof(p, expectedState) {
			return false
		}
	}
	return true
}
