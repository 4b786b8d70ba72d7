package trie

import (
	"fmt"

	"github.com/servicechain/executor/ledger"
	"github.com/servicechain/executor/ledger/common/bitutils"
	"github.com/servicechain/executor/ledger/common/hash"
	"github.com/servicechain/executor/ledger/complete/mtrie/node"
)

// MTrie represents a perfect in-memory full binary Merkle tree with uniform height.
//
// A MTrie is a thin wrapper around a the trie's root Node. An MTrie implements the
// logic for forming MTrie-graphs from the elementary nodes. Specifically:
//   - how register values are read from the trie,
//   - how Merkle proofs are generated from a trie, and
//   - how a new Trie with updated values is generated.
//
// `MTrie`s are _immutable_ data structures. Updating register values is implemented through
// copy-on-write, which creates a new `MTrie`. All sub-tries that were not affected by the
// write operation are shared between the original MTrie and the updated MTrie.
//
// DEFINITIONS and CONVENTIONS:
//   - HEIGHT of a node v in a tree is the number of edges on the longest downward path
//     between v and a tree leaf. The height of a Trie is always the height of the fully-expanded tree.
//   - The trie is kept maximally pruned: removing a register compactifies the branch,
//     so two tries holding the same registers always have the same root hash.
type MTrie struct {
	root *node.Node
}

// NewEmptyMTrie returns an empty Mtrie (root is nil)
func NewEmptyMTrie() *MTrie {
	return &MTrie{root: nil}
}

// NewMTrie returns a Mtrie given the root
func NewMTrie(root *node.Node) (*MTrie, error) {
	if root != nil && root.Height() != hash.TreeHeight {
		return nil, fmt.Errorf("height of root node must be %d but is %d", hash.TreeHeight, root.Height())
	}
	return &MTrie{root: root}, nil
}

// RootHash returns the trie's root hash.
// Concurrency safe (as Tries are immutable structures by convention)
func (mt *MTrie) RootHash() ledger.State {
	return ledger.State(mt.root.Hash())
}

// AllocatedRegCount returns the number of allocated registers in the trie.
func (mt *MTrie) AllocatedRegCount() uint64 {
	if mt.root == nil {
		return 0
	}
	return mt.root.RegCount()
}

// MaxDepth returns the length of the longest branch from root to leaf.
func (mt *MTrie) MaxDepth() uint16 {
	if mt.root == nil {
		return 0
	}
	return mt.root.MaxDepth()
}

// RootNode returns the Trie's root Node
func (mt *MTrie) RootNode() *node.Node {
	return mt.root
}

// IsEmpty checks if a trie is empty.
func (mt *MTrie) IsEmpty() bool {
	return mt.root == nil
}

func (mt *MTrie) String() string {
	return fmt.Sprintf("Trie root hash: %v, registers: %d", mt.RootHash(), mt.AllocatedRegCount())
}

// ReadSinglePayload reads and returns a payload for a single path.
// An empty payload is returned for unallocated registers.
func (mt *MTrie) ReadSinglePayload(path ledger.Path) *ledger.Payload {
	head := mt.root
	for head != nil {
		if head.IsLeaf() {
			if head.Path() == path {
				return head.Payload()
			}
			return ledger.EmptyPayload()
		}
		if bitutils.ReadBit(path[:], hash.TreeHeight-head.Height()) == 1 {
			head = head.RightChild()
		} else {
			head = head.LeftChild()
		}
	}
	return ledger.EmptyPayload()
}

// Read reads payloads for the given paths, in the order of the paths.
func (mt *MTrie) Read(paths []ledger.Path) []*ledger.Payload {
	payloads := make([]*ledger.Payload, len(paths))
	for i, p := range paths {
		payloads[i] = mt.ReadSinglePayload(p)
	}
	return payloads
}

// NewTrieWithUpdatedRegisters constructs a new trie containing all registers from the parent trie.
// The key-value pairs specify the registers whose values are supposed to hold updated values
// compared to the parent trie. Registers updated with an empty value are removed.
// Constructing the new trie is done in a COPY-ON-WRITE manner:
//   - The original trie remains unchanged.
//   - subtries that remain unchanged are from the parent trie instead of copied.
//
// Paths must not be duplicated.
func NewTrieWithUpdatedRegisters(parentTrie *MTrie, updatedPaths []ledger.Path, updatedPayloads []ledger.Payload) (*MTrie, error) {
	if len(updatedPaths) != len(updatedPayloads) {
		return nil, fmt.Errorf("length mismatch: %d paths but %d payloads", len(updatedPaths), len(updatedPayloads))
	}
	if len(updatedPaths) == 0 {
		return parentTrie, nil
	}

	// update partitions its inputs in place
	paths := make([]ledger.Path, len(updatedPaths))
	copy(paths, updatedPaths)
	payloads := make([]ledger.Payload, len(updatedPayloads))
	copy(payloads, updatedPayloads)

	seen := make(map[ledger.Path]struct{}, len(paths))
	for _, p := range paths {
		if _, ok := seen[p]; ok {
			return nil, fmt.Errorf("duplicate path %s in trie update", p)
		}
		seen[p] = struct{}{}
	}

	updatedRoot := update(hash.TreeHeight, parentTrie.root, paths, payloads, nil)
	return NewMTrie(updatedRoot)
}

// update traverses the subtree of parentNode and returns the new subtree root.
// compactLeaf is a leaf from a higher height that has to be pushed down, as a
// path among the updates shares its prefix.
func update(nodeHeight int, parentNode *node.Node, paths []ledger.Path, payloads []ledger.Payload, compactLeaf *node.Node) *node.Node {
	if len(paths) == 0 {
		// a compactLeaf from a higher height is still left
		if compactLeaf != nil {
			return node.NewLeaf(compactLeaf.Path(), compactLeaf.Payload(), nodeHeight)
		}
		return parentNode
	}

	if len(paths) == 1 && parentNode == nil && compactLeaf == nil {
		if payloads[0].IsEmpty() {
			// removing a register that does not exist
			return nil
		}
		return node.NewLeaf(paths[0], payloads[0].DeepCopy(), nodeHeight)
	}

	if parentNode != nil && parentNode.IsLeaf() { // if we're here then compactLeaf == nil
		parentPath := parentNode.Path()
		found := false
		for i, p := range paths {
			if p != parentPath {
				continue
			}
			if len(paths) == 1 {
				if parentNode.Payload().Equals(&payloads[i]) {
					// avoid creating a new node when the same payload is written
					return parentNode
				}
				if payloads[i].IsEmpty() {
					return nil
				}
				return node.NewLeaf(paths[i], payloads[i].DeepCopy(), nodeHeight)
			}
			found = true
			break
		}
		if !found {
			compactLeaf = parentNode
		}
	}

	// in the remaining code: len(paths) > 1, or a compactLeaf has to be pushed down
	bitIndex := hash.TreeHeight - nodeHeight
	partitionIndex := splitByPath(paths, payloads, bitIndex)
	lpaths, rpaths := paths[:partitionIndex], paths[partitionIndex:]
	lpayloads, rpayloads := payloads[:partitionIndex], payloads[partitionIndex:]

	var lcompactLeaf, rcompactLeaf *node.Node
	if compactLeaf != nil {
		p := compactLeaf.Path()
		if bitutils.ReadBit(p[:], bitIndex) == 0 {
			lcompactLeaf = compactLeaf
		} else {
			rcompactLeaf = compactLeaf
		}
	}

	var lchildParent, rchildParent *node.Node
	if parentNode != nil {
		lchildParent = parentNode.LeftChild()
		rchildParent = parentNode.RightChild()
	}

	lChild := update(nodeHeight-1, lchildParent, lpaths, lpayloads, lcompactLeaf)
	rChild := update(nodeHeight-1, rchildParent, rpaths, rpayloads, rcompactLeaf)

	// avoid creating a new node when the exact same payloads are re-written
	if compactLeaf == nil && (parentNode == nil || !parentNode.IsLeaf()) && lChild == lchildParent && rChild == rchildParent {
		return parentNode
	}
	return node.NewInterimCompactifiedNode(nodeHeight, lChild, rChild)
}

// splitByPath permutes paths and payloads so that all entries with bit 0 at
// bitIndex come first. It returns the index of the first entry with bit 1.
func splitByPath(paths []ledger.Path, payloads []ledger.Payload, bitIndex int) int {
	i := 0
	for j := range paths {
		p := paths[j]
		if bitutils.ReadBit(p[:], bitIndex) == 0 {
			paths[i], paths[j] = paths[j], paths[i]
			payloads[i], payloads[j] = payloads[j], payloads[i]
			i++
		}
	}
	return i
}

// Prove returns an inclusion or exclusion proof for a single path.
func (mt *MTrie) Prove(path ledger.Path) *ledger.TrieProof {
	proof := ledger.NewTrieProof()
	proof.Path = path

	head := mt.root
	for head != nil {
		if head.IsLeaf() {
			proof.LeafPath = head.Path()
			proof.Payload = head.Payload().DeepCopy()
			proof.Inclusion = head.Path() == path
			break
		}

		bitIndex := hash.TreeHeight - head.Height()
		var next, sibling *node.Node
		if bitutils.ReadBit(path[:], bitIndex) == 1 {
			next, sibling = head.RightChild(), head.LeftChild()
		} else {
			next, sibling = head.LeftChild(), head.RightChild()
		}
		// in proofs, we only provide non-default value hashes
		if sibling != nil {
			bitutils.SetBit(proof.Flags, bitIndex)
			proof.Interims = append(proof.Interims, sibling.Hash())
		}
		proof.Steps++
		head = next
	}
	return proof
}

// ProveBatch returns proofs for the given paths, in the order of the paths.
func (mt *MTrie) ProveBatch(paths []ledger.Path) *ledger.TrieBatchProof {
	batch := &ledger.TrieBatchProof{Proofs: make([]*ledger.TrieProof, len(paths))}
	for i, p := range paths {
		batch.Proofs[i] = mt.Prove(p)
	}
	return batch
}

// Equals compares two tries for equality.
// Tries are equal iff they store the same data (i.e. root hash matches)
func (mt *MTrie) Equals(o *MTrie) bool {
	if o == nil {
		return false
	}
	return o.RootHash() == mt.RootHash()
}

// AllPayloads returns all payloads
func (mt *MTrie) AllPayloads() []*ledger.Payload {
	return mt.root.AllPayloads()
}

// IsAValidTrie verifies the content of the trie for potential issues
func (mt *MTrie) IsAValidTrie() bool {
	return node.VerifyCachedHash(mt.root) == nil
}
