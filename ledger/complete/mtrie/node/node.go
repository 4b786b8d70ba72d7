package node

import (
	"fmt"

	"github.com/servicechain/executor/ledger"
	"github.com/servicechain/executor/ledger/common/hash"
)

// Node defines an Mtrie node
//
// DEFINITIONS:
//   - HEIGHT of a node v in a tree is the number of edges on the longest
//     downward path between v and a tree leaf.
//
// Conceptually, an MTrie is a sparse Merkle Trie, which has two node types:
//   - INTERIM node: has at least one child (i.e. lChild or rChild is not
//     nil). Interim nodes do not store a path and have no payload.
//   - LEAF node: has _no_ children. It stores a path and a payload.
//     A leaf can sit at any height: a leaf above height 0 is a compactified
//     subtree holding exactly one register.
//
// Nodes are immutable once created. Empty subtrees are represented by nil.
type Node struct {
	lChild    *Node       // Left Child
	rChild    *Node       // Right Child
	height    int         // height where the Node is at
	path      ledger.Path // the storage path (dummy value for interim nodes)
	payload   *ledger.Payload
	hashValue hash.Hash
	maxDepth  uint16
	regCount  uint64
}

// NewLeaf creates a compact leaf Node at the given height.
// UNCHECKED requirement: height must be non-negative and payload non-empty.
func NewLeaf(path ledger.Path, payload *ledger.Payload, height int) *Node {
	return &Node{
		height:    height,
		path:      path,
		payload:   payload,
		hashValue: ledger.ComputeCompactValue(hash.Hash(path), payload.Value, height),
		regCount:  1,
	}
}

// NewInterimNode creates a new interim Node.
// UNCHECKED requirement: at least one child must be non-nil.
func NewInterimNode(height int, lchild, rchild *Node) *Node {
	n := &Node{
		lChild: lchild,
		rChild: rchild,
		height: height,
		path:   ledger.DummyPath,
	}
	n.hashValue = hash.HashInterNode(hashOrDefault(lchild, height-1), hashOrDefault(rchild, height-1))
	var lDepth, rDepth uint16
	if lchild != nil {
		lDepth = lchild.maxDepth
		n.regCount += lchild.regCount
	}
	if rchild != nil {
		rDepth = rchild.maxDepth
		n.regCount += rchild.regCount
	}
	if lDepth > rDepth {
		n.maxDepth = lDepth + 1
	} else {
		n.maxDepth = rDepth + 1
	}
	return n
}

// NewInterimCompactifiedNode creates a new compactified interim Node. For compactification,
// we only consider the immediate children. When starting with a maximally pruned trie and
// creating only InterimCompactifiedNodes during an update, the resulting trie remains maximally
// pruned. Returns:
//   - nil if both children are empty
//   - a compact leaf at the given height if one child is empty and the other is a leaf
//   - an interim node otherwise
func NewInterimCompactifiedNode(height int, lChild, rChild *Node) *Node {
	if lChild == nil && rChild == nil {
		return nil
	}
	if lChild == nil && rChild.IsLeaf() {
		return NewLeaf(rChild.path, rChild.payload, height)
	}
	if rChild == nil && lChild.IsLeaf() {
		return NewLeaf(lChild.path, lChild.payload, height)
	}
	return NewInterimNode(height, lChild, rChild)
}

func hashOrDefault(n *Node, height int) hash.Hash {
	if n == nil {
		return hash.GetDefaultHashForHeight(height)
	}
	return n.hashValue
}

// Hash returns the Node's hash value.
// Do NOT MODIFY returned slice!
func (n *Node) Hash() hash.Hash {
	if n == nil {
		return hash.GetDefaultHashForHeight(hash.TreeHeight)
	}
	return n.hashValue
}

// Height returns the Node's height.
func (n *Node) Height() int { return n.height }

// MaxDepth returns the longest path from this node to compacted leafs in the subtree.
func (n *Node) MaxDepth() uint16 { return n.maxDepth }

// RegCount returns number of registers allocated in the subtrie of this node.
func (n *Node) RegCount() uint64 { return n.regCount }

// Path returns a pointer to the Node's register storage path.
// For interim nodes the path is the dummy path.
func (n *Node) Path() ledger.Path { return n.path }

// Payload returns the Node's payload.
// Do NOT MODIFY returned payload!
func (n *Node) Payload() *ledger.Payload { return n.payload }

// LeftChild returns the the Node's left child.
// Only INTERIM nodes have children.
func (n *Node) LeftChild() *Node { return n.lChild }

// RightChild returns the the Node's right child.
// Only INTERIM nodes have children.
func (n *Node) RightChild() *Node { return n.rChild }

// IsLeaf returns true if and only if Node is a LEAF.
func (n *Node) IsLeaf() bool {
	return n.lChild == nil && n.rChild == nil
}

// VerifyCachedHash verifies the hash of a node is valid
func VerifyCachedHash(n *Node) error {
	if n == nil {
		return nil
	}
	if n.IsLeaf() {
		expected := ledger.ComputeCompactValue(hash.Hash(n.path), n.payload.Value, n.height)
		if expected != n.hashValue {
			return fmt.Errorf("invalid leaf hash at height %d", n.height)
		}
		return nil
	}
	if err := VerifyCachedHash(n.lChild); err != nil {
		return err
	}
	if err := VerifyCachedHash(n.rChild); err != nil {
		return err
	}
	expected := hash.HashInterNode(hashOrDefault(n.lChild, n.height-1), hashOrDefault(n.rChild, n.height-1))
	if expected != n.hashValue {
		return fmt.Errorf("invalid interim hash at height %d", n.height)
	}
	return nil
}

// AllPayloads returns the payloads of this node and its descendants, ordered by path.
func (n *Node) AllPayloads() []*ledger.Payload {
	return n.appendSubtreePayloads(nil)
}

func (n *Node) appendSubtreePayloads(result []*ledger.Payload) []*ledger.Payload {
	if n == nil {
		return result
	}
	if n.IsLeaf() {
		return append(result, n.payload)
	}
	result = n.lChild.appendSubtreePayloads(result)
	result = n.rChild.appendSubtreePayloads(result)
	return result
}
