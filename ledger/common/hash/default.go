package hash

// TreeHeight is the height of a fully-expanded ledger trie. Paths are 256 bits.
const TreeHeight = 8 * HashLen

var defaultHashes [TreeHeight + 1]Hash

func init() {
	// height 0 is the hash of an empty leaf
	defaultHashes[0] = Sum256(nil)
	for i := 1; i <= TreeHeight; i++ {
		defaultHashes[i] = HashInterNode(defaultHashes[i-1], defaultHashes[i-1])
	}
}

// GetDefaultHashForHeight returns the root hash of an empty subtree of the given height.
func GetDefaultHashForHeight(height int) Hash {
	return defaultHashes[height]
}

// IsDefault reports whether h is the empty-subtree hash at the given height.
func IsDefault(h Hash, height int) bool {
	return defaultHashes[height] == h
}
