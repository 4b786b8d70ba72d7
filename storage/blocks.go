package storage

import (
	"github.com/servicechain/executor/model/types"
)

// Blocks represents persistent storage for blocks. The transactions of a
// block are kept by Transactions: a block only indexes their hashes.
type Blocks interface {

	// Insert stores the header of the block and the hashes of its
	// transactions.
	Insert(block *types.Block) error

	// ByHeight returns the block at the given height with its transactions.
	ByHeight(height uint64) (*types.Block, error)

	// HeaderByHeight returns the header of the block at the given height.
	HeaderByHeight(height uint64) (*types.BlockHeader, error)

	// SetLatest marks the stored block at the given height as the latest.
	SetLatest(height uint64) error

	// Latest returns the latest block.
	Latest() (*types.Block, error)

	// LatestHeader returns the header of the latest block.
	LatestHeader() (*types.BlockHeader, error)

	// Remove deletes the block at the given height. Its transactions are
	// kept.
	Remove(height uint64) error
}

// Proofs represents persistent storage for the proof of the latest block.
type Proofs interface {
	UpdateLatest(proof *types.Proof) error
	Latest() (*types.Proof, error)
}
