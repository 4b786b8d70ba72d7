package storage

import (
	"github.com/servicechain/executor/model/types"
)

// Receipts represents persistent storage for execution receipts.
type Receipts interface {

	// Insert stores the receipts of the block at the given height.
	Insert(height uint64, receipts []types.Receipt) error

	// ByHash returns the receipt of the transaction with the given hash.
	ByHash(txHash types.Hash) (*types.Receipt, error)

	// ByHeightAndHashes returns the receipts of the block at the given
	// height, in the order of hashes.
	ByHeightAndHashes(height uint64, txHashes []types.Hash) ([]types.Receipt, error)
}
