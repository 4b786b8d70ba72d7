package storage

import (
	"github.com/servicechain/executor/model/types"
)

// Transactions represents persistent storage for the transactions of
// executed blocks.
type Transactions interface {

	// Insert stores the transactions of the block at the given height.
	Insert(height uint64, txs []types.SignedTransaction) error

	// ByHash returns the transaction with the given hash.
	ByHash(hash types.Hash) (*types.SignedTransaction, error)

	// ByHeightAndHashes returns the transactions of the block at the given
	// height, in the order of hashes.
	ByHeightAndHashes(height uint64, hashes []types.Hash) ([]types.SignedTransaction, error)
}
