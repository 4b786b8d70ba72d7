package operation

import (
	"github.com/dgraph-io/badger/v2"

	"github.com/servicechain/executor/model/types"
)

// InsertTransaction inserts a transaction keyed by the height of its block
// and its hash.
func InsertTransaction(height uint64, tx *types.SignedTransaction) func(*badger.Txn) error {
	return insert(makePrefix(codeTransaction, height, tx.TxHash), tx)
}

func RetrieveTransaction(height uint64, txHash types.Hash, tx *types.SignedTransaction) func(*badger.Txn) error {
	return retrieve(makePrefix(codeTransaction, height, txHash), tx)
}

// IndexTransactionHeight indexes the height of the block holding a
// transaction.
func IndexTransactionHeight(txHash types.Hash, height uint64) func(*badger.Txn) error {
	return insert(makePrefix(codeTransactionHeight, txHash), height)
}

func LookupTransactionHeight(txHash types.Hash, height *uint64) func(*badger.Txn) error {
	return retrieve(makePrefix(codeTransactionHeight, txHash), height)
}
