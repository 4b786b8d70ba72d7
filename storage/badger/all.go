package badger

import (
	"github.com/dgraph-io/badger/v2"

	"github.com/servicechain/executor/module"
	"github.com/servicechain/executor/storage"
)

func InitAll(metrics module.CacheMetrics, db *badger.DB) *storage.All {
	return &storage.All{
		Transactions: NewTransactions(metrics, db),
		Receipts:     NewReceipts(metrics, db),
		Blocks:       NewBlocks(metrics, db),
		Proofs:       NewProofs(db),
	}
}
