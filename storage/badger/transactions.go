package badger

import (
	"github.com/dgraph-io/badger/v2"
	"github.com/pkg/errors"

	"github.com/servicechain/executor/model/types"
	"github.com/servicechain/executor/module"
	"github.com/servicechain/executor/module/metrics"
	"github.com/servicechain/executor/storage"
	"github.com/servicechain/executor/storage/badger/operation"
)

// Transactions stores the transactions of executed blocks.
type Transactions struct {
	db    *badger.DB
	cache *Cache
}

var _ storage.Transactions = (*Transactions)(nil)

func NewTransactions(cacheMetrics module.CacheMetrics, db *badger.DB) *Transactions {
	retrieve := func(key interface{}) (interface{}, error) {
		txHash := key.(types.Hash)
		var tx types.SignedTransaction
		err := db.View(func(btx *badger.Txn) error {
			var height uint64
			err := operation.LookupTransactionHeight(txHash, &height)(btx)
			if err != nil {
				return err
			}
			return operation.RetrieveTransaction(height, txHash, &tx)(btx)
		})
		return &tx, err
	}

	return &Transactions{
		db:    db,
		cache: newCache(cacheMetrics, metrics.ResourceTransaction, withRetrieve(retrieve)),
	}
}

func (t *Transactions) Insert(height uint64, txs []types.SignedTransaction) error {
	err := t.db.Update(func(btx *badger.Txn) error {
		for i := range txs {
			err := operation.InsertTransaction(height, &txs[i])(btx)
			if err != nil {
				return errors.Wrapf(err, "could not insert transaction %s", txs[i].TxHash.Hex())
			}
			err = operation.IndexTransactionHeight(txs[i].TxHash, height)(btx)
			if err != nil {
				return errors.Wrapf(err, "could not index transaction %s", txs[i].TxHash.Hex())
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	for i := range txs {
		tx := txs[i]
		t.cache.Insert(tx.TxHash, &tx)
	}
	return nil
}

func (t *Transactions) ByHash(hash types.Hash) (*types.SignedTransaction, error) {
	tx, err := t.cache.Get(hash)
	if err != nil {
		return nil, errors.Wrap(err, "could not retrieve transaction")
	}
	return tx.(*types.SignedTransaction), nil
}

func (t *Transactions) ByHeightAndHashes(height uint64, hashes []types.Hash) ([]types.SignedTransaction, error) {
	txs := make([]types.SignedTransaction, len(hashes))
	err := t.db.View(func(btx *badger.Txn) error {
		for i, hash := range hashes {
			err := operation.RetrieveTransaction(height, hash, &txs[i])(btx)
			if err != nil {
				return errors.Wrapf(err, "could not retrieve transaction %s", hash.Hex())
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return txs, nil
}
