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

// Receipts stores the receipts of executed blocks.
type Receipts struct {
	db    *badger.DB
	cache *Cache
}

var _ storage.Receipts = (*Receipts)(nil)

func NewReceipts(cacheMetrics module.CacheMetrics, db *badger.DB) *Receipts {
	retrieve := func(key interface{}) (interface{}, error) {
		txHash := key.(types.Hash)
		var receipt types.Receipt
		err := db.View(func(btx *badger.Txn) error {
			var height uint64
			err := operation.LookupReceiptHeight(txHash, &height)(btx)
			if err != nil {
				return err
			}
			return operation.RetrieveReceipt(height, txHash, &receipt)(btx)
		})
		return &receipt, err
	}

	return &Receipts{
		db:    db,
		cache: newCache(cacheMetrics, metrics.ResourceReceipt, withRetrieve(retrieve)),
	}
}

// Insert stores the receipts of the block at the given height. Every
// receipt must belong to that height.
func (r *Receipts) Insert(height uint64, receipts []types.Receipt) error {
	err := r.db.Update(func(btx *badger.Txn) error {
		for i := range receipts {
			if receipts[i].Height != height {
				return errors.Errorf(
					"receipt of transaction %s has height %d, expected %d",
					receipts[i].TxHash.Hex(),
					receipts[i].Height,
					height)
			}
			err := operation.InsertReceipt(&receipts[i])(btx)
			if err != nil {
				return errors.Wrapf(err, "could not insert receipt %s", receipts[i].TxHash.Hex())
			}
			err = operation.IndexReceiptHeight(receipts[i].TxHash, height)(btx)
			if err != nil {
				return errors.Wrapf(err, "could not index receipt %s", receipts[i].TxHash.Hex())
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	for i := range receipts {
		receipt := receipts[i]
		r.cache.Insert(receipt.TxHash, &receipt)
	}
	return nil
}

func (r *Receipts) ByHash(txHash types.Hash) (*types.Receipt, error) {
	receipt, err := r.cache.Get(txHash)
	if err != nil {
		return nil, errors.Wrap(err, "could not retrieve receipt")
	}
	return receipt.(*types.Receipt), nil
}

func (r *Receipts) ByHeightAndHashes(height uint64, txHashes []types.Hash) ([]types.Receipt, error) {
	receipts := make([]types.Receipt, len(txHashes))
	err := r.db.View(func(btx *badger.Txn) error {
		for i, hash := range txHashes {
			err := operation.RetrieveReceipt(height, hash, &receipts[i])(btx)
			if err != nil {
				return errors.Wrapf(err, "could not retrieve receipt %s", hash.Hex())
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return receipts, nil
}
