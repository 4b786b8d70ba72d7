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

// Blocks stores block headers and the ordered hashes of their
// transactions. Transactions themselves are read from Transactions.
type Blocks struct {
	db      *badger.DB
	headers *Cache
}

var _ storage.Blocks = (*Blocks)(nil)

func NewBlocks(cacheMetrics module.CacheMetrics, db *badger.DB) *Blocks {
	retrieve := func(key interface{}) (interface{}, error) {
		height := key.(uint64)
		var header types.BlockHeader
		err := db.View(operation.RetrieveHeader(height, &header))
		return &header, err
	}

	return &Blocks{
		db:      db,
		headers: newCache(cacheMetrics, metrics.ResourceHeader, withRetrieve(retrieve)),
	}
}

func (b *Blocks) Insert(block *types.Block) error {
	height := block.Header.Height
	err := b.db.Update(func(btx *badger.Txn) error {
		err := operation.InsertHeader(&block.Header)(btx)
		if err != nil {
			return errors.Wrap(err, "could not insert header")
		}
		err = operation.IndexBlockTransactions(height, block.TransactionHashes())(btx)
		if err != nil {
			return errors.Wrap(err, "could not index block transactions")
		}
		return nil
	})
	if err != nil {
		return err
	}

	header := block.Header
	b.headers.Insert(height, &header)
	return nil
}

func (b *Blocks) HeaderByHeight(height uint64) (*types.BlockHeader, error) {
	header, err := b.headers.Get(height)
	if err != nil {
		return nil, errors.Wrapf(err, "could not retrieve header %d", height)
	}
	return header.(*types.BlockHeader), nil
}

func (b *Blocks) ByHeight(height uint64) (*types.Block, error) {
	header, err := b.HeaderByHeight(height)
	if err != nil {
		return nil, err
	}

	block := &types.Block{Header: *header}
	err = b.db.View(func(btx *badger.Txn) error {
		var hashes []types.Hash
		err := operation.LookupBlockTransactions(height, &hashes)(btx)
		if err != nil {
			return errors.Wrap(err, "could not lookup block transactions")
		}

		block.Transactions = make([]types.SignedTransaction, len(hashes))
		for i, hash := range hashes {
			err = operation.RetrieveTransaction(height, hash, &block.Transactions[i])(btx)
			if err != nil {
				return errors.Wrapf(err, "could not retrieve transaction %s", hash.Hex())
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return block, nil
}

func (b *Blocks) SetLatest(height uint64) error {
	return b.db.Update(func(btx *badger.Txn) error {
		var found bool
		err := operation.HeaderExists(height, &found)(btx)
		if err != nil {
			return err
		}
		if !found {
			return errors.Wrapf(storage.ErrNotFound, "no block at height %d", height)
		}
		return operation.UpdateLatestHeight(height)(btx)
	})
}

func (b *Blocks) latestHeight() (uint64, error) {
	var height uint64
	err := b.db.View(operation.RetrieveLatestHeight(&height))
	if err != nil {
		return 0, errors.Wrap(err, "could not retrieve latest height")
	}
	return height, nil
}

func (b *Blocks) Latest() (*types.Block, error) {
	height, err := b.latestHeight()
	if err != nil {
		return nil, err
	}
	return b.ByHeight(height)
}

func (b *Blocks) LatestHeader() (*types.BlockHeader, error) {
	height, err := b.latestHeight()
	if err != nil {
		return nil, err
	}
	return b.HeaderByHeight(height)
}

// Remove deletes the header and the transaction index of the block at the
// given height. The latest block cannot be removed.
func (b *Blocks) Remove(height uint64) error {
	err := b.db.Update(func(btx *badger.Txn) error {
		var latest uint64
		err := operation.RetrieveLatestHeight(&latest)(btx)
		if err == nil && latest == height {
			return errors.Errorf("cannot remove latest block %d", height)
		}
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			return err
		}

		err = operation.RemoveHeader(height)(btx)
		if err != nil {
			return errors.Wrap(err, "could not remove header")
		}
		err = operation.RemoveBlockTransactions(height)(btx)
		if err != nil {
			return errors.Wrap(err, "could not remove block transactions")
		}
		return nil
	})
	if err != nil {
		return err
	}

	b.headers.Remove(height)
	return nil
}
