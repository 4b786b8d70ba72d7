package operation

import (
	"github.com/dgraph-io/badger/v2"

	"github.com/servicechain/executor/model/types"
)

func InsertHeader(header *types.BlockHeader) func(*badger.Txn) error {
	return insert(makePrefix(codeHeader, header.Height), header)
}

func RetrieveHeader(height uint64, header *types.BlockHeader) func(*badger.Txn) error {
	return retrieve(makePrefix(codeHeader, height), header)
}

func RemoveHeader(height uint64) func(*badger.Txn) error {
	return remove(makePrefix(codeHeader, height))
}

func HeaderExists(height uint64, found *bool) func(*badger.Txn) error {
	return exists(makePrefix(codeHeader, height), found)
}

// IndexBlockTransactions indexes the ordered transaction hashes of the block
// at the given height.
func IndexBlockTransactions(height uint64, hashes []types.Hash) func(*badger.Txn) error {
	return insert(makePrefix(codeBlockTransactions, height), hashes)
}

func LookupBlockTransactions(height uint64, hashes *[]types.Hash) func(*badger.Txn) error {
	return retrieve(makePrefix(codeBlockTransactions, height), hashes)
}

func RemoveBlockTransactions(height uint64) func(*badger.Txn) error {
	return remove(makePrefix(codeBlockTransactions, height))
}

// UpdateLatestHeight sets the height of the latest executed block.
func UpdateLatestHeight(height uint64) func(*badger.Txn) error {
	return upsert(makePrefix(codeLatestHeight), height)
}

func RetrieveLatestHeight(height *uint64) func(*badger.Txn) error {
	return retrieve(makePrefix(codeLatestHeight), height)
}
