package operation

import (
	"github.com/dgraph-io/badger/v2"

	"github.com/servicechain/executor/model/types"
)

// InsertReceipt inserts a receipt keyed by its height and the hash of its
// transaction.
func InsertReceipt(receipt *types.Receipt) func(*badger.Txn) error {
	return insert(makePrefix(codeReceipt, receipt.Height, receipt.TxHash), receipt)
}

func RetrieveReceipt(height uint64, txHash types.Hash, receipt *types.Receipt) func(*badger.Txn) error {
	return retrieve(makePrefix(codeReceipt, height, txHash), receipt)
}

func IndexReceiptHeight(txHash types.Hash, height uint64) func(*badger.Txn) error {
	return insert(makePrefix(codeReceiptHeight, txHash), height)
}

func LookupReceiptHeight(txHash types.Hash, height *uint64) func(*badger.Txn) error {
	return retrieve(makePrefix(codeReceiptHeight, txHash), height)
}
