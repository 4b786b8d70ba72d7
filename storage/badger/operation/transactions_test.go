package operation

import (
	"testing"

	"github.com/dgraph-io/badger/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/servicechain/executor/model/types"
	"github.com/servicechain/executor/storage"
	"github.com/servicechain/executor/utils/unittest"
)

func TestTransactionInsertRetrieve(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		tx := unittest.TransactionFixture()

		err := db.Update(func(btx *badger.Txn) error {
			if err := InsertTransaction(3, &tx)(btx); err != nil {
				return err
			}
			return IndexTransactionHeight(tx.TxHash, 3)(btx)
		})
		require.NoError(t, err)

		var height uint64
		require.NoError(t, db.View(LookupTransactionHeight(tx.TxHash, &height)))
		assert.Equal(t, uint64(3), height)

		var actual types.SignedTransaction
		require.NoError(t, db.View(RetrieveTransaction(3, tx.TxHash, &actual)))
		assert.Equal(t, tx, actual)

		err = db.View(RetrieveTransaction(4, tx.TxHash, &actual))
		assert.ErrorIs(t, err, storage.ErrNotFound)

		err = db.Update(InsertTransaction(3, &tx))
		assert.ErrorIs(t, err, storage.ErrAlreadyExists)
	})
}

func TestReceiptInsertRetrieve(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		receipt := types.Receipt{
			StateRoot:   unittest.HashFixture(),
			Height:      9,
			TxHash:      unittest.HashFixture(),
			CyclesUsed:  10,
			Events:      []types.Event{{Service: "asset", Topic: "transfer", Data: "{}"}},
			ServiceName: "asset",
			Method:      "transfer",
			Response:    types.NewErrorResponse(105, "insufficient balance"),
		}

		err := db.Update(func(btx *badger.Txn) error {
			if err := InsertReceipt(&receipt)(btx); err != nil {
				return err
			}
			return IndexReceiptHeight(receipt.TxHash, receipt.Height)(btx)
		})
		require.NoError(t, err)

		var height uint64
		require.NoError(t, db.View(LookupReceiptHeight(receipt.TxHash, &height)))
		assert.Equal(t, receipt.Height, height)

		var actual types.Receipt
		require.NoError(t, db.View(RetrieveReceipt(9, receipt.TxHash, &actual)))
		assert.Equal(t, receipt, actual)
	})
}

func TestLatestProof(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		var actual types.Proof
		err := db.View(RetrieveLatestProof(&actual))
		assert.ErrorIs(t, err, storage.ErrNotFound)

		for height := uint64(1); height <= 2; height++ {
			expected := types.Proof{
				Height:    height,
				Round:     1,
				BlockHash: unittest.HashFixture(),
				Signature: unittest.RandomBytes(64),
				Bitmap:    []byte{0x07},
			}
			require.NoError(t, db.Update(UpdateLatestProof(&expected)))
			require.NoError(t, db.View(RetrieveLatestProof(&actual)))
			assert.Equal(t, expected, actual)
		}
	})
}
