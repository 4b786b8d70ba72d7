package badger_test

import (
	"testing"

	"github.com/dgraph-io/badger/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/servicechain/executor/model/types"
	"github.com/servicechain/executor/module/metrics"
	"github.com/servicechain/executor/storage"
	bstorage "github.com/servicechain/executor/storage/badger"
	"github.com/servicechain/executor/utils/unittest"
)

func blockFixture(height uint64, txs ...types.SignedTransaction) *types.Block {
	block := &types.Block{
		Header: types.BlockHeader{
			ChainID:       unittest.HashFixture(),
			Height:        height,
			PrevHash:      unittest.HashFixture(),
			Timestamp:     unittest.GenesisTimestamp + height*unittest.BlockInterval,
			Proposer:      unittest.AddressFixture(),
			CyclesLimit:   unittest.DefaultBlockCycles,
			PrevStateRoot: unittest.HashFixture(),
			StateRoot:     unittest.HashFixture(),
		},
		Transactions: txs,
	}
	block.Header.OrderRoot = types.ComputeOrderRoot(block.TransactionHashes())
	return block
}

func TestBlocks_InsertRetrieve(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		all := bstorage.InitAll(metrics.NewNoopCollector(), db)

		txs := []types.SignedTransaction{unittest.TransactionFixture(), unittest.TransactionFixture()}
		block := blockFixture(1, txs...)

		require.NoError(t, all.Transactions.Insert(1, txs))
		require.NoError(t, all.Blocks.Insert(block))

		header, err := all.Blocks.HeaderByHeight(1)
		require.NoError(t, err)
		assert.Equal(t, block.Header, *header)

		actual, err := all.Blocks.ByHeight(1)
		require.NoError(t, err)
		assert.Equal(t, block, actual)

		err = all.Blocks.Insert(block)
		assert.ErrorIs(t, err, storage.ErrAlreadyExists)

		_, err = all.Blocks.ByHeight(2)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestBlocks_Latest(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		blocks := bstorage.NewBlocks(metrics.NewNoopCollector(), db)

		_, err := blocks.Latest()
		assert.ErrorIs(t, err, storage.ErrNotFound)

		err = blocks.SetLatest(0)
		assert.ErrorIs(t, err, storage.ErrNotFound)

		genesis := blockFixture(0)
		require.NoError(t, blocks.Insert(genesis))
		require.NoError(t, blocks.SetLatest(0))

		latest, err := blocks.Latest()
		require.NoError(t, err)
		assert.Equal(t, genesis.Header, latest.Header)
		assert.Empty(t, latest.Transactions)

		next := blockFixture(1)
		require.NoError(t, blocks.Insert(next))
		require.NoError(t, blocks.SetLatest(1))

		header, err := blocks.LatestHeader()
		require.NoError(t, err)
		assert.Equal(t, next.Header, *header)
	})
}

func TestBlocks_Remove(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		blocks := bstorage.NewBlocks(metrics.NewNoopCollector(), db)

		for height := uint64(0); height < 3; height++ {
			require.NoError(t, blocks.Insert(blockFixture(height)))
		}
		require.NoError(t, blocks.SetLatest(2))

		// cached by the lookup
		_, err := blocks.HeaderByHeight(1)
		require.NoError(t, err)

		require.NoError(t, blocks.Remove(1))
		_, err = blocks.HeaderByHeight(1)
		assert.ErrorIs(t, err, storage.ErrNotFound)

		assert.Error(t, blocks.Remove(2))
		assert.ErrorIs(t, blocks.Remove(1), storage.ErrNotFound)
	})
}

func TestTransactions_ByHash(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		transactions := bstorage.NewTransactions(metrics.NewNoopCollector(), db)

		txs := []types.SignedTransaction{
			unittest.TransactionFixture(),
			unittest.TransactionFixture(),
			unittest.TransactionFixture(),
		}
		require.NoError(t, transactions.Insert(7, txs))

		// a fresh store reads through the database
		fresh := bstorage.NewTransactions(metrics.NewNoopCollector(), db)
		for _, store := range []storage.Transactions{transactions, fresh} {
			for _, tx := range txs {
				actual, err := store.ByHash(tx.TxHash)
				require.NoError(t, err)
				assert.Equal(t, tx, *actual)
			}
		}

		hashes := []types.Hash{txs[2].TxHash, txs[0].TxHash}
		actual, err := fresh.ByHeightAndHashes(7, hashes)
		require.NoError(t, err)
		assert.Equal(t, []types.SignedTransaction{txs[2], txs[0]}, actual)

		_, err = fresh.ByHeightAndHashes(8, hashes)
		assert.ErrorIs(t, err, storage.ErrNotFound)

		_, err = fresh.ByHash(unittest.HashFixture())
		assert.ErrorIs(t, err, storage.ErrNotFound)

		err = transactions.Insert(8, txs[:1])
		assert.ErrorIs(t, err, storage.ErrAlreadyExists)
	})
}

func TestReceipts_InsertRetrieve(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		receipts := bstorage.NewReceipts(metrics.NewNoopCollector(), db)

		expected := []types.Receipt{
			{
				Height:      4,
				TxHash:      unittest.HashFixture(),
				CyclesUsed:  10,
				Events:      []types.Event{{Service: "asset", Topic: "transfer", Data: "{}"}},
				ServiceName: "asset",
				Method:      "transfer",
				Response:    types.NewSuccessResponse(""),
			},
			{
				Height:      4,
				TxHash:      unittest.HashFixture(),
				CyclesUsed:  6,
				Events:      []types.Event{{Service: "asset", Topic: "transfer_fee", Data: "{}"}},
				ServiceName: "asset",
				Method:      "transfer",
				Response:    types.NewErrorResponse(1110, "cycles exhausted"),
			},
		}
		require.NoError(t, receipts.Insert(4, expected))

		fresh := bstorage.NewReceipts(metrics.NewNoopCollector(), db)
		actual, err := fresh.ByHash(expected[1].TxHash)
		require.NoError(t, err)
		assert.Equal(t, expected[1], *actual)

		all, err := fresh.ByHeightAndHashes(4, []types.Hash{expected[0].TxHash, expected[1].TxHash})
		require.NoError(t, err)
		assert.Equal(t, expected, all)

		mismatch := expected[0]
		mismatch.TxHash = unittest.HashFixture()
		err = receipts.Insert(5, []types.Receipt{mismatch})
		assert.Error(t, err)
	})
}

func TestProofs_Latest(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		proofs := bstorage.NewProofs(db)

		_, err := proofs.Latest()
		assert.ErrorIs(t, err, storage.ErrNotFound)

		proof := &types.Proof{Height: 3, Round: 0, BlockHash: unittest.HashFixture()}
		require.NoError(t, proofs.UpdateLatest(proof))

		actual, err := proofs.Latest()
		require.NoError(t, err)
		assert.Equal(t, proof, actual)
	})
}
