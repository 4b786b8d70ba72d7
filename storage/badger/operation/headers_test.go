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

func TestHeaderInsertCheckRetrieve(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		expected := types.BlockHeader{
			ChainID:       unittest.HashFixture(),
			Height:        42,
			PrevHash:      unittest.HashFixture(),
			Timestamp:     1_600_000_000,
			Proposer:      unittest.AddressFixture(),
			CyclesLimit:   1_000_000,
			PrevStateRoot: unittest.HashFixture(),
			StateRoot:     unittest.HashFixture(),
			CyclesUsed:    123,
		}
		types.AddEventsToBloom(&expected.LogsBloom, []types.Event{{Service: "asset", Topic: "transfer"}})

		err := db.Update(InsertHeader(&expected))
		require.NoError(t, err)

		var found bool
		err = db.View(HeaderExists(42, &found))
		require.NoError(t, err)
		assert.True(t, found)

		var actual types.BlockHeader
		err = db.View(RetrieveHeader(42, &actual))
		require.NoError(t, err)
		assert.Equal(t, expected, actual)

		err = db.Update(InsertHeader(&expected))
		assert.ErrorIs(t, err, storage.ErrAlreadyExists)

		err = db.Update(RemoveHeader(42))
		require.NoError(t, err)

		err = db.View(HeaderExists(42, &found))
		require.NoError(t, err)
		assert.False(t, found)

		err = db.View(RetrieveHeader(42, &actual))
		assert.ErrorIs(t, err, storage.ErrNotFound)

		err = db.Update(RemoveHeader(42))
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestLatestHeight(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		var height uint64
		err := db.View(RetrieveLatestHeight(&height))
		assert.ErrorIs(t, err, storage.ErrNotFound)

		for _, expected := range []uint64{0, 7, 3} {
			require.NoError(t, db.Update(UpdateLatestHeight(expected)))
			require.NoError(t, db.View(RetrieveLatestHeight(&height)))
			assert.Equal(t, expected, height)
		}
	})
}

func TestBlockTransactionsIndex(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		expected := []types.Hash{unittest.HashFixture(), unittest.HashFixture(), unittest.HashFixture()}

		require.NoError(t, db.Update(IndexBlockTransactions(5, expected)))

		var actual []types.Hash
		require.NoError(t, db.View(LookupBlockTransactions(5, &actual)))
		assert.Equal(t, expected, actual)

		require.NoError(t, db.Update(RemoveBlockTransactions(5)))
		err := db.View(LookupBlockTransactions(5, &actual))
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestCodecRejectsUncompressedValue(t *testing.T) {
	var height uint64
	err := decodeValue([]byte{0xff, 0xff, 0xff}, &height)
	assert.ErrorIs(t, err, errUncompressedValue)
}
