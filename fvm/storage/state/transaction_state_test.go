package state_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/servicechain/executor/fvm/errors"
	"github.com/servicechain/executor/fvm/meter"
	"github.com/servicechain/executor/fvm/storage/snapshot"
	"github.com/servicechain/executor/fvm/storage/state"
	"github.com/servicechain/executor/ledger"
)

func newTestTransactionState() *state.TransactionState {
	return state.NewTransactionState(
		nil,
		state.DefaultParameters(),
	)
}

func TestUnrestrictedNestedTransactionBasic(t *testing.T) {
	txn := newTestTransactionState()

	mainState := txn.NumNestedTransactions()
	require.Equal(t, 0, mainState)

	id1, err := txn.BeginNestedTransaction()
	require.NoError(t, err)

	require.Equal(t, 1, txn.NumNestedTransactions())
	require.True(t, txn.IsCurrent(id1))

	id2, err := txn.BeginNestedTransaction()
	require.NoError(t, err)

	require.Equal(t, 2, txn.NumNestedTransactions())
	require.False(t, txn.IsCurrent(id1))
	require.True(t, txn.IsCurrent(id2))

	// Set a value in the nested transaction
	key := ledger.NewKeyID("asset", "key")
	val := createByteArray(2)

	err = txn.Set(key, val)
	require.NoError(t, err)

	v, err := id2.StateForTestingOnly().Get(key)
	require.NoError(t, err)
	require.Equal(t, snapshot.RegisterValue(val), v)

	v, err = id1.StateForTestingOnly().Get(key)
	require.NoError(t, err)
	require.Nil(t, v)

	// Ensure nested transactions are merged correctly
	_, err = txn.CommitNestedTransaction(id2)
	require.NoError(t, err)

	require.Equal(t, 1, txn.NumNestedTransactions())
	require.True(t, txn.IsCurrent(id1))

	v, err = id1.StateForTestingOnly().Get(key)
	require.NoError(t, err)
	require.Equal(t, snapshot.RegisterValue(val), v)

	_, err = txn.CommitNestedTransaction(id1)
	require.NoError(t, err)

	require.Equal(t, 0, txn.NumNestedTransactions())

	executionSnapshot, err := txn.FinalizeMainTransaction()
	require.NoError(t, err)
	require.Equal(
		t,
		[]snapshot.RegisterEntry{{Key: key, Value: val}},
		executionSnapshot.UpdatedRegisters())
}

func TestCommitUnexpectedNestedTransaction(t *testing.T) {
	txn := newTestTransactionState()

	id1, err := txn.BeginNestedTransaction()
	require.NoError(t, err)

	_, err = txn.BeginNestedTransaction()
	require.NoError(t, err)

	_, err = txn.CommitNestedTransaction(id1)
	require.Error(t, err)
	require.True(t, errors.IsFailure(err))
	require.Equal(t, 2, txn.NumNestedTransactions())

	_, err = txn.FinalizeMainTransaction()
	require.Error(t, err)
}

func TestAbortNestedTransaction(t *testing.T) {
	txn := newTestTransactionState()

	key := ledger.NewKeyID("kyc", "key")

	id, err := txn.BeginNestedTransaction()
	require.NoError(t, err)

	require.NoError(t, txn.Set(key, createByteArray(3)))
	require.NoError(t, txn.AbortNestedTransaction(id))

	v, err := txn.Get(key)
	require.NoError(t, err)
	require.Nil(t, v)
	require.Equal(t, 0, txn.NumNestedTransactions())
}

func TestRestartNestedTransaction(t *testing.T) {
	txn := newTestTransactionState()

	key := ledger.NewKeyID("asset", "balance")

	id, m, err := txn.BeginNestedTransactionWithMeter(10)
	require.NoError(t, err)

	require.NoError(t, txn.Set(key, createByteArray(1)))
	require.NoError(t, txn.MeterComputation(meter.ComputationKindSetValue, 4))

	_, err = txn.BeginNestedTransaction()
	require.NoError(t, err)

	require.NoError(t, txn.Set(key, createByteArray(2)))
	require.NoError(t, txn.MeterComputation(meter.ComputationKindSetValue, 2))

	err = txn.RestartNestedTransaction(id)
	require.NoError(t, err)

	require.Equal(t, 1, txn.NumNestedTransactions())
	require.True(t, txn.IsCurrent(id))

	// changes are dropped, spent cycles are not
	v, err := txn.Get(key)
	require.NoError(t, err)
	require.Nil(t, v)
	require.Equal(t, uint64(6), m.TotalComputationUsed())
	require.Equal(t, uint64(6), txn.TotalComputationUsed())

	// the restarted transaction is usable and committable
	require.NoError(t, txn.Set(key, createByteArray(5)))
	_, err = txn.CommitNestedTransaction(id)
	require.NoError(t, err)

	executionSnapshot, err := txn.FinalizeMainTransaction()
	require.NoError(t, err)
	require.Equal(t, snapshot.RegisterValue(createByteArray(5)), executionSnapshot.WriteSet[key])
}

func TestRestartUnknownNestedTransaction(t *testing.T) {
	txn := newTestTransactionState()

	other := newTestTransactionState()
	id, err := other.BeginNestedTransaction()
	require.NoError(t, err)

	_, err = txn.BeginNestedTransaction()
	require.NoError(t, err)

	err = txn.RestartNestedTransaction(id)
	require.Error(t, err)
	require.Equal(t, 1, txn.NumNestedTransactions())
}

func TestNestedTransactionMeterIsolation(t *testing.T) {
	txn := newTestTransactionState()

	first, m1, err := txn.BeginNestedTransactionWithMeter(3)
	require.NoError(t, err)

	require.NoError(t, txn.MeterComputation(meter.ComputationKindGetValue, 3))
	_, err = txn.CommitNestedTransaction(first)
	require.NoError(t, err)

	_, m2, err := txn.BeginNestedTransactionWithMeter(3)
	require.NoError(t, err)
	require.NoError(t, txn.MeterComputation(meter.ComputationKindGetValue, 1))

	require.Equal(t, uint64(3), m1.TotalComputationUsed())
	require.Equal(t, uint64(1), m2.TotalComputationUsed())
}
