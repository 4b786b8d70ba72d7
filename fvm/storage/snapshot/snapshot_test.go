package snapshot_test

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/servicechain/executor/fvm/storage/snapshot"
	"github.com/servicechain/executor/ledger"
	"github.com/servicechain/executor/ledger/complete"
	"github.com/servicechain/executor/module/metrics"
)

func TestExecutionSnapshot_UpdatedRegistersAreSorted(t *testing.T) {
	s := snapshot.NewExecutionSnapshot()
	s.WriteSet[ledger.NewKeyID("kyc", "b")] = []byte("1")
	s.WriteSet[ledger.NewKeyID("asset", "z")] = []byte("2")
	s.WriteSet[ledger.NewKeyID("kyc", "a")] = []byte("3")
	s.WriteSet[ledger.NewKeyID("asset", "a")] = nil
	s.ReadSet[ledger.NewKeyID("timestamp", "t")] = struct{}{}
	s.ReadSet[ledger.NewKeyID("asset", "z")] = struct{}{}

	require.Equal(
		t,
		[]snapshot.RegisterID{
			ledger.NewKeyID("asset", "a"),
			ledger.NewKeyID("asset", "z"),
			ledger.NewKeyID("kyc", "a"),
			ledger.NewKeyID("kyc", "b"),
		},
		s.UpdatedRegisterIDs())

	entries := s.UpdatedRegisters()
	require.Len(t, entries, 4)
	require.Equal(t, snapshot.RegisterValue("2"), entries[1].Value)

	require.Equal(
		t,
		[]snapshot.RegisterID{
			ledger.NewKeyID("asset", "z"),
			ledger.NewKeyID("timestamp", "t"),
		},
		s.ReadRegisterIDs())

	require.Len(t, s.AllRegisterIDs(), 5)

	update, err := s.Update(ledger.EmptyState)
	require.NoError(t, err)
	require.Equal(t, 4, update.Size())
	require.Equal(t, ledger.NewKeyID("asset", "a"), update.Keys()[0])
}

func TestLedgerSnapshot(t *testing.T) {
	l, err := complete.NewLedger(10, metrics.NewNoopCollector(), zerolog.Nop())
	require.NoError(t, err)

	batch := l.BeginWrite(l.InitialState())
	batch.Put("asset", "balance", []byte("100"))
	root, err := batch.Commit()
	require.NoError(t, err)

	s := snapshot.NewLedgerSnapshot(l, root)
	require.Equal(t, root, s.State())

	v, err := s.Get(ledger.NewKeyID("asset", "balance"))
	require.NoError(t, err)
	require.Equal(t, snapshot.RegisterValue("100"), v)

	v, err = s.Get(ledger.NewKeyID("asset", "missing"))
	require.NoError(t, err)
	require.Empty(t, v)

	// unknown roots fail
	_, err = snapshot.NewLedgerSnapshot(l, ledger.DummyState).Get(ledger.NewKeyID("asset", "balance"))
	require.Error(t, err)
	require.True(t, ledger.IsStateNotFound(err))
}
