package fvm_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/servicechain/executor/fvm"
	"github.com/servicechain/executor/fvm/errors"
	"github.com/servicechain/executor/ledger/complete"
	"github.com/servicechain/executor/model/types"
	"github.com/servicechain/executor/module/metrics"
	"github.com/servicechain/executor/services/asset"
	"github.com/servicechain/executor/services/servicemapping"
	"github.com/servicechain/executor/utils/unittest"
)

func newLedger(t *testing.T) *complete.Ledger {
	l, err := complete.NewLedger(10, metrics.NewNoopCollector(), unittest.Logger())
	require.NoError(t, err)
	return l
}

func TestCreateGenesis(t *testing.T) {
	admin := unittest.AddressFixture()

	t.Run("is deterministic", func(t *testing.T) {
		genesis := unittest.GenesisFixture(t, admin, 1000)

		first, err := fvm.CreateGenesis(context.Background(), genesis, newLedger(t), servicemapping.NewDefault())
		require.NoError(t, err)
		second, err := fvm.CreateGenesis(context.Background(), genesis, newLedger(t), servicemapping.NewDefault())
		require.NoError(t, err)

		assert.Equal(t, first, second)
	})

	t.Run("initializes the services", func(t *testing.T) {
		h := unittest.NewExecutionHarness(t, unittest.GenesisFixture(t, admin, 1000), nil)

		var native asset.Asset
		h.ReadInto(admin, asset.ServiceName, "get_native_asset", "", &native)
		assert.Equal(t, unittest.NativeAssetID, native.ID)
		assert.Equal(t, uint64(1000), native.Supply)
		assert.Equal(t, admin, native.Issuer)
		assert.Equal(t, uint64(1000), h.NativeBalance(admin))
	})

	t.Run("no services", func(t *testing.T) {
		l := newLedger(t)
		root, err := fvm.CreateGenesis(
			context.Background(),
			&types.Genesis{},
			l,
			servicemapping.NewDefault())
		require.NoError(t, err)
		assert.Equal(t, l.InitialState(), root)
	})

	failures := map[string]*types.Genesis{
		"nil genesis": nil,
		"unknown service": {
			Services: []types.ServiceParam{{Name: "unknown", Payload: "{}"}},
		},
		"invalid payload": {
			Services: []types.ServiceParam{{Name: asset.ServiceName, Payload: "{"}},
		},
		"service without genesis": {
			Services: []types.ServiceParam{{Name: "authorization", Payload: "{}"}},
		},
	}
	for name, genesis := range failures {
		genesis := genesis
		t.Run(name, func(t *testing.T) {
			_, err := fvm.CreateGenesis(context.Background(), genesis, newLedger(t), servicemapping.NewDefault())
			require.Error(t, err)
			assert.True(t, errors.IsGenesisServiceFailure(err))
		})
	}
}

func TestCreateGenesis_FromTOML(t *testing.T) {
	admin := unittest.AddressFixture()

	encoded, err := unittest.GenesisFixture(t, admin, 500).EncodeTOML()
	require.NoError(t, err)

	genesis, err := types.ParseGenesisTOML(encoded)
	require.NoError(t, err)

	h := unittest.NewExecutionHarness(t, genesis, nil)
	assert.Equal(t, uint64(500), h.NativeBalance(admin))
}
