package pathfinder_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/sha3"

	"github.com/servicechain/executor/ledger"
	"github.com/servicechain/executor/ledger/common/pathfinder"
)

func TestKeyToPath(t *testing.T) {
	key := ledger.NewKeyID("asset", "balance")

	path := pathfinder.KeyToPath(key)
	expected := sha3.Sum256([]byte("/0/asset/1/balance"))
	require.Equal(t, ledger.Path(expected), path)

	// namespaces separate otherwise identical keys
	other := pathfinder.KeyToPath(ledger.NewKeyID("kyc", "balance"))
	require.NotEqual(t, path, other)
}

func TestUpdateToTrieUpdate(t *testing.T) {
	k1 := ledger.NewKeyID("asset", "a")
	k2 := ledger.NewKeyID("asset", "b")

	update, err := ledger.NewUpdate(
		ledger.EmptyState,
		[]ledger.KeyID{k1, k2, k1},
		[]ledger.Value{[]byte{1}, []byte{2}, []byte{3}},
	)
	require.NoError(t, err)

	trieUpdate := pathfinder.UpdateToTrieUpdate(update)
	require.Equal(t, 2, trieUpdate.Size())
	require.Equal(t, pathfinder.KeyToPath(k1), trieUpdate.Paths[0])
	require.Equal(t, ledger.Value{3}, trieUpdate.Payloads[0].Value)
	require.Equal(t, ledger.Value{2}, trieUpdate.Payloads[1].Value)
}
