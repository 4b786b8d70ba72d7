package encoding_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/servicechain/executor/ledger"
	"github.com/servicechain/executor/ledger/common/encoding"
	"github.com/servicechain/executor/ledger/common/pathfinder"
	"github.com/servicechain/executor/ledger/common/testutils"
	"github.com/servicechain/executor/ledger/complete/mtrie/trie"
)

func TestBatchProofEncoding(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	paths := testutils.RandomPaths(rng, 12)
	payloads := testutils.RandomPayloads(rng, 8, 1, 10)

	tr, err := trie.NewTrieWithUpdatedRegisters(trie.NewEmptyMTrie(), paths[:8], payloads)
	require.NoError(t, err)

	bp := tr.ProveBatch(paths)
	encoded, err := encoding.EncodeTrieBatchProof(bp)
	require.NoError(t, err)

	decoded, err := encoding.DecodeTrieBatchProof(encoded)
	require.NoError(t, err)
	require.Equal(t, bp.Size(), decoded.Size())
	require.True(t, ledger.VerifyTrieBatchProof(decoded, tr.RootHash()))

	// canonical encoding is stable
	again, err := encoding.EncodeTrieBatchProof(decoded)
	require.NoError(t, err)
	require.Equal(t, encoded, again)
}

func TestDecodeMalformedProof(t *testing.T) {
	_, err := encoding.DecodeTrieBatchProof([]byte{0xff, 0x00})
	require.Error(t, err)
}

func TestBatchProofEncoding_BinaryKeys(t *testing.T) {
	keys := []ledger.KeyID{
		ledger.NewKeyID("vm", "storage/\xff\xfe"),
		ledger.NewKeyID("\xc3\x28", "\x00\x80"),
	}
	paths := make([]ledger.Path, 0, len(keys))
	payloads := make([]ledger.Payload, 0, len(keys))
	for _, key := range keys {
		paths = append(paths, pathfinder.KeyToPath(key))
		payloads = append(payloads, *ledger.NewPayload(key, []byte("v")))
	}

	tr, err := trie.NewTrieWithUpdatedRegisters(trie.NewEmptyMTrie(), paths, payloads)
	require.NoError(t, err)

	encoded, err := encoding.EncodeTrieBatchProof(tr.ProveBatch(paths))
	require.NoError(t, err)

	decoded, err := encoding.DecodeTrieBatchProof(encoded)
	require.NoError(t, err)
	require.True(t, ledger.VerifyTrieBatchProof(decoded, tr.RootHash()))
	for i, p := range decoded.Proofs {
		require.True(t, p.Inclusion)
		require.Equal(t, keys[i], p.Payload.Key)
		require.Equal(t, ledger.Value("v"), p.Payload.Value)
	}
}
