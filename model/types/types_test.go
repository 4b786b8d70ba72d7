package types_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/servicechain/executor/model/types"
)

func rawTransaction() types.RawTransaction {
	return types.RawTransaction{
		ChainID:     types.Digest([]byte("chain")),
		Nonce:       types.Digest([]byte("nonce")),
		Timeout:     20,
		CyclesPrice: 1,
		CyclesLimit: 100,
		Request: types.TransactionRequest{
			ServiceName: "asset",
			Method:      "transfer",
			Payload:     `{"asset_id":"0x01","to":"0x02","value":100}`,
		},
		Sender: types.AddressFromPubKey([]byte("pubkey")),
	}
}

func TestTransactionHash(t *testing.T) {
	raw := rawTransaction()

	h1, err := raw.Hash()
	require.NoError(t, err)
	h2, err := raw.Hash()
	require.NoError(t, err)
	assert.Equal(t, h1, h2)

	raw.Nonce = types.Digest([]byte("other nonce"))
	h3, err := raw.Hash()
	require.NoError(t, err)
	assert.NotEqual(t, h1, h3)

	signed, err := types.NewSignedTransaction(rawTransaction(), []byte("pubkey"), []byte("sig"))
	require.NoError(t, err)
	require.Equal(t, h1, signed.TxHash)
	require.NoError(t, signed.Verify())

	signed.Raw.CyclesLimit++
	require.Error(t, signed.Verify())
}

func TestMaxFee(t *testing.T) {
	raw := rawTransaction()
	fee, ok := raw.MaxFee()
	require.True(t, ok)
	require.Equal(t, uint64(100), fee)

	raw.CyclesPrice = ^uint64(0)
	_, ok = raw.MaxFee()
	require.False(t, ok)
}

func TestParseAddress(t *testing.T) {
	addr := types.AddressFromPubKey([]byte("pubkey"))

	parsed, err := types.ParseAddress(addr.Hex())
	require.NoError(t, err)
	require.Equal(t, addr, parsed)

	parsed, err = types.ParseAddress(addr.Hex()[2:])
	require.NoError(t, err)
	require.Equal(t, addr, parsed)

	_, err = types.ParseAddress("0x1234")
	require.Error(t, err)

	h := types.Digest([]byte("x"))
	parsedHash, err := types.ParseHash(h.Hex())
	require.NoError(t, err)
	require.Equal(t, h, parsedHash)

	_, err = types.ParseHash("zz")
	require.Error(t, err)
}

func TestServiceResponse(t *testing.T) {
	ok := types.NewSuccessResponse("done")
	require.False(t, ok.IsError())

	failed := types.NewErrorResponse(0, "boom %d", 1)
	require.True(t, failed.IsError())
	require.Equal(t, uint64(1), failed.Code)
	require.Equal(t, "boom 1", failed.ErrorMessage)
}

func TestParseGenesisTOML(t *testing.T) {
	data := []byte(`
timestamp = 0
prevhash = "44915be5b6c20b0678cf05fcddbbaa832e25d7e6ac538784cd5c24de00d47472"

[[services]]
name = "asset"
payload = '''
{ "id": "0xf56924db538e77bb5951eb5ff0d02b88983c49c45eea30e8ae3e7234b311436c", "name": "Native Token", "symbol": "NT", "supply": 1000 }
'''

[[services]]
name = "metadata"
payload = '{"chain_id": "0x01"}'
`)

	genesis, err := types.ParseGenesisTOML(data)
	require.NoError(t, err)
	require.Len(t, genesis.Services, 2)
	require.Equal(t, "asset", genesis.Services[0].Name)
	require.Contains(t, genesis.Services[0].Payload, "Native Token")

	payload, ok := genesis.PayloadOf("metadata")
	require.True(t, ok)
	require.Equal(t, `{"chain_id": "0x01"}`, payload)

	encoded, err := genesis.EncodeTOML()
	require.NoError(t, err)
	decoded, err := types.ParseGenesisTOML(encoded)
	require.NoError(t, err)
	require.Equal(t, genesis, decoded)

	t.Run("duplicate service", func(t *testing.T) {
		_, err := types.ParseGenesisTOML([]byte(`
[[services]]
name = "asset"
payload = "{}"
[[services]]
name = "asset"
payload = "{}"
`))
		require.Error(t, err)
	})
}

func TestBloom(t *testing.T) {
	var bloom types.Bloom
	types.AddEventsToBloom(&bloom, []types.Event{{Service: "asset", Topic: "TransferAsset", Data: "{}"}})
	require.True(t, types.BloomContainsEvent(bloom, "asset", "TransferAsset"))
}

func TestBlockHeaderHash(t *testing.T) {
	header := types.BlockHeader{Height: 1, Timestamp: 10, CyclesLimit: 1000}
	h1, err := header.Hash()
	require.NoError(t, err)

	header.Height = 2
	h2, err := header.Hash()
	require.NoError(t, err)
	require.NotEqual(t, h1, h2)

	params := header.ExecutorParams()
	require.Equal(t, uint64(2), params.Height)
	require.Equal(t, uint64(1000), params.CyclesLimit)

	require.Equal(t, types.ZeroHash, types.ComputeOrderRoot(nil))
	require.NotEqual(t, types.ZeroHash, types.ComputeOrderRoot([]types.Hash{h1, h2}))
}
