package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/servicechain/executor/model/types"
	"github.com/servicechain/executor/services/asset"
	"github.com/servicechain/executor/utils/unittest"
)

func run(t *testing.T, args ...string) []byte {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute())
	return out.Bytes()
}

func TestGenesisExecRead(t *testing.T) {
	unittest.RunWithTempDir(t, func(dir string) {
		dataDir := filepath.Join(dir, "data")
		admin := unittest.AddressFixture()
		recipient := unittest.AddressFixture()

		genesis := unittest.GenesisFixture(t, admin, 1_000_000)
		encoded, err := genesis.EncodeTOML()
		require.NoError(t, err)
		genesisFile := filepath.Join(dir, "genesis.toml")
		require.NoError(t, os.WriteFile(genesisFile, encoded, 0o644))

		out := run(t, "genesis", "--genesis", genesisFile, "--data-dir", dataDir, "--log-level", "error")
		var header types.BlockHeader
		require.NoError(t, jsoniter.Unmarshal(out, &header))
		assert.Equal(t, uint64(0), header.Height)
		assert.Equal(t, genesis.Timestamp, header.Timestamp)

		tx := unittest.TransactionFixture(
			unittest.WithSender(admin),
			unittest.WithRequest(
				asset.ServiceName,
				"transfer",
				unittest.Encode(t, asset.TransferPayload{
					AssetID: unittest.NativeAssetID,
					To:      recipient,
					Value:   42,
				})))
		block := types.Block{
			Header: types.BlockHeader{
				Timestamp: genesis.Timestamp + unittest.BlockInterval,
				Proposer:  unittest.AddressFixture(),
			},
			Transactions: []types.SignedTransaction{tx},
		}
		blockJSON, err := jsoniter.Marshal(block)
		require.NoError(t, err)
		blockFile := filepath.Join(dir, "block.json")
		require.NoError(t, os.WriteFile(blockFile, blockJSON, 0o644))

		out = run(t, "exec", "--block", blockFile, "--data-dir", dataDir, "--log-level", "error")
		var resp types.ExecutorResp
		require.NoError(t, jsoniter.Unmarshal(out, &resp))
		require.Len(t, resp.Receipts, 1)
		assert.False(t, resp.Receipts[0].Failed(), resp.Receipts[0].Response.String())
		assert.Equal(t, tx.TxHash, resp.Receipts[0].TxHash)
		assert.Equal(t, uint64(1), resp.Receipts[0].Height)

		payload := unittest.Encode(t, asset.GetBalancePayload{
			AssetID: unittest.NativeAssetID,
			User:    recipient,
		})
		out = run(t,
			"read",
			"--service", asset.ServiceName,
			"--method", "get_balance",
			"--payload", payload,
			"--data-dir", dataDir,
			"--log-level", "error")
		var response types.ServiceResponse
		require.NoError(t, jsoniter.Unmarshal(out, &response))
		require.False(t, response.IsError(), response.String())

		var balance asset.GetBalanceResponse
		require.NoError(t, jsoniter.UnmarshalFromString(response.SucceedData, &balance))
		assert.Equal(t, uint64(42), balance.Balance)
	})
}
