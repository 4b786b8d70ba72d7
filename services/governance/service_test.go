package governance_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/servicechain/executor/fvm/errors"
	"github.com/servicechain/executor/model/types"
	"github.com/servicechain/executor/services/asset"
	"github.com/servicechain/executor/services/common"
	"github.com/servicechain/executor/services/governance"
	"github.com/servicechain/executor/services/metadata"
	"github.com/servicechain/executor/utils/unittest"
)

func exec(
	t *testing.T,
	h *unittest.ExecutionHarness,
	sender types.Address,
	method string,
	payload interface{},
) types.Receipt {
	resp := h.ExecBlock(h.Tx(sender, governance.ServiceName, method, payload))
	require.Len(t, resp.Receipts, 1)
	return resp.Receipts[0]
}

func TestGovernance_GovernInfo(t *testing.T) {
	admin := unittest.AddressFixture()
	h := unittest.NewExecutionHarness(t, unittest.GenesisFixture(t, admin, 1_000_000), nil)

	var info governance.GovernInfo
	h.ReadInto(admin, governance.ServiceName, "get_govern_info", "", &info)
	assert.Equal(t, governance.GovernInfo{
		Admin:        admin,
		TxFailureFee: 10,
		TxFloorFee:   1,
		NativeAsset:  unittest.NativeAssetID,
	}, info)

	var resp governance.AdminResponse
	h.ReadInto(admin, governance.ServiceName, "get_admin_address", "", &resp)
	assert.Equal(t, admin, resp.Admin)
}

func TestGovernance_SetAdmin(t *testing.T) {
	admin := unittest.AddressFixture()
	next := unittest.AddressFixture()
	h := unittest.NewExecutionHarness(t, unittest.GenesisFixture(t, admin, 1_000_000), nil)

	unittest.RequireSuccess(t, h.ExecBlock(h.Tx(admin, asset.ServiceName, "transfer", asset.TransferPayload{
		AssetID: unittest.NativeAssetID,
		To:      next,
		Value:   1_000,
	})))

	receipt := exec(t, h, next, "set_admin", governance.SetAdminPayload{Admin: next})
	require.True(t, receipt.Failed())
	assert.Equal(t, common.CodePermissionDenied, receipt.Response.Code)

	receipt = exec(t, h, admin, "set_admin", governance.SetAdminPayload{Admin: next})
	require.False(t, receipt.Failed(), receipt.Response.String())
	assert.Equal(t, "set_admin", receipt.Events[0].Topic)

	var resp governance.AdminResponse
	h.ReadInto(admin, governance.ServiceName, "get_admin_address", "", &resp)
	assert.Equal(t, next, resp.Admin)

	// the former admin lost its rights
	receipt = exec(t, h, admin, "set_admin", governance.SetAdminPayload{Admin: admin})
	require.True(t, receipt.Failed())
	assert.Equal(t, common.CodePermissionDenied, receipt.Response.Code)
}

func TestGovernance_UpdateMetadata(t *testing.T) {
	admin := unittest.AddressFixture()
	h := unittest.NewExecutionHarness(t, unittest.GenesisFixture(t, admin, 1_000_000), nil)

	var current metadata.Metadata
	h.ReadInto(admin, metadata.ServiceName, "get_metadata", "", &current)
	assert.Equal(t, uint64(unittest.DefaultBlockCycles), current.CyclesLimit)

	updated := current
	updated.Version = "2"
	updated.CyclesLimit = 2 * unittest.DefaultBlockCycles
	updated.VerifierList = []metadata.Validator{
		{PubKey: "0x02aa", ProposeWeight: 1, VoteWeight: 1},
	}

	receipt := exec(t, h, admin, "update_metadata", updated)
	require.False(t, receipt.Failed(), receipt.Response.String())

	var stored metadata.Metadata
	h.ReadInto(admin, metadata.ServiceName, "get_metadata", "", &stored)
	assert.Equal(t, updated, stored)

	invalid := updated
	invalid.CyclesLimit = 0
	receipt = exec(t, h, admin, "update_metadata", invalid)
	require.True(t, receipt.Failed())
	assert.Equal(t, uint64(errors.ErrCodeInvalidPayloadError), receipt.Response.Code)

	h.ReadInto(admin, metadata.ServiceName, "get_metadata", "", &stored)
	assert.Equal(t, updated, stored)
}
