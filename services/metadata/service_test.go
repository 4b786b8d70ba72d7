package metadata_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/servicechain/executor/services/common"
	"github.com/servicechain/executor/services/metadata"
	"github.com/servicechain/executor/utils/unittest"
)

func TestMetadata_OnlyGovernanceUpdates(t *testing.T) {
	admin := unittest.AddressFixture()
	h := unittest.NewExecutionHarness(t, unittest.GenesisFixture(t, admin, 1_000_000), nil)

	var current metadata.Metadata
	h.ReadInto(admin, metadata.ServiceName, "get_metadata", "", &current)
	assert.Equal(t, "1", current.Version)
	assert.Equal(t, uint64(unittest.BlockInterval*1000), current.Interval)

	updated := current
	updated.Version = "2"

	resp := h.ExecBlock(h.Tx(admin, metadata.ServiceName, "update_metadata", updated))
	require.Len(t, resp.Receipts, 1)
	require.True(t, resp.Receipts[0].Failed())
	assert.Equal(t, common.CodePermissionDenied, resp.Receipts[0].Response.Code)

	var stored metadata.Metadata
	h.ReadInto(admin, metadata.ServiceName, "get_metadata", "", &stored)
	assert.Equal(t, current, stored)
}
