package authorization_test

import (
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/servicechain/executor/model/types"
	"github.com/servicechain/executor/services/admissioncontrol"
	"github.com/servicechain/executor/services/asset"
	"github.com/servicechain/executor/services/authorization"
	"github.com/servicechain/executor/services/common"
	"github.com/servicechain/executor/utils/unittest"
)

func TestAuthorization_CheckAuthorization(t *testing.T) {
	admin := unittest.AddressFixture()
	h := unittest.NewExecutionHarness(t, unittest.GenesisFixture(t, admin, 1_000_000), nil)

	key := unittest.PrivateKeyFixture(t)
	sender := unittest.AddressOfKey(key)
	unittest.RequireSuccess(t, h.ExecBlock(h.Tx(admin, asset.ServiceName, "transfer", asset.TransferPayload{
		AssetID: unittest.NativeAssetID,
		To:      sender,
		Value:   1_000,
	})))

	hash := unittest.HashFixture()
	payload := func(signed types.Hash, limit uint64) authorization.CheckAuthorizationPayload {
		return authorization.CheckAuthorizationPayload{
			Sender:      sender,
			TxHash:      hash,
			Pubkeys:     []hexutil.Bytes{key.PubKey().SerializeCompressed()},
			Signatures:  []hexutil.Bytes{unittest.SignatureFixture(key, signed)},
			CyclesLimit: limit,
			CyclesPrice: 1,
		}
	}
	check := func(p authorization.CheckAuthorizationPayload) types.ServiceResponse {
		return h.Read(sender, authorization.ServiceName, "check_authorization", p)
	}

	response := check(payload(hash, 100))
	assert.False(t, response.IsError(), response.String())

	response = check(payload(unittest.HashFixture(), 100))
	assert.Equal(t, common.CodeRejected, response.Code)
	assert.Contains(t, response.ErrorMessage, "multi_signature.verify_signature")

	response = check(payload(hash, 10_000))
	assert.Equal(t, common.CodeInsufficientBalance, response.Code)
	assert.Contains(t, response.ErrorMessage, "admission_control.is_permitted")

	receipt := h.ExecBlock(h.Tx(admin, admissioncontrol.ServiceName, "forbid", admissioncontrol.AddressesPayload{
		Addrs: []types.Address{sender},
	}))
	unittest.RequireSuccess(t, receipt)

	response = check(payload(hash, 100))
	assert.Equal(t, common.CodeRejected, response.Code)
	assert.Contains(t, response.ErrorMessage, "admission_control.is_permitted")

	// a read-only service
	resp := h.ExecBlock(h.Tx(sender, authorization.ServiceName, "check_authorization", payload(hash, 100)))
	require.Len(t, resp.Receipts, 1)
	assert.True(t, resp.Receipts[0].Failed())
}
