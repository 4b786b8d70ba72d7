package multisignature_test

import (
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/servicechain/executor/model/types"
	"github.com/servicechain/executor/services/asset"
	"github.com/servicechain/executor/services/common"
	"github.com/servicechain/executor/services/multisignature"
	"github.com/servicechain/executor/utils/unittest"
)

func TestVerifySignature(t *testing.T) {
	key := unittest.PrivateKeyFixture(t)
	hash := unittest.HashFixture()
	sig := unittest.SignatureFixture(key, hash)
	pub := key.PubKey().SerializeCompressed()

	signer, err := multisignature.VerifySignature(hash, pub, sig)
	require.NoError(t, err)
	assert.Equal(t, unittest.AddressOfKey(key), signer)

	_, err = multisignature.VerifySignature(unittest.HashFixture(), pub, sig)
	assert.Error(t, err)

	other := unittest.PrivateKeyFixture(t)
	_, err = multisignature.VerifySignature(hash, other.PubKey().SerializeCompressed(), sig)
	assert.Error(t, err)

	_, err = multisignature.VerifySignature(hash, []byte{0x02, 0x01}, sig)
	assert.Error(t, err)

	_, err = multisignature.VerifySignature(hash, pub, []byte{0x30, 0x00})
	assert.Error(t, err)
}

type multisigSuite struct {
	*unittest.ExecutionHarness
	t *testing.T

	admin types.Address
	keys  []*btcec.PrivateKey
}

func newMultisigSuite(t *testing.T) *multisigSuite {
	admin := unittest.AddressFixture()
	s := &multisigSuite{
		ExecutionHarness: unittest.NewExecutionHarness(t, unittest.GenesisFixture(t, admin, 1_000_000), nil),
		t:                t,
		admin:            admin,
	}
	for i := 0; i < 3; i++ {
		key := unittest.PrivateKeyFixture(t)
		s.keys = append(s.keys, key)
		receipt := s.exec(admin, asset.ServiceName, "transfer", asset.TransferPayload{
			AssetID: unittest.NativeAssetID,
			To:      unittest.AddressOfKey(key),
			Value:   1_000,
		})
		require.False(t, receipt.Failed(), receipt.Response.String())
	}
	return s
}

func (s *multisigSuite) exec(sender types.Address, service string, method string, payload interface{}) types.Receipt {
	resp := s.ExecBlock(s.Tx(sender, service, method, payload))
	require.Len(s.t, resp.Receipts, 1)
	return resp.Receipts[0]
}

func (s *multisigSuite) owner(i int) types.Address {
	return unittest.AddressOfKey(s.keys[i])
}

// generate creates an account owned by the suite keys with weights 1, 1
// and 2, and threshold 2.
func (s *multisigSuite) generate() types.Address {
	receipt := s.exec(s.admin, multisignature.ServiceName, "generate_account", multisignature.GenerateAccountPayload{
		Owners: []multisignature.Owner{
			{Address: s.owner(0), Weight: 1},
			{Address: s.owner(1), Weight: 1},
			{Address: s.owner(2), Weight: 2},
		},
		Threshold: 2,
		Memo:      "treasury",
	})
	require.False(s.t, receipt.Failed(), receipt.Response.String())

	var resp multisignature.GenerateAccountResponse
	require.NoError(s.t, common.DecodeResponse(receipt.Response, &resp))
	return resp.Address
}

func (s *multisigSuite) account(address types.Address) multisignature.Account {
	var account multisignature.Account
	s.ReadInto(s.admin, multisignature.ServiceName, "get_account_from_address", multisignature.GetAccountPayload{
		Address: address,
	}, &account)
	return account
}

func (s *multisigSuite) verify(sender types.Address, hash types.Hash, signers ...int) types.ServiceResponse {
	payload := multisignature.VerifySignaturePayload{
		Sender: sender,
		TxHash: hash,
	}
	for _, i := range signers {
		payload.Pubkeys = append(payload.Pubkeys, hexutil.Bytes(s.keys[i].PubKey().SerializeCompressed()))
		payload.Signatures = append(payload.Signatures, hexutil.Bytes(unittest.SignatureFixture(s.keys[i], hash)))
	}
	return s.Read(sender, multisignature.ServiceName, "verify_signature", payload)
}

func TestMultiSignature_SingleSignature(t *testing.T) {
	s := newMultisigSuite(t)
	hash := unittest.HashFixture()

	response := s.verify(s.owner(0), hash, 0)
	assert.False(t, response.IsError(), response.String())

	response = s.verify(s.owner(1), hash, 0)
	assert.Equal(t, common.CodeRejected, response.Code)

	response = s.verify(s.owner(0), hash, 0, 1)
	assert.Equal(t, common.CodeInvalidArgument, response.Code)

	response = s.verify(s.owner(0), hash)
	assert.True(t, response.IsError())
}

func TestMultiSignature_GenerateAccount(t *testing.T) {
	s := newMultisigSuite(t)

	first := s.generate()
	second := s.generate()
	assert.NotEqual(t, first, second)

	account := s.account(first)
	assert.Equal(t, first, account.Address)
	assert.Equal(t, uint32(2), account.Threshold)
	assert.Equal(t, "treasury", account.Memo)
	require.Len(t, account.Owners, 3)

	response := s.Read(s.admin, multisignature.ServiceName, "get_account_from_address", multisignature.GetAccountPayload{
		Address: unittest.AddressFixture(),
	})
	assert.Equal(t, common.CodeNotFound, response.Code)

	for name, payload := range map[string]multisignature.GenerateAccountPayload{
		"threshold above weight": {
			Owners:    []multisignature.Owner{{Address: s.owner(0), Weight: 1}},
			Threshold: 2,
		},
		"duplicate owner": {
			Owners: []multisignature.Owner{
				{Address: s.owner(0), Weight: 1},
				{Address: s.owner(0), Weight: 1},
			},
			Threshold: 1,
		},
		"too many owners": {
			Owners: func() []multisignature.Owner {
				owners := make([]multisignature.Owner, 0, multisignature.MaxOwners+1)
				for _, address := range unittest.AddressListFixture(multisignature.MaxOwners + 1) {
					owners = append(owners, multisignature.Owner{Address: address, Weight: 1})
				}
				return owners
			}(),
			Threshold: 1,
		},
	} {
		t.Run(name, func(t *testing.T) {
			receipt := s.exec(s.admin, multisignature.ServiceName, "generate_account", payload)
			require.True(t, receipt.Failed())
			assert.Equal(t, common.CodeInvalidArgument, receipt.Response.Code)
		})
	}
}

func TestMultiSignature_VerifyThreshold(t *testing.T) {
	s := newMultisigSuite(t)
	account := s.generate()
	hash := unittest.HashFixture()

	response := s.verify(account, hash, 0, 1)
	assert.False(t, response.IsError(), response.String())

	response = s.verify(account, hash, 2)
	assert.False(t, response.IsError(), response.String())

	response = s.verify(account, hash, 0)
	assert.Equal(t, common.CodeRejected, response.Code)

	// a signer counts once
	response = s.verify(account, hash, 0, 0)
	assert.Equal(t, common.CodeRejected, response.Code)

	// signatures of another hash are ignored
	payload := multisignature.VerifySignaturePayload{
		Sender: account,
		TxHash: hash,
		Pubkeys: []hexutil.Bytes{
			s.keys[0].PubKey().SerializeCompressed(),
			s.keys[1].PubKey().SerializeCompressed(),
		},
		Signatures: []hexutil.Bytes{
			unittest.SignatureFixture(s.keys[0], hash),
			unittest.SignatureFixture(s.keys[1], unittest.HashFixture()),
		},
	}
	response = s.Read(account, multisignature.ServiceName, "verify_signature", payload)
	assert.Equal(t, common.CodeRejected, response.Code)
}

func TestMultiSignature_ManageAccount(t *testing.T) {
	s := newMultisigSuite(t)
	account := s.generate()
	newOwner := unittest.AddressFixture()

	// weight 1 is below the threshold
	receipt := s.exec(s.owner(0), multisignature.ServiceName, "add_owner", multisignature.AddOwnerPayload{
		AccountAddress: account,
		NewOwner:       multisignature.Owner{Address: newOwner, Weight: 3},
	})
	require.True(t, receipt.Failed())
	assert.Equal(t, common.CodePermissionDenied, receipt.Response.Code)

	receipt = s.exec(s.owner(2), multisignature.ServiceName, "add_owner", multisignature.AddOwnerPayload{
		AccountAddress: account,
		NewOwner:       multisignature.Owner{Address: newOwner, Weight: 3},
	})
	require.False(t, receipt.Failed(), receipt.Response.String())
	assert.Len(t, s.account(account).Owners, 4)

	receipt = s.exec(s.owner(2), multisignature.ServiceName, "set_threshold", multisignature.SetThresholdPayload{
		AccountAddress: account,
		NewThreshold:   5,
	})
	require.False(t, receipt.Failed(), receipt.Response.String())

	hash := unittest.HashFixture()
	response := s.verify(account, hash, 0, 1, 2)
	assert.Equal(t, common.CodeRejected, response.Code)

	// no owner reaches the threshold anymore, only the account itself
	receipt = s.exec(s.owner(2), multisignature.ServiceName, "remove_owner", multisignature.RemoveOwnerPayload{
		AccountAddress: account,
		Owner:          newOwner,
	})
	require.True(t, receipt.Failed())
	assert.Equal(t, common.CodePermissionDenied, receipt.Response.Code)

	receipt = s.exec(s.admin, asset.ServiceName, "transfer", asset.TransferPayload{
		AssetID: unittest.NativeAssetID,
		To:      account,
		Value:   1_000,
	})
	require.False(t, receipt.Failed(), receipt.Response.String())

	receipt = s.exec(account, multisignature.ServiceName, "set_threshold", multisignature.SetThresholdPayload{
		AccountAddress: account,
		NewThreshold:   8,
	})
	require.True(t, receipt.Failed())
	assert.Equal(t, common.CodeInvalidArgument, receipt.Response.Code)

	receipt = s.exec(account, multisignature.ServiceName, "remove_owner", multisignature.RemoveOwnerPayload{
		AccountAddress: account,
		Owner:          unittest.AddressFixture(),
	})
	require.True(t, receipt.Failed())
	assert.Equal(t, common.CodeNotFound, receipt.Response.Code)

	receipt = s.exec(account, multisignature.ServiceName, "remove_owner", multisignature.RemoveOwnerPayload{
		AccountAddress: account,
		Owner:          newOwner,
	})
	require.True(t, receipt.Failed())
	assert.Equal(t, common.CodeInvalidArgument, receipt.Response.Code)

	receipt = s.exec(account, multisignature.ServiceName, "remove_owner", multisignature.RemoveOwnerPayload{
		AccountAddress: account,
		Owner:          s.owner(0),
	})
	require.False(t, receipt.Failed(), receipt.Response.String())
	assert.Len(t, s.account(account).Owners, 3)
}
