package multisignature

import (
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/servicechain/executor/model/types"
)

const (
	ServiceName = "multi_signature"

	// MaxOwners bounds the owners of an account.
	MaxOwners = 16
)

type Owner struct {
	Address types.Address `json:"address" cbor:"address"`
	Weight  uint32        `json:"weight" cbor:"weight" validate:"gt=0"`
}

type Account struct {
	Address   types.Address `json:"address" cbor:"address"`
	Owners    []Owner       `json:"owners" cbor:"owners"`
	Threshold uint32        `json:"threshold" cbor:"threshold"`
	Memo      string        `json:"memo" cbor:"memo"`
}

// totalWeight returns the sum of the owner weights. It cannot overflow:
// there are at most MaxOwners weights of 32 bits.
func (a Account) totalWeight() uint64 {
	total := uint64(0)
	for _, owner := range a.Owners {
		total += uint64(owner.Weight)
	}
	return total
}

func (a Account) owner(address types.Address) (Owner, int, bool) {
	for i, owner := range a.Owners {
		if owner.Address == address {
			return owner, i, true
		}
	}
	return Owner{}, -1, false
}

type GenerateAccountPayload struct {
	Owners    []Owner `json:"owners" validate:"required,min=1,dive"`
	Threshold uint32  `json:"threshold" validate:"gt=0"`
	Memo      string  `json:"memo"`
}

type GenerateAccountResponse struct {
	Address types.Address `json:"address"`
}

type AddOwnerPayload struct {
	AccountAddress types.Address `json:"account_address"`
	NewOwner       Owner         `json:"new_owner"`
}

type RemoveOwnerPayload struct {
	AccountAddress types.Address `json:"account_address"`
	Owner          types.Address `json:"owner"`
}

type SetThresholdPayload struct {
	AccountAddress types.Address `json:"account_address"`
	NewThreshold   uint32        `json:"new_threshold" validate:"gt=0"`
}

type GetAccountPayload struct {
	Address types.Address `json:"address"`
}

// VerifySignaturePayload carries DER encoded secp256k1 signatures over
// TxHash, and the compressed or uncompressed public keys that made them.
type VerifySignaturePayload struct {
	Sender     types.Address   `json:"sender"`
	TxHash     types.Hash      `json:"tx_hash"`
	Pubkeys    []hexutil.Bytes `json:"pubkeys" validate:"required,min=1"`
	Signatures []hexutil.Bytes `json:"signatures" validate:"required,min=1"`
}
