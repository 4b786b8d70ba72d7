package asset

import (
	"github.com/servicechain/executor/model/types"
)

const ServiceName = "asset"

// Asset is a fungible token.
type Asset struct {
	ID        types.Hash    `json:"id" cbor:"id"`
	Name      string        `json:"name" cbor:"name"`
	Symbol    string        `json:"symbol" cbor:"symbol"`
	Supply    uint64        `json:"supply" cbor:"supply"`
	Precision uint64        `json:"precision" cbor:"precision"`
	Issuer    types.Address `json:"issuer" cbor:"issuer"`
	Admin     types.Address `json:"admin" cbor:"admin"`
	// QuotaEnabled routes every transfer through transfer_quota.
	QuotaEnabled bool `json:"quota_enabled" cbor:"quota_enabled"`
}

type GenesisPayload struct {
	ID           types.Hash    `json:"id"`
	Name         string        `json:"name" validate:"required"`
	Symbol       string        `json:"symbol" validate:"required"`
	Supply       uint64        `json:"supply"`
	Precision    uint64        `json:"precision"`
	Issuer       types.Address `json:"issuer"`
	Admin        types.Address `json:"admin"`
	QuotaEnabled bool          `json:"quota_enabled"`
}

type GetAssetPayload struct {
	ID types.Hash `json:"id"`
}

type GetBalancePayload struct {
	AssetID types.Hash    `json:"asset_id"`
	User    types.Address `json:"user"`
}

type GetBalanceResponse struct {
	AssetID types.Hash    `json:"asset_id"`
	User    types.Address `json:"user"`
	Balance uint64        `json:"balance"`
}

type GetAllowancePayload struct {
	AssetID types.Hash    `json:"asset_id"`
	Grantor types.Address `json:"grantor"`
	Grantee types.Address `json:"grantee"`
}

type GetAllowanceResponse struct {
	AssetID types.Hash    `json:"asset_id"`
	Grantor types.Address `json:"grantor"`
	Grantee types.Address `json:"grantee"`
	Value   uint64        `json:"value"`
}

type CreateAssetPayload struct {
	Name         string `json:"name" validate:"required,max=64"`
	Symbol       string `json:"symbol" validate:"required,max=16"`
	Supply       uint64 `json:"supply"`
	Precision    uint64 `json:"precision" validate:"lte=18"`
	QuotaEnabled bool   `json:"quota_enabled"`
}

type TransferPayload struct {
	AssetID types.Hash    `json:"asset_id"`
	To      types.Address `json:"to"`
	Value   uint64        `json:"value"`
}

type TransferEvent struct {
	AssetID types.Hash    `json:"asset_id"`
	From    types.Address `json:"from"`
	To      types.Address `json:"to"`
	Value   uint64        `json:"value"`
}

type ApprovePayload struct {
	AssetID types.Hash    `json:"asset_id"`
	To      types.Address `json:"to"`
	Value   uint64        `json:"value"`
}

type ApproveEvent struct {
	AssetID types.Hash    `json:"asset_id"`
	Grantor types.Address `json:"grantor"`
	Grantee types.Address `json:"grantee"`
	Value   uint64        `json:"value"`
}

type TransferFromPayload struct {
	AssetID   types.Hash    `json:"asset_id"`
	Sender    types.Address `json:"sender"`
	Recipient types.Address `json:"recipient"`
	Value     uint64        `json:"value"`
}

type TransferFromEvent struct {
	AssetID   types.Hash    `json:"asset_id"`
	Caller    types.Address `json:"caller"`
	Sender    types.Address `json:"sender"`
	Recipient types.Address `json:"recipient"`
	Value     uint64        `json:"value"`
}

type MintPayload struct {
	AssetID types.Hash    `json:"asset_id"`
	To      types.Address `json:"to"`
	Amount  uint64        `json:"amount" validate:"gt=0"`
}

type BurnPayload struct {
	AssetID types.Hash `json:"asset_id"`
	Amount  uint64     `json:"amount" validate:"gt=0"`
}

type SupplyEvent struct {
	AssetID types.Hash    `json:"asset_id"`
	Account types.Address `json:"account"`
	Amount  uint64        `json:"amount"`
	Supply  uint64        `json:"supply"`
}

type ChangeAdminPayload struct {
	AssetID  types.Hash    `json:"asset_id"`
	NewAdmin types.Address `json:"new_admin"`
}

type FeeEvent struct {
	AssetID  types.Hash    `json:"asset_id"`
	Payer    types.Address `json:"payer"`
	Proposer types.Address `json:"proposer"`
	Amount   uint64        `json:"amount"`
}
