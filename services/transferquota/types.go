package transferquota

import (
	"github.com/servicechain/executor/model/types"
)

const ServiceName = "transfer_quota"

// assetServiceName is the only service allowed to charge quotas.
const assetServiceName = "asset"

type GenesisPayload struct {
	Admin types.Address `json:"admin"`
}

// Rule limits the transfers of the users matching KycExpr. A zero limit
// is unlimited.
type Rule struct {
	KycExpr         string `json:"kyc_expr" cbor:"kyc_expr" validate:"required"`
	SingleBillLimit uint64 `json:"single_bill_limit" cbor:"single_bill_limit"`
	DailyLimit      uint64 `json:"daily_limit" cbor:"daily_limit"`
	MonthlyLimit    uint64 `json:"monthly_limit" cbor:"monthly_limit"`
}

type AssetQuota struct {
	AssetID types.Hash `json:"asset_id" cbor:"asset_id"`
	Rules   []Rule     `json:"rules" cbor:"rules"`
}

// QuotaRecord accumulates the transfers of an address in the current day
// and month.
type QuotaRecord struct {
	DayIndex    uint64 `json:"day_index" cbor:"day_index"`
	DailyUsed   uint64 `json:"daily_used" cbor:"daily_used"`
	MonthIndex  uint64 `json:"month_index" cbor:"month_index"`
	MonthlyUsed uint64 `json:"monthly_used" cbor:"monthly_used"`
}

type SetAssetQuotaPayload struct {
	AssetID types.Hash `json:"asset_id"`
	Rules   []Rule     `json:"rules" validate:"dive"`
}

type QuotaTransferPayload struct {
	AssetID types.Hash    `json:"asset_id"`
	Address types.Address `json:"address"`
	Amount  uint64        `json:"amount"`
}

type GetQuotaRecordPayload struct {
	AssetID types.Hash    `json:"asset_id"`
	Address types.Address `json:"address"`
}
