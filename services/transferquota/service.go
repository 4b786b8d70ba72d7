// Package transferquota enforces per-asset transfer limits chosen by the KYC
// tags of the sender.
package transferquota

import (
	"fmt"
	"time"

	"github.com/servicechain/executor/fvm/environment"
	"github.com/servicechain/executor/fvm/registry"
	"github.com/servicechain/executor/model/types"
	"github.com/servicechain/executor/services/common"
	"github.com/servicechain/executor/services/kyc"
	"github.com/servicechain/executor/services/timestamp"
)

const (
	keyAdmin = "admin"

	eventSetAssetQuota = "set_asset_quota"

	secondsPerDay = 24 * 60 * 60
)

func quotaKey(id types.Hash) string {
	return "quota/" + id.Hex()
}

func recordKey(id types.Hash, address types.Address) string {
	return "record/" + id.Hex() + "/" + address.Hex()
}

// DayIndex returns the UTC day of a timestamp in seconds.
func DayIndex(timestamp uint64) uint64 {
	return timestamp / secondsPerDay
}

// MonthIndex returns the UTC month of a timestamp in seconds, counted from
// year zero.
func MonthIndex(timestamp uint64) uint64 {
	t := time.Unix(int64(timestamp), 0).UTC()
	return uint64(t.Year())*12 + uint64(t.Month()) - 1
}

type Service struct {
	sdk environment.ServiceSDK
}

var (
	_ registry.Service = (*Service)(nil)
	_ registry.Genesis = (*Service)(nil)
)

func New(sdk environment.ServiceSDK, _ registry.Dependencies) (registry.Service, error) {
	return &Service{sdk: sdk}, nil
}

func (s *Service) Name() string {
	return ServiceName
}

func (s *Service) Methods() []environment.Method {
	return []environment.Method{
		{Name: "set_asset_quota", Kind: environment.MethodKindWrite, Cycles: 5, Handler: s.setAssetQuota},
		{Name: "quota_transfer", Kind: environment.MethodKindWrite, Cycles: 5, Handler: s.quotaTransfer},
		{Name: "get_asset_quota", Kind: environment.MethodKindRead, Cycles: 1, Handler: s.getAssetQuota},
		{Name: "get_quota_record", Kind: environment.MethodKindRead, Cycles: 1, Handler: s.getQuotaRecord},
	}
}

func (s *Service) InitGenesis(payload string) error {
	var genesis GenesisPayload
	if err := common.Decode(payload, &genesis); err != nil {
		return fmt.Errorf("invalid transfer quota genesis: %w", err)
	}
	return s.sdk.SetValue(keyAdmin, genesis.Admin)
}

func (s *Service) setAssetQuota(payload string) types.ServiceResponse {
	var req SetAssetQuotaPayload
	if err := common.Decode(payload, &req); err != nil {
		return common.InvalidPayload(ServiceName, "set_asset_quota", err)
	}

	var admin types.Address
	if _, err := s.sdk.GetValue(keyAdmin, &admin); err != nil {
		return common.SDKError(err)
	}
	caller := s.sdk.Context().Caller
	if caller != admin {
		return common.PermissionDenied("%s is not the transfer quota admin", caller.Hex())
	}

	for _, rule := range req.Rules {
		if _, err := kyc.ParseExpression(rule.KycExpr); err != nil {
			return common.InvalidArgument("invalid kyc expression %q: %s", rule.KycExpr, err)
		}
	}

	quota := AssetQuota{AssetID: req.AssetID, Rules: req.Rules}
	if err := s.sdk.SetValue(quotaKey(req.AssetID), quota); err != nil {
		return common.SDKError(err)
	}

	data, err := common.Encode(quota)
	if err != nil {
		return common.SDKError(err)
	}
	if err := s.sdk.EmitEvent(eventSetAssetQuota, data); err != nil {
		return common.SDKError(err)
	}
	return types.NewSuccessResponse("")
}

// matchRule returns the first rule whose KYC expression holds for address.
func (s *Service) matchRule(
	rules []Rule,
	address types.Address,
) (
	Rule,
	bool,
	types.ServiceResponse,
) {
	for _, rule := range rules {
		var result kyc.EvalUserTagExpressionResponse
		response, err := common.CallRead(
			s.sdk,
			kyc.ServiceName,
			"eval_user_tag_expression",
			kyc.EvalUserTagExpressionPayload{
				User:       address,
				Expression: rule.KycExpr,
			},
			&result)
		if err != nil {
			return Rule{}, false, common.SDKError(err)
		}
		if response.IsError() {
			return Rule{}, false, common.Forward(kyc.ServiceName, "eval_user_tag_expression", response)
		}
		if result.Result {
			return rule, true, types.NewSuccessResponse("")
		}
	}
	return Rule{}, false, types.NewSuccessResponse("")
}

func (s *Service) quotaTransfer(payload string) types.ServiceResponse {
	ctx := s.sdk.Context()
	if ctx.CallerService != assetServiceName {
		return common.PermissionDenied("quota_transfer can only be called by the %s service", assetServiceName)
	}

	var req QuotaTransferPayload
	if err := common.Decode(payload, &req); err != nil {
		return common.InvalidPayload(ServiceName, "quota_transfer", err)
	}

	var quota AssetQuota
	found, err := s.sdk.GetValue(quotaKey(req.AssetID), &quota)
	if err != nil {
		return common.SDKError(err)
	}
	if !found {
		// no quota configured for this asset
		return types.NewSuccessResponse("")
	}

	rule, matched, response := s.matchRule(quota.Rules, req.Address)
	if response.IsError() {
		return response
	}
	if !matched {
		return types.NewErrorResponse(
			common.CodeRejected,
			"%s matches no quota rule of asset %s",
			req.Address.Hex(),
			req.AssetID.Hex())
	}

	if rule.SingleBillLimit > 0 && req.Amount > rule.SingleBillLimit {
		return types.NewErrorResponse(
			common.CodeRejected,
			"amount %d exceeds single bill limit %d",
			req.Amount,
			rule.SingleBillLimit)
	}

	var now timestamp.TimestampResponse
	response, err = common.CallRead(s.sdk, timestamp.ServiceName, "get_timestamp", nil, &now)
	if err != nil {
		return common.SDKError(err)
	}
	if response.IsError() {
		return common.Forward(timestamp.ServiceName, "get_timestamp", response)
	}

	key := recordKey(req.AssetID, req.Address)
	var record QuotaRecord
	if _, err := s.sdk.GetValue(key, &record); err != nil {
		return common.SDKError(err)
	}

	day := DayIndex(now.Timestamp)
	if record.DayIndex != day {
		record.DayIndex = day
		record.DailyUsed = 0
	}
	month := MonthIndex(now.Timestamp)
	if record.MonthIndex != month {
		record.MonthIndex = month
		record.MonthlyUsed = 0
	}

	dailyUsed, ok := common.SafeAdd(record.DailyUsed, req.Amount)
	if !ok {
		return types.NewErrorResponse(common.CodeOverflow, "daily quota overflow")
	}
	monthlyUsed, ok := common.SafeAdd(record.MonthlyUsed, req.Amount)
	if !ok {
		return types.NewErrorResponse(common.CodeOverflow, "monthly quota overflow")
	}
	if rule.DailyLimit > 0 && dailyUsed > rule.DailyLimit {
		return types.NewErrorResponse(
			common.CodeRejected,
			"daily limit %d exceeded, %d already used",
			rule.DailyLimit,
			record.DailyUsed)
	}
	if rule.MonthlyLimit > 0 && monthlyUsed > rule.MonthlyLimit {
		return types.NewErrorResponse(
			common.CodeRejected,
			"monthly limit %d exceeded, %d already used",
			rule.MonthlyLimit,
			record.MonthlyUsed)
	}

	record.DailyUsed = dailyUsed
	record.MonthlyUsed = monthlyUsed
	if err := s.sdk.SetValue(key, record); err != nil {
		return common.SDKError(err)
	}
	return types.NewSuccessResponse("")
}

func (s *Service) getAssetQuota(payload string) types.ServiceResponse {
	var req struct {
		AssetID types.Hash `json:"asset_id"`
	}
	if err := common.Decode(payload, &req); err != nil {
		return common.InvalidPayload(ServiceName, "get_asset_quota", err)
	}

	var quota AssetQuota
	found, err := s.sdk.GetValue(quotaKey(req.AssetID), &quota)
	if err != nil {
		return common.SDKError(err)
	}
	if !found {
		return common.NotFound("no quota for asset %s", req.AssetID.Hex())
	}
	return common.Success(quota)
}

func (s *Service) getQuotaRecord(payload string) types.ServiceResponse {
	var req GetQuotaRecordPayload
	if err := common.Decode(payload, &req); err != nil {
		return common.InvalidPayload(ServiceName, "get_quota_record", err)
	}

	var record QuotaRecord
	if _, err := s.sdk.GetValue(recordKey(req.AssetID, req.Address), &record); err != nil {
		return common.SDKError(err)
	}
	return common.Success(record)
}
