// Package asset implements the asset ledger: fungible tokens, balances and
// allowances. The native asset, set at genesis, pays the transaction fees.
package asset

import (
	"encoding/binary"
	"fmt"

	"github.com/servicechain/executor/fvm/environment"
	"github.com/servicechain/executor/fvm/registry"
	"github.com/servicechain/executor/model/types"
	"github.com/servicechain/executor/services/common"
	"github.com/servicechain/executor/services/transferquota"
)

const (
	keyNativeAsset = "native_asset"

	eventCreateAsset  = "create_asset"
	eventTransfer     = "transfer"
	eventApprove      = "approve"
	eventTransferFrom = "transfer_from"
	eventMint         = "mint"
	eventBurn         = "burn"
	eventChangeAdmin  = "change_admin"
	eventTransferFee  = "transfer_fee"
)

func assetKey(id types.Hash) string {
	return "asset/" + id.Hex()
}

func balanceKey(id types.Hash, user types.Address) string {
	return "balance/" + id.Hex() + "/" + user.Hex()
}

func allowanceKey(id types.Hash, grantor types.Address, grantee types.Address) string {
	return "allowance/" + id.Hex() + "/" + grantor.Hex() + "/" + grantee.Hex()
}

type Service struct {
	sdk environment.ServiceSDK
}

var (
	_ registry.Service      = (*Service)(nil)
	_ registry.Genesis      = (*Service)(nil)
	_ registry.FeeCollector = (*Service)(nil)
)

func New(sdk environment.ServiceSDK, _ registry.Dependencies) (registry.Service, error) {
	return &Service{sdk: sdk}, nil
}

func (s *Service) Name() string {
	return ServiceName
}

func (s *Service) Methods() []environment.Method {
	return []environment.Method{
		{Name: "get_asset", Kind: environment.MethodKindRead, Cycles: 1, Handler: s.getAsset},
		{Name: "get_native_asset", Kind: environment.MethodKindRead, Cycles: 1, Handler: s.getNativeAsset},
		{Name: "get_balance", Kind: environment.MethodKindRead, Cycles: 1, Handler: s.getBalance},
		{Name: "get_allowance", Kind: environment.MethodKindRead, Cycles: 1, Handler: s.getAllowance},
		{Name: "create_asset", Kind: environment.MethodKindWrite, Cycles: 10, Handler: s.createAsset},
		{Name: "transfer", Kind: environment.MethodKindWrite, Cycles: 4, Handler: s.transfer},
		{Name: "approve", Kind: environment.MethodKindWrite, Cycles: 4, Handler: s.approve},
		{Name: "transfer_from", Kind: environment.MethodKindWrite, Cycles: 6, Handler: s.transferFrom},
		{Name: "mint", Kind: environment.MethodKindWrite, Cycles: 6, Handler: s.mint},
		{Name: "burn", Kind: environment.MethodKindWrite, Cycles: 4, Handler: s.burn},
		{Name: "change_admin", Kind: environment.MethodKindWrite, Cycles: 4, Handler: s.changeAdmin},
	}
}

func (s *Service) InitGenesis(payload string) error {
	var genesis GenesisPayload
	if err := common.Decode(payload, &genesis); err != nil {
		return fmt.Errorf("invalid asset genesis: %w", err)
	}

	asset := Asset{
		ID:           genesis.ID,
		Name:         genesis.Name,
		Symbol:       genesis.Symbol,
		Supply:       genesis.Supply,
		Precision:    genesis.Precision,
		Issuer:       genesis.Issuer,
		Admin:        genesis.Admin,
		QuotaEnabled: genesis.QuotaEnabled,
	}
	if asset.ID == types.ZeroHash {
		asset.ID = types.Digest([]byte(asset.Name + "/" + asset.Symbol))
	}

	if err := s.sdk.SetValue(keyNativeAsset, asset.ID); err != nil {
		return err
	}
	if err := s.sdk.SetValue(assetKey(asset.ID), asset); err != nil {
		return err
	}
	return s.setBalance(asset.ID, asset.Issuer, asset.Supply)
}

func (s *Service) loadAsset(id types.Hash) (Asset, bool, error) {
	var asset Asset
	found, err := s.sdk.GetValue(assetKey(id), &asset)
	return asset, found, err
}

func (s *Service) nativeAssetID() (types.Hash, error) {
	var id types.Hash
	found, err := s.sdk.GetValue(keyNativeAsset, &id)
	if err != nil {
		return types.ZeroHash, err
	}
	if !found {
		return types.ZeroHash, fmt.Errorf("native asset is not set")
	}
	return id, nil
}

func (s *Service) balance(id types.Hash, user types.Address) (uint64, error) {
	var balance uint64
	_, err := s.sdk.GetValue(balanceKey(id, user), &balance)
	return balance, err
}

func (s *Service) setBalance(id types.Hash, user types.Address, balance uint64) error {
	return s.sdk.SetValue(balanceKey(id, user), balance)
}

func (s *Service) emit(topic string, event interface{}) error {
	data, err := common.Encode(event)
	if err != nil {
		return err
	}
	return s.sdk.EmitEvent(topic, data)
}

func (s *Service) getAsset(payload string) types.ServiceResponse {
	var req GetAssetPayload
	if err := common.Decode(payload, &req); err != nil {
		return common.InvalidPayload(ServiceName, "get_asset", err)
	}

	asset, found, err := s.loadAsset(req.ID)
	if err != nil {
		return common.SDKError(err)
	}
	if !found {
		return common.NotFound("asset %s not found", req.ID.Hex())
	}
	return common.Success(asset)
}

func (s *Service) getNativeAsset(string) types.ServiceResponse {
	id, err := s.nativeAssetID()
	if err != nil {
		return common.NotFound("%s", err)
	}

	asset, found, err := s.loadAsset(id)
	if err != nil {
		return common.SDKError(err)
	}
	if !found {
		return common.NotFound("native asset %s not found", id.Hex())
	}
	return common.Success(asset)
}

func (s *Service) getBalance(payload string) types.ServiceResponse {
	var req GetBalancePayload
	if err := common.Decode(payload, &req); err != nil {
		return common.InvalidPayload(ServiceName, "get_balance", err)
	}

	balance, err := s.balance(req.AssetID, req.User)
	if err != nil {
		return common.SDKError(err)
	}
	return common.Success(GetBalanceResponse{
		AssetID: req.AssetID,
		User:    req.User,
		Balance: balance,
	})
}

func (s *Service) getAllowance(payload string) types.ServiceResponse {
	var req GetAllowancePayload
	if err := common.Decode(payload, &req); err != nil {
		return common.InvalidPayload(ServiceName, "get_allowance", err)
	}

	var value uint64
	_, err := s.sdk.GetValue(allowanceKey(req.AssetID, req.Grantor, req.Grantee), &value)
	if err != nil {
		return common.SDKError(err)
	}
	return common.Success(GetAllowanceResponse{
		AssetID: req.AssetID,
		Grantor: req.Grantor,
		Grantee: req.Grantee,
		Value:   value,
	})
}

// createAssetID derives the id of a new asset from its creator and the
// creating transaction, which makes it unique.
func createAssetID(ctx environment.ServiceContext, req CreateAssetPayload) types.Hash {
	data := make([]byte, 0, 2*types.HashLen+len(ctx.Caller)+len(req.Name)+len(req.Symbol)+8)
	data = append(data, ctx.Caller.Bytes()...)
	data = append(data, ctx.TxHash.Bytes()...)
	data = append(data, ctx.Nonce.Bytes()...)
	data = append(data, []byte(req.Name)...)
	data = append(data, []byte(req.Symbol)...)
	data = binary.BigEndian.AppendUint64(data, req.Supply)
	return types.Digest(data)
}

func (s *Service) createAsset(payload string) types.ServiceResponse {
	var req CreateAssetPayload
	if err := common.Decode(payload, &req); err != nil {
		return common.InvalidPayload(ServiceName, "create_asset", err)
	}

	ctx := s.sdk.Context()
	id := createAssetID(ctx, req)

	_, found, err := s.loadAsset(id)
	if err != nil {
		return common.SDKError(err)
	}
	if found {
		return types.NewErrorResponse(common.CodeAlreadyExists, "asset %s already exists", id.Hex())
	}

	asset := Asset{
		ID:           id,
		Name:         req.Name,
		Symbol:       req.Symbol,
		Supply:       req.Supply,
		Precision:    req.Precision,
		Issuer:       ctx.Caller,
		Admin:        ctx.Caller,
		QuotaEnabled: req.QuotaEnabled,
	}
	if err := s.sdk.SetValue(assetKey(id), asset); err != nil {
		return common.SDKError(err)
	}
	if err := s.setBalance(id, ctx.Caller, req.Supply); err != nil {
		return common.SDKError(err)
	}
	if err := s.emit(eventCreateAsset, asset); err != nil {
		return common.SDKError(err)
	}
	return common.Success(asset)
}

// move transfers value of an asset between two accounts. The balances are
// read once each and written once each, also when from equals to.
func (s *Service) move(
	id types.Hash,
	from types.Address,
	to types.Address,
	value uint64,
) types.ServiceResponse {
	fromBalance, err := s.balance(id, from)
	if err != nil {
		return common.SDKError(err)
	}
	toBalance, err := s.balance(id, to)
	if err != nil {
		return common.SDKError(err)
	}

	if fromBalance < value {
		return types.NewErrorResponse(
			common.CodeInsufficientBalance,
			"insufficient balance of %s: %d < %d",
			from.Hex(),
			fromBalance,
			value)
	}

	fromBalance -= value
	if from == to {
		toBalance = fromBalance
	}
	toBalance, ok := common.SafeAdd(toBalance, value)
	if !ok {
		return types.NewErrorResponse(common.CodeOverflow, "balance of %s overflows", to.Hex())
	}

	if err := s.setBalance(id, from, fromBalance); err != nil {
		return common.SDKError(err)
	}
	if err := s.setBalance(id, to, toBalance); err != nil {
		return common.SDKError(err)
	}
	return types.NewSuccessResponse("")
}

func (s *Service) checkQuota(
	asset Asset,
	address types.Address,
	value uint64,
) types.ServiceResponse {
	if !asset.QuotaEnabled {
		return types.NewSuccessResponse("")
	}

	response, err := common.CallWrite(
		s.sdk,
		transferquota.ServiceName,
		"quota_transfer",
		transferquota.QuotaTransferPayload{
			AssetID: asset.ID,
			Address: address,
			Amount:  value,
		},
		nil)
	if err != nil {
		return common.SDKError(err)
	}
	if response.IsError() {
		return common.Forward(transferquota.ServiceName, "quota_transfer", response)
	}
	return response
}

func (s *Service) transfer(payload string) types.ServiceResponse {
	var req TransferPayload
	if err := common.Decode(payload, &req); err != nil {
		return common.InvalidPayload(ServiceName, "transfer", err)
	}

	asset, found, err := s.loadAsset(req.AssetID)
	if err != nil {
		return common.SDKError(err)
	}
	if !found {
		return common.NotFound("asset %s not found", req.AssetID.Hex())
	}

	from := s.sdk.Context().Caller
	if response := s.checkQuota(asset, from, req.Value); response.IsError() {
		return response
	}

	if response := s.move(req.AssetID, from, req.To, req.Value); response.IsError() {
		return response
	}

	err = s.emit(eventTransfer, TransferEvent{
		AssetID: req.AssetID,
		From:    from,
		To:      req.To,
		Value:   req.Value,
	})
	if err != nil {
		return common.SDKError(err)
	}
	return types.NewSuccessResponse("")
}

func (s *Service) approve(payload string) types.ServiceResponse {
	var req ApprovePayload
	if err := common.Decode(payload, &req); err != nil {
		return common.InvalidPayload(ServiceName, "approve", err)
	}

	_, found, err := s.loadAsset(req.AssetID)
	if err != nil {
		return common.SDKError(err)
	}
	if !found {
		return common.NotFound("asset %s not found", req.AssetID.Hex())
	}

	grantor := s.sdk.Context().Caller
	if grantor == req.To {
		return common.InvalidArgument("cannot approve to self")
	}

	err = s.sdk.SetValue(allowanceKey(req.AssetID, grantor, req.To), req.Value)
	if err != nil {
		return common.SDKError(err)
	}

	err = s.emit(eventApprove, ApproveEvent{
		AssetID: req.AssetID,
		Grantor: grantor,
		Grantee: req.To,
		Value:   req.Value,
	})
	if err != nil {
		return common.SDKError(err)
	}
	return types.NewSuccessResponse("")
}

func (s *Service) transferFrom(payload string) types.ServiceResponse {
	var req TransferFromPayload
	if err := common.Decode(payload, &req); err != nil {
		return common.InvalidPayload(ServiceName, "transfer_from", err)
	}

	asset, found, err := s.loadAsset(req.AssetID)
	if err != nil {
		return common.SDKError(err)
	}
	if !found {
		return common.NotFound("asset %s not found", req.AssetID.Hex())
	}

	caller := s.sdk.Context().Caller
	key := allowanceKey(req.AssetID, req.Sender, caller)

	var allowance uint64
	if _, err := s.sdk.GetValue(key, &allowance); err != nil {
		return common.SDKError(err)
	}
	if allowance < req.Value {
		return types.NewErrorResponse(
			common.CodeInsufficientAllowance,
			"insufficient allowance of %s to %s: %d < %d",
			req.Sender.Hex(),
			caller.Hex(),
			allowance,
			req.Value)
	}

	if response := s.checkQuota(asset, req.Sender, req.Value); response.IsError() {
		return response
	}

	if response := s.move(req.AssetID, req.Sender, req.Recipient, req.Value); response.IsError() {
		return response
	}

	if err := s.sdk.SetValue(key, allowance-req.Value); err != nil {
		return common.SDKError(err)
	}

	err = s.emit(eventTransferFrom, TransferFromEvent{
		AssetID:   req.AssetID,
		Caller:    caller,
		Sender:    req.Sender,
		Recipient: req.Recipient,
		Value:     req.Value,
	})
	if err != nil {
		return common.SDKError(err)
	}
	return types.NewSuccessResponse("")
}

func (s *Service) loadAdministeredAsset(
	id types.Hash,
) (
	Asset,
	types.ServiceResponse,
) {
	asset, found, err := s.loadAsset(id)
	if err != nil {
		return Asset{}, common.SDKError(err)
	}
	if !found {
		return Asset{}, common.NotFound("asset %s not found", id.Hex())
	}

	caller := s.sdk.Context().Caller
	if caller != asset.Admin && caller != asset.Issuer {
		return Asset{}, common.PermissionDenied(
			"%s is neither admin nor issuer of asset %s",
			caller.Hex(),
			id.Hex())
	}
	return asset, types.NewSuccessResponse("")
}

func (s *Service) mint(payload string) types.ServiceResponse {
	var req MintPayload
	if err := common.Decode(payload, &req); err != nil {
		return common.InvalidPayload(ServiceName, "mint", err)
	}

	asset, response := s.loadAdministeredAsset(req.AssetID)
	if response.IsError() {
		return response
	}

	supply, ok := common.SafeAdd(asset.Supply, req.Amount)
	if !ok {
		return types.NewErrorResponse(common.CodeOverflow, "supply of asset %s overflows", asset.ID.Hex())
	}

	balance, err := s.balance(asset.ID, req.To)
	if err != nil {
		return common.SDKError(err)
	}
	// balance <= supply
	balance += req.Amount

	asset.Supply = supply
	if err := s.sdk.SetValue(assetKey(asset.ID), asset); err != nil {
		return common.SDKError(err)
	}
	if err := s.setBalance(asset.ID, req.To, balance); err != nil {
		return common.SDKError(err)
	}

	err = s.emit(eventMint, SupplyEvent{
		AssetID: asset.ID,
		Account: req.To,
		Amount:  req.Amount,
		Supply:  supply,
	})
	if err != nil {
		return common.SDKError(err)
	}
	return types.NewSuccessResponse("")
}

func (s *Service) burn(payload string) types.ServiceResponse {
	var req BurnPayload
	if err := common.Decode(payload, &req); err != nil {
		return common.InvalidPayload(ServiceName, "burn", err)
	}

	asset, response := s.loadAdministeredAsset(req.AssetID)
	if response.IsError() {
		return response
	}

	caller := s.sdk.Context().Caller
	balance, err := s.balance(asset.ID, caller)
	if err != nil {
		return common.SDKError(err)
	}
	if balance < req.Amount {
		return types.NewErrorResponse(
			common.CodeInsufficientBalance,
			"insufficient balance of %s: %d < %d",
			caller.Hex(),
			balance,
			req.Amount)
	}

	// balance <= supply
	asset.Supply -= req.Amount
	if err := s.sdk.SetValue(assetKey(asset.ID), asset); err != nil {
		return common.SDKError(err)
	}
	if err := s.setBalance(asset.ID, caller, balance-req.Amount); err != nil {
		return common.SDKError(err)
	}

	err = s.emit(eventBurn, SupplyEvent{
		AssetID: asset.ID,
		Account: caller,
		Amount:  req.Amount,
		Supply:  asset.Supply,
	})
	if err != nil {
		return common.SDKError(err)
	}
	return types.NewSuccessResponse("")
}

func (s *Service) changeAdmin(payload string) types.ServiceResponse {
	var req ChangeAdminPayload
	if err := common.Decode(payload, &req); err != nil {
		return common.InvalidPayload(ServiceName, "change_admin", err)
	}

	asset, found, err := s.loadAsset(req.AssetID)
	if err != nil {
		return common.SDKError(err)
	}
	if !found {
		return common.NotFound("asset %s not found", req.AssetID.Hex())
	}

	caller := s.sdk.Context().Caller
	if caller != asset.Admin {
		return common.PermissionDenied("%s is not admin of asset %s", caller.Hex(), asset.ID.Hex())
	}

	asset.Admin = req.NewAdmin
	if err := s.sdk.SetValue(assetKey(asset.ID), asset); err != nil {
		return common.SDKError(err)
	}

	if err := s.emit(eventChangeAdmin, asset); err != nil {
		return common.SDKError(err)
	}
	return types.NewSuccessResponse("")
}

// PayerBalance returns the native asset balance of payer.
func (s *Service) PayerBalance(payer types.Address) (uint64, error) {
	id, err := s.nativeAssetID()
	if err != nil {
		return 0, err
	}
	return s.balance(id, payer)
}

// CollectFee moves amount of the native asset from payer to proposer.
func (s *Service) CollectFee(
	payer types.Address,
	proposer types.Address,
	amount uint64,
) types.ServiceResponse {
	id, err := s.nativeAssetID()
	if err != nil {
		return common.SDKError(err)
	}

	if response := s.move(id, payer, proposer, amount); response.IsError() {
		return response
	}

	err = s.emit(eventTransferFee, FeeEvent{
		AssetID:  id,
		Payer:    payer,
		Proposer: proposer,
		Amount:   amount,
	})
	if err != nil {
		return common.SDKError(err)
	}
	return types.NewSuccessResponse("")
}
