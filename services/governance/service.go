// Package governance holds the chain administrator and the fee policy, and
// is the only way to update the chain metadata.
package governance

import (
	"fmt"

	"github.com/servicechain/executor/fvm/environment"
	"github.com/servicechain/executor/fvm/registry"
	"github.com/servicechain/executor/model/types"
	"github.com/servicechain/executor/services/common"
	"github.com/servicechain/executor/services/metadata"
)

const (
	ServiceName = "governance"

	keyInfo = "govern_info"

	eventSetAdmin = "set_admin"

	assetServiceName = "asset"
)

type GenesisPayload struct {
	Admin        types.Address `json:"admin"`
	TxFailureFee uint64        `json:"tx_failure_fee"`
	TxFloorFee   uint64        `json:"tx_floor_fee"`
}

type GovernInfo struct {
	Admin        types.Address `json:"admin" cbor:"admin"`
	TxFailureFee uint64        `json:"tx_failure_fee" cbor:"tx_failure_fee"`
	TxFloorFee   uint64        `json:"tx_floor_fee" cbor:"tx_floor_fee"`
	// NativeAsset is resolved from the asset service on read.
	NativeAsset types.Hash `json:"native_asset" cbor:"-"`
}

type SetAdminPayload struct {
	Admin types.Address `json:"admin"`
}

type AdminResponse struct {
	Admin types.Address `json:"admin"`
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
		{Name: "get_admin_address", Kind: environment.MethodKindRead, Cycles: 1, Handler: s.getAdminAddress},
		{Name: "get_govern_info", Kind: environment.MethodKindRead, Cycles: 1, Handler: s.getGovernInfo},
		{Name: "set_admin", Kind: environment.MethodKindWrite, Cycles: 3, Handler: s.setAdmin},
		{Name: "update_metadata", Kind: environment.MethodKindWrite, Cycles: 3, Handler: s.updateMetadata},
	}
}

func (s *Service) InitGenesis(payload string) error {
	var genesis GenesisPayload
	if err := common.Decode(payload, &genesis); err != nil {
		return fmt.Errorf("invalid governance genesis: %w", err)
	}
	return s.sdk.SetValue(keyInfo, GovernInfo{
		Admin:        genesis.Admin,
		TxFailureFee: genesis.TxFailureFee,
		TxFloorFee:   genesis.TxFloorFee,
	})
}

func (s *Service) info() (GovernInfo, error) {
	var info GovernInfo
	found, err := s.sdk.GetValue(keyInfo, &info)
	if err != nil {
		return GovernInfo{}, err
	}
	if !found {
		return GovernInfo{}, fmt.Errorf("governance is not initialized")
	}
	return info, nil
}

// checkAdmin returns a failed response unless the caller is the admin.
func (s *Service) checkAdmin() (GovernInfo, types.ServiceResponse) {
	info, err := s.info()
	if err != nil {
		return GovernInfo{}, common.SDKError(err)
	}
	caller := s.sdk.Context().Caller
	if caller != info.Admin {
		return GovernInfo{}, common.PermissionDenied("%s is not the governance admin", caller.Hex())
	}
	return info, types.NewSuccessResponse("")
}

func (s *Service) getAdminAddress(string) types.ServiceResponse {
	info, err := s.info()
	if err != nil {
		return common.SDKError(err)
	}
	return common.Success(AdminResponse{Admin: info.Admin})
}

func (s *Service) getGovernInfo(string) types.ServiceResponse {
	info, err := s.info()
	if err != nil {
		return common.SDKError(err)
	}

	var nativeAsset struct {
		ID types.Hash `json:"id"`
	}
	response, err := common.CallRead(s.sdk, assetServiceName, "get_native_asset", nil, &nativeAsset)
	if err != nil {
		return common.SDKError(err)
	}
	if response.IsError() {
		return common.Forward(assetServiceName, "get_native_asset", response)
	}
	info.NativeAsset = nativeAsset.ID

	return common.Success(info)
}

func (s *Service) setAdmin(payload string) types.ServiceResponse {
	var req SetAdminPayload
	if err := common.Decode(payload, &req); err != nil {
		return common.InvalidPayload(ServiceName, "set_admin", err)
	}

	info, response := s.checkAdmin()
	if response.IsError() {
		return response
	}

	info.Admin = req.Admin
	if err := s.sdk.SetValue(keyInfo, info); err != nil {
		return common.SDKError(err)
	}

	data, err := common.Encode(req)
	if err != nil {
		return common.SDKError(err)
	}
	if err := s.sdk.EmitEvent(eventSetAdmin, data); err != nil {
		return common.SDKError(err)
	}
	return types.NewSuccessResponse("")
}

func (s *Service) updateMetadata(payload string) types.ServiceResponse {
	var req metadata.Metadata
	if err := common.Decode(payload, &req); err != nil {
		return common.InvalidPayload(ServiceName, "update_metadata", err)
	}

	if _, response := s.checkAdmin(); response.IsError() {
		return response
	}

	response, err := common.CallWrite(s.sdk, metadata.ServiceName, "update_metadata", req, nil)
	if err != nil {
		return common.SDKError(err)
	}
	if response.IsError() {
		return common.Forward(metadata.ServiceName, "update_metadata", response)
	}
	return types.NewSuccessResponse("")
}
