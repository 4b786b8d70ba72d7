// Package admissioncontrol decides whether a sender may submit transactions:
// it must not be denied and must be able to pay its maximum fee.
package admissioncontrol

import (
	"bytes"
	"fmt"

	"golang.org/x/exp/slices"

	"github.com/servicechain/executor/fvm/environment"
	"github.com/servicechain/executor/fvm/registry"
	"github.com/servicechain/executor/model/types"
	"github.com/servicechain/executor/services/asset"
	"github.com/servicechain/executor/services/common"
	"github.com/servicechain/executor/services/governance"
)

const (
	ServiceName = "admission_control"

	keyAdmin = "admin"

	eventForbid = "forbid"
	eventPermit = "permit"
)

func denyKey(address types.Address) string {
	return "deny/" + address.Hex()
}

type GenesisPayload struct {
	Admin    types.Address   `json:"admin"`
	DenyList []types.Address `json:"deny_list"`
}

type AddressesPayload struct {
	Addrs []types.Address `json:"addrs" validate:"required,min=1"`
}

type IsPermittedPayload struct {
	Sender      types.Address `json:"sender"`
	CyclesLimit uint64        `json:"cycles_limit"`
	CyclesPrice uint64        `json:"cycles_price"`
}

type StatusPayload struct {
	Addr types.Address `json:"addr"`
}

type StatusResponse struct {
	Addr   types.Address `json:"addr"`
	Denied bool          `json:"denied"`
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
		{Name: "is_permitted", Kind: environment.MethodKindRead, Cycles: 1, Handler: s.isPermitted},
		{Name: "status", Kind: environment.MethodKindRead, Cycles: 1, Handler: s.status},
		{Name: "forbid", Kind: environment.MethodKindWrite, Cycles: 2, Handler: s.forbid},
		{Name: "permit", Kind: environment.MethodKindWrite, Cycles: 2, Handler: s.permit},
	}
}

func (s *Service) InitGenesis(payload string) error {
	var genesis GenesisPayload
	if err := common.Decode(payload, &genesis); err != nil {
		return fmt.Errorf("invalid admission control genesis: %w", err)
	}

	if err := s.sdk.SetValue(keyAdmin, genesis.Admin); err != nil {
		return err
	}
	for _, address := range genesis.DenyList {
		if err := s.sdk.SetValue(denyKey(address), true); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) denied(address types.Address) (bool, error) {
	var denied bool
	_, err := s.sdk.GetValue(denyKey(address), &denied)
	return denied, err
}

// checkAdmin accepts the admission control admin and the governance admin.
func (s *Service) checkAdmin() types.ServiceResponse {
	caller := s.sdk.Context().Caller

	var admin types.Address
	if _, err := s.sdk.GetValue(keyAdmin, &admin); err != nil {
		return common.SDKError(err)
	}
	if caller == admin {
		return types.NewSuccessResponse("")
	}

	var governAdmin governance.AdminResponse
	response, err := common.CallRead(s.sdk, governance.ServiceName, "get_admin_address", nil, &governAdmin)
	if err != nil {
		return common.SDKError(err)
	}
	if response.IsError() {
		return common.Forward(governance.ServiceName, "get_admin_address", response)
	}
	if caller == governAdmin.Admin {
		return types.NewSuccessResponse("")
	}
	return common.PermissionDenied("%s is not an admission control admin", caller.Hex())
}

func (s *Service) update(method string, event string, payload string, deny bool) types.ServiceResponse {
	var req AddressesPayload
	if err := common.Decode(payload, &req); err != nil {
		return common.InvalidPayload(ServiceName, method, err)
	}

	if response := s.checkAdmin(); response.IsError() {
		return response
	}

	addrs := append([]types.Address{}, req.Addrs...)
	slices.SortFunc(addrs, func(a, b types.Address) int {
		return bytes.Compare(a.Bytes(), b.Bytes())
	})
	addrs = slices.Compact(addrs)

	for _, address := range addrs {
		var err error
		if deny {
			err = s.sdk.SetValue(denyKey(address), true)
		} else {
			err = s.sdk.Remove(denyKey(address))
		}
		if err != nil {
			return common.SDKError(err)
		}
	}

	data, err := common.Encode(AddressesPayload{Addrs: addrs})
	if err != nil {
		return common.SDKError(err)
	}
	if err := s.sdk.EmitEvent(event, data); err != nil {
		return common.SDKError(err)
	}
	return types.NewSuccessResponse("")
}

func (s *Service) forbid(payload string) types.ServiceResponse {
	return s.update("forbid", eventForbid, payload, true)
}

func (s *Service) permit(payload string) types.ServiceResponse {
	return s.update("permit", eventPermit, payload, false)
}

func (s *Service) isPermitted(payload string) types.ServiceResponse {
	var req IsPermittedPayload
	if err := common.Decode(payload, &req); err != nil {
		return common.InvalidPayload(ServiceName, "is_permitted", err)
	}

	denied, err := s.denied(req.Sender)
	if err != nil {
		return common.SDKError(err)
	}
	if denied {
		return types.NewErrorResponse(common.CodeRejected, "%s is denied", req.Sender.Hex())
	}

	maxFee, ok := common.SafeMul(req.CyclesLimit, req.CyclesPrice)
	if !ok {
		return types.NewErrorResponse(common.CodeOverflow, "maximum fee overflows")
	}

	balance, response := asset.NativeBalance(s.sdk, req.Sender)
	if response.IsError() {
		return response
	}
	if balance < maxFee {
		return types.NewErrorResponse(
			common.CodeInsufficientBalance,
			"balance %d of %s does not cover maximum fee %d",
			balance,
			req.Sender.Hex(),
			maxFee)
	}
	return types.NewSuccessResponse("")
}

func (s *Service) status(payload string) types.ServiceResponse {
	var req StatusPayload
	if err := common.Decode(payload, &req); err != nil {
		return common.InvalidPayload(ServiceName, "status", err)
	}

	denied, err := s.denied(req.Addr)
	if err != nil {
		return common.SDKError(err)
	}
	return common.Success(StatusResponse{Addr: req.Addr, Denied: denied})
}
