// Package vm hosts Lua contracts. A contract is deployed once, then its
// main function runs on exec and call. Lua is restricted to deterministic
// libraries and metered per instruction.
package vm

import (
	"encoding/binary"
	"fmt"

	"github.com/servicechain/executor/fvm/environment"
	"github.com/servicechain/executor/fvm/registry"
	"github.com/servicechain/executor/model/types"
	"github.com/servicechain/executor/services/common"
)

const (
	keyDeployNonce = "deploy_nonce"

	eventDeploy = "deploy"
)

func contractKey(address types.Address) string {
	return "contract/" + address.Hex()
}

type Service struct {
	sdk environment.ServiceSDK
}

var _ registry.Service = (*Service)(nil)

func New(sdk environment.ServiceSDK, _ registry.Dependencies) (registry.Service, error) {
	return &Service{sdk: sdk}, nil
}

func (s *Service) Name() string {
	return ServiceName
}

func (s *Service) Methods() []environment.Method {
	return []environment.Method{
		{Name: "deploy", Kind: environment.MethodKindWrite, Cycles: 20, Handler: s.deploy},
		{Name: "exec", Kind: environment.MethodKindWrite, Cycles: 5, Handler: s.exec},
		{Name: "call", Kind: environment.MethodKindRead, Cycles: 5, Handler: s.call},
		{Name: "get_contract", Kind: environment.MethodKindRead, Cycles: 1, Handler: s.getContract},
	}
}

func (s *Service) contractAddress() (types.Address, error) {
	var nonce uint64
	if _, err := s.sdk.GetValue(keyDeployNonce, &nonce); err != nil {
		return types.ZeroAddress, err
	}
	if err := s.sdk.SetValue(keyDeployNonce, nonce+1); err != nil {
		return types.ZeroAddress, err
	}

	ctx := s.sdk.Context()
	seed := append(ctx.Caller.Bytes(), ctx.TxHash.Bytes()...)
	seed = binary.BigEndian.AppendUint64(seed, nonce)
	return types.AddressFromPubKey(seed), nil
}

func (s *Service) loadContract(address types.Address) (Contract, types.ServiceResponse) {
	var contract Contract
	found, err := s.sdk.GetValue(contractKey(address), &contract)
	if err != nil {
		return Contract{}, common.SDKError(err)
	}
	if !found {
		return Contract{}, common.NotFound("contract %s not found", address.Hex())
	}
	return contract, types.NewSuccessResponse("")
}

func contractError(err error) types.ServiceResponse {
	return types.NewErrorResponse(common.CodeContractError, "%s", err)
}

func (s *Service) deploy(payload string) types.ServiceResponse {
	var req DeployPayload
	if err := common.Decode(payload, &req); err != nil {
		return common.InvalidPayload(ServiceName, "deploy", err)
	}

	address, err := s.contractAddress()
	if err != nil {
		return common.SDKError(err)
	}

	contract := Contract{
		Address:  address,
		Deployer: s.sdk.Context().Caller,
		CodeHash: types.Digest([]byte(req.Code)),
		Code:     req.Code,
	}
	if err := s.sdk.SetValue(contractKey(address), contract); err != nil {
		return common.SDKError(err)
	}

	i := newInterpreter(s.sdk, address)
	if err := i.load(req.Code); err != nil {
		return contractError(err)
	}

	result := ""
	if i.hasEntry(entryInit) {
		result, err = i.call(entryInit, req.InitArgs)
		if err != nil {
			return contractError(fmt.Errorf("init failed: %w", err))
		}
	}

	if err := s.sdk.EmitEvent(eventDeploy, address.Hex()); err != nil {
		return common.SDKError(err)
	}
	return common.Success(DeployResponse{Address: address, InitResult: result})
}

func (s *Service) run(method string, payload string) types.ServiceResponse {
	var req ExecPayload
	if err := common.Decode(payload, &req); err != nil {
		return common.InvalidPayload(ServiceName, method, err)
	}

	contract, response := s.loadContract(req.Address)
	if response.IsError() {
		return response
	}

	i := newInterpreter(s.sdk, contract.Address)
	if err := i.load(contract.Code); err != nil {
		return contractError(err)
	}
	result, err := i.call(entryMain, req.Args)
	if err != nil {
		return contractError(err)
	}
	return types.NewSuccessResponse(result)
}

func (s *Service) exec(payload string) types.ServiceResponse {
	return s.run("exec", payload)
}

func (s *Service) call(payload string) types.ServiceResponse {
	return s.run("call", payload)
}

func (s *Service) getContract(payload string) types.ServiceResponse {
	var req GetContractPayload
	if err := common.Decode(payload, &req); err != nil {
		return common.InvalidPayload(ServiceName, "get_contract", err)
	}

	contract, response := s.loadContract(req.Address)
	if response.IsError() {
		return response
	}
	return common.Success(contract)
}
