// Package authorization checks that a transaction may be submitted: its
// signatures are valid and its sender is admitted.
package authorization

import (
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/servicechain/executor/fvm/environment"
	"github.com/servicechain/executor/fvm/registry"
	"github.com/servicechain/executor/model/types"
	"github.com/servicechain/executor/services/admissioncontrol"
	"github.com/servicechain/executor/services/common"
	"github.com/servicechain/executor/services/multisignature"
)

const ServiceName = "authorization"

type CheckAuthorizationPayload struct {
	Sender      types.Address   `json:"sender"`
	TxHash      types.Hash      `json:"tx_hash"`
	Pubkeys     []hexutil.Bytes `json:"pubkeys" validate:"required,min=1"`
	Signatures  []hexutil.Bytes `json:"signatures" validate:"required,min=1"`
	CyclesLimit uint64          `json:"cycles_limit"`
	CyclesPrice uint64          `json:"cycles_price"`
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
		{Name: "check_authorization", Kind: environment.MethodKindRead, Cycles: 1, Handler: s.checkAuthorization},
	}
}

func (s *Service) checkAuthorization(payload string) types.ServiceResponse {
	var req CheckAuthorizationPayload
	if err := common.Decode(payload, &req); err != nil {
		return common.InvalidPayload(ServiceName, "check_authorization", err)
	}

	response, err := common.CallRead(
		s.sdk,
		multisignature.ServiceName,
		"verify_signature",
		multisignature.VerifySignaturePayload{
			Sender:     req.Sender,
			TxHash:     req.TxHash,
			Pubkeys:    req.Pubkeys,
			Signatures: req.Signatures,
		},
		nil)
	if err != nil {
		return common.SDKError(err)
	}
	if response.IsError() {
		return common.Forward(multisignature.ServiceName, "verify_signature", response)
	}

	response, err = common.CallRead(
		s.sdk,
		admissioncontrol.ServiceName,
		"is_permitted",
		admissioncontrol.IsPermittedPayload{
			Sender:      req.Sender,
			CyclesLimit: req.CyclesLimit,
			CyclesPrice: req.CyclesPrice,
		},
		nil)
	if err != nil {
		return common.SDKError(err)
	}
	if response.IsError() {
		return common.Forward(admissioncontrol.ServiceName, "is_permitted", response)
	}
	return types.NewSuccessResponse("")
}
