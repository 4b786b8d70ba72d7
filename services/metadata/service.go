// Package metadata stores the chain parameters. They are set at genesis and
// changed only through governance.
package metadata

import (
	"fmt"

	"github.com/servicechain/executor/fvm/environment"
	"github.com/servicechain/executor/fvm/registry"
	"github.com/servicechain/executor/model/types"
	"github.com/servicechain/executor/services/common"
)

const (
	ServiceName = "metadata"

	keyMetadata = "metadata"

	eventUpdateMetadata = "update_metadata"
)

// governanceServiceName is the only service allowed to update the metadata.
const governanceServiceName = "governance"

type Validator struct {
	PubKey        string `json:"pub_key" cbor:"pub_key"`
	ProposeWeight uint32 `json:"propose_weight" cbor:"propose_weight"`
	VoteWeight    uint32 `json:"vote_weight" cbor:"vote_weight"`
}

type Metadata struct {
	ChainID      types.Hash  `json:"chain_id" cbor:"chain_id"`
	Version      string      `json:"version" cbor:"version"`
	TimeoutGap   uint64      `json:"timeout_gap" cbor:"timeout_gap"`
	CyclesLimit  uint64      `json:"cycles_limit" cbor:"cycles_limit" validate:"gt=0"`
	CyclesPrice  uint64      `json:"cycles_price" cbor:"cycles_price"`
	Interval     uint64      `json:"interval" cbor:"interval"`
	VerifierList []Validator `json:"verifier_list" cbor:"verifier_list"`
	TxNumLimit   uint64      `json:"tx_num_limit" cbor:"tx_num_limit"`
	MaxTxSize    uint64      `json:"max_tx_size" cbor:"max_tx_size"`
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
		{Name: "get_metadata", Kind: environment.MethodKindRead, Cycles: 1, Handler: s.getMetadata},
		{Name: "update_metadata", Kind: environment.MethodKindWrite, Cycles: 5, Handler: s.updateMetadata},
	}
}

func (s *Service) InitGenesis(payload string) error {
	var metadata Metadata
	if err := common.Decode(payload, &metadata); err != nil {
		return fmt.Errorf("invalid metadata genesis: %w", err)
	}
	return s.sdk.SetValue(keyMetadata, metadata)
}

func (s *Service) getMetadata(string) types.ServiceResponse {
	var metadata Metadata
	found, err := s.sdk.GetValue(keyMetadata, &metadata)
	if err != nil {
		return common.SDKError(err)
	}
	if !found {
		return common.NotFound("metadata is not set")
	}
	return common.Success(metadata)
}

func (s *Service) updateMetadata(payload string) types.ServiceResponse {
	if caller := s.sdk.Context().CallerService; caller != governanceServiceName {
		return common.PermissionDenied("metadata can only be updated by the %s service", governanceServiceName)
	}

	var metadata Metadata
	if err := common.Decode(payload, &metadata); err != nil {
		return common.InvalidPayload(ServiceName, "update_metadata", err)
	}

	if err := s.sdk.SetValue(keyMetadata, metadata); err != nil {
		return common.SDKError(err)
	}
	if err := s.sdk.EmitEvent(eventUpdateMetadata, payload); err != nil {
		return common.SDKError(err)
	}
	return types.NewSuccessResponse("")
}
