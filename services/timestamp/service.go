// Package timestamp records the timestamp of every executed block.
package timestamp

import (
	"fmt"

	"github.com/servicechain/executor/fvm/environment"
	"github.com/servicechain/executor/fvm/registry"
	"github.com/servicechain/executor/model/types"
	"github.com/servicechain/executor/services/common"
)

const (
	ServiceName = "timestamp"

	keyAdmin     = "admin"
	keyTimestamp = "timestamp"
)

type GenesisPayload struct {
	Admin types.Address `json:"admin"`
}

// TimestampResponse carries a block timestamp, in seconds since the Unix
// epoch.
type TimestampResponse struct {
	Timestamp uint64 `json:"timestamp"`
}

type Service struct {
	sdk environment.ServiceSDK
}

var (
	_ registry.Service   = (*Service)(nil)
	_ registry.Genesis   = (*Service)(nil)
	_ registry.BlockHook = (*Service)(nil)
)

func New(sdk environment.ServiceSDK, _ registry.Dependencies) (registry.Service, error) {
	return &Service{sdk: sdk}, nil
}

func (s *Service) Name() string {
	return ServiceName
}

func (s *Service) Methods() []environment.Method {
	return []environment.Method{
		{
			Name:    "get_timestamp",
			Kind:    environment.MethodKindRead,
			Cycles:  1,
			Handler: s.getTimestamp,
		},
	}
}

func (s *Service) InitGenesis(payload string) error {
	var genesis GenesisPayload
	if err := common.Decode(payload, &genesis); err != nil {
		return fmt.Errorf("invalid timestamp genesis: %w", err)
	}

	if err := s.sdk.SetValue(keyAdmin, genesis.Admin); err != nil {
		return err
	}
	return s.sdk.SetValue(keyTimestamp, s.sdk.Context().Timestamp)
}

func (s *Service) HookBefore(types.ExecutorParams) error {
	return nil
}

// HookAfter records the timestamp of the executed block.
func (s *Service) HookAfter(params types.ExecutorParams) error {
	return s.sdk.SetValue(keyTimestamp, params.Timestamp)
}

func (s *Service) getTimestamp(string) types.ServiceResponse {
	var timestamp uint64
	if _, err := s.sdk.GetValue(keyTimestamp, &timestamp); err != nil {
		return common.SDKError(err)
	}
	return common.Success(TimestampResponse{Timestamp: timestamp})
}
