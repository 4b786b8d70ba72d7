package registry

import (
	"github.com/servicechain/executor/fvm/environment"
	"github.com/servicechain/executor/model/types"
)

// Service is a pluggable module exposing named methods over a private state
// namespace.
type Service interface {
	Name() string
	Methods() []environment.Method
}

// Genesis is implemented by services that accept a genesis payload.
type Genesis interface {
	InitGenesis(payload string) error
}

// BlockHook is implemented by services that run logic around every block.
// Hooks run unmetered, in registration order.
type BlockHook interface {
	HookBefore(params types.ExecutorParams) error
	HookAfter(params types.ExecutorParams) error
}

// FeeCollector is implemented by the service charging transaction fees.
type FeeCollector interface {
	// PayerBalance returns the balance fees are paid from.
	PayerBalance(payer types.Address) (uint64, error)
	// CollectFee moves amount from payer to proposer.
	CollectFee(payer types.Address, proposer types.Address, amount uint64) types.ServiceResponse
}

// Dependencies are the constructed dependencies of a service, by name.
type Dependencies map[string]Service

// Constructor builds a service on top of its SDK handle and dependencies.
type Constructor func(sdk environment.ServiceSDK, deps Dependencies) (Service, error)

// SDKFactory supplies the SDK handle of a service.
type SDKFactory interface {
	GetSDK(service string) environment.ServiceSDK
}

// ServiceMapping resolves service names to services. It is consulted at the
// start of every genesis, block and read.
type ServiceMapping interface {
	GetService(name string, factory *Factory) (Service, error)
	ListServiceName() []string
}
