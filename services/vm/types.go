package vm

import (
	"github.com/servicechain/executor/model/types"
)

const ServiceName = "vm"

type Contract struct {
	Address  types.Address `json:"address" cbor:"address"`
	Deployer types.Address `json:"deployer" cbor:"deployer"`
	CodeHash types.Hash    `json:"code_hash" cbor:"code_hash"`
	Code     string        `json:"code" cbor:"code"`
}

type DeployPayload struct {
	Code     string `json:"code" validate:"required,max=65536"`
	InitArgs string `json:"init_args"`
}

type DeployResponse struct {
	Address    types.Address `json:"address"`
	InitResult string        `json:"init_result"`
}

type ExecPayload struct {
	Address types.Address `json:"address"`
	Args    string        `json:"args"`
}

type GetContractPayload struct {
	Address types.Address `json:"address"`
}
