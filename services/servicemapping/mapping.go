// Package servicemapping wires the built-in services into a registry.
package servicemapping

import (
	"github.com/servicechain/executor/fvm/registry"
	"github.com/servicechain/executor/services/admissioncontrol"
	"github.com/servicechain/executor/services/asset"
	"github.com/servicechain/executor/services/authorization"
	"github.com/servicechain/executor/services/governance"
	"github.com/servicechain/executor/services/kyc"
	"github.com/servicechain/executor/services/metadata"
	"github.com/servicechain/executor/services/multisignature"
	"github.com/servicechain/executor/services/timestamp"
	"github.com/servicechain/executor/services/transferquota"
	"github.com/servicechain/executor/services/vm"
)

type entry struct {
	name        string
	deps        []string
	constructor registry.Constructor
}

// builtins lists the built-in services and their dependencies. Block hooks
// run in this order.
var builtins = []entry{
	{metadata.ServiceName, nil, metadata.New},
	{kyc.ServiceName, nil, kyc.New},
	{timestamp.ServiceName, nil, timestamp.New},
	{multisignature.ServiceName, nil, multisignature.New},
	{transferquota.ServiceName, []string{kyc.ServiceName, timestamp.ServiceName}, transferquota.New},
	{asset.ServiceName, []string{transferquota.ServiceName}, asset.New},
	{governance.ServiceName, []string{asset.ServiceName, metadata.ServiceName}, governance.New},
	{admissioncontrol.ServiceName, []string{asset.ServiceName, governance.ServiceName}, admissioncontrol.New},
	{authorization.ServiceName, []string{multisignature.ServiceName, admissioncontrol.ServiceName}, authorization.New},
	{vm.ServiceName, []string{asset.ServiceName, governance.ServiceName, kyc.ServiceName}, vm.New},
}

// NewDefault returns a registry of all built-in services.
func NewDefault() *registry.Registry {
	r := registry.NewRegistry()
	for _, e := range builtins {
		r.MustRegister(e.name, e.deps, e.constructor)
	}
	return r
}

// New returns a registry of the named built-in services, in the order of
// the built-in table. Dependencies are not added implicitly.
func New(names ...string) *registry.Registry {
	wanted := make(map[string]struct{}, len(names))
	for _, name := range names {
		wanted[name] = struct{}{}
	}

	r := registry.NewRegistry()
	for _, e := range builtins {
		if _, ok := wanted[e.name]; ok {
			r.MustRegister(e.name, e.deps, e.constructor)
		}
	}
	return r
}
