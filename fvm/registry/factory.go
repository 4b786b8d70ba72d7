package registry

import (
	"github.com/servicechain/executor/fvm/environment"
	"github.com/servicechain/executor/fvm/errors"
)

// Factory materializes the service graph of one session. Every service is
// constructed at most once and shared by all its dependents.
type Factory struct {
	mapping ServiceMapping
	sdks    SDKFactory

	services    map[string]Service
	methods     map[string]map[string]environment.Method
	constructed map[string]int

	// names under construction, in resolution order
	resolving []string
}

var _ environment.ServiceResolver = (*Factory)(nil)

func NewFactory(mapping ServiceMapping, sdks SDKFactory) *Factory {
	return &Factory{
		mapping:     mapping,
		sdks:        sdks,
		services:    make(map[string]Service),
		methods:     make(map[string]map[string]environment.Method),
		constructed: make(map[string]int),
	}
}

// SDK returns the SDK handle of the named service.
func (f *Factory) SDK(name string) environment.ServiceSDK {
	return f.sdks.GetSDK(name)
}

// Get returns the named service, constructing it and its dependencies on
// first use. Revisiting a name still under construction fails with a
// cyclic dependency failure.
func (f *Factory) Get(name string) (Service, error) {
	if service, ok := f.services[name]; ok {
		return service, nil
	}

	for i, resolving := range f.resolving {
		if resolving == name {
			path := append(append([]string(nil), f.resolving[i:]...), name)
			return nil, errors.NewCyclicDependencyFailure(path)
		}
	}

	f.resolving = append(f.resolving, name)
	service, err := f.mapping.GetService(name, f)
	f.resolving = f.resolving[:len(f.resolving)-1]
	if err != nil {
		return nil, err
	}

	methods := make(map[string]environment.Method)
	for _, m := range service.Methods() {
		methods[m.Name] = m
	}

	f.services[name] = service
	f.methods[name] = methods
	f.constructed[name]++
	return service, nil
}

// GetAll constructs every service of the mapping and returns them in the
// mapping's order.
func (f *Factory) GetAll() ([]Service, error) {
	names := f.mapping.ListServiceName()
	services := make([]Service, 0, len(names))
	for _, name := range names {
		service, err := f.Get(name)
		if err != nil {
			return nil, err
		}
		services = append(services, service)
	}
	return services, nil
}

// ResolveMethod returns the named method of the named service.
func (f *Factory) ResolveMethod(
	service string,
	method string,
) (
	environment.Method,
	error,
) {
	if _, err := f.Get(service); err != nil {
		return environment.Method{}, err
	}

	m, ok := f.methods[service][method]
	if !ok {
		return environment.Method{}, errors.NewMethodNotFoundError(service, method)
	}
	return m, nil
}

// Constructed returns how many times the named service was constructed by
// this factory.
func (f *Factory) Constructed(name string) int {
	return f.constructed[name]
}
