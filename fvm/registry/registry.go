package registry

import (
	"fmt"

	"go.uber.org/multierr"

	"github.com/servicechain/executor/fvm/errors"
)

type Registration struct {
	Name         string
	Dependencies []string
	Constructor  Constructor
}

// Registry is a static table of service constructors and their declared
// dependencies.
type Registry struct {
	registrations map[string]Registration
	order         []string
}

var _ ServiceMapping = (*Registry)(nil)

func NewRegistry() *Registry {
	return &Registry{
		registrations: make(map[string]Registration),
	}
}

// Register adds a service. Names must be unique.
func (r *Registry) Register(name string, deps []string, ctor Constructor) error {
	if name == "" {
		return fmt.Errorf("service name must not be empty")
	}
	if ctor == nil {
		return fmt.Errorf("service %q has no constructor", name)
	}
	if _, ok := r.registrations[name]; ok {
		return fmt.Errorf("service %q is already registered", name)
	}

	r.registrations[name] = Registration{
		Name:         name,
		Dependencies: append([]string(nil), deps...),
		Constructor:  ctor,
	}
	r.order = append(r.order, name)
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(name string, deps []string, ctor Constructor) *Registry {
	if err := r.Register(name, deps, ctor); err != nil {
		panic(err)
	}
	return r
}

// ListServiceName returns the registered names in registration order.
func (r *Registry) ListServiceName() []string {
	return append([]string(nil), r.order...)
}

func (r *Registry) Registration(name string) (Registration, bool) {
	reg, ok := r.registrations[name]
	return reg, ok
}

// GetService constructs the named service. Its dependencies are resolved
// through the factory first, so they are shared with every other service of
// the session.
func (r *Registry) GetService(name string, factory *Factory) (Service, error) {
	reg, ok := r.registrations[name]
	if !ok {
		return nil, errors.NewUnknownServiceFailure(name)
	}

	deps := make(Dependencies, len(reg.Dependencies))
	for _, dep := range reg.Dependencies {
		service, err := factory.Get(dep)
		if err != nil {
			return nil, err
		}
		deps[dep] = service
	}

	service, err := reg.Constructor(factory.SDK(name), deps)
	if err != nil {
		return nil, errors.NewServiceConstructionFailure(name, err)
	}
	if service == nil {
		return nil, errors.NewServiceConstructionFailure(
			name,
			fmt.Errorf("constructor returned no service"))
	}
	if service.Name() != name {
		return nil, errors.NewServiceConstructionFailure(
			name,
			fmt.Errorf("constructor returned service %q", service.Name()))
	}
	return service, nil
}

// Validate statically checks the dependency graph. It reports every unknown
// dependency and every cycle.
func (r *Registry) Validate() error {
	var result error

	for _, name := range r.order {
		for _, dep := range r.registrations[name].Dependencies {
			if _, ok := r.registrations[dep]; !ok {
				result = multierr.Append(
					result,
					fmt.Errorf("dependency of %q: %w", name, errors.NewUnknownServiceFailure(dep)))
			}
		}
	}

	const (
		unvisited = iota
		visiting
		visited
	)
	marks := make(map[string]int, len(r.order))
	var stack []string

	var visit func(name string)
	visit = func(name string) {
		reg, ok := r.registrations[name]
		if !ok {
			return
		}
		switch marks[name] {
		case visited:
			return
		case visiting:
			path := []string{name}
			for i := len(stack) - 1; i >= 0; i-- {
				path = append([]string{stack[i]}, path...)
				if stack[i] == name {
					break
				}
			}
			result = multierr.Append(result, errors.NewCyclicDependencyFailure(path))
			return
		}

		marks[name] = visiting
		stack = append(stack, name)
		for _, dep := range reg.Dependencies {
			visit(dep)
		}
		stack = stack[:len(stack)-1]
		marks[name] = visited
	}

	for _, name := range r.order {
		visit(name)
	}
	return result
}
