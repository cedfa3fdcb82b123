package di

import (
	"strings"
	"sync"

	"github.com/kbukum/dikit/errors"
)

// Registry maps interface tokens to their provider descriptors. It is
// mutable during application setup and sealed when the container starts;
// lookups after that point take the read lock only.
type Registry struct {
	mu        sync.RWMutex
	providers map[Interface]*Provider
	order     []Interface
	sealed    bool
}

// NewRegistry creates an empty provider registry.
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[Interface]*Provider),
	}
}

// Register adds a provider descriptor. It fails with a DUPLICATE_PROVIDER
// configuration error when the interface is already bound and the provider
// does not carry explicit override intent, and with INVALID_SCOPE when the
// provider depends on an already-registered provider of a shorter-lived
// scope.
func (r *Registry) Register(p *Provider) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed {
		return errors.InvalidProvider(p.iface.String(), "registry is sealed; register providers before the container starts")
	}

	_, exists := r.providers[p.iface]
	if exists && !p.override {
		return errors.DuplicateProvider(p.iface.String())
	}

	for _, param := range p.params {
		dep, ok := r.providers[param.Interface]
		if !ok {
			continue
		}
		if !p.scope.allows(dep.scope) {
			return errors.InvalidScope(p.iface.String(), p.scope.String(), dep.iface.String(), dep.scope.String())
		}
	}

	if !exists {
		r.order = append(r.order, p.iface)
	}
	r.providers[p.iface] = p
	return nil
}

// Lookup returns the provider for iface, or a PROVIDER_NOT_FOUND lookup
// error when the interface is unknown.
func (r *Registry) Lookup(iface Interface) (*Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[iface]
	if !ok {
		return nil, errors.ProviderNotFound(iface.String())
	}
	return p, nil
}

// Has reports whether a provider is registered for iface.
func (r *Registry) Has(iface Interface) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.providers[iface]
	return ok
}

// Resources returns the interfaces of scope's resource providers in
// registration order. These are eagerly resolved when the scope starts.
func (r *Registry) Resources(scope Scope) []Interface {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Interface
	for _, iface := range r.order {
		p := r.providers[iface]
		if p.scope == scope && p.resource() {
			out = append(out, iface)
		}
	}
	return out
}

// Len returns the number of registered providers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.providers)
}

// snapshot returns the registered providers in registration order.
func (r *Registry) snapshot() []*Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Provider, 0, len(r.order))
	for _, iface := range r.order {
		out = append(out, r.providers[iface])
	}
	return out
}

// seal freezes the registry. Registration attempts after sealing fail.
func (r *Registry) seal() {
	r.mu.Lock()
	r.sealed = true
	r.mu.Unlock()
}

type validateState int

const (
	unvisited validateState = iota
	visiting
	visited
)

// Validate walks the full provider graph, detecting missing dependencies
// (that have no declared default), circular dependencies and scope-nesting
// violations. It reports the first problem found.
func (r *Registry) Validate() error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	states := make(map[Interface]validateState)
	for _, iface := range r.order {
		if err := r.validate(iface, states, nil); err != nil {
			return err
		}
	}
	return nil
}

func (r *Registry) validate(iface Interface, states map[Interface]validateState, stack []Interface) error {
	switch states[iface] {
	case visiting:
		return circularError(iface, stack)
	case visited:
		return nil
	}

	p := r.providers[iface]
	states[iface] = visiting
	stack = append(stack, iface)

	for _, param := range p.params {
		dep, ok := r.providers[param.Interface]
		if !ok {
			if param.HasDefault {
				continue
			}
			return errors.ProviderNotFound(param.Interface.String()).
				WithDetail("required_by", iface.String())
		}
		if !p.scope.allows(dep.scope) {
			return errors.InvalidScope(iface.String(), p.scope.String(), dep.iface.String(), dep.scope.String())
		}
		if err := r.validate(param.Interface, states, stack); err != nil {
			return err
		}
	}

	states[iface] = visited
	return nil
}

func circularError(iface Interface, stack []Interface) error {
	chain := make([]string, 0, len(stack)+1)
	for _, s := range stack {
		chain = append(chain, s.String())
	}
	chain = append(chain, iface.String())
	return errors.CircularDependency(strings.Join(chain, " -> "))
}
