package di

import (
	"context"
	"io"

	"github.com/kbukum/dikit/errors"
)

// Interface is the identity a provider is registered under and the key a
// resolution asks for. It is an explicit token supplied at registration,
// never inferred from reflection.
type Interface string

// String returns the token value.
func (i Interface) String() string { return string(i) }

// Scope controls the lifetime tier of a provider's instances.
type Scope int

const (
	// Singleton instances live for the container lifetime. One shared
	// instance is cached in the singleton context.
	Singleton Scope = iota

	// Request instances live for one request scope. Identical within one
	// open request scope, distinct across scopes.
	Request

	// Transient instances are never cached. Every resolution constructs a
	// fresh instance.
	Transient
)

// String returns the human-readable name of the scope.
func (s Scope) String() string {
	switch s {
	case Singleton:
		return "singleton"
	case Request:
		return "request"
	case Transient:
		return "transient"
	default:
		return "unknown"
	}
}

// allows reports whether a provider in scope s may depend on a provider in
// scope dep. Outer scopes must not depend on shorter-lived ones: singleton
// providers only on singletons, request providers on request or singleton.
func (s Scope) allows(dep Scope) bool { return dep <= s }

// Kind describes how a provider's factory is invoked and cleaned up.
type Kind int

const (
	// KindPlain factories return a value directly. A returned value
	// implementing io.Closer is registered on the synchronous cleanup stack.
	KindPlain Kind = iota

	// KindResource factories return a value plus an exclusively-owned
	// release function, pushed on the synchronous cleanup stack.
	KindResource

	// KindContext factories take a context and may block; they cannot be
	// invoked from a synchronous resolution.
	KindContext

	// KindContextResource factories take a context and return a
	// context-aware release function, pushed on the context cleanup stack.
	KindContextResource
)

// String returns the human-readable name of the kind.
func (k Kind) String() string {
	switch k {
	case KindPlain:
		return "plain"
	case KindResource:
		return "resource"
	case KindContext:
		return "context"
	case KindContextResource:
		return "context_resource"
	default:
		return "unknown"
	}
}

// ReleaseFunc releases a resource acquired by a factory.
type ReleaseFunc func() error

// CtxReleaseFunc releases a resource acquired by a context-aware factory.
type CtxReleaseFunc func(ctx context.Context) error

// Factory builds an instance from its resolved dependencies, passed in the
// declared parameter order.
type Factory func(args ...any) (any, error)

// ResourceFactory builds an instance together with the release function that
// tears it down when the owning scope closes.
type ResourceFactory func(args ...any) (any, ReleaseFunc, error)

// ContextFactory builds an instance under a context; only reachable through
// context-aware resolution.
type ContextFactory func(ctx context.Context, args ...any) (any, error)

// ContextResourceFactory builds an instance plus a context-aware release
// function; only reachable through context-aware resolution.
type ContextResourceFactory func(ctx context.Context, args ...any) (any, CtxReleaseFunc, error)

// ContextCloser is implemented by instances that release resources with a
// context, e.g. servers with graceful shutdown. Instances returned by
// context-aware factories are checked for it and registered on the context
// cleanup stack.
type ContextCloser interface {
	Shutdown(ctx context.Context) error
}

// Param describes one dependency of a factory, in declaration order.
type Param struct {
	// Name is the parameter's label, used in logs and the injection journal.
	Name string
	// Interface is the dependency token to resolve.
	Interface Interface
	// Default is substituted when no provider is registered for Interface.
	Default any
	// HasDefault distinguishes an explicit nil default from no default.
	HasDefault bool
}

// Dep declares a required dependency parameter.
func Dep(name string, iface Interface) Param {
	return Param{Name: name, Interface: iface}
}

// DepDefault declares a dependency parameter with a fallback value used when
// no provider is registered for it.
func DepDefault(name string, iface Interface, def any) Param {
	return Param{Name: name, Interface: iface, Default: def, HasDefault: true}
}

// Provider is an immutable description of how to build one interface.
// Construct with NewProvider; owned by the Registry after registration.
type Provider struct {
	iface    Interface
	scope    Scope
	kind     Kind
	params   []Param
	event    bool
	override bool

	factory            Factory
	resourceFactory    ResourceFactory
	ctxFactory         ContextFactory
	ctxResourceFactory ContextResourceFactory
}

// ProviderOption configures a provider during construction.
type ProviderOption func(*Provider)

// WithParams declares the factory's dependencies in the order the factory
// receives them.
func WithParams(params ...Param) ProviderOption {
	return func(p *Provider) {
		p.params = params
	}
}

// WithOverride marks the registration as an intentional replacement of an
// existing provider for the same interface.
func WithOverride() ProviderOption {
	return func(p *Provider) {
		p.override = true
	}
}

// AsEvent tags the provider as a side-effect-only event resource, eligible
// for events-only eager start.
func AsEvent() ProviderOption {
	return func(p *Provider) {
		p.event = true
	}
}

// NewProvider builds a provider descriptor for iface in the given scope.
// The factory must be one of Factory, ResourceFactory, ContextFactory or
// ContextResourceFactory (the bare func forms are accepted too); the call
// kind is derived from its type.
func NewProvider(iface Interface, scope Scope, factory any, opts ...ProviderOption) (*Provider, error) {
	if iface == "" {
		return nil, errors.InvalidProvider("", "interface token cannot be empty")
	}
	if scope < Singleton || scope > Transient {
		return nil, errors.InvalidProvider(iface.String(), "unknown scope")
	}

	p := &Provider{iface: iface, scope: scope}

	switch f := factory.(type) {
	case Factory:
		p.kind, p.factory = KindPlain, f
	case func(args ...any) (any, error):
		p.kind, p.factory = KindPlain, f
	case ResourceFactory:
		p.kind, p.resourceFactory = KindResource, f
	case func(args ...any) (any, ReleaseFunc, error):
		p.kind, p.resourceFactory = KindResource, f
	case ContextFactory:
		p.kind, p.ctxFactory = KindContext, f
	case func(ctx context.Context, args ...any) (any, error):
		p.kind, p.ctxFactory = KindContext, f
	case ContextResourceFactory:
		p.kind, p.ctxResourceFactory = KindContextResource, f
	case func(ctx context.Context, args ...any) (any, CtxReleaseFunc, error):
		p.kind, p.ctxResourceFactory = KindContextResource, f
	default:
		return nil, errors.InvalidProvider(iface.String(), "factory must be a Factory, ResourceFactory, ContextFactory or ContextResourceFactory")
	}

	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// MustProvider is NewProvider that panics on a malformed descriptor. Intended
// for static registration lists evaluated at startup.
func MustProvider(iface Interface, scope Scope, factory any, opts ...ProviderOption) *Provider {
	p, err := NewProvider(iface, scope, factory, opts...)
	if err != nil {
		panic(err)
	}
	return p
}

// Instance binds an already-constructed value as a singleton provider. The
// container takes ownership: a value implementing io.Closer is released when
// the singleton scope closes.
func Instance(iface Interface, value any, opts ...ProviderOption) *Provider {
	p := MustProvider(iface, Singleton, Factory(func(...any) (any, error) {
		return value, nil
	}), opts...)
	return p
}

// Interface returns the token the provider is registered under.
func (p *Provider) Interface() Interface { return p.iface }

// Scope returns the provider's declared lifetime tier.
func (p *Provider) Scope() Scope { return p.scope }

// Kind returns the provider's call kind.
func (p *Provider) Kind() Kind { return p.kind }

// Params returns the declared dependency list in factory order.
func (p *Provider) Params() []Param { return p.params }

// Event reports whether the provider is tagged as a side-effect-only event.
func (p *Provider) Event() bool { return p.event }

// resource reports whether creation has a side effect worth forcing at scope
// start even if the instance is never explicitly requested.
func (p *Provider) resource() bool {
	return p.kind == KindResource || p.kind == KindContextResource || p.event
}

// closerRelease adapts an instance that owns resources into a sync release.
func closerRelease(v any) (ReleaseFunc, bool) {
	if c, ok := v.(io.Closer); ok {
		return c.Close, true
	}
	return nil, false
}

// ctxCloserRelease adapts an instance into a context-aware release.
func ctxCloserRelease(v any) (CtxReleaseFunc, bool) {
	if c, ok := v.(ContextCloser); ok {
		return c.Shutdown, true
	}
	return nil, false
}
