package di

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/dikit/errors"
	"github.com/kbukum/dikit/logger"
)

// Instrumentation receives container events for tracing and metrics. The
// observability package provides an OpenTelemetry implementation.
type Instrumentation interface {
	// ResolveStart begins observing one resolution and returns the context
	// to resolve under plus a completion callback.
	ResolveStart(ctx context.Context, iface, scope string) (context.Context, func(created bool, err error))
	// ScopeOpened reports a scope being opened.
	ScopeOpened(ctx context.Context, scope string)
	// ScopeClosed reports a scope being closed.
	ScopeClosed(ctx context.Context, scope string)
}

// Module contributes a set of providers to a container during setup.
type Module interface {
	Configure(c *Container) error
}

// Injection is one record of the testing-mode injection journal: a real
// dependency resolved through a provider and bound to a factory parameter.
// Overrides and defaulted parameters are not recorded.
type Injection struct {
	Provider  Interface
	Param     string
	Interface Interface
	Instance  any
}

// Option configures a container during construction.
type Option func(*Container)

// WithLogger sets the logger used by the container and its scoped contexts.
func WithLogger(l *logger.Logger) Option {
	return func(c *Container) { c.log = l }
}

// WithTesting enables testing mode: every real injection is recorded in the
// journal returned by [Container.Injections].
func WithTesting() Option {
	return func(c *Container) { c.testing = true }
}

// WithStrict makes Start validate the full provider graph (missing
// dependencies, cycles, scope nesting) before any eager resolution.
func WithStrict() Option {
	return func(c *Container) { c.strict = true }
}

// WithInstrumentation wires tracing/metrics callbacks into the container.
func WithInstrumentation(i Instrumentation) Option {
	return func(c *Container) { c.instr = i }
}

// WithEventsOnlyRequests makes request scopes open in events-only mode
// unless a scope asks for a full eager start with [AllResources].
func WithEventsOnlyRequests() Option {
	return func(c *Container) { c.eventsOnlyRequests = true }
}

// Container is the resolution coordinator. It owns the provider registry,
// the singleton and transient scoped contexts, and the override table, and
// hands out request scopes.
type Container struct {
	registry *Registry
	log      *logger.Logger
	testing  bool
	strict   bool
	instr    Instrumentation

	eventsOnlyRequests bool

	singleton *scopedContext
	transient *scopedContext
	overrides *overrideTable

	mu           sync.Mutex
	started      bool
	closed       bool
	openRequests int

	journalMu sync.Mutex
	journal   []Injection
}

// New creates a container ready for registration.
func New(opts ...Option) *Container {
	c := &Container{
		registry:  NewRegistry(),
		log:       logger.Get("container"),
		overrides: newOverrideTable(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.singleton = newScopedContext(Singleton, c.log)
	c.transient = newScopedContext(Transient, c.log)
	return c
}

// Registry exposes the container's provider registry.
func (c *Container) Registry() *Registry { return c.registry }

// Register adds a provider descriptor to the registry.
func (c *Container) Register(p *Provider) error {
	if err := c.registry.Register(p); err != nil {
		return err
	}
	c.log.Debug("provider registered", logger.Fields(
		logger.FieldInterface, p.iface.String(),
		logger.FieldScope, p.scope.String(),
		"kind", p.kind.String(),
	))
	return nil
}

// MustRegister is Register that panics on error. Intended for static
// registration lists evaluated at startup.
func (c *Container) MustRegister(providers ...*Provider) {
	for _, p := range providers {
		if err := c.Register(p); err != nil {
			panic(err)
		}
	}
}

// Install runs each module's Configure against the container.
func (c *Container) Install(modules ...Module) error {
	for _, m := range modules {
		if err := m.Configure(c); err != nil {
			return err
		}
	}
	return nil
}

// Start seals the registry and opens the singleton scope, eagerly resolving
// its resource providers. With the strict option the whole provider graph is
// validated first.
func (c *Container) Start() error {
	if err := c.beginStart(); err != nil {
		return err
	}
	for _, iface := range c.registry.Resources(Singleton) {
		if _, err := c.Resolve(iface); err != nil {
			return err
		}
	}
	c.log.Info("container started", logger.Fields("providers", c.registry.Len()))
	return nil
}

// StartContext is the context-aware mirror of Start; eager resources may use
// context-aware factories.
func (c *Container) StartContext(ctx context.Context) error {
	if err := c.beginStart(); err != nil {
		return err
	}
	for _, iface := range c.registry.Resources(Singleton) {
		if _, err := c.ResolveContext(ctx, iface); err != nil {
			return err
		}
	}
	c.log.Info("container started", logger.Fields("providers", c.registry.Len()))
	return nil
}

func (c *Container) beginStart() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return errors.ContainerClosed()
	}
	if c.started {
		c.mu.Unlock()
		return nil
	}
	c.started = true
	c.mu.Unlock()

	c.registry.seal()
	if c.strict {
		if err := c.registry.Validate(); err != nil {
			return err
		}
	}
	if c.instr != nil {
		c.instr.ScopeOpened(context.Background(), Singleton.String())
	}
	return nil
}

// Close tears down the transient and singleton contexts, releasing their
// synchronous cleanup stacks in reverse acquisition order. All open request
// scopes must be closed first.
func (c *Container) Close() error {
	if err := c.beginClose(); err != nil {
		return err
	}
	errTransient := c.transient.close()
	errSingleton := c.singleton.close()
	c.finishClose()
	if errTransient != nil {
		return errTransient
	}
	return errSingleton
}

// CloseContext is the context-aware mirror of Close; it also releases the
// context-aware cleanup stacks.
func (c *Container) CloseContext(ctx context.Context) error {
	if err := c.beginClose(); err != nil {
		return err
	}
	errTransient := c.transient.closeContext(ctx)
	errSingleton := c.singleton.closeContext(ctx)
	c.finishClose()
	if errTransient != nil {
		return errTransient
	}
	return errSingleton
}

func (c *Container) beginClose() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	if c.openRequests > 0 {
		return errors.ScopesOpen(c.openRequests)
	}
	c.closed = true
	return nil
}

func (c *Container) finishClose() {
	if c.instr != nil {
		c.instr.ScopeClosed(context.Background(), Singleton.String())
	}
	c.log.Info("container closed")
}

// Resolve returns the instance for iface, creating it (and its dependencies,
// recursively) if needed. Providers with context-aware factories fail with a
// SYNCHRONOUS_MODE error.
func (c *Container) Resolve(iface Interface) (any, error) {
	res := &resolution{c: c}
	return c.resolve(res, iface)
}

// ResolveContext is the context-aware mirror of Resolve. A request scope
// opened with OpenRequestContext travels in ctx.
func (c *Container) ResolveContext(ctx context.Context, iface Interface) (any, error) {
	res := &resolution{c: c, request: requestContextFrom(ctx)}
	return c.resolveContext(ctx, res, iface)
}

// Override installs instance as the resolution for iface, taking precedence
// over any cached instance or provider. The returned restore function
// removes it, reinstating a previously overridden value if one existed;
// nested overrides stack.
func (c *Container) Override(iface Interface, instance any) (restore func()) {
	return c.overrides.push(iface, instance)
}

// Injections returns a snapshot of the testing-mode injection journal.
func (c *Container) Injections() []Injection {
	c.journalMu.Lock()
	defer c.journalMu.Unlock()
	out := make([]Injection, len(c.journal))
	copy(out, c.journal)
	return out
}

// ResetInjections clears the injection journal.
func (c *Container) ResetInjections() {
	c.journalMu.Lock()
	c.journal = nil
	c.journalMu.Unlock()
}

func (c *Container) recordInjection(provider Interface, param Param, instance any) {
	c.journalMu.Lock()
	c.journal = append(c.journal, Injection{
		Provider:  provider,
		Param:     param.Name,
		Interface: param.Interface,
		Instance:  instance,
	})
	c.journalMu.Unlock()
}

// ProviderInfo describes one registration for introspection.
type ProviderInfo struct {
	Interface Interface
	Scope     Scope
	Kind      Kind
	Event     bool
	Cached    bool
}

// Providers returns info about all registered providers in registration
// order.
func (c *Container) Providers() []ProviderInfo {
	infos := make([]ProviderInfo, 0, c.registry.Len())
	for _, p := range c.registry.snapshot() {
		_, cached := c.singleton.cached(p.iface)
		infos = append(infos, ProviderInfo{
			Interface: p.iface,
			Scope:     p.scope,
			Kind:      p.kind,
			Event:     p.event,
			Cached:    cached,
		})
	}
	return infos
}

// --- resolution ---

// resolution carries the state of one top-level resolve call down the
// recursive parameter walk: the active request context, if any, and the
// chain of interfaces currently being built (the runtime cycle guard).
type resolution struct {
	c        *Container
	request  *scopedContext
	visiting []Interface
}

func (c *Container) contextFor(res *resolution, scope Scope) (*scopedContext, error) {
	switch scope {
	case Singleton:
		return c.singleton, nil
	case Request:
		if res.request == nil {
			return nil, errors.ScopeNotStarted(Request.String())
		}
		return res.request, nil
	default:
		return c.transient, nil
	}
}

func (c *Container) resolve(res *resolution, iface Interface) (any, error) {
	if v, ok := c.overrides.get(iface); ok {
		return v, nil
	}

	p, err := c.registry.Lookup(iface)
	if err != nil {
		return nil, err
	}
	sc, err := c.contextFor(res, p.scope)
	if err != nil {
		return nil, err
	}
	if err := res.enter(iface); err != nil {
		return nil, err
	}
	defer res.leave()

	_, finish := c.observe(context.Background(), p)
	start := time.Now()
	v, created, err := sc.getOrCreate(p, res)
	finish(created, err)
	if err != nil {
		return nil, err
	}
	if created {
		c.logCreated(p, time.Since(start))
	}
	return v, nil
}

func (c *Container) resolveContext(ctx context.Context, res *resolution, iface Interface) (any, error) {
	if v, ok := c.overrides.get(iface); ok {
		return v, nil
	}

	p, err := c.registry.Lookup(iface)
	if err != nil {
		return nil, err
	}
	sc, err := c.contextFor(res, p.scope)
	if err != nil {
		return nil, err
	}
	if err := res.enter(iface); err != nil {
		return nil, err
	}
	defer res.leave()

	ctx, finish := c.observe(ctx, p)
	start := time.Now()
	v, created, err := sc.getOrCreateContext(ctx, p, res)
	finish(created, err)
	if err != nil {
		return nil, err
	}
	if created {
		c.logCreated(p, time.Since(start))
	}
	return v, nil
}

func (c *Container) observe(ctx context.Context, p *Provider) (context.Context, func(bool, error)) {
	if c.instr == nil {
		return ctx, func(bool, error) {}
	}
	return c.instr.ResolveStart(ctx, p.iface.String(), p.scope.String())
}

func (c *Container) logCreated(p *Provider, d time.Duration) {
	c.log.Debug("instance created", logger.Fields(
		logger.FieldInterface, p.iface.String(),
		logger.FieldScope, p.scope.String(),
		logger.FieldDuration, d.Milliseconds(),
	))
}

func (res *resolution) enter(iface Interface) error {
	for _, v := range res.visiting {
		if v == iface {
			return circularError(iface, res.visiting)
		}
	}
	res.visiting = append(res.visiting, iface)
	return nil
}

func (res *resolution) leave() {
	res.visiting = res.visiting[:len(res.visiting)-1]
}

// resolveArgs resolves one provider's declared parameters in order. For each
// parameter: the override table wins, then the building context's own cache,
// then a full recursive resolution; a missing provider is substituted by the
// parameter's default when one is declared.
func (res *resolution) resolveArgs(p *Provider, building *scopedContext) ([]any, error) {
	if len(p.params) == 0 {
		return nil, nil
	}
	args := make([]any, 0, len(p.params))
	for _, param := range p.params {
		if v, ok := res.c.overrides.get(param.Interface); ok {
			args = append(args, v)
			continue
		}
		if v, ok := building.cached(param.Interface); ok {
			args = append(args, v)
			continue
		}
		v, err := res.c.resolve(res, param.Interface)
		if err != nil {
			if param.HasDefault && errors.HasCode(err, errors.ErrCodeProviderNotFound) {
				args = append(args, param.Default)
				continue
			}
			return nil, err
		}
		if res.c.testing {
			res.c.recordInjection(p.iface, param, v)
		}
		args = append(args, v)
	}
	return args, nil
}

// resolveArgsContext is the context-aware mirror of resolveArgs.
func (res *resolution) resolveArgsContext(ctx context.Context, p *Provider, building *scopedContext) ([]any, error) {
	if len(p.params) == 0 {
		return nil, nil
	}
	args := make([]any, 0, len(p.params))
	for _, param := range p.params {
		if v, ok := res.c.overrides.get(param.Interface); ok {
			args = append(args, v)
			continue
		}
		if v, ok := building.cached(param.Interface); ok {
			args = append(args, v)
			continue
		}
		v, err := res.c.resolveContext(ctx, res, param.Interface)
		if err != nil {
			if param.HasDefault && errors.HasCode(err, errors.ErrCodeProviderNotFound) {
				args = append(args, param.Default)
				continue
			}
			return nil, err
		}
		if res.c.testing {
			res.c.recordInjection(p.iface, param, v)
		}
		args = append(args, v)
	}
	return args, nil
}

// --- request scopes ---

// RequestScope is one open request-scoped lifetime: instances resolved
// through it are identical within the scope and released when it closes.
type RequestScope struct {
	c  *Container
	sc *scopedContext
	id string

	closeMu sync.Mutex
	closed  bool
}

// RequestOption configures a request scope as it opens.
type RequestOption func(*requestOptions)

type requestOptions struct {
	eventsOnly bool
}

// EventsOnly restricts the scope's eager start to providers tagged as
// events, leaving other resources to on-demand resolution. Used by adapters
// that open scopes implicitly and want side effects without forcing
// unrelated expensive resources.
func EventsOnly() RequestOption {
	return func(o *requestOptions) { o.eventsOnly = true }
}

// AllResources forces a full eager start for one scope on a container
// configured with [WithEventsOnlyRequests].
func AllResources() RequestOption {
	return func(o *requestOptions) { o.eventsOnly = false }
}

// OpenRequest opens a request scope and eagerly resolves its resource
// providers.
func (c *Container) OpenRequest(opts ...RequestOption) (*RequestScope, error) {
	rs, o, err := c.newRequestScope(opts)
	if err != nil {
		return nil, err
	}
	for _, iface := range c.registry.Resources(Request) {
		if o.eventsOnly {
			if p, err := c.registry.Lookup(iface); err == nil && !p.event {
				continue
			}
		}
		if _, err := rs.Resolve(iface); err != nil {
			rs.Close()
			return nil, err
		}
	}
	return rs, nil
}

// OpenRequestContext is the context-aware mirror of OpenRequest. The
// returned context carries the scope, so ResolveContext on the container
// finds it.
func (c *Container) OpenRequestContext(ctx context.Context, opts ...RequestOption) (context.Context, *RequestScope, error) {
	rs, o, err := c.newRequestScope(opts)
	if err != nil {
		return ctx, nil, err
	}
	ctx = contextWithRequest(ctx, rs.sc)
	for _, iface := range c.registry.Resources(Request) {
		if o.eventsOnly {
			if p, err := c.registry.Lookup(iface); err == nil && !p.event {
				continue
			}
		}
		if _, err := rs.ResolveContext(ctx, iface); err != nil {
			rs.CloseContext(ctx)
			return ctx, nil, err
		}
	}
	return ctx, rs, nil
}

func (c *Container) newRequestScope(opts []RequestOption) (*RequestScope, *requestOptions, error) {
	o := &requestOptions{eventsOnly: c.eventsOnlyRequests}
	for _, opt := range opts {
		opt(o)
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, nil, errors.ContainerClosed()
	}
	c.openRequests++
	c.mu.Unlock()

	rs := &RequestScope{
		c:  c,
		sc: newScopedContext(Request, c.log),
		id: uuid.New().String(),
	}
	if c.instr != nil {
		c.instr.ScopeOpened(context.Background(), Request.String())
	}
	c.log.Debug("request scope opened", logger.Fields(logger.FieldScopeID, rs.id))
	return rs, o, nil
}

// ID returns the scope's unique identifier, also used in log fields.
func (rs *RequestScope) ID() string { return rs.id }

// Resolve resolves iface with this request scope active.
func (rs *RequestScope) Resolve(iface Interface) (any, error) {
	res := &resolution{c: rs.c, request: rs.sc}
	return rs.c.resolve(res, iface)
}

// ResolveContext resolves iface under ctx with this request scope active.
func (rs *RequestScope) ResolveContext(ctx context.Context, iface Interface) (any, error) {
	res := &resolution{c: rs.c, request: rs.sc}
	return rs.c.resolveContext(ctx, res, iface)
}

// Close releases the scope's synchronous cleanup stack in reverse
// acquisition order. Safe to call more than once; only the first call
// releases.
func (rs *RequestScope) Close() error {
	return rs.closeWith(func() error { return rs.sc.close() })
}

// CloseContext also releases the scope's context-aware cleanup stack.
func (rs *RequestScope) CloseContext(ctx context.Context) error {
	return rs.closeWith(func() error { return rs.sc.closeContext(ctx) })
}

func (rs *RequestScope) closeWith(closeFn func() error) error {
	rs.closeMu.Lock()
	if rs.closed {
		rs.closeMu.Unlock()
		return nil
	}
	rs.closed = true
	rs.closeMu.Unlock()

	// The scope stays counted as open until its releases have run, so a
	// concurrent container close cannot tear down the singleton scope while
	// request-scoped resources still depend on it.
	err := closeFn()
	rs.c.mu.Lock()
	rs.c.openRequests--
	rs.c.mu.Unlock()
	if rs.c.instr != nil {
		rs.c.instr.ScopeClosed(context.Background(), Request.String())
	}
	rs.c.log.Debug("request scope closed", logger.Fields(logger.FieldScopeID, rs.id))
	return err
}

// --- request scope in context ---

type requestScopeKey struct{}

func contextWithRequest(ctx context.Context, sc *scopedContext) context.Context {
	return context.WithValue(ctx, requestScopeKey{}, sc)
}

func requestContextFrom(ctx context.Context) *scopedContext {
	if sc, ok := ctx.Value(requestScopeKey{}).(*scopedContext); ok {
		return sc
	}
	return nil
}
