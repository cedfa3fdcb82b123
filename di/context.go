package di

import (
	"context"
	stderrors "errors"
	"sync"

	"github.com/kbukum/dikit/errors"
	"github.com/kbukum/dikit/logger"
)

// scopedContext is the creation, caching and cleanup engine for one lifetime
// tier. It owns the per-scope instance cache and two ordered cleanup stacks,
// released in strict last-acquired-first-released order when the context
// closes.
type scopedContext struct {
	scope Scope
	log   *logger.Logger

	mu          sync.Mutex
	instances   map[Interface]any
	inflight    map[Interface]*inflight
	releases    []ReleaseFunc
	ctxReleases []CtxReleaseFunc
	closed      bool
}

// inflight marks a creation in progress so concurrent resolutions of the
// same uncached interface wait for the winner instead of constructing twice.
type inflight struct {
	done     chan struct{}
	instance any
	err      error
}

func newScopedContext(scope Scope, log *logger.Logger) *scopedContext {
	return &scopedContext{
		scope:     scope,
		log:       log,
		instances: make(map[Interface]any),
		inflight:  make(map[Interface]*inflight),
	}
}

// cached returns the cached instance for iface, if any.
func (s *scopedContext) cached(iface Interface) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.instances[iface]
	return v, ok
}

// set stores an instance directly in the context's cache.
func (s *scopedContext) set(iface Interface, instance any) {
	s.mu.Lock()
	s.instances[iface] = instance
	s.mu.Unlock()
}

// delete removes an instance from the context's cache.
func (s *scopedContext) delete(iface Interface) {
	s.mu.Lock()
	delete(s.instances, iface)
	s.mu.Unlock()
}

// getOrCreate returns the cached instance for the provider's interface or
// builds, caches and returns a new one. The boolean reports whether a
// creation occurred. For the transient scope nothing is ever cached and
// every call builds a fresh instance.
//
// Racing callers are de-duplicated per interface: exactly one factory call
// occurs and every caller observes the same instance. A failed creation
// leaves no cache entry.
func (s *scopedContext) getOrCreate(p *Provider, res *resolution) (any, bool, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, false, errors.ContainerClosed().WithDetail("scope", s.scope.String())
	}
	if s.scope == Transient {
		s.mu.Unlock()
		v, err := s.createInstance(p, res)
		return v, true, err
	}
	if v, ok := s.instances[p.iface]; ok {
		s.mu.Unlock()
		return v, false, nil
	}
	if fl, ok := s.inflight[p.iface]; ok {
		s.mu.Unlock()
		<-fl.done
		// A failed winner leaves no cache entry; the failure is shared with
		// every waiter and a later resolution may try again.
		if fl.err != nil {
			return nil, false, fl.err
		}
		return fl.instance, false, nil
	}
	fl := &inflight{done: make(chan struct{})}
	s.inflight[p.iface] = fl
	s.mu.Unlock()

	v, err := s.createInstance(p, res)
	s.finish(p.iface, fl, v, err)
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

// getOrCreateContext is the context-aware mirror of getOrCreate. Waiters on
// an in-flight creation honor ctx cancellation; the winner's creation still
// completes and its resources remain owned by the context.
func (s *scopedContext) getOrCreateContext(ctx context.Context, p *Provider, res *resolution) (any, bool, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, false, errors.ContainerClosed().WithDetail("scope", s.scope.String())
	}
	if s.scope == Transient {
		s.mu.Unlock()
		v, err := s.createInstanceContext(ctx, p, res)
		return v, true, err
	}
	if v, ok := s.instances[p.iface]; ok {
		s.mu.Unlock()
		return v, false, nil
	}
	if fl, ok := s.inflight[p.iface]; ok {
		s.mu.Unlock()
		select {
		case <-fl.done:
			if fl.err != nil {
				return nil, false, fl.err
			}
			return fl.instance, false, nil
		case <-ctx.Done():
			return nil, false, ctx.Err()
		}
	}
	fl := &inflight{done: make(chan struct{})}
	s.inflight[p.iface] = fl
	s.mu.Unlock()

	v, err := s.createInstanceContext(ctx, p, res)
	s.finish(p.iface, fl, v, err)
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

// finish publishes the outcome of an in-flight creation. Only a successful
// creation populates the cache.
func (s *scopedContext) finish(iface Interface, fl *inflight, v any, err error) {
	s.mu.Lock()
	fl.instance, fl.err = v, err
	delete(s.inflight, iface)
	if err == nil && !s.closed && s.scope != Transient {
		s.instances[iface] = v
	}
	s.mu.Unlock()
	close(fl.done)
}

// createInstance builds an instance synchronously. Context-aware providers
// cannot be created here and fail with a SYNCHRONOUS_MODE error.
func (s *scopedContext) createInstance(p *Provider, res *resolution) (any, error) {
	switch p.kind {
	case KindContext, KindContextResource:
		return nil, errors.SynchronousMode(p.iface.String())
	}

	args, err := res.resolveArgs(p, s)
	if err != nil {
		return nil, err
	}

	if p.kind == KindResource {
		v, release, err := p.resourceFactory(args...)
		if err != nil {
			return nil, err
		}
		if release != nil {
			s.pushRelease(release)
		}
		return v, nil
	}

	v, err := p.factory(args...)
	if err != nil {
		return nil, err
	}
	if release, ok := closerRelease(v); ok {
		s.pushRelease(release)
	}
	return v, nil
}

// createInstanceContext builds an instance under a context. Synchronous
// factories are still supported; their releases stay on the synchronous
// stack and run when the context closes synchronously.
func (s *scopedContext) createInstanceContext(ctx context.Context, p *Provider, res *resolution) (any, error) {
	args, err := res.resolveArgsContext(ctx, p, s)
	if err != nil {
		return nil, err
	}

	switch p.kind {
	case KindContext:
		v, err := p.ctxFactory(ctx, args...)
		if err != nil {
			return nil, err
		}
		if release, ok := ctxCloserRelease(v); ok {
			s.pushCtxRelease(release)
		} else if release, ok := closerRelease(v); ok {
			s.pushRelease(release)
		}
		return v, nil

	case KindContextResource:
		v, release, err := p.ctxResourceFactory(ctx, args...)
		if err != nil {
			return nil, err
		}
		if release != nil {
			s.pushCtxRelease(release)
		}
		return v, nil

	case KindResource:
		v, release, err := p.resourceFactory(args...)
		if err != nil {
			return nil, err
		}
		if release != nil {
			s.pushRelease(release)
		}
		return v, nil
	}

	v, err := p.factory(args...)
	if err != nil {
		return nil, err
	}
	if release, ok := ctxCloserRelease(v); ok {
		s.pushCtxRelease(release)
	} else if release, ok := closerRelease(v); ok {
		s.pushRelease(release)
	}
	return v, nil
}

func (s *scopedContext) pushRelease(f ReleaseFunc) {
	s.mu.Lock()
	s.releases = append(s.releases, f)
	s.mu.Unlock()
}

func (s *scopedContext) pushCtxRelease(f CtxReleaseFunc) {
	s.mu.Lock()
	s.ctxReleases = append(s.ctxReleases, f)
	s.mu.Unlock()
}

// close releases the synchronous cleanup stack in reverse acquisition order.
// Every release is attempted; failures are joined into one CLEANUP_FAILED
// error. A second close is a no-op. Resources on the context stack cannot be
// released here; closeContext must be used when any exist.
func (s *scopedContext) close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	releases := s.releases
	s.releases = nil
	pending := len(s.ctxReleases)
	s.instances = make(map[Interface]any)
	s.mu.Unlock()

	if pending > 0 {
		s.log.Warn("scope closed synchronously with context-aware resources pending",
			logger.Fields(logger.FieldScope, s.scope.String(), "pending", pending))
	}

	if err := runReleases(releases); err != nil {
		return errors.CleanupFailed(s.scope.String(), err)
	}
	return nil
}

// closeContext releases the synchronous stack first, then the context-aware
// stack, each in reverse acquisition order.
func (s *scopedContext) closeContext(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	releases := s.releases
	ctxReleases := s.ctxReleases
	s.releases = nil
	s.ctxReleases = nil
	s.instances = make(map[Interface]any)
	s.mu.Unlock()

	errs := []error{runReleases(releases)}
	for i := len(ctxReleases) - 1; i >= 0; i-- {
		if err := ctxReleases[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}

	if err := stderrors.Join(errs...); err != nil {
		return errors.CleanupFailed(s.scope.String(), err)
	}
	return nil
}

func runReleases(releases []ReleaseFunc) error {
	var errs []error
	for i := len(releases) - 1; i >= 0; i-- {
		if err := releases[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return stderrors.Join(errs...)
}
