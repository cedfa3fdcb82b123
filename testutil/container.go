package testutil

import (
	"testing"

	"github.com/kbukum/dikit/di"
	"github.com/kbukum/dikit/logger"
)

// NewContainer creates a container in testing mode with the given providers
// registered, and closes it via t.Cleanup when the test ends. Logging is
// discarded.
func NewContainer(t *testing.T, providers ...*di.Provider) *di.Container {
	t.Helper()
	return NewContainerWith(t, nil, providers...)
}

// NewContainerWith is NewContainer with extra container options, applied
// after the testing defaults.
func NewContainerWith(t *testing.T, opts []di.Option, providers ...*di.Provider) *di.Container {
	t.Helper()

	options := append([]di.Option{
		di.WithLogger(logger.NewNop()),
		di.WithTesting(),
	}, opts...)

	c := di.New(options...)
	for _, p := range providers {
		if err := c.Register(p); err != nil {
			t.Fatalf("registering provider %s: %v", p.Interface(), err)
		}
	}
	t.Cleanup(func() {
		if err := c.Close(); err != nil {
			t.Errorf("closing container: %v", err)
		}
	})
	return c
}

// StartContainer starts c, failing the test on error.
func StartContainer(t *testing.T, c *di.Container) {
	t.Helper()
	if err := c.Start(); err != nil {
		t.Fatalf("starting container: %v", err)
	}
}

// OpenRequest opens a request scope on c and closes it via t.Cleanup. Scopes
// close before the container does.
func OpenRequest(t *testing.T, c *di.Container, opts ...di.RequestOption) *di.RequestScope {
	t.Helper()
	rs, err := c.OpenRequest(opts...)
	if err != nil {
		t.Fatalf("opening request scope: %v", err)
	}
	t.Cleanup(func() {
		if err := rs.Close(); err != nil {
			t.Errorf("closing request scope %s: %v", rs.ID(), err)
		}
	})
	return rs
}

// Override installs instance as the resolution for iface and restores the
// previous binding via t.Cleanup.
func Override(t *testing.T, c *di.Container, iface di.Interface, instance any) {
	t.Helper()
	restore := c.Override(iface, instance)
	t.Cleanup(restore)
}

// MustResolve resolves iface from c with type safety, failing the test on
// error.
func MustResolve[T any](t *testing.T, c *di.Container, iface di.Interface) T {
	t.Helper()
	v, err := di.Resolve[T](c, iface)
	if err != nil {
		t.Fatalf("resolving %s: %v", iface, err)
	}
	return v
}
