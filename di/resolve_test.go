package di

import (
	"context"
	"testing"

	"github.com/kbukum/dikit/errors"
)

func newClockContainer(t *testing.T) *Container {
	t.Helper()
	c := New()
	c.MustRegister(MustProvider("clock", Singleton, Factory(func(...any) (any, error) {
		return &fakeClock{}, nil
	})))
	return c
}

func TestResolve_Typed(t *testing.T) {
	c := newClockContainer(t)
	clock, err := Resolve[*fakeClock](c, "clock")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if clock == nil {
		t.Fatal("expected a non-nil clock")
	}
}

func TestResolve_TypeMismatch(t *testing.T) {
	c := newClockContainer(t)
	_, err := Resolve[string](c, "clock")
	if err == nil {
		t.Fatal("expected a type mismatch")
	}
	if !errors.HasCode(err, errors.ErrCodeTypeMismatch) {
		t.Errorf("expected TYPE_MISMATCH, got %v", err)
	}
}

func TestResolveContext_Typed(t *testing.T) {
	c := New()
	c.MustRegister(MustProvider("db", Singleton, ContextFactory(func(ctx context.Context, args ...any) (any, error) {
		return "db", nil
	})))

	v, err := ResolveContext[string](context.Background(), c, "db")
	if err != nil {
		t.Fatalf("ResolveContext failed: %v", err)
	}
	if v != "db" {
		t.Errorf("unexpected value %q", v)
	}
}

func TestMustResolve_Panics(t *testing.T) {
	c := New()
	defer func() {
		if recover() == nil {
			t.Error("expected a panic for an unregistered interface")
		}
	}()
	MustResolve[*fakeClock](c, "missing")
}

func TestTryResolve(t *testing.T) {
	c := newClockContainer(t)
	if _, ok := TryResolve[*fakeClock](c, "clock"); !ok {
		t.Error("expected TryResolve to succeed")
	}
	if _, ok := TryResolve[*fakeClock](c, "missing"); ok {
		t.Error("expected TryResolve to fail for an unregistered interface")
	}
}

func TestResolveScoped_Typed(t *testing.T) {
	c := New()
	c.MustRegister(MustProvider("session", Request, Factory(func(...any) (any, error) {
		return "session-1", nil
	})))

	rs, err := c.OpenRequest()
	if err != nil {
		t.Fatal(err)
	}
	defer rs.Close()

	v, err := ResolveScoped[string](rs, "session")
	if err != nil {
		t.Fatalf("ResolveScoped failed: %v", err)
	}
	if v != "session-1" {
		t.Errorf("unexpected value %q", v)
	}
}
