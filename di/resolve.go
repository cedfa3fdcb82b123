package di

import (
	"context"
	"fmt"

	"github.com/kbukum/dikit/errors"
)

// Resolve resolves a component with type safety, returning an error on
// failure.
//
// Example:
//
//	clock, err := di.Resolve[Clock](c, "clock")
func Resolve[T any](c *Container, iface Interface) (T, error) {
	var zero T
	instance, err := c.Resolve(iface)
	if err != nil {
		return zero, err
	}
	return cast[T](iface, instance)
}

// ResolveContext is the context-aware mirror of Resolve.
func ResolveContext[T any](ctx context.Context, c *Container, iface Interface) (T, error) {
	var zero T
	instance, err := c.ResolveContext(ctx, iface)
	if err != nil {
		return zero, err
	}
	return cast[T](iface, instance)
}

// MustResolve resolves a component with type safety, panicking on error.
// Use it in startup paths where a missing dependency is a programming error.
func MustResolve[T any](c *Container, iface Interface) T {
	v, err := Resolve[T](c, iface)
	if err != nil {
		panic(fmt.Sprintf("di: failed to resolve %s: %v", iface, err))
	}
	return v
}

// TryResolve resolves a component, returning the zero value and false when
// it is unavailable. Use it when a dependency is optional.
func TryResolve[T any](c *Container, iface Interface) (T, bool) {
	v, err := Resolve[T](c, iface)
	if err != nil {
		var zero T
		return zero, false
	}
	return v, true
}

// ResolveScoped resolves a component from an open request scope with type
// safety.
func ResolveScoped[T any](rs *RequestScope, iface Interface) (T, error) {
	var zero T
	instance, err := rs.Resolve(iface)
	if err != nil {
		return zero, err
	}
	return cast[T](iface, instance)
}

func cast[T any](iface Interface, instance any) (T, error) {
	v, ok := instance.(T)
	if !ok {
		var zero T
		return zero, errors.TypeMismatch(iface.String(), fmt.Sprintf("%T", instance), fmt.Sprintf("%T", zero))
	}
	return v, nil
}
