// Package di provides a scoped dependency injection runtime.
//
// Providers are registered against explicit interface tokens and resolved
// recursively, with per-scope instance caching (singleton, request,
// transient) and deterministic last-acquired-first-released cleanup of any
// resource a factory owns.
//
// # Registration
//
//	c := di.New()
//	c.MustRegister(
//	    di.MustProvider("clock", di.Singleton, di.Factory(newClock)),
//	    di.MustProvider("greeter", di.Request, di.Factory(newGreeter),
//	        di.WithParams(di.Dep("clock", "clock"))),
//	)
//
// # Resolution
//
//	if err := c.Start(); err != nil { ... }
//	defer c.Close()
//
//	rs, _ := c.OpenRequest()
//	defer rs.Close()
//	greeter, _ := di.ResolveScoped[*Greeter](rs, "greeter")
//
// Context-aware providers (ContextFactory, ContextResourceFactory) are only
// reachable through ResolveContext and friends; resolving one synchronously
// fails with a SYNCHRONOUS_MODE error.
package di
