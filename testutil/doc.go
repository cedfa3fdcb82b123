// Package testutil provides testing infrastructure for dikit containers.
//
// It wraps container setup, request scopes and overrides with automatic
// testing.T cleanup, and provides a ResourceRecorder for asserting resource
// release order.
//
// # Quick Start
//
//	func TestMyService(t *testing.T) {
//	    c := testutil.NewContainer(t,
//	        di.MustProvider("clock", di.Singleton, newClock),
//	    )
//	    testutil.Override(t, c, "clock", fakeClock)
//
//	    svc, err := di.Resolve[*Service](c, "service")
//	    ...
//	}
//
// The container, any opened request scopes and any installed overrides are
// rolled back when the test ends, in reverse order of setup.
package testutil
