// Package observability provides OpenTelemetry tracing and metrics for the
// dikit container runtime.
//
// Tracing:
//
//	tp, err := observability.InitTracer(ctx, observability.DefaultTracerConfig("my-app"))
//	defer tp.Shutdown(ctx)
//
// Container instrumentation:
//
//	instr, err := observability.NewInstrumentation("my-app")
//	c := di.New(di.WithInstrumentation(instr))
//
// Every resolution becomes a span carrying the interface and scope, and the
// container's resolution counts, creation durations and open scopes are
// exported as metrics.
//
// Health checks:
//
//	health := observability.NewServiceHealth("my-app", "1.0.0")
//	health.AddComponent(checker.CheckHealth(ctx))
package observability
