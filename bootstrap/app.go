package bootstrap

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/kbukum/dikit/config"
	"github.com/kbukum/dikit/di"
	"github.com/kbukum/dikit/logger"
	"github.com/kbukum/dikit/observability"
	"github.com/kbukum/dikit/version"
)

// App owns one container and its surrounding lifecycle. The type parameter C
// is the config type; any struct embedding config.Config satisfies the
// constraint via promoted methods.
//
// Example:
//
//	app, err := bootstrap.NewApp(&myConfig)
//	app.Container.MustRegister(providers...)
//	app.OnReady(func(ctx context.Context) error {
//	    return server.Listen(ctx)
//	})
//	app.Run(context.Background())
type App[C config.Settings] struct {
	Name      string
	Version   string
	Cfg       C
	Container *di.Container
	Logger    *logger.Logger

	gracefulTimeout time.Duration
	checkers        []observability.HealthChecker

	tracerProvider *sdktrace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider

	onStart []Hook
	onReady []Hook
	onStop  []Hook
}

// NewApp creates an application from a typed config. It applies defaults,
// validates the config, initializes logging and builds the container with
// the configured strictness, testing mode and instrumentation.
func NewApp[C config.Settings](cfg C, opts ...Option) (*App[C], error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	base := cfg.GetConfig()
	o := resolveOptions(opts)

	app := &App[C]{
		Name:            base.Name,
		Version:         base.Version,
		Cfg:             cfg,
		gracefulTimeout: base.Container.GracefulTimeout,
	}
	if app.Version == "" {
		app.Version = version.Short()
	}
	if o.gracefulTimeout != nil {
		app.gracefulTimeout = *o.gracefulTimeout
	}

	if o.logger != nil {
		app.Logger = o.logger
	} else {
		logger.Init(base.Logging)
		app.Logger = logger.Get(base.Name)
	}

	if o.container != nil {
		app.Container = o.container
		return app, nil
	}

	containerOpts := []di.Option{di.WithLogger(app.Logger.WithComponent("container"))}
	if base.Container.Strict {
		containerOpts = append(containerOpts, di.WithStrict())
	}
	if base.Container.Testing {
		containerOpts = append(containerOpts, di.WithTesting())
	}
	if base.Container.EventsOnlyRequests {
		containerOpts = append(containerOpts, di.WithEventsOnlyRequests())
	}
	if base.Observability.Enabled {
		// The global otel providers are still noop here; the instruments
		// upgrade in place once startup installs the real providers.
		instr, err := observability.NewInstrumentation(base.Name)
		if err != nil {
			return nil, fmt.Errorf("creating instrumentation: %w", err)
		}
		containerOpts = append(containerOpts, di.WithInstrumentation(instr))
	}
	app.Container = di.New(containerOpts...)
	return app, nil
}

// Install runs each module's Configure against the app's container.
func (a *App[C]) Install(modules ...di.Module) error {
	return a.Container.Install(modules...)
}

// AddHealthChecker registers a component health checker with the app's
// aggregate health report.
func (a *App[C]) AddHealthChecker(hc observability.HealthChecker) {
	a.checkers = append(a.checkers, hc)
}

// Health aggregates the registered health checkers into one report.
func (a *App[C]) Health(ctx context.Context) *observability.ServiceHealth {
	return observability.CheckAll(ctx, a.Name, a.Version, a.checkers...)
}

// Run executes the full lifecycle for long-running applications: start the
// container, run hooks, block until a shutdown signal, then shut down
// gracefully.
func (a *App[C]) Run(ctx context.Context) error {
	if err := a.startup(ctx); err != nil {
		return err
	}

	a.Logger.Info("application ready")
	a.waitForSignal(ctx)

	return a.shutdown()
}

// RunTask executes a finite task with the full lifecycle. It does not block
// on signals after the task: the task runs under a context canceled by
// SIGINT/SIGTERM, and shutdown follows its completion.
func (a *App[C]) RunTask(ctx context.Context, task func(ctx context.Context) error) error {
	if err := a.startup(ctx); err != nil {
		return err
	}

	taskCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case sig := <-sigCh:
			a.Logger.Info("received signal, canceling task", logger.Fields("signal", sig.String()))
			cancel()
		case <-taskCtx.Done():
		}
	}()

	taskErr := task(taskCtx)

	if stopErr := a.shutdown(); stopErr != nil {
		if taskErr != nil {
			return taskErr
		}
		return stopErr
	}
	return taskErr
}

// startup initializes observability, starts the container and runs the
// start/ready hooks.
func (a *App[C]) startup(ctx context.Context) error {
	start := time.Now()
	a.Logger.Info("starting application", logger.Fields(
		"name", a.Name,
		"version", a.Version,
	))

	if err := a.initObservability(ctx); err != nil {
		return fmt.Errorf("observability init failed: %w", err)
	}

	if err := runHooks(ctx, a.onStart); err != nil {
		return fmt.Errorf("onStart hook failed: %w", err)
	}

	if err := a.Container.StartContext(ctx); err != nil {
		return fmt.Errorf("container start failed: %w", err)
	}

	if err := runHooks(ctx, a.onReady); err != nil {
		return fmt.Errorf("onReady hook failed: %w", err)
	}

	a.logSummary(time.Since(start))
	return nil
}

func (a *App[C]) initObservability(ctx context.Context) error {
	obs := a.Cfg.GetConfig().Observability
	if !obs.Enabled {
		return nil
	}

	env := a.Cfg.GetConfig().Environment
	tp, err := observability.InitTracer(ctx, observability.TracerConfig{
		ServiceName:    a.Name,
		ServiceVersion: a.Version,
		Environment:    env,
		Endpoint:       obs.Endpoint,
		Insecure:       obs.Insecure,
		SampleRate:     obs.SampleRate,
	})
	if err != nil {
		return err
	}
	a.tracerProvider = tp

	mp, err := observability.InitMeter(ctx, observability.MeterConfig{
		ServiceName:    a.Name,
		ServiceVersion: a.Version,
		Environment:    env,
		Endpoint:       obs.Endpoint,
		Insecure:       obs.Insecure,
		Interval:       obs.Interval,
	})
	if err != nil {
		return err
	}
	a.meterProvider = mp
	return nil
}

// waitForSignal blocks until an interrupt/term signal or ctx cancellation.
func (a *App[C]) waitForSignal(ctx context.Context) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		a.Logger.Info("received shutdown signal", logger.Fields("signal", sig.String()))
	case <-ctx.Done():
		a.Logger.Info("context canceled, shutting down")
	}
}

// Shutdown shuts the application down. Use it when managing your own
// lifecycle instead of Run.
func (a *App[C]) Shutdown(context.Context) error {
	return a.shutdown()
}

// shutdown runs the stop hooks, closes the container within the graceful
// timeout, then flushes the observability providers.
func (a *App[C]) shutdown() error {
	a.Logger.Info("shutting down", logger.Fields("timeout", a.gracefulTimeout.String()))

	ctx, cancel := context.WithTimeout(context.Background(), a.gracefulTimeout)
	defer cancel()

	var shutdownErr error
	if err := runHooks(ctx, a.onStop); err != nil {
		a.Logger.Error("onStop hook error", logger.Fields(logger.FieldError, err.Error()))
		shutdownErr = err
	}

	if err := a.Container.CloseContext(ctx); err != nil {
		a.Logger.Error("container close error", logger.Fields(logger.FieldError, err.Error()))
		if shutdownErr == nil {
			shutdownErr = err
		}
	}

	if a.tracerProvider != nil {
		if err := a.tracerProvider.Shutdown(ctx); err != nil && shutdownErr == nil {
			shutdownErr = err
		}
	}
	if a.meterProvider != nil {
		if err := a.meterProvider.Shutdown(ctx); err != nil && shutdownErr == nil {
			shutdownErr = err
		}
	}

	a.Logger.Info("shutdown complete")
	return shutdownErr
}
