// Package bootstrap orchestrates application lifecycle around a dikit
// container.
//
// It wires configuration, logging and observability, starts the container
// (eagerly resolving singleton resources), runs lifecycle hooks, blocks on
// OS signals, and closes the container gracefully within the configured
// timeout.
//
// # Quick Start
//
//	var cfg AppConfig
//	if err := config.Load("my-app", &cfg); err != nil {
//	    log.Fatal(err)
//	}
//	app, err := bootstrap.NewApp(&cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	app.Container.MustRegister(providers...)
//	if err := app.Run(context.Background()); err != nil {
//	    log.Fatal(err)
//	}
package bootstrap
