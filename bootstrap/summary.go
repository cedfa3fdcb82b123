package bootstrap

import (
	"time"

	"github.com/kbukum/dikit/logger"
)

// logSummary logs the registered providers and startup duration after a
// successful start.
func (a *App[C]) logSummary(startupDuration time.Duration) {
	providers := a.Container.Providers()

	var eager int
	for _, p := range providers {
		if p.Cached {
			eager++
		}
	}
	a.Logger.Info("container started", logger.Fields(
		"providers", len(providers),
		"eager", eager,
		logger.FieldDuration, startupDuration.Milliseconds(),
	))

	for _, p := range providers {
		a.Logger.Debug("provider", logger.Fields(
			logger.FieldInterface, p.Interface.String(),
			logger.FieldScope, p.Scope.String(),
			"kind", p.Kind.String(),
			logger.FieldCreated, p.Cached,
		))
	}
}
