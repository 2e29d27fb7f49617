// Package providers contains dependency injection providers for the fieldcodec server.
package providers

import (
	"github.com/samber/do/v2"

	"github.com/listenupapp/fieldcodec/internal/config"
	"github.com/listenupapp/fieldcodec/internal/logger"
)

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		AddSource:   cfg.IsDevelopment(),
		Environment: cfg.App.Environment,
	})

	log.Debug("configuration loaded",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"store", cfg.Store.Backend,
		"data_path", cfg.Store.DataPath,
		"schema", cfg.Schema.Path,
	)

	return log, nil
}
