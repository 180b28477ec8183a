// Package providers contains dependency injection providers for the testimonial server.
package providers

import (
	"github.com/samber/do/v2"

	"github.com/gbakws/testimonial-server/internal/config"
	"github.com/gbakws/testimonial-server/internal/logger"
	"github.com/gbakws/testimonial-server/internal/validation"
)

// ProvideConfig provides the application configuration.
func ProvideConfig(i do.Injector) (*config.Config, error) {
	return config.LoadConfig()
}

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		AddSource:   cfg.App.Environment == "development",
		Environment: cfg.App.Environment,
	})

	log.Info("Starting testimonial server",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"store_driver", cfg.Store.Driver,
		"public_url", cfg.Server.PublicURL,
	)

	return log, nil
}

// ProvideValidator provides the request validator.
func ProvideValidator(i do.Injector) (*validation.Validator, error) {
	return validation.New(), nil
}
