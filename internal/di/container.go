// Package di provides dependency injection configuration for the testimonial server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/gbakws/testimonial-server/internal/api"
	"github.com/gbakws/testimonial-server/internal/config"
	"github.com/gbakws/testimonial-server/internal/di/providers"
	"github.com/gbakws/testimonial-server/internal/logger"
	"github.com/gbakws/testimonial-server/internal/service"
	"github.com/gbakws/testimonial-server/internal/validation"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideValidator)

	// Storage layer
	do.Provide(injector, providers.ProvideStore)

	// Business services
	do.Provide(injector, providers.ProvideIssuanceService)
	do.Provide(injector, providers.ProvideVerificationService)
	do.Provide(injector, providers.ProvideRedemptionService)
	do.Provide(injector, providers.ProvideTestimonialService)

	// Server
	do.Provide(injector, providers.ProvideAPIServer)
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle management.
// This triggers lazy initialization of all core services and starts listening.
func Bootstrap(injector do.Injector) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*validation.Validator](injector)

	if _, err := do.Invoke[*providers.StoreHandle](injector); err != nil {
		return err
	}

	// Business services
	_ = do.MustInvoke[*service.IssuanceService](injector)
	_ = do.MustInvoke[*service.VerificationService](injector)
	_ = do.MustInvoke[*service.RedemptionService](injector)
	_ = do.MustInvoke[*service.TestimonialService](injector)

	// Server
	_ = do.MustInvoke[*api.Server](injector)
	if _, err := do.Invoke[*providers.HTTPServerHandle](injector); err != nil {
		return err
	}

	return nil
}
