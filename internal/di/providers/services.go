package providers

import (
	"github.com/samber/do/v2"

	"github.com/gbakws/testimonial-server/internal/config"
	"github.com/gbakws/testimonial-server/internal/logger"
	"github.com/gbakws/testimonial-server/internal/service"
	"github.com/gbakws/testimonial-server/internal/validation"
)

// ProvideIssuanceService provides the link issuance service.
func ProvideIssuanceService(i do.Injector) (*service.IssuanceService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	v := do.MustInvoke[*validation.Validator](i)

	return service.NewIssuanceService(storeHandle.Store, v, log.Logger, cfg.Server.PublicURL, cfg.Store.Timeout), nil
}

// ProvideVerificationService provides the token verification service.
func ProvideVerificationService(i do.Injector) (*service.VerificationService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)

	return service.NewVerificationService(storeHandle.Store, log.Logger, cfg.Store.Timeout), nil
}

// ProvideRedemptionService provides the testimonial redemption service.
func ProvideRedemptionService(i do.Injector) (*service.RedemptionService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	v := do.MustInvoke[*validation.Validator](i)

	return service.NewRedemptionService(storeHandle.Store, v, log.Logger, cfg.Store.Timeout), nil
}

// ProvideTestimonialService provides the moderation and listing service.
func ProvideTestimonialService(i do.Injector) (*service.TestimonialService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	v := do.MustInvoke[*validation.Validator](i)

	return service.NewTestimonialService(storeHandle.Store, v, log.Logger, cfg.Store.Timeout), nil
}
