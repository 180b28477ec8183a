package providers

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/gbakws/testimonial-server/internal/api"
	"github.com/gbakws/testimonial-server/internal/config"
	"github.com/gbakws/testimonial-server/internal/logger"
	"github.com/gbakws/testimonial-server/internal/service"
)

// Version is reported in the OpenAPI document. Overridden at build time.
var Version = "dev"

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideAPIServer provides the HTTP handler with all routes registered.
func ProvideAPIServer(i do.Injector) (*api.Server, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)

	services := &api.Services{
		Issuance:     do.MustInvoke[*service.IssuanceService](i),
		Verification: do.MustInvoke[*service.VerificationService](i),
		Redemption:   do.MustInvoke[*service.RedemptionService](i),
		Testimonials: do.MustInvoke[*service.TestimonialService](i),
	}

	return api.NewServer(storeHandle.Store, services, api.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Version:        Version,
	}, log.Logger), nil
}

// ProvideHTTPServer binds the listener and serves in the background.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	handler := do.MustInvoke[*api.Server](i)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Bind up front so a taken port fails bootstrap instead of a goroutine.
	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return nil, err
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
		}
	}()

	return &HTTPServerHandle{Server: srv}, nil
}
