package providers

import (
	"context"
	"fmt"

	"github.com/samber/do/v2"

	"github.com/gbakws/testimonial-server/internal/config"
	"github.com/gbakws/testimonial-server/internal/logger"
	"github.com/gbakws/testimonial-server/internal/store"
	"github.com/gbakws/testimonial-server/internal/store/badgerstore"
	"github.com/gbakws/testimonial-server/internal/store/postgres"
	"github.com/gbakws/testimonial-server/internal/store/sqlite"
)

// StoreHandle wraps the selected store with shutdown capability.
type StoreHandle struct {
	store.Store
	Driver string
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore opens the store selected by STORE_DRIVER.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	var (
		st       store.Store
		err      error
		location string
	)
	switch cfg.Store.Driver {
	case config.DriverSQLite:
		location = cfg.Store.SQLitePath()
		st, err = sqlite.Open(location, log.Logger)
	case config.DriverBadger:
		location = cfg.Store.BadgerDir()
		st, err = badgerstore.Open(location, log.Logger)
	case config.DriverPostgres:
		location = "postgres"
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()
		st, err = postgres.Open(ctx, cfg.Store.DatabaseURL, log.Logger)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Store.Driver, err)
	}

	log.Info("Store initialized", "driver", cfg.Store.Driver, "location", location)

	return &StoreHandle{Store: st, Driver: cfg.Store.Driver}, nil
}
