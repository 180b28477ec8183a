package di

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/samber/do/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gbakws/testimonial-server/internal/api"
	"github.com/gbakws/testimonial-server/internal/config"
	"github.com/gbakws/testimonial-server/internal/di/providers"
)

func testConfig(t *testing.T, driver string) *config.Config {
	t.Helper()
	return &config.Config{
		App:    config.AppConfig{Environment: "development"},
		Logger: config.LoggerConfig{Level: "error"},
		Server: config.ServerConfig{
			Port:         "0",
			ReadTimeout:  time.Second,
			WriteTimeout: time.Second,
			IdleTimeout:  time.Second,
			PublicURL:    "https://example.org",
		},
		Store: config.StoreConfig{
			Driver:   driver,
			DataPath: t.TempDir(),
			Timeout:  time.Second,
		},
	}
}

func TestBootstrap(t *testing.T) {
	for _, driver := range []string{config.DriverSQLite, config.DriverBadger} {
		t.Run(driver, func(t *testing.T) {
			injector := NewContainer()
			do.OverrideValue(injector, testConfig(t, driver))

			require.NoError(t, Bootstrap(injector))

			storeHandle := do.MustInvoke[*providers.StoreHandle](injector)
			assert.Equal(t, driver, storeHandle.Driver)

			server := do.MustInvoke[*api.Server](injector)
			req := httptest.NewRequest(http.MethodPost, "/api/v1/testimonials/links",
				strings.NewReader(`{"name":"Asha"}`))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			server.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
			assert.Contains(t, rec.Body.String(), "https://example.org/testimonial?token=")

			_ = injector.Shutdown()
		})
	}
}

func TestBootstrap_StoreFailure(t *testing.T) {
	cfg := testConfig(t, config.DriverPostgres)
	cfg.Store.DatabaseURL = "postgres://127.0.0.1:1/none?sslmode=disable&connect_timeout=1"

	injector := NewContainer()
	do.OverrideValue(injector, cfg)

	err := Bootstrap(injector)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open postgres store")
}
