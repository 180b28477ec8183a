// Package main provides the entry point for the testimonial server application.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/do/v2"

	"github.com/gbakws/testimonial-server/internal/di"
	"github.com/gbakws/testimonial-server/internal/logger"
)

func main() {
	// Create DI container
	injector := di.NewContainer()

	// Bootstrap all services
	if err := di.Bootstrap(injector); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap server: %v\n", err)
		os.Exit(1)
	}

	// Get logger for shutdown messages
	log := do.MustInvoke[*logger.Logger](injector)

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server gracefully...")

	// The container shuts down in reverse dependency order: the HTTP server
	// drains before the store handle closes.
	if err := injector.Shutdown(); err != nil {
		log.Fatal("Shutdown error", logger.Err(err))
	}

	log.Info("Server stopped")
}
