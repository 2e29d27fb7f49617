// Package di provides dependency injection configuration for the fieldcodec server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/listenupapp/fieldcodec/internal/config"
	"github.com/listenupapp/fieldcodec/internal/di/providers"
	"github.com/listenupapp/fieldcodec/internal/logger"
	"github.com/listenupapp/fieldcodec/internal/schema"
	"github.com/listenupapp/fieldcodec/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer(cfg *config.Config) *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.ProvideValue(injector, cfg)
	do.Provide(injector, providers.ProvideLogger)

	// Storage and codecs
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideSchema)
	do.Provide(injector, providers.ProvideSchemaWatcher)

	// Business services
	do.Provide(injector, providers.ProvideContactService)
	do.Provide(injector, providers.ProvideFieldService)

	// Server
	do.Provide(injector, providers.ProvideRateLimiter)
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes the core services without starting the HTTP server.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*logger.Logger](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.StoreHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*schema.Live](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*service.ContactService](injector); err != nil {
		return err
	}
	_, err := do.Invoke[*service.FieldService](injector)
	return err
}

// Serve bootstraps the container and starts the HTTP server.
func Serve(injector *do.RootScope) error {
	if err := Bootstrap(injector); err != nil {
		return err
	}
	_, err := do.Invoke[*providers.HTTPServerHandle](injector)
	return err
}
