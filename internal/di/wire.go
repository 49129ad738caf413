//go:build wireinject
// +build wireinject

package di

import (
	"EdgarPull/pkg/config"
	"EdgarPull/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient infrastructure
		ProvideLogger,
		ProvideMetrics,
		ProvideCache,

		// Repository access
		ProvideLimiter,
		ProvideFilingSource,
		ProvideParser,

		// Use cases
		ProvideResolver,
		ProvideDetector,
		ProvideProcessor,
		ProvideScrapeService,

		// Async jobs and transport
		ProvideJobStore,
		ProvideQueue,
		ProvideHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
