//go:build wireinject
// +build wireinject

package di

import (
	"ChartPull/pkg/config"
	"ChartPull/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Observability
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvidePostgresClient,
		ProvideRedisClient,

		// Repositories
		ProvideCandleRepository,
		ProvideCandleStore,
		ProvideSampleStore,
		ProvideMetadataStore,

		// Caches and use cases
		ProvideCacheIndex,
		ProvideHistoryUseCase,

		// HTTP surface
		ProvideHTTPHandler,
		ProvideHTTPServer,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
