//go:build wireinject
// +build wireinject

package di

import (
	"github.com/ctrlaltdad/TakeStock/pkg/config"
	"github.com/ctrlaltdad/TakeStock/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient infrastructure
		ProvideLogger,
		ProvideMetrics,
		ProvideRESTClient,
		ProvideCache,

		// Credentials
		ProvideKeystore,

		// Provider adapters
		ProvideQuoteProfileSource,
		ProvideHistoricalSource,
		ProvideAggregatesSource,

		// Use cases
		ProvideAnalyzer,

		// HTTP surface
		ProvideAPIHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
