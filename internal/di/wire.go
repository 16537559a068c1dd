//go:build wireinject
// +build wireinject

package di

import (
	"ScalpPulse/pkg/config"
	"ScalpPulse/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideQuoteCache,
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,

		// Repositories
		ProvideQuoteFetcher,
		ProvideSignalJournal,
		ProvideSignalArchive,
		ProvideSignalPublisher,

		// Domain services
		ProvideIndicatorEngine,
		ProvideSignalScorer,
		ProvideBroker,

		// Use cases
		ProvideHub,
		ProvideSignalProcessor,
		ProvideSignalPipeline,
		ProvideScalpUseCase,
		ProvideSignalHistory,
		ProvideWatchlistScanner,
		ProvideKafkaSignalsHandler,

		// HTTP surface and application server
		ProvideHTTPHandler,
		ProvideApp,
	)
	return &server.App{}, nil
}
