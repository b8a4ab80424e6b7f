//go:build wireinject
// +build wireinject

package di

import (
	"TradeSignal/pkg/config"
	"TradeSignal/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Observability
		ProvideLogger,
		ProvideRegistry,
		ProvideMetrics,

		// Outbound data
		ProvideIntervalLimiter,
		ProvideFetcher,
		ProvideBytesCache,
		ProvidePrimary,
		ProvideHistory,
		ProvideQuotes,

		// Persistence and fan-out
		ProvideSignalStore,
		ProvideHub,
		ProvidePublisher,

		// Use cases
		ProvideCascade,
		ProvideSignalUseCase,
		ProvideMarketUseCase,
		ProvideScanner,
		ProvideScheduler,

		// Delivery
		ProvideAPIHandler,
		ProvideHTTPServer,
		ProvideApp,
	)
	return &server.App{}, nil
}
