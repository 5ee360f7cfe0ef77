//go:build wireinject
// +build wireinject

package di

import (
	"AraDetector/pkg/config"
	"AraDetector/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application with a cleanup
// func that closes the result store, alert publisher and cache.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure
		ProvideMarketData,
		ProvideResultStore,
		ProvideAlertPublisher,
		ProvideCache,

		// Scoring and use cases
		ProvideEngine,
		ProvideEvaluator,
		ProvideScanUseCase,
		ProvideResultsUseCase,

		// HTTP
		ProvideHTTPHandler,
		ProvideHTTPServer,

		// Application
		ProvideApp,
	)
	return &server.App{}, nil, nil
}
