//go:build wireinject
// +build wireinject

package di

import (
	"Aegis/pkg/config"
	"Aegis/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideCache,

		// Data collaborators
		ProvideSeriesSource,
		ProvideVelocity,
		ProvideResultStore,
		ProvideAlertSink,

		// Engine
		ProvideSnapshotBuilder,
		ProvideAggregator,
		ProvideSignalEngine,
		ProvideDecider,
		ProvideCycle,

		// API and application server
		ProvideHandler,
		ProvideApp,
	)
	return &server.App{}, nil
}
