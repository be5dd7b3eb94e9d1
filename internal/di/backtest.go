package di

import (
	"Aegis/internal/usecase"
	"Aegis/pkg/config"
)

// InitializeBacktest builds a backtest runner that works entirely offline:
// in-memory series cache, no ClickHouse, no Kafka. The cycle's store, sink
// and metrics stay nil; the backtest only uses its pure methods.
func InitializeBacktest(cfg *config.Config) (*usecase.Backtest, error) {
	logger, err := ProvideLogger(cfg)
	if err != nil {
		return nil, err
	}
	service, err := ProvideCache(cfg)
	if err != nil {
		return nil, err
	}
	seriesSource := ProvideSeriesSource(cfg, service, logger)
	calculator := ProvideVelocity(seriesSource, logger)
	snapshotBuilder := ProvideSnapshotBuilder(cfg, calculator, nil, logger)
	aggregator := ProvideAggregator(cfg, logger)
	engine := ProvideSignalEngine(cfg, logger)
	decider := ProvideDecider(cfg, logger)
	cycle := usecase.NewCycle(cfg, snapshotBuilder, aggregator, engine, decider, nil, nil, nil, logger)
	return usecase.NewBacktest(cycle, logger), nil
}
