package app

import (
	"context"
	"log/slog"
	"sync"

	"stock_go/internal/infra"
	"stock_go/internal/infra/chart"
	"stock_go/internal/infra/provider"
	"stock_go/internal/infra/storage"
	"stock_go/internal/service"
)

// Bootstrap orchestrates the application startup sequence
type Bootstrap struct {
	Config   *infra.Config
	Storage  *storage.Storage
	Series   *service.SeriesService
	Renderer *chart.Renderer
}

// NewBootstrap creates a new Bootstrap instance
func NewBootstrap() *Bootstrap {
	return &Bootstrap{}
}

// Initialize performs core system initialization (config, logger, DB)
func (b *Bootstrap) Initialize(configPath string) error {
	slog.Info("🚀 Bootstrapping Stock Go...")

	// 1. Load Config
	cfg, err := infra.LoadConfig(configPath)
	if err != nil {
		return err // Let main handle the error
	}
	b.Config = cfg

	// 2. Setup Logger
	logger := infra.NewLogger(cfg)
	slog.SetDefault(logger)

	// 3. Initialize Storage (series cache)
	store, err := storage.NewStorage()
	if err != nil {
		return err
	}
	b.Storage = store
	slog.Info("✅ Series cache initialized")

	// 4. Series service: cache-first loads backed by the CSV provider
	b.Series = service.NewSeriesService(store, provider.NewClient(cfg.Data.ProviderURL))

	// 5. Chart renderer
	renderer, err := chart.NewRenderer(cfg.Chart.OutputDir, cfg.Chart.Width, cfg.Chart.Height)
	if err != nil {
		return err
	}
	b.Renderer = renderer
	slog.Info("✅ Chart renderer ready")

	return nil
}

// PreloadSeries loads every configured symbol before the simulation
// starts, so the run itself never blocks on I/O. Fetches run a few at a
// time; the first error wins.
func (b *Bootstrap) PreloadSeries(ctx context.Context) error {
	slog.Info("🔄 Preloading price series...", slog.Int("symbols", len(b.Config.Data.Symbols)))

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		firstErr  error
		semaphore = make(chan struct{}, 5) // Limit concurrent fetches
	)

	for _, symbol := range b.Config.Data.Symbols {
		wg.Add(1)
		go func(ticker string) {
			defer wg.Done()
			select {
			case <-ctx.Done():
				return
			case semaphore <- struct{}{}: // Acquire
			}
			defer func() { <-semaphore }() // Release

			if _, err := b.Series.Load(ctx, ticker); err != nil {
				slog.Error("Failed to load series", slog.String("ticker", ticker), slog.Any("error", err))
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
			}
		}(symbol)
	}

	wg.Wait()
	if firstErr != nil {
		return firstErr
	}
	slog.Info("✨ Price series preloaded")
	return nil
}
