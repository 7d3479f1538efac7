package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"stock_go/internal/domain"
	"stock_go/internal/series"
)

// SeriesService resolves tickers to loaded price series. Lookup order is
// in-memory map, then the sqlite cache, then a provider fetch that is
// always persisted. Loaded series are immutable, so the service is safe
// to share across concurrently simulated portfolios.
type SeriesService struct {
	mu       sync.RWMutex
	loaded   map[string]*series.PriceSeries
	cache    domain.SeriesCache
	provider domain.HistoryProvider
}

// NewSeriesService creates a new SeriesService instance
func NewSeriesService(cache domain.SeriesCache, provider domain.HistoryProvider) *SeriesService {
	return &SeriesService{
		loaded:   make(map[string]*series.PriceSeries),
		cache:    cache,
		provider: provider,
	}
}

// Load resolves a ticker, fetching and persisting its history on a cache
// miss. Series construction failures surface the provider's error.
func (s *SeriesService) Load(ctx context.Context, ticker string) (*series.PriceSeries, error) {
	s.mu.RLock()
	ps, ok := s.loaded[ticker]
	s.mu.RUnlock()
	if ok {
		return ps, nil
	}

	records, err := s.cache.LoadSeries(ticker)
	if err != nil {
		return nil, fmt.Errorf("series cache read %s: %w", ticker, err)
	}

	if records == nil {
		records, err = s.provider.Fetch(ctx, ticker)
		if err != nil {
			return nil, err
		}
		if err := s.cache.SaveSeries(ticker, records); err != nil {
			return nil, fmt.Errorf("series cache write %s: %w", ticker, err)
		}
		slog.Info("Fetched price history", slog.String("ticker", ticker), slog.Int("days", len(records)))
	} else {
		slog.Debug("Loaded cached price history", slog.String("ticker", ticker), slog.Int("days", len(records)))
	}

	ps = series.New(ticker, records)

	s.mu.Lock()
	s.loaded[ticker] = ps
	s.mu.Unlock()
	return ps, nil
}

// Update forces a fresh provider fetch for a ticker, replacing both the
// persisted and in-memory copies.
func (s *SeriesService) Update(ctx context.Context, ticker string) (*series.PriceSeries, error) {
	records, err := s.provider.Fetch(ctx, ticker)
	if err != nil {
		return nil, err
	}
	if err := s.cache.SaveSeries(ticker, records); err != nil {
		return nil, fmt.Errorf("series cache write %s: %w", ticker, err)
	}

	ps := series.New(ticker, records)

	s.mu.Lock()
	s.loaded[ticker] = ps
	s.mu.Unlock()
	return ps, nil
}

// Series implements the portfolio's market data interface. Tickers must
// have been loaded beforehand; the simulation itself never blocks on I/O.
func (s *SeriesService) Series(ticker string) (*series.PriceSeries, error) {
	s.mu.RLock()
	ps, ok := s.loaded[ticker]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("ticker %s: %w", ticker, domain.ErrDataUnavailable)
	}
	return ps, nil
}
