package domain

import (
	"context"
)

// HistoryProvider defines the interface for daily price-history sources.
// Fetch returns records ordered most-recent-first, or ErrDataUnavailable
// when the ticker is unknown upstream / ErrSourceUnreachable on
// transport failure.
type HistoryProvider interface {
	Fetch(ctx context.Context, ticker string) ([]PriceRecord, error)
}

// SeriesCache defines how fetched series are persisted between runs.
// LoadSeries returns (nil, nil) when no rows exist for the ticker.
type SeriesCache interface {
	LoadSeries(ticker string) ([]PriceRecord, error)
	SaveSeries(ticker string, records []PriceRecord) error
}
