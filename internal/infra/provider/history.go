// Package provider fetches daily price history over HTTP. The feed is a
// CSV table per ticker (Date,Open,High,Low,Close,Volume,Adj Close),
// served most-recent-first.
package provider

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"stock_go/internal/domain"
	"stock_go/internal/infra"

	"github.com/shopspring/decimal"
)

// Client downloads price history for one ticker at a time. It retries
// transport failures with exponential backoff; an unknown ticker is not
// retried.
type Client struct {
	urlTemplate string
	httpClient  *http.Client
}

// NewClient creates a history client. urlTemplate must contain one %s
// placeholder for the ticker.
func NewClient(urlTemplate string) *Client {
	return &Client{
		urlTemplate: urlTemplate,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Fetch downloads the full daily history for a ticker.
func (c *Client) Fetch(ctx context.Context, ticker string) ([]domain.PriceRecord, error) {
	var lastErr error
	for i := 0; i < 3; i++ {
		if i > 0 {
			// Exponential backoff: 1s, 2s
			delay := time.Duration(1<<uint(i-1)) * time.Second
			slog.Info("Retrying history fetch", slog.String("ticker", ticker), slog.Int("attempt", i), slog.Duration("delay", delay))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		records, err := c.doFetch(ctx, ticker)
		if err == nil {
			return records, nil
		}
		if !domain.IsRetriable(err) {
			return nil, err
		}
		lastErr = err
		slog.Warn("History fetch attempt failed", slog.String("ticker", ticker), slog.Int("attempt", i+1), slog.Any("error", err))
	}
	return nil, lastErr
}

func (c *Client) doFetch(ctx context.Context, ticker string) ([]domain.PriceRecord, error) {
	url := fmt.Sprintf(c.urlTemplate, ticker)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	// Browser-like User-Agent to avoid bot detection
	req.Header.Set("User-Agent", infra.DefaultUserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, domain.NewNetworkError("fetch "+ticker, fmt.Errorf("%w: %w", domain.ErrSourceUnreachable, err))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("ticker %s: %w", ticker, domain.ErrDataUnavailable)
	case resp.StatusCode != http.StatusOK:
		return nil, domain.NewNetworkError("fetch "+ticker,
			fmt.Errorf("%w: unexpected status code %d", domain.ErrSourceUnreachable, resp.StatusCode))
	}

	records, err := parseCSV(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("ticker %s: %w", ticker, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("ticker %s: empty history: %w", ticker, domain.ErrDataUnavailable)
	}
	return records, nil
}

// parseCSV reads the feed table. Column order follows the header row, so
// feeds that move Adj Close around still parse.
func parseCSV(r io.Reader) ([]domain.PriceRecord, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}
	for _, name := range []string{"Date", "Open", "High", "Low", "Close", "Volume", "Adj Close"} {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
	}

	var records []domain.PriceRecord
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}

		rec, err := parseRow(row, col)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func parseRow(row []string, col map[string]int) (domain.PriceRecord, error) {
	date, err := time.Parse("2006-01-02", row[col["Date"]])
	if err != nil {
		return domain.PriceRecord{}, fmt.Errorf("parse date %q: %w", row[col["Date"]], err)
	}

	prices := make(map[string]decimal.Decimal, 5)
	for _, name := range []string{"Open", "High", "Low", "Close", "Adj Close"} {
		d, err := decimal.NewFromString(row[col[name]])
		if err != nil {
			return domain.PriceRecord{}, fmt.Errorf("parse %s %q: %w", name, row[col[name]], err)
		}
		prices[name] = d
	}

	// Closes anchor the adjustment ratio, so a non-positive value would
	// poison every adjusted lookup on the day.
	if !prices["Close"].IsPositive() || !prices["Adj Close"].IsPositive() {
		return domain.PriceRecord{}, fmt.Errorf("non-positive close on %s", row[col["Date"]])
	}

	volume, err := strconv.ParseInt(row[col["Volume"]], 10, 64)
	if err != nil {
		return domain.PriceRecord{}, fmt.Errorf("parse volume %q: %w", row[col["Volume"]], err)
	}

	return domain.PriceRecord{
		Date:     domain.Day(date),
		Open:     prices["Open"],
		High:     prices["High"],
		Low:      prices["Low"],
		Close:    prices["Close"],
		AdjClose: prices["Adj Close"],
		Volume:   volume,
	}, nil
}
