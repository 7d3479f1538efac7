// Package series owns the per-ticker daily price history and its lookups.
// Records are stored most-recent-first, mirroring the provider feed, so
// the latest trading day is always index 0.
package series

import (
	"sort"
	"time"

	"stock_go/internal/domain"

	"github.com/shopspring/decimal"
)

// PriceSeries is one ticker's chronologically-sorted daily records.
// It is immutable after construction and safe for concurrent readers.
type PriceSeries struct {
	ticker  string
	records []domain.PriceRecord // descending by date
}

// New builds a series from records in any order. Dates are normalized to
// UTC days and the records are sorted most-recent-first.
func New(ticker string, records []domain.PriceRecord) *PriceSeries {
	rs := make([]domain.PriceRecord, len(records))
	copy(rs, records)
	for i := range rs {
		rs[i].Date = domain.Day(rs[i].Date)
	}
	sort.Slice(rs, func(i, j int) bool {
		return rs[i].Date.After(rs[j].Date)
	})
	return &PriceSeries{ticker: ticker, records: rs}
}

// Ticker returns the instrument identifier.
func (s *PriceSeries) Ticker() string {
	return s.ticker
}

// Len returns the number of trading days in the series.
func (s *PriceSeries) Len() int {
	return len(s.records)
}

// LatestDate returns the most recent trading day on record, or the zero
// time for an empty series.
func (s *PriceSeries) LatestDate() time.Time {
	if len(s.records) == 0 {
		return time.Time{}
	}
	return s.records[0].Date
}

// EarliestDate returns the oldest trading day on record, or the zero
// time for an empty series.
func (s *PriceSeries) EarliestDate() time.Time {
	if len(s.records) == 0 {
		return time.Time{}
	}
	return s.records[len(s.records)-1].Date
}

// indexOf runs an iterative binary search over the descending records.
// Returns (index, true) on an exact date match.
func (s *PriceSeries) indexOf(day time.Time) (int, bool) {
	day = domain.Day(day)
	lo, hi := 0, len(s.records)-1
	for lo <= hi {
		mid := lo + (hi-lo)/2
		d := s.records[mid].Date
		switch {
		case d.Equal(day):
			return mid, true
		case d.After(day):
			// Dates decrease with index: the query lies to the right.
			lo = mid + 1
		default:
			hi = mid - 1
		}
	}
	return 0, false
}

// RecordAt returns the record for an exact trading day, or ErrNoDataForDate
// for non-trading days and dates outside the series span.
func (s *PriceSeries) RecordAt(day time.Time) (domain.PriceRecord, error) {
	idx, ok := s.indexOf(day)
	if !ok {
		return domain.PriceRecord{}, domain.NewLookupError(s.ticker, day, domain.ErrNoDataForDate)
	}
	return s.records[idx], nil
}

// lowerBound returns the first index whose date is not after day, i.e. the
// boundary between dates > day (before it) and dates <= day (from it on).
func (s *PriceSeries) lowerBound(day time.Time) int {
	lo, hi := 0, len(s.records)
	for lo < hi {
		mid := lo + (hi-lo)/2
		if s.records[mid].Date.After(day) {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

// RecordsInRange returns every record with start <= date <= end, inclusive
// on both ends, in stored (most-recent-first) order. An empty intersection
// is ErrNoDataInRange.
func (s *PriceSeries) RecordsInRange(start, end time.Time) ([]domain.PriceRecord, error) {
	start, end = domain.Day(start), domain.Day(end)

	first := s.lowerBound(end)                    // first date <= end
	last := s.lowerBound(start.AddDate(0, 0, -1)) // first date < start
	if first >= last {
		return nil, domain.NewLookupError(s.ticker, start, domain.ErrNoDataInRange)
	}

	out := make([]domain.PriceRecord, last-first)
	copy(out, s.records[first:last])
	return out, nil
}

// NextTradingDay returns the smallest recorded date strictly after day,
// or ErrNoDataAfter when day is at or past the latest record.
func (s *PriceSeries) NextTradingDay(day time.Time) (time.Time, error) {
	day = domain.Day(day)
	bound := s.lowerBound(day)
	if bound == 0 {
		return time.Time{}, domain.NewLookupError(s.ticker, day, domain.ErrNoDataAfter)
	}
	return s.records[bound-1].Date, nil
}

// Open returns the opening price for a day, reconstructed with the
// day's AdjClose/Close ratio when adjusted.
func (s *PriceSeries) Open(day time.Time, adjusted bool) (decimal.Decimal, error) {
	r, err := s.RecordAt(day)
	if err != nil {
		return decimal.Zero, err
	}
	return r.OpenPrice(adjusted), nil
}

// High returns the daily high for a day.
func (s *PriceSeries) High(day time.Time, adjusted bool) (decimal.Decimal, error) {
	r, err := s.RecordAt(day)
	if err != nil {
		return decimal.Zero, err
	}
	return r.HighPrice(adjusted), nil
}

// Low returns the daily low for a day.
func (s *PriceSeries) Low(day time.Time, adjusted bool) (decimal.Decimal, error) {
	r, err := s.RecordAt(day)
	if err != nil {
		return decimal.Zero, err
	}
	return r.LowPrice(adjusted), nil
}

// Close returns the closing price for a day.
func (s *PriceSeries) Close(day time.Time, adjusted bool) (decimal.Decimal, error) {
	r, err := s.RecordAt(day)
	if err != nil {
		return decimal.Zero, err
	}
	return r.ClosePrice(adjusted), nil
}

// Volume returns the share volume for a day, inversely scaled by the
// adjustment ratio when adjusted.
func (s *PriceSeries) Volume(day time.Time, adjusted bool) (int64, error) {
	r, err := s.RecordAt(day)
	if err != nil {
		return 0, err
	}
	return r.VolumeShares(adjusted), nil
}

// AverageVolume returns the mean daily volume over a date range, rounded
// to the nearest share.
func (s *PriceSeries) AverageVolume(start, end time.Time, adjusted bool) (int64, error) {
	rs, err := s.RecordsInRange(start, end)
	if err != nil {
		return 0, err
	}
	var sum int64
	for i := range rs {
		sum += rs[i].VolumeShares(adjusted)
	}
	avg := decimal.NewFromInt(sum).Div(decimal.NewFromInt(int64(len(rs))))
	return avg.Round(0).IntPart(), nil
}

// Closes returns closing prices for a date range in stored order.
func (s *PriceSeries) Closes(start, end time.Time, adjusted bool) ([]decimal.Decimal, error) {
	return s.rangePrices(start, end, func(r *domain.PriceRecord) decimal.Decimal {
		return r.ClosePrice(adjusted)
	})
}

// Opens returns opening prices for a date range in stored order.
func (s *PriceSeries) Opens(start, end time.Time, adjusted bool) ([]decimal.Decimal, error) {
	return s.rangePrices(start, end, func(r *domain.PriceRecord) decimal.Decimal {
		return r.OpenPrice(adjusted)
	})
}

// Highs returns daily highs for a date range in stored order.
func (s *PriceSeries) Highs(start, end time.Time, adjusted bool) ([]decimal.Decimal, error) {
	return s.rangePrices(start, end, func(r *domain.PriceRecord) decimal.Decimal {
		return r.HighPrice(adjusted)
	})
}

// Lows returns daily lows for a date range in stored order.
func (s *PriceSeries) Lows(start, end time.Time, adjusted bool) ([]decimal.Decimal, error) {
	return s.rangePrices(start, end, func(r *domain.PriceRecord) decimal.Decimal {
		return r.LowPrice(adjusted)
	})
}

// Volumes returns share volumes for a date range in stored order.
func (s *PriceSeries) Volumes(start, end time.Time, adjusted bool) ([]int64, error) {
	rs, err := s.RecordsInRange(start, end)
	if err != nil {
		return nil, err
	}
	out := make([]int64, len(rs))
	for i := range rs {
		out[i] = rs[i].VolumeShares(adjusted)
	}
	return out, nil
}

// Days returns the trading days within a date range in stored order.
func (s *PriceSeries) Days(start, end time.Time) ([]time.Time, error) {
	rs, err := s.RecordsInRange(start, end)
	if err != nil {
		return nil, err
	}
	out := make([]time.Time, len(rs))
	for i := range rs {
		out[i] = rs[i].Date
	}
	return out, nil
}

func (s *PriceSeries) rangePrices(start, end time.Time, pick func(*domain.PriceRecord) decimal.Decimal) ([]decimal.Decimal, error) {
	rs, err := s.RecordsInRange(start, end)
	if err != nil {
		return nil, err
	}
	out := make([]decimal.Decimal, len(rs))
	for i := range rs {
		out[i] = pick(&rs[i])
	}
	return out, nil
}
