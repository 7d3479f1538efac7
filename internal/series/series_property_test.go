package series

import (
	"errors"
	"testing"
	"time"

	"stock_go/internal/domain"

	"github.com/shopspring/decimal"
	"pgregory.net/rapid"
)

// genSeries draws a series with a random subset of trading days out of a
// fixed calendar window, so gaps (weekends, holidays) occur naturally.
func genSeries(t *rapid.T) *PriceSeries {
	base := time.Date(2015, time.March, 2, 0, 0, 0, 0, time.UTC)
	offsets := rapid.SliceOfNDistinct(rapid.IntRange(0, 120), 1, 60, func(i int) int { return i }).Draw(t, "offsets")

	records := make([]domain.PriceRecord, 0, len(offsets))
	for _, off := range offsets {
		price := decimal.NewFromInt(int64(rapid.IntRange(10, 500).Draw(t, "price")))
		records = append(records, domain.PriceRecord{
			Date:     base.AddDate(0, 0, off),
			Open:     price,
			High:     price.Add(decimal.NewFromInt(2)),
			Low:      price.Sub(decimal.NewFromInt(2)),
			Close:    price.Add(decimal.NewFromInt(1)),
			AdjClose: price.Add(decimal.NewFromInt(1)),
			Volume:   int64(rapid.IntRange(1, 1_000_000).Draw(t, "volume")),
		})
	}
	return New("PROP", records)
}

func TestProperty_RecordAtMatchesRange(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := genSeries(t)

		all, err := s.RecordsInRange(s.EarliestDate(), s.LatestDate())
		if err != nil {
			t.Fatalf("full-span range failed: %v", err)
		}
		if len(all) != s.Len() {
			t.Fatalf("full span returned %d of %d records", len(all), s.Len())
		}

		// Every date a range query produces is an exact-match hit.
		for _, r := range all {
			got, err := s.RecordAt(r.Date)
			if err != nil {
				t.Fatalf("RecordAt(%v) failed: %v", r.Date, err)
			}
			if !got.Date.Equal(r.Date) {
				t.Fatalf("RecordAt(%v) returned %v", r.Date, got.Date)
			}
		}
	})
}

func TestProperty_RangeEqualsFilter(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := genSeries(t)

		span := int(s.LatestDate().Sub(s.EarliestDate()).Hours()/24) + 1
		startOff := rapid.IntRange(-5, span).Draw(t, "startOff")
		length := rapid.IntRange(0, span+10).Draw(t, "length")
		start := s.EarliestDate().AddDate(0, 0, startOff)
		end := start.AddDate(0, 0, length)

		// Reference: a linear scan over the full span.
		all, _ := s.RecordsInRange(s.EarliestDate(), s.LatestDate())
		var want []time.Time
		for _, r := range all {
			if !r.Date.Before(start) && !r.Date.After(end) {
				want = append(want, r.Date)
			}
		}

		got, err := s.RecordsInRange(start, end)
		if len(want) == 0 {
			if !errors.Is(err, domain.ErrNoDataInRange) {
				t.Fatalf("empty intersection: error = %v, want ErrNoDataInRange", err)
			}
			return
		}
		if err != nil {
			t.Fatalf("RecordsInRange failed: %v", err)
		}
		if len(got) != len(want) {
			t.Fatalf("got %d records, want %d", len(got), len(want))
		}
		seen := make(map[time.Time]bool, len(got))
		for i, r := range got {
			if seen[r.Date] {
				t.Fatalf("duplicate date %v in range result", r.Date)
			}
			seen[r.Date] = true
			if !r.Date.Equal(want[i]) {
				t.Fatalf("record %d: got %v, want %v", i, r.Date, want[i])
			}
		}
	})
}

func TestProperty_NextTradingDayIsStrictlyAfter(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := genSeries(t)

		off := rapid.IntRange(-3, 130).Draw(t, "off")
		q := s.EarliestDate().AddDate(0, 0, off)

		next, err := s.NextTradingDay(q)
		if err != nil {
			if !errors.Is(err, domain.ErrNoDataAfter) {
				t.Fatalf("unexpected error: %v", err)
			}
			if q.Before(s.LatestDate()) {
				t.Fatalf("NoDataAfter for %v although latest is %v", q, s.LatestDate())
			}
			return
		}

		if !next.After(q) {
			t.Fatalf("next %v is not after query %v", next, q)
		}
		// No stored day lies strictly between q and next.
		all, _ := s.RecordsInRange(s.EarliestDate(), s.LatestDate())
		for _, r := range all {
			if r.Date.After(q) && r.Date.Before(next) {
				t.Fatalf("day %v between query %v and next %v", r.Date, q, next)
			}
		}
	})
}
