package series

import (
	"time"

	"stock_go/internal/domain"
)

// Cursor is an owned position inside one series, used by callers that
// walk the calendar one trading day at a time. It is purely an access
// pattern optimization: the stateless lookups on PriceSeries never
// depend on it.
type Cursor struct {
	series *PriceSeries
	idx    int
	date   time.Time
}

// NewCursor creates a cursor positioned on the given trading day.
func NewCursor(s *PriceSeries, day time.Time) (*Cursor, error) {
	c := &Cursor{series: s}
	if err := c.Set(day); err != nil {
		return nil, err
	}
	return c, nil
}

// Set positions the cursor on an exact trading day.
func (c *Cursor) Set(day time.Time) error {
	idx, ok := c.series.indexOf(day)
	if !ok {
		return domain.NewLookupError(c.series.ticker, day, domain.ErrNoDataForDate)
	}
	c.idx = idx
	c.date = c.series.records[idx].Date
	return nil
}

// Advance moves the cursor forward one trading day. Records are stored
// most-recent-first, so stepping forward in time means decrementing the
// index. Returns ErrNoDataAfter at the end of the series.
func (c *Cursor) Advance() error {
	if c.idx == 0 {
		return domain.NewLookupError(c.series.ticker, c.date, domain.ErrNoDataAfter)
	}
	c.idx--
	c.date = c.series.records[c.idx].Date
	return nil
}

// Date returns the trading day the cursor is on.
func (c *Cursor) Date() time.Time {
	return c.date
}

// Record returns the price record the cursor is on.
func (c *Cursor) Record() domain.PriceRecord {
	return c.series.records[c.idx]
}
