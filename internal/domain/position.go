package domain

import (
	"github.com/shopspring/decimal"
)

// Position tracks one open holding. It exists only while shares are held;
// a position sold down to zero is removed from the portfolio entirely
// rather than kept around with zero fields.
type Position struct {
	Ticker   string
	Shares   int64
	BuyPrice decimal.Decimal // weighted-average purchase price
	MinPrice decimal.Decimal // lowest price seen since acquisition, including daily lows
	MaxPrice decimal.Decimal // highest price seen since acquisition, including daily highs
	LastMark decimal.Decimal // most recent closing price
}

// NewPosition opens a position from its first buy fill. Running min/max
// and the mark start at the fill price.
func NewPosition(ticker string, shares int64, price decimal.Decimal) *Position {
	return &Position{
		Ticker:   ticker,
		Shares:   shares,
		BuyPrice: price,
		MinPrice: price,
		MaxPrice: price,
		LastMark: price,
	}
}

// Augment folds an additional buy fill into the position, recomputing the
// weighted-average purchase price.
func (p *Position) Augment(shares int64, price decimal.Decimal) {
	existing := decimal.NewFromInt(p.Shares)
	added := decimal.NewFromInt(shares)
	total := existing.Add(added)

	p.BuyPrice = p.BuyPrice.Mul(existing).Add(price.Mul(added)).Div(total)
	p.Shares += shares
}

// Mark updates the last mark price and extends the running min/max with
// the day's extremes.
func (p *Position) Mark(close, high, low decimal.Decimal) {
	p.LastMark = close
	if low.LessThan(p.MinPrice) {
		p.MinPrice = low
	}
	if high.GreaterThan(p.MaxPrice) {
		p.MaxPrice = high
	}
}

// MarketValue returns shares times the last mark price.
func (p *Position) MarketValue() decimal.Decimal {
	return p.LastMark.Mul(decimal.NewFromInt(p.Shares))
}

// GainPct returns the percentage gain/loss of the mark over the
// weighted-average purchase price.
func (p *Position) GainPct() decimal.Decimal {
	return p.LastMark.Sub(p.BuyPrice).Div(p.BuyPrice).Mul(decimal.NewFromInt(100))
}
