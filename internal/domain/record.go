package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceRecord holds one trading day of raw OHLCV data for a single ticker.
// AdjClose carries the split/dividend adjustment; the adjusted view of the
// other fields is reconstructed from the AdjClose/Close ratio, never stored.
type PriceRecord struct {
	Date     time.Time       `json:"date"`
	Open     decimal.Decimal `json:"open"`
	High     decimal.Decimal `json:"high"`
	Low      decimal.Decimal `json:"low"`
	Close    decimal.Decimal `json:"close"`
	AdjClose decimal.Decimal `json:"adj_close"`
	Volume   int64           `json:"volume"`
}

// AdjustRatio returns AdjClose/Close, the multiplicative factor that maps
// raw prices to adjusted prices for this day.
func (r *PriceRecord) AdjustRatio() decimal.Decimal {
	return r.AdjClose.Div(r.Close)
}

// OpenPrice returns the opening price, adjusted on demand.
func (r *PriceRecord) OpenPrice(adjusted bool) decimal.Decimal {
	if adjusted {
		return r.AdjustRatio().Mul(r.Open)
	}
	return r.Open
}

// HighPrice returns the daily high, adjusted on demand.
func (r *PriceRecord) HighPrice(adjusted bool) decimal.Decimal {
	if adjusted {
		return r.AdjustRatio().Mul(r.High)
	}
	return r.High
}

// LowPrice returns the daily low, adjusted on demand.
func (r *PriceRecord) LowPrice(adjusted bool) decimal.Decimal {
	if adjusted {
		return r.AdjustRatio().Mul(r.Low)
	}
	return r.Low
}

// ClosePrice returns the closing price, adjusted on demand.
func (r *PriceRecord) ClosePrice(adjusted bool) decimal.Decimal {
	if adjusted {
		return r.AdjClose
	}
	return r.Close
}

// VolumeShares returns the volume, inversely scaled by the adjustment
// ratio and rounded to the nearest share when adjusted.
func (r *PriceRecord) VolumeShares(adjusted bool) int64 {
	if !adjusted {
		return r.Volume
	}
	v := r.Close.Div(r.AdjClose).Mul(decimal.NewFromInt(r.Volume))
	return v.Round(0).IntPart()
}

// Day truncates a timestamp to its calendar day in UTC. All series dates
// and simulation dates are normalized through this.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SameDay reports whether two timestamps fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	return Day(a).Equal(Day(b))
}
