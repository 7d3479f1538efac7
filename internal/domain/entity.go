package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceBar is the persisted form of one PriceRecord row in the series
// cache. Rows are keyed by (ticker, date).
type PriceBar struct {
	Ticker   string          `gorm:"primaryKey;size:16" json:"ticker"`
	Date     time.Time       `gorm:"primaryKey" json:"date"`
	Open     decimal.Decimal `gorm:"type:decimal(20,6)" json:"open"`
	High     decimal.Decimal `gorm:"type:decimal(20,6)" json:"high"`
	Low      decimal.Decimal `gorm:"type:decimal(20,6)" json:"low"`
	Close    decimal.Decimal `gorm:"type:decimal(20,6)" json:"close"`
	AdjClose decimal.Decimal `gorm:"type:decimal(20,6)" json:"adj_close"`
	Volume   int64           `json:"volume"`

	CreatedAt time.Time `json:"created_at"`
}

// Record converts the stored row back to its in-memory form.
func (b *PriceBar) Record() PriceRecord {
	return PriceRecord{
		Date:     Day(b.Date),
		Open:     b.Open,
		High:     b.High,
		Low:      b.Low,
		Close:    b.Close,
		AdjClose: b.AdjClose,
		Volume:   b.Volume,
	}
}

// NewPriceBar builds the persisted row for a record.
func NewPriceBar(ticker string, r PriceRecord) PriceBar {
	return PriceBar{
		Ticker:   ticker,
		Date:     r.Date,
		Open:     r.Open,
		High:     r.High,
		Low:      r.Low,
		Close:    r.Close,
		AdjClose: r.AdjClose,
		Volume:   r.Volume,
	}
}
