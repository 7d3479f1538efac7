// Package chart renders OHLC candlestick views of a price series to PNG.
// It is a pure consumer of series range queries.
package chart

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"time"

	"stock_go/internal/domain"
	"stock_go/internal/series"

	"github.com/disintegration/imaging"
	"github.com/shopspring/decimal"
)

var (
	colorBackground = color.NRGBA{R: 250, G: 250, B: 250, A: 255}
	colorUp         = color.NRGBA{R: 0x4C, G: 0xBB, B: 0x17, A: 255} // open < close
	colorDown       = color.NRGBA{R: 0xFF, G: 0x00, B: 0x00, A: 255}
)

// Renderer draws candlestick charts into a fixed-size canvas.
type Renderer struct {
	outputDir string
	width     int
	height    int
}

// NewRenderer creates a renderer writing PNGs under outputDir.
func NewRenderer(outputDir string, width, height int) (*Renderer, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create chart directory: %w", err)
	}
	return &Renderer{outputDir: outputDir, width: width, height: height}, nil
}

// RenderOHLC draws one candle per trading day in [start, end] and saves
// the chart as <ticker>.png. Up days are green, down days red, wicks span
// the daily low to high.
func (r *Renderer) RenderOHLC(s *series.PriceSeries, start, end time.Time, adjusted bool) (string, error) {
	records, err := s.RecordsInRange(start, end)
	if err != nil {
		return "", err
	}

	// Range queries return most-recent-first; candles go left to right.
	days := make([]domain.PriceRecord, len(records))
	for i := range records {
		days[len(records)-1-i] = records[i]
	}

	lo, hi := priceBounds(days, adjusted)
	span := hi.Sub(lo)
	if span.IsZero() {
		span = decimal.NewFromInt(1)
	}

	const margin = 20
	plotW := r.width - 2*margin
	plotH := r.height - 2*margin

	img := imaging.New(r.width, r.height, colorBackground)

	// Vertical pixel for a price, higher prices toward the top.
	yFor := func(p decimal.Decimal) int {
		frac, _ := p.Sub(lo).Div(span).Float64()
		return margin + plotH - int(frac*float64(plotH))
	}

	slot := float64(plotW) / float64(len(days))
	bodyW := int(slot * 0.6)
	if bodyW < 1 {
		bodyW = 1
	}

	for i := range days {
		rec := &days[i]
		c := colorDown
		if rec.OpenPrice(adjusted).LessThan(rec.ClosePrice(adjusted)) {
			c = colorUp
		}

		x := margin + int(slot*float64(i)+slot/2)

		// Wick: low to high
		drawVLine(img, x, yFor(rec.HighPrice(adjusted)), yFor(rec.LowPrice(adjusted)), c)

		// Body: open to close
		yOpen := yFor(rec.OpenPrice(adjusted))
		yClose := yFor(rec.ClosePrice(adjusted))
		drawRect(img, x-bodyW/2, min(yOpen, yClose), x+bodyW/2, max(yOpen, yClose), c)
	}

	path := filepath.Join(r.outputDir, s.Ticker()+".png")
	if err := imaging.Save(img, path); err != nil {
		return "", fmt.Errorf("failed to save chart: %w", err)
	}
	return path, nil
}

func priceBounds(days []domain.PriceRecord, adjusted bool) (decimal.Decimal, decimal.Decimal) {
	lo := days[0].LowPrice(adjusted)
	hi := days[0].HighPrice(adjusted)
	for i := range days {
		if l := days[i].LowPrice(adjusted); l.LessThan(lo) {
			lo = l
		}
		if h := days[i].HighPrice(adjusted); h.GreaterThan(hi) {
			hi = h
		}
	}
	return lo, hi
}

func drawVLine(img *image.NRGBA, x, y0, y1 int, c color.NRGBA) {
	for y := y0; y <= y1; y++ {
		img.SetNRGBA(x, y, c)
	}
}

func drawRect(img *image.NRGBA, x0, y0, x1, y1 int, c color.NRGBA) {
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
}
