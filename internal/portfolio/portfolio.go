// Package portfolio holds the simulated account: cash, open positions,
// pending orders, and the daily tick that drives order execution and
// mark-to-market valuation.
package portfolio

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"stock_go/internal/domain"
	"stock_go/internal/series"

	"github.com/shopspring/decimal"
)

// MarketData resolves a ticker to its loaded price series. Series are
// read-only for the duration of a run, so one MarketData may back many
// portfolios.
type MarketData interface {
	Series(ticker string) (*series.PriceSeries, error)
}

// Config captures the immutable parameters of one simulation run.
type Config struct {
	Cash       decimal.Decimal
	Commission decimal.Decimal // fixed fee per trade
	Start      time.Time       // must be a trading day of the reference ticker
	Reference  string          // ticker whose calendar drives the clock
	Adjusted   bool            // price basis used for the whole run
}

// Portfolio is the simulated account. All state is mutated exclusively
// by Step and the placement methods; it is not safe for concurrent use.
type Portfolio struct {
	market MarketData
	timer  *series.Cursor
	cfg    Config

	cash     decimal.Decimal
	tradable decimal.Decimal // cash minus worst-case pending buy commitments
	value    decimal.Decimal // cash plus positions at last mark
	date     time.Time

	positions  map[string]*domain.Position
	buyOrders  []*domain.Order
	sellOrders []*domain.Order
}

// New creates a portfolio with its clock positioned on cfg.Start, which
// must be a trading day of the reference ticker.
func New(market MarketData, cfg Config) (*Portfolio, error) {
	ref, err := market.Series(cfg.Reference)
	if err != nil {
		return nil, fmt.Errorf("reference series %s: %w", cfg.Reference, err)
	}
	timer, err := series.NewCursor(ref, cfg.Start)
	if err != nil {
		return nil, err
	}

	return &Portfolio{
		market:    market,
		timer:     timer,
		cfg:       cfg,
		cash:      cfg.Cash,
		tradable:  cfg.Cash,
		value:     cfg.Cash,
		date:      timer.Date(),
		positions: make(map[string]*domain.Position),
	}, nil
}

// Buy places a buy order for a fixed number of shares. Limit and stop are
// optional (zero = unset); a conflicting pair degrades to a market order
// with a warning. The estimated cost is reserved from tradable cash until
// the order fills or expires; actual cash moves only on fill.
func (p *Portfolio) Buy(ticker string, shares int64, limit, stop decimal.Decimal, expiry *time.Time) (*domain.Order, error) {
	if expiry != nil && !expiry.After(p.date) {
		return nil, domain.ErrInvalidExpiration
	}

	o := domain.NewOrder(ticker, domain.SideBuy, shares, limit, stop, expiry)
	if o.Degraded {
		slog.Warn("Buy order has stop price less than limit price, degraded to market order",
			slog.String("ticker", ticker), slog.String("order_id", o.ID))
	}

	est, err := p.commitment(o)
	if err != nil {
		return nil, err
	}
	p.tradable = p.tradable.Sub(est)
	p.buyOrders = append(p.buyOrders, o)
	return o, nil
}

// Sell places a sell order. shares <= 0 liquidates the full position.
// Placement fails when the position is empty, when the request exceeds
// the shares held, or when this plus all other resting sell orders on
// the ticker would oversell the position.
func (p *Portfolio) Sell(ticker string, shares int64, limit, stop decimal.Decimal, expiry *time.Time) (*domain.Order, error) {
	if expiry != nil && !expiry.After(p.date) {
		return nil, domain.ErrInvalidExpiration
	}

	var held int64
	if pos, ok := p.positions[ticker]; ok {
		held = pos.Shares
	}

	if shares > 0 && held < shares {
		return nil, domain.ErrOversell
	}
	if shares <= 0 {
		if held == 0 {
			return nil, domain.ErrNothingToSell
		}
		shares = held
	}

	var resting int64
	for _, so := range p.sellOrders {
		if so.Ticker == ticker {
			resting += so.Shares
		}
	}
	if resting+shares > held {
		return nil, domain.ErrOverlappingSellOrders
	}

	o := domain.NewOrder(ticker, domain.SideSell, shares, limit, stop, expiry)
	if o.Degraded {
		slog.Warn("Sell order has stop price greater than limit price, degraded to market order",
			slog.String("ticker", ticker), slog.String("order_id", o.ID))
	}

	p.sellOrders = append(p.sellOrders, o)
	return o, nil
}

// Step advances the clock one trading day, executes pending orders
// against that day's prices, recomputes tradable cash from the surviving
// buy orders, and marks every open position to the day's close.
func (p *Portfolio) Step() error {
	if err := p.timer.Advance(); err != nil {
		return err
	}
	p.date = p.timer.Date()

	if err := p.execOrders(); err != nil {
		return err
	}

	// Tradable cash is always recomputed from the order book, never drifted.
	p.value = p.cash
	p.tradable = p.cash
	for _, o := range p.buyOrders {
		est, err := p.commitment(o)
		if err != nil {
			return err
		}
		p.tradable = p.tradable.Sub(est)
	}

	for _, ticker := range p.sortedPositionTickers() {
		pos := p.positions[ticker]
		rec, err := p.recordFor(ticker)
		if err != nil {
			return err
		}
		pos.Mark(rec.ClosePrice(p.cfg.Adjusted), rec.HighPrice(p.cfg.Adjusted), rec.LowPrice(p.cfg.Adjusted))
		p.value = p.value.Add(pos.MarketValue())
	}
	return nil
}

// commitment is the worst-case cost reserved for a pending buy order:
// stop price if set, else limit, else the current close as an estimate.
func (p *Portfolio) commitment(o *domain.Order) (decimal.Decimal, error) {
	shares := decimal.NewFromInt(o.Shares)
	switch o.Kind {
	case domain.KindStop, domain.KindStopLimit:
		return o.Stop.Mul(shares), nil
	case domain.KindLimit:
		return o.Limit.Mul(shares), nil
	default:
		s, err := p.market.Series(o.Ticker)
		if err != nil {
			return decimal.Zero, err
		}
		c, err := s.Close(p.date, p.cfg.Adjusted)
		if err != nil {
			return decimal.Zero, err
		}
		return c.Mul(shares), nil
	}
}

func (p *Portfolio) recordFor(ticker string) (domain.PriceRecord, error) {
	s, err := p.market.Series(ticker)
	if err != nil {
		return domain.PriceRecord{}, err
	}
	return s.RecordAt(p.date)
}

func (p *Portfolio) sortedPositionTickers() []string {
	tickers := make([]string, 0, len(p.positions))
	for t := range p.positions {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)
	return tickers
}

// Date returns the portfolio's current simulated day.
func (p *Portfolio) Date() time.Time {
	return p.date
}

// Cash returns liquid funds.
func (p *Portfolio) Cash() decimal.Decimal {
	return p.cash
}

// TradableCash returns funds not committed to pending buy orders.
func (p *Portfolio) TradableCash() decimal.Decimal {
	return p.tradable
}

// Value returns the mark-to-market value: cash plus positions at the
// last close.
func (p *Portfolio) Value() decimal.Decimal {
	return p.value
}

// Position returns the open position for a ticker, if any.
func (p *Portfolio) Position(ticker string) (*domain.Position, bool) {
	pos, ok := p.positions[ticker]
	return pos, ok
}

// BuyOrders returns a snapshot of pending buy orders.
func (p *Portfolio) BuyOrders() []*domain.Order {
	return append([]*domain.Order(nil), p.buyOrders...)
}

// SellOrders returns a snapshot of pending sell orders.
func (p *Portfolio) SellOrders() []*domain.Order {
	return append([]*domain.Order(nil), p.sellOrders...)
}

// String renders the portfolio report: funds, open positions with
// gain/loss, and pending orders.
func (p *Portfolio) String() string {
	var b strings.Builder
	line := strings.Repeat("-", 56) + "\n"

	b.WriteString(line)
	b.WriteString("Portfolio:\n")
	b.WriteString(line)
	fmt.Fprintf(&b, "Date   = %s\n", p.date.Format("2006-01-02"))
	fmt.Fprintf(&b, "Cash   = %s\n", p.cash.StringFixed(2))
	fmt.Fprintf(&b, "TCash  = %s\n", p.tradable.StringFixed(2))
	fmt.Fprintf(&b, "Value  = %s\n", p.value.StringFixed(2))

	if len(p.positions) > 0 {
		b.WriteString(line)
		b.WriteString("Positions:\n")
		b.WriteString(line)
		fmt.Fprintf(&b, "|%10s|%10s|%10s|%10s|%10s|\n", "Ticker", "Shares", "Buy$", "Cur$", "G/L")
		for _, ticker := range p.sortedPositionTickers() {
			pos := p.positions[ticker]
			fmt.Fprintf(&b, "|%10s|%10d|%10s|%10s|%9s%%|\n",
				pos.Ticker, pos.Shares,
				pos.BuyPrice.StringFixed(2), pos.LastMark.StringFixed(2),
				pos.GainPct().StringFixed(2))
		}
	}

	writeOrders := func(title string, orders []*domain.Order) {
		if len(orders) == 0 {
			return
		}
		b.WriteString(line)
		b.WriteString(title + ":\n")
		b.WriteString(line)
		fmt.Fprintf(&b, "|%10s|%10s|%10s|%10s|%10s|\n", "Ticker", "Shares", "Limit$", "Stop$", "Exp")
		for _, o := range orders {
			limit, stop, exp := "N/A", "N/A", "GTC"
			if o.Limit.IsPositive() {
				limit = o.Limit.StringFixed(2)
			}
			if o.Stop.IsPositive() {
				stop = o.Stop.StringFixed(2)
			}
			if o.Expiry != nil {
				exp = o.Expiry.Format("2006-01-02")
			}
			fmt.Fprintf(&b, "|%10s|%10d|%10s|%10s|%10s|\n", o.Ticker, o.Shares, limit, stop, exp)
		}
	}
	writeOrders("Buy Orders", p.buyOrders)
	writeOrders("Sell Orders", p.sellOrders)

	b.WriteString(line)
	return b.String()
}
