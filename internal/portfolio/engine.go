package portfolio

import (
	"fmt"
	"log/slog"

	"stock_go/internal/domain"

	"github.com/shopspring/decimal"
)

// execOrders evaluates every pending order against the current day's
// prices in one deterministic pass. Filled and expired orders leave the
// book; the rest carry forward to the next day. Survivors collect into
// fresh slices so an error return mid-pass leaves both books exactly as
// they were.
func (p *Portfolio) execOrders() error {
	remaining := make([]*domain.Order, 0, len(p.buyOrders))
	for _, o := range p.buyOrders {
		if o.Expired(p.date) {
			slog.Debug("Buy order expired", slog.String("ticker", o.Ticker), slog.String("order_id", o.ID))
			continue
		}
		rec, err := p.recordFor(o.Ticker)
		if err != nil {
			return err
		}
		price, filled := evalBuy(o, &rec, p.cfg.Adjusted)
		if !filled {
			remaining = append(remaining, o)
			continue
		}
		if !p.applyBuyFill(o, price) {
			// Rejected fill: the order is dropped, not retried.
			continue
		}
	}
	p.buyOrders = remaining

	remainingSells := make([]*domain.Order, 0, len(p.sellOrders))
	for _, o := range p.sellOrders {
		if o.Expired(p.date) {
			slog.Debug("Sell order expired", slog.String("ticker", o.Ticker), slog.String("order_id", o.ID))
			continue
		}
		pos, ok := p.positions[o.Ticker]
		if !ok {
			return fmt.Errorf("%s: %w", o.Ticker, domain.ErrUnownedSale)
		}
		rec, err := p.recordFor(o.Ticker)
		if err != nil {
			return err
		}
		price, filled := evalSell(o, &rec, p.cfg.Adjusted)
		if !filled {
			remainingSells = append(remainingSells, o)
			continue
		}
		p.applySellFill(o, pos, price)
	}
	p.sellOrders = remainingSells
	return nil
}

// evalBuy resolves a buy order against one day's prices. A limit fills
// at the open when the open gaps below it, else at the limit when the
// low trades through it. A stop fills at the open when the open gaps
// above it, else at the stop when the high trades through it. A
// stop-limit tries the limit leg first, then the stop leg, same day.
func evalBuy(o *domain.Order, rec *domain.PriceRecord, adjusted bool) (decimal.Decimal, bool) {
	open := rec.OpenPrice(adjusted)

	tryLimit := func() (decimal.Decimal, bool) {
		if open.LessThan(o.Limit) {
			return open, true
		}
		if rec.LowPrice(adjusted).LessThanOrEqual(o.Limit) {
			return o.Limit, true
		}
		return decimal.Zero, false
	}
	tryStop := func() (decimal.Decimal, bool) {
		if open.GreaterThan(o.Stop) {
			return open, true
		}
		if rec.HighPrice(adjusted).GreaterThanOrEqual(o.Stop) {
			return o.Stop, true
		}
		return decimal.Zero, false
	}

	switch o.Kind {
	case domain.KindLimit:
		return tryLimit()
	case domain.KindStop:
		return tryStop()
	case domain.KindStopLimit:
		if price, ok := tryLimit(); ok {
			return price, true
		}
		return tryStop()
	default:
		return open, true
	}
}

// evalSell mirrors evalBuy with inverted comparisons: a sell limit fills
// when the price rises to or through it, a sell stop when the price
// falls to or through it.
func evalSell(o *domain.Order, rec *domain.PriceRecord, adjusted bool) (decimal.Decimal, bool) {
	open := rec.OpenPrice(adjusted)

	tryLimit := func() (decimal.Decimal, bool) {
		if open.GreaterThan(o.Limit) {
			return open, true
		}
		if rec.HighPrice(adjusted).GreaterThanOrEqual(o.Limit) {
			return o.Limit, true
		}
		return decimal.Zero, false
	}
	tryStop := func() (decimal.Decimal, bool) {
		if open.LessThan(o.Stop) {
			return open, true
		}
		if rec.LowPrice(adjusted).LessThanOrEqual(o.Stop) {
			return o.Stop, true
		}
		return decimal.Zero, false
	}

	switch o.Kind {
	case domain.KindLimit:
		return tryLimit()
	case domain.KindStop:
		return tryStop()
	case domain.KindStopLimit:
		if price, ok := tryLimit(); ok {
			return price, true
		}
		return tryStop()
	default:
		return open, true
	}
}

// applyBuyFill debits cash and creates or augments the position. A fill
// that would overdraw cash is rejected with a warning and reports false.
func (p *Portfolio) applyBuyFill(o *domain.Order, price decimal.Decimal) bool {
	cost := price.Mul(decimal.NewFromInt(o.Shares)).Add(p.cfg.Commission)
	if cost.GreaterThan(p.cash) {
		slog.Warn("Buy fill rejected",
			slog.Any("error", domain.ErrInsufficientFunds),
			slog.String("ticker", o.Ticker), slog.String("order_id", o.ID),
			slog.String("cost", cost.StringFixed(2)), slog.String("cash", p.cash.StringFixed(2)))
		return false
	}

	if pos, ok := p.positions[o.Ticker]; ok {
		pos.Augment(o.Shares, price)
	} else {
		p.positions[o.Ticker] = domain.NewPosition(o.Ticker, o.Shares, price)
	}
	p.cash = p.cash.Sub(cost)

	slog.Info("Buy fill",
		slog.String("ticker", o.Ticker), slog.String("order_id", o.ID),
		slog.Int64("shares", o.Shares), slog.String("price", price.StringFixed(2)))
	return true
}

// applySellFill credits cash and decrements or removes the position.
func (p *Portfolio) applySellFill(o *domain.Order, pos *domain.Position, price decimal.Decimal) {
	proceeds := price.Mul(decimal.NewFromInt(o.Shares)).Sub(p.cfg.Commission)
	p.cash = p.cash.Add(proceeds)

	if o.Shares == pos.Shares {
		delete(p.positions, o.Ticker)
	} else {
		pos.Shares -= o.Shares
	}

	slog.Info("Sell fill",
		slog.String("ticker", o.Ticker), slog.String("order_id", o.ID),
		slog.Int64("shares", o.Shares), slog.String("price", price.StringFixed(2)))
}
