package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderSide distinguishes buys from sells.
type OrderSide string

// OrderKind is derived once at construction from which trigger prices are
// set, so the engine never re-checks zero-vs-absent on decimal fields.
type OrderKind string

const (
	SideBuy  OrderSide = "BUY"
	SideSell OrderSide = "SELL"

	KindMarket    OrderKind = "MARKET"
	KindLimit     OrderKind = "LIMIT"
	KindStop      OrderKind = "STOP"
	KindStopLimit OrderKind = "STOP_LIMIT"
)

// Order is a pending trade intent. It is owned exclusively by the
// portfolio's order book from placement until it fills or expires.
// A zero Limit/Stop means the trigger is not set; Kind records which
// combination was live at construction.
type Order struct {
	ID     string
	Ticker string
	Side   OrderSide
	Kind   OrderKind
	Shares int64

	Limit decimal.Decimal // only meaningful for KindLimit / KindStopLimit
	Stop  decimal.Decimal // only meaningful for KindStop / KindStopLimit

	Expiry *time.Time // nil = good-till-canceled

	// Degraded is set when a conflicting stop/limit pair was cleared and
	// the order was converted to a market order.
	Degraded bool
}

// NewOrder builds an order, derives its kind, and applies the
// stop/limit conflict rule: a buy needs stop >= limit and a sell needs
// stop <= limit, otherwise both triggers are dropped and the order
// becomes a market order. The caller is expected to surface Degraded
// as a warning.
func NewOrder(ticker string, side OrderSide, shares int64, limit, stop decimal.Decimal, expiry *time.Time) *Order {
	o := &Order{
		ID:     uuid.NewString(),
		Ticker: ticker,
		Side:   side,
		Shares: shares,
		Limit:  limit,
		Stop:   stop,
		Expiry: expiry,
	}

	hasLimit := limit.IsPositive()
	hasStop := stop.IsPositive()

	if hasLimit && hasStop {
		conflict := (side == SideBuy && stop.LessThan(limit)) ||
			(side == SideSell && stop.GreaterThan(limit))
		if conflict {
			o.Limit = decimal.Zero
			o.Stop = decimal.Zero
			o.Degraded = true
			o.Kind = KindMarket
			return o
		}
		o.Kind = KindStopLimit
		return o
	}

	switch {
	case hasLimit:
		o.Kind = KindLimit
	case hasStop:
		o.Kind = KindStop
	default:
		o.Kind = KindMarket
	}
	return o
}

// Expired reports whether the order's expiration has been reached.
// GTC orders never expire.
func (o *Order) Expired(now time.Time) bool {
	return o.Expiry != nil && !o.Expiry.After(now)
}
