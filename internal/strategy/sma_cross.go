package strategy

import (
	"time"

	"github.com/shopspring/decimal"
)

// ActionType identifies the trade a strategy wants placed.
type ActionType string

const (
	ActionBuy  ActionType = "BUY"
	ActionSell ActionType = "SELL"
)

// Action is a trade request emitted by a strategy. Shares == 0 on a sell
// means liquidate the full position.
type Action struct {
	Type   ActionType
	Ticker string
	Day    time.Time
	Shares int64
}

// Strategy consumes one closing price per trading day and emits trade
// requests for the driver to place.
type Strategy interface {
	OnClose(ticker string, day time.Time, close decimal.Decimal) []Action
}

// SMACrossStrategy implements a simple SMA crossover over daily closes.
// It is stateful and deterministic. A ring buffer holds the last
// longPeriod closes so the hotpath does not allocate.
type SMACrossStrategy struct {
	ticker      string
	shortPeriod int
	longPeriod  int
	shares      int64

	// State (Ring Buffer)
	closes []decimal.Decimal
	head   int // Current write position
	count  int // Number of elements filled
	sum    decimal.Decimal

	prevShortSMA decimal.Decimal
	prevLongSMA  decimal.Decimal

	holding bool
}

// NewSMACrossStrategy creates a new instance.
func NewSMACrossStrategy(ticker string, shortPeriod, longPeriod int, shares int64) *SMACrossStrategy {
	if shortPeriod >= longPeriod {
		panic("SMACrossStrategy: shortPeriod must be less than longPeriod")
	}
	return &SMACrossStrategy{
		ticker:      ticker,
		shortPeriod: shortPeriod,
		longPeriod:  longPeriod,
		shares:      shares,
		closes:      make([]decimal.Decimal, longPeriod),
		sum:         decimal.Zero,
	}
}

// OnClose folds in one closing price and emits a buy on a golden cross
// or a full liquidation on a dead cross.
func (s *SMACrossStrategy) OnClose(ticker string, day time.Time, close decimal.Decimal) []Action {
	if ticker != s.ticker {
		return nil
	}

	// Update price history; when full, the slot being overwritten is the
	// oldest value and leaves the running sum.
	if s.count == s.longPeriod {
		s.sum = s.sum.Sub(s.closes[s.head])
	}
	s.closes[s.head] = close
	s.sum = s.sum.Add(close)
	s.head = (s.head + 1) % s.longPeriod
	if s.count < s.longPeriod {
		s.count++
	}

	if s.count < s.longPeriod {
		return nil
	}

	currLongSMA := s.sum.Div(decimal.NewFromInt(int64(s.longPeriod)))
	currShortSMA := s.shortSMA()

	var actions []Action

	if !s.prevShortSMA.IsZero() && !s.prevLongSMA.IsZero() {
		// Golden Cross: short goes above long
		if !s.holding && s.prevShortSMA.LessThanOrEqual(s.prevLongSMA) && currShortSMA.GreaterThan(currLongSMA) {
			actions = append(actions, Action{Type: ActionBuy, Ticker: s.ticker, Day: day, Shares: s.shares})
			s.holding = true
		}

		// Dead Cross: short goes below long
		if s.holding && s.prevShortSMA.GreaterThanOrEqual(s.prevLongSMA) && currShortSMA.LessThan(currLongSMA) {
			actions = append(actions, Action{Type: ActionSell, Ticker: s.ticker, Day: day})
			s.holding = false
		}
	}

	s.prevShortSMA = currShortSMA
	s.prevLongSMA = currLongSMA

	return actions
}

// shortSMA walks the ring buffer backwards from the latest close.
func (s *SMACrossStrategy) shortSMA() decimal.Decimal {
	sum := decimal.Zero
	idx := s.head
	for i := 0; i < s.shortPeriod; i++ {
		idx--
		if idx < 0 {
			idx = s.longPeriod - 1
		}
		sum = sum.Add(s.closes[idx])
	}
	return sum.Div(decimal.NewFromInt(int64(s.shortPeriod)))
}
