package domain

import (
	"errors"
	"fmt"
	"time"
)

// RetriableError defines an interface for errors that can be retried
type RetriableError interface {
	error
	IsRetriable() bool
}

// IsRetriable checks if an error is retriable
func IsRetriable(err error) bool {
	var re RetriableError
	if errors.As(err, &re) {
		return re.IsRetriable()
	}
	return false
}

// NetworkError represents a network-related error that may be retriable
type NetworkError struct {
	Op        string // Operation that failed (e.g., "fetch", "read")
	Err       error  // Underlying error
	Retriable bool   // Whether this error is retriable
}

func (e *NetworkError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *NetworkError) IsRetriable() bool {
	return e.Retriable
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// NewNetworkError creates a new retriable network error
func NewNetworkError(op string, err error) *NetworkError {
	return &NetworkError{Op: op, Err: err, Retriable: true}
}

// NewFatalNetworkError creates a non-retriable network error
func NewFatalNetworkError(op string, err error) *NetworkError {
	return &NetworkError{Op: op, Err: err, Retriable: false}
}

// ConfigError represents a configuration error (never retriable)
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return "config error [" + e.Field + "]: " + e.Err.Error()
}

func (e *ConfigError) IsRetriable() bool {
	return false
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

var (
	// ErrDataUnavailable is returned when the upstream source does not know the ticker. Not retriable.
	ErrDataUnavailable = errors.New("price data unavailable")

	// ErrSourceUnreachable is returned when the upstream source cannot be reached. Usually retriable.
	ErrSourceUnreachable = errors.New("price source unreachable")

	// ErrNoDataForDate is returned when a series has no record for the requested date.
	ErrNoDataForDate = errors.New("no data for date")

	// ErrNoDataInRange is returned when a range query matches no trading days.
	ErrNoDataInRange = errors.New("no data in range")

	// ErrNoDataAfter is returned when no trading day exists after the requested date.
	ErrNoDataAfter = errors.New("no data after date")

	// ErrInvalidExpiration is returned when an order expiration is at or before the current date.
	ErrInvalidExpiration = errors.New("order expiration must be after current date")

	// ErrOversell is returned when a sell order requests more shares than are held.
	ErrOversell = errors.New("cannot sell more shares than owned")

	// ErrOverlappingSellOrders is returned when resting sell orders together exceed the shares held.
	ErrOverlappingSellOrders = errors.New("sell orders exceed shares owned")

	// ErrNothingToSell is returned when liquidating a position that does not exist.
	ErrNothingToSell = errors.New("no shares owned")

	// ErrUnownedSale indicates a sell order was evaluated without a backing position.
	// This is a logic fault, not a recoverable condition.
	ErrUnownedSale = errors.New("sell order references unowned stock")

	// ErrInsufficientFunds is returned when a buy fill would overdraw cash.
	ErrInsufficientFunds = errors.New("insufficient funds for fill")

	// ErrConfigNotFound is returned when the configuration file is missing
	ErrConfigNotFound = errors.New("configuration not found")
)

// LookupError annotates a series lookup miss with the ticker and date involved.
type LookupError struct {
	Ticker string
	Date   time.Time
	Err    error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("%s [%s]: %v", e.Ticker, e.Date.Format("2006-01-02"), e.Err)
}

func (e *LookupError) Unwrap() error {
	return e.Err
}

// NewLookupError wraps a lookup sentinel with context.
func NewLookupError(ticker string, date time.Time, err error) *LookupError {
	return &LookupError{Ticker: ticker, Date: date, Err: err}
}
