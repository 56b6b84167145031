// Package journal records executed ledger actions as an append-only log.
package journal

import (
	"time"

	"github.com/comodofi/perps/market"
)

// Action is the kind of ledger mutation a record describes.
type Action string

const (
	ActionOpen  Action = "OPEN"
	ActionClose Action = "CLOSE"
)

// Record is one executed action. Side, Notional, and Leverage are set for
// OPEN records; PnL is set for CLOSE records. Price carries the entry price
// on OPEN and the close price on CLOSE.
type Record struct {
	Time     time.Time   `json:"time"`
	Action   Action      `json:"action"`
	Symbol   string      `json:"symbol"`
	Side     market.Side `json:"side,omitempty"`
	Price    float64     `json:"price"`
	Notional float64     `json:"notional,omitempty"`
	Leverage int         `json:"leverage,omitempty"`
	PnL      float64     `json:"pnl,omitempty"`
}

// Log is an append-only activity log. All returns records in insertion
// order; any presentation-side ordering (newest first, say) is the caller's
// concern. Reset clears the log for a session restart.
type Log interface {
	Append(Record) error
	All() ([]Record, error)
	Reset() error
	Close() error
}
