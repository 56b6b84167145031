package market

import (
	"fmt"
	"time"
)

// Side is the direction of an order. Positions do not store a side; the
// sign of Quantity is the canonical direction everywhere downstream.
type Side string

const (
	Long  Side = "LONG"
	Short Side = "SHORT"
)

// ParseSide converts a wire string into a Side.
func ParseSide(s string) (Side, error) {
	switch Side(s) {
	case Long, Short:
		return Side(s), nil
	}
	return "", fmt.Errorf("%w: side %q", ErrInvalidOrder, s)
}

// Position is an open leveraged position. Its economic terms are frozen at
// open time and never mutated; closing removes it from the ledger.
type Position struct {
	ID       string    `json:"id"`
	Symbol   string    `json:"symbol"`
	Quantity float64   `json:"quantity"` // signed: positive long, negative short
	Entry    float64   `json:"entry"`
	Notional float64   `json:"notional"` // USD committed at open, always positive
	Leverage int       `json:"leverage"`
	Opened   time.Time `json:"opened"`
}
