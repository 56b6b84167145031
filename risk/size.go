// Package risk converts requested orders into position terms: signed
// quantity, fee, and an estimated liquidation price.
package risk

import (
	"fmt"

	"github.com/comodofi/perps/market"
)

// Order is a user's requested trade before sizing.
type Order struct {
	Symbol   string      `json:"symbol"`
	Side     market.Side `json:"side"`
	Notional float64     `json:"notional"` // USD committed before leverage
	Leverage int         `json:"leverage"`
}

// PricedOrder is an order converted into position terms at a mark price.
// EstLiquidation is nil when no liquidation price is defined (zero quantity).
type PricedOrder struct {
	Quantity       float64  `json:"quantity"` // signed: negative for shorts
	Fee            float64  `json:"fee"`
	EstLiquidation *float64 `json:"est_liquidation,omitempty"`
}

// Params are the sizing parameters shared by every order in a session.
type Params struct {
	FeeBps                 float64 // taker fee in basis points of notional
	MaintenanceMarginRatio float64 // fraction of notional kept as maintenance margin
	MinNotional            float64 // smallest accepted order, USD
	MaxLeverage            int
}

// Size validates an order against the params and prices it at mark.
//
// quantity = notional * leverage / mark, negated for shorts. The estimated
// liquidation price solves for the mark at which position equity (collateral
// minus fee plus unrealized PnL) meets the maintenance margin. This is an
// isolated-margin, single-position approximation: no cross-margining, no
// partial liquidation, no margin calls over time.
func Size(o Order, mark float64, p Params) (PricedOrder, error) {
	if o.Notional <= 0 {
		return PricedOrder{}, fmt.Errorf("%w: notional must be positive, got %v", market.ErrInvalidOrder, o.Notional)
	}
	if p.MinNotional > 0 && o.Notional < p.MinNotional {
		return PricedOrder{}, fmt.Errorf("%w: notional %v below minimum %v", market.ErrInvalidOrder, o.Notional, p.MinNotional)
	}
	if o.Leverage < 1 {
		return PricedOrder{}, fmt.Errorf("%w: leverage must be at least 1, got %d", market.ErrInvalidOrder, o.Leverage)
	}
	if p.MaxLeverage >= 1 && o.Leverage > p.MaxLeverage {
		return PricedOrder{}, fmt.Errorf("%w: leverage %d exceeds maximum %d", market.ErrInvalidOrder, o.Leverage, p.MaxLeverage)
	}
	if o.Side != market.Long && o.Side != market.Short {
		return PricedOrder{}, fmt.Errorf("%w: side %q", market.ErrInvalidOrder, o.Side)
	}
	if mark <= 0 {
		return PricedOrder{}, fmt.Errorf("%w: mark price unavailable", market.ErrInvalidOrder)
	}

	qty := o.Notional * float64(o.Leverage) / mark
	if o.Side == market.Short {
		qty = -qty
	}

	priced := PricedOrder{
		Quantity: qty,
		Fee:      o.Notional * p.FeeBps / 10000,
	}

	// Validation above rules out a zero quantity, but the formula divides by
	// it, so guard anyway and report "not available".
	if qty != 0 {
		maint := p.MaintenanceMarginRatio * o.Notional
		liq := mark + (maint-(o.Notional-priced.Fee))/qty
		priced.EstLiquidation = &liq
	}

	return priced, nil
}
