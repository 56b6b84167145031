// Package app exposes the simulator's user-facing operations independent of
// any transport. The HTTP server and the CLI both drive this facade.
package app

import (
	"context"
	"fmt"

	"github.com/comodofi/perps/journal"
	"github.com/comodofi/perps/ledger"
	"github.com/comodofi/perps/market"
	"github.com/comodofi/perps/pricing"
	"github.com/comodofi/perps/registry"
	"github.com/comodofi/perps/risk"
	"github.com/comodofi/perps/series"
	"github.com/comodofi/perps/session"
)

// FundingParams configure the funding estimate shown for each index.
type FundingParams struct {
	Lookback   int
	K          float64
	ScaleHours float64
}

// App wires the registry, series cache, and session store behind the
// operations the surrounding application calls.
type App struct {
	Registry *registry.Registry
	Cache    *series.Cache
	Sessions *session.Manager
	Funding  FundingParams
}

func New(reg *registry.Registry, cache *series.Cache, sessions *session.Manager, funding FundingParams) *App {
	return &App{
		Registry: reg,
		Cache:    cache,
		Sessions: sessions,
		Funding:  funding,
	}
}

// ListIndices returns the registered indices sorted by symbol.
func (a *App) ListIndices() []market.Index {
	return a.Registry.List()
}

// RegisterIndex validates a candidate index against the series contract and
// admits it into the registry.
func (a *App) RegisterIndex(ctx context.Context, idx market.Index) error {
	return a.Registry.Register(ctx, idx, a.Cache)
}

// Series returns the (possibly cached) price series for a symbol.
func (a *App) Series(ctx context.Context, symbol string) (market.Series, error) {
	idx, err := a.Registry.Get(symbol)
	if err != nil {
		return nil, err
	}
	return a.Cache.Get(ctx, idx)
}

// Mark returns the current reference price for a symbol.
func (a *App) Mark(ctx context.Context, symbol string) (float64, error) {
	s, err := a.Series(ctx, symbol)
	if err != nil {
		return 0, err
	}
	return pricing.Mark(s)
}

// FundingEstimate returns the displayed funding percentage for a symbol.
func (a *App) FundingEstimate(ctx context.Context, symbol string) (float64, error) {
	s, err := a.Series(ctx, symbol)
	if err != nil {
		return 0, err
	}
	return pricing.FundingEstimate(s, a.Funding.Lookback, a.Funding.K, a.Funding.ScaleHours)
}

// PlaceOrder opens a position in the given session at the symbol's current
// mark price.
func (a *App) PlaceOrder(ctx context.Context, sessionID string, o risk.Order) (market.Position, risk.PricedOrder, error) {
	mark, err := a.Mark(ctx, o.Symbol)
	if err != nil {
		return market.Position{}, risk.PricedOrder{}, fmt.Errorf("%w: %v", market.ErrInvalidOrder, err)
	}

	sess := a.Sessions.GetOrCreate(sessionID)
	return sess.Ledger.Open(o, mark)
}

// ClosePosition realizes a position at its symbol's current mark price and
// returns the realized PnL.
func (a *App) ClosePosition(ctx context.Context, sessionID, positionID string) (float64, error) {
	sess := a.Sessions.Get(sessionID)
	if sess == nil {
		return 0, fmt.Errorf("%w: %s", market.ErrUnknownPosition, positionID)
	}

	pos, err := sess.Ledger.Position(positionID)
	if err != nil {
		return 0, err
	}

	mark, err := a.Mark(ctx, pos.Symbol)
	if err != nil {
		return 0, err
	}

	return sess.Ledger.Close(positionID, mark)
}

// ResetSession restores a session to its starting state.
func (a *App) ResetSession(sessionID string) error {
	sess := a.Sessions.Get(sessionID)
	if sess == nil {
		return nil // nothing to reset
	}
	return sess.Ledger.Reset()
}

// ActivityLog returns a session's executed actions in insertion order.
func (a *App) ActivityLog(sessionID string) ([]journal.Record, error) {
	sess := a.Sessions.Get(sessionID)
	if sess == nil {
		return nil, nil
	}
	return sess.Ledger.Journal().All()
}

// Positions returns a session's open positions with unrealized PnL marked
// to each symbol's current price.
func (a *App) Positions(ctx context.Context, sessionID string) ([]PositionView, error) {
	sess := a.Sessions.Get(sessionID)
	if sess == nil {
		return nil, nil
	}

	positions := sess.Ledger.Positions()
	out := make([]PositionView, 0, len(positions))
	for _, p := range positions {
		view := PositionView{Position: p}
		// A removed index leaves the position's frozen terms intact but
		// unpriceable against a live mark.
		if mark, err := a.Mark(ctx, p.Symbol); err == nil {
			view.Mark = mark
			view.UnrealizedPnL = ledger.UnrealizedPnL(p, mark)
			view.Priced = true
		}
		out = append(out, view)
	}
	return out, nil
}

// Balance returns a session's available cash.
func (a *App) Balance(sessionID string) float64 {
	sess := a.Sessions.Get(sessionID)
	if sess == nil {
		return 0
	}
	return sess.Ledger.Balance()
}

// PositionView is an open position marked to the current price.
type PositionView struct {
	market.Position
	Mark          float64 `json:"mark"`
	UnrealizedPnL float64 `json:"unrealized_pnl"`
	Priced        bool    `json:"priced"`
}
