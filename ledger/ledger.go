// Package ledger holds a trading session's cash balance and open positions
// and applies open/close/reset mutations atomically.
package ledger

import (
	"fmt"
	"sync"
	"time"

	"github.com/comodofi/perps/internal/id"
	"github.com/comodofi/perps/journal"
	"github.com/comodofi/perps/market"
	"github.com/comodofi/perps/risk"
)

// Ledger is the per-session state machine: one USD balance and the set of
// open positions, keyed by position ID with insertion order preserved. One
// mutex serializes mutations within the session; isolation across sessions
// is the session manager's job.
type Ledger struct {
	mu        sync.Mutex
	balance   float64
	starting  float64
	positions map[string]*market.Position
	order     []string
	params    risk.Params
	journal   journal.Log
	now       func() time.Time
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock replaces the wall clock, keeping open/close timestamps
// deterministic in tests.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

func New(startingBalance float64, params risk.Params, j journal.Log, opts ...Option) *Ledger {
	l := &Ledger{
		balance:   startingBalance,
		starting:  startingBalance,
		positions: make(map[string]*market.Position),
		params:    params,
		journal:   j,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Balance returns the available USD cash.
func (l *Ledger) Balance() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balance
}

// Positions returns the open positions in insertion order.
func (l *Ledger) Positions() []market.Position {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]market.Position, 0, len(l.order))
	for _, pid := range l.order {
		out = append(out, *l.positions[pid])
	}
	return out
}

// Position returns a single open position by ID.
func (l *Ledger) Position(positionID string) (market.Position, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	p, ok := l.positions[positionID]
	if !ok {
		return market.Position{}, fmt.Errorf("%w: %s", market.ErrUnknownPosition, positionID)
	}
	return *p, nil
}

// Journal exposes the session's activity log.
func (l *Ledger) Journal() journal.Log { return l.journal }

// UnrealizedPnL marks a position to the current price. Pure; no mutation.
func UnrealizedPnL(p market.Position, mark float64) float64 {
	return (mark - p.Entry) * p.Quantity
}

// Open validates the order, prices it at mark, and applies it: the balance
// is debited by the notional and a new position inserted, all-or-nothing.
// Validation failures (ErrInvalidOrder, ErrInsufficientBalance) leave the
// ledger untouched.
func (l *Ledger) Open(o risk.Order, mark float64) (market.Position, risk.PricedOrder, error) {
	priced, err := risk.Size(o, mark, l.params)
	if err != nil {
		return market.Position{}, risk.PricedOrder{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if o.Notional > l.balance {
		return market.Position{}, risk.PricedOrder{}, fmt.Errorf(
			"%w: notional %.2f exceeds balance %.2f", market.ErrInsufficientBalance, o.Notional, l.balance)
	}

	pos := &market.Position{
		ID:       id.New(),
		Symbol:   o.Symbol,
		Quantity: priced.Quantity,
		Entry:    mark,
		Notional: o.Notional,
		Leverage: o.Leverage,
		Opened:   l.now(),
	}

	l.balance -= o.Notional
	l.positions[pos.ID] = pos
	l.order = append(l.order, pos.ID)

	if err := l.journal.Append(journal.Record{
		Time:     pos.Opened,
		Action:   journal.ActionOpen,
		Symbol:   o.Symbol,
		Side:     o.Side,
		Price:    mark,
		Notional: o.Notional,
		Leverage: o.Leverage,
	}); err != nil {
		return *pos, priced, fmt.Errorf("record open: %w", err)
	}

	return *pos, priced, nil
}

// Close realizes a position at the current mark: the balance is credited
// with notional plus PnL and the position removed. The balance may go
// negative on a sufficiently losing close; there is no forced-liquidation
// loop, so the permissive behavior stands.
func (l *Ledger) Close(positionID string, mark float64) (float64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	pos, ok := l.positions[positionID]
	if !ok {
		return 0, fmt.Errorf("%w: %s", market.ErrUnknownPosition, positionID)
	}

	pnl := UnrealizedPnL(*pos, mark)

	l.balance += pos.Notional + pnl
	delete(l.positions, positionID)
	for i, pid := range l.order {
		if pid == positionID {
			l.order = append(l.order[:i], l.order[i+1:]...)
			break
		}
	}

	if err := l.journal.Append(journal.Record{
		Time:   l.now(),
		Action: journal.ActionClose,
		Symbol: pos.Symbol,
		Price:  mark,
		PnL:    pnl,
	}); err != nil {
		return pnl, fmt.Errorf("record close: %w", err)
	}

	return pnl, nil
}

// Reset restores the starting balance, drops all open positions, and clears
// the activity log. Atomic: no partial reset is observable.
func (l *Ledger) Reset() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.journal.Reset(); err != nil {
		return fmt.Errorf("reset journal: %w", err)
	}

	l.balance = l.starting
	l.positions = make(map[string]*market.Position)
	l.order = nil
	return nil
}
