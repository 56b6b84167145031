package risk

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comodofi/perps/market"
)

var testParams = Params{
	FeeBps:                 5,
	MaintenanceMarginRatio: 0.005,
	MinNotional:            10,
	MaxLeverage:            20,
}

func TestSizeQuantitySign(t *testing.T) {
	t.Parallel()

	long, err := Size(Order{Symbol: "X", Side: market.Long, Notional: 500, Leverage: 5}, 100, testParams)
	require.NoError(t, err)
	assert.Greater(t, long.Quantity, 0.0)

	short, err := Size(Order{Symbol: "X", Side: market.Short, Notional: 500, Leverage: 5}, 100, testParams)
	require.NoError(t, err)
	assert.Less(t, short.Quantity, 0.0)

	want := 500.0 * 5 / 100
	assert.InDelta(t, want, math.Abs(long.Quantity), 1e-12)
	assert.InDelta(t, want, math.Abs(short.Quantity), 1e-12)
}

func TestSizeFeeAndLiquidation(t *testing.T) {
	t.Parallel()

	priced, err := Size(Order{Symbol: "X", Side: market.Long, Notional: 500, Leverage: 5}, 100, testParams)
	require.NoError(t, err)

	assert.InDelta(t, 25.0, priced.Quantity, 1e-12)
	assert.InDelta(t, 0.25, priced.Fee, 1e-12)

	// liq = mark + (maintenance - (notional - fee)) / quantity
	require.NotNil(t, priced.EstLiquidation)
	wantLiq := 100 + (0.005*500-(500-0.25))/25.0
	assert.InDelta(t, wantLiq, *priced.EstLiquidation, 1e-9)

	// A long's liquidation price sits below the mark.
	assert.Less(t, *priced.EstLiquidation, 100.0)

	short, err := Size(Order{Symbol: "X", Side: market.Short, Notional: 500, Leverage: 5}, 100, testParams)
	require.NoError(t, err)
	require.NotNil(t, short.EstLiquidation)
	assert.Greater(t, *short.EstLiquidation, 100.0)
}

func TestSizeRejectsInvalidOrders(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		order Order
		mark  float64
	}{
		{"zero notional", Order{Side: market.Long, Notional: 0, Leverage: 1}, 100},
		{"negative notional", Order{Side: market.Long, Notional: -50, Leverage: 1}, 100},
		{"below minimum notional", Order{Side: market.Long, Notional: 5, Leverage: 1}, 100},
		{"zero leverage", Order{Side: market.Long, Notional: 100, Leverage: 0}, 100},
		{"leverage above max", Order{Side: market.Long, Notional: 100, Leverage: 21}, 100},
		{"bad side", Order{Side: "SIDEWAYS", Notional: 100, Leverage: 1}, 100},
		{"zero mark", Order{Side: market.Long, Notional: 100, Leverage: 1}, 0},
		{"negative mark", Order{Side: market.Long, Notional: 100, Leverage: 1}, -1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Size(tc.order, tc.mark, testParams)
			assert.ErrorIs(t, err, market.ErrInvalidOrder)
		})
	}
}

func TestSizeLeverageOne(t *testing.T) {
	t.Parallel()

	priced, err := Size(Order{Symbol: "X", Side: market.Long, Notional: 100, Leverage: 1}, 50, testParams)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, priced.Quantity, 1e-12)
}
