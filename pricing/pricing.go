// Package pricing derives reference prices and funding-rate estimates from
// an index price series.
package pricing

import (
	"fmt"

	"github.com/comodofi/perps/market"
)

// MovingAverage computes a trailing mean over the series values. For each
// point i the result is the mean of the last `window` values ending at i;
// points earlier than a full window use all values available so far
// (minimum period 1). The output is aligned index-for-index with the input.
func MovingAverage(values []float64, window int) ([]float64, error) {
	if window <= 0 {
		return nil, fmt.Errorf("window must be positive, got %d", window)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("moving average of empty series")
	}

	out := make([]float64, len(values))
	sum := 0.0
	for i, v := range values {
		sum += v
		n := window
		if i+1 < window {
			n = i + 1
		} else if i >= window {
			sum -= values[i-window]
		}
		out[i] = sum / float64(n)
	}
	return out, nil
}

// FundingRate estimates a per-sample funding rate as k * (value - MA) / MA,
// where MA is the trailing moving average over `lookback` samples. Points
// where the MA is exactly zero contribute a zero premium rather than a
// division by zero. The output is aligned with the input.
func FundingRate(values []float64, lookback int, k float64) ([]float64, error) {
	ma, err := MovingAverage(values, lookback)
	if err != nil {
		return nil, err
	}

	out := make([]float64, len(values))
	for i, v := range values {
		if ma[i] == 0 {
			continue
		}
		out[i] = k * (v - ma[i]) / ma[i]
	}
	return out, nil
}

// Mark returns the instantaneous reference price: the value of the last
// sample. Order sizing, PnL, and liquidation estimates all use this single
// price; the demo does not distinguish index, mark, and execution prices.
func Mark(s market.Series) (float64, error) {
	last, err := s.Last()
	if err != nil {
		return 0, err
	}
	return last.Value, nil
}

// FundingEstimate returns the displayed funding figure: the funding rate at
// the last sample, scaled by scaleHours and reported as a percentage.
//
// The scaling treats each sample as one hour. That is a display convention
// inherited from the demo's sampling cadence, not derived from the data;
// sources with a different cadence will over- or under-state the figure.
func FundingEstimate(s market.Series, lookback int, k float64, scaleHours float64) (float64, error) {
	rates, err := FundingRate(s.Values(), lookback, k)
	if err != nil {
		return 0, err
	}
	return rates[len(rates)-1] * scaleHours * 100, nil
}
