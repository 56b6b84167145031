package market

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// PricePoint is a single (timestamp, value) sample of an index.
type PricePoint struct {
	Time  time.Time `json:"time"`
	Value float64   `json:"value"`
}

// Series is a time-ordered sequence of price samples. A well-formed Series
// is non-empty, non-decreasing in time, and contains only finite values.
// Series data is read-only once loaded; consumers must not mutate it.
type Series []PricePoint

// Values returns the value column of the series.
func (s Series) Values() []float64 {
	vals := make([]float64, len(s))
	for i, p := range s {
		vals[i] = p.Value
	}
	return vals
}

// Last returns the most recent sample.
func (s Series) Last() (PricePoint, error) {
	if len(s) == 0 {
		return PricePoint{}, fmt.Errorf("last: empty series")
	}
	return s[len(s)-1], nil
}

// Validate checks the Series contract: at least one point, timestamps
// non-decreasing, all values finite.
func (s Series) Validate() error {
	if len(s) == 0 {
		return fmt.Errorf("%w: empty series", ErrBadSource)
	}
	for i, p := range s {
		if math.IsNaN(p.Value) || math.IsInf(p.Value, 0) {
			return fmt.Errorf("%w: non-finite value at index %d", ErrBadSource, i)
		}
		if p.Time.IsZero() {
			return fmt.Errorf("%w: zero timestamp at index %d", ErrBadSource, i)
		}
		if i > 0 && p.Time.Before(s[i-1].Time) {
			return fmt.Errorf("%w: timestamps out of order at index %d", ErrBadSource, i)
		}
	}
	return nil
}

// Normalize sorts the series by timestamp ascending (stable, so source order
// breaks ties) and drops duplicate timestamps, keeping the last sample seen
// for each instant.
func Normalize(s Series) Series {
	if len(s) == 0 {
		return s
	}
	out := make(Series, len(s))
	copy(out, s)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })

	dedup := out[:1]
	for _, p := range out[1:] {
		if p.Time.Equal(dedup[len(dedup)-1].Time) {
			dedup[len(dedup)-1] = p
			continue
		}
		dedup = append(dedup, p)
	}
	return dedup
}
