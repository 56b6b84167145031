package registry

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comodofi/perps/market"
)

const yamlRegistry = `indices:
  - symbol: CREATOR_ALPHA
    name: Creator Alpha
    desc: Composite engagement index
    source:
      type: csv
      path: ./data/creator_alpha.csv
      time_field: timestamp
      value_field: value
  - symbol: MEME_VELOCITY
    name: Meme Velocity
    source:
      type: url_csv
      url: https://example.com/meme.csv
      time_field: timestamp
      value_field: value
`

const jsonRegistry = `{
  "indices": [
    {
      "symbol": "CREATOR_ALPHA",
      "name": "Creator Alpha",
      "source": {
        "type": "csv",
        "path": "./data/creator_alpha.csv",
        "time_field": "timestamp",
        "value_field": "value"
      }
    }
  ]
}`

func writeFile(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))
	return path
}

func TestLoadFileYAML(t *testing.T) {
	t.Parallel()

	r, err := LoadFile(writeFile(t, "indices.yaml", yamlRegistry))
	require.NoError(t, err)

	list := r.List()
	require.Len(t, list, 2)
	assert.Equal(t, "CREATOR_ALPHA", list[0].Symbol)
	assert.Equal(t, "MEME_VELOCITY", list[1].Symbol)

	idx, err := r.Get("CREATOR_ALPHA")
	require.NoError(t, err)
	assert.Equal(t, market.SourceCSV, idx.Source.Type)
}

func TestLoadFileJSON(t *testing.T) {
	t.Parallel()

	r, err := LoadFile(writeFile(t, "indices.json", jsonRegistry))
	require.NoError(t, err)
	assert.Len(t, r.List(), 1)
}

func TestLoadFileRejectsBadRegistry(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		data string
	}{
		{"empty registry", "indices: []\n"},
		{"missing name", "indices:\n  - symbol: X\n    source:\n      type: csv\n      path: x.csv\n      time_field: t\n      value_field: v\n"},
		{"bad source type", "indices:\n  - symbol: X\n    name: X\n    source:\n      type: ftp\n      time_field: t\n      value_field: v\n"},
		{"duplicate symbol", "indices:\n  - symbol: X\n    name: X\n    source:\n      type: csv\n      path: x.csv\n      time_field: t\n      value_field: v\n  - symbol: X\n    name: X2\n    source:\n      type: csv\n      path: x.csv\n      time_field: t\n      value_field: v\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadFile(writeFile(t, "indices.yaml", tc.data))
			assert.ErrorIs(t, err, market.ErrBadConfig)
		})
	}
}

func TestGetUnknownSymbol(t *testing.T) {
	t.Parallel()

	r := New()
	_, err := r.Get("NOPE")
	assert.ErrorIs(t, err, market.ErrNotFound)
}

type stubValidator struct {
	series market.Series
	err    error
}

func (v stubValidator) Fetch(ctx context.Context, src market.Source) (market.Series, error) {
	return v.series, v.err
}

func validSeries() market.Series {
	return market.Series{{Time: time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC), Value: 100}}
}

func candidate(symbol string) market.Index {
	return market.Index{
		Symbol: symbol,
		Name:   symbol,
		Source: market.Source{
			Type:       market.SourceCSV,
			Path:       "x.csv",
			TimeField:  "timestamp",
			ValueField: "value",
		},
	}
}

func TestRegisterAdmitsValidCandidate(t *testing.T) {
	t.Parallel()

	r := New()
	err := r.Register(context.Background(), candidate("NEW_IDX"), stubValidator{series: validSeries()})
	require.NoError(t, err)

	idx, err := r.Get("NEW_IDX")
	require.NoError(t, err)
	assert.Equal(t, "NEW_IDX", idx.Symbol)
}

func TestRegisterRejectsDuplicate(t *testing.T) {
	t.Parallel()

	r := New()
	v := stubValidator{series: validSeries()}
	require.NoError(t, r.Register(context.Background(), candidate("DUP"), v))

	err := r.Register(context.Background(), candidate("DUP"), v)
	assert.ErrorIs(t, err, market.ErrBadConfig)
}

func TestRegisterRejectsUnfetchableSource(t *testing.T) {
	t.Parallel()

	r := New()
	v := stubValidator{err: errors.New("connection refused")}

	err := r.Register(context.Background(), candidate("BROKEN"), v)
	assert.Error(t, err)

	_, err = r.Get("BROKEN")
	assert.ErrorIs(t, err, market.ErrNotFound, "rejected candidate leaves registry unchanged")
}

func TestRegisterRejectsMalformedIndex(t *testing.T) {
	t.Parallel()

	r := New()
	err := r.Register(context.Background(), market.Index{Symbol: "X"}, stubValidator{series: validSeries()})
	assert.ErrorIs(t, err, market.ErrBadConfig)
}
