package journal

import (
	"bytes"
	"encoding/csv"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comodofi/perps/market"
)

func sampleRecords() []Record {
	open := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
	return []Record{
		{
			Time:     open,
			Action:   ActionOpen,
			Symbol:   "CREATOR_ALPHA",
			Side:     market.Long,
			Price:    100,
			Notional: 500,
			Leverage: 5,
		},
		{
			Time:   open.Add(time.Hour),
			Action: ActionClose,
			Symbol: "CREATOR_ALPHA",
			Price:  110,
			PnL:    250,
		},
	}
}

func TestMemoryAppendAndAll(t *testing.T) {
	t.Parallel()

	m := NewMemory()
	for _, rec := range sampleRecords() {
		require.NoError(t, m.Append(rec))
	}

	recs, err := m.All()
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, ActionOpen, recs[0].Action)
	assert.Equal(t, ActionClose, recs[1].Action)

	// All returns a copy; mutating it must not affect the log.
	recs[0].Symbol = "MUTATED"
	again, err := m.All()
	require.NoError(t, err)
	assert.Equal(t, "CREATOR_ALPHA", again[0].Symbol)
}

func TestMemoryReset(t *testing.T) {
	t.Parallel()

	m := NewMemory()
	require.NoError(t, m.Append(sampleRecords()[0]))
	require.NoError(t, m.Reset())

	recs, err := m.All()
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestSQLiteRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "activity.db")
	j, err := NewSQLite(path)
	require.NoError(t, err)
	defer j.Close()

	for _, rec := range sampleRecords() {
		require.NoError(t, j.Append(rec))
	}

	recs, err := j.All()
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Equal(t, ActionOpen, recs[0].Action)
	assert.Equal(t, market.Long, recs[0].Side)
	assert.Equal(t, 500.0, recs[0].Notional)
	assert.Equal(t, 5, recs[0].Leverage)
	assert.Equal(t, ActionClose, recs[1].Action)
	assert.Equal(t, 250.0, recs[1].PnL)

	require.NoError(t, j.Reset())
	recs, err = j.All()
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestWriteCSV(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleRecords()))

	r := csv.NewReader(strings.NewReader(buf.String()))
	rows, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, CSVHeader, rows[0])

	openRow := rows[1]
	assert.Equal(t, "OPEN", openRow[1])
	assert.Equal(t, "CREATOR_ALPHA", openRow[2])
	assert.Equal(t, "LONG", openRow[3])
	assert.Equal(t, "500.000000", openRow[5])
	assert.Equal(t, "5", openRow[6])
	assert.Empty(t, openRow[7], "OPEN rows leave pnl empty")

	closeRow := rows[2]
	assert.Equal(t, "CLOSE", closeRow[1])
	assert.Empty(t, closeRow[3], "CLOSE rows leave side empty")
	assert.Equal(t, "110.000000", closeRow[4])
	assert.Equal(t, "250.000000", closeRow[7])
}

func TestWriteCSVEmptyLogStillHasHeader(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))

	r := csv.NewReader(strings.NewReader(buf.String()))
	rows, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, CSVHeader, rows[0])
}
