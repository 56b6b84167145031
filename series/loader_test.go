package series

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ulikunitz/xz"

	"github.com/comodofi/perps/market"
)

const sampleCSV = `timestamp,value
2025-08-01T02:00:00Z,99.10
2025-08-01T00:00:00Z,98.20
2025-08-01T01:00:00Z,98.75
2025-08-01T01:00:00Z,98.80
`

func TestParseCSVSortsAndDedupes(t *testing.T) {
	t.Parallel()

	s, err := parseCSV(strings.NewReader(sampleCSV), "timestamp", "value")
	require.NoError(t, err)
	require.Len(t, s, 3)

	assert.Equal(t, 98.20, s[0].Value)
	// Duplicate timestamp: the later row wins.
	assert.Equal(t, 98.80, s[1].Value)
	assert.Equal(t, 99.10, s[2].Value)
	assert.True(t, s[0].Time.Before(s[1].Time))
	assert.True(t, s[1].Time.Before(s[2].Time))
}

func TestParseCSVCaseInsensitiveHeaders(t *testing.T) {
	t.Parallel()

	csvData := "Timestamp,VALUE\n2025-08-01T00:00:00Z,42.5\n"
	s, err := parseCSV(strings.NewReader(csvData), "timestamp", "value")
	require.NoError(t, err)
	require.Len(t, s, 1)
	assert.Equal(t, 42.5, s[0].Value)
}

func TestParseCSVErrors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		data string
	}{
		{"missing value column", "timestamp,price\n2025-08-01T00:00:00Z,1\n"},
		{"missing time column", "date,value\n2025-08-01T00:00:00Z,1\n"},
		{"bad timestamp", "timestamp,value\nnot-a-date,1\n"},
		{"bad value", "timestamp,value\n2025-08-01T00:00:00Z,abc\n"},
		{"empty body", "timestamp,value\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := parseCSV(strings.NewReader(tc.data), "timestamp", "value")
			assert.ErrorIs(t, err, market.ErrBadSource)
		})
	}
}

func TestParseTimeLayouts(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{
		"2025-08-01T00:00:00Z",
		"2025-08-01T00:00:00",
		"2025-08-01 00:00:00",
		"2025-08-01",
		"1754006400", // unix seconds
	} {
		_, err := parseTime(raw)
		assert.NoErrorf(t, err, "layout %q", raw)
	}

	_, err := parseTime("yesterday")
	assert.Error(t, err)
}

func TestFetchFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "series.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0644))

	l := NewLoader(0)
	s, err := l.Fetch(context.Background(), market.Source{
		Type:       market.SourceCSV,
		Path:       path,
		TimeField:  "timestamp",
		ValueField: "value",
	})
	require.NoError(t, err)
	assert.Len(t, s, 3)
}

func TestFetchFileXZ(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "series.csv.xz")
	f, err := os.Create(path)
	require.NoError(t, err)
	w, err := xz.NewWriter(f)
	require.NoError(t, err)
	_, err = w.Write([]byte(sampleCSV))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, f.Close())

	l := NewLoader(0)
	s, err := l.Fetch(context.Background(), market.Source{
		Type:       market.SourceCSV,
		Path:       path,
		TimeField:  "timestamp",
		ValueField: "value",
	})
	require.NoError(t, err)
	assert.Len(t, s, 3)
}

func TestFetchURL(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleCSV))
	}))
	defer srv.Close()

	l := NewLoader(0)
	s, err := l.Fetch(context.Background(), market.Source{
		Type:       market.SourceURLCSV,
		URL:        srv.URL,
		TimeField:  "timestamp",
		ValueField: "value",
	})
	require.NoError(t, err)
	assert.Len(t, s, 3)
}

func TestFetchURLBadStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	l := NewLoader(0)
	_, err := l.Fetch(context.Background(), market.Source{
		Type:       market.SourceURLCSV,
		URL:        srv.URL,
		TimeField:  "timestamp",
		ValueField: "value",
	})
	assert.ErrorIs(t, err, market.ErrBadSource)
}

func TestFetchRejectsBadDescriptor(t *testing.T) {
	t.Parallel()

	l := NewLoader(0)
	_, err := l.Fetch(context.Background(), market.Source{Type: "ftp"})
	assert.ErrorIs(t, err, market.ErrBadConfig)
}
