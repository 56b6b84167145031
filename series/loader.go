// Package series fetches and normalizes index price series from CSV
// sources, local or remote.
package series

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ulikunitz/xz"

	"github.com/comodofi/perps/market"
)

// timeLayouts are tried in order when parsing the timestamp column.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Loader resolves a source descriptor into a normalized Series.
type Loader struct {
	client *http.Client
}

func NewLoader(timeout time.Duration) *Loader {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Loader{
		client: &http.Client{Timeout: timeout},
	}
}

// Fetch loads, parses, and normalizes the series a source describes. Any
// fetch or parse failure wraps market.ErrBadSource.
func (l *Loader) Fetch(ctx context.Context, src market.Source) (market.Series, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}

	switch src.Type {
	case market.SourceCSV:
		return l.fetchFile(src)
	case market.SourceURLCSV:
		return l.fetchURL(ctx, src)
	}
	return nil, fmt.Errorf("%w: unsupported source type %q", market.ErrBadSource, src.Type)
}

func (l *Loader) fetchFile(src market.Source) (market.Series, error) {
	f, err := os.Open(src.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", market.ErrBadSource, src.Path, err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(src.Path, ".xz") {
		xr, err := xz.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("%w: xz %s: %v", market.ErrBadSource, src.Path, err)
		}
		r = xr
	}

	return parseCSV(r, src.TimeField, src.ValueField)
}

func (l *Loader) fetchURL(ctx context.Context, src market.Source) (market.Series, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", market.ErrBadSource, err)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch %s: %v", market.ErrBadSource, src.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: fetch %s: status %s", market.ErrBadSource, src.URL, resp.Status)
	}

	return parseCSV(resp.Body, src.TimeField, src.ValueField)
}

// parseCSV reads rows with the named timestamp and value columns
// (case-insensitive header match), sorts ascending by time, and dedupes
// repeated timestamps. Missing columns or unparseable rows fail the load.
func parseCSV(r io.Reader, timeField, valueField string) (market.Series, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: read header: %v", market.ErrBadSource, err)
	}

	timeIdx, valueIdx := -1, -1
	for i, col := range header {
		name := strings.ToLower(strings.TrimSpace(col))
		switch name {
		case strings.ToLower(timeField):
			timeIdx = i
		case strings.ToLower(valueField):
			valueIdx = i
		}
	}
	if timeIdx < 0 {
		return nil, fmt.Errorf("%w: missing column %q", market.ErrBadSource, timeField)
	}
	if valueIdx < 0 {
		return nil, fmt.Errorf("%w: missing column %q", market.ErrBadSource, valueField)
	}

	var s market.Series
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", market.ErrBadSource, line, err)
		}

		ts, err := parseTime(row[timeIdx])
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", market.ErrBadSource, line, err)
		}
		val, err := strconv.ParseFloat(strings.TrimSpace(row[valueIdx]), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: bad value %q", market.ErrBadSource, line, row[valueIdx])
		}

		s = append(s, market.PricePoint{Time: ts, Value: val})
	}

	s = market.Normalize(s)
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func parseTime(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range timeLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, nil
		}
	}
	// Unix seconds as a last resort (Sheets exports sometimes use them).
	if sec, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return time.Unix(sec, 0).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", raw)
}
