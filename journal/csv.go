package journal

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"
)

// CSVHeader is the column set of an exported activity log. OPEN rows fill
// side/notional/leverage and leave pnl empty; CLOSE rows do the opposite.
var CSVHeader = []string{"time", "action", "symbol", "side", "price", "notional", "leverage", "pnl"}

// WriteCSV exports records to w as delimited text in the given order.
func WriteCSV(w io.Writer, recs []Record) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(CSVHeader); err != nil {
		return err
	}

	for _, rec := range recs {
		row := []string{
			rec.Time.Format(time.RFC3339),
			string(rec.Action),
			rec.Symbol,
			"", "", "", "", "",
		}
		row[4] = f(rec.Price)
		switch rec.Action {
		case ActionOpen:
			row[3] = string(rec.Side)
			row[5] = f(rec.Notional)
			row[6] = strconv.Itoa(rec.Leverage)
		case ActionClose:
			row[7] = f(rec.PnL)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
