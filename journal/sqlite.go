package journal

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/comodofi/perps/market"
)

// SQLite is a durable Log for sessions that should survive a restart.
type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) Append(rec Record) error {
	_, err := j.db.Exec(`
		INSERT INTO activity
		(time, action, symbol, side, price, notional, leverage, pnl)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Time, string(rec.Action), rec.Symbol, string(rec.Side),
		rec.Price, rec.Notional, rec.Leverage, rec.PnL,
	)
	return err
}

func (j *SQLite) All() ([]Record, error) {
	rows, err := j.db.Query(`
		SELECT time, action, symbol, side, price, notional, leverage, pnl
		FROM activity
		ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []Record
	for rows.Next() {
		var rec Record
		var action, side string
		var ts time.Time
		if err := rows.Scan(&ts, &action, &rec.Symbol, &side,
			&rec.Price, &rec.Notional, &rec.Leverage, &rec.PnL); err != nil {
			return nil, err
		}
		rec.Time = ts
		rec.Action = Action(action)
		rec.Side = market.Side(side)
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

func (j *SQLite) Reset() error {
	_, err := j.db.Exec(`DELETE FROM activity`)
	return err
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
