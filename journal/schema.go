package journal

const schema = `
CREATE TABLE IF NOT EXISTS activity (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	time DATETIME NOT NULL,
	action TEXT NOT NULL,
	symbol TEXT NOT NULL,
	side TEXT NOT NULL,
	price REAL NOT NULL,
	notional REAL NOT NULL,
	leverage INTEGER NOT NULL,
	pnl REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_activity_time ON activity(time);
`
