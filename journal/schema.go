package journal

const schema = `
CREATE TABLE IF NOT EXISTS fills (
	trade_id TEXT PRIMARY KEY,
	symbol TEXT NOT NULL,
	qty INTEGER NOT NULL,
	price REAL NOT NULL,
	cash_impact REAL NOT NULL,
	time DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS equity (
	time DATETIME NOT NULL,
	label TEXT NOT NULL,
	cash REAL NOT NULL,
	market_value REAL NOT NULL,
	equity REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_fills_symbol ON fills(symbol);
CREATE INDEX IF NOT EXISTS idx_equity_time ON equity(time);
`
