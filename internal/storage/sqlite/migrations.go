package sqlite

// Schema defines the SQLite database schema
const Schema = `
-- Estimation history table
CREATE TABLE IF NOT EXISTS estimations (
	id TEXT PRIMARY KEY,
	source TEXT NOT NULL,
	sex TEXT NOT NULL,
	weight_kg INTEGER NOT NULL,
	drink_count INTEGER NOT NULL,
	elapsed_hours INTEGER NOT NULL,
	bac REAL,
	display TEXT NOT NULL,
	outcome TEXT NOT NULL,
	level TEXT NOT NULL,
	reasons_json TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_estimations_source ON estimations(source);
CREATE INDEX IF NOT EXISTS idx_estimations_level ON estimations(level);
CREATE INDEX IF NOT EXISTS idx_estimations_sex ON estimations(sex);
CREATE INDEX IF NOT EXISTS idx_estimations_created_at ON estimations(created_at DESC);
`
