package catalog

import (
	"context"
	"database/sql"
	"fmt"
)

// TotalScannedCardsKey is the system_stats row the scan counter lives in.
const TotalScannedCardsKey = "total_scanned_cards"

// migrate applies the schema idempotently. It is safe to call on every
// startup: every statement is a CREATE TABLE IF NOT EXISTS or an
// INSERT ... ON CONFLICT DO NOTHING.
func migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS cards (
			id             TEXT PRIMARY KEY,
			name           TEXT NOT NULL,
			subtitle       TEXT NOT NULL DEFAULT '',
			set_code       TEXT NOT NULL,
			card_number    INTEGER NOT NULL,
			rarity         TEXT NOT NULL DEFAULT 'Unknown',
			promo_grouping TEXT,
			image_url      TEXT NOT NULL DEFAULT '',
			phash          TEXT NOT NULL DEFAULT '',
			akaze_data     BLOB
		)`,
		`CREATE TABLE IF NOT EXISTS system_stats (
			key   TEXT PRIMARY KEY,
			value INTEGER NOT NULL
		)`,
		`INSERT INTO system_stats (key, value) VALUES ('` + TotalScannedCardsKey + `', 0)
			ON CONFLICT(key) DO NOTHING`,
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("catalog: migration failed: %w", err)
		}
	}
	return nil
}
