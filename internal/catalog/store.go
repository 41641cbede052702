package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// ErrStore wraps every database read/write failure the store surfaces.
// Request handlers degrade to a no-match result or skip the counter
// update on ErrStore rather than failing the HTTP response (§7).
var ErrStore = errors.New("catalog: store error")

// ErrNotFound is returned by lookups for an id that does not exist.
var ErrNotFound = errors.New("catalog: record not found")

// Store is durable persistence for CardRecords and SystemStats, backed by
// SQLite via the pure-Go modernc.org/sqlite driver.
type Store struct {
	db *sql.DB
}

// Open connects to databaseURL (a "sqlite:<path>" URI, matching §6's
// DATABASE_URL convention), creating the parent directory and the database
// file if they do not yet exist, and applies the schema migration.
func Open(ctx context.Context, databaseURL string) (*Store, error) {
	path := trimSQLiteScheme(databaseURL)

	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("catalog: create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("catalog: open database: %w", err)
	}
	db.SetMaxOpenConns(1) // modernc.org/sqlite serializes writers anyway; avoid SQLITE_BUSY churn.

	if err := migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func trimSQLiteScheme(url string) string {
	for _, prefix := range []string{"sqlite://", "sqlite:"} {
		if strings.HasPrefix(url, prefix) {
			return strings.TrimPrefix(url, prefix)
		}
	}
	return url
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Upsert inserts a new record or, on a conflicting id, overwrites the
// ingestion-authoritative fields: name, subtitle, phash, image_url,
// akaze_data, rarity, set_code, card_number. promo_grouping is
// write-on-create only and is never touched by the conflict path (§9b).
func (s *Store) Upsert(ctx context.Context, rec CardRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cards (id, name, subtitle, set_code, card_number, rarity, promo_grouping, image_url, phash, akaze_data)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name        = excluded.name,
			subtitle    = excluded.subtitle,
			phash       = excluded.phash,
			image_url   = excluded.image_url,
			akaze_data  = excluded.akaze_data,
			rarity      = excluded.rarity,
			set_code    = excluded.set_code,
			card_number = excluded.card_number
	`, rec.ID, rec.Name, rec.Subtitle, rec.SetCode, rec.CardNumber, rec.Rarity,
		rec.PromoGrouping, rec.ImageURL, rec.PHash, rec.AkazeData)
	if err != nil {
		return fmt.Errorf("%w: upsert %s: %s", ErrStore, rec.ID, err)
	}
	return nil
}

// UpsertMetadataOnly refreshes only the catalog-source-authoritative
// metadata fields for an already-complete record, leaving its
// fingerprints and image untouched. Used by ingestion step 4 when the
// reference image was already downloaded and processed.
func (s *Store) UpsertMetadataOnly(ctx context.Context, id, name, subtitle, rarity, setCode string, cardNumber uint32) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE cards SET name = ?, subtitle = ?, rarity = ?, set_code = ?, card_number = ?
		WHERE id = ?
	`, name, subtitle, rarity, setCode, cardNumber, id)
	if err != nil {
		return fmt.Errorf("%w: update metadata %s: %s", ErrStore, id, err)
	}
	return nil
}

// HasComplete reports whether id exists and carries both a non-empty
// phash and non-empty akaze_data.
func (s *Store) HasComplete(ctx context.Context, id string) (bool, error) {
	var phash string
	var akaze []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT phash, akaze_data FROM cards WHERE id = ?`, id,
	).Scan(&phash, &akaze)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: has_complete %s: %s", ErrStore, id, err)
	}
	return phash != "" && len(akaze) > 0, nil
}

// ScanAll returns every catalog record, for rebuilding the in-memory index.
func (s *Store) ScanAll(ctx context.Context) ([]CardRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, subtitle, set_code, card_number, rarity, promo_grouping, image_url, phash, akaze_data
		FROM cards
	`)
	if err != nil {
		return nil, fmt.Errorf("%w: scan_all: %s", ErrStore, err)
	}
	defer rows.Close()

	var out []CardRecord
	for rows.Next() {
		var rec CardRecord
		var promo sql.NullString
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.Subtitle, &rec.SetCode, &rec.CardNumber,
			&rec.Rarity, &promo, &rec.ImageURL, &rec.PHash, &rec.AkazeData); err != nil {
			return nil, fmt.Errorf("%w: scan_all row: %s", ErrStore, err)
		}
		if promo.Valid {
			v := promo.String
			rec.PromoGrouping = &v
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scan_all iteration: %s", ErrStore, err)
	}
	return out, nil
}

// IncrementTotalScans atomically increments the persistent scan counter by
// one via a single UPDATE statement.
func (s *Store) IncrementTotalScans(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE system_stats SET value = value + 1 WHERE key = ?`, TotalScannedCardsKey)
	if err != nil {
		return fmt.Errorf("%w: increment_total_scans: %s", ErrStore, err)
	}
	return nil
}

// ReadTotalScans returns the current scan counter value. Reads are
// stale-permissible: a concurrent increment may or may not be reflected.
func (s *Store) ReadTotalScans(ctx context.Context) (uint64, error) {
	var v int64
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM system_stats WHERE key = ?`, TotalScannedCardsKey,
	).Scan(&v)
	if err != nil {
		return 0, fmt.Errorf("%w: read_total_scans: %s", ErrStore, err)
	}
	return uint64(v), nil
}
