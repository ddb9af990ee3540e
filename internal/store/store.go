// Package store persists extraction results in a local SQLite database so
// repeated batch runs can be reviewed without re-reading the source
// documents.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/terplab/coa-extractor/internal/coa"
)

const schema = `
CREATE TABLE IF NOT EXISTS records (
	id               TEXT PRIMARY KEY,
	source           TEXT UNIQUE NOT NULL,
	strain_name      TEXT NOT NULL DEFAULT '',
	product_type     TEXT NOT NULL DEFAULT '',
	dominant_terpene TEXT NOT NULL DEFAULT '',
	other_terpenes   TEXT NOT NULL DEFAULT '[]',
	thc_percent      REAL,
	thc_source       TEXT NOT NULL DEFAULT '',
	extracted_at     TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_records_strain ON records(strain_name);
`

// Record is one stored extraction outcome keyed by its source locator.
type Record struct {
	ID              string   `json:"id"`
	Source          string   `json:"source"`
	StrainName      string   `json:"strain_name"`
	ProductType     string   `json:"product_type"`
	DominantTerpene string   `json:"dominant_terpene"`
	OtherTerpenes   []string `json:"other_terpenes"`
	ThcPercent      *float64 `json:"thc_percent"`
	ThcSource       string   `json:"thc_source"`
	ExtractedAt     string   `json:"extracted_at"`
}

// Store wraps the SQLite database holding extraction records.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and applies the
// schema.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply pragma: %w", err)
		}
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save upserts the extraction result for a source locator and returns the
// stored record. Re-extracting the same source replaces the previous row.
func (s *Store) Save(ctx context.Context, source string, result *coa.ExtractionResult) (*Record, error) {
	if source == "" {
		return nil, fmt.Errorf("source cannot be empty")
	}
	if result == nil {
		return nil, fmt.Errorf("result cannot be nil")
	}

	others := result.OtherTerpenes
	if others == nil {
		others = []string{}
	}
	othersJSON, err := json.Marshal(others)
	if err != nil {
		return nil, fmt.Errorf("failed to encode terpene list: %w", err)
	}

	rec := &Record{
		ID:              uuid.NewString(),
		Source:          source,
		StrainName:      result.StrainName,
		ProductType:     result.Type,
		DominantTerpene: result.DominantTerpene,
		OtherTerpenes:   others,
		ThcPercent:      result.Thc.TotalPercent,
		ThcSource:       result.Thc.Source,
		ExtractedAt:     time.Now().UTC().Format(time.RFC3339),
	}

	var thc sql.NullFloat64
	if rec.ThcPercent != nil {
		thc = sql.NullFloat64{Float64: *rec.ThcPercent, Valid: true}
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO records (id, source, strain_name, product_type, dominant_terpene, other_terpenes, thc_percent, thc_source, extracted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(source) DO UPDATE SET
			strain_name      = excluded.strain_name,
			product_type     = excluded.product_type,
			dominant_terpene = excluded.dominant_terpene,
			other_terpenes   = excluded.other_terpenes,
			thc_percent      = excluded.thc_percent,
			thc_source       = excluded.thc_source,
			extracted_at     = excluded.extracted_at`,
		rec.ID, rec.Source, rec.StrainName, rec.ProductType, rec.DominantTerpene,
		string(othersJSON), thc, rec.ThcSource, rec.ExtractedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to save record: %w", err)
	}

	// The upsert keeps the original row id on conflict.
	stored, err := s.FindBySource(ctx, source)
	if err != nil {
		return nil, err
	}
	return stored, nil
}

// FindBySource returns the record for a source locator, or nil when no
// extraction has been stored for it.
func (s *Store) FindBySource(ctx context.Context, source string) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, source, strain_name, product_type, dominant_terpene, other_terpenes, thc_percent, thc_source, extracted_at
		FROM records WHERE source = ?`, source)

	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load record: %w", err)
	}
	return rec, nil
}

// List returns the most recently extracted records, newest first. A limit
// of zero or less defaults to 100.
func (s *Store) List(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source, strain_name, product_type, dominant_terpene, other_terpenes, thc_percent, thc_source, extracted_at
		FROM records ORDER BY extracted_at DESC, source ASC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate records: %w", err)
	}
	return records, nil
}

// Count returns the number of stored records.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM records`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*Record, error) {
	var (
		rec        Record
		othersJSON string
		thc        sql.NullFloat64
	)
	err := row.Scan(&rec.ID, &rec.Source, &rec.StrainName, &rec.ProductType,
		&rec.DominantTerpene, &othersJSON, &thc, &rec.ThcSource, &rec.ExtractedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(othersJSON), &rec.OtherTerpenes); err != nil {
		return nil, fmt.Errorf("corrupt terpene list for %s: %w", rec.Source, err)
	}
	if rec.OtherTerpenes == nil {
		rec.OtherTerpenes = []string{}
	}
	if thc.Valid {
		v := thc.Float64
		rec.ThcPercent = &v
	}
	return &rec, nil
}
