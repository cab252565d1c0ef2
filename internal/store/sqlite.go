package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/amishk599/custclassify/internal/model"
)

// SQLiteStore keeps a history of classifications in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and ensures the
// classifications table exists.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Verify the connection is alive.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	createTable := `CREATE TABLE IF NOT EXISTS classifications (
		id                   INTEGER PRIMARY KEY AUTOINCREMENT,
		created_at           TEXT NOT NULL,
		provider             TEXT NOT NULL,
		model                TEXT NOT NULL,
		customer_information TEXT NOT NULL,
		industry             TEXT NOT NULL,
		categories           TEXT NOT NULL,
		category             TEXT NOT NULL,
		explanation          TEXT NOT NULL
	)`
	if _, err := db.Exec(createTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating classifications table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Save appends rec to the history. ID and CreatedAt on rec are ignored when
// zero; the database assigns the ID.
func (s *SQLiteStore) Save(ctx context.Context, rec model.Record) error {
	created := rec.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	categories, err := json.Marshal([]string(rec.Request.Categories))
	if err != nil {
		return fmt.Errorf("encoding categories: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO classifications
			(created_at, provider, model, customer_information, industry, categories, category, explanation)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		created.UTC().Format(time.RFC3339Nano),
		rec.Provider,
		rec.Model,
		rec.Request.CustomerInformation,
		rec.Request.Industry,
		string(categories),
		rec.Result.Category,
		rec.Result.Explanation,
	)
	if err != nil {
		return fmt.Errorf("saving classification: %w", err)
	}
	return nil
}

// Recent returns up to limit records, newest first. A limit of zero or less
// returns every record.
func (s *SQLiteStore) Recent(ctx context.Context, limit int) ([]model.Record, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, provider, model, customer_information, industry, categories, category, explanation
		FROM classifications
		ORDER BY id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying classifications: %w", err)
	}
	defer rows.Close()

	var records []model.Record
	for rows.Next() {
		var (
			rec        model.Record
			created    string
			categories string
		)
		if err := rows.Scan(
			&rec.ID,
			&created,
			&rec.Provider,
			&rec.Model,
			&rec.Request.CustomerInformation,
			&rec.Request.Industry,
			&categories,
			&rec.Result.Category,
			&rec.Result.Explanation,
		); err != nil {
			return nil, fmt.Errorf("scanning classification: %w", err)
		}
		if rec.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, fmt.Errorf("parsing created_at of record %d: %w", rec.ID, err)
		}
		if err := json.Unmarshal([]byte(categories), &rec.Request.Categories); err != nil {
			return nil, fmt.Errorf("decoding categories of record %d: %w", rec.ID, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating classifications: %w", err)
	}
	return records, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
