package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/couchcryptid/planet-weather-fusion/internal/domain"
	_ "github.com/lib/pq" // postgres driver
)

const schema = `
CREATE TABLE IF NOT EXISTS history_records (
	id          TEXT PRIMARY KEY,
	type        TEXT NOT NULL,
	data        JSONB NOT NULL,
	recorded_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS history_records_recorded_at_idx
	ON history_records (recorded_at DESC);
`

// Postgres persists history records in PostgreSQL.
type Postgres struct {
	db *sql.DB
}

// OpenPostgres opens a connection pool and verifies it with a ping.
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// NewPostgres creates a store over an open pool.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// Migrate creates the history table if it does not exist.
func (s *Postgres) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate history_records: %w", err)
	}
	return nil
}

func (s *Postgres) SaveFused(ctx context.Context, rec domain.FusedRecord) error {
	hr, err := rec.HistoryRecord()
	if err != nil {
		return err
	}
	return s.save(ctx, hr)
}

func (s *Postgres) SaveCustom(ctx context.Context, rec domain.CustomRecord) error {
	hr, err := rec.HistoryRecord()
	if err != nil {
		return err
	}
	return s.save(ctx, hr)
}

func (s *Postgres) save(ctx context.Context, hr domain.HistoryRecord) error {
	const query = `
		INSERT INTO history_records (id, type, data, recorded_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO NOTHING
	`
	if _, err := s.db.ExecContext(ctx, query, hr.ID, string(hr.Type), []byte(hr.Data), hr.Timestamp); err != nil {
		return fmt.Errorf("save %s record %s: %w", hr.Type, hr.ID, err)
	}
	return nil
}

func (s *Postgres) History(ctx context.Context, offset, limit int) ([]domain.HistoryRecord, error) {
	const query = `
		SELECT id, type, data, recorded_at
		FROM history_records
		ORDER BY recorded_at DESC, id
		LIMIT $1 OFFSET $2
	`
	rows, err := s.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	records := make([]domain.HistoryRecord, 0, limit)
	for rows.Next() {
		var (
			hr      domain.HistoryRecord
			recType string
			data    []byte
		)
		if err := rows.Scan(&hr.ID, &recType, &data, &hr.Timestamp); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		hr.Type = domain.RecordType(recType)
		hr.Data = json.RawMessage(data)
		hr.Timestamp = hr.Timestamp.UTC()
		records = append(records, hr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}
	return records, nil
}

// Ping reports whether the database is reachable.
func (s *Postgres) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the connection pool.
func (s *Postgres) Close() error {
	return s.db.Close()
}
