package presets

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// PostgresStorage keeps one row per storage key.
type PostgresStorage struct {
	db    *sql.DB
	table string
	key   string
}

func NewPostgresStorage(db *sql.DB, table, key string) *PostgresStorage {
	return &PostgresStorage{db: db, table: pq.QuoteIdentifier(table), key: key}
}

func (p *PostgresStorage) Name() string { return "postgres" }

// EnsureSchema creates the preset table if it is missing.
func (p *PostgresStorage) EnsureSchema(ctx context.Context) error {
	query := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	storage_key TEXT PRIMARY KEY,
	document    JSONB NOT NULL,
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
)`, p.table)
	if _, err := p.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("create table %s: %w", p.table, err)
	}
	return nil
}

func (p *PostgresStorage) Read(ctx context.Context) ([]byte, error) {
	query := fmt.Sprintf(`SELECT document FROM %s WHERE storage_key = $1`, p.table)

	var data []byte
	err := p.db.QueryRowContext(ctx, query, p.key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select preset document: %w", err)
	}
	return data, nil
}

func (p *PostgresStorage) Write(ctx context.Context, data []byte) error {
	query := fmt.Sprintf(`INSERT INTO %s (storage_key, document, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (storage_key) DO UPDATE SET document = EXCLUDED.document, updated_at = now()`, p.table)

	if _, err := p.db.ExecContext(ctx, query, p.key, string(data)); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			return fmt.Errorf("upsert preset document (%s): %w", pqErr.Code.Name(), err)
		}
		return fmt.Errorf("upsert preset document: %w", err)
	}
	return nil
}
