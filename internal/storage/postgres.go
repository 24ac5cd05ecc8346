package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

type PostgresStore struct {
	db    *sql.DB
	table string
}

func NewPostgresStore(connStr, table string) (*PostgresStore, error) {
	db, err := openDB("postgres", connStr)
	if err != nil {
		return nil, err
	}

	return &PostgresStore{db: db, table: pq.QuoteIdentifier(tableName(table))}, nil
}

func (s *PostgresStore) Initialize() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS ` + s.table + ` (
            key VARCHAR(512) PRIMARY KEY,
            body BYTEA NOT NULL,
            updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
        )`,
	}

	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return fmt.Errorf("error executing query %s: %w", query, err)
		}
	}

	return nil
}

func (s *PostgresStore) Read(ctx context.Context, key string) ([]byte, error) {
	query := `SELECT body FROM ` + s.table + ` WHERE key = $1`

	var body []byte
	err := s.db.QueryRowContext(ctx, query, key).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", key, err)
	}

	return body, nil
}

func (s *PostgresStore) Write(ctx context.Context, key string, data []byte) error {
	query := `
        INSERT INTO ` + s.table + ` (key, body, updated_at)
        VALUES ($1, $2, CURRENT_TIMESTAMP)
        ON CONFLICT (key) DO UPDATE SET
            body = EXCLUDED.body,
            updated_at = CURRENT_TIMESTAMP
    `

	if _, err := s.db.ExecContext(ctx, query, key, data); err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
