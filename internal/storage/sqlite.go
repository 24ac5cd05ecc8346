package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

type SQLiteStore struct {
	db    *sql.DB
	table string
}

func NewSQLiteStore(dbPath, table string) (*SQLiteStore, error) {
	db, err := openDB("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	return &SQLiteStore{db: db, table: tableName(table)}, nil
}

func (s *SQLiteStore) Initialize() error {
	queries := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %q (
            key TEXT PRIMARY KEY,
            body BLOB NOT NULL,
            updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
        )`, s.table),
	}

	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return fmt.Errorf("error executing query %s: %w", query, err)
		}
	}

	return nil
}

func (s *SQLiteStore) Read(ctx context.Context, key string) ([]byte, error) {
	query := fmt.Sprintf(`SELECT body FROM %q WHERE key = ?`, s.table)

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

func (s *SQLiteStore) Write(ctx context.Context, key string, data []byte) error {
	query := fmt.Sprintf(`
        INSERT INTO %q (key, body, updated_at)
        VALUES (?, ?, CURRENT_TIMESTAMP)
        ON CONFLICT(key) DO UPDATE SET
            body = excluded.body,
            updated_at = CURRENT_TIMESTAMP
    `, s.table)

	if _, err := s.db.ExecContext(ctx, query, key, data); err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
