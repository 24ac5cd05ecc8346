package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrNotFound is returned by Read when no document exists under the key.
var ErrNotFound = errors.New("storage: key not found")

// BlobStore persists whole JSON documents by key. Documents are always
// replaced wholesale.
type BlobStore interface {
	Read(ctx context.Context, key string) ([]byte, error)
	Write(ctx context.Context, key string, data []byte) error
	Close() error
}

// Backend names accepted by New.
const (
	BackendS3       = "s3"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendFile     = "file"
	BackendMemory   = "memory"
)

// Config selects and configures a backend.
type Config struct {
	Backend string `mapstructure:"backend"`

	// S3
	Bucket   string `mapstructure:"bucket"`
	Region   string `mapstructure:"region"`
	Endpoint string `mapstructure:"endpoint"`

	// SQL
	SQLitePath  string `mapstructure:"sqlite_path"`
	PostgresDSN string `mapstructure:"postgres_dsn"`
	Table       string `mapstructure:"table"`

	// Local files
	Dir string `mapstructure:"dir"`
}

// New opens the configured backend. SQL backends are initialized before
// they are returned.
func New(cfg Config) (BlobStore, error) {
	switch cfg.Backend {
	case BackendS3:
		return NewS3Store(cfg.Bucket, cfg.Region, cfg.Endpoint)
	case BackendSQLite:
		s, err := NewSQLiteStore(cfg.SQLitePath, cfg.Table)
		if err != nil {
			return nil, err
		}
		if err := s.Initialize(); err != nil {
			s.Close()
			return nil, err
		}
		return s, nil
	case BackendPostgres:
		s, err := NewPostgresStore(cfg.PostgresDSN, cfg.Table)
		if err != nil {
			return nil, err
		}
		if err := s.Initialize(); err != nil {
			s.Close()
			return nil, err
		}
		return s, nil
	case BackendFile, "":
		return NewFileStore(cfg.Dir)
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// openDB opens a SQL database and checks the connection. The handle is
// closed again when the check fails.
func openDB(driver, dsn string) (*sql.DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to %s: %w", driver, err)
	}
	return db, nil
}

func tableName(table string) string {
	if table == "" {
		return "documents"
	}
	return table
}
