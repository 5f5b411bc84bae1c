package progress

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// PostgresStore keeps progress in a key/value table of a PostgreSQL
// database, for deployments where several servers share one player
type PostgresStore struct {
	db *sql.DB
}

// OpenPostgres connects using connectionString and initializes the schema
func OpenPostgres(ctx context.Context, connectionString string) (*PostgresStore, error) {
	if connectionString == "" {
		return nil, fmt.Errorf("progress: postgres backend requires a connection string")
	}

	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("progress: failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("progress: failed to ping database: %w", err)
	}

	store := &PostgresStore{db: db}
	if err := store.initSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("progress: failed to initialize schema: %w", err)
	}

	return store, nil
}

func (s *PostgresStore) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);
	`
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

func (s *PostgresStore) Load(ctx context.Context) (int, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = $1`, Key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return DefaultLevel, nil
	}
	if err != nil {
		return 0, fmt.Errorf("progress: failed to load: %w", err)
	}
	return parseValue(raw), nil
}

func (s *PostgresStore) Save(ctx context.Context, level int) error {
	value, err := formatValue(level)
	if err != nil {
		return err
	}

	query := `
	INSERT INTO kv (key, value) VALUES ($1, $2)
	ON CONFLICT (key)
	DO UPDATE SET value = $2, updated_at = NOW()
	`
	if _, err := s.db.ExecContext(ctx, query, Key, value); err != nil {
		return fmt.Errorf("progress: failed to save: %w", err)
	}
	return nil
}

// Close closes the database connection
func (s *PostgresStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
