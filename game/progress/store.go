package progress

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Key is the fixed namespace under which progress is stored
const Key = "kode-petualang-level"

// DefaultLevel is the unlocked level when nothing was stored yet
const DefaultLevel = 1

// Backend names accepted by Open
const (
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

var (
	ErrUnknownBackend = errors.New("unknown progress backend")
	ErrInvalidValue   = errors.New("invalid progress value")
)

// Store persists the highest unlocked level id
type Store interface {
	// Load returns the stored level, or DefaultLevel when absent or
	// unparsable
	Load(ctx context.Context) (int, error)
	Save(ctx context.Context, level int) error
	Close() error
}

// Config selects and configures a Store backend
type Config struct {
	Backend string
	// DSN is a directory for file, a database path for sqlite and a
	// connection string for postgres
	DSN string
}

// Open creates the Store described by cfg
func Open(ctx context.Context, cfg Config) (Store, error) {
	var (
		store Store
		err   error
	)

	switch strings.ToLower(cfg.Backend) {
	case "", BackendFile:
		store, err = NewFileStore(cfg.DSN)
	case BackendSQLite:
		store, err = OpenSQLite(ctx, cfg.DSN)
	case BackendPostgres:
		store, err = OpenPostgres(ctx, cfg.DSN)
	case BackendMemory:
		store = NewMemoryStore()
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}

	if err != nil {
		return nil, err
	}
	return store, nil
}

// Advance records that completedID was won. The stored level moves to
// completedID+1 only when completedID is at or past the current frontier,
// so replaying an earlier level never regresses progress. It returns the
// resulting level and whether it changed.
func Advance(ctx context.Context, store Store, completedID int) (int, bool, error) {
	current, err := store.Load(ctx)
	if err != nil {
		return 0, false, err
	}
	if completedID < current {
		return current, false, nil
	}

	next := completedID + 1
	if err := store.Save(ctx, next); err != nil {
		return current, false, err
	}
	return next, true, nil
}

// Unlocked reports whether levelID is playable at the given progress
func Unlocked(levelID, highest int) bool {
	return levelID <= highest
}

func parseValue(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < DefaultLevel {
		return DefaultLevel
	}
	return n
}

func formatValue(level int) (string, error) {
	if level < DefaultLevel {
		return "", fmt.Errorf("%w: %d", ErrInvalidValue, level)
	}
	return strconv.Itoa(level), nil
}
