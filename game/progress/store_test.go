package progress

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// storeFactories returns every backend that can run without external
// services. Postgres joins when ROBO_PATH_TEST_POSTGRES_DSN is set.
func storeFactories(t *testing.T) map[string]func(t *testing.T) Store {
	factories := map[string]func(t *testing.T) Store{
		"memory": func(t *testing.T) Store { return NewMemoryStore() },
		"file": func(t *testing.T) Store {
			s, err := NewFileStore(t.TempDir())
			if err != nil {
				t.Fatalf("Failed to create file store: %v", err)
			}
			return s
		},
		"sqlite": func(t *testing.T) Store {
			s, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "nested", "progress.db"))
			if err != nil {
				t.Fatalf("Failed to open sqlite store: %v", err)
			}
			return s
		},
	}

	if dsn := os.Getenv("ROBO_PATH_TEST_POSTGRES_DSN"); dsn != "" {
		factories["postgres"] = func(t *testing.T) Store {
			s, err := OpenPostgres(context.Background(), dsn)
			if err != nil {
				t.Fatalf("Failed to open postgres store: %v", err)
			}
			if _, err := s.db.Exec(`DELETE FROM kv WHERE key = $1`, Key); err != nil {
				t.Fatalf("Failed to clear postgres store: %v", err)
			}
			return s
		}
	}
	return factories
}

func TestStores_RoundTrip(t *testing.T) {
	ctx := context.Background()

	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			store := factory(t)
			defer store.Close()

			level, err := store.Load(ctx)
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			if level != DefaultLevel {
				t.Errorf("Expected default level %d, got %d", DefaultLevel, level)
			}

			if err := store.Save(ctx, 3); err != nil {
				t.Fatalf("Save failed: %v", err)
			}
			level, _ = store.Load(ctx)
			if level != 3 {
				t.Errorf("Expected level 3, got %d", level)
			}

			if err := store.Save(ctx, 0); !errors.Is(err, ErrInvalidValue) {
				t.Errorf("Expected ErrInvalidValue for level 0, got %v", err)
			}
		})
	}
}

func TestStores_Advance(t *testing.T) {
	ctx := context.Background()

	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			store := factory(t)
			defer store.Close()

			level, advanced, err := Advance(ctx, store, 1)
			if err != nil || !advanced || level != 2 {
				t.Fatalf("Expected winning level 1 to unlock 2, got %d (%v, %v)", level, advanced, err)
			}

			// Replaying an earlier level keeps the frontier
			if err := store.Save(ctx, 3); err != nil {
				t.Fatal(err)
			}
			level, advanced, err = Advance(ctx, store, 1)
			if err != nil || advanced || level != 3 {
				t.Errorf("Expected progress to stay at 3, got %d (%v, %v)", level, advanced, err)
			}

			level, advanced, _ = Advance(ctx, store, 3)
			if !advanced || level != 4 {
				t.Errorf("Expected winning level 3 to unlock 4, got %d", level)
			}

			stored, _ := store.Load(ctx)
			if stored != 4 {
				t.Errorf("Expected stored progress 4, got %d", stored)
			}
		})
	}
}

func TestFileStore_UnparsableFallsBack(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}

	tests := []string{"", "abc", "-4", "0"}
	for _, raw := range tests {
		if err := os.WriteFile(filepath.Join(dir, Key), []byte(raw), 0o644); err != nil {
			t.Fatal(err)
		}
		level, err := store.Load(context.Background())
		if err != nil {
			t.Fatalf("Load(%q) failed: %v", raw, err)
		}
		if level != DefaultLevel {
			t.Errorf("Load(%q) = %d, want %d", raw, level, DefaultLevel)
		}
	}
}

func TestFileStore_StoresDecimalString(t *testing.T) {
	dir := t.TempDir()
	store, _ := NewFileStore(dir)

	if err := store.Save(context.Background(), 12); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(store.Path())
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "12" {
		t.Errorf("Expected raw value 12, got %q", data)
	}
	if filepath.Base(store.Path()) != "kode-petualang-level" {
		t.Errorf("Unexpected progress file %s", store.Path())
	}
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "progress.db")

	first, err := OpenSQLite(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	if err := first.Save(ctx, 5); err != nil {
		t.Fatal(err)
	}
	first.Close()

	second, err := OpenSQLite(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	defer second.Close()

	level, err := second.Load(ctx)
	if err != nil || level != 5 {
		t.Errorf("Expected level 5 after reopen, got %d (%v)", level, err)
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		cfg     Config
		wantErr error
	}{
		{"default is file", Config{DSN: t.TempDir()}, nil},
		{"memory", Config{Backend: "memory"}, nil},
		{"sqlite", Config{Backend: "SQLite", DSN: filepath.Join(t.TempDir(), "p.db")}, nil},
		{"postgres without dsn", Config{Backend: "postgres"}, nil},
		{"unknown", Config{Backend: "redis"}, ErrUnknownBackend},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := Open(ctx, tt.cfg)
			if tt.name == "postgres without dsn" {
				if err == nil {
					t.Error("Expected error without connection string")
				}
				return
			}
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Open failed: %v", err)
			}
			defer store.Close()

			if level, _ := store.Load(ctx); level != DefaultLevel {
				t.Errorf("Expected fresh store at level 1, got %d", level)
			}
		})
	}
}

func TestUnlocked(t *testing.T) {
	if !Unlocked(1, 1) || !Unlocked(2, 3) {
		t.Error("Expected levels at or below progress to be unlocked")
	}
	if Unlocked(4, 3) {
		t.Error("Expected level above progress to be locked")
	}
}
