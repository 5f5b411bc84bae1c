// Package progress persists the player's unlock state: a single integer,
// the highest level id the player may open, stored under the fixed key
// "kode-petualang-level" as a decimal string.
//
// Backends are interchangeable behind Store: FileStore, SQLiteStore
// (modernc.org/sqlite, no cgo), PostgresStore (lib/pq) and MemoryStore.
// Open picks one from a Config. A missing or unparsable value always
// reads as level 1.
//
// Advance applies the unlock rule after a win: completing level N stores
// N+1 when N is at or past the stored value, and never lowers it.
package progress
