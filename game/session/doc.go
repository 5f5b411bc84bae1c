// Package session provides level session management for Robo Path.
//
// A session binds one player to one level: it owns the command queue and
// at most one run at a time. The Manager stores sessions in memory under
// short case-insensitive ids, optionally mirrored to disk through a
// SessionPersistence such as FilePersistence.
//
// Persistence records the level id and the queued commands only. A
// reloaded session is idle with its queue intact; runs are recomputed.
//
// Usage:
//
//	levels, _ := config.NewManager("")
//	persistence, _ := session.NewFilePersistence("sessions", levels)
//	manager := session.NewManager(session.WithPersistence(persistence))
//
//	level, _ := levels.Get(1)
//	s, err := manager.Create("", level)
package session
