// Package service provides the business logic layer for Robo Path.
//
// The service package implements:
//   - Level listing with unlock state
//   - Session lifecycle and command queue editing
//   - Program execution, batch or animated
//   - Progress updates and outcome narration
//
// Core Interfaces:
//
// GameService is the main service interface used by every transport.
// SessionManager stores sessions, LevelCatalog serves the static level set,
// and EventSink delivers animated runs to live clients.
//
// Architecture:
//
// The service layer sits between the transports (HTTP, WebSocket, MCP) and
// the engine. A run is resolved by the engine in one pass; the service then
// either returns it whole or replays it through the EventSink one step per
// interval. A session runs one program at a time and its queue is locked
// until the run finishes, is cancelled, or the session is reset.
//
// Usage:
//
//	levels, _ := config.NewManager("")
//	store := progress.NewMemoryStore()
//	svc := service.NewGameService(session.NewManager(), levels, store, nil)
//
//	info, err := svc.CreateSession(ctx, 0)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	svc.AddCommand(ctx, info.ID, "right")
//	result, err := svc.Run(ctx, info.ID, service.RunOptions{})
//
// Progress:
//
// Winning level N stores N+1 unless progress is already further ahead.
// A failed save is logged and never changes the outcome of the run.
package service
