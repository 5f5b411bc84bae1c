// Package websocket streams run events to browser clients.
//
// A central Hub owns every connection. Clients join one session with the
// ?session=<id> query parameter and receive only that session's events.
// The Hub implements service.EventSink, so the game service publishes
// through it without knowing about connections.
//
// Message Protocol:
//
// Every message is one JSON text frame:
//
//	{"session_id": "a1b2", "event": "step", "data": {...}}
//
// Events are step (one committed move), outcome (the final run result),
// queue (the command queue changed), reset and cancelled. Step events of a
// run arrive in order, followed by at most one outcome.
//
// Usage:
//
//	hub := websocket.NewHub(logger)
//	go hub.Run(ctx)
//
//	svc := service.NewGameService(sessions, levels, store, nil,
//		service.WithEventSink(hub))
//
// Slow clients whose buffer fills are disconnected rather than stalling
// the hub.
package websocket
