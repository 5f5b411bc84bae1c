// Package api provides the HTTP REST API for Robo Path.
//
// Endpoints:
//
// Levels:
//   - GET /api/levels - List levels with lock state
//   - GET /api/levels/{id} - Get one compiled level
//   - GET /api/levels/{id}/solution - Shortest winning program
//   - GET /api/progress - Highest unlocked level
//
// Sessions:
//   - POST /api/sessions - Create a session, body {"level_id": 2}; empty
//     body picks the furthest unlocked level
//   - GET /api/sessions - List sessions (?sort=created|accessed&order=asc|desc&limit=N)
//   - GET /api/sessions/{id} - Get a session
//   - DELETE /api/sessions/{id} - Delete a session
//
// Programs:
//   - POST /api/sessions/{id}/commands - Queue {"direction": "up"} or
//     {"directions": ["up", "right"]}
//   - DELETE /api/sessions/{id}/commands - Clear the queue
//   - POST /api/sessions/{id}/run - Run {"animate": bool, "interval_ms": N, "policy": "always|when_satisfied"}
//   - POST /api/sessions/{id}/cancel - Stop an animated run
//   - POST /api/sessions/{id}/reset - Return the avatar to the start
//
// Live events:
//   - GET /ws?session={id} - WebSocket stream of step and outcome events
//
// A batch run answers 200 with the full result. An animated run answers
// 202 at once and delivers the steps and outcome over the WebSocket.
//
// Error Handling:
//
// Errors are returned as JSON with an HTTP status derived from the
// service error:
//
//	{"error": "session zz99: session not found"}
//
// 404 unknown session or level, 403 locked level, 409 run in progress or
// locked queue, 400 malformed input or empty queue.
package api
