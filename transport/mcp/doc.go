// Package mcp exposes Robo Path to AI agents over the Model Context
// Protocol.
//
// The Client registers MCP tools and forwards each call to the REST API,
// so an agent and a browser can share sessions on the same server.
//
// MCP Tools:
//   - list_levels, solve_level, get_progress
//   - create_session, get_session, list_sessions
//   - queue_commands, clear_commands, run_program, reset_session
//   - game_instructions
//
// Tool results are plain text: the grid as rows of legend characters, the
// queued program, and for runs the committed steps, headline and hint.
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	if err := server.ServeStdio(client.GetMCPServer()); err != nil {
//		log.Fatal(err)
//	}
package mcp
