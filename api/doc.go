// Package api provides HTTP REST API handlers for the robot challenge game.
//
// The api package implements:
//   - Challenge listing, lookup and creation
//   - Program compilation and solving
//   - Attempt lookup and deletion
//   - WebSocket upgrade for run notifications
//
// Endpoints:
//
// Challenges:
//   - GET /api/challenges - List challenges with their rendered maps
//   - POST /api/challenges - Create a challenge {name, description, author, layout}
//   - GET /api/challenges/{name} - Get one challenge
//   - POST /api/challenges/{name}/solve - Run a program {player_id, source}
//
// Programs:
//   - POST /api/compile - Compile without running {source}
//
// Attempts:
//   - GET /api/attempts?player=<id> - List attempts, optionally for one player
//   - GET /api/attempts/{id} - Get one attempt
//   - DELETE /api/attempts/{id} - Delete an attempt
//
// Other:
//   - GET /api/help - Language reference and map legend
//   - GET /api/health - Liveness check
//   - GET /ws?player=<id> - WebSocket stream of run_completed events
//
// Usage:
//
//	server := api.NewServer(gameService, hub, logger)
//	http.ListenAndServe(":8080", server)
//
// Error Handling:
//
// Errors are returned as JSON with an HTTP status derived from the error:
// 404 for unknown challenges and attempts, 409 for a taken challenge name,
// 400 for invalid maps and requests.
//
//	{"error": "challenge missing: challenge not found"}
//
// A program that fails to compile answers 400 with the compile or solve
// result as the body, so the client still gets the line and message.
package api
