// Package websocket pushes finished runs to connected players.
//
// The websocket package implements:
//   - Player-scoped WebSocket connections
//   - Non-blocking delivery of run completions
//   - Connection lifecycle management with ping/pong keepalive
//
// Architecture:
//
// The package uses a hub-and-spoke model where a central Hub owns all
// connections. Each client has a read goroutine and a write goroutine; all
// registration and fan-out happens on the hub's Run goroutine.
//
// Message Protocol:
//
// Messages are JSON objects: {"player_id": "...", "event": "...", "data": ...}.
// A client receives "connected" once, then "run_completed" with a
// service.SolveResult for every program the player runs. Incoming messages
// are ignored.
//
// Usage:
//
//	hub := websocket.NewHub(logger)
//	go hub.Run(ctx)
//
//	svc := service.NewGameService(attempts, challenges, service.Options{Notifier: hub})
//	router.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("player"))
//	})
package websocket
