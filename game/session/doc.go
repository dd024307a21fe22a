// Package session tracks players' attempts at challenges.
//
// The session package implements:
//   - Thread-safe attempt storage and retrieval
//   - Short attempt ID generation
//   - A fresh board and robot for every attempt
//   - Recording the result of an attempt's run
//   - Expiry of stale, completed attempts
//
// Core Types:
//
// Manager owns every attempt. Callers receive snapshots, so an attempt's
// fields never change under a reader; the Game of an attempt belongs to its
// run until Complete records the result.
//
// Attempt Identifiers:
//
// Attempts use 4-character hex IDs generated with crypto/rand. Lookups are
// case-insensitive.
//
// Usage:
//
//	manager := session.NewManager(logger)
//
//	attempt, err := manager.Create(challenge, "player-1", source)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, _ := prog.Run(attempt.Game, program.RunOptions{})
//	manager.Complete(attempt.ID, result)
//
//	go manager.RunCleanup(ctx, time.Minute, time.Hour)
package session
