// Package service provides the business logic layer for the robot challenge game.
//
// The service package implements:
//   - Challenge listing, lookup and creation
//   - Program compilation with a readable listing
//   - Solving: compile, start an attempt, run, record and notify
//   - Attempt lookup per player
//
// Core Interfaces:
//
// GameService is the main service interface used by every transport.
// SessionManager stores attempts, ChallengeManager is the challenge catalogue,
// and Notifier receives finished runs (the WebSocket hub implements it).
//
// Architecture:
//
// The service layer sits between the transports (HTTP, WebSocket, MCP) and the
// engine and program packages. Each attempt owns a fresh game, so any number
// of solves may run concurrently.
//
// Usage:
//
//	attempts := session.NewManager(logger)
//	challenges, err := challenge.NewManager("challenges", challenge.Options{Logger: logger})
//	if err != nil {
//		log.Fatal(err)
//	}
//	svc := service.NewGameService(attempts, challenges, service.Options{
//		Logger:   logger,
//		Notifier: hub,
//	})
//
//	result, err := svc.Solve(ctx, "warehouse", "player-1", source)
//
// Solve Results:
//
// A program that fails to compile is not an error of Solve: the returned
// SolveResult carries CompileError and no attempt is created. Failures of the
// robot are reported in SolveResult.Result.
package service
