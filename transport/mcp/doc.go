// Package mcp exposes the robot challenge to AI agents over the Model
// Context Protocol.
//
// The Client is a thin proxy: every tool call becomes a request against the
// REST API served by package api, and the JSON answer is rendered as text
// for the agent.
//
// MCP Tools:
//   - language_reference: Instruction set and map legend
//   - list_challenges: All challenges with their maps
//   - get_challenge: One challenge
//   - create_challenge: Add a challenge from map rows
//   - compile_program: Compile a program and list it in execution order
//   - solve_challenge: Run a program against a challenge
//   - get_attempt: One attempt with its program and final map
//   - list_attempts: Attempts, optionally for one player
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
package mcp
