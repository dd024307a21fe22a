// Package engine provides the world model for the robot challenge game.
//
// The engine package implements:
//   - The tile vocabulary and the map authoring alphabet
//   - Board decoding with landmark discovery (start, finish, object, drop zone)
//   - The robot entity with its four directional sensors
//   - The per-attempt Game aggregate and its win condition
//   - Challenge definitions loaded from challenge files
//
// Core Types:
//
// Board is an immutable grid of Tile values decoded from map text. Robot is the
// mutable agent that moves over a board. Game binds one fresh Board and Robot
// to a player for a single attempt and tracks the object-delivered and
// robot-at-finish flags.
//
// Usage:
//
//	board, err := engine.DecodeMap("corridor", "s2f")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	game := engine.NewGame(board, "player-1")
//	if err := game.MoveRobot(engine.Right, 10); err != nil {
//		log.Println(err)
//	}
//	fmt.Println(game.Render())
//
// Game Rules:
//
// The robot starts on the start tile, must pick up the object, drop it on the
// drop zone and reach the finish tile. Stepping onto void, onto a wall or off
// the grid destroys the robot.
package engine
