// Package program compiles and executes robot programs.
//
// A program is plain text, one instruction per line:
//
//	10 PICK_UP // grab the crate
//	20 GOTO 40 IF SENSOR RIGHT IS WALL
//	30 RIGHT
//	40 DROP
//
// Compile parses the text with a participle grammar and returns an immutable
// Program. A Program holds no execution state, so the same value can be run
// against many games at once.
//
// Execution:
//
// Run drives a program counter over the declared line numbers in ascending
// order. Jumps move the counter to their target, everything else falls through
// to the next declared line. A run ends when:
//   - an instruction fails (the robot is destroyed or misuses the object)
//   - a jump targets an undeclared line
//   - the last line completes, succeeding only if the game is won
//   - MaxSteps instructions have been executed
//
// Failures of the attempt are reported in Result.Error. Run returns a Go error
// only for an InternalError.
//
// Usage:
//
//	prog, err := program.Compile(source)
//	if err != nil {
//		return err
//	}
//	result, err := prog.Run(engine.NewGame(board, "player-1"), program.RunOptions{
//		Logger:    logger,
//		Listeners: []program.Listener{recorder},
//	})
//
// Listeners are called once per run after it reaches its terminal state.
//
// Synthesize goes the other way: given a board it writes the shortest
// straight-line program that wins it.
package program
