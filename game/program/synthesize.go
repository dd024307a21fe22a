package program

import (
	"errors"
	"fmt"

	"github.com/wricardo/robot-challenge/game/engine"
)

// ErrUnsolvable is returned by Synthesize for boards no program can win
var ErrUnsolvable = errors.New("board cannot be solved")

// lineStep is the gap between synthesized line numbers
const lineStep = 10

var moveOps = map[engine.Direction]Op{
	engine.Up:    OpMoveUp,
	engine.Down:  OpMoveDown,
	engine.Left:  OpMoveLeft,
	engine.Right: OpMoveRight,
}

// Synthesize builds the shortest straight-line program that walks to the
// object, picks it up, carries it to the drop zone, drops it and walks to the
// finish.
func Synthesize(board *engine.Board) (*Program, error) {
	if missing := board.Missing(); len(missing) > 0 {
		return nil, fmt.Errorf("%w: no %s tile", ErrUnsolvable, missing[0])
	}

	var instructions []Instruction
	emit := func(op Op, comment string) {
		instructions = append(instructions, Instruction{
			Line:    (len(instructions) + 1) * lineStep,
			Op:      op,
			Comment: comment,
		})
	}

	legs := []struct {
		to     engine.Position
		kind   engine.TileKind
		action Op
	}{
		{*board.Object, engine.Object, OpPickUp},
		{*board.DropZone, engine.DropZone, OpDrop},
		{*board.Finish, engine.Finish, OpNoop},
	}

	at := board.Start
	for _, leg := range legs {
		path, ok := board.Path(at, leg.to)
		if !ok {
			return nil, fmt.Errorf("%w: %s cannot be reached", ErrUnsolvable, leg.kind)
		}
		for i, d := range path {
			comment := ""
			if i == 0 {
				comment = "to " + string(leg.kind)
			}
			emit(moveOps[d], comment)
		}
		if leg.action != OpNoop {
			emit(leg.action, "")
		}
		at = leg.to
	}

	return New(instructions)
}
