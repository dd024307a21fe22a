package program

import (
	"errors"
	"fmt"

	"github.com/wricardo/robot-challenge/game/engine"
)

// Op identifies an instruction kind. The set is closed.
type Op uint8

const (
	OpNoop Op = iota
	OpMoveUp
	OpMoveDown
	OpMoveLeft
	OpMoveRight
	OpPickUp
	OpDrop
	OpGoto
	OpGotoIfSensor
)

var opNames = [...]string{
	OpNoop:         "NOOP",
	OpMoveUp:       "UP",
	OpMoveDown:     "DOWN",
	OpMoveLeft:     "LEFT",
	OpMoveRight:    "RIGHT",
	OpPickUp:       "PICK_UP",
	OpDrop:         "DROP",
	OpGoto:         "GOTO",
	OpGotoIfSensor: "GOTO_IF_SENSOR",
}

func (o Op) String() string {
	if int(o) < len(opNames) {
		return opNames[o]
	}
	return fmt.Sprintf("Op(%d)", o)
}

// Instruction is one compiled line. Target is used by the jump ops, Sensor and
// Expect only by OpGotoIfSensor.
type Instruction struct {
	Line    int              `json:"line"`
	Op      Op               `json:"op"`
	Target  int              `json:"target,omitempty"`
	Sensor  engine.Direction `json:"sensor,omitempty"`
	Expect  engine.TileKind  `json:"expect,omitempty"`
	Comment string           `json:"comment,omitempty"`
}

// Outcome is what executing one instruction asks of the program counter
type Outcome struct {
	Terminate bool
	Jump      bool
	Target    int
	Err       error
}

func fallThrough() Outcome {
	return Outcome{}
}

func jumpTo(target int) Outcome {
	return Outcome{Jump: true, Target: target}
}

func terminate(err error) Outcome {
	return Outcome{Terminate: true, Err: err}
}

// Execute applies the instruction to the game
func (in Instruction) Execute(g *engine.Game) Outcome {
	switch in.Op {
	case OpMoveUp:
		return in.move(g, engine.Up)
	case OpMoveDown:
		return in.move(g, engine.Down)
	case OpMoveLeft:
		return in.move(g, engine.Left)
	case OpMoveRight:
		return in.move(g, engine.Right)
	case OpPickUp:
		return in.pickUp(g)
	case OpDrop:
		return in.drop(g)
	case OpGoto:
		return jumpTo(in.Target)
	case OpGotoIfSensor:
		return in.gotoIfSensor(g)
	case OpNoop:
		return fallThrough()
	}
	return terminate(&InternalError{Line: in.Line, Msg: fmt.Sprintf("unknown instruction %s", in.Op)})
}

func (in Instruction) move(g *engine.Game, d engine.Direction) Outcome {
	if err := g.MoveRobot(d, in.Line); err != nil {
		if errors.Is(err, engine.ErrUnknownDirection) {
			return terminate(&InternalError{Line: in.Line, Msg: err.Error()})
		}
		return terminate(err)
	}
	return fallThrough()
}

func (in Instruction) pickUp(g *engine.Game) Outcome {
	if g.Robot.Carrying {
		return terminate(fmt.Errorf("Robot tried to pick up an object while already holding one at line %d", in.Line))
	}
	if !g.Board.IsObjectOrigin(g.Robot.Position) {
		return terminate(fmt.Errorf("Robot tried to pick up an object from the wrong place and broke its arm at line %d", in.Line))
	}
	g.Robot.Carrying = true
	return fallThrough()
}

// drop always releases the object. Dropping anywhere but the drop zone ends the attempt.
func (in Instruction) drop(g *engine.Game) Outcome {
	if !g.Robot.Carrying {
		return terminate(fmt.Errorf("Robot tried to drop an object while not holding one at line %d", in.Line))
	}
	g.Robot.Carrying = false
	if !g.Board.IsDropZone(g.Robot.Position) {
		return terminate(fmt.Errorf("Robot tried to drop an object in the wrong place at line %d", in.Line))
	}
	g.ObjectDelivered = true
	return fallThrough()
}

func (in Instruction) gotoIfSensor(g *engine.Game) Outcome {
	if !in.Sensor.Valid() {
		return terminate(&InternalError{Line: in.Line, Msg: fmt.Sprintf("unknown sensor %s", in.Sensor)})
	}
	tile, ok := g.Robot.Sensor(in.Sensor)
	if ok && tile.Kind == in.Expect {
		return jumpTo(in.Target)
	}
	return fallThrough()
}

// String renders the instruction back in source form
func (in Instruction) String() string {
	var s string
	switch in.Op {
	case OpGoto:
		s = fmt.Sprintf("%d GOTO %d", in.Line, in.Target)
	case OpGotoIfSensor:
		s = fmt.Sprintf("%d GOTO %d IF SENSOR %s IS %s", in.Line, in.Target, in.Sensor, in.Expect)
	default:
		s = fmt.Sprintf("%d %s", in.Line, in.Op)
	}
	if in.Comment != "" {
		s += " // " + in.Comment
	}
	return s
}
