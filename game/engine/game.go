package engine

import "fmt"

// Game is one player's attempt at a challenge: a board, the robot on it, and
// the win-state flags. A Game is owned by exactly one run and never shared.
type Game struct {
	PlayerID        string `json:"player_id"`
	Challenge       string `json:"challenge"`
	Board           *Board `json:"-"`
	Robot           *Robot `json:"robot"`
	ObjectDelivered bool   `json:"object_delivered"`
	RobotAtFinish   bool   `json:"robot_at_finish"`
}

// NewGame binds a board to a new robot for playerID
func NewGame(board *Board, playerID string) *Game {
	return &Game{
		PlayerID:  playerID,
		Challenge: board.Name,
		Board:     board,
		Robot:     NewRobot(board),
	}
}

// IsWin reports whether the object was delivered and the robot reached the finish
func (g *Game) IsWin() bool {
	return g.ObjectDelivered && g.RobotAtFinish
}

// MoveRobot moves one step in d, refreshes sensors and then checks the new
// tile. Reaching the finish sets RobotAtFinish, which is never cleared. A
// direction outside the four cardinals returns ErrUnknownDirection.
func (g *Game) MoveRobot(d Direction, line int) error {
	delta, ok := d.Delta()
	if !ok {
		return fmt.Errorf("%w %q", ErrUnknownDirection, d)
	}
	g.Robot.Step(delta)
	g.Robot.RefreshSensors(g.Board)
	if err := g.Robot.Evaluate(g.Board, line); err != nil {
		return err
	}
	if g.Board.IsFinish(g.Robot.Position) {
		g.RobotAtFinish = true
	}
	return nil
}

// Render draws the board with the robot overlaid at its current position
func (g *Game) Render() string {
	pos := g.Robot.Position
	return g.Board.render(&pos)
}
