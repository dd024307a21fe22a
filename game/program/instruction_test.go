package program

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/robot-challenge/game/engine"
)

func newGame(t *testing.T, mapText string) *engine.Game {
	t.Helper()
	board, err := engine.DecodeMap("test", mapText)
	require.NoError(t, err)
	return engine.NewGame(board, "player-1")
}

func TestPickUp(t *testing.T) {
	t.Run("on the object origin", func(t *testing.T) {
		game := newGame(t, "s2\nod")
		game.Robot.Position = engine.Position{X: 0, Y: 1}

		out := Instruction{Line: 10, Op: OpPickUp}.Execute(game)

		assert.Equal(t, fallThrough(), out)
		assert.True(t, game.Robot.Carrying)
	})

	t.Run("away from the object origin", func(t *testing.T) {
		game := newGame(t, "s2\nod")

		out := Instruction{Line: 10, Op: OpPickUp}.Execute(game)

		require.True(t, out.Terminate)
		assert.EqualError(t, out.Err, "Robot tried to pick up an object from the wrong place and broke its arm at line 10")
		assert.False(t, game.Robot.Carrying)
	})
}

func TestDrop(t *testing.T) {
	t.Run("on the drop zone", func(t *testing.T) {
		game := newGame(t, "s2\nod")
		game.Robot.Position = engine.Position{X: 1, Y: 1}
		game.Robot.Carrying = true

		out := Instruction{Line: 20, Op: OpDrop}.Execute(game)

		assert.False(t, out.Terminate)
		assert.False(t, game.Robot.Carrying)
		assert.True(t, game.ObjectDelivered)
	})

	t.Run("in the wrong place releases the object", func(t *testing.T) {
		game := newGame(t, "s2\nod")
		game.Robot.Carrying = true

		out := Instruction{Line: 20, Op: OpDrop}.Execute(game)

		require.True(t, out.Terminate)
		assert.EqualError(t, out.Err, "Robot tried to drop an object in the wrong place at line 20")
		assert.False(t, game.Robot.Carrying)
		assert.False(t, game.ObjectDelivered)
	})

	t.Run("while empty handed", func(t *testing.T) {
		game := newGame(t, "s2\nod")
		game.Robot.Position = engine.Position{X: 1, Y: 1}

		out := Instruction{Line: 20, Op: OpDrop}.Execute(game)

		require.True(t, out.Terminate)
		assert.EqualError(t, out.Err, "Robot tried to drop an object while not holding one at line 20")
		assert.False(t, game.ObjectDelivered)
	})
}

func TestGotoIfSensor(t *testing.T) {
	// Start is surrounded by a wall on the right and floor below
	tests := []struct {
		name   string
		sensor engine.Direction
		expect engine.TileKind
		jump   bool
	}{
		{"matching wall", engine.Right, engine.Wall, true},
		{"matching floor", engine.Down, engine.Floor, true},
		{"mismatched kind", engine.Right, engine.Floor, false},
		{"absent reading", engine.Up, engine.Void, false},
		{"absent reading left", engine.Left, engine.Wall, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			game := newGame(t, "s1\n2f")
			in := Instruction{Line: 10, Op: OpGotoIfSensor, Target: 40, Sensor: tt.sensor, Expect: tt.expect}

			out := in.Execute(game)

			assert.False(t, out.Terminate)
			assert.Equal(t, tt.jump, out.Jump)
			if tt.jump {
				assert.Equal(t, 40, out.Target)
			}
		})
	}
}

func TestGotoIfSensorUnknownSensor(t *testing.T) {
	game := newGame(t, "s2f")
	out := Instruction{Line: 10, Op: OpGotoIfSensor, Sensor: "NORTH", Expect: engine.Wall}.Execute(game)

	require.True(t, out.Terminate)
	assert.IsType(t, &InternalError{}, out.Err)
}

func TestMoveUnknownDirection(t *testing.T) {
	game := newGame(t, "s2f")
	out := Instruction{Line: 10, Op: OpMoveRight}.move(game, engine.Direction("NORTH"))

	require.True(t, out.Terminate)
	var internal *InternalError
	require.ErrorAs(t, out.Err, &internal)
	assert.Equal(t, 10, internal.Line)
	assert.Contains(t, internal.Msg, "unknown direction")
	assert.Equal(t, engine.Position{}, game.Robot.Position)
}

func TestMoveAndNoop(t *testing.T) {
	game := newGame(t, "s2f")

	assert.Equal(t, fallThrough(), Instruction{Line: 10, Op: OpNoop}.Execute(game))
	assert.Equal(t, engine.Position{}, game.Robot.Position)

	assert.Equal(t, fallThrough(), Instruction{Line: 20, Op: OpMoveRight}.Execute(game))
	assert.Equal(t, engine.Position{X: 1}, game.Robot.Position)

	assert.Equal(t, jumpTo(10), Instruction{Line: 30, Op: OpGoto, Target: 10}.Execute(game))
}
