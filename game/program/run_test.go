package program

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/robot-challenge/game/engine"
)

// warehouse: object right of start, drop zone below it, finish below that
const warehouse = "so2\n22d\n22f"

// sequence replays fixed choices, cycling when exhausted
type sequence []int

func (s *sequence) IntN(n int) int {
	v := (*s)[0]
	*s = append((*s)[1:], v)
	return v % n
}

func quietOptions() RunOptions {
	return RunOptions{
		RunID:  "run-1",
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func runSource(t *testing.T, mapText, source string, opts RunOptions) (Result, *engine.Game) {
	t.Helper()
	board, err := engine.DecodeMap("test", mapText)
	require.NoError(t, err)
	prog, err := Compile(source)
	require.NoError(t, err)

	game := engine.NewGame(board, "player-1")
	result, err := prog.Run(game, opts)
	require.NoError(t, err)
	return result, game
}

func TestRunReachingFinishWithoutDeliveryFails(t *testing.T) {
	result, game := runSource(t, "s2f", "10 RIGHT\n20 RIGHT", quietOptions())

	assert.False(t, result.Success)
	assert.Equal(t, msgIncomplete, result.Error)
	assert.Equal(t, 2, result.Steps)
	assert.Equal(t, 2, result.Instructions)
	assert.Equal(t, "run-1", result.RunID)
	assert.True(t, game.RobotAtFinish)
	assert.False(t, game.ObjectDelivered)
}

func TestRunWarehouseSucceeds(t *testing.T) {
	source := `10 RIGHT
20 PICK_UP
30 DOWN
40 RIGHT
50 DROP
60 DOWN`
	result, game := runSource(t, warehouse, source, quietOptions())

	assert.True(t, result.Success, result.Error)
	assert.Empty(t, result.Error)
	assert.Equal(t, 6, result.Steps)
	assert.Equal(t, 6, result.Instructions)
	assert.Equal(t, 60, result.LastLine)
	assert.Equal(t, engine.Position{X: 2, Y: 2}, result.Position)
	assert.True(t, game.IsWin())
}

func TestRunSensorLoop(t *testing.T) {
	mapText := "s22o\n000d\n000f"
	source := `10 RIGHT
20 GOTO 10 IF SENSOR RIGHT IS FLOOR
30 RIGHT
40 PICK_UP
50 DOWN
60 DROP
70 DOWN`
	result, _ := runSource(t, mapText, source, quietOptions())

	assert.True(t, result.Success, result.Error)
	assert.Equal(t, 9, result.Steps)
	assert.Equal(t, 7, result.Instructions)
}

func TestRunDoublePickUpFails(t *testing.T) {
	result, game := runSource(t, warehouse, "10 RIGHT\n20 PICK_UP\n30 PICK_UP", quietOptions())

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "already holding one")
	assert.Contains(t, result.Error, "line 30")
	assert.Equal(t, 3, result.Steps)
	assert.True(t, game.Robot.Carrying)
}

func TestRunInfiniteLoopExhaustsBudget(t *testing.T) {
	result, _ := runSource(t, "s2f", "10 GOTO 10", quietOptions())

	assert.False(t, result.Success)
	assert.Equal(t, MaxSteps, result.Steps)
	assert.Contains(t, result.Error, "Robot ran out of")
	assert.Contains(t, result.Error, "Last transmitted message:")
}

func TestRunBudgetBoundary(t *testing.T) {
	tests := []struct {
		lines     int
		wantSteps int
		exhausted bool
	}{
		{lines: MaxSteps - 1, wantSteps: MaxSteps - 1},
		{lines: MaxSteps, wantSteps: MaxSteps},
		{lines: MaxSteps + 1, wantSteps: MaxSteps, exhausted: true},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d lines", tt.lines), func(t *testing.T) {
			var sb strings.Builder
			for i := 1; i <= tt.lines; i++ {
				fmt.Fprintf(&sb, "%d NOOP\n", i)
			}
			result, _ := runSource(t, "s2f", sb.String(), quietOptions())

			assert.False(t, result.Success)
			assert.Equal(t, tt.wantSteps, result.Steps)
			assert.Equal(t, tt.lines, result.LastLine)
			if tt.exhausted {
				assert.True(t, strings.HasPrefix(result.Error, "Robot ran out of"), result.Error)
			} else {
				assert.Equal(t, msgIncomplete, result.Error)
			}
		})
	}
}

func TestRunExhaustionMessages(t *testing.T) {
	tests := []struct {
		name    string
		choices sequence
		want    string
	}{
		{
			"depleted battery",
			sequence{0, 0, 0},
			"Robot ran out of energy. Last transmitted message: My battery is low and it's getting dark.",
		},
		{
			"depleted power",
			sequence{0, 1, 2},
			"Robot ran out of power. Last transmitted message: When a robot dies, you don't have to write a letter to its mother.",
		},
		{
			"timeout addressing the player",
			sequence{1, 0},
			"Robot ran out of time. Last transmitted message: I'm afraid I can't do that, player-1.",
		},
		{
			"timeout without the player",
			sequence{1, 3},
			"Robot ran out of time. Last transmitted message: End of line.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := quietOptions()
			choices := tt.choices
			opts.Rand = &choices
			result, _ := runSource(t, "s2f", "10 NOOP\n20 GOTO 10", opts)

			assert.Equal(t, MaxSteps, result.Steps)
			assert.Equal(t, tt.want, result.Error)
		})
	}
}

func TestRunJumpToMissingLine(t *testing.T) {
	result, _ := runSource(t, "s2f", "10 GOTO 99", quietOptions())

	assert.False(t, result.Success)
	assert.Equal(t, "Attempted to jump to non-existent line 99", result.Error)
	assert.Equal(t, 1, result.Steps)
}

func TestRunRobotDestroyed(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
		steps  int
		line   int
	}{
		{"off the grid", "10 LEFT", "fell into the void", 1, 10},
		{"into the void", "10 DOWN", "fell into the void", 1, 10},
		{"into a wall", "10 RIGHT\n20 RIGHT", "hit a wall", 2, 20},
		{"later lines never run", "10 DOWN\n20 UP", "fell into the void", 1, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, _ := runSource(t, "s21f\n0222", tt.source, quietOptions())

			assert.False(t, result.Success)
			assert.Contains(t, result.Error, tt.want)
			assert.Equal(t, tt.steps, result.Steps)
			assert.Equal(t, tt.line, result.LastLine)
		})
	}
}

func TestRunSensorAbsentNeverMatches(t *testing.T) {
	// Nothing exists above row 0, so the jump must not be taken
	result, _ := runSource(t, "s2f", "10 GOTO 99 IF SENSOR UP IS VOID\n20 NOOP", quietOptions())

	assert.Equal(t, msgIncomplete, result.Error)
	assert.Equal(t, 2, result.Steps)
}

func TestRunJumpToLineZero(t *testing.T) {
	result, _ := runSource(t, "s2f", "0 RIGHT\n10 GOTO 0", quietOptions())

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "fell into the void")
	assert.Equal(t, 5, result.Steps)
}

func TestRunInternalError(t *testing.T) {
	board, err := engine.DecodeMap("test", "s2f")
	require.NoError(t, err)
	prog, err := New([]Instruction{{Line: 10, Op: Op(200)}})
	require.NoError(t, err)

	result, err := prog.Run(engine.NewGame(board, "player-1"), quietOptions())

	var internal *InternalError
	require.True(t, errors.As(err, &internal))
	assert.Equal(t, 10, internal.Line)
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "internal error")
}

func TestRunNotifiesListenersOnce(t *testing.T) {
	var calls []Completion
	record := ListenerFunc(func(c Completion) error {
		calls = append(calls, c)
		return nil
	})
	failing := ListenerFunc(func(Completion) error {
		return errors.New("listener down")
	})
	panicking := ListenerFunc(func(Completion) error {
		panic("boom")
	})

	opts := quietOptions()
	opts.Listeners = []Listener{failing, panicking, nil, record}
	result, game := runSource(t, warehouse, "10 RIGHT\n20 PICK_UP", opts)

	require.Len(t, calls, 1)
	assert.Equal(t, "run-1", calls[0].RunID)
	assert.Equal(t, result, calls[0].Result)
	assert.Same(t, game, calls[0].Game)
	assert.NoError(t, calls[0].Err)
}

func TestRunGeneratesRunID(t *testing.T) {
	opts := quietOptions()
	opts.RunID = ""
	result, _ := runSource(t, "s2f", "10 RIGHT", opts)

	assert.NotEmpty(t, result.RunID)
}

func TestStartDeliversCompletion(t *testing.T) {
	board, err := engine.DecodeMap("test", warehouse)
	require.NoError(t, err)
	prog, err := Compile("10 RIGHT\n20 PICK_UP\n30 DOWN\n40 RIGHT\n50 DROP\n60 DOWN")
	require.NoError(t, err)

	done := prog.Start(engine.NewGame(board, "player-1"), quietOptions())

	c, ok := <-done
	require.True(t, ok)
	assert.Equal(t, "run-1", c.RunID)
	assert.True(t, c.Result.Success)
	assert.NoError(t, c.Err)

	_, ok = <-done
	assert.False(t, ok, "channel should be closed after the completion")
}

func TestProgramRunsConcurrently(t *testing.T) {
	board, err := engine.DecodeMap("test", warehouse)
	require.NoError(t, err)
	prog, err := Compile("10 RIGHT\n20 PICK_UP\n30 DOWN\n40 RIGHT\n50 DROP\n60 DOWN")
	require.NoError(t, err)

	const runs = 8
	results := make([]Result, runs)
	var wg sync.WaitGroup
	for i := range runs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], _ = prog.Run(engine.NewGame(board, "player-1"), RunOptions{
				Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
			})
		}()
	}
	wg.Wait()

	for _, r := range results {
		assert.True(t, r.Success)
		assert.Equal(t, 6, r.Steps)
	}
}
