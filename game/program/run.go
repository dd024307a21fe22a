package program

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"

	"github.com/google/uuid"

	"github.com/wricardo/robot-challenge/game/engine"
)

// MaxSteps is the execution budget of one run. It is the only guard against
// programs that never terminate.
const MaxSteps = 1000

const (
	msgIncomplete = "The robot didn't perform all the required tasks."
	msgBadJump    = "Attempted to jump to non-existent line %d"
)

// Result is the outcome of one run
type Result struct {
	RunID        string          `json:"run_id"`
	Success      bool            `json:"success"`
	Instructions int             `json:"instructions"`
	Steps        int             `json:"steps"`
	Error        string          `json:"error,omitempty"`
	LastLine     int             `json:"last_line"`
	Position     engine.Position `json:"position"`
}

// Chooser picks a pseudo-random index in [0, n). *rand.Rand satisfies it.
type Chooser interface {
	IntN(n int) int
}

type globalChooser struct{}

func (globalChooser) IntN(n int) int { return rand.IntN(n) }

// RunOptions configures a single run
type RunOptions struct {
	// RunID identifies the run in logs and notifications. Generated when empty.
	RunID string
	// Logger receives the execution trace. Defaults to slog.Default().
	Logger *slog.Logger
	// Rand selects the flavor text of budget failures. Defaults to math/rand.
	Rand Chooser
	// Listeners are notified exactly once when the run reaches a terminal state.
	Listeners []Listener
}

// Run executes the program against g until it succeeds, fails, or exhausts
// MaxSteps. Every failure of the attempt is reported in the Result; the error
// is non-nil only for an InternalError, which indicates a compiler bug.
func (p *Program) Run(g *engine.Game, opts RunOptions) (Result, error) {
	if opts.RunID == "" {
		opts.RunID = uuid.NewString()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Rand == nil {
		opts.Rand = globalChooser{}
	}

	logger := opts.Logger.With("run_id", opts.RunID, "player", g.PlayerID, "challenge", g.Challenge)
	logger.Info("starting program", "instructions", p.Len(), "first_line", p.First())

	result, err := p.execute(g, logger, opts.Rand)
	result.RunID = opts.RunID

	if result.Success {
		logger.Info("program succeeded", "steps", result.Steps)
	} else {
		logger.Info("program failed", "steps", result.Steps, "reason", result.Error)
	}

	notify(logger, opts.Listeners, Completion{
		RunID:   opts.RunID,
		Program: p,
		Game:    g,
		Result:  result,
		Err:     err,
	})

	return result, err
}

// Start runs the program on its own goroutine. The returned channel yields the
// completion once and is then closed.
func (p *Program) Start(g *engine.Game, opts RunOptions) <-chan Completion {
	if opts.RunID == "" {
		opts.RunID = uuid.NewString()
	}
	done := make(chan Completion, 1)
	go func() {
		defer close(done)
		result, err := p.Run(g, opts)
		done <- Completion{RunID: opts.RunID, Program: p, Game: g, Result: result, Err: err}
	}()
	return done
}

func (p *Program) execute(g *engine.Game, logger *slog.Logger, chooser Chooser) (Result, error) {
	pc := p.First()
	steps := 0

	finish := func(success bool, reason string) Result {
		return Result{
			Success:      success,
			Instructions: p.Len(),
			Steps:        steps,
			Error:        reason,
			LastLine:     pc,
			Position:     g.Robot.Position,
		}
	}

	for {
		if steps >= MaxSteps {
			return finish(false, exhaustedMessage(chooser, g.PlayerID)), nil
		}

		in := p.instructions[pc]
		outcome := in.Execute(g)
		steps++
		logger.Debug("executed instruction", "line", pc, "instruction", in.String(), "jump", outcome.Jump, "target", outcome.Target)

		if outcome.Terminate {
			var internal *InternalError
			if errors.As(outcome.Err, &internal) {
				logger.Error("internal error while executing program", "line", pc, "error", internal)
				return finish(false, internal.Error()), internal
			}
			return finish(false, outcome.Err.Error()), nil
		}

		if outcome.Jump {
			if _, ok := p.instructions[outcome.Target]; !ok {
				return finish(false, fmt.Sprintf(msgBadJump, outcome.Target)), nil
			}
			pc = outcome.Target
			continue
		}

		next, ok := p.Next(pc)
		if !ok {
			if g.IsWin() {
				return finish(true, ""), nil
			}
			return finish(false, msgIncomplete), nil
		}
		pc = next
	}
}

var (
	depletedResources = []string{"energy", "power", "batteries"}
	depletedMessages  = []string{
		"My battery is low and it's getting dark.",
		"For a moment, nothing happened. Then, after a second or so, nothing continued to happen.",
		"When a robot dies, you don't have to write a letter to its mother.",
	}
	timeoutMessages = []string{
		"I'm afraid I can't do that, %s.",
		"I'm sorry %s, I'm afraid I can't do that.",
		"Does this unit have a soul?",
		"End of line.",
		"I sense injuries. The data could be called pain.",
	}
)

// exhaustedMessage picks the flavor text for a run that used up MaxSteps
func exhaustedMessage(chooser Chooser, player string) string {
	var resource, last string
	if chooser.IntN(2) == 0 {
		resource = depletedResources[chooser.IntN(len(depletedResources))]
		last = depletedMessages[chooser.IntN(len(depletedMessages))]
	} else {
		resource = "time"
		last = timeoutMessages[chooser.IntN(len(timeoutMessages))]
		if strings.Contains(last, "%s") {
			last = fmt.Sprintf(last, player)
		}
	}
	return fmt.Sprintf("Robot ran out of %s. Last transmitted message: %s", resource, last)
}
