package program

import (
	"fmt"
	"log/slog"

	"github.com/wricardo/robot-challenge/game/engine"
)

// Completion is delivered to listeners once a run reaches a terminal state
type Completion struct {
	RunID   string
	Program *Program
	Game    *engine.Game
	Result  Result
	// Err carries an InternalError, if the run produced one
	Err error
}

// Listener observes finished runs
type Listener interface {
	RunCompleted(c Completion) error
}

// ListenerFunc adapts a function to the Listener interface
type ListenerFunc func(c Completion) error

func (f ListenerFunc) RunCompleted(c Completion) error {
	return f(c)
}

// notify invokes every listener exactly once. A failing or panicking listener
// is logged and does not prevent the rest from being called.
func notify(logger *slog.Logger, listeners []Listener, c Completion) {
	for i, l := range listeners {
		if l == nil {
			continue
		}
		if err := safeCall(l, c); err != nil {
			logger.Warn("run listener failed", "listener", i, "error", err)
		}
	}
}

func safeCall(l Listener, c Completion) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("listener panicked: %v", r)
		}
	}()
	return l.RunCompleted(c)
}
