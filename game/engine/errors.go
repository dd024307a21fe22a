package engine

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownTile       = errors.New("unknown tile value")
	ErrMissingStart      = errors.New("no start position found")
	ErrDuplicateLandmark = errors.New("duplicate landmark")
	ErrInvalidChallenge  = errors.New("invalid challenge")
	ErrUnknownDirection  = errors.New("unknown direction")
)

// MapError is returned when map text cannot be decoded into a board
type MapError struct {
	Challenge string
	Value     string
	Err       error
}

func (e *MapError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("unable to create board for challenge %s: %v %s", e.Challenge, e.Err, e.Value)
	}
	return fmt.Sprintf("unable to create board for challenge %s: %v", e.Challenge, e.Err)
}

func (e *MapError) Unwrap() error {
	return e.Err
}

// RobotError reports a condition that destroys the robot, ending the attempt
type RobotError struct {
	Line   int
	Reason string
}

func (e *RobotError) Error() string {
	return fmt.Sprintf("%s at line %d", e.Reason, e.Line)
}

const (
	reasonVoid = "We lost contact with the robot. It fell into the void."
	reasonWall = "We lost contact with the robot. It hit a wall."
)
