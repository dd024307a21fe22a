package program

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInstruction = errors.New("not a valid instruction")
	ErrUnknownCommand     = errors.New("not a known command")
	ErrEmptyProgram       = errors.New("program has no instructions")
)

const formatHint = "Please make sure to follow the following format: <line_number> <command> // <comment>"

// CompileError describes a source line the compiler rejected. Line is the
// declared line number when the line got far enough to have one, otherwise 0.
// SourceLine is the 1-based position of the line in the program text.
type CompileError struct {
	Line       int
	SourceLine int
	Source     string
	Err        error
}

func (e *CompileError) Error() string {
	switch {
	case errors.Is(e.Err, ErrUnknownCommand):
		return fmt.Sprintf("unable to compile program: %q is %v on line %d. %s", e.Source, e.Err, e.Line, formatHint)
	case errors.Is(e.Err, ErrEmptyProgram):
		return fmt.Sprintf("unable to compile program: %v", e.Err)
	default:
		return fmt.Sprintf("unable to compile program: line %q is %v. %s", e.Source, e.Err, formatHint)
	}
}

func (e *CompileError) Unwrap() error {
	return e.Err
}

// InternalError signals an instruction the compiler should never have
// produced. Seeing one means the compiler has a bug.
type InternalError struct {
	Line int
	Msg  string
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("internal error: %s on line %d", e.Msg, e.Line)
}
