package engine

import (
	"fmt"
	"regexp"
	"strings"
)

// Challenge is a named map that players write programs for. It is loaded from
// JSON or HCL challenge files, or created at runtime.
type Challenge struct {
	Name        string   `json:"name" hcl:"name,label"`
	Description string   `json:"description,omitempty" hcl:"description,optional"`
	Author      string   `json:"author,omitempty" hcl:"author,optional"`
	Layout      []string `json:"layout" hcl:"layout"`
}

var challengeNamePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]*$`)

// MapText joins the layout rows into map text
func (c *Challenge) MapText() string {
	return strings.Join(c.Layout, "\n")
}

// NewBoard decodes a fresh board for the challenge. Every attempt needs its own.
func (c *Challenge) NewBoard() (*Board, error) {
	return DecodeMap(c.Name, c.MapText())
}

// ValidateChallenge checks the name and decodes the layout. With strict set,
// repeated landmarks are rejected instead of resolved first-wins.
func ValidateChallenge(c *Challenge, strict bool) error {
	if c == nil {
		return fmt.Errorf("%w: challenge is nil", ErrInvalidChallenge)
	}
	if !challengeNamePattern.MatchString(c.Name) {
		return fmt.Errorf("%w: name %q must be alphanumeric (with _ . -)", ErrInvalidChallenge, c.Name)
	}
	if len(c.Layout) == 0 {
		return fmt.Errorf("%w: layout is empty", ErrInvalidChallenge)
	}

	board, err := c.NewBoard()
	if err != nil {
		return err
	}

	if strict {
		if dups := board.Duplicates(); len(dups) > 0 {
			return &MapError{Challenge: c.Name, Value: fmt.Sprint(dups), Err: ErrDuplicateLandmark}
		}
	}

	return nil
}
