package service

import (
	"time"

	"github.com/wricardo/robot-challenge/game/engine"
	"github.com/wricardo/robot-challenge/game/program"
)

// Attempt statuses
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
)

// ChallengeInfo describes a challenge and its initial map
type ChallengeInfo struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Author      string   `json:"author,omitempty"`
	Layout      []string `json:"layout"`
	Map         string   `json:"map"`
	Width       int      `json:"width"`
	Height      int      `json:"height"`
}

// CompileResult reports whether a program compiled, and what it compiled to
type CompileResult struct {
	Valid        bool     `json:"valid"`
	Instructions int      `json:"instructions"`
	Listing      []string `json:"listing,omitempty"`
	Duplicates   []int    `json:"duplicates,omitempty"`
	Error        string   `json:"error,omitempty"`
	Line         int      `json:"line,omitempty"`
	SourceLine   int      `json:"source_line,omitempty"`
}

// SolveResult is the outcome of running a program against a challenge. When
// the program does not compile, CompileError is set and nothing was run.
type SolveResult struct {
	AttemptID    string          `json:"attempt_id,omitempty"`
	RunID        string          `json:"run_id,omitempty"`
	Challenge    string          `json:"challenge"`
	Player       string          `json:"player_id"`
	Result       *program.Result `json:"result,omitempty"`
	CompileError string          `json:"compile_error,omitempty"`
	FinalMap     string          `json:"final_map,omitempty"`
}

// AttemptInfo describes one player's attempt at a challenge
type AttemptInfo struct {
	ID          string          `json:"id"`
	PlayerID    string          `json:"player_id"`
	Challenge   string          `json:"challenge"`
	Status      string          `json:"status"`
	Source      string          `json:"source,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
	Result      *program.Result `json:"result,omitempty"`
	Map         string          `json:"map,omitempty"`
}

// HelpInfo carries the player-facing reference texts
type HelpInfo struct {
	LanguageReference string `json:"language_reference"`
	MapLegend         string `json:"map_legend"`
}

// Attempt is a stored attempt. The Game belongs to the attempt's single run
// and must not be read until Result is set.
type Attempt struct {
	ID             string
	PlayerID       string
	Challenge      *engine.Challenge
	Game           *engine.Game
	Source         string
	Result         *program.Result
	CreatedAt      time.Time
	LastAccessedAt time.Time
	CompletedAt    time.Time
}

// Status returns StatusCompleted once a result is recorded
func (a *Attempt) Status() string {
	if a.Result != nil {
		return StatusCompleted
	}
	return StatusRunning
}
