package service

import (
	"context"
	"errors"
	"time"

	"github.com/wricardo/robot-challenge/game/engine"
	"github.com/wricardo/robot-challenge/game/program"
)

// ErrInvalidPlayer is returned when a solve request has no player id
var ErrInvalidPlayer = errors.New("player id is required")

// GameService defines all game-related operations
type GameService interface {
	// Challenges
	ListChallenges(ctx context.Context) ([]*ChallengeInfo, error)
	GetChallenge(ctx context.Context, name string) (*ChallengeInfo, error)
	CreateChallenge(ctx context.Context, challenge *engine.Challenge) (*ChallengeInfo, error)

	// Programs
	Compile(ctx context.Context, source string) (*CompileResult, error)
	Solve(ctx context.Context, challengeName, playerID, source string) (*SolveResult, error)

	// Attempts
	GetAttempt(ctx context.Context, id string) (*AttemptInfo, error)
	ListAttempts(ctx context.Context, playerID string) ([]*AttemptInfo, error)
	DeleteAttempt(ctx context.Context, id string) error

	Help(ctx context.Context) *HelpInfo
}

// SessionManager defines attempt storage operations
type SessionManager interface {
	Create(challenge *engine.Challenge, playerID, source string) (*Attempt, error)
	Get(id string) (*Attempt, error)
	List() []*Attempt
	ListByPlayer(playerID string) []*Attempt
	Complete(id string, result program.Result) error
	Delete(id string) error
	CleanupExpired(maxAge time.Duration) int
}

// ChallengeManager is the challenge catalogue
type ChallengeManager interface {
	Get(name string) (*engine.Challenge, error)
	List() []*engine.Challenge
	Add(challenge *engine.Challenge) error
}

// Notifier is told about every finished run
type Notifier interface {
	NotifyRunCompleted(playerID string, result *SolveResult)
}
