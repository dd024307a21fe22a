package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/wricardo/robot-challenge/game/engine"
	"github.com/wricardo/robot-challenge/game/program"
)

// Options configures the game service
type Options struct {
	Logger *slog.Logger
	// Notifier, when set, is told about every finished run
	Notifier Notifier
	// Rand overrides the source used for run flavor texts
	Rand program.Chooser
}

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions   SessionManager
	challenges ChallengeManager
	notifier   Notifier
	rand       program.Chooser
	logger     *slog.Logger
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, challenges ChallengeManager, opts Options) GameService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &gameServiceImpl{
		sessions:   sessions,
		challenges: challenges,
		notifier:   opts.Notifier,
		rand:       opts.Rand,
		logger:     logger,
	}
}

// ListChallenges returns every challenge with its rendered map
func (s *gameServiceImpl) ListChallenges(ctx context.Context) ([]*ChallengeInfo, error) {
	challenges := s.challenges.List()
	result := make([]*ChallengeInfo, 0, len(challenges))
	for _, c := range challenges {
		info, err := challengeInfo(c)
		if err != nil {
			s.logger.Warn("skipping unrenderable challenge", "challenge", c.Name, "error", err)
			continue
		}
		result = append(result, info)
	}
	return result, nil
}

// GetChallenge returns one challenge with its rendered map
func (s *gameServiceImpl) GetChallenge(ctx context.Context, name string) (*ChallengeInfo, error) {
	c, err := s.challenges.Get(name)
	if err != nil {
		return nil, fmt.Errorf("challenge %s: %w", name, err)
	}
	return challengeInfo(c)
}

// CreateChallenge adds a challenge to the catalogue
func (s *gameServiceImpl) CreateChallenge(ctx context.Context, challenge *engine.Challenge) (*ChallengeInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if challenge == nil {
		return nil, fmt.Errorf("%w: challenge is required", engine.ErrInvalidChallenge)
	}
	if err := s.challenges.Add(challenge); err != nil {
		return nil, fmt.Errorf("failed to create challenge: %w", err)
	}
	return challengeInfo(challenge)
}

// Compile checks a program without running it
func (s *gameServiceImpl) Compile(ctx context.Context, source string) (*CompileResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prog, err := program.Compile(source)
	if err != nil {
		var compileErr *program.CompileError
		if errors.As(err, &compileErr) {
			return &CompileResult{
				Error:      compileErr.Error(),
				Line:       compileErr.Line,
				SourceLine: compileErr.SourceLine,
			}, nil
		}
		return nil, err
	}

	listing := prog.Listing()
	result := &CompileResult{
		Valid:        true,
		Instructions: prog.Len(),
		Listing:      make([]string, 0, len(listing)),
		Duplicates:   prog.Duplicates(),
	}
	for _, in := range listing {
		result.Listing = append(result.Listing, in.String())
	}
	return result, nil
}

// Solve compiles source and runs it against a fresh attempt at the challenge.
// A program that does not compile yields a SolveResult with CompileError set.
func (s *gameServiceImpl) Solve(ctx context.Context, challengeName, playerID, source string) (*SolveResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	playerID = strings.TrimSpace(playerID)
	if playerID == "" {
		return nil, ErrInvalidPlayer
	}

	challenge, err := s.challenges.Get(challengeName)
	if err != nil {
		return nil, fmt.Errorf("challenge %s: %w", challengeName, err)
	}

	prog, err := program.Compile(source)
	if err != nil {
		var compileErr *program.CompileError
		if errors.As(err, &compileErr) {
			return &SolveResult{
				Challenge:    challenge.Name,
				Player:       playerID,
				CompileError: compileErr.Error(),
			}, nil
		}
		return nil, err
	}

	attempt, err := s.sessions.Create(challenge, playerID, source)
	if err != nil {
		return nil, fmt.Errorf("failed to create attempt: %w", err)
	}

	// The notifier receives the returned result even if Complete fails.
	var solved *SolveResult
	record := program.ListenerFunc(func(done program.Completion) error {
		result := done.Result
		solved = &SolveResult{
			AttemptID: attempt.ID,
			RunID:     done.RunID,
			Challenge: challenge.Name,
			Player:    playerID,
			Result:    &result,
			FinalMap:  done.Game.Render(),
		}
		if s.notifier != nil {
			defer s.notifier.NotifyRunCompleted(playerID, solved)
		}
		return s.sessions.Complete(attempt.ID, result)
	})

	_, err = prog.Run(attempt.Game, program.RunOptions{
		Logger:    s.logger.With("attempt", attempt.ID),
		Rand:      s.rand,
		Listeners: []program.Listener{record},
	})
	if err != nil {
		return nil, fmt.Errorf("program run failed: %w", err)
	}

	return solved, nil
}

// GetAttempt retrieves attempt information
func (s *gameServiceImpl) GetAttempt(ctx context.Context, id string) (*AttemptInfo, error) {
	attempt, err := s.sessions.Get(id)
	if err != nil {
		return nil, fmt.Errorf("attempt %s: %w", id, err)
	}
	return attemptInfo(attempt), nil
}

// ListAttempts returns the attempts of playerID, or every attempt when playerID is empty
func (s *gameServiceImpl) ListAttempts(ctx context.Context, playerID string) ([]*AttemptInfo, error) {
	var attempts []*Attempt
	if playerID == "" {
		attempts = s.sessions.List()
	} else {
		attempts = s.sessions.ListByPlayer(playerID)
	}

	result := make([]*AttemptInfo, 0, len(attempts))
	for _, a := range attempts {
		result = append(result, attemptInfo(a))
	}
	return result, nil
}

// DeleteAttempt removes an attempt
func (s *gameServiceImpl) DeleteAttempt(ctx context.Context, id string) error {
	if err := s.sessions.Delete(id); err != nil {
		return fmt.Errorf("attempt %s: %w", id, err)
	}
	return nil
}

// Help returns the language reference and the map legend
func (s *gameServiceImpl) Help(ctx context.Context) *HelpInfo {
	return &HelpInfo{
		LanguageReference: program.LanguageReference,
		MapLegend:         engine.MapLegend,
	}
}

func challengeInfo(c *engine.Challenge) (*ChallengeInfo, error) {
	board, err := c.NewBoard()
	if err != nil {
		return nil, err
	}

	width := 0
	for _, row := range board.Tiles {
		width = max(width, len(row))
	}

	return &ChallengeInfo{
		Name:        c.Name,
		Description: c.Description,
		Author:      c.Author,
		Layout:      c.Layout,
		Map:         board.Render(),
		Width:       width,
		Height:      len(board.Tiles),
	}, nil
}

// attemptInfo summarizes an attempt. The game is only rendered once the run
// has finished with it.
func attemptInfo(a *Attempt) *AttemptInfo {
	info := &AttemptInfo{
		ID:        a.ID,
		PlayerID:  a.PlayerID,
		Challenge: a.Challenge.Name,
		Status:    a.Status(),
		Source:    a.Source,
		CreatedAt: a.CreatedAt,
		Result:    a.Result,
	}
	if a.Result != nil {
		completed := a.CompletedAt
		info.CompletedAt = &completed
		info.Map = a.Game.Render()
	}
	return info
}
