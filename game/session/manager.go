package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/wricardo/robot-challenge/game/engine"
	"github.com/wricardo/robot-challenge/game/program"
	"github.com/wricardo/robot-challenge/game/service"
)

var (
	ErrAttemptNotFound  = errors.New("attempt not found")
	ErrAlreadyCompleted = errors.New("attempt already completed")
	ErrInvalidPlayerID  = errors.New("invalid player ID")
)

// maxIDAttempts bounds the retries when a generated ID collides
const maxIDAttempts = 16

// Manager handles the lifecycle of attempts. Every attempt gets its own board
// and robot, so attempts never share simulated state.
type Manager struct {
	attempts map[string]*service.Attempt
	logger   *slog.Logger
	now      func() time.Time
	mu       sync.RWMutex
}

// NewManager creates a new attempt manager
func NewManager(logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		attempts: make(map[string]*service.Attempt),
		logger:   logger.With("component", "attempts"),
		now:      time.Now,
	}
}

// Create starts a new attempt for playerID with a freshly decoded board
func (m *Manager) Create(challenge *engine.Challenge, playerID, source string) (*service.Attempt, error) {
	if strings.TrimSpace(playerID) == "" {
		return nil, ErrInvalidPlayerID
	}

	board, err := challenge.NewBoard()
	if err != nil {
		return nil, fmt.Errorf("failed to create board: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	id, err := m.generateID()
	if err != nil {
		return nil, err
	}

	now := m.now()
	attempt := &service.Attempt{
		ID:             id,
		PlayerID:       playerID,
		Challenge:      challenge,
		Game:           engine.NewGame(board, playerID),
		Source:         source,
		CreatedAt:      now,
		LastAccessedAt: now,
	}
	m.attempts[id] = attempt

	m.logger.Debug("attempt created", "attempt", id, "player", playerID, "challenge", challenge.Name)
	return snapshot(attempt), nil
}

// Get returns a snapshot of an attempt (case-insensitive ID)
func (m *Manager) Get(id string) (*service.Attempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	attempt, exists := m.attempts[strings.ToLower(id)]
	if !exists {
		return nil, ErrAttemptNotFound
	}
	attempt.LastAccessedAt = m.now()
	return snapshot(attempt), nil
}

// List returns snapshots of every attempt, oldest first
func (m *Manager) List() []*service.Attempt {
	return m.filter(func(*service.Attempt) bool { return true })
}

// ListByPlayer returns snapshots of playerID's attempts, oldest first
func (m *Manager) ListByPlayer(playerID string) []*service.Attempt {
	return m.filter(func(a *service.Attempt) bool { return a.PlayerID == playerID })
}

// Complete records the result of the attempt's run. A result is recorded once.
func (m *Manager) Complete(id string, result program.Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	attempt, exists := m.attempts[strings.ToLower(id)]
	if !exists {
		return ErrAttemptNotFound
	}
	if attempt.Result != nil {
		return ErrAlreadyCompleted
	}

	now := m.now()
	attempt.Result = &result
	attempt.CompletedAt = now
	attempt.LastAccessedAt = now
	return nil
}

// Delete removes an attempt
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := strings.ToLower(id)
	if _, exists := m.attempts[key]; !exists {
		return ErrAttemptNotFound
	}
	delete(m.attempts, key)
	return nil
}

// CleanupExpired removes completed attempts that haven't been accessed in maxAge
func (m *Manager) CleanupExpired(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().Add(-maxAge)
	removed := 0

	for id, attempt := range m.attempts {
		if attempt.Result != nil && attempt.LastAccessedAt.Before(cutoff) {
			delete(m.attempts, id)
			removed++
		}
	}

	if removed > 0 {
		m.logger.Info("expired attempts removed", "count", removed)
	}
	return removed
}

// RunCleanup calls CleanupExpired every interval until ctx is done
func (m *Manager) RunCleanup(ctx context.Context, interval, maxAge time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.CleanupExpired(maxAge)
		}
	}
}

// Count returns the number of stored attempts
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.attempts)
}

func (m *Manager) filter(keep func(*service.Attempt) bool) []*service.Attempt {
	m.mu.RLock()
	result := make([]*service.Attempt, 0, len(m.attempts))
	for _, attempt := range m.attempts {
		if keep(attempt) {
			result = append(result, snapshot(attempt))
		}
	}
	m.mu.RUnlock()

	slices.SortFunc(result, func(a, b *service.Attempt) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return result
}

// generateID returns an unused random 4-character hex ID. Caller must hold the write lock.
func (m *Manager) generateID() (string, error) {
	bytes := make([]byte, 2)
	for range maxIDAttempts {
		if _, err := rand.Read(bytes); err != nil {
			return "", fmt.Errorf("failed to generate attempt ID: %w", err)
		}
		id := hex.EncodeToString(bytes)
		if _, exists := m.attempts[id]; !exists {
			return id, nil
		}
	}
	return "", fmt.Errorf("failed to generate a unique attempt ID after %d tries", maxIDAttempts)
}

// snapshot copies the attempt so callers never observe later updates
func snapshot(a *service.Attempt) *service.Attempt {
	cp := *a
	return &cp
}
