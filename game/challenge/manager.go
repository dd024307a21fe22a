package challenge

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/wricardo/robot-challenge/game/engine"
)

var (
	ErrChallengeNotFound = errors.New("challenge not found")
	ErrChallengeExists   = errors.New("name already exists")
)

// Options configures a Manager
type Options struct {
	// Strict rejects maps that declare a landmark more than once
	Strict bool
	Logger *slog.Logger
}

// Manager is the challenge catalogue. Challenges are loaded from a directory
// and cached in memory; challenges added at runtime are written back to the
// directory as JSON. An empty directory keeps the catalogue in memory only.
type Manager struct {
	dir        string
	strict     bool
	logger     *slog.Logger
	challenges map[string]*engine.Challenge
	mu         sync.RWMutex
}

// NewManager creates a manager and loads every challenge file in dir
func NewManager(dir string, opts Options) (*Manager, error) {
	if dir != "" {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			return nil, fmt.Errorf("challenges directory does not exist: %s", dir)
		}
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	m := &Manager{
		dir:        dir,
		strict:     opts.Strict,
		logger:     logger.With("component", "challenges"),
		challenges: make(map[string]*engine.Challenge),
	}

	if err := m.Reload(); err != nil {
		return nil, fmt.Errorf("failed to load challenges: %w", err)
	}

	return m, nil
}

// Reload clears the cache and reads the directory again. Invalid files and
// invalid challenges are skipped with a warning.
func (m *Manager) Reload() error {
	loaded := make(map[string]*engine.Challenge)

	if m.dir != "" {
		entries, err := os.ReadDir(m.dir)
		if err != nil {
			return fmt.Errorf("failed to read challenges directory: %w", err)
		}

		parser := hclparse.NewParser()
		for _, entry := range entries {
			if entry.IsDir() || !IsChallengeFile(entry.Name()) {
				continue
			}

			path := filepath.Join(m.dir, entry.Name())
			var challenges []*engine.Challenge
			if strings.EqualFold(filepath.Ext(path), ".hcl") {
				challenges, err = loadHCL(path, parser)
			} else {
				challenges, err = loadJSON(path)
			}
			if err != nil {
				m.logger.Warn("skipping challenge file", "file", entry.Name(), "error", err)
				continue
			}

			for _, c := range challenges {
				if err := engine.ValidateChallenge(c, m.strict); err != nil {
					m.logger.Warn("skipping invalid challenge", "file", entry.Name(), "challenge", c.Name, "error", err)
					continue
				}
				if _, exists := loaded[c.Name]; exists {
					m.logger.Warn("skipping duplicate challenge", "file", entry.Name(), "challenge", c.Name)
					continue
				}
				loaded[c.Name] = c
			}
		}
	}

	m.mu.Lock()
	m.challenges = loaded
	m.mu.Unlock()

	m.logger.Info("challenges loaded", "count", len(loaded), "dir", m.dir)
	return nil
}

// Get returns a challenge by name
func (m *Manager) Get(name string) (*engine.Challenge, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, exists := m.challenges[name]
	if !exists {
		return nil, ErrChallengeNotFound
	}
	return c, nil
}

// List returns all challenges sorted by name
func (m *Manager) List() []*engine.Challenge {
	m.mu.RLock()
	list := make([]*engine.Challenge, 0, len(m.challenges))
	for _, c := range m.challenges {
		list = append(list, c)
	}
	m.mu.RUnlock()

	slices.SortFunc(list, func(a, b *engine.Challenge) int {
		return strings.Compare(a.Name, b.Name)
	})
	return list
}

// Add validates and stores a new challenge. The map is decoded before the
// name is checked, so a bad map reports a MapError even for a taken name.
func (m *Manager) Add(c *engine.Challenge) error {
	if err := engine.ValidateChallenge(c, m.strict); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.challenges[c.Name]; exists {
		return fmt.Errorf("%w: %s", ErrChallengeExists, c.Name)
	}

	if err := m.save(c); err != nil {
		return err
	}

	m.challenges[c.Name] = c
	m.logger.Info("challenge added", "challenge", c.Name, "author", c.Author)
	return nil
}

// Remove deletes a challenge from the catalogue and from disk
func (m *Manager) Remove(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.challenges[name]; !exists {
		return ErrChallengeNotFound
	}

	if m.dir != "" {
		err := os.Remove(m.path(name))
		if err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove challenge file: %w", err)
		}
	}

	delete(m.challenges, name)
	return nil
}

// Count returns the number of challenges in the catalogue
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.challenges)
}

// save writes the challenge as JSON. Caller must hold the write lock.
func (m *Manager) save(c *engine.Challenge) error {
	if m.dir == "" {
		return nil
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal challenge: %w", err)
	}

	if err := os.WriteFile(m.path(c.Name), data, 0644); err != nil {
		return fmt.Errorf("failed to write challenge file: %w", err)
	}
	return nil
}

func (m *Manager) path(name string) string {
	return filepath.Join(m.dir, name+".json")
}
