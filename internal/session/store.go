// Package session persists authenticated sessions between runs.
package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/eshaffer321/restcore-go/internal/types"
	"github.com/pkg/errors"
)

var (
	// ErrNoSession is returned when no session is held or stored
	ErrNoSession = errors.New("no session")

	// ErrSessionExpired is returned when a stored session has expired
	ErrSessionExpired = errors.New("session expired")
)

// Store holds the current session and optionally mirrors it to a file
type Store struct {
	path    string
	logger  types.Logger
	now     func() time.Time
	mu      sync.RWMutex
	session *types.Session
}

// NewStore creates a store. An empty path disables persistence.
func NewStore(path string, logger types.Logger) *Store {
	return &Store{
		path:   path,
		logger: logger,
		now:    time.Now,
	}
}

// Get returns a copy of the current session
func (s *Store) Get() (types.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.session == nil {
		return types.Session{}, ErrNoSession
	}
	return *s.session, nil
}

// Set replaces the current session and persists it when a path is configured
func (s *Store) Set(session types.Session) error {
	s.mu.Lock()
	s.session = &session
	s.mu.Unlock()

	if s.path == "" {
		return nil
	}
	return s.Save(s.path)
}

// Clear forgets the current session and removes the session file
func (s *Store) Clear() error {
	s.mu.Lock()
	s.session = nil
	s.mu.Unlock()

	if s.path == "" {
		return nil
	}
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "failed to remove session file")
	}
	return nil
}

// Save writes the session to path
func (s *Store) Save(path string) error {
	session, err := s.Get()
	if err != nil {
		return err
	}

	// Create directory if needed
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return errors.Wrap(err, "failed to create session directory")
	}

	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal session")
	}

	// Write to file with restrictive permissions
	if err := os.WriteFile(path, data, 0600); err != nil {
		return errors.Wrap(err, "failed to write session file")
	}

	if s.logger != nil {
		s.logger.Info("Session saved", "path", path)
	}

	return nil
}

// Load reads a session from path and makes it current
func (s *Store) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return ErrNoSession
		}
		return errors.Wrap(err, "failed to read session file")
	}

	var session types.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return errors.Wrap(err, "failed to unmarshal session")
	}

	// Check expiry
	if session.IsExpired(s.now()) && session.RefreshToken == "" {
		return ErrSessionExpired
	}

	s.mu.Lock()
	s.session = &session
	s.mu.Unlock()

	if s.logger != nil {
		s.logger.Info("Session loaded", "path", path, "user", session.UserID)
	}

	return nil
}
