package client

import (
	"encoding/json"
	"errors"
	"os"
	"sync"
)

// ErrNotFound is returned by Storage.Get when no session is persisted.
var ErrNotFound = errors.New("client: session not found")

// Storage persists a serialized session between runs.
type Storage interface {
	Get() ([]byte, error)
	Set(data []byte) error
	Remove() error
}

// FileStorage keeps the session in a single file, owner-readable only.
type FileStorage struct {
	Path string
}

func (s *FileStorage) Get() ([]byte, error) {
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	return data, err
}

func (s *FileStorage) Set(data []byte) error {
	return os.WriteFile(s.Path, data, 0o600)
}

func (s *FileStorage) Remove() error {
	err := os.Remove(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// SessionStore owns the current session for one app instance. Callers hold
// navigation until Loaded reports true, then read Current and subscribe for
// changes.
type SessionStore struct {
	mu      sync.RWMutex
	storage Storage
	current *Session
	loaded  bool
	subs    []func(*Session)
}

// NewSessionStore creates a store backed by the given storage. Call Load
// before reading Current.
func NewSessionStore(storage Storage) *SessionStore {
	return &SessionStore{storage: storage}
}

// Load restores a persisted session if one exists. A corrupt or missing
// record leaves the store empty rather than failing startup.
func (s *SessionStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loaded {
		return nil
	}
	s.loaded = true

	data, err := s.storage.Get()
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil || session.Token == "" {
		return nil
	}
	s.current = &session
	return nil
}

// Loaded reports whether Load has completed.
func (s *SessionStore) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Current returns the active session, or nil when signed out.
func (s *SessionStore) Current() *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Set persists the session, then notifies subscribers.
func (s *SessionStore) Set(session *Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if err := s.storage.Set(data); err != nil {
		s.mu.Unlock()
		return err
	}
	s.current = session
	subs := append([]func(*Session){}, s.subs...)
	s.mu.Unlock()

	for _, fn := range subs {
		fn(session)
	}
	return nil
}

// Clear removes the persisted session, then notifies subscribers with nil.
func (s *SessionStore) Clear() error {
	s.mu.Lock()
	if err := s.storage.Remove(); err != nil {
		s.mu.Unlock()
		return err
	}
	s.current = nil
	subs := append([]func(*Session){}, s.subs...)
	s.mu.Unlock()

	for _, fn := range subs {
		fn(nil)
	}
	return nil
}

// Subscribe registers a callback invoked after every Set and Clear.
func (s *SessionStore) Subscribe(fn func(*Session)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}
