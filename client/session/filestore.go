package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileStore persists session slots as a JSON file, the CLI's analogue of
// browser localStorage. Safe for concurrent use within one process.
type FileStore struct {
	watcherSet

	mu    sync.Mutex
	path  string
	slots map[Role]Session
}

// NewFileStore opens (or initializes) a session file at path.
func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{path: path, slots: make(map[Role]Session)}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("session: read %s: %w", path, err)
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &s.slots); err != nil {
			return nil, fmt.Errorf("session: parse %s: %w", path, err)
		}
	}
	return s, nil
}

func (s *FileStore) Get(role Role) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.slots[role]
	return sess, ok
}

func (s *FileStore) Set(sess Session) error {
	s.mu.Lock()
	s.slots[sess.Role] = sess
	err := s.persistLocked()
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.notify(Event{Type: EventSet, Role: sess.Role, Session: sess})
	return nil
}

func (s *FileStore) Clear(role Role) error {
	s.mu.Lock()
	_, had := s.slots[role]
	delete(s.slots, role)
	var err error
	if had {
		err = s.persistLocked()
	}
	s.mu.Unlock()
	if err != nil {
		return err
	}
	if had {
		s.notify(Event{Type: EventCleared, Role: role})
	}
	return nil
}

func (s *FileStore) persistLocked() error {
	data, err := json.MarshalIndent(s.slots, "", "  ")
	if err != nil {
		return fmt.Errorf("session: marshal slots: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("session: create dir %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("session: write %s: %w", s.path, err)
	}
	return nil
}

// MemoryStore keeps session slots in memory. Used in tests and short-lived
// programs that have no reason to persist logins.
type MemoryStore struct {
	watcherSet

	mu    sync.Mutex
	slots map[Role]Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{slots: make(map[Role]Session)}
}

func (s *MemoryStore) Get(role Role) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.slots[role]
	return sess, ok
}

func (s *MemoryStore) Set(sess Session) error {
	s.mu.Lock()
	s.slots[sess.Role] = sess
	s.mu.Unlock()
	s.notify(Event{Type: EventSet, Role: sess.Role, Session: sess})
	return nil
}

func (s *MemoryStore) Clear(role Role) error {
	s.mu.Lock()
	_, had := s.slots[role]
	delete(s.slots, role)
	s.mu.Unlock()
	if had {
		s.notify(Event{Type: EventCleared, Role: role})
	}
	return nil
}
