package wallet

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

// SelectedAccountKey is the well-known key the selected address is kept under.
const SelectedAccountKey = "w3raffle.selected-account"

// SessionStore persists the selected account address, and nothing else.
type SessionStore interface {
	Load() (string, bool)
	Save(address string) error
	Clear() error
}

// DefaultSessionPath returns the per-user session cache file.
//
//	macOS:   ~/Library/Caches/w3raffle/session.json
//	Linux:   ~/.cache/w3raffle/session.json
//	Windows: %LocalAppData%\w3raffle\session.json
func DefaultSessionPath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "w3raffle", "session.json")
}

// FileSessionStore keeps the session as a small JSON map readable only by
// the current user.
type FileSessionStore struct {
	path string
	mu   sync.Mutex
}

// NewFileSessionStore stores the session at path; empty uses
// DefaultSessionPath.
func NewFileSessionStore(path string) *FileSessionStore {
	if path == "" {
		path = DefaultSessionPath()
	}
	return &FileSessionStore{path: path}
}

// Path returns the session file location.
func (s *FileSessionStore) Path() string {
	return s.path
}

func (s *FileSessionStore) Load() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.read()[SelectedAccountKey]
	return v, ok && v != ""
}

func (s *FileSessionStore) Save(address string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.read()
	m[SelectedAccountKey] = address
	return s.write(m)
}

// Clear removes the selected address. Other keys in the file are kept; the
// file is deleted once empty.
func (s *FileSessionStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.read()
	if _, ok := m[SelectedAccountKey]; !ok {
		return nil
	}
	delete(m, SelectedAccountKey)
	if len(m) == 0 {
		err := os.Remove(s.path)
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return s.write(m)
}

// read returns the key map, empty (never nil) on any error.
func (s *FileSessionStore) read() map[string]string {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return make(map[string]string)
	}
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil || m == nil {
		return make(map[string]string)
	}
	return m
}

func (s *FileSessionStore) write(m map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return err
	}
	_ = os.Chmod(s.path, 0o600)
	return nil
}

// MemorySessionStore keeps the session in memory (for tests).
type MemorySessionStore struct {
	mu    sync.Mutex
	value string
	saves int
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{}
}

func (s *MemorySessionStore) Load() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value, s.value != ""
}

func (s *MemorySessionStore) Save(address string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = address
	s.saves++
	return nil
}

func (s *MemorySessionStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = ""
	return nil
}

// Saves counts Save calls.
func (s *MemorySessionStore) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}
