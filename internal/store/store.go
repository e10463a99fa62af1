// Package store persists settings values as a TOML key-value file.
// Every write commits to disk before returning, so process crashes
// never lose an acknowledged change.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	toml "github.com/pelletier/go-toml/v2"
)

// Listener receives the key of every value written through this store.
// External writers to the underlying file are not observed.
type Listener func(key string)

// fileValues is the on-disk shape. Booleans and strings live in separate
// tables so TOML round-trips without type sniffing.
type fileValues struct {
	Bools   map[string]bool   `toml:"bools"`
	Strings map[string]string `toml:"strings"`
}

// Store is a durable string-keyed map of boolean and string values.
// Writes commit to disk before returning. Reads never fail; a missing
// key resolves to the caller-supplied default.
type Store struct {
	mu        sync.RWMutex
	path      string
	bools     map[string]bool
	strings   map[string]string
	listeners map[int]Listener
	nextSub   int
}

// Open loads the store file at path, creating an empty store when the
// file does not exist. A corrupt file is an error: silently dropping
// persisted settings would look like data loss to the user.
func Open(path string) (*Store, error) {
	resolved, err := expandPath(path)
	if err != nil {
		return nil, fmt.Errorf("resolve store path: %w", err)
	}

	s := &Store{
		path:      resolved,
		bools:     make(map[string]bool),
		strings:   make(map[string]string),
		listeners: make(map[int]Listener),
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("read store: %w", err)
	}

	var raw fileValues
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse store: %w", err)
	}
	if raw.Bools != nil {
		s.bools = raw.Bools
	}
	if raw.Strings != nil {
		s.strings = raw.Strings
	}
	return s, nil
}

// GetBool returns the boolean stored under key, or def when unset.
func (s *Store) GetBool(key string, def bool) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, ok := s.bools[key]; ok {
		return v
	}
	return def
}

// SetBool stores a boolean under key and commits it to disk.
func (s *Store) SetBool(key string, value bool) error {
	s.mu.Lock()
	s.bools[key] = value
	err := s.persistLocked()
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.notify(key)
	return nil
}

// GetString returns the string stored under key, or def when unset.
func (s *Store) GetString(key string, def string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, ok := s.strings[key]; ok {
		return v
	}
	return def
}

// SetString stores a string under key and commits it to disk.
func (s *Store) SetString(key string, value string) error {
	s.mu.Lock()
	s.strings[key] = value
	err := s.persistLocked()
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.notify(key)
	return nil
}

// Clear removes every stored value. Subsequent reads resolve to the
// caller-supplied defaults again.
func (s *Store) Clear() error {
	s.mu.Lock()
	s.bools = make(map[string]bool)
	s.strings = make(map[string]string)
	err := s.persistLocked()
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.notify("")
	return nil
}

// All returns a copy of every stored entry keyed by name.
func (s *Store) All() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := make(map[string]any, len(s.bools)+len(s.strings))
	for k, v := range s.bools {
		all[k] = v
	}
	for k, v := range s.strings {
		all[k] = v
	}
	return all
}

// Subscribe registers a change listener and returns its cancel func.
// Listeners run synchronously after the write has committed.
func (s *Store) Subscribe(l Listener) (cancel func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.listeners[id] = l
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *Store) notify(key string) {
	s.mu.RLock()
	ls := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		ls = append(ls, l)
	}
	s.mu.RUnlock()
	for _, l := range ls {
		l(key)
	}
}

// persistLocked writes the current values to disk. Callers hold s.mu.
func (s *Store) persistLocked() error {
	data, err := toml.Marshal(fileValues{Bools: s.bools, Strings: s.strings})
	if err != nil {
		return fmt.Errorf("marshal store: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write store: %w", err)
	}
	return nil
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
