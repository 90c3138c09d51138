package auth

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// StateStore persists the remember-me flag across restarts and reports
// changes made by another process sharing the same state file.
type StateStore interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Delete(key string) error

	// Watch pulses when the persisted state was changed externally. Changes
	// made through this store do not pulse.
	Watch() <-chan struct{}

	Close() error
}

// FileStore is a StateStore backed by a small JSON file, polled for external
// modification.
type FileStore struct {
	path     string
	interval time.Duration

	mu      sync.Mutex
	values  map[string]string
	lastMod time.Time

	watch chan struct{}
	done  chan struct{}
	wg    sync.WaitGroup
}

// NewFileStore opens (or creates on first write) the state file at path and
// begins polling it for external changes.
func NewFileStore(path string, pollInterval time.Duration) (*FileStore, error) {
	if pollInterval <= 0 {
		pollInterval = time.Second
	}

	s := &FileStore{
		path:     path,
		interval: pollInterval,
		values:   make(map[string]string),
		watch:    make(chan struct{}, 1),
		done:     make(chan struct{}),
	}

	if err := s.load(); err != nil {
		return nil, err
	}

	s.wg.Add(1)
	go s.pollLoop()

	return s, nil
}

// Get returns the value for key.
func (s *FileStore) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok
}

// Set writes key=value through to the state file.
func (s *FileStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return s.persistLocked()
}

// Delete removes key and writes through to the state file.
func (s *FileStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return s.persistLocked()
}

// Watch returns the external-change channel.
func (s *FileStore) Watch() <-chan struct{} {
	return s.watch
}

// Close stops the poller. The state file stays on disk.
func (s *FileStore) Close() error {
	close(s.done)
	s.wg.Wait()
	return nil
}

// load reads the state file if it exists.
func (s *FileStore) load() error {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read auth state: %w", err)
	}

	if err := json.Unmarshal(data, &s.values); err != nil {
		return fmt.Errorf("parse auth state: %w", err)
	}

	if info, err := os.Stat(s.path); err == nil {
		s.lastMod = info.ModTime()
	}
	return nil
}

// persistLocked writes the map to disk and records our own modtime so the
// poller does not report the write as an external change.
func (s *FileStore) persistLocked() error {
	data, err := json.Marshal(s.values)
	if err != nil {
		return fmt.Errorf("encode auth state: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write auth state: %w", err)
	}
	if info, err := os.Stat(s.path); err == nil {
		s.lastMod = info.ModTime()
	}
	return nil
}

func (s *FileStore) pollLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.reloadIfChanged()
		}
	}
}

// reloadIfChanged re-reads the file when its modtime moved under us and
// pulses the watch channel.
func (s *FileStore) reloadIfChanged() {
	info, err := os.Stat(s.path)
	if err != nil {
		return
	}

	s.mu.Lock()
	if !info.ModTime().After(s.lastMod) {
		s.mu.Unlock()
		return
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		s.mu.Unlock()
		return
	}

	values := make(map[string]string)
	if err := json.Unmarshal(data, &values); err != nil {
		s.mu.Unlock()
		return
	}

	s.values = values
	s.lastMod = info.ModTime()
	s.mu.Unlock()

	select {
	case s.watch <- struct{}{}:
	default:
	}
}
