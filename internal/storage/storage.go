// ABOUTME: Persisted key/value store backing the client session
// ABOUTME: Keeps string values in a JSON file under the config directory

package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// Keys used by the session
const (
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
	KeyUser         = "user"
	KeyProfile      = "userProfile"
)

// Store is a flat string key/value store
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Remove(keys ...string) error
}

// File persists values as a JSON object. Every write rewrites the whole file
// through a temp file and rename.
type File struct {
	path   string
	mu     sync.Mutex
	values map[string]string
	loaded bool
}

type fileData struct {
	Values map[string]string `json:"values"`
}

// NewFile returns a store backed by path. The file is read lazily.
func NewFile(path string) *File {
	return &File{path: path}
}

// Path returns the backing file path
func (f *File) Path() string {
	return f.path
}

func (f *File) load() {
	if f.loaded {
		return
	}
	f.loaded = true
	f.values = map[string]string{}

	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return
	}
	if err != nil {
		slog.Warn("Cannot read session store, starting empty", "path", f.path, "error", err)
		return
	}

	var stored fileData
	if err := json.Unmarshal(data, &stored); err != nil {
		// Corrupt file, start fresh
		slog.Warn("Session store is not valid JSON, starting empty", "path", f.path)
		return
	}
	for k, v := range stored.Values {
		f.values[k] = v
	}
}

// Get returns the value for key
func (f *File) Get(key string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.load()
	v, ok := f.values[key]
	return v, ok
}

// Set stores value under key and persists the store
func (f *File) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.load()
	f.values[key] = value
	return f.save()
}

// Remove deletes keys and persists the store
func (f *File) Remove(keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.load()
	for _, k := range keys {
		delete(f.values, k)
	}
	return f.save()
}

func (f *File) save() error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0700); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}

	data, err := json.MarshalIndent(fileData{Values: f.values}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode store: %w", err)
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write store: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("failed to replace store: %w", err)
	}
	return nil
}

// Memory is an in-process store
type Memory struct {
	mu     sync.Mutex
	values map[string]string
}

// NewMemory returns an empty in-memory store
func NewMemory() *Memory {
	return &Memory{values: map[string]string{}}
}

// Get returns the value for key
func (m *Memory) Get(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok
}

// Set stores value under key
func (m *Memory) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

// Remove deletes keys
func (m *Memory) Remove(keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.values, k)
	}
	return nil
}
