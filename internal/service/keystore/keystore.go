// Package keystore persists the per-provider API keys. It replaces the
// browser-local storage of the original dashboard: three string slots keyed
// by provider id, written only through the settings endpoint.
package keystore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// sentinelUnset is a placeholder value treated the same as an absent key:
// the provider stays disabled.
const sentinelUnset = "YOUR_API_KEY_HERE"

// maskPrefix marks a masked read-back value. Writes carrying it are ignored
// so that echoing the settings form back does not clobber a stored key.
const maskPrefix = "••••"

// KeyStatus is the masked view of one credential slot.
type KeyStatus struct {
	Configured bool   `json:"configured"`
	Masked     string `json:"masked,omitempty"`
}

// Store is a file-backed credential store. Writes are serialized; reads are
// cheap. A fallback map (config/env seeds) answers lookups for slots the
// file does not hold.
type Store struct {
	path     string
	fallback map[string]string

	mu   sync.RWMutex
	keys map[string]string
}

// New loads the store from path. A missing file is not an error; the store
// starts empty and the file is created on first write.
func New(path string, fallback map[string]string) (*Store, error) {
	s := &Store{
		path:     path,
		fallback: fallback,
		keys:     make(map[string]string),
	}

	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read keystore: %w", err)
	}
	if err := json.Unmarshal(b, &s.keys); err != nil {
		return nil, fmt.Errorf("parse keystore: %w", err)
	}
	return s, nil
}

// Get returns the credential for a provider id, or ok=false when the
// provider is disabled (absent, empty, or sentinel value).
func (s *Store) Get(providerID string) (string, bool) {
	s.mu.RLock()
	key := s.keys[providerID]
	s.mu.RUnlock()

	if !usable(key) {
		key = s.fallback[providerID]
	}
	if !usable(key) {
		return "", false
	}
	return key, true
}

// Set stores the given keys and persists the file. Empty values and masked
// read-back values are skipped. Returns the number of keys actually saved.
func (s *Store) Set(keys map[string]string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	saved := 0
	for id, key := range keys {
		key = strings.TrimSpace(key)
		if key == "" || strings.HasPrefix(key, maskPrefix) {
			continue
		}
		s.keys[id] = key
		saved++
	}
	if saved == 0 {
		return 0, nil
	}
	return saved, s.persist()
}

// Clear removes all stored keys and persists the empty file.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys = make(map[string]string)
	return s.persist()
}

// Status reports, per provider id, whether a key is configured and a masked
// rendering (mask plus last four characters) safe to show in a settings form.
func (s *Store) Status(providerIDs ...string) map[string]KeyStatus {
	out := make(map[string]KeyStatus, len(providerIDs))
	for _, id := range providerIDs {
		key, ok := s.Get(id)
		if !ok {
			out[id] = KeyStatus{}
			continue
		}
		out[id] = KeyStatus{Configured: true, Masked: mask(key)}
	}
	return out
}

func (s *Store) persist() error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("keystore dir: %w", err)
		}
	}
	b, err := json.MarshalIndent(s.keys, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path, b, 0o600); err != nil {
		return fmt.Errorf("write keystore: %w", err)
	}
	return nil
}

func usable(key string) bool {
	return key != "" && key != sentinelUnset
}

func mask(key string) string {
	tail := key
	if len(key) > 4 {
		tail = key[len(key)-4:]
	}
	return "••••••••••••" + tail
}
