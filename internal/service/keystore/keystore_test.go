package keystore

import (
	"path/filepath"
	"strings"
	"testing"
)

func newStore(t *testing.T, fallback map[string]string) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "keys.json"), fallback)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return s
}

func TestSetAndGet(t *testing.T) {
	s := newStore(t, nil)
	saved, err := s.Set(map[string]string{"finnhub": "abc123xyz9"})
	if err != nil {
		t.Fatalf("set: %v", err)
	}
	if saved != 1 {
		t.Fatalf("saved = %d, want 1", saved)
	}
	key, ok := s.Get("finnhub")
	if !ok || key != "abc123xyz9" {
		t.Fatalf("get = %q, %v", key, ok)
	}
}

func TestGetUnsetProvider(t *testing.T) {
	s := newStore(t, nil)
	if _, ok := s.Get("polygon"); ok {
		t.Fatalf("unset provider must report absent")
	}
}

func TestSentinelValueDisablesProvider(t *testing.T) {
	s := newStore(t, map[string]string{"finnhub": "YOUR_API_KEY_HERE"})
	if _, ok := s.Get("finnhub"); ok {
		t.Fatalf("sentinel value must count as absent")
	}
}

func TestMaskedWriteIgnored(t *testing.T) {
	s := newStore(t, nil)
	if _, err := s.Set(map[string]string{"finnhub": "abc123xyz9"}); err != nil {
		t.Fatalf("set: %v", err)
	}
	// Echoing the settings form back must not clobber the stored key.
	saved, err := s.Set(map[string]string{"finnhub": "••••••••••••xyz9", "polygon": ""})
	if err != nil {
		t.Fatalf("set: %v", err)
	}
	if saved != 0 {
		t.Fatalf("saved = %d, want 0", saved)
	}
	key, _ := s.Get("finnhub")
	if key != "abc123xyz9" {
		t.Fatalf("key clobbered: %q", key)
	}
}

func TestStatusMasksKey(t *testing.T) {
	s := newStore(t, nil)
	if _, err := s.Set(map[string]string{"finnhub": "abc123xyz9"}); err != nil {
		t.Fatalf("set: %v", err)
	}
	status := s.Status("finnhub", "polygon")
	fh := status["finnhub"]
	if !fh.Configured {
		t.Fatalf("finnhub should be configured")
	}
	if !strings.HasSuffix(fh.Masked, "xyz9") || strings.Contains(fh.Masked, "abc123") {
		t.Fatalf("bad mask %q", fh.Masked)
	}
	if status["polygon"].Configured {
		t.Fatalf("polygon should be unconfigured")
	}
}

func TestClear(t *testing.T) {
	s := newStore(t, nil)
	if _, err := s.Set(map[string]string{"finnhub": "abc123xyz9"}); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, ok := s.Get("finnhub"); ok {
		t.Fatalf("cleared key still readable")
	}
}

func TestFallbackSeed(t *testing.T) {
	s := newStore(t, map[string]string{"alphavantage": "seed-key-01"})
	key, ok := s.Get("alphavantage")
	if !ok || key != "seed-key-01" {
		t.Fatalf("fallback not honored: %q, %v", key, ok)
	}
	// A stored key takes precedence over the seed.
	if _, err := s.Set(map[string]string{"alphavantage": "runtime-key"}); err != nil {
		t.Fatalf("set: %v", err)
	}
	key, _ = s.Get("alphavantage")
	if key != "runtime-key" {
		t.Fatalf("stored key must win: %q", key)
	}
}

func TestPersistenceAcrossReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "keys.json")
	s, err := New(path, nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, err := s.Set(map[string]string{"polygon": "pk-123456"}); err != nil {
		t.Fatalf("set: %v", err)
	}

	reloaded, err := New(path, nil)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	key, ok := reloaded.Get("polygon")
	if !ok || key != "pk-123456" {
		t.Fatalf("key lost on reload: %q, %v", key, ok)
	}
}
