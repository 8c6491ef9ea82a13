// ABOUTME: Tests for the persisted key/value store
// ABOUTME: Validates round trips, permissions, removal and corrupt files

package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFile_GetMissing(t *testing.T) {
	f := NewFile(filepath.Join(t.TempDir(), "session.json"))

	if _, ok := f.Get(KeyAccessToken); ok {
		t.Error("expected missing key on empty store")
	}
}

func TestFile_SetPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "session.json")
	f := NewFile(path)

	if err := f.Set(KeyAccessToken, "abc"); err != nil {
		t.Fatalf("Set() error: %v", err)
	}

	// A fresh store reads the same file
	g := NewFile(path)
	v, ok := g.Get(KeyAccessToken)
	if !ok || v != "abc" {
		t.Errorf("expected abc, got %q (ok=%v)", v, ok)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("expected 0600 permissions, got %v", info.Mode().Perm())
	}
}

func TestFile_Remove(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	f := NewFile(path)
	f.Set(KeyAccessToken, "a")
	f.Set(KeyRefreshToken, "r")
	f.Set(KeyUser, "{}")

	if err := f.Remove(KeyAccessToken, KeyRefreshToken); err != nil {
		t.Fatalf("Remove() error: %v", err)
	}

	g := NewFile(path)
	if _, ok := g.Get(KeyAccessToken); ok {
		t.Error("access token should be removed")
	}
	if _, ok := g.Get(KeyRefreshToken); ok {
		t.Error("refresh token should be removed")
	}
	if _, ok := g.Get(KeyUser); !ok {
		t.Error("user should be kept")
	}
}

func TestFile_CorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	os.WriteFile(path, []byte("not json"), 0600)

	f := NewFile(path)
	if _, ok := f.Get(KeyUser); ok {
		t.Error("expected empty store for corrupt file")
	}
	if err := f.Set(KeyUser, "x"); err != nil {
		t.Fatalf("Set() after corrupt load error: %v", err)
	}
}

func TestMemory(t *testing.T) {
	m := NewMemory()
	m.Set("k", "v")

	if v, ok := m.Get("k"); !ok || v != "v" {
		t.Errorf("expected v, got %q", v)
	}
	m.Remove("k", "unknown")
	if _, ok := m.Get("k"); ok {
		t.Error("expected key removed")
	}
}
