package cache

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestNewFileStore_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")

	s, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("cache file should exist after construction: %v", err)
	}
	if string(data) != "{}\n" {
		t.Errorf("Expected empty JSON object, got %q", data)
	}
	if s.Path() != path {
		t.Errorf("Expected path %s, got %s", path, s.Path())
	}
}

func TestNewFileStore_UnwritableLocation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "cache.json")

	if _, err := NewFileStore(path); err == nil {
		t.Fatal("Expected error for unwritable location")
	}
}

func TestNewFileStore_EmptyPath(t *testing.T) {
	if _, err := NewFileStore(""); err == nil {
		t.Fatal("Expected error for empty path")
	}
}

func TestNewFileStore_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	os.WriteFile(path, []byte("not json"), 0o644)

	if _, err := NewFileStore(path); err == nil {
		t.Fatal("Expected error for invalid cache file")
	}
}

func TestFileStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	ctx := context.Background()

	s, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}

	entries := map[string]string{
		"Hello world.": "你好，世界。",
		"<b>&</b>":     "<b>&</b>",
	}
	if err := s.Save(ctx, entries); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// A second store on the same file sees the saved entries.
	s2, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	loaded, err := s2.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(loaded) != 2 || loaded["Hello world."] != "你好，世界。" || loaded["<b>&</b>"] != "<b>&</b>" {
		t.Errorf("Unexpected entries: %v", loaded)
	}

	// The file is a plain JSON object.
	data, _ := os.ReadFile(path)
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("cache file is not a JSON object: %v", err)
	}
}

func TestFileStore_KeepsExistingEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	os.WriteFile(path, []byte(`{"Hi.":"Hola."}`), 0o644)

	s, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}

	entries, _ := s.Load(context.Background())
	if entries["Hi."] != "Hola." {
		t.Errorf("Construction should not discard entries, got %v", entries)
	}
}
