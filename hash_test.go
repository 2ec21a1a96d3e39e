package epubtl

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestHashText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "simple text",
			input:    "Hello World",
			expected: "a591a6d40bf420404a011733cfb7b190d62c65bf0bcda32b57b277d9ad9f146e",
		},
		{
			name:     "text with both whitespace",
			input:    "  Hello World  ",
			expected: "a591a6d40bf420404a011733cfb7b190d62c65bf0bcda32b57b277d9ad9f146e",
		},
		{
			name:  "empty string",
			input: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := HashText(tt.input)
			if tt.expected != "" && result != tt.expected {
				t.Errorf("HashText(%q) = %q, want %q", tt.input, result, tt.expected)
			}
			// Verify hash length (SHA-256 = 64 hex chars)
			if len(result) != 64 {
				t.Errorf("HashText(%q) length = %d, want 64", tt.input, len(result))
			}
		})
	}
}

func TestDefaultCachePath(t *testing.T) {
	dir := t.TempDir()
	book := filepath.Join(dir, "novel.epub")

	p1 := DefaultCachePath(book, "en_US", "zh-cn")
	p2 := DefaultCachePath(book, "en-US", "zh-CN")

	if p1 != p2 {
		t.Errorf("Equivalent language codes should give the same path: %s vs %s", p1, p2)
	}
	if filepath.Dir(p1) != dir {
		t.Errorf("Cache should live next to the book, got %s", p1)
	}
	if !strings.HasPrefix(filepath.Base(p1), "novel.en-US.zh-CN.") || filepath.Ext(p1) != ".json" {
		t.Errorf("Unexpected cache name %s", filepath.Base(p1))
	}

	if DefaultCachePath(book, "en-US", "ja-JP") == p1 {
		t.Error("Different target languages should use different caches")
	}
}
