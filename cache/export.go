package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
)

// Export writes the store's entries to w as a JSON object, the same format
// FileStore uses on disk.
func Export(ctx context.Context, store Store, w io.Writer) (int, error) {
	entries, err := store.Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("loading entries: %w", err)
	}

	if err := encodeEntries(w, entries, "  "); err != nil {
		return 0, fmt.Errorf("encoding JSON: %w", err)
	}
	return len(entries), nil
}

// Import reads a JSON object of entries from r and merges it into store.
// Entries already present in the store are kept. It returns the number of
// entries added.
func Import(ctx context.Context, store Store, r io.Reader) (int, error) {
	var incoming map[string]string
	if err := json.NewDecoder(r).Decode(&incoming); err != nil {
		return 0, fmt.Errorf("decoding JSON: %w", err)
	}

	entries, err := store.Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("loading entries: %w", err)
	}

	added := 0
	for k, v := range incoming {
		if _, ok := entries[k]; ok {
			continue
		}
		entries[k] = v
		added++
	}

	if added == 0 {
		return 0, nil
	}
	if err := store.Save(ctx, entries); err != nil {
		return 0, fmt.Errorf("saving entries: %w", err)
	}
	return added, nil
}

// encodeEntries writes entries as a JSON object without HTML escaping so
// the file stays readable.
func encodeEntries(w io.Writer, entries map[string]string, indent string) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if indent != "" {
		enc.SetIndent("", indent)
	}
	return enc.Encode(entries)
}
