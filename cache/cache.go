// Package cache provides durable translation stores.
//
// A store holds the whole text to translation mapping. It is loaded once
// at the start of a translation session and saved once at the end; stores
// do not coordinate between processes.
package cache

import "context"

// Store is the interface for translation stores.
type Store interface {
	// Load returns the stored mapping. The caller owns the returned map.
	Load(ctx context.Context) (map[string]string, error)

	// Save persists the whole mapping.
	Save(ctx context.Context, entries map[string]string) error
}

func cloneEntries(entries map[string]string) map[string]string {
	out := make(map[string]string, len(entries))
	for k, v := range entries {
		out[k] = v
	}
	return out
}
