package epubtl

import (
	"sort"
	"strings"
)

// Reassemble joins translated fragments back into one translation per
// original text. Fragments may arrive in any order; they are ordered by
// (TextID, LineID) and sub-lines are joined with a single space.
func Reassemble(fragments []TranslatedFragment) map[string]string {
	sorted := make([]TranslatedFragment, len(fragments))
	copy(sorted, fragments)
	sort.Slice(sorted, func(i, j int) bool {
		a, b := sorted[i].Meta, sorted[j].Meta
		if a.TextID != b.TextID {
			return a.TextID < b.TextID
		}
		return a.LineID < b.LineID
	})

	result := make(map[string]string)
	for i := 0; i < len(sorted); {
		group := sorted[i].Meta.TextID
		parts := make([]string, 0, 1)
		j := i
		for ; j < len(sorted) && sorted[j].Meta.TextID == group; j++ {
			parts = append(parts, sorted[j].Translation)
		}
		result[sorted[i].Meta.Original] = strings.Join(parts, " ")
		i = j
	}
	return result
}
