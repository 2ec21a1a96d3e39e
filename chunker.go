package epubtl

import (
	"strings"
)

// sentenceEnds are the delimiters used to split texts that do not fit in a chunk.
const sentenceEnds = ".!?。！？"

// SplitSentences splits text after each run of sentence-ending punctuation.
// Delimiters stay attached to the sentence they end. The parts are not
// trimmed and concatenate back to text.
func SplitSentences(text string) []string {
	var (
		parts []string
		start int
		inEnd bool
	)
	for i, r := range text {
		isEnd := strings.ContainsRune(sentenceEnds, r)
		if inEnd && !isEnd {
			parts = append(parts, text[start:i])
			start = i
		}
		inEnd = isEnd
	}
	if start < len(text) {
		parts = append(parts, text[start:])
	}
	return parts
}

// ChunkTexts partitions texts into chunks whose total UTF-8 size does not
// exceed limit. Texts larger than limit are split into sentences; a text
// with a sentence that still does not fit is reported as an
// InvalidTextError and left out of every chunk.
//
// TextID of each fragment is the index of its text in texts, so chunk order
// is stable for a given input order. Blank texts are skipped.
func ChunkTexts(texts []string, limit int) ([]Chunk, []error) {
	if limit <= 0 {
		return nil, []error{&ConfigError{Field: "chunk_size", Message: "must be positive"}}
	}

	chunks := []Chunk{{}}
	var errs []error

	for textID, text := range texts {
		trimmed := strings.TrimSpace(text)
		if trimmed == "" {
			continue
		}

		if len(trimmed) <= limit {
			chunks = appendFragment(chunks, limit, FragmentMeta{TextID: textID, Original: text}, trimmed)
			continue
		}

		lines := SplitSentences(trimmed)
		if oversized := longestLine(lines); oversized > limit {
			errs = append(errs, &InvalidTextError{Text: text, Size: oversized, Limit: limit})
			continue
		}

		for lineID, line := range lines {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			meta := FragmentMeta{TextID: textID, LineID: lineID, Original: text}
			chunks = appendFragment(chunks, limit, meta, line)
		}
	}

	if chunks[0].Len() == 0 {
		chunks = chunks[1:]
	}
	return chunks, errs
}

// appendFragment adds a fragment to the last chunk, opening a new chunk when
// the fragment does not fit.
func appendFragment(chunks []Chunk, limit int, meta FragmentMeta, text string) []Chunk {
	size := len(text)
	last := &chunks[len(chunks)-1]
	if last.Len() > 0 && last.Size+size > limit {
		chunks = append(chunks, Chunk{})
		last = &chunks[len(chunks)-1]
	}
	last.Meta = append(last.Meta, meta)
	last.Texts = append(last.Texts, text)
	last.Size += size
	return chunks
}

func longestLine(lines []string) int {
	longest := 0
	for _, line := range lines {
		if n := len(strings.TrimSpace(line)); n > longest {
			longest = n
		}
	}
	return longest
}
