package epubtl

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
)

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"three sentences", "A. B. C.", []string{"A.", " B.", " C."}},
		{"no delimiter", "no delimiter", []string{"no delimiter"}},
		{"trailing fragment", "end. tail", []string{"end.", " tail"}},
		{"delimiter runs", "Wait... what?!", []string{"Wait...", " what?!"}},
		{"cjk", "你好。再见！", []string{"你好。", "再见！"}},
		{"empty", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitSentences(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitSentences(%q) = %q, want %q", tt.input, got, tt.want)
			}
			if strings.Join(got, "") != tt.input {
				t.Errorf("parts should concatenate back to the input, got %q", strings.Join(got, ""))
			}
		})
	}
}

func TestChunkTexts_SingleChunk(t *testing.T) {
	chunks, errs := ChunkTexts([]string{"Hello", "World"}, 100)

	if len(errs) != 0 {
		t.Fatalf("Expected no errors, got %v", errs)
	}
	if len(chunks) != 1 {
		t.Fatalf("Expected 1 chunk, got %d", len(chunks))
	}

	if !reflect.DeepEqual(chunks[0].Texts, []string{"Hello", "World"}) {
		t.Errorf("Unexpected texts: %v", chunks[0].Texts)
	}
	if chunks[0].Size != 10 {
		t.Errorf("Expected size 10, got %d", chunks[0].Size)
	}

	want := []FragmentMeta{
		{TextID: 0, LineID: 0, Original: "Hello"},
		{TextID: 1, LineID: 0, Original: "World"},
	}
	if !reflect.DeepEqual(chunks[0].Meta, want) {
		t.Errorf("Unexpected meta: %+v", chunks[0].Meta)
	}
}

func TestChunkTexts_ClosesFullChunk(t *testing.T) {
	chunks, errs := ChunkTexts([]string{"aaaa", "bbbb", "cc"}, 8)

	if len(errs) != 0 {
		t.Fatalf("Expected no errors, got %v", errs)
	}
	if len(chunks) != 2 {
		t.Fatalf("Expected 2 chunks, got %d", len(chunks))
	}
	if !reflect.DeepEqual(chunks[0].Texts, []string{"aaaa", "bbbb"}) {
		t.Errorf("Unexpected first chunk: %v", chunks[0].Texts)
	}
	if !reflect.DeepEqual(chunks[1].Texts, []string{"cc"}) {
		t.Errorf("Unexpected second chunk: %v", chunks[1].Texts)
	}
}

func TestChunkTexts_SplitsOversizedText(t *testing.T) {
	text := "One. Two. Three."
	chunks, errs := ChunkTexts([]string{text}, 10)

	if len(errs) != 0 {
		t.Fatalf("Expected no errors, got %v", errs)
	}
	if len(chunks) != 2 {
		t.Fatalf("Expected 2 chunks, got %d", len(chunks))
	}

	if !reflect.DeepEqual(chunks[0].Texts, []string{"One.", "Two."}) {
		t.Errorf("Unexpected first chunk: %v", chunks[0].Texts)
	}
	if !reflect.DeepEqual(chunks[1].Texts, []string{"Three."}) {
		t.Errorf("Unexpected second chunk: %v", chunks[1].Texts)
	}

	lineIDs := []int{chunks[0].Meta[0].LineID, chunks[0].Meta[1].LineID, chunks[1].Meta[0].LineID}
	if !reflect.DeepEqual(lineIDs, []int{0, 1, 2}) {
		t.Errorf("Unexpected line ids: %v", lineIDs)
	}
	for _, c := range chunks {
		for _, m := range c.Meta {
			if m.TextID != 0 || m.Original != text {
				t.Errorf("Fragment lost its origin: %+v", m)
			}
		}
	}
}

func TestChunkTexts_SplitThenReassemble(t *testing.T) {
	texts := []string{"A. B. C.", "Hi."}
	chunks, errs := ChunkTexts(texts, 4)
	if len(errs) != 0 {
		t.Fatalf("Expected no errors, got %v", errs)
	}

	var got [][]string
	for _, c := range chunks {
		got = append(got, c.Texts)
	}
	want := [][]string{{"A.", "B."}, {"C."}, {"Hi."}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Unexpected chunks: %q", got)
	}

	// Periods stay on their sentence and sub-lines are joined by one space.
	tests := []struct {
		prefix string
		want   string
	}{
		{"", "A. B. C."},
		{"MOCKED: ", "MOCKED: A. MOCKED: B. MOCKED: C."},
	}
	for _, tt := range tests {
		var fragments []TranslatedFragment
		for i := len(chunks) - 1; i >= 0; i-- {
			for j, text := range chunks[i].Texts {
				fragments = append(fragments, TranslatedFragment{Meta: chunks[i].Meta[j], Translation: tt.prefix + text})
			}
		}

		result := Reassemble(fragments)
		if result["A. B. C."] != tt.want {
			t.Errorf("Reassemble with prefix %q = %q, want %q", tt.prefix, result["A. B. C."], tt.want)
		}
		if result["Hi."] != tt.prefix+"Hi." {
			t.Errorf("Unsplit text changed: %q", result["Hi."])
		}
	}
}

func TestChunkTexts_UnsplittableText(t *testing.T) {
	long := strings.Repeat("x", 15)
	chunks, errs := ChunkTexts([]string{long, "ok"}, 10)

	if len(errs) != 1 {
		t.Fatalf("Expected exactly 1 error, got %d: %v", len(errs), errs)
	}

	var invalid *InvalidTextError
	if !errors.As(errs[0], &invalid) {
		t.Fatalf("Expected InvalidTextError, got %T", errs[0])
	}
	if invalid.Text != long {
		t.Errorf("Error should carry the whole text, got %q", invalid.Text)
	}

	if len(chunks) != 1 || !reflect.DeepEqual(chunks[0].Texts, []string{"ok"}) {
		t.Errorf("Only the valid text should be chunked, got %+v", chunks)
	}
}

func TestChunkTexts_OneOversizedSentenceRejectsWholeText(t *testing.T) {
	text := "Short. " + strings.Repeat("y", 20) + "."
	chunks, errs := ChunkTexts([]string{text}, 10)

	if len(errs) != 1 {
		t.Fatalf("Expected 1 error, got %d", len(errs))
	}
	if len(chunks) != 0 {
		t.Errorf("No sentence of a rejected text may be chunked, got %+v", chunks)
	}
}

func TestChunkTexts_CountsBytes(t *testing.T) {
	// Three runes, nine bytes.
	chunks, errs := ChunkTexts([]string{"日本語"}, 8)

	if len(errs) != 1 {
		t.Fatalf("Expected size to be measured in bytes, got errs=%v chunks=%+v", errs, chunks)
	}
}

func TestChunkTexts_SizeBound(t *testing.T) {
	var texts []string
	for i := 0; i < 200; i++ {
		texts = append(texts, fmt.Sprintf("Sentence number %d. It has a tail %s.", i, strings.Repeat("z", i%17)))
	}

	for _, limit := range []int{30, 45, 64, 128, 1000} {
		chunks, _ := ChunkTexts(texts, limit)
		for i, c := range chunks {
			if c.Len() == 0 {
				t.Errorf("limit %d: chunk %d is empty", limit, i)
			}
			total := 0
			for _, s := range c.Texts {
				total += len(s)
			}
			if total != c.Size {
				t.Errorf("limit %d: chunk %d size %d, computed %d", limit, i, c.Size, total)
			}
			if total > limit {
				t.Errorf("limit %d: chunk %d exceeds limit with %d bytes", limit, i, total)
			}
			if len(c.Meta) != len(c.Texts) {
				t.Errorf("limit %d: chunk %d meta/text length mismatch", limit, i)
			}
		}
	}
}

func TestChunkTexts_EmptyInput(t *testing.T) {
	chunks, errs := ChunkTexts(nil, 10)
	if len(chunks) != 0 || len(errs) != 0 {
		t.Errorf("Expected nothing, got chunks=%v errs=%v", chunks, errs)
	}

	chunks, _ = ChunkTexts([]string{"   ", ""}, 10)
	if len(chunks) != 0 {
		t.Errorf("Blank texts should not produce chunks, got %+v", chunks)
	}
}

func TestChunkTexts_InvalidLimit(t *testing.T) {
	_, errs := ChunkTexts([]string{"Hello"}, 0)

	var cfgErr *ConfigError
	if len(errs) != 1 || !errors.As(errs[0], &cfgErr) {
		t.Errorf("Expected a ConfigError, got %v", errs)
	}
}
