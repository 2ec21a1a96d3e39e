package epubtl

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

// memContainer is a Container backed by a slice.
type memContainer struct {
	items []Item
	sets  int
}

func (c *memContainer) Items() []Item { return c.items }

func (c *memContainer) SetContent(name string, content []byte) error {
	for i := range c.items {
		if c.items[i].Name == name {
			c.items[i].Content = content
			c.sets++
			return nil
		}
	}
	return errors.New("no such item")
}

// lineMapper treats every non-empty line of an item as one element and
// rebuilds by appending " => translation" to each line.
type lineMapper struct {
	mismatch map[string]bool // items whose rebuild reports a mismatch
}

func (m *lineMapper) Extract(container string, content []byte) ([]ContentRecord, error) {
	if string(content) == "!" {
		return nil, &ProcessorError{Message: "unparseable", Container: container}
	}
	var records []ContentRecord
	for _, line := range strings.Split(string(content), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			records = append(records, ContentRecord{Text: line, Container: container, Tag: "line"})
		}
	}
	return records, nil
}

func (m *lineMapper) Rebuild(container string, content []byte, records []ContentRecord, translations map[string]string, opts RebuildOptions) ([]byte, error) {
	if m.mismatch[container] {
		return content, &StructuralMismatchError{Container: container, Expected: len(records), Got: len(records) + 1, Index: -1}
	}
	var lines []string
	for _, r := range records {
		lines = append(lines, r.Text+" => "+translations[r.Text])
	}
	return []byte(strings.Join(lines, "\n")), nil
}

func newDocumentFixture() *memContainer {
	return &memContainer{items: []Item{
		{Name: "a.xhtml", MediaType: "application/xhtml+xml", Content: []byte("one\ntwo")},
		{Name: "b.xhtml", MediaType: "application/xhtml+xml", Content: []byte("two\nthree")},
		{Name: "nav.xhtml", MediaType: "application/xhtml+xml", Properties: []string{"nav"}, Content: []byte("nav")},
		{Name: "style.css", MediaType: "text/css", Content: []byte("css")},
		{Name: "cover.jpg", MediaType: "IMAGE/JPEG", Content: []byte("!")},
	}}
}

func TestDocumentTranslator_Ignored(t *testing.T) {
	dt := NewDocumentTranslator(nil, &lineMapper{})

	tests := []struct {
		item Item
		want bool
	}{
		{Item{MediaType: "application/xhtml+xml"}, false},
		{Item{MediaType: "application/xhtml+xml", Properties: []string{"nav"}}, true},
		{Item{MediaType: "image/png"}, true},
		{Item{MediaType: "Image/SVG+XML"}, true},
		{Item{MediaType: "text/css"}, true},
		{Item{MediaType: "application/x-dtbncx+xml"}, true},
		{Item{MediaType: "font/woff2"}, true},
	}

	for _, tt := range tests {
		if got := dt.Ignored(tt.item); got != tt.want {
			t.Errorf("Ignored(%+v) = %v, want %v", tt.item, got, tt.want)
		}
	}

	custom := NewDocumentTranslator(nil, &lineMapper{}, WithIgnoredMediaTypes([]string{"APPLICATION/XHTML"}))
	if !custom.Ignored(Item{MediaType: "application/xhtml+xml"}) {
		t.Error("custom prefixes should be matched case-insensitively")
	}
	if custom.Ignored(Item{MediaType: "image/png"}) {
		t.Error("custom prefixes should replace the defaults")
	}
}

func TestDocumentTranslator_Process(t *testing.T) {
	provider := &mockProvider{prefix: "T:"}
	tr := newTestTranslator(t, provider)
	dt := NewDocumentTranslator(tr, &lineMapper{})
	c := newDocumentFixture()

	doc, err := dt.Process(context.Background(), c, ModeReplace)
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	if len(doc.Records) != 4 {
		t.Errorf("Expected 4 records, got %d", len(doc.Records))
	}
	if doc.Result.TranslatedCount != 3 {
		t.Errorf("Expected 3 distinct texts translated, got %d", doc.Result.TranslatedCount)
	}
	if len(doc.Rebuilt) != 2 || doc.Rebuilt[0] != "a.xhtml" || doc.Rebuilt[1] != "b.xhtml" {
		t.Errorf("Unexpected rebuilt items: %v", doc.Rebuilt)
	}
	if got := string(c.items[1].Content); got != "two => T:two\nthree => T:three" {
		t.Errorf("Unexpected rebuilt content: %q", got)
	}
	if string(c.items[2].Content) != "nav" {
		t.Error("nav item should not be touched")
	}
}

func TestDocumentTranslator_Process_FailClosed(t *testing.T) {
	provider := &mockProvider{failCalls: map[int]error{1: errors.New("down")}}
	tr := newTestTranslator(t, provider)
	dt := NewDocumentTranslator(tr, &lineMapper{})
	c := newDocumentFixture()

	doc, err := dt.Process(context.Background(), c, ModeInline)

	var errs *TranslationErrors
	if !errors.As(err, &errs) {
		t.Fatalf("Expected TranslationErrors, got %v", err)
	}
	if len(errs.Errs) != 3 {
		t.Errorf("Expected one error per fragment, got %d", len(errs.Errs))
	}
	var cannot *CannotTranslateError
	if !errors.As(err, &cannot) {
		t.Error("Expected CannotTranslateError members")
	}
	if c.sets != 0 {
		t.Errorf("No item should be rebuilt, got %d updates", c.sets)
	}
	if doc == nil || doc.Result == nil {
		t.Error("The partial result should still be returned")
	}
}

func TestDocumentTranslator_Process_Mismatch(t *testing.T) {
	tr := newTestTranslator(t, &mockProvider{})
	dt := NewDocumentTranslator(tr, &lineMapper{mismatch: map[string]bool{"a.xhtml": true}})
	c := newDocumentFixture()

	doc, err := dt.Process(context.Background(), c, ModeInline)

	var mismatch *StructuralMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("Expected StructuralMismatchError, got %v", err)
	}
	if mismatch.Container != "a.xhtml" {
		t.Errorf("Unexpected container %q", mismatch.Container)
	}
	if string(c.items[0].Content) != "one\ntwo" {
		t.Error("Mismatched item should be left unmodified")
	}
	if len(doc.Rebuilt) != 1 || doc.Rebuilt[0] != "b.xhtml" {
		t.Errorf("Other items should still be rebuilt, got %v", doc.Rebuilt)
	}
	if len(doc.Mismatched) != 1 {
		t.Errorf("Expected one mismatched item, got %v", doc.Mismatched)
	}
}

func TestDocumentTranslator_Process_ExtractError(t *testing.T) {
	tr := newTestTranslator(t, &mockProvider{})
	dt := NewDocumentTranslator(tr, &lineMapper{}, WithIgnoredMediaTypes(nil))

	_, err := dt.Process(context.Background(), newDocumentFixture(), ModeInline)

	var procErr *ProcessorError
	if !errors.As(err, &procErr) || procErr.Container != "cover.jpg" {
		t.Errorf("Expected ProcessorError for cover.jpg, got %v", err)
	}
}

func TestTexts(t *testing.T) {
	texts := Texts([]ContentRecord{{Text: "a"}, {Text: "b"}})
	if len(texts) != 2 || texts[0] != "a" || texts[1] != "b" {
		t.Errorf("Unexpected texts: %v", texts)
	}
	if Texts(nil) == nil {
		t.Error("Texts should never return nil")
	}
}

func TestOutputPath(t *testing.T) {
	dir := filepath.Join("books", "in")

	tests := []struct {
		input string
		mode  Mode
		want  string
	}{
		{filepath.Join(dir, "My Book.epub"), ModeInline, filepath.Join(dir, "my_book.dual.epub")},
		{filepath.Join(dir, "My Book.epub"), ModeReplace, filepath.Join(dir, "my_book.tran.epub")},
		{"Les Misérables (v2).EPUB", ModeReplace, "les_misérables__v2_.tran.epub"},
		{"plain", ModeInline, "plain.dual.epub"},
	}

	for _, tt := range tests {
		if got := OutputPath(tt.input, tt.mode); got != tt.want {
			t.Errorf("OutputPath(%q, %v) = %q, want %q", tt.input, tt.mode, got, tt.want)
		}
	}
}
