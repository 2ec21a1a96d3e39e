package epubtl

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"unicode"
)

// Container is a document made of named items, such as an EPUB book.
type Container interface {
	Items() []Item
	SetContent(name string, content []byte) error
}

// DocumentMapper finds translatable elements in an item and writes
// translations back into it.
type DocumentMapper interface {
	// Extract returns the translatable elements of content in document order.
	Extract(container string, content []byte) ([]ContentRecord, error)

	// Rebuild parses content again, checks that it yields the same elements
	// as records, and returns the content with translations applied. On a
	// *StructuralMismatchError the returned content is the input unchanged.
	Rebuild(container string, content []byte, records []ContentRecord, translations map[string]string, opts RebuildOptions) ([]byte, error)
}

// RebuildOptions controls how translations are written back.
type RebuildOptions struct {
	Mode       Mode
	TargetLang string
}

// DocumentTranslator extracts the text of a container, translates it and
// rebuilds the affected items.
type DocumentTranslator struct {
	translator *Translator
	mapper     DocumentMapper
	ignored    []string
	logger     *slog.Logger
}

// DocumentOption is a functional option for configuring the DocumentTranslator.
type DocumentOption func(*DocumentTranslator)

// WithIgnoredMediaTypes replaces the media type prefixes of items that are
// never parsed.
func WithIgnoredMediaTypes(prefixes []string) DocumentOption {
	return func(d *DocumentTranslator) {
		d.ignored = make([]string, 0, len(prefixes))
		for _, p := range prefixes {
			d.ignored = append(d.ignored, strings.ToLower(p))
		}
	}
}

// WithDocumentLogger sets the structured logger.
func WithDocumentLogger(logger *slog.Logger) DocumentOption {
	return func(d *DocumentTranslator) {
		d.logger = logger
	}
}

// NewDocumentTranslator creates a DocumentTranslator.
func NewDocumentTranslator(translator *Translator, mapper DocumentMapper, opts ...DocumentOption) *DocumentTranslator {
	d := &DocumentTranslator{
		translator: translator,
		mapper:     mapper,
		ignored:    DefaultIgnoredMediaTypes,
		logger:     slog.New(slog.DiscardHandler),
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// ProcessedDocument is the result of a document translation.
type ProcessedDocument struct {
	Result     *TranslationResult // Nil if extraction failed
	Records    []ContentRecord    // Every extracted element, in document order
	Rebuilt    []string           // Items whose content was replaced
	Mismatched []string           // Items left unmodified after a structural mismatch
}

// Ignored reports whether an item is skipped by media type or because it
// is the navigation document.
func (d *DocumentTranslator) Ignored(item Item) bool {
	if item.HasProperty("nav") {
		return true
	}
	mt := strings.ToLower(item.MediaType)
	for _, prefix := range d.ignored {
		if strings.HasPrefix(mt, prefix) {
			return true
		}
	}
	return false
}

// Extract returns the translatable elements of every item that is not ignored.
func (d *DocumentTranslator) Extract(c Container) ([]ContentRecord, error) {
	var records []ContentRecord
	for _, item := range c.Items() {
		if d.Ignored(item) {
			continue
		}
		recs, err := d.mapper.Extract(item.Name, item.Content)
		if err != nil {
			return nil, err
		}
		records = append(records, recs...)
	}
	return records, nil
}

// Texts returns the text of each record.
func Texts(records []ContentRecord) []string {
	texts := make([]string, len(records))
	for i, r := range records {
		texts[i] = r.Text
	}
	return texts
}

// Process translates the container in place.
//
// If any text cannot be translated, nothing is rebuilt and the error is a
// *TranslationErrors listing every failure. An item whose structure no
// longer matches its extraction is left unmodified; the other items are
// still rebuilt and the mismatches are returned as *TranslationErrors.
// Callers must not write the container when Process returns an error.
func (d *DocumentTranslator) Process(ctx context.Context, c Container, mode Mode) (*ProcessedDocument, error) {
	records, err := d.Extract(c)
	if err != nil {
		return nil, err
	}

	doc := &ProcessedDocument{Records: records}
	d.logger.Info("extracted text", "elements", len(records))

	result, err := d.translator.Translate(ctx, Texts(records))
	if err != nil {
		return doc, err
	}
	doc.Result = result

	if result.Failed() {
		d.logger.Error("translation failed, document left unchanged", "errors", len(result.Errors))
		return doc, &TranslationErrors{Errs: result.Errors}
	}

	byContainer := make(map[string][]ContentRecord)
	var order []string
	for _, r := range records {
		if _, ok := byContainer[r.Container]; !ok {
			order = append(order, r.Container)
		}
		byContainer[r.Container] = append(byContainer[r.Container], r)
	}

	contents := make(map[string][]byte)
	for _, item := range c.Items() {
		contents[item.Name] = item.Content
	}

	opts := RebuildOptions{Mode: mode, TargetLang: d.translator.TargetLang()}
	var errs []error

	for _, name := range order {
		out, err := d.mapper.Rebuild(name, contents[name], byContainer[name], result.Translations, opts)
		if err != nil {
			var mismatch *StructuralMismatchError
			if errors.As(err, &mismatch) {
				d.logger.Error("structure changed, item left unmodified", "item", name, "error", err)
				doc.Mismatched = append(doc.Mismatched, name)
			}
			errs = append(errs, err)
			continue
		}
		if err := c.SetContent(name, out); err != nil {
			errs = append(errs, err)
			continue
		}
		doc.Rebuilt = append(doc.Rebuilt, name)
	}

	if len(errs) > 0 {
		return doc, &TranslationErrors{Errs: errs}
	}
	return doc, nil
}

// OutputPath returns the default output location for a translated book: the
// lowercase input name with every non-alphanumeric rune replaced by "_",
// followed by ".dual.epub" for ModeInline or ".tran.epub" for ModeReplace,
// in the input's directory.
func OutputPath(input string, mode Mode) string {
	base := strings.ToLower(filepath.Base(input))
	base = strings.TrimSuffix(base, ".epub")

	name := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return '_'
	}, base)

	if mode == ModeReplace {
		name += ".tran.epub"
	} else {
		name += ".dual.epub"
	}
	return filepath.Join(filepath.Dir(input), name)
}
