package epubtl

import (
	"context"
	"log/slog"
	"strings"

	"github.com/ZaguanLabs/epubtl/cache"
	"github.com/google/uuid"
)

// Translator runs translation sessions: it looks texts up in the store,
// chunks what is missing, sends the chunks to the provider and persists
// the new translations.
//
// A Translator does no locking around its store. Running sessions against
// the same backing store concurrently is the caller's responsibility.
type Translator struct {
	provider    Provider
	store       TranslationStore
	sourceLang  string
	targetLang  string
	chunkSize   int
	concurrency int
	logger      *slog.Logger
}

// Provider is the interface for translation backends. Translate returns one
// translation per request text, in order, or an error for the whole batch.
type Provider interface {
	Translate(ctx context.Context, req TranslateRequest) ([]string, error)
}

// ChunkSizer is implemented by providers that know their request size limit.
type ChunkSizer interface {
	ChunkSize() int
}

// TranslateRequest contains the parameters for a translation request.
type TranslateRequest struct {
	Texts      []string
	SourceLang string
	TargetLang string
}

// TranslationStore is the durable text to translation mapping. It is loaded
// once and saved at most once per session.
type TranslationStore interface {
	Load(ctx context.Context) (map[string]string, error)
	Save(ctx context.Context, entries map[string]string) error
}

// TranslatorOption is a functional option for configuring the Translator.
type TranslatorOption func(*Translator)

// WithStore sets the translation store. Without one, translations live in
// memory for the lifetime of the Translator.
func WithStore(store TranslationStore) TranslatorOption {
	return func(t *Translator) {
		t.store = store
	}
}

// WithLanguages sets the source and target language codes.
func WithLanguages(source, target string) TranslatorOption {
	return func(t *Translator) {
		t.sourceLang = source
		t.targetLang = target
	}
}

// WithChunkSize sets the maximum request size in bytes.
func WithChunkSize(size int) TranslatorOption {
	return func(t *Translator) {
		t.chunkSize = size
	}
}

// WithConcurrency sends up to n chunks to the provider at once.
// The default of 1 sends chunks one at a time in order.
func WithConcurrency(n int) TranslatorOption {
	return func(t *Translator) {
		t.concurrency = n
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) TranslatorOption {
	return func(t *Translator) {
		t.logger = logger
	}
}

// NewTranslator creates a Translator for the given provider. The chunk size
// defaults to the provider's own limit when it implements ChunkSizer.
func NewTranslator(provider Provider, opts ...TranslatorOption) (*Translator, error) {
	t := &Translator{
		provider:    provider,
		sourceLang:  "en-US",
		targetLang:  "zh-CN",
		concurrency: 1,
	}

	for _, opt := range opts {
		opt(t)
	}

	if t.provider == nil {
		return nil, &ConfigError{Field: "provider", Message: "must specify a provider"}
	}
	if t.chunkSize == 0 {
		if cs, ok := t.provider.(ChunkSizer); ok {
			t.chunkSize = cs.ChunkSize()
		}
	}
	if t.chunkSize <= 0 {
		return nil, &ConfigError{Field: "chunk_size", Message: "must specify a positive chunk size"}
	}
	if t.targetLang == "" {
		return nil, &ConfigError{Field: "target_lang", Message: "must not be empty"}
	}
	if t.store == nil {
		t.store = cache.NewMemoryStore()
	}
	if t.logger == nil {
		t.logger = slog.New(slog.DiscardHandler)
	}
	if t.concurrency < 1 {
		t.concurrency = 1
	}

	return t, nil
}

// Translate translates texts, serving what it can from the store.
//
// The returned result maps every requested text to its translation: blank
// texts map to "", and texts that could not be translated are absent and
// reported in result.Errors. The error return is reserved for usage and
// store failures.
func (t *Translator) Translate(ctx context.Context, texts []string) (*TranslationResult, error) {
	if texts == nil {
		return nil, &ConfigError{Field: "texts", Message: "must specify a text or a list of texts"}
	}

	log := t.logger.With("session", uuid.NewString())

	entries, err := t.store.Load(ctx)
	if err != nil {
		return nil, &CacheError{Message: "loading translations", Cause: err}
	}
	if entries == nil {
		entries = make(map[string]string)
	}

	plan := newPlan(texts, entries, t.chunkSize)
	result := &TranslationResult{
		Translations: make(map[string]string, len(texts)),
		Errors:       plan.Errors,
		CachedCount:  len(plan.Cached),
		BlankCount:   len(plan.Blank),
		ChunkCount:   len(plan.Chunks),
	}
	for _, text := range plan.Blank {
		result.Translations[text] = ""
	}
	for _, text := range plan.Cached {
		result.Translations[text] = entries[text]
	}

	if len(plan.Chunks) > 0 {
		log.Debug("dispatching chunks", "texts", len(plan.Pending), "chunks", len(plan.Chunks), "chunk_size", t.chunkSize)

		outcomes := t.dispatch(ctx, plan.Chunks)
		fragments, errs := collectOutcomes(plan.Chunks, outcomes)
		for i, o := range outcomes {
			if o.err != nil {
				log.Warn("chunk failed", "chunk", i, "fragments", plan.Chunks[i].Len(), "error", o.err)
			}
		}
		result.Errors = append(result.Errors, errs...)

		translated := Reassemble(fragments)
		for text, tr := range translated {
			entries[text] = tr
			result.Translations[text] = tr
		}
		result.TranslatedCount = len(translated)

		if len(translated) > 0 {
			if err := t.store.Save(ctx, entries); err != nil {
				return nil, &CacheError{Message: "saving translations", Cause: err}
			}
		}
	}

	log.Info("translation session finished",
		"requested", len(texts),
		"cached", result.CachedCount,
		"translated", result.TranslatedCount,
		"blank", result.BlankCount,
		"chunks", result.ChunkCount,
		"errors", len(result.Errors),
	)

	return result, nil
}

// TranslateText translates a single text. Any session error is returned as
// *TranslationErrors.
func (t *Translator) TranslateText(ctx context.Context, text string) (string, error) {
	result, err := t.Translate(ctx, []string{text})
	if err != nil {
		return "", err
	}
	if result.Failed() {
		return "", &TranslationErrors{Errs: result.Errors}
	}
	return result.Translations[text], nil
}

// Plan reports what a call to Translate would do without calling the provider.
func (t *Translator) Plan(ctx context.Context, texts []string) (*Plan, error) {
	entries, err := t.store.Load(ctx)
	if err != nil {
		return nil, &CacheError{Message: "loading translations", Cause: err}
	}
	return newPlan(texts, entries, t.chunkSize), nil
}

// chunkOutcome is the provider's answer for one chunk.
type chunkOutcome struct {
	translations []string
	err          error
}

// dispatch sends every chunk to the provider, one at a time unless
// concurrency is enabled. outcomes[i] belongs to chunks[i].
func (t *Translator) dispatch(ctx context.Context, chunks []Chunk) []chunkOutcome {
	if t.concurrency > 1 && len(chunks) > 1 {
		return dispatchParallel(ctx, chunks, t.concurrency, t.translateChunk)
	}

	outcomes := make([]chunkOutcome, len(chunks))
	for i := range chunks {
		outcomes[i].translations, outcomes[i].err = t.translateChunk(ctx, chunks[i])
	}
	return outcomes
}

// translateChunk sends a single chunk and validates the response length.
func (t *Translator) translateChunk(ctx context.Context, chunk Chunk) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	results, err := t.provider.Translate(ctx, TranslateRequest{
		Texts:      chunk.Texts,
		SourceLang: t.sourceLang,
		TargetLang: t.targetLang,
	})
	if err != nil {
		return nil, err
	}
	if len(results) != chunk.Len() {
		return nil, &CountMismatchError{Expected: chunk.Len(), Got: len(results)}
	}
	return results, nil
}

// collectOutcomes pairs successful translations with their fragment
// metadata. A failed chunk yields one CannotTranslateError per fragment,
// and every text with a fragment in a failed chunk is dropped entirely so
// that no partial translation is reassembled.
func collectOutcomes(chunks []Chunk, outcomes []chunkOutcome) ([]TranslatedFragment, []error) {
	var errs []error
	failed := make(map[int]bool)

	for i, o := range outcomes {
		if o.err == nil {
			continue
		}
		for _, meta := range chunks[i].Meta {
			errs = append(errs, &CannotTranslateError{Text: meta.Original, Cause: o.err})
			failed[meta.TextID] = true
		}
	}

	var fragments []TranslatedFragment
	for i, o := range outcomes {
		if o.err != nil {
			continue
		}
		for j, meta := range chunks[i].Meta {
			if failed[meta.TextID] {
				continue
			}
			fragments = append(fragments, TranslatedFragment{Meta: meta, Translation: o.translations[j]})
		}
	}

	return fragments, errs
}

// SourceLang returns the source language.
func (t *Translator) SourceLang() string {
	return t.sourceLang
}

// TargetLang returns the target language.
func (t *Translator) TargetLang() string {
	return t.targetLang
}

// ChunkSize returns the maximum request size in bytes.
func (t *Translator) ChunkSize() int {
	return t.chunkSize
}

// isBlank reports whether text has no content after trimming.
func isBlank(text string) bool {
	return strings.TrimSpace(text) == ""
}
