package epubtl

import (
	"fmt"
	"strings"
)

// Mode controls how translations are written back into a document.
type Mode int

const (
	// ModeInline keeps the original element and inserts a translated
	// sibling right after it.
	ModeInline Mode = iota
	// ModeReplace overwrites the element's text with its translation.
	ModeReplace
)

func (m Mode) String() string {
	switch m {
	case ModeInline:
		return "inline"
	case ModeReplace:
		return "replace"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode converts "inline" or "replace" (case-insensitive) to a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "inline", "dual":
		return ModeInline, nil
	case "replace":
		return ModeReplace, nil
	}
	return 0, &ConfigError{Field: "mode", Message: fmt.Sprintf("unknown mode %q", s)}
}

// FragmentMeta ties a chunk fragment back to the text it came from.
type FragmentMeta struct {
	TextID   int    // Position of the distinct source text within a session
	LineID   int    // Sub-line position when the text was split, 0 otherwise
	Original string // The full source text
}

// Chunk is a batch of fragments sent to a provider in one request.
type Chunk struct {
	Meta  []FragmentMeta
	Texts []string
	Size  int // Sum of the UTF-8 byte lengths of Texts
}

// Len returns the number of fragments in the chunk.
func (c *Chunk) Len() int {
	return len(c.Texts)
}

// TranslatedFragment is a single provider result paired with its origin.
type TranslatedFragment struct {
	Meta        FragmentMeta
	Translation string
}

// TranslationResult is the outcome of a translation session.
type TranslationResult struct {
	// Translations maps every requested text to its translation. Texts that
	// failed are absent.
	Translations map[string]string
	// Errors lists every InvalidTextError and CannotTranslateError collected
	// during the session.
	Errors []error

	TranslatedCount int // Distinct texts newly translated
	CachedCount     int // Distinct texts served from the store
	BlankCount      int // Requested texts that were blank
	ChunkCount      int // Requests sent to the provider
}

// Failed reports whether any text could not be translated.
func (r *TranslationResult) Failed() bool {
	return len(r.Errors) > 0
}

// Item is a single entry of a document container (e.g. a file in an EPUB).
type Item struct {
	Name       string   // File name within the container
	MediaType  string   // MIME type, used for the ignore check
	Properties []string // Manifest properties such as "nav"
	Content    []byte
}

// HasProperty reports whether the item carries the given manifest property.
func (i Item) HasProperty(p string) bool {
	for _, prop := range i.Properties {
		if prop == p {
			return true
		}
	}
	return false
}

// ContentRecord is one translatable element found during extraction.
type ContentRecord struct {
	Text      string // Normalized text, the translation key
	Container string // Name of the item the element lives in
	Tag       string // Lowercase element name
	Path      string // Child-index path from the document root, e.g. "0/1/4"
	Node      any    // Parser-specific node reference
}

// DefaultTags are the elements whose text is translated by default.
var DefaultTags = []string{"p", "h1", "h2", "h3", "h4", "h5", "h6", "li"}

// DefaultIgnoredMediaTypes lists media type prefixes of items that never
// carry translatable text.
var DefaultIgnoredMediaTypes = []string{
	"image/",
	"audio/",
	"video/",
	"font/",
	"application/font",
	"application/x-font",
	"application/vnd.ms-opentype",
	"text/css",
	"application/x-dtbncx+xml",
	"application/javascript",
	"text/javascript",
}

// RTLLanguages contains language codes that use right-to-left text direction.
var RTLLanguages = map[string]bool{
	"ar": true, // Arabic
	"he": true, // Hebrew
	"fa": true, // Persian/Farsi
	"ur": true, // Urdu
	"ps": true, // Pashto
	"sd": true, // Sindhi
	"ug": true, // Uyghur
	"yi": true, // Yiddish
}
