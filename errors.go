package epubtl

import (
	"fmt"
	"strings"
)

// InvalidTextError indicates a text that cannot be chunked because it, or
// one of its sentences, exceeds the chunk size limit.
type InvalidTextError struct {
	Text  string
	Size  int // Size of the offending text or sentence in bytes
	Limit int
}

func (e *InvalidTextError) Error() string {
	return fmt.Sprintf("invalid text: %d bytes exceeds chunk size %d: %q", e.Size, e.Limit, preview(e.Text))
}

// CannotTranslateError reports a fragment whose chunk failed at the provider.
type CannotTranslateError struct {
	Text  string // Original text the fragment belongs to
	Cause error
}

func (e *CannotTranslateError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("cannot translate %q: %v", preview(e.Text), e.Cause)
	}
	return fmt.Sprintf("cannot translate %q", preview(e.Text))
}

func (e *CannotTranslateError) Unwrap() error {
	return e.Cause
}

// StructuralMismatchError indicates that the rebuild traversal of a
// container disagrees with the extraction traversal.
type StructuralMismatchError struct {
	Container string
	Expected  int // Records found during extraction
	Got       int // Elements found during rebuild
	Index     int // First disagreeing position, -1 for a count mismatch
	Reason    string
}

func (e *StructuralMismatchError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("structural mismatch in %s: expected %d elements, got %d", e.Container, e.Expected, e.Got)
	}
	return fmt.Sprintf("structural mismatch in %s at element %d: %s", e.Container, e.Index, e.Reason)
}

// ProviderError indicates a translation backend failure (API error, rate limit, etc.).
type ProviderError struct {
	Message   string
	Cause     error
	Retryable bool // Whether the operation can be retried
}

func (e *ProviderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("provider error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("provider error: %s", e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// CacheError indicates a cache store failure.
type CacheError struct {
	Message string
	Cause   error
}

func (e *CacheError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("cache error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("cache error: %s", e.Message)
}

func (e *CacheError) Unwrap() error {
	return e.Cause
}

// ProcessorError indicates a content processing failure (parse error, etc.).
type ProcessorError struct {
	Message   string
	Cause     error
	Container string // The item that failed to process
}

func (e *ProcessorError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("processor error (%s): %s: %v", e.Container, e.Message, e.Cause)
	}
	return fmt.Sprintf("processor error (%s): %s", e.Container, e.Message)
}

func (e *ProcessorError) Unwrap() error {
	return e.Cause
}

// CountMismatchError indicates the provider returned a different number of translations than expected.
type CountMismatchError struct {
	Expected int
	Got      int
}

func (e *CountMismatchError) Error() string {
	return fmt.Sprintf("translation count mismatch: expected %d, got %d", e.Expected, e.Got)
}

// ConfigError indicates invalid configuration or API usage.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return "config error: " + e.Message
	}
	return fmt.Sprintf("config error: %s: %s", e.Field, e.Message)
}

// TranslationErrors aggregates the errors that blocked a document rebuild.
type TranslationErrors struct {
	Errs []error
}

func (e *TranslationErrors) Error() string {
	if len(e.Errs) == 1 {
		return e.Errs[0].Error()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d errors occurred:", len(e.Errs))
	for _, err := range e.Errs {
		b.WriteString("\n\t* ")
		b.WriteString(err.Error())
	}
	return b.String()
}

func (e *TranslationErrors) Unwrap() []error {
	return e.Errs
}

// preview shortens long texts in error messages.
func preview(text string) string {
	const max = 60
	r := []rune(text)
	if len(r) <= max {
		return text
	}
	return string(r[:max-3]) + "..."
}
