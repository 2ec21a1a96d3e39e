package provider

import (
	"context"
	"sync"
)

// MockPrefix is prepended to every text the MockProvider translates.
const MockPrefix = "MOCKED: "

// MockChunkSize is the request size limit of the MockProvider in bytes.
const MockChunkSize = 2000

// MockProvider is a provider for tests and dry runs that returns each
// text with MockPrefix prepended and records every chunk it receives.
type MockProvider struct {
	Translations map[string]string // Fixed translations that override the prefix
	Err          error             // Returned by every call when set

	mu          sync.Mutex
	callCount   int
	chunks      [][]string
	lastRequest *TranslateRequest
}

// NewMockProvider creates a new mock provider.
func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

// Translate returns mock translations.
func (m *MockProvider) Translate(ctx context.Context, req TranslateRequest) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.callCount++
	m.lastRequest = &req
	m.chunks = append(m.chunks, append([]string(nil), req.Texts...))

	if m.Err != nil {
		return nil, m.Err
	}

	results := make([]string, len(req.Texts))
	for i, text := range req.Texts {
		if translation, ok := m.Translations[text]; ok {
			results[i] = translation
		} else {
			results[i] = MockPrefix + text
		}
	}

	return results, nil
}

// ChunkSize returns MockChunkSize.
func (m *MockProvider) ChunkSize() int {
	return MockChunkSize
}

// CallCount returns the number of Translate calls.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Chunks returns a copy of every chunk received, in call order.
func (m *MockProvider) Chunks() [][]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]string, len(m.chunks))
	copy(out, m.chunks)
	return out
}

// LastRequest returns the last request received, or nil.
func (m *MockProvider) LastRequest() *TranslateRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastRequest
}

// Reset clears the recorded calls.
func (m *MockProvider) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.chunks = nil
	m.lastRequest = nil
}

// Verify MockProvider implements Provider
var _ Provider = (*MockProvider)(nil)
