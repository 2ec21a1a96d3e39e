package provider

import (
	"context"
	"fmt"

	translate "cloud.google.com/go/translate/apiv3"
	"cloud.google.com/go/translate/apiv3/translatepb"
	"github.com/ZaguanLabs/epubtl"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// GoogleChunkSize is the default request size limit for Cloud Translation in bytes.
const GoogleChunkSize = 1000

// GoogleConfig holds configuration for the Google Cloud Translation provider.
type GoogleConfig struct {
	ProjectID string // Google Cloud project (required)
	Location  string // API location (default: "global")
	ChunkSize int    // Request size limit in bytes (default: GoogleChunkSize)
}

// translateFunc sends one request to the Cloud Translation API.
type translateFunc func(ctx context.Context, req *translatepb.TranslateTextRequest) (*translatepb.TranslateTextResponse, error)

// GoogleProvider implements Provider using the Cloud Translation v3 API.
// Credentials come from Application Default Credentials.
type GoogleProvider struct {
	translate translateFunc
	close     func() error
	parent    string
	chunkSize int
}

// NewGoogleProvider creates a new Google Cloud Translation provider.
func NewGoogleProvider(ctx context.Context, cfg GoogleConfig) (*GoogleProvider, error) {
	if cfg.ProjectID == "" {
		return nil, &epubtl.ConfigError{Field: "google.project", Message: "project id is required"}
	}

	client, err := translate.NewTranslationClient(ctx)
	if err != nil {
		return nil, &epubtl.ProviderError{
			Message: "failed to create Cloud Translation client",
			Cause:   err,
		}
	}

	p := newGoogleProvider(cfg, func(ctx context.Context, req *translatepb.TranslateTextRequest) (*translatepb.TranslateTextResponse, error) {
		return client.TranslateText(ctx, req)
	})
	p.close = client.Close
	return p, nil
}

func newGoogleProvider(cfg GoogleConfig, fn translateFunc) *GoogleProvider {
	location := cfg.Location
	if location == "" {
		location = "global"
	}

	chunkSize := cfg.ChunkSize
	if chunkSize <= 0 {
		chunkSize = GoogleChunkSize
	}

	return &GoogleProvider{
		translate: fn,
		close:     func() error { return nil },
		parent:    fmt.Sprintf("projects/%s/locations/%s", cfg.ProjectID, location),
		chunkSize: chunkSize,
	}
}

// Translate translates a batch of texts with one TranslateText call.
func (p *GoogleProvider) Translate(ctx context.Context, req TranslateRequest) ([]string, error) {
	if len(req.Texts) == 0 {
		return []string{}, nil
	}

	resp, err := p.translate(ctx, &translatepb.TranslateTextRequest{
		Parent:             p.parent,
		Contents:           req.Texts,
		MimeType:           "text/plain",
		SourceLanguageCode: epubtl.NormalizeLang(req.SourceLang),
		TargetLanguageCode: epubtl.NormalizeLang(req.TargetLang),
	})
	if err != nil {
		return nil, &epubtl.ProviderError{
			Message:   "Cloud Translation call failed",
			Cause:     err,
			Retryable: isRetryableGoogleError(err),
		}
	}

	translations := resp.GetTranslations()
	if len(translations) != len(req.Texts) {
		return nil, &epubtl.CountMismatchError{
			Expected: len(req.Texts),
			Got:      len(translations),
		}
	}

	result := make([]string, len(translations))
	for i, tr := range translations {
		result[i] = tr.GetTranslatedText()
	}
	return result, nil
}

// ChunkSize returns the request size limit in bytes.
func (p *GoogleProvider) ChunkSize() int {
	return p.chunkSize
}

// Close releases the underlying client connection.
func (p *GoogleProvider) Close() error {
	return p.close()
}

// isRetryableGoogleError decides by gRPC status code. Errors that carry no
// status, such as dial failures, fall back to the transport checks.
func isRetryableGoogleError(err error) bool {
	st, ok := status.FromError(err)
	if !ok {
		return isRetryableError(err)
	}

	switch st.Code() {
	case codes.Unavailable, codes.ResourceExhausted, codes.DeadlineExceeded, codes.Internal:
		return true
	default:
		return false
	}
}

// Verify GoogleProvider implements Provider
var _ Provider = (*GoogleProvider)(nil)
