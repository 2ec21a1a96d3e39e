package provider

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"cloud.google.com/go/translate/apiv3/translatepb"
	"github.com/ZaguanLabs/epubtl"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func echoTranslate(seen **translatepb.TranslateTextRequest) translateFunc {
	return func(ctx context.Context, req *translatepb.TranslateTextRequest) (*translatepb.TranslateTextResponse, error) {
		*seen = req
		resp := &translatepb.TranslateTextResponse{}
		for _, text := range req.GetContents() {
			resp.Translations = append(resp.Translations, &translatepb.Translation{TranslatedText: "G:" + text})
		}
		return resp, nil
	}
}

func TestGoogleProvider_Translate(t *testing.T) {
	var seen *translatepb.TranslateTextRequest
	p := newGoogleProvider(GoogleConfig{ProjectID: "books"}, echoTranslate(&seen))

	result, err := p.Translate(context.Background(), TranslateRequest{
		Texts:      []string{"Hello", "World"},
		SourceLang: "en_us",
		TargetLang: "zh_cn",
	})
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}

	if len(result) != 2 || result[0] != "G:Hello" || result[1] != "G:World" {
		t.Errorf("Unexpected translations: %v", result)
	}
	if seen.GetParent() != "projects/books/locations/global" {
		t.Errorf("Unexpected parent %q", seen.GetParent())
	}
	if seen.GetMimeType() != "text/plain" {
		t.Errorf("Unexpected mime type %q", seen.GetMimeType())
	}
	if seen.GetSourceLanguageCode() != "en-US" || seen.GetTargetLanguageCode() != "zh-CN" {
		t.Errorf("Unexpected language codes %q → %q", seen.GetSourceLanguageCode(), seen.GetTargetLanguageCode())
	}
}

func TestGoogleProvider_Location(t *testing.T) {
	var seen *translatepb.TranslateTextRequest
	p := newGoogleProvider(GoogleConfig{ProjectID: "books", Location: "us-central1"}, echoTranslate(&seen))

	if _, err := p.Translate(context.Background(), TranslateRequest{Texts: []string{"a"}, TargetLang: "fr"}); err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if seen.GetParent() != "projects/books/locations/us-central1" {
		t.Errorf("Unexpected parent %q", seen.GetParent())
	}
}

func TestGoogleProvider_Translate_Empty(t *testing.T) {
	called := false
	p := newGoogleProvider(GoogleConfig{ProjectID: "books"}, func(ctx context.Context, req *translatepb.TranslateTextRequest) (*translatepb.TranslateTextResponse, error) {
		called = true
		return nil, nil
	})

	result, err := p.Translate(context.Background(), TranslateRequest{})
	if err != nil || len(result) != 0 {
		t.Errorf("Expected empty result, got %v, %v", result, err)
	}
	if called {
		t.Error("Empty requests should not reach the API")
	}
}

func TestGoogleProvider_Translate_Error(t *testing.T) {
	p := newGoogleProvider(GoogleConfig{ProjectID: "books"}, func(ctx context.Context, req *translatepb.TranslateTextRequest) (*translatepb.TranslateTextResponse, error) {
		return nil, status.Error(codes.Unavailable, "try again")
	})

	_, err := p.Translate(context.Background(), TranslateRequest{Texts: []string{"a"}, TargetLang: "fr"})

	var provErr *epubtl.ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("Expected ProviderError, got %v", err)
	}
	if !provErr.Retryable {
		t.Error("Unavailable should be retryable")
	}
}

func TestGoogleProvider_Translate_CountMismatch(t *testing.T) {
	p := newGoogleProvider(GoogleConfig{ProjectID: "books"}, func(ctx context.Context, req *translatepb.TranslateTextRequest) (*translatepb.TranslateTextResponse, error) {
		return &translatepb.TranslateTextResponse{}, nil
	})

	_, err := p.Translate(context.Background(), TranslateRequest{Texts: []string{"a"}, TargetLang: "fr"})

	var mismatch *epubtl.CountMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("Expected CountMismatchError, got %v", err)
	}
}

func TestGoogleProvider_Defaults(t *testing.T) {
	p := newGoogleProvider(GoogleConfig{ProjectID: "books"}, nil)

	if p.ChunkSize() != GoogleChunkSize {
		t.Errorf("Expected chunk size %d, got %d", GoogleChunkSize, p.ChunkSize())
	}
	if err := p.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
}

func TestNewGoogleProvider_RequiresProject(t *testing.T) {
	_, err := NewGoogleProvider(context.Background(), GoogleConfig{})

	var cfgErr *epubtl.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("Expected ConfigError, got %v", err)
	}
}

func TestIsRetryableGoogleError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"unavailable", status.Error(codes.Unavailable, "try again"), true},
		{"quota", status.Error(codes.ResourceExhausted, "quota exceeded"), true},
		{"deadline", status.Error(codes.DeadlineExceeded, "slow"), true},
		{"internal", status.Error(codes.Internal, "backend"), true},
		{"invalid argument", status.Error(codes.InvalidArgument, "internal field is invalid"), false},
		{"permission denied", status.Error(codes.PermissionDenied, "service unavailable for this project"), false},
		{"wrapped status", fmt.Errorf("translate: %w", status.Error(codes.Unavailable, "x")), true},
		{"no status", errors.New("dial tcp: connection refused"), true},
		{"no status, not transient", errors.New("bad credentials file"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isRetryableGoogleError(tt.err); got != tt.want {
				t.Errorf("isRetryableGoogleError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestGoogleProvider_Translate_InvalidArgumentNotRetried(t *testing.T) {
	calls := 0
	p := newGoogleProvider(GoogleConfig{ProjectID: "books"}, func(ctx context.Context, req *translatepb.TranslateTextRequest) (*translatepb.TranslateTextResponse, error) {
		calls++
		return nil, status.Error(codes.InvalidArgument, "internal: unsupported target language")
	})

	retrying := epubtl.NewRetryableProvider(p, epubtl.RetryConfig{MaxRetries: 3, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond})
	_, err := retrying.Translate(context.Background(), TranslateRequest{Texts: []string{"a"}, TargetLang: "xx"})

	if err == nil {
		t.Fatal("Expected an error")
	}
	if calls != 1 {
		t.Errorf("InvalidArgument should not be retried, got %d calls", calls)
	}
}
