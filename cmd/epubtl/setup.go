package main

import (
	"context"
	"log/slog"

	"github.com/ZaguanLabs/epubtl"
	"github.com/ZaguanLabs/epubtl/cache"
	"github.com/ZaguanLabs/epubtl/config"
	"github.com/ZaguanLabs/epubtl/provider"
)

func noClose() error { return nil }

// openStore returns the cache selected by cfg. A file cache without an
// explicit path is named after the book and the language pair.
func openStore(cfg *config.Config, bookPath string) (epubtl.TranslationStore, func() error, error) {
	switch {
	case cfg.Cache.Disabled:
		return cache.NewMemoryStore(), noClose, nil

	case cfg.Cache.RedisURL != "":
		store, err := cache.NewRedisStore(cache.RedisConfig{
			URL: cfg.Cache.RedisURL,
			Key: cfg.Cache.RedisKey,
			TTL: cfg.Cache.TTL,
		})
		if err != nil {
			return nil, nil, &epubtl.CacheError{Message: "cannot connect to redis", Cause: err}
		}
		return store, store.Close, nil

	default:
		path := cfg.Cache.Path
		if path == "" {
			if bookPath == "" {
				return nil, nil, &epubtl.ConfigError{Field: "cache", Message: "set a cache path or redis url"}
			}
			path = epubtl.DefaultCachePath(bookPath, cfg.SourceLang, cfg.TargetLang)
		}
		store, err := cache.NewFileStore(path)
		if err != nil {
			return nil, nil, &epubtl.CacheError{Message: "cannot open cache file", Cause: err}
		}
		return store, noClose, nil
	}
}

// buildProvider returns the backend selected by cfg, wrapped with rate
// limiting and retries when configured.
func buildProvider(ctx context.Context, cfg *config.Config, logger *slog.Logger) (epubtl.Provider, func() error, error) {
	var (
		p      epubtl.Provider
		closer = noClose
	)

	switch cfg.Provider.Name {
	case config.ProviderMock:
		return provider.NewMockProvider(), noClose, nil

	case config.ProviderOpenAI:
		p = provider.NewOpenAIProvider(provider.OpenAIConfig{
			APIKey:    cfg.Provider.APIKey,
			Model:     cfg.Provider.Model,
			BaseURL:   cfg.Provider.BaseURL,
			ChunkSize: cfg.ChunkSize(),
		})

	case config.ProviderGoogle:
		g, err := provider.NewGoogleProvider(ctx, provider.GoogleConfig{
			ProjectID: cfg.Provider.Project,
			Location:  cfg.Provider.Location,
			ChunkSize: cfg.ChunkSize(),
		})
		if err != nil {
			return nil, nil, err
		}
		p, closer = g, g.Close

	default:
		return nil, nil, &epubtl.ConfigError{Field: "provider.name", Message: "unknown provider " + cfg.Provider.Name}
	}

	if cfg.RequestsPerMinute > 0 {
		p = epubtl.NewRateLimitedProvider(p, epubtl.RateLimitConfig{RequestsPerMinute: cfg.RequestsPerMinute})
	}
	if cfg.Retries > 0 {
		rc := epubtl.DefaultRetryConfig()
		rc.MaxRetries = cfg.Retries
		rc.Logger = logger
		p = epubtl.NewRetryableProvider(p, rc)
	}

	return p, closer, nil
}
