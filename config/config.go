// Package config loads epubtl settings from an optional YAML file.
//
// Values start from Default, are overlaid by the file and then by command
// line flags. Validate reports the first invalid field as a ConfigError.
package config

import (
	"fmt"
	"os"

	"github.com/ZaguanLabs/epubtl"
	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up in the working directory when no
// path is given.
const FileName = ".epubtl.yaml"

// Provider names.
const (
	ProviderOpenAI = "openai"
	ProviderGoogle = "google"
	ProviderMock   = "mock"
)

// DefaultChunkSizes are the request size limits in bytes per provider.
var DefaultChunkSizes = map[string]int{
	ProviderGoogle: 1000,
	ProviderOpenAI: 4000,
	ProviderMock:   2000,
}

// Config is the top-level .epubtl.yaml structure.
type Config struct {
	// SourceLang is the language of the book (default "en-US").
	SourceLang string `yaml:"source_lang"`
	// TargetLang is the language to translate into (default "zh-CN").
	TargetLang string `yaml:"target_lang"`
	// Mode is "inline" (bilingual) or "replace".
	Mode string `yaml:"mode"`

	Provider ProviderConfig `yaml:"provider"`
	Cache    CacheConfig    `yaml:"cache"`

	// Tags overrides the elements whose text is translated.
	Tags []string `yaml:"tags,omitempty"`
	// IgnoredMediaTypes overrides the media type prefixes that are never parsed.
	IgnoredMediaTypes []string `yaml:"ignored_media_types,omitempty"`

	// Concurrency is the number of chunks translated at once (default 1).
	Concurrency int `yaml:"concurrency"`
	// Retries is the number of retries per chunk after a retryable failure.
	Retries int `yaml:"retries"`
	// RequestsPerMinute limits provider calls; 0 disables the limit.
	RequestsPerMinute int `yaml:"requests_per_minute"`

	// Force allows overwriting an existing output file.
	Force bool `yaml:"force"`
	// Verbose enables debug logging.
	Verbose bool `yaml:"verbose"`
}

// ProviderConfig selects and configures the translation backend.
type ProviderConfig struct {
	// Name is "openai", "google" or "mock".
	Name string `yaml:"name"`
	// Model is the chat model for the openai provider.
	Model string `yaml:"model,omitempty"`
	// APIKey for the openai provider; OPENAI_API_KEY is used when empty.
	APIKey string `yaml:"api_key,omitempty"`
	// BaseURL points the openai provider at a compatible server.
	BaseURL string `yaml:"base_url,omitempty"`
	// Project is the Google Cloud project for the google provider.
	Project string `yaml:"project,omitempty"`
	// Location is the Cloud Translation location (default "global").
	Location string `yaml:"location,omitempty"`
	// ChunkSize overrides the provider's request size limit in bytes.
	ChunkSize int `yaml:"chunk_size,omitempty"`
}

// CacheConfig selects the translation cache.
type CacheConfig struct {
	// Path is the JSON cache file. Empty derives a name next to the book.
	Path string `yaml:"path,omitempty"`
	// RedisURL selects a Redis cache instead of a file.
	RedisURL string `yaml:"redis_url,omitempty"`
	// RedisKey is the hash holding the cache (default "epubtl:cache").
	RedisKey string `yaml:"redis_key,omitempty"`
	// TTL in seconds refreshed on every save; 0 keeps entries forever.
	TTL int `yaml:"ttl,omitempty"`
	// Disabled keeps translations in memory only.
	Disabled bool `yaml:"disabled,omitempty"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		SourceLang:  "en-US",
		TargetLang:  "zh-CN",
		Mode:        "inline",
		Provider:    ProviderConfig{Name: ProviderOpenAI},
		Concurrency: 1,
		Retries:     3,
	}
}

// Load reads the YAML file at path over Default. An empty path tries
// FileName and falls back to Default when it does not exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = FileName
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && os.IsNotExist(err) {
			cfg.ApplyEnv()
			return cfg, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	cfg.ApplyEnv()
	return cfg, nil
}

// ApplyEnv fills settings that may come from the environment.
func (c *Config) ApplyEnv() {
	if c.Provider.APIKey == "" {
		c.Provider.APIKey = os.Getenv("OPENAI_API_KEY")
	}
}

// ChunkSize returns the configured request size limit or the provider default.
func (c *Config) ChunkSize() int {
	if c.Provider.ChunkSize > 0 {
		return c.Provider.ChunkSize
	}
	return DefaultChunkSizes[c.Provider.Name]
}

// ParsedMode returns Mode as an epubtl.Mode.
func (c *Config) ParsedMode() (epubtl.Mode, error) {
	return epubtl.ParseMode(c.Mode)
}

// Validate checks the settings and returns the first problem found.
// Provider credentials are checked separately by ValidateCredentials.
func (c *Config) Validate() error {
	if c.TargetLang == "" {
		return &epubtl.ConfigError{Field: "target_lang", Message: "is required"}
	}
	if _, err := c.ParsedMode(); err != nil {
		return err
	}

	if _, ok := DefaultChunkSizes[c.Provider.Name]; !ok {
		return &epubtl.ConfigError{Field: "provider.name", Message: fmt.Sprintf("unknown provider %q (want openai, google or mock)", c.Provider.Name)}
	}

	if c.Provider.ChunkSize < 0 {
		return &epubtl.ConfigError{Field: "provider.chunk_size", Message: "must not be negative"}
	}
	if c.Concurrency < 1 {
		return &epubtl.ConfigError{Field: "concurrency", Message: "must be at least 1"}
	}
	if c.Retries < 0 {
		return &epubtl.ConfigError{Field: "retries", Message: "must not be negative"}
	}
	if c.RequestsPerMinute < 0 {
		return &epubtl.ConfigError{Field: "requests_per_minute", Message: "must not be negative"}
	}
	if c.Cache.Path != "" && c.Cache.RedisURL != "" {
		return &epubtl.ConfigError{Field: "cache", Message: "set either path or redis_url, not both"}
	}
	if c.Cache.TTL < 0 {
		return &epubtl.ConfigError{Field: "cache.ttl", Message: "must not be negative"}
	}
	return nil
}

// ValidateCredentials checks that the selected provider can authenticate.
func (c *Config) ValidateCredentials() error {
	switch c.Provider.Name {
	case ProviderOpenAI:
		if c.Provider.APIKey == "" && c.Provider.BaseURL == "" {
			return &epubtl.ConfigError{Field: "provider.api_key", Message: "is required for openai (or set OPENAI_API_KEY)"}
		}
	case ProviderGoogle:
		if c.Provider.Project == "" {
			return &epubtl.ConfigError{Field: "provider.project", Message: "is required for google"}
		}
	}
	return nil
}
