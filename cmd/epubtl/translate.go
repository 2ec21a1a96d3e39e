package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ZaguanLabs/epubtl"
	"github.com/ZaguanLabs/epubtl/config"
	"github.com/ZaguanLabs/epubtl/epub"
	"github.com/ZaguanLabs/epubtl/processor"
	"github.com/ZaguanLabs/epubtl/provider"
	"github.com/spf13/cobra"
)

type translateFlags struct {
	configPath string
	source     string
	target     string
	mode       string
	output     string
	force      bool
	dryRun     bool
	jsonOut    bool
	verbose    bool
	quiet      bool

	provider    string
	model       string
	apiKey      string
	baseURL     string
	project     string
	location    string
	chunkSize   int
	concurrency int
	retries     int
	rpm         int
	tags        string

	cachePath string
	noCache   bool
	redisURL  string
	redisKey  string
	cacheTTL  int
}

func newTranslateCmd() *cobra.Command {
	f := &translateFlags{}

	cmd := &cobra.Command{
		Use:   "translate <book.epub>",
		Short: "Translate a book",
		Long: `Translate the paragraphs, headings and list items of an EPUB book.

Inline mode (default) writes a bilingual book with each translation placed
after its original; replace mode writes a book in the target language only.
The output defaults to <name>.dual.epub or <name>.tran.epub next to the input
and is never overwritten without --force. Nothing is written when any text
fails to translate.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, f)
			if err != nil {
				return err
			}
			return runTranslate(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg, f, args[0])
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.configPath, "config", "c", "", "Config file (default: ./"+config.FileName+" if present)")
	fl.StringVarP(&f.source, "source", "s", "", "Source language code (e.g., en-US)")
	fl.StringVarP(&f.target, "target", "t", "", "Target language code (e.g., zh-CN)")
	fl.StringVarP(&f.mode, "mode", "m", "", "Output mode: inline (bilingual) or replace")
	fl.StringVarP(&f.output, "output", "o", "", "Output file (default: derived from the input name)")
	fl.BoolVar(&f.force, "force", false, "Overwrite an existing output file")
	fl.BoolVar(&f.dryRun, "dry-run", false, "Show what would be translated without calling the provider")
	fl.BoolVar(&f.jsonOut, "json", false, "Print the summary as JSON")
	fl.BoolVarP(&f.verbose, "verbose", "v", false, "Enable debug logging")
	fl.BoolVarP(&f.quiet, "quiet", "q", false, "Only log warnings and errors")

	fl.StringVar(&f.provider, "provider", "", "Translation provider: openai, google or mock")
	fl.StringVar(&f.model, "model", "", "OpenAI model")
	fl.StringVar(&f.apiKey, "api-key", "", "OpenAI API key (default: OPENAI_API_KEY env)")
	fl.StringVar(&f.baseURL, "base-url", "", "OpenAI-compatible API base URL")
	fl.StringVar(&f.project, "project", "", "Google Cloud project")
	fl.StringVar(&f.location, "location", "", "Google Cloud Translation location")
	fl.IntVar(&f.chunkSize, "chunk-size", 0, "Request size limit in bytes (default: per provider)")
	fl.IntVar(&f.concurrency, "concurrency", 0, "Chunks translated at once")
	fl.IntVar(&f.retries, "retries", 0, "Retries per chunk after a retryable failure")
	fl.IntVar(&f.rpm, "rpm", 0, "Maximum provider requests per minute (0 = unlimited)")
	fl.StringVar(&f.tags, "tags", "", "Comma-separated elements to translate")

	fl.StringVar(&f.cachePath, "cache", "", "Cache file (default: derived from the input and languages)")
	fl.BoolVar(&f.noCache, "no-cache", false, "Keep translations in memory only")
	fl.StringVar(&f.redisURL, "redis-url", "", "Use a Redis cache at this URL")
	fl.StringVar(&f.redisKey, "redis-key", "", "Redis hash holding the cache")
	fl.IntVar(&f.cacheTTL, "cache-ttl", 0, "Redis cache TTL in seconds (0 = no expiration)")

	return cmd
}

// loadConfig reads the config file and applies the flags the user set.
func loadConfig(cmd *cobra.Command, f *translateFlags) (*config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, err
	}

	changed := cmd.Flags().Changed
	setString := func(name string, dst *string, val string) {
		if changed(name) {
			*dst = val
		}
	}
	setInt := func(name string, dst *int, val int) {
		if changed(name) {
			*dst = val
		}
	}
	setBool := func(name string, dst *bool, val bool) {
		if changed(name) {
			*dst = val
		}
	}

	setString("source", &cfg.SourceLang, f.source)
	setString("target", &cfg.TargetLang, f.target)
	setString("mode", &cfg.Mode, f.mode)
	setString("provider", &cfg.Provider.Name, f.provider)
	setString("model", &cfg.Provider.Model, f.model)
	setString("api-key", &cfg.Provider.APIKey, f.apiKey)
	setString("base-url", &cfg.Provider.BaseURL, f.baseURL)
	setString("project", &cfg.Provider.Project, f.project)
	setString("location", &cfg.Provider.Location, f.location)
	setInt("chunk-size", &cfg.Provider.ChunkSize, f.chunkSize)
	setInt("concurrency", &cfg.Concurrency, f.concurrency)
	setInt("retries", &cfg.Retries, f.retries)
	setInt("rpm", &cfg.RequestsPerMinute, f.rpm)
	setString("cache", &cfg.Cache.Path, f.cachePath)
	setBool("no-cache", &cfg.Cache.Disabled, f.noCache)
	setString("redis-url", &cfg.Cache.RedisURL, f.redisURL)
	setString("redis-key", &cfg.Cache.RedisKey, f.redisKey)
	setInt("cache-ttl", &cfg.Cache.TTL, f.cacheTTL)
	setBool("force", &cfg.Force, f.force)
	setBool("verbose", &cfg.Verbose, f.verbose)

	if changed("tags") {
		cfg.Tags = splitList(f.tags)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func runTranslate(ctx context.Context, stdout, stderr io.Writer, cfg *config.Config, f *translateFlags, input string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := newLogger(stderr, cfg.Verbose, f.quiet)

	mode, err := cfg.ParsedMode()
	if err != nil {
		return err
	}

	output := f.output
	if output == "" {
		output = epubtl.OutputPath(input, mode)
	}
	if !f.dryRun && !cfg.Force {
		if _, err := os.Stat(output); err == nil {
			return fmt.Errorf("output %s already exists (use --force to overwrite)", output)
		}
	}

	book, err := epub.Open(input)
	if err != nil {
		return err
	}

	store, closeStore, err := openStore(cfg, input)
	if err != nil {
		return err
	}
	defer closeStore()

	var prov epubtl.Provider
	if f.dryRun {
		prov = provider.NewMockProvider()
	} else {
		if err := cfg.ValidateCredentials(); err != nil {
			return err
		}
		p, closeProvider, err := buildProvider(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer closeProvider()
		prov = p
	}

	translator, err := epubtl.NewTranslator(prov,
		epubtl.WithStore(store),
		epubtl.WithLanguages(cfg.SourceLang, cfg.TargetLang),
		epubtl.WithChunkSize(cfg.ChunkSize()),
		epubtl.WithConcurrency(cfg.Concurrency),
		epubtl.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	mapper := processor.NewXHTMLProcessor()
	if len(cfg.Tags) > 0 {
		mapper = processor.NewXHTMLProcessorWithTags(cfg.Tags)
	}

	docOpts := []epubtl.DocumentOption{epubtl.WithDocumentLogger(logger)}
	if len(cfg.IgnoredMediaTypes) > 0 {
		docOpts = append(docOpts, epubtl.WithIgnoredMediaTypes(cfg.IgnoredMediaTypes))
	}
	dt := epubtl.NewDocumentTranslator(translator, mapper, docOpts...)

	if f.dryRun {
		return runDryRun(ctx, stdout, dt, translator, book, input, f.jsonOut)
	}

	if !f.quiet {
		fmt.Fprintf(stderr, "Translating %s to %s (%s)...\n", filepath.Base(input), cfg.TargetLang, mode)
	}

	start := time.Now()
	doc, err := dt.Process(ctx, book, mode)
	elapsed := time.Since(start)
	if err != nil {
		var errs *epubtl.TranslationErrors
		if errors.As(err, &errs) && !f.quiet {
			for _, e := range errs.Errs {
				fmt.Fprintf(stderr, "  %v\n", e)
			}
		}
		return fmt.Errorf("%s not written: %w", output, err)
	}

	if err := book.Write(output); err != nil {
		return err
	}

	summary := newSummary(input, output, cfg.TargetLang, mode, doc, elapsed)
	if f.jsonOut {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	}

	if !f.quiet {
		fmt.Fprintf(stderr, "\nDone in %v\n", elapsed.Round(time.Millisecond))
		fmt.Fprintf(stderr, "  Nodes found:  %d\n", summary.TotalNodes)
		fmt.Fprintf(stderr, "  Translated:   %d\n", summary.TranslatedCount)
		fmt.Fprintf(stderr, "  From cache:   %d\n", summary.CachedCount)
		fmt.Fprintf(stderr, "  Chunks:       %d\n", summary.ChunkCount)
	}
	fmt.Fprintln(stdout, output)
	return nil
}

// Summary is the JSON output of a translation.
type Summary struct {
	Input           string   `json:"input"`
	Output          string   `json:"output"`
	TargetLang      string   `json:"target_lang"`
	Mode            string   `json:"mode"`
	TotalNodes      int      `json:"total_nodes"`
	TranslatedCount int      `json:"translated_count"`
	CachedCount     int      `json:"cached_count"`
	BlankCount      int      `json:"blank_count"`
	ChunkCount      int      `json:"chunk_count"`
	Rebuilt         []string `json:"rebuilt"`
	ElapsedMs       int64    `json:"elapsed_ms"`
}

func newSummary(input, output, target string, mode epubtl.Mode, doc *epubtl.ProcessedDocument, elapsed time.Duration) Summary {
	s := Summary{
		Input:      input,
		Output:     output,
		TargetLang: target,
		Mode:       mode.String(),
		TotalNodes: len(doc.Records),
		Rebuilt:    doc.Rebuilt,
		ElapsedMs:  elapsed.Milliseconds(),
	}
	if r := doc.Result; r != nil {
		s.TranslatedCount = r.TranslatedCount
		s.CachedCount = r.CachedCount
		s.BlankCount = r.BlankCount
		s.ChunkCount = r.ChunkCount
	}
	return s
}

// runDryRun shows what would be translated without calling the provider.
func runDryRun(ctx context.Context, stdout io.Writer, dt *epubtl.DocumentTranslator, t *epubtl.Translator, book *epub.Book, input string, jsonOut bool) error {
	records, err := dt.Extract(book)
	if err != nil {
		return fmt.Errorf("extracting text: %w", err)
	}

	plan, err := t.Plan(ctx, epubtl.Texts(records))
	if err != nil {
		return err
	}
	stats := plan.Stats()

	if jsonOut {
		type dryRunOutput struct {
			InputFile  string   `json:"input_file"`
			TargetLang string   `json:"target_lang"`
			NodeCount  int      `json:"node_count"`
			Blank      int      `json:"blank"`
			Cached     int      `json:"cached"`
			Chunks     int      `json:"chunks"`
			Bytes      int      `json:"bytes"`
			Pending    []string `json:"pending"`
			Invalid    []string `json:"invalid,omitempty"`
		}

		out := dryRunOutput{
			InputFile:  filepath.Base(input),
			TargetLang: t.TargetLang(),
			NodeCount:  len(records),
			Blank:      stats.Blank,
			Cached:     stats.Cached,
			Chunks:     stats.Chunks,
			Bytes:      stats.Bytes,
			Pending:    plan.Pending,
		}
		for _, e := range plan.Errors {
			out.Invalid = append(out.Invalid, e.Error())
		}

		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	fmt.Fprintf(stdout, "Dry run: %s -> %s\n", filepath.Base(input), t.TargetLang())
	fmt.Fprintf(stdout, "Found %d translatable elements:\n", len(records))
	fmt.Fprintf(stdout, "  Blank:    %d\n", stats.Blank)
	fmt.Fprintf(stdout, "  Cached:   %d\n", stats.Cached)
	fmt.Fprintf(stdout, "  Pending:  %d\n", stats.Pending)
	fmt.Fprintf(stdout, "  Chunks:   %d (%d bytes, limit %d)\n", stats.Chunks, stats.Bytes, t.ChunkSize())
	if stats.Invalid > 0 {
		fmt.Fprintf(stdout, "  Invalid:  %d\n", stats.Invalid)
	}
	fmt.Fprintln(stdout)

	for i, text := range plan.Pending {
		if r := []rune(text); len(r) > 60 {
			text = string(r[:57]) + "..."
		}
		fmt.Fprintf(stdout, "%3d. %q\n", i+1, text)
	}
	for _, e := range plan.Errors {
		fmt.Fprintf(stdout, "  ! %v\n", e)
	}

	return nil
}
