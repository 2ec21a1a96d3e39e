package main

import (
	"fmt"
	"io"
	"os"

	"github.com/ZaguanLabs/epubtl/cache"
	"github.com/ZaguanLabs/epubtl/config"
	"github.com/spf13/cobra"
)

type cacheFlags struct {
	path     string
	redisURL string
	redisKey string
	ttl      int
}

func newCacheCmd() *cobra.Command {
	f := &cacheFlags{}

	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Export or import a translation cache",
		Long: `Copy translations between a cache and a JSON file. The JSON format is the
one used by file caches, so these commands also move a cache between a file
and Redis.`,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&f.path, "cache", "", "Cache file")
	pf.StringVar(&f.redisURL, "redis-url", "", "Redis URL")
	pf.StringVar(&f.redisKey, "redis-key", "", "Redis hash holding the cache")
	pf.IntVar(&f.ttl, "cache-ttl", 0, "Redis cache TTL in seconds (0 = no expiration)")

	cmd.AddCommand(newCacheExportCmd(f), newCacheImportCmd(f))
	return cmd
}

func (f *cacheFlags) config() (*config.Config, error) {
	cfg := config.Default()
	cfg.Cache = config.CacheConfig{Path: f.path, RedisURL: f.redisURL, RedisKey: f.redisKey, TTL: f.ttl}
	if cfg.Cache.Path == "" && cfg.Cache.RedisURL == "" {
		return nil, fmt.Errorf("--cache or --redis-url is required")
	}
	cfg.Provider.Name = config.ProviderMock
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newCacheExportCmd(f *cacheFlags) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the cache as a JSON object",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.config()
			if err != nil {
				return err
			}
			store, closeStore, err := openStore(cfg, "")
			if err != nil {
				return err
			}
			defer closeStore()

			var w io.Writer = cmd.OutOrStdout()
			if output != "" {
				file, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("creating output file: %w", err)
				}
				defer file.Close()
				w = file
			}

			n, err := cache.Export(cmd.Context(), store, w)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d entries\n", n)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")
	return cmd
}

func newCacheImportCmd(f *cacheFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.json>",
		Short: "Merge a JSON object of translations into the cache",
		Long:  `Merge a JSON object of translations into the cache. Existing entries are kept.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.config()
			if err != nil {
				return err
			}
			store, closeStore, err := openStore(cfg, "")
			if err != nil {
				return err
			}
			defer closeStore()

			file, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening %s: %w", args[0], err)
			}
			defer file.Close()

			n, err := cache.Import(cmd.Context(), store, file)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Imported %d entries\n", n)
			return nil
		},
	}
}
