package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nao1215/sidenote/internal/cache"
	"github.com/nao1215/sidenote/internal/config"
	"github.com/nao1215/sidenote/internal/log"
	"github.com/nao1215/sidenote/internal/pipeline"
)

// addRenderFlags registers the flags shared by render and list.
func addRenderFlags(cmd *cobra.Command) {
	cmd.Flags().String("doc-id", "",
		"Prefix for sidenote element ids (letters, digits, '-' and '_')")
	cmd.Flags().Bool("normalize", false,
		"Apply Unicode NFC normalization to the source")
	cmd.Flags().Bool("xhtml", false,
		"Render void elements as <br />")
	cmd.Flags().Bool("check", false,
		"Report in-page links whose target id does not exist")
	cmd.Flags().Int("max-nesting", config.DefaultMaxNesting,
		"Maximum inline nesting depth")
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of documents rendered concurrently")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .sidenote in current or home directory)")
	cmd.Flags().Bool("no-cache", false,
		"Do not read or write the render cache")
	cmd.Flags().String("cache-dir", config.XDGCacheDir(),
		"Directory of the render cache")
}

// buildConfig creates a Config from the shared flags and the config file.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()

	var err error
	if cfg.DocID, err = flags.GetString("doc-id"); err != nil {
		return nil, err
	}
	if cfg.Normalize, err = flags.GetBool("normalize"); err != nil {
		return nil, err
	}
	if cfg.XHTML, err = flags.GetBool("xhtml"); err != nil {
		return nil, err
	}
	if cfg.CheckLinks, err = flags.GetBool("check"); err != nil {
		return nil, err
	}
	if cfg.MaxNesting, err = flags.GetInt("max-nesting"); err != nil {
		return nil, err
	}
	if cfg.BatchSize, err = flags.GetInt("batch"); err != nil {
		return nil, err
	}
	if cfg.CacheDir, err = flags.GetString("cache-dir"); err != nil {
		return nil, err
	}
	noCache, err := flags.GetBool("no-cache")
	if err != nil {
		return nil, err
	}
	cfg.UseCache = !noCache
	cfg.Verbose = getBoolFlag(cmd, "verbose")

	if cfg.ConfigFilePath, err = flags.GetString("config"); err != nil {
		return nil, err
	}

	// An explicit --config must exist; a missing default file is not an error.
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	switch {
	case configPath != "":
		cfg.Documents, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	case cfg.ConfigFilePath != "":
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	default:
		cfg.Documents = &config.File{
			Documents: make(map[string]config.DocumentConfig),
		}
	}
	return cfg, nil
}

// getBoolFlag retrieves a boolean flag from the command or the root's
// persistent flags.
func getBoolFlag(cmd *cobra.Command, name string) bool {
	v, err := cmd.Flags().GetBool(name)
	if err != nil {
		v, err = cmd.Root().PersistentFlags().GetBool(name)
		if err != nil {
			return false
		}
	}
	return v
}

// setupLogger creates the logger of a run. Logs go to stderr; stdout
// carries rendered HTML.
func setupLogger(cmd *cobra.Command, verbose bool) *slog.Logger {
	if getBoolFlag(cmd, "log-json") {
		return log.NewJSONLogger(cmd.ErrOrStderr(), verbose)
	}
	return log.NewLogger(cmd.ErrOrStderr(), verbose)
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(cmd *cobra.Command, logger *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(cmd.Context())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		defer signal.Stop(sigCh)
		select {
		case <-sigCh:
			logger.Info("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}

// openCache opens the render cache when enabled. A cache that cannot be
// opened is reported and the run continues without it.
func openCache(cfg *config.Config, logger *slog.Logger) (pipeline.Cache, func()) {
	if !cfg.UseCache {
		return nil, func() {}
	}
	db, err := cache.Open(cfg.CacheDir, cache.DefaultOptions())
	if err != nil {
		logger.Warn("render cache disabled", "dir", cfg.CacheDir, "error", err)
		return nil, func() {}
	}
	logger.Debug("render cache opened", "path", db.Path())
	return db, func() {
		if err := db.Close(); err != nil {
			logger.Warn("failed to close render cache", "error", err)
		}
	}
}

// newFactory returns a pipeline factory resolving per-document options.
func newFactory(cmd *cobra.Command, cfg *config.Config, rc pipeline.Cache, logger *slog.Logger, extra ...pipeline.DefaultPipelineOption) pipeline.Factory {
	return func(path string) (*pipeline.Pipeline, error) {
		opts := append([]pipeline.DefaultPipelineOption{
			pipeline.WithPipelineMaxNesting(cfg.MaxNesting),
			pipeline.WithPipelineOutputDir(cfg.OutputDir),
			pipeline.WithPipelineCache(rc),
			pipeline.WithPipelineIO(cmd.InOrStdin(), cmd.OutOrStdout()),
			pipeline.WithPipelineLogger(logger),
		}, extra...)
		return pipeline.DefaultPipeline(cfg.ForDocument(path),
			[]pipeline.Option{pipeline.WithLogger(logger)}, opts...)
	}
}

// writeFile creates path and its parent directories, then calls write.
func writeFile(path string, write func(f *os.File) error) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	f, err := os.OpenFile(filepath.Clean(path), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
