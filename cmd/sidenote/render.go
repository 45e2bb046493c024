package main

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/sidenote/internal/model"
	"github.com/nao1215/sidenote/internal/pipeline"
	"github.com/nao1215/sidenote/internal/report"
)

// errRenderFailed is returned when at least one document failed to render.
var errRenderFailed = errors.New("some documents could not be rendered")

// NewRenderCmd creates the render command.
func NewRenderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render [file...]",
		Short: "Render markdown files with sidenotes into HTML",
		Long: `Render converts markdown into HTML, turning every ^[inline sidenote]
into a numbered reference and an <aside> placed after its paragraph.

Without arguments, markdown is read from stdin. A single input is written
to stdout unless --output-dir is given; several inputs require it.

Examples:
  # Render a file to stdout
  sidenote render post.md

  # Render from stdin
  echo 'Bees^[they dance] fly.' | sidenote render

  # Render several files into public/ with an id prefix
  sidenote render -o public --doc-id post posts/*.md

  # Render with link checking and NFC normalization
  sidenote render --check --normalize post.md

Configuration file (.sidenote) example:
  defaults:
    normalize: true
  documents:
    about.md:
      docId: about`,
		Args: cobra.ArbitraryArgs,
		RunE: runRenderCmd,
	}

	addRenderFlags(cmd)
	cmd.Flags().StringP("output-dir", "o", "",
		"Write one HTML file per input into this directory")

	return cmd
}

// runRenderCmd executes the render command.
func runRenderCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.OutputDir, err = cmd.Flags().GetString("output-dir"); err != nil {
		return err
	}
	cfg.Inputs = args
	if len(cfg.Inputs) == 0 {
		cfg.Inputs = []string{pipeline.StdinPath}
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd, cfg.Verbose)
	ctx, cancel := signalContext(cmd, logger)
	defer cancel()

	rc, closeCache := openCache(cfg, logger)
	defer closeCache()

	logger.Info("starting render",
		"inputs", len(cfg.Inputs),
		"outputDir", cfg.OutputDir,
		"batchSize", cfg.BatchSize,
		"cache", rc != nil,
	)
	start := time.Now()

	bp := pipeline.NewBatchProcessor(
		newFactory(cmd, cfg, rc, logger),
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)

	docs := make([]*model.Document, len(cfg.Inputs))
	var mu sync.Mutex
	err = bp.ProcessBatchWithCallback(ctx, cfg.Inputs, func(doc *model.Document, index int) {
		mu.Lock()
		defer mu.Unlock()
		docs[index] = doc
		printFindings(cmd, doc)
	})
	if err != nil {
		return err
	}

	logger.Debug("render completed", "elapsed", time.Since(start).Round(time.Millisecond))

	if _, err := report.NewSimpleWriter(cmd.ErrOrStderr()).WriteSummary(docs); err != nil {
		return err
	}
	if model.Summarize(docs).Failed > 0 {
		return errRenderFailed
	}
	return nil
}

// printFindings writes the findings of doc to stderr, one per line.
func printFindings(cmd *cobra.Command, doc *model.Document) {
	name := doc.Path
	if name == pipeline.StdinPath {
		name = "<stdin>"
	}
	for _, f := range doc.Findings {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s: %s: %s\n", name, f.Severity, f.Type, f.Message)
	}
}
