package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/nao1215/sidenote/internal/config"
	"github.com/nao1215/sidenote/internal/model"
	"github.com/nao1215/sidenote/internal/pipeline"
	"github.com/nao1215/sidenote/internal/report"
)

// NewListCmd creates the list command.
func NewListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list [file...]",
		Short: "List the sidenotes of markdown files without writing HTML",
		Long: `List renders markdown files in memory and reports their sidenotes
and findings: numbers, anchors, reference counts, empty sidenotes and,
with --check, broken in-page links.

Without arguments, markdown is read from stdin.

Examples:
  # Human-readable inventory
  sidenote list posts/*.md

  # JSON inventory with link checking
  sidenote list --json --check posts/*.md

  # Markdown report written to a file
  sidenote list --markdown -o report.md posts/*.md`,
		Args: cobra.ArbitraryArgs,
		RunE: runListCmd,
	}

	addRenderFlags(cmd)
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
	cmd.Flags().Bool("show-empty", false,
		"List documents without sidenotes or findings")

	return cmd
}

// runListCmd executes the list command.
func runListCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.JSONReport, err = cmd.Flags().GetBool("json"); err != nil {
		return err
	}
	if cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown"); err != nil {
		return err
	}
	if cfg.ReportFile, err = cmd.Flags().GetString("output"); err != nil {
		return err
	}
	showEmpty, err := cmd.Flags().GetBool("show-empty")
	if err != nil {
		return err
	}

	// Inputs stay out of cfg: nothing is written, so several inputs need
	// no output directory.
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	inputs := args
	if len(inputs) == 0 {
		inputs = []string{pipeline.StdinPath}
	}

	logger := setupLogger(cmd, cfg.Verbose)
	ctx, cancel := signalContext(cmd, logger)
	defer cancel()

	rc, closeCache := openCache(cfg, logger)
	defer closeCache()

	bp := pipeline.NewBatchProcessor(
		newFactory(cmd, cfg, rc, logger, pipeline.WithPipelineSkipWrite()),
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)
	docs, err := bp.ProcessBatch(ctx, inputs)
	if err != nil {
		return err
	}

	if cfg.ReportFile == "" {
		return writeReport(cmd.OutOrStdout(), cfg, docs, showEmpty)
	}
	if err := writeFile(cfg.ReportFile, func(f *os.File) error {
		return writeReport(f, cfg, docs, showEmpty)
	}); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Report written to %s\n", cfg.ReportFile)
	return nil
}

// writeReport writes docs in the format selected by cfg.
func writeReport(w io.Writer, cfg *config.Config, docs []*model.Document, showEmpty bool) error {
	var writer report.Writer
	switch {
	case cfg.JSONReport:
		writer = report.NewJSONWriter(w, report.WithPrettyPrint(), report.WithVersion(getVersion()))
	case cfg.MarkdownReport:
		writer = report.NewMarkdownWriter(w)
	default:
		writer = report.NewSimpleWriter(w,
			report.WithShowEmpty(showEmpty),
			report.WithVerbose(cfg.Verbose),
		)
	}
	_, err := writer.Write(docs)
	return err
}
