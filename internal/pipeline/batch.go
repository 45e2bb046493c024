package pipeline

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/sidenote/internal/config"
	"github.com/nao1215/sidenote/internal/model"
)

// Factory builds the pipeline for the document at path. Each document gets
// its own pipeline so per-document options can differ.
type Factory func(path string) (*Pipeline, error)

// BatchProcessor renders several documents concurrently.
// It uses errgroup to manage goroutines and respect concurrency limits.
type BatchProcessor struct {
	factory Factory

	// concurrency is the maximum number of documents rendered at once.
	concurrency int

	logger *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent documents.
// Non-positive values keep config.DefaultBatchSize.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor.
func NewBatchProcessor(factory Factory, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		factory:     factory,
		concurrency: config.DefaultBatchSize,
	}
	for _, opt := range opts {
		opt(bp)
	}
	if bp.logger == nil {
		bp.logger = slog.Default()
	}
	return bp
}

// process runs the pipeline of one document. Failures are recorded on the
// returned document.
func (bp *BatchProcessor) process(ctx context.Context, path string) *model.Document {
	doc := model.NewDocument(path)
	p, err := bp.factory(path)
	if err != nil {
		doc.AddFinding(model.FindingRenderFailed, err.Error(), "")
		return doc
	}
	if err := p.Execute(ctx, doc); err != nil {
		bp.logger.Warn("document failed",
			"file", path,
			"error", err,
		)
	}
	return doc
}

// ProcessBatch renders the documents at paths and returns one document per
// path, in input order. A failed document does not stop the others; its
// failure is recorded as a finding. The error is non-nil only when ctx was
// cancelled, in which case documents not yet started are nil.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, paths []string) ([]*model.Document, error) {
	bp.logger.Info("starting batch",
		"documents", len(paths),
		"concurrency", bp.concurrency,
	)
	startTime := time.Now()

	// Each goroutine writes only its own index.
	results := make([]*model.Document, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, path := range paths {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			results[i] = bp.process(ctx, path)
			return nil
		})
	}

	err := g.Wait()

	bp.logger.Info("batch complete",
		"documents", len(paths),
		"elapsed", time.Since(startTime),
	)
	return results, err
}

// ProcessBatchWithCallback renders the documents at paths and calls
// callback as each one completes. The callback runs on the goroutine that
// rendered the document, so it must be safe for concurrent use.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	paths []string,
	callback func(doc *model.Document, index int),
) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, path := range paths {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			callback(bp.process(ctx, path), i)
			return nil
		})
	}
	return g.Wait()
}
