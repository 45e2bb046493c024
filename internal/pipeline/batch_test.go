package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nao1215/sidenote/internal/config"
	"github.com/nao1215/sidenote/internal/model"
)

func stepFactory(steps ...func() Step) Factory {
	return func(string) (*Pipeline, error) {
		p := New(WithLogger(quiet))
		for _, s := range steps {
			p.AddStep(s())
		}
		return p, nil
	}
}

// TestBatchProcessorNew tests the BatchProcessor constructor.
func TestBatchProcessorNew(t *testing.T) {
	t.Parallel()

	t.Run("creates processor with defaults", func(t *testing.T) {
		t.Parallel()

		bp := NewBatchProcessor(stepFactory())
		if bp.concurrency != config.DefaultBatchSize {
			t.Errorf("expected default concurrency %d, got %d", config.DefaultBatchSize, bp.concurrency)
		}
		if bp.logger == nil {
			t.Error("expected non-nil logger")
		}
	})

	t.Run("applies WithConcurrency option", func(t *testing.T) {
		t.Parallel()

		if bp := NewBatchProcessor(stepFactory(), WithConcurrency(5)); bp.concurrency != 5 {
			t.Errorf("expected concurrency 5, got %d", bp.concurrency)
		}
	})

	t.Run("ignores non-positive concurrency", func(t *testing.T) {
		t.Parallel()

		if bp := NewBatchProcessor(stepFactory(), WithConcurrency(0)); bp.concurrency != config.DefaultBatchSize {
			t.Errorf("expected default concurrency, got %d", bp.concurrency)
		}
	})
}

// TestBatchProcessorProcessBatch tests batch processing.
func TestBatchProcessorProcessBatch(t *testing.T) {
	t.Parallel()

	t.Run("returns documents in input order", func(t *testing.T) {
		t.Parallel()

		var processed atomic.Int32
		bp := NewBatchProcessor(stepFactory(func() Step {
			return &mockStep{
				name: "counter",
				doFunc: func(_ context.Context, _ *model.Document) error {
					processed.Add(1)
					return nil
				},
			}
		}), WithBatchLogger(quiet))

		paths := []string{"a.md", "b.md", "c.md"}
		results, err := bp.ProcessBatch(context.Background(), paths)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if processed.Load() != 3 {
			t.Errorf("expected 3 processed, got %d", processed.Load())
		}
		for i, doc := range results {
			if doc.Path != paths[i] {
				t.Errorf("result %d: expected %s, got %s", i, paths[i], doc.Path)
			}
		}
	})

	t.Run("respects concurrency limit", func(t *testing.T) {
		t.Parallel()

		var current, peak atomic.Int32
		var mu sync.Mutex
		bp := NewBatchProcessor(stepFactory(func() Step {
			return &mockStep{
				name: "slow",
				doFunc: func(_ context.Context, _ *model.Document) error {
					n := current.Add(1)
					mu.Lock()
					if n > peak.Load() {
						peak.Store(n)
					}
					mu.Unlock()
					time.Sleep(10 * time.Millisecond)
					current.Add(-1)
					return nil
				},
			}
		}), WithConcurrency(2), WithBatchLogger(quiet))

		if _, err := bp.ProcessBatch(context.Background(), []string{"1", "2", "3", "4", "5", "6"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if peak.Load() > 2 {
			t.Errorf("expected at most 2 concurrent documents, got %d", peak.Load())
		}
	})

	t.Run("failed document does not stop others", func(t *testing.T) {
		t.Parallel()

		bp := NewBatchProcessor(stepFactory(func() Step {
			return &mockStep{
				name: "maybe-fail",
				doFunc: func(_ context.Context, doc *model.Document) error {
					if doc.Path == "bad.md" {
						return errors.New("boom")
					}
					return nil
				},
			}
		}), WithBatchLogger(quiet))

		results, err := bp.ProcessBatch(context.Background(), []string{"good.md", "bad.md", "fine.md"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if results[0].Failed() || results[2].Failed() {
			t.Error("expected healthy documents to succeed")
		}
		if !results[1].Failed() {
			t.Error("expected bad.md to be marked failed")
		}
	})

	t.Run("factory error is recorded", func(t *testing.T) {
		t.Parallel()

		bp := NewBatchProcessor(func(string) (*Pipeline, error) {
			return nil, errors.New("no engine")
		}, WithBatchLogger(quiet))

		results, err := bp.ProcessBatch(context.Background(), []string{"a.md"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !results[0].Failed() || results[0].Findings[0].Message != "no engine" {
			t.Errorf("expected factory error finding, got %+v", results[0].Findings)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		bp := NewBatchProcessor(stepFactory(), WithBatchLogger(quiet))
		results, err := bp.ProcessBatch(ctx, []string{"a.md", "b.md"})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if len(results) != 2 {
			t.Errorf("expected a slot per path, got %d", len(results))
		}
	})

	t.Run("renders real files", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		out := filepath.Join(dir, "out")
		files := map[string]string{
			"one.md": "First^[a note] paragraph.\n",
			"two.md": "# Heading^[broken]\n",
		}
		var paths []string
		for name, body := range files {
			path := filepath.Join(dir, name)
			if err := os.WriteFile(path, []byte(body), 0600); err != nil {
				t.Fatal(err)
			}
			paths = append(paths, path)
		}

		bp := NewBatchProcessor(func(string) (*Pipeline, error) {
			return DefaultPipeline(config.Options{DocID: "x"}, []Option{WithLogger(quiet)},
				WithPipelineOutputDir(out), WithPipelineLogger(quiet))
		}, WithBatchLogger(quiet))

		results, err := bp.ProcessBatch(context.Background(), paths)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, doc := range results {
			switch filepath.Base(doc.Path) {
			case "one.md":
				if doc.Failed() || len(doc.Sidenotes) != 1 {
					t.Errorf("one.md: unexpected result %+v", doc)
				}
				if _, err := os.Stat(filepath.Join(out, "one.html")); err != nil {
					t.Errorf("one.md: output missing: %v", err)
				}
			case "two.md":
				if !doc.Failed() || doc.OutputPath != "" {
					t.Errorf("two.md: expected failure without output, got %+v", doc)
				}
			}
		}
	})
}

// TestBatchProcessorProcessBatchWithCallback tests streaming results.
func TestBatchProcessorProcessBatchWithCallback(t *testing.T) {
	t.Parallel()

	bp := NewBatchProcessor(stepFactory(), WithBatchLogger(quiet))

	var mu sync.Mutex
	seen := make(map[int]string)
	err := bp.ProcessBatchWithCallback(context.Background(), []string{"a.md", "b.md"}, func(doc *model.Document, index int) {
		mu.Lock()
		defer mu.Unlock()
		seen[index] = doc.Path
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(seen) != 2 || seen[0] != "a.md" || seen[1] != "b.md" {
		t.Errorf("unexpected callbacks: %v", seen)
	}
}
