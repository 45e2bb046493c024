package pipeline

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/nao1215/sidenote/internal/cache"
	"github.com/nao1215/sidenote/internal/model"
	"github.com/nao1215/sidenote/internal/sidenote"
)

// memCache is an in-memory Cache for tests.
type memCache struct {
	mu      sync.Mutex
	entries map[string]cache.Entry
	gets    int
	puts    int
	getErr  error
}

func newMemCache() *memCache {
	return &memCache{entries: make(map[string]cache.Entry)}
}

func (c *memCache) Get(_ context.Context, key string) (*cache.Entry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	if c.getErr != nil {
		return nil, c.getErr
	}
	e, ok := c.entries[key]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (c *memCache) Put(_ context.Context, e *cache.Entry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.puts++
	c.entries[e.Key] = *e
	return nil
}

var quiet = slog.New(slog.DiscardHandler)

func newRender(t *testing.T, opts ...RenderStepOption) *RenderStep {
	t.Helper()
	s, err := NewRenderStep(append([]RenderStepOption{WithRenderLogger(quiet)}, opts...)...)
	if err != nil {
		t.Fatalf("NewRenderStep failed: %v", err)
	}
	return s
}

func sourceDoc(src string) *model.Document {
	doc := model.NewDocument("a.md")
	doc.Source = src
	return doc
}

// TestReadStep tests reading from files and stdin.
func TestReadStep(t *testing.T) {
	t.Parallel()

	t.Run("reads file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "a.md")
		if err := os.WriteFile(path, []byte("hello"), 0600); err != nil {
			t.Fatal(err)
		}
		doc := model.NewDocument(path)
		if err := NewReadStep(nil).Do(context.Background(), doc); err != nil {
			t.Fatalf("Do failed: %v", err)
		}
		if doc.Source != "hello" {
			t.Errorf("expected file content, got %q", doc.Source)
		}
	})

	t.Run("reads stdin", func(t *testing.T) {
		t.Parallel()

		doc := model.NewDocument(StdinPath)
		if err := NewReadStep(strings.NewReader("piped")).Do(context.Background(), doc); err != nil {
			t.Fatalf("Do failed: %v", err)
		}
		if doc.Source != "piped" {
			t.Errorf("expected stdin content, got %q", doc.Source)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		doc := model.NewDocument(filepath.Join(t.TempDir(), "missing.md"))
		err := NewReadStep(nil).Do(context.Background(), doc)
		if !errors.Is(err, os.ErrNotExist) {
			t.Errorf("expected not-exist error, got %v", err)
		}
	})
}

// TestNormalizeStep tests NFC normalization.
func TestNormalizeStep(t *testing.T) {
	t.Parallel()

	doc := sourceDoc("Cafe\u0301^[re\u0301sume\u0301]")
	if err := NewNormalizeStep().Do(context.Background(), doc); err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	if doc.Source != "Caf\u00e9^[r\u00e9sum\u00e9]" {
		t.Errorf("expected composed text, got %q", doc.Source)
	}
}

// TestRenderStep tests rendering and sidenote extraction.
func TestRenderStep(t *testing.T) {
	t.Parallel()

	t.Run("renders sidenotes", func(t *testing.T) {
		t.Parallel()

		doc := sourceDoc("One^[first] two^[] three.")
		if err := newRender(t, WithRenderDocID("p")).Do(context.Background(), doc); err != nil {
			t.Fatalf("Do failed: %v", err)
		}

		want := []model.Sidenote{
			{ID: 0, Number: 1, Anchor: "-p-1", Content: "first", References: 1},
			{ID: 1, Number: 2, Anchor: "-p-2", Content: "", References: 1},
		}
		if diff := cmp.Diff(want, doc.Sidenotes); diff != "" {
			t.Errorf("sidenotes mismatch (-want +got):\n%s", diff)
		}
		if !strings.Contains(doc.HTML, `<aside id="fn-p-2"`) {
			t.Errorf("unexpected HTML:\n%s", doc.HTML)
		}
		if len(doc.Findings) != 1 || doc.Findings[0].Type != model.FindingEmptySidenote {
			t.Fatalf("expected one empty_sidenote finding, got %+v", doc.Findings)
		}
		if doc.Findings[0].Value != "-p-2" {
			t.Errorf("expected anchor as finding value, got %q", doc.Findings[0].Value)
		}
	})

	t.Run("maps reconcile errors to findings", func(t *testing.T) {
		t.Parallel()

		doc := sourceDoc("# Title^[x]")
		err := newRender(t).Do(context.Background(), doc)
		if !errors.Is(err, sidenote.ErrMissingParagraphClose) {
			t.Fatalf("expected ErrMissingParagraphClose, got %v", err)
		}
		if doc.HTML != "" {
			t.Errorf("expected no HTML, got %q", doc.HTML)
		}
		if len(doc.Findings) != 1 {
			t.Fatalf("expected one finding, got %+v", doc.Findings)
		}
		f := doc.Findings[0]
		if f.Type != model.FindingMissingParagraphClose || f.Severity != model.SeverityError || f.Value != "1" {
			t.Errorf("unexpected finding %+v", f)
		}
	})

	t.Run("xhtml output", func(t *testing.T) {
		t.Parallel()

		doc := sourceDoc("a  \nb^[c]")
		if err := newRender(t, WithRenderXHTML(true)).Do(context.Background(), doc); err != nil {
			t.Fatalf("Do failed: %v", err)
		}
		if !strings.Contains(doc.HTML, "<br />") {
			t.Errorf("expected self-closing break, got:\n%s", doc.HTML)
		}
	})
}

// TestRenderStepCache tests cache lookups and stores.
func TestRenderStepCache(t *testing.T) {
	t.Parallel()

	t.Run("stores then hits", func(t *testing.T) {
		t.Parallel()

		c := newMemCache()
		step := newRender(t, WithRenderCache(c))

		first := sourceDoc("a^[b]")
		if err := step.Do(context.Background(), first); err != nil {
			t.Fatalf("Do failed: %v", err)
		}
		if first.Cached || c.puts != 1 {
			t.Fatalf("expected a miss and a store, cached=%v puts=%d", first.Cached, c.puts)
		}

		second := sourceDoc("a^[b]")
		if err := step.Do(context.Background(), second); err != nil {
			t.Fatalf("Do failed: %v", err)
		}
		if !second.Cached {
			t.Error("expected a cache hit")
		}
		if second.HTML != first.HTML {
			t.Error("cached HTML differs from rendered HTML")
		}
		if diff := cmp.Diff(first.Sidenotes, second.Sidenotes); diff != "" {
			t.Errorf("sidenotes mismatch (-want +got):\n%s", diff)
		}
		if c.puts != 1 {
			t.Errorf("expected no second store, got %d", c.puts)
		}
	})

	t.Run("options change the key", func(t *testing.T) {
		t.Parallel()

		plain := newRender(t)
		xhtml := newRender(t, WithRenderXHTML(true))
		prefixed := newRender(t, WithRenderDocID("x"))
		deep := newRender(t, WithRenderMaxNesting(3))

		base := plain.key("a")
		for _, s := range []*RenderStep{xhtml, prefixed, deep} {
			if s.key("a") == base {
				t.Error("expected a different key")
			}
		}
		if plain.key("b") == base {
			t.Error("expected source to change the key")
		}
	})

	t.Run("lookup failure falls back to rendering", func(t *testing.T) {
		t.Parallel()

		c := newMemCache()
		c.getErr = errors.New("disk on fire")
		doc := sourceDoc("a^[b]")
		if err := newRender(t, WithRenderCache(c)).Do(context.Background(), doc); err != nil {
			t.Fatalf("Do failed: %v", err)
		}
		if doc.Cached || doc.HTML == "" {
			t.Errorf("expected a fresh render, cached=%v", doc.Cached)
		}
	})
}

// TestCheckLinksStep tests link findings.
func TestCheckLinksStep(t *testing.T) {
	t.Parallel()

	doc := sourceDoc("")
	doc.HTML = `<a href="#nowhere">x</a><p id="d"></p><p id="d"></p>`
	if err := NewCheckLinksStep().Do(context.Background(), doc); err != nil {
		t.Fatalf("Do failed: %v", err)
	}

	var types []string
	for _, f := range doc.Findings {
		types = append(types, f.Type+":"+f.Value)
	}
	want := []string{"dangling_fragment:nowhere", "duplicate_id:d"}
	if diff := cmp.Diff(want, types); diff != "" {
		t.Errorf("findings mismatch (-want +got):\n%s", diff)
	}

	t.Run("rendered sidenotes link cleanly", func(t *testing.T) {
		t.Parallel()

		doc := sourceDoc("a^[b] c^[d ^[e]]")
		if err := newRender(t).Do(context.Background(), doc); err != nil {
			t.Fatalf("Do failed: %v", err)
		}
		if err := NewCheckLinksStep().Do(context.Background(), doc); err != nil {
			t.Fatalf("Do failed: %v", err)
		}
		if len(doc.Findings) != 0 {
			t.Errorf("expected no findings, got %+v", doc.Findings)
		}
	})
}

// TestWriteStep tests writing to a directory and to stdout.
func TestWriteStep(t *testing.T) {
	t.Parallel()

	t.Run("writes into output dir", func(t *testing.T) {
		t.Parallel()

		dir := filepath.Join(t.TempDir(), "out")
		doc := model.NewDocument("posts/first.md")
		doc.HTML = "<p>x</p>\n"

		if err := NewWriteStep(dir, nil).Do(context.Background(), doc); err != nil {
			t.Fatalf("Do failed: %v", err)
		}
		want := filepath.Join(dir, "first.html")
		if doc.OutputPath != want {
			t.Errorf("expected output path %q, got %q", want, doc.OutputPath)
		}
		data, err := os.ReadFile(want)
		if err != nil {
			t.Fatalf("read output: %v", err)
		}
		if string(data) != doc.HTML {
			t.Errorf("unexpected file content %q", data)
		}
	})

	t.Run("writes to stdout", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		doc := model.NewDocument(StdinPath)
		doc.HTML = "<p>y</p>\n"

		if err := NewWriteStep("", &buf).Do(context.Background(), doc); err != nil {
			t.Fatalf("Do failed: %v", err)
		}
		if buf.String() != doc.HTML {
			t.Errorf("unexpected output %q", buf.String())
		}
		if doc.OutputPath != "" {
			t.Errorf("expected empty output path, got %q", doc.OutputPath)
		}
	})
}

// TestOutputPath tests output file naming.
func TestOutputPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want string
	}{
		{path: "a.md", want: filepath.Join("out", "a.html")},
		{path: "dir/b.markdown", want: filepath.Join("out", "b.html")},
		{path: "noext", want: filepath.Join("out", "noext.html")},
		{path: StdinPath, want: filepath.Join("out", "stdin.html")},
	}
	for _, tt := range tests {
		if got := OutputPath("out", tt.path); got != tt.want {
			t.Errorf("OutputPath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
