package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/nao1215/sidenote/internal/cache"
	"github.com/nao1215/sidenote/internal/config"
	"github.com/nao1215/sidenote/internal/linkcheck"
	"github.com/nao1215/sidenote/internal/markup"
	"github.com/nao1215/sidenote/internal/model"
	"github.com/nao1215/sidenote/internal/sidenote"
)

// StdinPath is the document path that reads from standard input.
const StdinPath = "-"

// ReadStep loads the markdown source of a document.
type ReadStep struct {
	stdin io.Reader
}

// NewReadStep creates a step reading files, or stdin for StdinPath.
func NewReadStep(stdin io.Reader) *ReadStep {
	if stdin == nil {
		stdin = os.Stdin
	}
	return &ReadStep{stdin: stdin}
}

// Name returns the step name.
func (s *ReadStep) Name() string {
	return "read"
}

// Do reads doc.Path into doc.Source.
func (s *ReadStep) Do(_ context.Context, doc *model.Document) error {
	var (
		data []byte
		err  error
	)
	if doc.Path == StdinPath {
		data, err = io.ReadAll(s.stdin)
	} else {
		data, err = os.ReadFile(filepath.Clean(doc.Path))
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", doc.Path, err)
	}
	doc.Source = string(data)
	return nil
}

// NormalizeStep converts the source to Unicode NFC so that visually equal
// input renders and caches identically.
type NormalizeStep struct{}

// NewNormalizeStep creates a normalization step.
func NewNormalizeStep() *NormalizeStep {
	return &NormalizeStep{}
}

// Name returns the step name.
func (s *NormalizeStep) Name() string {
	return "normalize"
}

// Do normalizes doc.Source in place.
func (s *NormalizeStep) Do(_ context.Context, doc *model.Document) error {
	doc.Source = norm.NFC.String(doc.Source)
	return nil
}

// Cache stores rendered documents keyed by source and options.
// *cache.DB implements it.
type Cache interface {
	Get(ctx context.Context, key string) (*cache.Entry, error)
	Put(ctx context.Context, e *cache.Entry) error
}

// RenderStep renders markdown with sidenotes into HTML.
type RenderStep struct {
	engine *markup.Engine
	docID  string
	cache  Cache
	logger *slog.Logger
}

// RenderStepOption configures a RenderStep.
type RenderStepOption func(*RenderStep)

// WithRenderDocID sets the element id prefix of the document.
func WithRenderDocID(docID string) RenderStepOption {
	return func(s *RenderStep) {
		s.docID = docID
	}
}

// WithRenderXHTML makes void elements self-closing.
func WithRenderXHTML(xhtml bool) RenderStepOption {
	return func(s *RenderStep) {
		s.engine.Renderer.XHTML = xhtml
	}
}

// WithRenderMaxNesting bounds the nesting depth of the parser.
func WithRenderMaxNesting(n int) RenderStepOption {
	return func(s *RenderStep) {
		if n > 0 {
			s.engine.MaxNesting = n
		}
	}
}

// WithRenderCache enables the render cache. A nil cache disables it.
func WithRenderCache(c Cache) RenderStepOption {
	return func(s *RenderStep) {
		s.cache = c
	}
}

// WithRenderLogger sets a custom logger for the render step.
func WithRenderLogger(logger *slog.Logger) RenderStepOption {
	return func(s *RenderStep) {
		s.logger = logger
	}
}

// NewRenderStep creates a render step with the sidenote plugin installed.
func NewRenderStep(opts ...RenderStepOption) (*RenderStep, error) {
	engine := markup.New()
	if err := engine.Use(sidenote.Plugin); err != nil {
		return nil, err
	}
	s := &RenderStep{
		engine: engine,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Name returns the step name.
func (s *RenderStep) Name() string {
	return "render"
}

// key derives the cache key. Every option that changes the output is part
// of it.
func (s *RenderStep) key(source string) string {
	return cache.Key(source, s.docID,
		"xhtml="+strconv.FormatBool(s.engine.Renderer.XHTML),
		"max-nesting="+strconv.Itoa(s.engine.MaxNesting),
	)
}

// Do renders doc.Source into doc.HTML and lists its sidenotes.
// Cache failures are logged and never fail the document.
func (s *RenderStep) Do(ctx context.Context, doc *model.Document) error {
	doc.DocID = s.docID

	var key string
	if s.cache != nil {
		key = s.key(doc.Source)
		entry, err := s.cache.Get(ctx, key)
		if err != nil {
			s.logger.Warn("cache lookup failed", "file", doc.Path, "error", err)
		} else if entry != nil {
			s.logger.Debug("cache hit", "file", doc.Path)
			doc.HTML = entry.HTML
			doc.Sidenotes = entry.Sidenotes
			doc.Cached = true
			addEmptyFindings(doc)
			return nil
		}
	}

	env := markup.NewEnv(s.docID)
	tokens, err := s.engine.Parse(doc.Source, env)
	if err != nil {
		recordRenderError(doc, err)
		return err
	}

	doc.HTML = s.engine.Render(tokens, env)
	doc.Sidenotes = sidenotes(tokens, env)
	addEmptyFindings(doc)

	if s.cache != nil {
		err := s.cache.Put(ctx, &cache.Entry{
			Key:       key,
			Path:      doc.Path,
			DocID:     s.docID,
			HTML:      doc.HTML,
			Sidenotes: doc.Sidenotes,
		})
		if err != nil {
			s.logger.Warn("cache store failed", "file", doc.Path, "error", err)
		}
	}

	s.logger.Debug("rendered",
		"file", doc.Path,
		"sidenotes", len(doc.Sidenotes),
	)
	return nil
}

func sidenotes(tokens []markup.Token, env *markup.Env) []model.Sidenote {
	notes := sidenote.Notes(tokens)
	out := make([]model.Sidenote, 0, len(notes))
	for _, n := range notes {
		out = append(out, model.Sidenote{
			ID:         n.ID,
			Number:     n.Number,
			Anchor:     sidenote.DefaultAnchorName(n.ID, env),
			Content:    n.Content,
			References: n.Anchors,
		})
	}
	return out
}

func addEmptyFindings(doc *model.Document) {
	for _, n := range doc.Sidenotes {
		if strings.TrimSpace(n.Content) == "" {
			doc.AddFinding(model.FindingEmptySidenote,
				fmt.Sprintf("sidenote %d has no content", n.Number), n.Anchor)
		}
	}
}

func recordRenderError(doc *model.Document, err error) {
	findingType := model.FindingRenderFailed
	switch {
	case errors.Is(err, sidenote.ErrMissingReference):
		findingType = model.FindingMissingReference
	case errors.Is(err, sidenote.ErrMissingParagraphClose):
		findingType = model.FindingMissingParagraphClose
	}

	value := ""
	var rerr *sidenote.ReconcileError
	if errors.As(err, &rerr) {
		value = strconv.Itoa(rerr.ID + 1)
	}
	doc.AddFinding(findingType, err.Error(), value)
}

// CheckLinksStep reports in-page links and label targets of the rendered
// HTML that have no matching element id, and ids used more than once.
type CheckLinksStep struct{}

// NewCheckLinksStep creates a link checking step.
func NewCheckLinksStep() *CheckLinksStep {
	return &CheckLinksStep{}
}

// Name returns the step name.
func (s *CheckLinksStep) Name() string {
	return "check_links"
}

// Do checks doc.HTML and records findings.
func (s *CheckLinksStep) Do(_ context.Context, doc *model.Document) error {
	if doc.HTML == "" {
		return nil
	}
	result, err := linkcheck.CheckString(doc.HTML)
	if err != nil {
		return fmt.Errorf("check links: %w", err)
	}
	for _, target := range result.Dangling {
		doc.AddFinding(model.FindingDanglingFragment,
			fmt.Sprintf("no element with id %q", target), target)
	}
	for _, id := range result.Duplicates {
		doc.AddFinding(model.FindingDuplicateID,
			fmt.Sprintf("id %q is used more than once", id), id)
	}
	return nil
}

// WriteStep writes the rendered HTML to a directory or to a writer.
type WriteStep struct {
	outputDir string
	stdout    io.Writer
}

// NewWriteStep creates a step writing <outputDir>/<name>.html, or to stdout
// when outputDir is empty.
func NewWriteStep(outputDir string, stdout io.Writer) *WriteStep {
	if stdout == nil {
		stdout = os.Stdout
	}
	return &WriteStep{outputDir: outputDir, stdout: stdout}
}

// Name returns the step name.
func (s *WriteStep) Name() string {
	return "write"
}

// OutputPath returns the file the HTML of the document at path is written
// to inside outputDir.
func OutputPath(outputDir, path string) string {
	name := "stdin"
	if path != StdinPath {
		base := filepath.Base(path)
		name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return filepath.Join(outputDir, name+config.DefaultOutputExt)
}

// Do writes doc.HTML.
func (s *WriteStep) Do(_ context.Context, doc *model.Document) error {
	if s.outputDir == "" {
		if _, err := io.WriteString(s.stdout, doc.HTML); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		return nil
	}

	if err := os.MkdirAll(s.outputDir, 0o750); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	out := OutputPath(s.outputDir, doc.Path)
	if err := os.WriteFile(out, []byte(doc.HTML), 0o644); err != nil { //nolint:gosec // rendered pages are meant to be served
		return fmt.Errorf("write %s: %w", out, err)
	}
	doc.OutputPath = out
	return nil
}

// DefaultPipelineConfig holds the run-wide settings of the default pipeline.
// Per-document settings come from config.Options.
type DefaultPipelineConfig struct {
	// MaxNesting bounds the nesting depth of the parser.
	MaxNesting int

	// OutputDir receives one HTML file per document. Empty means stdout.
	OutputDir string

	// Cache enables the render cache when non-nil.
	Cache Cache

	// SkipWrite leaves out the write step, for inventories.
	SkipWrite bool

	Stdin  io.Reader
	Stdout io.Writer

	Logger *slog.Logger
}

// DefaultPipelineOption configures a DefaultPipelineConfig.
type DefaultPipelineOption func(*DefaultPipelineConfig)

// WithPipelineMaxNesting sets the parser nesting limit.
func WithPipelineMaxNesting(n int) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.MaxNesting = n
	}
}

// WithPipelineOutputDir sets the output directory.
func WithPipelineOutputDir(dir string) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.OutputDir = dir
	}
}

// WithPipelineCache enables the render cache.
func WithPipelineCache(c Cache) DefaultPipelineOption {
	return func(cfg *DefaultPipelineConfig) {
		cfg.Cache = c
	}
}

// WithPipelineSkipWrite builds a pipeline that renders without writing.
func WithPipelineSkipWrite() DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.SkipWrite = true
	}
}

// WithPipelineIO replaces standard input and output.
func WithPipelineIO(stdin io.Reader, stdout io.Writer) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Stdin = stdin
		c.Stdout = stdout
	}
}

// WithPipelineLogger sets the logger used by the steps.
func WithPipelineLogger(logger *slog.Logger) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Logger = logger
	}
}

// DefaultPipeline creates the standard pipeline for one document:
// read, normalize (optional), render, check links (optional) and write
// (unless skipped).
func DefaultPipeline(doc config.Options, pipelineOpts []Option, configOpts ...DefaultPipelineOption) (*Pipeline, error) {
	cfg := &DefaultPipelineConfig{
		MaxNesting: config.DefaultMaxNesting,
		Logger:     slog.Default(),
	}
	for _, opt := range configOpts {
		opt(cfg)
	}

	render, err := NewRenderStep(
		WithRenderDocID(doc.DocID),
		WithRenderXHTML(doc.XHTML),
		WithRenderMaxNesting(cfg.MaxNesting),
		WithRenderCache(cfg.Cache),
		WithRenderLogger(cfg.Logger),
	)
	if err != nil {
		return nil, err
	}

	p := New(pipelineOpts...)
	p.AddStep(NewReadStep(cfg.Stdin))
	if doc.Normalize {
		p.AddStep(NewNormalizeStep())
	}
	p.AddStep(render)
	if doc.CheckLinks {
		p.AddStep(NewCheckLinksStep())
	}
	if !cfg.SkipWrite {
		p.AddStep(NewWriteStep(cfg.OutputDir, cfg.Stdout))
	}
	return p, nil
}
