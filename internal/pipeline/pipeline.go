package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/nao1215/sidenote/internal/model"
)

// Step defines the interface that all pipeline steps must implement.
// Steps are executed in sequence, each receiving the document built by the
// previous ones.
type Step interface {
	// Do executes the pipeline step. Non-fatal problems are recorded as
	// findings on doc and nil is returned.
	Do(ctx context.Context, doc *model.Document) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// Pipeline orchestrates the execution of multiple steps.
type Pipeline struct {
	steps []Step

	logger *slog.Logger

	// continueOnError determines whether to continue executing steps
	// after one fails.
	continueOnError bool
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithContinueOnError configures the pipeline to run the remaining steps
// after one fails. The default is to stop, since later steps depend on the
// output of earlier ones.
func WithContinueOnError(continueOnError bool) Option {
	return func(p *Pipeline) {
		p.continueOnError = continueOnError
	}
}

// New creates a new Pipeline with the given options.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps: make([]Step, 0),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// AddStep appends a step to the pipeline.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs all pipeline steps in sequence. Cancellation is checked
// before each step.
//
// A failing step gets a render_failed finding unless it recorded an error
// finding itself. Execute returns the first error unless continueOnError
// is set.
func (p *Pipeline) Execute(ctx context.Context, doc *model.Document) error {
	start := time.Now()
	defer func() { doc.Duration = time.Since(start) }()

	for _, step := range p.steps {
		select {
		case <-ctx.Done():
			p.logger.Warn("pipeline cancelled",
				"step", step.Name(),
				"file", doc.Path,
				"reason", ctx.Err(),
			)
			return ctx.Err()
		default:
		}

		p.logger.Debug("executing step",
			"step", step.Name(),
			"file", doc.Path,
		)

		if err := step.Do(ctx, doc); err != nil {
			p.logger.Error("step failed",
				"step", step.Name(),
				"file", doc.Path,
				"error", err,
			)
			if !doc.Failed() {
				doc.AddFinding(model.FindingRenderFailed, err.Error(), step.Name())
			}
			if !p.continueOnError {
				return err
			}
		} else {
			p.logger.Debug("step completed",
				"step", step.Name(),
				"file", doc.Path,
			)
		}

		doc.Steps = append(doc.Steps, step.Name())
	}
	return nil
}

// StepCount returns the number of steps in the pipeline.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
