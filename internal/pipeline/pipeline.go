package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/nao1215/entityscan/internal/dandelion"
	"github.com/nao1215/entityscan/internal/input"
	"github.com/nao1215/entityscan/internal/model"
)

// Job carries the state of one extraction through the pipeline.
type Job struct {
	// Input is the text to analyze and its source.
	Input input.Input

	// Lang is the language code sent to the API. Empty means the client default.
	Lang string

	// Response is the decoded API response.
	Response *dandelion.Response

	// Elapsed is the API round-trip time.
	Elapsed time.Duration

	// Extraction is the normalized result.
	Extraction *model.Extraction

	// Performed lists the names of completed steps.
	Performed []string

	// Warnings holds non-fatal step failures.
	Warnings []string
}

// NewJob creates a Job for in.
func NewJob(in input.Input) *Job {
	return &Job{Input: in}
}

// Step is one stage of the pipeline.
type Step interface {
	// Do executes the step. Non-critical failures should be recorded in
	// job.Warnings and return nil.
	Do(ctx context.Context, job *Job) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// Pipeline executes steps in order.
type Pipeline struct {
	steps  []Step
	logger *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New creates a new Pipeline with the given options.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{steps: make([]Step, 0)}
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

// Execute runs all steps in sequence and stops at the first error.
// Cancellation is checked before each step.
func (p *Pipeline) Execute(ctx context.Context, job *Job) error {
	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			p.logger.Warn("pipeline cancelled",
				"step", step.Name(),
				"reason", err,
			)
			return err
		}

		p.logger.Debug("executing step",
			"step", step.Name(),
			"source", job.Input.Source.String(),
		)

		if err := step.Do(ctx, job); err != nil {
			p.logger.Debug("step failed",
				"step", step.Name(),
				"source", job.Input.Source.String(),
				"error", err,
			)
			return err
		}

		job.Performed = append(job.Performed, step.Name())
	}

	return nil
}

// Run executes the pipeline for in and returns the extraction.
func (p *Pipeline) Run(ctx context.Context, in input.Input) (*model.Extraction, error) {
	job := NewJob(in)
	if err := p.Execute(ctx, job); err != nil {
		return nil, err
	}
	if job.Extraction == nil {
		job.Extraction = model.NewExtraction(in.Source, in.Text, job.Response, job.Elapsed)
	}
	return job.Extraction, nil
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
