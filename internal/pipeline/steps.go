package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nao1215/entityscan/internal/dandelion"
	"github.com/nao1215/entityscan/internal/model"
)

// Extractor sends one extraction request.
type Extractor interface {
	Extract(ctx context.Context, req dandelion.Request) (*dandelion.Response, error)
}

// LanguageDetector guesses the language of a text.
type LanguageDetector interface {
	Detect(text string) (string, bool)
}

// Recorder stores finished extractions.
type Recorder interface {
	SaveExtraction(ctx context.Context, e *model.Extraction) (int64, error)
}

// DetectLanguageStep sets job.Lang from local detection when no language
// was requested.
type DetectLanguageStep struct {
	detector LanguageDetector
	logger   *slog.Logger
}

// NewDetectLanguageStep creates a DetectLanguageStep.
func NewDetectLanguageStep(detector LanguageDetector, logger *slog.Logger) *DetectLanguageStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &DetectLanguageStep{detector: detector, logger: logger}
}

// Name returns the step name.
func (s *DetectLanguageStep) Name() string {
	return "detect-language"
}

// Do runs detection. A failed detection leaves job.Lang unchanged.
func (s *DetectLanguageStep) Do(_ context.Context, job *Job) error {
	if job.Lang != "" && job.Lang != dandelion.DefaultLanguage {
		return nil
	}
	if job.Input.Text == "" {
		return nil
	}
	lang, ok := s.detector.Detect(job.Input.Text)
	if !ok {
		s.logger.Debug("language not detected, leaving it to the API")
		return nil
	}
	s.logger.Debug("language detected", "lang", lang)
	job.Lang = lang
	return nil
}

// ExtractStep calls the API.
type ExtractStep struct {
	extractor Extractor
}

// NewExtractStep creates an ExtractStep.
func NewExtractStep(extractor Extractor) *ExtractStep {
	return &ExtractStep{extractor: extractor}
}

// Name returns the step name.
func (s *ExtractStep) Name() string {
	return "extract"
}

// Do sends job.Input and stores the response.
func (s *ExtractStep) Do(ctx context.Context, job *Job) error {
	req := dandelion.Request{Lang: job.Lang}
	if job.Input.Source.Kind == model.SourceURL {
		req.URL = job.Input.Source.Name
	} else {
		req.Text = job.Input.Text
	}

	start := time.Now()
	resp, err := s.extractor.Extract(ctx, req)
	if err != nil {
		return err
	}
	job.Response = resp
	job.Elapsed = time.Since(start)
	return nil
}

// NormalizeStep turns the response into display rows.
type NormalizeStep struct{}

// NewNormalizeStep creates a NormalizeStep.
func NewNormalizeStep() *NormalizeStep {
	return &NormalizeStep{}
}

// Name returns the step name.
func (s *NormalizeStep) Name() string {
	return "normalize"
}

// Do builds job.Extraction from job.Response.
func (s *NormalizeStep) Do(_ context.Context, job *Job) error {
	if job.Response == nil {
		return fmt.Errorf("normalize: no response to normalize")
	}
	job.Extraction = model.NewExtraction(job.Input.Source, job.Input.Text, job.Response, job.Elapsed)
	return nil
}

// RecordStep saves the extraction in the history. Failures are warnings.
type RecordStep struct {
	recorder Recorder
	logger   *slog.Logger
}

// NewRecordStep creates a RecordStep.
func NewRecordStep(recorder Recorder, logger *slog.Logger) *RecordStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &RecordStep{recorder: recorder, logger: logger}
}

// Name returns the step name.
func (s *RecordStep) Name() string {
	return "record"
}

// Do saves job.Extraction.
func (s *RecordStep) Do(ctx context.Context, job *Job) error {
	if job.Extraction == nil {
		return nil
	}
	id, err := s.recorder.SaveExtraction(ctx, job.Extraction)
	if err != nil {
		s.logger.Warn("failed to save extraction history", "error", err)
		job.Warnings = append(job.Warnings, "history not saved: "+err.Error())
		return nil
	}
	s.logger.Debug("extraction saved", "id", id)
	return nil
}

// Options selects the optional steps of Default.
type Options struct {
	// Detector enables language detection when non-nil.
	Detector LanguageDetector

	// Recorder enables history recording when non-nil.
	Recorder Recorder

	// Logger is used by the pipeline and its steps.
	Logger *slog.Logger
}

// Default builds the standard pipeline: detect-language (optional),
// extract, normalize, record (optional).
func Default(extractor Extractor, opts Options) *Pipeline {
	p := New(WithLogger(opts.Logger))
	if opts.Detector != nil {
		p.AddStep(NewDetectLanguageStep(opts.Detector, opts.Logger))
	}
	p.AddSteps(NewExtractStep(extractor), NewNormalizeStep())
	if opts.Recorder != nil {
		p.AddStep(NewRecordStep(opts.Recorder, opts.Logger))
	}
	return p
}

// StepList formats step names for display.
func StepList(p *Pipeline) string {
	return strings.Join(p.StepNames(), " -> ")
}
