package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"frodi/internal/logger"
	"frodi/internal/models"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type TextExtractor interface {
	ExtractText(data []byte) (string, error)
}

type MemoAssembler interface {
	Assemble(result *models.MemoResult) (string, error)
}

type Completer interface {
	Complete(ctx context.Context, text string, format ResponseFormat) (json.RawMessage, error)
}

// Journal records pipeline runs. Failures to record never fail a request.
type Journal interface {
	Record(ctx context.Context, generation *models.Generation) error
}

type OutputKind int

const (
	OutputDocx OutputKind = iota
	OutputJSON
)

// PipelineConfig describes one upload route as data.
type PipelineConfig struct {
	Name         string
	Protected    bool
	UsesChapters bool
	Validator    UploadValidator
	Output       OutputKind
	Format       func(chapters []string) ResponseFormat
}

type PipelineDeps struct {
	Extractor TextExtractor
	Sanitizer *TextSanitizer
	Completer Completer
	Assembler MemoAssembler
	Journal   Journal
}

type MemoRequest struct {
	Upload   Upload
	Chapters []string
}

type OutcomeKind int

const (
	OutcomeAccepted OutcomeKind = iota + 1
	OutcomeRejected
	OutcomeFailed
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeAccepted:
		return "accepted"
	case OutcomeRejected:
		return "rejected"
	case OutcomeFailed:
		return "failed"
	}
	return "unknown"
}

// Outcome is the result of a pipeline run. Exactly one of the payload groups
// is set, according to Kind.
type Outcome struct {
	Kind OutcomeKind

	// Accepted
	DocumentPath string
	JSON         json.RawMessage

	// Rejected
	Rejection *ClientInputError

	// Failed
	Cause error
}

func accepted(path string, raw json.RawMessage) Outcome {
	return Outcome{Kind: OutcomeAccepted, DocumentPath: path, JSON: raw}
}

func rejected(err error) Outcome {
	var clientErr *ClientInputError
	if !errors.As(err, &clientErr) {
		clientErr = &ClientInputError{Detail: err.Error()}
	}
	return Outcome{Kind: OutcomeRejected, Rejection: clientErr}
}

func failed(cause error) Outcome {
	return Outcome{Kind: OutcomeFailed, Cause: cause}
}

// Pipeline validates an upload, asks the model for a structured answer and
// turns it into the route's output.
type Pipeline struct {
	cfg  PipelineConfig
	deps PipelineDeps
}

func NewPipeline(cfg PipelineConfig, deps PipelineDeps) *Pipeline {
	if deps.Sanitizer == nil {
		deps.Sanitizer = NewTextSanitizer()
	}
	return &Pipeline{cfg: cfg, deps: deps}
}

func (p *Pipeline) Config() PipelineConfig {
	return p.cfg
}

func (p *Pipeline) Run(ctx context.Context, req MemoRequest) Outcome {
	start := time.Now()
	outcome, wordCount := p.run(ctx, req)
	elapsed := time.Since(start)

	fields := logrus.Fields{
		"route":      p.cfg.Name,
		"filename":   req.Upload.Filename,
		"wordCount":  wordCount,
		"outcome":    outcome.Kind.String(),
		"durationMs": elapsed.Milliseconds(),
	}
	switch outcome.Kind {
	case OutcomeAccepted:
		logger.WithFields(fields).Info("Memo pipeline completed")
	case OutcomeRejected:
		fields["reason"] = outcome.Rejection.Reason
		logger.WithFields(fields).Warn("Memo upload rejected")
	case OutcomeFailed:
		fields["error"] = outcome.Cause.Error()
		logger.WithFields(fields).Error("Memo pipeline failed")
	}

	p.record(ctx, req, wordCount, outcome, elapsed)
	return outcome
}

func (p *Pipeline) run(ctx context.Context, req MemoRequest) (Outcome, int) {
	if err := p.cfg.Validator.CheckType(req.Upload.MediaType, req.Upload.Filename); err != nil {
		return rejected(err), 0
	}

	text, err := p.deps.Extractor.ExtractText(req.Upload.Data)
	if err != nil {
		var extractErr *ExtractionError
		if !errors.As(err, &extractErr) {
			return failed(err), 0
		}
		logger.WithFields(logrus.Fields{
			"route": p.cfg.Name,
			"error": err.Error(),
		}).Debug("Text extraction failed")
		return rejected(&ClientInputError{
			Reason: ReasonUnreadable,
			Detail: "The uploaded file could not be read as a .docx document.",
		}), 0
	}
	text = p.deps.Sanitizer.SanitizeText(text)

	wordCount := CountWords(text)
	if err := p.cfg.Validator.CheckLength(text); err != nil {
		return rejected(err), wordCount
	}

	format := p.cfg.Format(req.Chapters)
	raw, err := p.deps.Completer.Complete(ctx, text, format)
	if err != nil {
		return failed(err), wordCount
	}

	if p.cfg.Output == OutputJSON {
		return accepted("", raw), wordCount
	}

	var result models.MemoResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return failed(&GatewayError{Op: "decode memo", Err: err}), wordCount
	}
	path, err := p.deps.Assembler.Assemble(&result)
	if err != nil {
		return failed(err), wordCount
	}
	return accepted(path, nil), wordCount
}

func (p *Pipeline) record(ctx context.Context, req MemoRequest, wordCount int, outcome Outcome, elapsed time.Duration) {
	if p.deps.Journal == nil {
		return
	}

	generation := &models.Generation{
		ID:         uuid.NewString(),
		Route:      p.cfg.Name,
		Filename:   req.Upload.Filename,
		WordCount:  wordCount,
		Chapters:   strings.Join(req.Chapters, ","),
		Outcome:    outcome.Kind.String(),
		DurationMS: elapsed.Milliseconds(),
		CreatedAt:  time.Now().UTC(),
	}
	switch outcome.Kind {
	case OutcomeRejected:
		generation.Detail = outcome.Rejection.Detail
	case OutcomeFailed:
		generation.Detail = outcome.Cause.Error()
	}

	if err := p.deps.Journal.Record(context.WithoutCancel(ctx), generation); err != nil {
		logger.WithFields(logrus.Fields{
			"route": p.cfg.Name,
			"error": err.Error(),
		}).Warn("Failed to record generation")
	}
}

// ParseChapters decodes the chapters form field. An empty field selects no
// optional chapters and keys outside the vocabulary are dropped.
func ParseChapters(field string) ([]string, error) {
	field = strings.TrimSpace(field)
	if field == "" {
		return nil, nil
	}
	var chapters []string
	if err := json.Unmarshal([]byte(field), &chapters); err != nil {
		return nil, &ClientInputError{
			Reason: ReasonBadChapters,
			Detail: "Invalid chapters format.",
		}
	}

	known := chapters[:0]
	for _, key := range chapters {
		if !knownChapter(key) {
			logger.WithFields(logrus.Fields{
				"chapter": key,
			}).Debug("Ignoring unknown chapter")
			continue
		}
		known = append(known, key)
	}
	return known, nil
}
