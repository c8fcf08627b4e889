package processor

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	apperrors "resume-analyzer/internal/errors"
	"resume-analyzer/internal/logger"
	"resume-analyzer/internal/models"
	"resume-analyzer/internal/rasterizer"
	"resume-analyzer/internal/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Rasterizer interface {
	Rasterize(ctx context.Context, data []byte) (*rasterizer.Pages, error)
}

type TextExtractor interface {
	Extract(ctx context.Context, pages []string) (string, error)
}

type MatchAnalyzer interface {
	Analyze(ctx context.Context, resumeText, jobDescription string) (*models.Analysis, error)
}

type Request struct {
	FileName       string
	Document       []byte
	JobDescription string
}

func (r Request) Validate() error {
	if strings.TrimSpace(r.JobDescription) == "" {
		return fmt.Errorf("job_description is required: %w", apperrors.ErrValidation)
	}
	if len(r.Document) == 0 {
		return fmt.Errorf("file is required: %w", apperrors.ErrValidation)
	}
	return nil
}

type Processor struct {
	rasterizer Rasterizer
	extractor  TextExtractor
	analyzer   MatchAnalyzer
	recorder   storage.RunRecorder
	logger     *zap.Logger
}

// NewProcessor wires the pipeline stages. recorder may be nil.
func NewProcessor(r Rasterizer, e TextExtractor, a MatchAnalyzer, recorder storage.RunRecorder, log *zap.Logger) *Processor {
	return &Processor{
		rasterizer: r,
		extractor:  e,
		analyzer:   a,
		recorder:   recorder,
		logger:     logger.OrNop(log),
	}
}

// Process runs rasterize, extract and analyze for one document. Page images never
// outlive the call. Any failure returns a nil result.
func (p *Processor) Process(ctx context.Context, req Request) (*models.AnalysisResult, error) {

	if err := req.Validate(); err != nil {
		return nil, err
	}

	runID, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate run id: %w", err)
	}

	log := p.logger.With(zap.String(logger.FieldRunID, runID.String()))
	start := time.Now()

	p.startRun(ctx, log, &models.Run{
		ID:            runID,
		Status:        models.StatusRunning,
		FileName:      req.FileName,
		DocumentBytes: len(req.Document),
		CreatedAt:     start.UTC(),
	})

	result, err := p.run(ctx, log, req)
	if err != nil {
		log.Error("analysis failed", zap.Error(err), zap.Duration("took", time.Since(start)))
		p.failRun(ctx, log, runID, err)
		return nil, err
	}

	result.RunID = runID
	p.completeRun(ctx, log, runID, result)

	log.Info("analysis completed",
		zap.String("file_name", req.FileName),
		zap.Int("page_count", result.PageCount),
		zap.Duration("took", time.Since(start)),
	)

	return result, nil
}

func (p *Processor) run(ctx context.Context, log *zap.Logger, req Request) (*models.AnalysisResult, error) {

	pages, err := p.rasterizer.Rasterize(ctx, req.Document)
	if err != nil {
		return nil, fmt.Errorf("failed to rasterize document: %w", err)
	}

	defer func() {
		if err := pages.Cleanup(); err != nil {
			log.Warn("failed to remove page images", zap.Error(err))
		}
	}()

	text, err := p.extractor.Extract(ctx, pages.Paths)
	if err != nil {
		return nil, err
	}

	analysis, err := p.analyzer.Analyze(ctx, text, req.JobDescription)
	if err != nil {
		return nil, fmt.Errorf("failed to analyze resume: %w", err)
	}

	return &models.AnalysisResult{
		Status:        models.StatusSuccess,
		ExtractedText: text,
		Analysis:      analysis.Text,
		MatchReport:   analysis.Report,
		PageCount:     pages.Len(),
	}, nil
}

// ledger writes never fail the request

func (p *Processor) startRun(ctx context.Context, log *zap.Logger, run *models.Run) {
	if p.recorder == nil {
		return
	}
	if err := p.recorder.StartRun(ctx, run); err != nil {
		log.Warn("failed to record run start", zap.Error(err))
	}
}

func (p *Processor) completeRun(ctx context.Context, log *zap.Logger, runID uuid.UUID, result *models.AnalysisResult) {
	if p.recorder == nil {
		return
	}
	chars := utf8.RuneCountInString(result.ExtractedText)
	if err := p.recorder.CompleteRun(context.WithoutCancel(ctx), runID, result.PageCount, chars); err != nil {
		log.Warn("failed to record run completion", zap.Error(err))
	}
}

func (p *Processor) failRun(ctx context.Context, log *zap.Logger, runID uuid.UUID, cause error) {
	if p.recorder == nil {
		return
	}
	if err := p.recorder.FailRun(context.WithoutCancel(ctx), runID, cause.Error()); err != nil {
		log.Warn("failed to record run failure", zap.Error(err))
	}
}
