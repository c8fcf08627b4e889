package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	apperrors "resume-analyzer/internal/errors"
	"resume-analyzer/internal/logger"
	"resume-analyzer/internal/models"
	"resume-analyzer/internal/processor"
	"resume-analyzer/internal/storage"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

var errTooLarge = errors.New("upload exceeds limit")

type Pipeline interface {
	Process(ctx context.Context, req processor.Request) (*models.AnalysisResult, error)
}

type APIHandler struct {
	pipeline       Pipeline
	runs           storage.RunReader
	maxUploadBytes int64
	version        string
	logger         *zap.Logger
}

// NewAPIHandler builds the handlers. runs is nil when no run ledger is configured.
func NewAPIHandler(pipeline Pipeline, runs storage.RunReader, maxUploadBytes int64, version string, log *zap.Logger) *APIHandler {
	return &APIHandler{
		pipeline:       pipeline,
		runs:           runs,
		maxUploadBytes: maxUploadBytes,
		version:        version,
		logger:         logger.OrNop(log),
	}
}

// AnalyzeResume handles the multipart upload of a resume file and a job description.
func (h *APIHandler) AnalyzeResume(c echo.Context) error {

	jobDescription := c.FormValue("job_description")
	if strings.TrimSpace(jobDescription) == "" {
		return NewValidationError("job_description is required")
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return NewValidationError("file is required")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return NewInternalError(fmt.Errorf("failed to open uploaded file: %w", err))
	}
	defer file.Close()

	document, err := readAtMost(file, h.maxUploadBytes)
	if errors.Is(err, errTooLarge) {
		return NewTooLargeError(h.maxUploadBytes)
	}
	if err != nil {
		return NewInternalError(err)
	}

	result, err := h.pipeline.Process(c.Request().Context(), processor.Request{
		FileName:       fileHeader.Filename,
		Document:       document,
		JobDescription: jobDescription,
	})

	if errors.Is(err, apperrors.ErrValidation) {
		return NewValidationError(err.Error())
	}
	if err != nil {
		return NewInternalError(err)
	}

	return c.JSON(http.StatusOK, result)
}

// GetRun returns the ledger entry of one pipeline run.
func (h *APIHandler) GetRun(c echo.Context) error {

	if h.runs == nil {
		return NewNotFoundError("run ledger is not enabled")
	}

	runID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewBadRequestError("invalid run id")
	}

	run, err := h.runs.RunByID(c.Request().Context(), runID)
	if errors.Is(err, storage.ErrRunNotFound) {
		return NewNotFoundError(fmt.Sprintf("run %s not found", runID))
	}
	if err != nil {
		return NewInternalError(err)
	}

	return c.JSON(http.StatusOK, run)
}

func (h *APIHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "ok",
		"version": h.version,
	})
}

func readAtMost(f multipart.File, max int64) ([]byte, error) {
	limited := io.LimitReader(f, max+1)
	b, err := io.ReadAll(limited)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if int64(len(b)) > max {
		return nil, errTooLarge
	}
	return b, nil
}
