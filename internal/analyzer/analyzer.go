package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	_ "embed"

	apperrors "resume-analyzer/internal/errors"
	"resume-analyzer/internal/gemini"
	"resume-analyzer/internal/logger"
	"resume-analyzer/internal/models"

	"go.uber.org/zap"
)

//go:embed prompt.md
var promptTemplate string

const (
	resumePlaceholder = "{{RESUME_TEXT}}"
	jobPlaceholder    = "{{JOB_DESCRIPTION}}"
	fence             = "```"
)

type Analyzer struct {
	generator gemini.TextGenerator
	logger    *zap.Logger
	maxLogLen int
}

func New(generator gemini.TextGenerator, log *zap.Logger, maxLogLength int) *Analyzer {
	if maxLogLength <= 0 {
		maxLogLength = 200
	}

	return &Analyzer{
		generator: generator,
		logger:    logger.OrNop(log),
		maxLogLen: maxLogLength,
	}
}

// Analyze asks the model for one match analysis of the resume against the job
// description. The returned Text has any enclosing code fence removed.
// Blank resume text is still sent to the model.
func (a *Analyzer) Analyze(ctx context.Context, resumeText, jobDescription string) (*models.Analysis, error) {

	if strings.TrimSpace(jobDescription) == "" {
		return nil, fmt.Errorf("job description is empty: %w", apperrors.ErrValidation)
	}

	prompt := BuildPrompt(resumeText, jobDescription)

	raw, err := a.generator.GenerateText(ctx, prompt)
	if err != nil {
		return nil, err
	}

	cleaned := StripCodeFence(raw)
	report := ParseReport(cleaned)

	a.logger.Debug("match analysis received",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.Bool("structured", report != nil),
		zap.String("response_preview", logger.TruncateForLog(cleaned, a.maxLogLen)),
	)

	return &models.Analysis{Text: cleaned, Report: report}, nil
}

func BuildPrompt(resumeText, jobDescription string) string {
	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Resume:\n" + resumePlaceholder + "\n\nJob Description:\n" + jobPlaceholder + "\n\nJSON Response:"
	}

	// job description first so resume text containing the other placeholder is left alone
	prompt := strings.ReplaceAll(template, jobPlaceholder, jobDescription)
	return strings.Replace(prompt, resumePlaceholder, resumeText, 1)
}

// StripCodeFence removes a leading ``` or ```json opener and the closing ```.
// Text without an opening fence is only trimmed.
func StripCodeFence(raw string) string {
	text := strings.TrimSpace(raw)
	if !strings.HasPrefix(text, fence) {
		return text
	}
	text = strings.TrimPrefix(text, fence)

	if nl := strings.IndexByte(text, '\n'); nl != -1 && isFenceTag(text[:nl]) {
		text = text[nl+1:]
	} else if len(text) >= 4 && strings.EqualFold(text[:4], "json") {
		text = text[4:]
	}

	if idx := strings.LastIndex(text, fence); idx != -1 {
		text = text[:idx]
	}

	return strings.TrimSpace(text)
}

// isFenceTag reports whether the rest of an opener line is an info string like "json" or "".
func isFenceTag(s string) bool {
	s = strings.TrimRight(s, " \t\r")
	for _, r := range s {
		isWord := r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9'
		if !isWord && !strings.ContainsRune("_+.-", r) {
			return false
		}
	}
	return true
}

// ParseReport decodes the analysis into a MatchReport. It returns nil when the
// text is not a JSON object or carries none of the report keys.
func ParseReport(text string) *models.MatchReport {

	var data map[string]any
	if err := json.Unmarshal([]byte(text), &data); err != nil {
		return nil
	}

	report := &models.MatchReport{
		OverallMatchPercentage:    coerceString(data["overall_match_percentage"]),
		KeySkillsMatch:            coerceString(data["key_skills_match"]),
		ExperienceRelevance:       coerceString(data["experience_relevance"]),
		MissingQualifications:     coerceString(data["missing_qualifications"]),
		SuggestionsForImprovement: coerceString(data["suggestions_for_improvement"]),
	}

	if *report == (models.MatchReport{}) {
		return nil
	}

	return report
}

func coerceString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			if s := coerceString(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	}
}
