package analyzer

import (
	"context"
	"errors"
	"strings"
	"testing"

	apperrors "resume-analyzer/internal/errors"
	"resume-analyzer/internal/models"
	"resume-analyzer/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const reportJSON = `{
  "overall_match_percentage": "75%",
  "key_skills_match": "Go, PostgreSQL",
  "experience_relevance": "Five years of backend work",
  "missing_qualifications": "Kubernetes",
  "suggestions_for_improvement": "Mention cloud deployments"
}`

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "json fence", input: "```json\n{\"a\": 1}\n```", want: `{"a": 1}`},
		{name: "bare fence", input: "```\n{\"a\": 1}\n```", want: `{"a": 1}`},
		{name: "uppercase tag", input: "```JSON\n{\"a\": 1}\n```\n", want: `{"a": 1}`},
		{name: "single line", input: "```json{\"a\": 1}```", want: `{"a": 1}`},
		{name: "content on opener line", input: "```{\"a\": 1,\n\"b\": 2}```", want: "{\"a\": 1,\n\"b\": 2}"},
		{name: "no closing fence", input: "```json\n{\"a\": 1}", want: `{"a": 1}`},
		{name: "surrounding whitespace", input: "  \n```json\n{}\n```  \n", want: `{}`},
		{name: "no fence", input: "  plain analysis text \n", want: "plain analysis text"},
		{name: "inner fence untouched", input: "see ```code``` here", want: "see ```code``` here"},
		{name: "empty", input: "", want: ""},
		{name: "prose after opener", input: "```Strong match overall\n```", want: "Strong match overall"},
		{name: "crlf opener", input: "```json\r\n{}\r\n```", want: `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripCodeFence(tt.input))
		})
	}
}

func TestStripCodeFenceRemovesExactlyTheMarkers(t *testing.T) {
	payloads := []string{
		`{"overall_match_percentage": "60%"}`,
		reportJSON,
		"[1, 2, 3]",
		"Strong match: 85%",
	}

	for _, payload := range payloads {
		assert.Equal(t, payload, StripCodeFence("```"+payload+"\n```"))
	}
}

func TestParseReport(t *testing.T) {
	report := ParseReport(reportJSON)
	require.NotNil(t, report)
	assert.Equal(t, models.MatchReport{
		OverallMatchPercentage:    "75%",
		KeySkillsMatch:            "Go, PostgreSQL",
		ExperienceRelevance:       "Five years of backend work",
		MissingQualifications:     "Kubernetes",
		SuggestionsForImprovement: "Mention cloud deployments",
	}, *report)
}

func TestParseReportCoercesValues(t *testing.T) {
	report := ParseReport(`{
		"overall_match_percentage": 82.5,
		"key_skills_match": ["Go", "gRPC", 3],
		"experience_relevance": {"years": 4},
		"missing_qualifications": null,
		"suggestions_for_improvement": true
	}`)
	require.NotNil(t, report)

	assert.Equal(t, "82.5", report.OverallMatchPercentage)
	assert.Equal(t, "Go, gRPC, 3", report.KeySkillsMatch)
	assert.Equal(t, `{"years":4}`, report.ExperienceRelevance)
	assert.Empty(t, report.MissingQualifications)
	assert.Equal(t, "true", report.SuggestionsForImprovement)
}

func TestParseReportRejectsUnstructured(t *testing.T) {
	assert.Nil(t, ParseReport("The candidate is a strong match."))
	assert.Nil(t, ParseReport(`["not", "an", "object"]`))
	assert.Nil(t, ParseReport(`{"unrelated": "value"}`))
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt("Jane Doe, Go developer", "Senior Go engineer")

	assert.Contains(t, prompt, "Jane Doe, Go developer")
	assert.Contains(t, prompt, "Senior Go engineer")
	assert.Contains(t, prompt, "overall_match_percentage")
	assert.Contains(t, prompt, "suggestions_for_improvement")
	assert.NotContains(t, prompt, resumePlaceholder)
	assert.NotContains(t, prompt, jobPlaceholder)
	assert.Less(t, strings.Index(prompt, "Jane Doe"), strings.Index(prompt, "Senior Go engineer"))
}

func TestBuildPromptLeavesPlaceholdersInInput(t *testing.T) {
	prompt := BuildPrompt("resume mentions {{JOB_DESCRIPTION}}", "job mentions {{RESUME_TEXT}}")

	assert.Contains(t, prompt, "resume mentions {{JOB_DESCRIPTION}}")
	assert.Contains(t, prompt, "job mentions {{RESUME_TEXT}}")
}

func TestAnalyzeStripsFenceAndParses(t *testing.T) {
	generator := new(mocks.MockTextGenerator)
	generator.On("GenerateText", mock.Anything, mock.MatchedBy(func(p string) bool {
		return strings.Contains(p, "resume text") && strings.Contains(p, "job text")
	})).Return("```json\n"+reportJSON+"\n```", nil).Once()

	result, err := New(generator, nil, 0).Analyze(context.Background(), "resume text", "job text")
	require.NoError(t, err)

	assert.Equal(t, reportJSON, result.Text)
	require.NotNil(t, result.Report)
	assert.Equal(t, "75%", result.Report.OverallMatchPercentage)
	generator.AssertExpectations(t)
}

func TestAnalyzePlainTextAnswer(t *testing.T) {
	generator := new(mocks.MockTextGenerator)
	generator.On("GenerateText", mock.Anything, mock.Anything).Return("Strong match overall.", nil)

	result, err := New(generator, nil, 0).Analyze(context.Background(), "resume", "job")
	require.NoError(t, err)

	assert.Equal(t, "Strong match overall.", result.Text)
	assert.Nil(t, result.Report)
}

func TestAnalyzeGeneratorError(t *testing.T) {
	generator := new(mocks.MockTextGenerator)
	generator.On("GenerateText", mock.Anything, mock.Anything).Return("", apperrors.ErrPermanentFailure)

	result, err := New(generator, nil, 0).Analyze(context.Background(), "resume", "job")
	assert.Nil(t, result)
	assert.True(t, errors.Is(err, apperrors.ErrPermanentFailure))
}

func TestAnalyzeRejectsBlankJobDescription(t *testing.T) {
	generator := new(mocks.MockTextGenerator)

	_, err := New(generator, nil, 0).Analyze(context.Background(), "resume", "   ")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	generator.AssertNotCalled(t, "GenerateText", mock.Anything, mock.Anything)
}

func TestAnalyzeSendsBlankResumeText(t *testing.T) {
	generator := new(mocks.MockTextGenerator)
	generator.On("GenerateText", mock.Anything, mock.MatchedBy(func(p string) bool {
		return strings.Contains(p, "job text") && !strings.Contains(p, resumePlaceholder)
	})).Return(reportJSON, nil).Once()

	result, err := New(generator, nil, 0).Analyze(context.Background(), " \n\n ", "job text")
	require.NoError(t, err)
	require.NotNil(t, result.Report)
	generator.AssertExpectations(t)
}
