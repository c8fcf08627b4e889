package geministore

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	apperrors "resume-analyzer/internal/errors"
	"resume-analyzer/internal/logger"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

const DefaultModel = "gemini-2.0-flash"

type Config struct {
	APIKey      string
	Model       string
	Temperature float32
	// BaseURL overrides the Gemini API endpoint, empty means the public one.
	BaseURL      string
	MaxLogLength int
}

type GeminiClient struct {
	Client *genai.Client

	model     string
	genConfig *genai.GenerateContentConfig
	logger    *zap.Logger
	maxLogLen int
}

func New(ctx context.Context, cfg Config, log *zap.Logger) (*GeminiClient, error) {

	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientConfig)

	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}

	maxLogLen := cfg.MaxLogLength
	if maxLogLen <= 0 {
		maxLogLen = 200
	}

	return &GeminiClient{
		Client: client,
		model:  model,
		genConfig: &genai.GenerateContentConfig{
			Temperature: genai.Ptr(cfg.Temperature),
		},
		logger:    logger.WithCommonFields(log, "gemini", model),
		maxLogLen: maxLogLen,
	}, nil
}

func (g *GeminiClient) Model() string {
	if g == nil {
		return ""
	}
	return g.model
}

// ReadImage sends one image together with the instruction and returns the text of the answer.
func (g *GeminiClient) ReadImage(ctx context.Context, image []byte, mimeType, instruction string) (string, error) {

	if len(image) == 0 {
		return "", errors.New("image must not be empty")
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(image, mimeType),
			genai.NewPartFromText(instruction),
		}, genai.RoleUser),
	}

	g.logger.Debug("gemini read image request",
		zap.Int("image_bytes", len(image)),
		zap.String("mime_type", mimeType),
	)

	// a blank page reads as ""
	text, err := g.generate(ctx, contents)
	if err != nil {
		return "", fmt.Errorf("failed to extract text from image with: %w", err)
	}

	return text, nil
}

// GenerateText sends a text-only prompt.
func (g *GeminiClient) GenerateText(ctx context.Context, prompt string) (string, error) {

	if strings.TrimSpace(prompt) == "" {
		return "", errors.New("prompt must not be empty")
	}

	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}

	g.logger.Debug("gemini generate text request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", logger.TruncateForLog(prompt, g.maxLogLen)),
	)

	text, err := g.generate(ctx, contents)
	if err != nil {
		return "", fmt.Errorf("failed to generate analysis with: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("failed to generate analysis with: %w", apperrors.ErrEmptyResponse)
	}

	return text, nil
}

func (g *GeminiClient) generate(ctx context.Context, contents []*genai.Content) (string, error) {

	if g == nil || g.Client == nil {
		return "", errors.New("gemini client is not initialized")
	}

	result, err := g.Client.Models.GenerateContent(ctx, g.model, contents, g.genConfig)

	if err != nil {
		return "", classify(err)
	}

	text := result.Text()

	g.logger.Debug("gemini response",
		zap.Int("response_length", utf8.RuneCountInString(text)),
		zap.String("response_preview", logger.TruncateForLog(text, g.maxLogLen)),
	)

	return text, nil
}

func classify(err error) error {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		return err
	}

	switch apiErr.Code {

	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("gemini authentication failed (%d): %w", apiErr.Code, apperrors.ErrPermanentFailure)

	case http.StatusBadRequest:
		return fmt.Errorf("gemini invalid input (400) %s: %w", apiErr.Message, apperrors.ErrPermanentFailure)
	}

	return err
}
