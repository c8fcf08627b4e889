package extractor

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"time"

	"resume-analyzer/internal/gemini"
	"resume-analyzer/internal/logger"
	"resume-analyzer/internal/rasterizer"

	"go.uber.org/zap"
)

// Instruction is sent with every page image.
const Instruction = "Extract all the text from this resume image"

const pageSeparator = "\n\n"

// PageCache stores extracted text per page image. A miss returns ok=false and a nil error.
type PageCache interface {
	Get(ctx context.Context, key string) (text string, ok bool, err error)
	Set(ctx context.Context, key, text string) error
}

type Extractor struct {
	reader gemini.ImageReader
	cache  PageCache
	model  string
	logger *zap.Logger
}

// New builds an Extractor. cache may be nil.
func New(reader gemini.ImageReader, cache PageCache, log *zap.Logger) *Extractor {

	model := "unknown"
	if m, ok := reader.(gemini.Model); ok && m.Model() != "" {
		model = m.Model()
	}

	return &Extractor{
		reader: reader,
		cache:  cache,
		model:  model,
		logger: logger.OrNop(log),
	}
}

// CacheKey identifies one page image for one model.
func CacheKey(model string, image []byte) string {
	sum := sha256.Sum256(image)
	return "ocr:" + model + ":" + hex.EncodeToString(sum[:])
}

// Extract reads every page image in order and returns the texts joined by a blank line.
// The first failing page aborts the call.
func (e *Extractor) Extract(ctx context.Context, pages []string) (string, error) {

	texts := make([]string, 0, len(pages))
	start := time.Now()

	for i, path := range pages {

		if err := ctx.Err(); err != nil {
			return "", err
		}

		image, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read page %d image: %w", i+1, err)
		}

		text, err := e.readPage(ctx, image)
		if err != nil {
			return "", fmt.Errorf("failed to extract text from page %d: %w", i+1, err)
		}

		texts = append(texts, text)
	}

	e.logger.Debug("text extracted",
		zap.Int("page_count", len(pages)),
		zap.Duration("took", time.Since(start)),
	)

	return strings.Join(texts, pageSeparator), nil
}

func (e *Extractor) readPage(ctx context.Context, image []byte) (string, error) {

	if e.cache == nil {
		return e.reader.ReadImage(ctx, image, rasterizer.ImageMIMEType, Instruction)
	}

	key := CacheKey(e.model, image)

	text, ok, err := e.cache.Get(ctx, key)
	if err != nil {
		e.logger.Warn("page cache lookup failed", zap.String("key", key), zap.Error(err))
	}
	if err == nil && ok {
		e.logger.Debug("page cache hit", zap.String("key", key))
		return text, nil
	}

	text, err = e.reader.ReadImage(ctx, image, rasterizer.ImageMIMEType, Instruction)
	if err != nil {
		return "", err
	}

	if err := e.cache.Set(ctx, key, text); err != nil {
		e.logger.Warn("page cache store failed", zap.String("key", key), zap.Error(err))
	}

	return text, nil
}
