// Package rasterizer renders PDF pages to PNG files in a scratch directory.
package rasterizer

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	apperrors "resume-analyzer/internal/errors"
	"resume-analyzer/internal/logger"

	"github.com/gen2brain/go-fitz"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"go.uber.org/zap"
)

const (
	// DefaultScale matches a 10x zoom over the 72 DPI page space.
	DefaultScale = 10.0
	baseDPI      = 72.0

	ImageMIMEType = "image/png"
)

func init() {
	// pdfcpu would otherwise create a config dir under the user's home
	api.DisableConfigDir()
}

// Document is an opened PDF that can render its pages.
type Document interface {
	NumPage() int
	ImagePNG(pageNumber int, dpi float64) ([]byte, error)
	Close() error
}

// Opener parses raw bytes into a Document.
type Opener func(data []byte) (Document, error)

// Pages is the rasterizer output. Paths are ordered by page number.
type Pages struct {
	Dir   string
	Paths []string
}

func (p *Pages) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Paths)
}

// Cleanup removes the scratch directory and every page image in it.
func (p *Pages) Cleanup() error {
	if p == nil || p.Dir == "" {
		return nil
	}
	if err := os.RemoveAll(p.Dir); err != nil {
		return fmt.Errorf("failed to remove scratch dir %s: %w", p.Dir, err)
	}
	return nil
}

type Config struct {
	Scale float64
	// ScratchDir is the parent for per-request directories; empty means os.TempDir.
	ScratchDir string
}

type Rasterizer struct {
	open       Opener
	dpi        float64
	scratchDir string
	logger     *zap.Logger
}

func New(cfg Config, open Opener, log *zap.Logger) *Rasterizer {
	scale := cfg.Scale
	if scale <= 0 {
		scale = DefaultScale
	}
	if open == nil {
		open = OpenPDF
	}

	return &Rasterizer{
		open:       open,
		dpi:        scale * baseDPI,
		scratchDir: cfg.ScratchDir,
		logger:     logger.OrNop(log),
	}
}

// Rasterize writes one PNG per page into a fresh scratch directory. The caller
// owns the returned Pages and must call Cleanup. On error nothing is left on disk.
func (r *Rasterizer) Rasterize(ctx context.Context, data []byte) (pages *Pages, err error) {

	doc, err := r.open(data)
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	count := doc.NumPage()
	if count <= 0 {
		return nil, apperrors.ErrEmptyDocument
	}

	dir, err := os.MkdirTemp(r.scratchDir, "resume-pages-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create scratch dir: %w", err)
	}

	pages = &Pages{Dir: dir, Paths: make([]string, 0, count)}

	defer func() {
		if err != nil {
			if cerr := pages.Cleanup(); cerr != nil {
				r.logger.Warn("failed to clean up after rasterize error", zap.Error(cerr))
			}
			pages = nil
		}
	}()

	start := time.Now()

	for i := 0; i < count; i++ {

		if err := ctx.Err(); err != nil {
			return nil, err
		}

		png, err := doc.ImagePNG(i, r.dpi)
		if err != nil {
			return nil, fmt.Errorf("failed to render page %d: %w", i+1, err)
		}

		path := filepath.Join(dir, fmt.Sprintf("page_%d.png", i+1))
		if err := os.WriteFile(path, png, 0o600); err != nil {
			return nil, fmt.Errorf("failed to write page %d: %w", i+1, err)
		}

		pages.Paths = append(pages.Paths, path)
	}

	r.logger.Debug("document rasterized",
		zap.Int("page_count", count),
		zap.Float64("dpi", r.dpi),
		zap.String("dir", dir),
		zap.Duration("took", time.Since(start)),
	)

	return pages, nil
}

// OpenPDF validates data with pdfcpu and opens it with MuPDF for rendering.
func OpenPDF(data []byte) (Document, error) {

	if len(data) == 0 {
		return nil, fmt.Errorf("empty upload: %w", apperrors.ErrInvalidDocument)
	}

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	count, err := api.PageCount(bytes.NewReader(data), conf)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidDocument, err)
	}
	if count == 0 {
		return nil, apperrors.ErrEmptyDocument
	}

	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidDocument, err)
	}

	return doc, nil
}
