package extractor_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"resume-analyzer/internal/extractor"
	"resume-analyzer/internal/geministore"
	"resume-analyzer/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type namedReader struct {
	*mocks.MockImageReader
}

func (namedReader) Model() string { return "gemini-test" }

func writePages(t *testing.T, images ...string) []string {
	t.Helper()

	dir := t.TempDir()
	paths := make([]string, 0, len(images))
	for i, img := range images {
		path := filepath.Join(dir, "page_"+string(rune('1'+i))+".png")
		require.NoError(t, os.WriteFile(path, []byte(img), 0o600))
		paths = append(paths, path)
	}
	return paths
}

func TestExtractJoinsPagesInOrder(t *testing.T) {
	reader := new(mocks.MockImageReader)
	reader.On("ReadImage", mock.Anything, []byte("img-1"), "image/png", extractor.Instruction).Return("Jane Doe", nil).Once()
	reader.On("ReadImage", mock.Anything, []byte("img-2"), "image/png", extractor.Instruction).Return("Experience", nil).Once()
	reader.On("ReadImage", mock.Anything, []byte("img-3"), "image/png", extractor.Instruction).Return("Education", nil).Once()

	ex := extractor.New(reader, nil, nil)

	text, err := ex.Extract(context.Background(), writePages(t, "img-1", "img-2", "img-3"))
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe\n\nExperience\n\nEducation", text)

	reader.AssertExpectations(t)
	reader.AssertNumberOfCalls(t, "ReadImage", 3)
}

func TestExtractSinglePage(t *testing.T) {
	reader := new(mocks.MockImageReader)
	reader.On("ReadImage", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("only page", nil)

	text, err := extractor.New(reader, nil, nil).Extract(context.Background(), writePages(t, "img"))
	require.NoError(t, err)
	assert.Equal(t, "only page", text)
}

func TestExtractAbortsOnFirstFailure(t *testing.T) {
	reader := new(mocks.MockImageReader)
	reader.On("ReadImage", mock.Anything, []byte("img-1"), mock.Anything, mock.Anything).Return("page one", nil)
	reader.On("ReadImage", mock.Anything, []byte("img-2"), mock.Anything, mock.Anything).Return("", errors.New("quota exceeded"))

	_, err := extractor.New(reader, nil, nil).Extract(context.Background(), writePages(t, "img-1", "img-2", "img-3"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "page 2")
	assert.Contains(t, err.Error(), "quota exceeded")

	reader.AssertNumberOfCalls(t, "ReadImage", 2)
}

func TestExtractKeepsBlankPage(t *testing.T) {
	reader := new(mocks.MockImageReader)
	reader.On("ReadImage", mock.Anything, []byte("img-1"), mock.Anything, mock.Anything).Return("A", nil)
	reader.On("ReadImage", mock.Anything, []byte("img-2"), mock.Anything, mock.Anything).Return("", nil)
	reader.On("ReadImage", mock.Anything, []byte("img-3"), mock.Anything, mock.Anything).Return("C", nil)

	text, err := extractor.New(reader, nil, nil).Extract(context.Background(), writePages(t, "img-1", "img-2", "img-3"))
	require.NoError(t, err)
	assert.Equal(t, "A\n\n\n\nC", text)
	reader.AssertNumberOfCalls(t, "ReadImage", 3)
}

func TestExtractBlankPageFromGemini(t *testing.T) {
	answers := []string{"Jane Doe", "", "Education"}

	var mu sync.Mutex
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		text := answers[calls%len(answers)]
		calls++
		mu.Unlock()

		body, _ := json.Marshal(map[string]any{
			"candidates": []any{map[string]any{
				"content": map[string]any{
					"role":  "model",
					"parts": []any{map[string]any{"text": text}},
				},
			}},
		})
		w.Header().Set("Content-Type", "application/json")
		w.Write(body)
	}))
	t.Cleanup(srv.Close)

	client, err := geministore.New(context.Background(), geministore.Config{
		APIKey:  "test-key",
		Model:   "gemini-test",
		BaseURL: srv.URL,
	}, nil)
	require.NoError(t, err)

	text, err := extractor.New(client, nil, nil).Extract(context.Background(), writePages(t, "img-1", "img-2", "img-3"))
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe\n\n\n\nEducation", text)
	assert.Equal(t, 3, calls)
}

func TestExtractMissingPageFile(t *testing.T) {
	reader := new(mocks.MockImageReader)

	_, err := extractor.New(reader, nil, nil).Extract(context.Background(), []string{filepath.Join(t.TempDir(), "gone.png")})
	assert.Error(t, err)
	reader.AssertNotCalled(t, "ReadImage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestExtractCancelledContext(t *testing.T) {
	reader := new(mocks.MockImageReader)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := extractor.New(reader, nil, nil).Extract(ctx, writePages(t, "img-1"))
	assert.ErrorIs(t, err, context.Canceled)
	reader.AssertNotCalled(t, "ReadImage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestExtractCacheHitSkipsModel(t *testing.T) {
	reader := new(mocks.MockImageReader)
	cache := new(mocks.MockPageCache)

	key := extractor.CacheKey("gemini-test", []byte("img-1"))
	cache.On("Get", mock.Anything, key).Return("cached text", true, nil)

	text, err := extractor.New(namedReader{reader}, cache, nil).Extract(context.Background(), writePages(t, "img-1"))
	require.NoError(t, err)
	assert.Equal(t, "cached text", text)

	reader.AssertNotCalled(t, "ReadImage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything)
}

func TestExtractCacheMissStoresText(t *testing.T) {
	reader := new(mocks.MockImageReader)
	cache := new(mocks.MockPageCache)

	key := extractor.CacheKey("gemini-test", []byte("img-1"))
	cache.On("Get", mock.Anything, key).Return("", false, nil)
	cache.On("Set", mock.Anything, key, "fresh text").Return(nil)
	reader.On("ReadImage", mock.Anything, []byte("img-1"), "image/png", extractor.Instruction).Return("fresh text", nil)

	text, err := extractor.New(namedReader{reader}, cache, nil).Extract(context.Background(), writePages(t, "img-1"))
	require.NoError(t, err)
	assert.Equal(t, "fresh text", text)

	cache.AssertExpectations(t)
	reader.AssertExpectations(t)
}

func TestExtractIgnoresCacheErrors(t *testing.T) {
	reader := new(mocks.MockImageReader)
	cache := new(mocks.MockPageCache)

	cache.On("Get", mock.Anything, mock.Anything).Return("", false, errors.New("connection refused"))
	cache.On("Set", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("connection refused"))
	reader.On("ReadImage", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("from model", nil)

	text, err := extractor.New(reader, cache, nil).Extract(context.Background(), writePages(t, "img-1", "img-2"))
	require.NoError(t, err)
	assert.Equal(t, "from model\n\nfrom model", text)
	reader.AssertNumberOfCalls(t, "ReadImage", 2)
}

func TestCacheKey(t *testing.T) {
	key := extractor.CacheKey("gemini-2.0-flash", []byte("page"))

	assert.True(t, strings.HasPrefix(key, "ocr:gemini-2.0-flash:"))
	assert.Len(t, strings.TrimPrefix(key, "ocr:gemini-2.0-flash:"), 64)
	assert.Equal(t, key, extractor.CacheKey("gemini-2.0-flash", []byte("page")))
	assert.NotEqual(t, key, extractor.CacheKey("gemini-2.5-pro", []byte("page")))
}
