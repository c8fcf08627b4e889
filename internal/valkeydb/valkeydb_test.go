package valkeydb_test

import (
	"context"
	"os"
	"testing"
	"time"

	"resume-analyzer/internal/extractor"
	"resume-analyzer/internal/valkeydb"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ extractor.PageCache = (*valkeydb.ValkeyClient)(nil)

func setUpTestDB(t *testing.T) *valkeydb.ValkeyClient {

	t.Helper()

	url := os.Getenv("VALKEY_TEST_URL")
	if url == "" {
		t.Skip("VALKEY_TEST_URL not set, skipping integration test")
	}

	ctx := context.Background()

	db, err := valkeydb.New(ctx, url, os.Getenv("VALKEY_TEST_PASSWORD"), time.Minute)
	require.NoError(t, err, "failed to connect to test database")

	t.Cleanup(db.Close)

	return db
}

func TestSetAndGetPage(t *testing.T) {
	valkeyDB := setUpTestDB(t)
	ctx := context.Background()
	key := extractor.CacheKey("test-model", []byte(t.Name()))

	t.Cleanup(func() {
		valkeyDB.Client.Do(ctx, valkeyDB.Client.B().Del().Key(key).Build())
	})

	require.NoError(t, valkeyDB.Set(ctx, key, "Jane Doe\nGo developer"))

	text, ok, err := valkeyDB.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Jane Doe\nGo developer", text)

	ttl, err := valkeyDB.Client.Do(ctx, valkeyDB.Client.B().Ttl().Key(key).Build()).AsInt64()
	require.NoError(t, err)
	assert.Greater(t, ttl, int64(0))
	assert.LessOrEqual(t, ttl, int64(60))
}

func TestGetMissingPage(t *testing.T) {
	valkeyDB := setUpTestDB(t)

	text, ok, err := valkeyDB.Get(context.Background(), extractor.CacheKey("test-model", []byte("never stored")))
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, text)
}
