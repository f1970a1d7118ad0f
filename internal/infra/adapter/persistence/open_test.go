package persistence_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mediawatch/internal/infra/adapter/persistence"
	"mediawatch/internal/repository"
)

func TestOpen_FileStoreWithoutDSN(t *testing.T) {
	dir := t.TempDir()
	stores, err := persistence.Open(context.Background(), persistence.Config{
		ArticlesFile: filepath.Join(dir, "articles.json"),
		EventsFile:   filepath.Join(dir, "events.json"),
	}, nil)
	require.NoError(t, err)
	defer func() { _ = stores.Close() }()

	assert.Equal(t, "file", stores.Backend)
	assert.NotNil(t, stores.Reloader)
	assert.Nil(t, stores.DB)
	assert.NoError(t, stores.Pinger.Ping(context.Background()))

	n, err := stores.Articles.Count(context.Background(), repository.ArticleFilter{})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DATA_FILE", "/tmp/a.json")
	t.Setenv("STORE_TTL", "1h")

	cfg := persistence.ConfigFromEnv()
	assert.Empty(t, cfg.DatabaseURL)
	assert.Equal(t, "/tmp/a.json", cfg.ArticlesFile)
	assert.Equal(t, "1h0m0s", cfg.TTL.String())
	assert.True(t, cfg.Migrate)
}
