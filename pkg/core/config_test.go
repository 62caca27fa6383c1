package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRejectsMissingProviders(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Timezone:    "UTC",
			MetricStore: MetricStoreConfig{Provider: "sqlite"},
			VectorStore: VectorStoreConfig{Provider: "qdrant", Collection: "daily_summaries"},
			LLM:         LLMConfig{Provider: "ollama"},
			Embedder:    EmbedderConfig{Provider: "ollama"},
		}
	}

	require.NoError(t, valid().Validate())

	cfg := valid()
	cfg.MetricStore.Provider = ""
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)

	cfg = valid()
	cfg.VectorStore.Collection = ""
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)

	cfg = valid()
	cfg.LLM.Provider = ""
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)

	cfg = valid()
	cfg.Embedder.Provider = ""
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
}

func TestLoadConfigFromEnvDefaults(t *testing.T) {
	cfg, err := LoadConfigFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "daily_summaries", cfg.VectorStore.Collection)
	assert.NotEmpty(t, cfg.Timezone)
	assert.NotEmpty(t, cfg.MetricStore.Provider)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigFromEnvOverrides(t *testing.T) {
	t.Setenv("TIMEZONE", "America/New_York")
	t.Setenv("METRIC_DB_PROVIDER", "postgres")
	t.Setenv("POSTGRES_HOST", "db.internal")
	t.Setenv("POSTGRES_PORT", "5433")
	t.Setenv("VECTOR_PROVIDER", "sqlite")
	t.Setenv("VECTOR_SQLITE_PATH", "/tmp/vec.db")
	t.Setenv("VECTOR_COLLECTION", "journal")
	t.Setenv("LLM_PROVIDER", "ollama")
	t.Setenv("EMBEDDING_PROVIDER", "ollama")
	t.Setenv("EMBEDDING_MODEL", "mxbai-embed-large")

	cfg, err := LoadConfigFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "America/New_York", cfg.Timezone)
	assert.Equal(t, "postgres", cfg.MetricStore.Provider)
	assert.Equal(t, "db.internal", cfg.MetricStore.Config["host"])
	assert.Equal(t, 5433, cfg.MetricStore.Config["port"])
	assert.Equal(t, "sqlite", cfg.VectorStore.Provider)
	assert.Equal(t, "/tmp/vec.db", cfg.VectorStore.Config["db_path"])
	assert.Equal(t, "journal", cfg.VectorStore.Collection)
	assert.Equal(t, "llama3.1", cfg.LLM.Model)
	assert.Equal(t, "mxbai-embed-large", cfg.Embedder.Model)
}
