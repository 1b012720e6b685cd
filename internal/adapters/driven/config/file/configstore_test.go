package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarrylabs/quarry/internal/core/scoring"
)

func newTestConfigStore(t *testing.T) *ConfigStore {
	t.Helper()
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestConfigStore_SetAndGet(t *testing.T) {
	store := newTestConfigStore(t)

	require.NoError(t, store.Set("search.min_score", 0.25))
	require.NoError(t, store.Set("embedding.model", "nomic-embed-text"))
	require.NoError(t, store.Set("search.result_limit", int64(12)))
	require.NoError(t, store.Set("verbose", true))
	require.NoError(t, store.Set("tags", []string{"a", "b"}))

	assert.Equal(t, 0.25, store.GetFloat("search.min_score"))
	assert.Equal(t, "nomic-embed-text", store.GetString("embedding.model"))
	assert.Equal(t, 12, store.GetInt("search.result_limit"))
	assert.True(t, store.GetBool("verbose"))
	assert.Equal(t, []string{"a", "b"}, store.GetStringSlice("tags"))
}

func TestConfigStore_MissingKeys(t *testing.T) {
	store := newTestConfigStore(t)

	_, ok := store.Get("nope")
	assert.False(t, ok)
	assert.Empty(t, store.GetString("nope"))
	assert.Zero(t, store.GetInt("nope"))
	assert.Zero(t, store.GetFloat("nope"))
	assert.False(t, store.GetBool("nope"))
	assert.Nil(t, store.GetStringSlice("nope"))
}

func TestConfigStore_WrongTypes(t *testing.T) {
	store := newTestConfigStore(t)

	require.NoError(t, store.Set("key", "a string"))

	assert.Zero(t, store.GetInt("key"))
	assert.Zero(t, store.GetFloat("key"))
	assert.False(t, store.GetBool("key"))
	assert.Nil(t, store.GetStringSlice("key"))
}

func TestConfigStore_GetFloatFromInteger(t *testing.T) {
	store := newTestConfigStore(t)

	// A threshold written without a decimal point still reads as float.
	require.NoError(t, store.Set("search.min_score", int64(1)))
	assert.Equal(t, 1.0, store.GetFloat("search.min_score"))
}

func TestConfigStore_PersistsAcrossLoads(t *testing.T) {
	dir := t.TempDir()

	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Set("embedding.provider", "openai"))

	reloaded, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Equal(t, "openai", reloaded.GetString("embedding.provider"))
}

func TestConfigStore_FlattensNestedTables(t *testing.T) {
	dir := t.TempDir()
	content := `
[search]
min_score = 0.3
result_limit = 5

[chunking]
token_budget = 256
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0600))

	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	assert.Equal(t, 0.3, store.GetFloat("search.min_score"))
	assert.Equal(t, 5, store.GetInt("search.result_limit"))
	assert.Equal(t, 256, store.GetInt("chunking.token_budget"))
}

func TestConfigStore_FilePermissions(t *testing.T) {
	store := newTestConfigStore(t)
	require.NoError(t, store.Set("key", "value"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestScoringConfig_DefaultsWhenEmpty(t *testing.T) {
	store := newTestConfigStore(t)

	cfg := ScoringConfig(store)
	assert.Equal(t, scoring.DefaultConfig(), cfg)
}

func TestScoringConfig_Overrides(t *testing.T) {
	store := newTestConfigStore(t)

	require.NoError(t, store.Set(KeySearchMinScore, 0.3))
	require.NoError(t, store.Set(KeySearchResultLimit, int64(20)))
	require.NoError(t, store.Set(KeyChunkingTokenBudget, int64(256)))
	require.NoError(t, store.Set(KeyChunkingSimilarityThreshold, 0.85))

	cfg := ScoringConfig(store)
	assert.Equal(t, 0.3, cfg.MinScore)
	assert.Equal(t, 20, cfg.ResultLimit)
	assert.Equal(t, 256, cfg.TokenBudget)
	assert.Equal(t, 0.85, cfg.SimilarityThreshold)

	// Untouched values keep their defaults.
	defaults := scoring.DefaultConfig()
	assert.Equal(t, defaults.PerDocumentCap, cfg.PerDocumentCap)
	assert.Equal(t, defaults.HighConfidence, cfg.HighConfidence)
}

func TestScoringConfig_IgnoresInvalidThreshold(t *testing.T) {
	store := newTestConfigStore(t)

	require.NoError(t, store.Set(KeyChunkingSimilarityThreshold, 1.5))

	cfg := ScoringConfig(store)
	assert.Equal(t, scoring.DefaultConfig().SimilarityThreshold, cfg.SimilarityThreshold)
}

func TestReadEmbeddingSettings(t *testing.T) {
	store := newTestConfigStore(t)

	settings := ReadEmbeddingSettings(store)
	assert.Equal(t, "ollama", settings.Provider)

	require.NoError(t, store.Set(KeyEmbeddingProvider, "openai"))
	require.NoError(t, store.Set(KeyEmbeddingModel, "text-embedding-3-small"))
	require.NoError(t, store.Set(KeyEmbeddingAPIKey, "sk-test"))

	settings = ReadEmbeddingSettings(store)
	assert.Equal(t, "openai", settings.Provider)
	assert.Equal(t, "text-embedding-3-small", settings.Model)
	assert.Equal(t, "sk-test", settings.APIKey)
}
