package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kajiplatform/matching-service/internal/matching"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	content := `{
		"listen_addr": ":9090",
		"database_url": "postgres://localhost/matching",
		"min_match_score": 60,
		"workers": 4
	}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.ListenAddr)
	assert.Equal(t, "postgres://localhost/matching", cfg.DatabaseURL)
	assert.Equal(t, 60.0, cfg.MinMatchScore)
	assert.Equal(t, 4, cfg.Workers)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestLoadConfigEmptyPath(t *testing.T) {
	_, err := LoadConfig("")
	assert.Error(t, err)
}

func TestLoadConfigInvalidJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestMergeWithDefaultsFillsUnset(t *testing.T) {
	cfg := Config{ListenAddr: ":9090", MinMatchScore: 70}
	merged := cfg.MergeWithDefaults(Default())

	// Explicit values win.
	assert.Equal(t, ":9090", merged.ListenAddr)
	assert.Equal(t, 70.0, merged.MinMatchScore)

	// Unset values take the defaults.
	assert.Equal(t, 40.0, merged.SimilarMinScore)
	assert.Equal(t, 200, merged.CandidateCap)
	assert.Equal(t, 50.0, merged.MaxAlertRadiusKm)
	assert.Equal(t, 8, merged.Workers)
	assert.Equal(t, "*/30 * * * *", merged.DigestCron)
	assert.Equal(t, matching.DefaultWeights(), merged.Weights)
}

func TestDefaultValidates(t *testing.T) {
	cfg := Default()
	assert.NoError(t, cfg.Validate())
}

func TestValidateRejectsBadWeights(t *testing.T) {
	cfg := Default()
	cfg.Weights = matching.Weights{Skill: 0.3, Location: 0.4, Experience: 0.3}
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsOutOfRangeThreshold(t *testing.T) {
	cfg := Default()
	cfg.MinMatchScore = 150
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsNonPositiveRadius(t *testing.T) {
	cfg := Default()
	cfg.MaxAlertRadiusKm = -1
	assert.Error(t, cfg.Validate())
}

func TestApplyEnvOverridesConnections(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://env/db")
	t.Setenv("REDIS_URL", "redis://env:6379")
	t.Setenv("LISTEN_ADDR", ":7070")

	cfg := Default()
	cfg.DatabaseURL = "postgres://file/db"
	cfg.ApplyEnv()

	assert.Equal(t, "postgres://env/db", cfg.DatabaseURL)
	assert.Equal(t, "redis://env:6379", cfg.RedisURL)
	assert.Equal(t, ":7070", cfg.ListenAddr)
}
