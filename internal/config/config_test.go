package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newthinker/prism/internal/core"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prism.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
data:
  universe_file: testdata/universe.csv
  returns_file: testdata/returns.csv
simulation:
  trials: 500
  seed: 7
results:
  type: csv
  path: out/results.csv
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "testdata/universe.csv", cfg.Data.UniverseFile)
	assert.Equal(t, "testdata/returns.csv", cfg.Data.ReturnsFile)
	assert.Equal(t, 500, cfg.Simulation.Trials)
	assert.Equal(t, uint64(7), cfg.Simulation.Seed)
	assert.Equal(t, "csv", cfg.Results.Type)
	assert.Equal(t, "out/results.csv", cfg.Results.Path)

	// Unset keys keep their defaults.
	assert.Equal(t, 12, cfg.Simulation.PeriodsPerYear)
	assert.Equal(t, 3, cfg.Simulation.RetryLimit)
	assert.Equal(t, "roe", cfg.Policies.RatioName)
}

func TestLoad_ExpandsEnvVars(t *testing.T) {
	t.Setenv("PRISM_TEST_BUCKET", "results-bucket")
	path := writeConfig(t, `
archive:
  enabled: true
  type: s3
  s3:
    bucket: ${PRISM_TEST_BUCKET}
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "results-bucket", cfg.Archive.S3.Bucket)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	assert.Equal(t, 12, cfg.Simulation.PeriodsPerYear)
	assert.Equal(t, 1000, cfg.Simulation.Trials)
	assert.Equal(t, uint64(42), cfg.Simulation.Seed)
	assert.Equal(t, "sqlite", cfg.Results.Type)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"zero periods per year", func(c *Config) { c.Simulation.PeriodsPerYear = 0 }, core.ErrConfigInvalid},
		{"zero trials", func(c *Config) { c.Simulation.Trials = 0 }, core.ErrConfigInvalid},
		{"negative retry limit", func(c *Config) { c.Simulation.RetryLimit = -1 }, core.ErrConfigInvalid},
		{"bad results type", func(c *Config) { c.Results.Type = "postgres" }, core.ErrConfigInvalid},
		{"bad archive type", func(c *Config) { c.Archive.Type = "ftp" }, core.ErrConfigInvalid},
		{"empty ratio name", func(c *Config) { c.Policies.RatioName = "" }, core.ErrConfigMissing},
		{
			"s3 archive without bucket",
			func(c *Config) {
				c.Archive.Enabled = true
				c.Archive.Type = "s3"
			},
			core.ErrConfigMissing,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), tt.wantErr)
		})
	}

	t.Run("disabled s3 archive needs no bucket", func(t *testing.T) {
		cfg := Defaults()
		cfg.Archive.Type = "s3"
		assert.NoError(t, cfg.Validate())
	})
}
