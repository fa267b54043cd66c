package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/commercepipe/commercepipe/pkg/etlerrors"
)

func TestDefaultsValidate(t *testing.T) {
	cfg := NewPipelineConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "data/raw", cfg.Paths.RawDir)
	assert.Equal(t, "ecommerce_orders", cfg.Sources["orders"])
	assert.Len(t, cfg.Sources, 10)
	assert.Equal(t, DefaultTopSpendersPercentile, cfg.Aggregation.TopSpendersPercentile)
	assert.Equal(t, []string{"csv", "json", "arrow"}, cfg.Output.Formats)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*PipelineConfig)
	}{
		{"empty raw dir", func(c *PipelineConfig) { c.Paths.RawDir = "" }},
		{"empty output dir", func(c *PipelineConfig) { c.Paths.OutputDir = "" }},
		{"no sources", func(c *PipelineConfig) { c.Sources = nil }},
		{"percentile above one", func(c *PipelineConfig) { c.Aggregation.TopSpendersPercentile = 1.5 }},
		{"negative percentile", func(c *PipelineConfig) { c.Aggregation.TopSpendersPercentile = -0.1 }},
		{"zero top spenders", func(c *PipelineConfig) { c.Aggregation.TopSpendersN = 0 }},
		{"zero min reviews", func(c *PipelineConfig) { c.Aggregation.MinReviewsPerProduct = 0 }},
		{"no formats", func(c *PipelineConfig) { c.Output.Formats = nil }},
		{"unknown format", func(c *PipelineConfig) { c.Output.Formats = []string{"parquet"} }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := NewPipelineConfig()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadPipelineConfigPartialOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pipeline.yaml")
	content := `
paths:
  raw_dir: /srv/etl/raw
aggregation:
  top_spenders_n: 7
output:
  formats: [csv]
  compression: gzip
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadPipelineConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "/srv/etl/raw", cfg.Paths.RawDir)
	assert.Equal(t, 7, cfg.Aggregation.TopSpendersN)
	assert.Equal(t, []string{"csv"}, cfg.Output.Formats)
	assert.Equal(t, "gzip", cfg.Output.Compression)

	// everything the file does not name keeps its default
	assert.Equal(t, "data/output", cfg.Paths.OutputDir)
	assert.Equal(t, DefaultRecurringMinOrders, cfg.Aggregation.RecurringMinOrders)
	assert.Equal(t, "ecommerce_reviews", cfg.Sources["reviews"])
}

func TestLoadSubstitutesEnvVars(t *testing.T) {
	t.Setenv("ETL_DATA_ROOT", "/mnt/data")

	path := filepath.Join(t.TempDir(), "pipeline.yaml")
	content := "paths:\n  raw_dir: ${ETL_DATA_ROOT}/raw\n  output_dir: ${ETL_DATA_ROOT}/out\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadPipelineConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "/mnt/data/raw", cfg.Paths.RawDir)
	assert.Equal(t, "/mnt/data/out", cfg.Paths.OutputDir)
}

func TestLoadMissingFile(t *testing.T) {
	err := Load(filepath.Join(t.TempDir(), "absent.yaml"), &PipelineConfig{})
	require.Error(t, err)
	assert.True(t, etlerrors.IsType(err, etlerrors.ErrorTypeConfig))
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("paths: [unclosed"), 0644))

	err := Load(path, &PipelineConfig{})
	require.Error(t, err)
	assert.True(t, etlerrors.IsType(err, etlerrors.ErrorTypeConfig))
}

func TestLoadPipelineConfigRejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pipeline.yaml")
	content := "aggregation:\n  top_spenders_percentile: 2.0\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	_, err := LoadPipelineConfig(path)
	require.Error(t, err)
	assert.True(t, etlerrors.IsType(err, etlerrors.ErrorTypeConfig))
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saved.yaml")
	cfg := NewPipelineConfig()
	cfg.Paths.RawDir = "custom/raw"
	require.NoError(t, Save(path, cfg))

	loaded, err := LoadPipelineConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "custom/raw", loaded.Paths.RawDir)
	assert.Equal(t, cfg.Aggregation, loaded.Aggregation)
}
