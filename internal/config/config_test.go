package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "cryptoagent.yaml", `
Name: cryptoagent
Port: 8000
DataPath: `+filepath.Join(dir, "data")+`
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "test", cfg.Env)
	assert.True(t, cfg.IsTestEnv())
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, filepath.Join(dir, "data", "coins.db"), cfg.Store.Path)
	assert.Equal(t, filepath.Join(dir, "data", "journal"), cfg.Pipeline.JournalDir)
	assert.Equal(t, filepath.Join(dir, "data", "raw"), cfg.Raw.Dir)
	assert.Equal(t, filepath.Join(dir, "data", "processed"), cfg.Processed.Dir)
	assert.Equal(t, "fs", cfg.Raw.Type)
	assert.Equal(t, time.Hour, cfg.Pipeline.Interval)
	assert.Equal(t, 2, cfg.Query.MinLength)
	assert.Equal(t, 100, cfg.Query.MaxLength)
	assert.Equal(t, 60*time.Second, cfg.Query.AnswerTimeout)
	assert.Equal(t, CacheTTL{Short: 10, Medium: 60, Long: 300}, cfg.TTL)
	assert.False(t, cfg.CacheEnabled())
	assert.Nil(t, cfg.LLM.Value)
	assert.Equal(t, dir, cfg.BaseDir())
	assert.Equal(t, path, cfg.MainPath())
}

func TestLoad_SectionsRelativeToMainFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "llm.yaml", "provider: ollama\ndefault_model: llama3.2\n")
	writeFile(t, dir, "market.yaml", "default: cg\nproviders:\n  cg:\n    type: coingecko\n")
	writeFile(t, dir, "intent.yaml", "top_limit: 7\n")
	path := writeFile(t, dir, "cryptoagent.yaml", `
Name: cryptoagent
Port: 8000
Env: prod
DataPath: data
LLM:
  File: llm.yaml
Market:
  File: market.yaml
Intent:
  File: intent.yaml
PromptFile: prompts/grounded.tmpl
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NotNil(t, cfg.LLM.Value)
	assert.Equal(t, "llama3.2", cfg.LLM.Value.DefaultModel)
	require.NotNil(t, cfg.Market.Value)
	assert.Equal(t, "cg", cfg.Market.Value.Default)
	require.NotNil(t, cfg.Intent.Value)
	assert.Equal(t, 7, cfg.Intent.Value.TopLimit)
	assert.Equal(t, filepath.Join(dir, "intent.yaml"), cfg.Intent.File)
	assert.Equal(t, filepath.Join(dir, "prompts", "grounded.tmpl"), cfg.PromptFile)
}

func TestLoad_MissingSectionFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "cryptoagent.yaml", "Name: x\nPort: 1\nIntent:\n  File: nope.yaml\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load intent config")
}

func validConfig() *Config {
	return &Config{
		Env:      "dev",
		DataPath: "./data",
		Store:    StoreConf{Driver: "sqlite"},
		TTL:      CacheTTL{Short: 10, Medium: 60, Long: 300},
		Pipeline: PipelineConf{Interval: time.Hour, StageTimeout: time.Minute},
		Query:    QueryConf{MinLength: 2, MaxLength: 100, AnswerTimeout: time.Minute},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"env", func(c *Config) { c.Env = "staging" }, "env must be one of"},
		{"data path", func(c *Config) { c.DataPath = " " }, "dataPath is required"},
		{"postgres dsn", func(c *Config) { c.Store.Driver = "postgres" }, "store.dsn is required"},
		{"driver", func(c *Config) { c.Store.Driver = "mysql" }, "unsupported store driver"},
		{"ttl", func(c *Config) { c.TTL.Short = 0 }, "ttl.short"},
		{"s3 bucket", func(c *Config) { c.Raw.Type = "s3" }, "bucket is required"},
		{"interval", func(c *Config) { c.Pipeline.Interval = 0 }, "pipeline interval"},
		{"query bounds", func(c *Config) { c.Query.MaxLength = 1 }, "query length bounds"},
		{"answer timeout", func(c *Config) { c.Query.AnswerTimeout = 0 }, "answerTimeout"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	t.Run("valid", func(t *testing.T) {
		cfg := validConfig()
		cfg.Env = ""
		require.NoError(t, cfg.Validate())
		assert.Equal(t, "test", cfg.Env)
	})
}
