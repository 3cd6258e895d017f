package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cryptoagent/internal/config"
	"cryptoagent/pkg/artifact"
	"cryptoagent/pkg/confkit"
	"cryptoagent/pkg/llm"
)

func TestConfigSummaryLines(t *testing.T) {
	cfg := &config.Config{
		Env:       "dev",
		DataPath:  "data",
		Store:     config.StoreConf{Driver: "sqlite", Path: "data/coins.db"},
		TTL:       config.CacheTTL{Short: 10, Medium: 60, Long: 300},
		Raw:       artifact.Config{Type: "fs", Dir: "data/raw"},
		Processed: artifact.Config{Type: "s3", Bucket: "snapshots", Prefix: "processed"},
		LLM:       confkit.Section[llm.Config]{File: "etc/llm.yaml"},
	}
	cfg.Pipeline.Interval = time.Hour
	cfg.Pipeline.StageTimeout = 2 * time.Minute

	lines := ConfigSummaryLines(cfg)
	require.NotEmpty(t, lines)
	assert.Contains(t, lines, "Environment: dev")
	assert.Contains(t, lines, "Store: sqlite data/coins.db")
	assert.Contains(t, lines, "Redis: not configured")
	assert.Contains(t, lines, "Artifacts (raw/processed): data/raw / s3://snapshots/processed")
	assert.Contains(t, lines, "Pipeline: every 1h0m0s, stage timeout 2m0s")
	assert.Contains(t, lines, "LLM config: etc/llm.yaml")
	assert.Contains(t, lines, "Market config: not configured")
	assert.NotContains(t, lines, "Prompt template: ")
}

func TestConfigSummaryLines_Postgres(t *testing.T) {
	cfg := &config.Config{Store: config.StoreConf{Driver: "postgres", DSN: "postgres://x"}}
	assert.Contains(t, ConfigSummaryLines(cfg), "Store: postgres (configured)")
}

func TestConfigSummaryLines_Nil(t *testing.T) {
	assert.Equal(t, []string{"Configuration: <nil>"}, ConfigSummaryLines(nil))
}
