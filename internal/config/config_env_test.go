package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test_hydrateSections_withEnv verifies env expansion inside section files
// and in the main file via conf.UseEnv.
func Test_hydrateSections_withEnv(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "llm.yaml", `
provider: openai
base_url: ${TEST_LLM_BASE}
api_key: ${TEST_LLM_KEY}
timeout: 2s
`)
	writeFile(t, dir, "market.yaml", `
default: cg
providers:
  cg:
    type: coingecko
    base_url: ${TEST_CG_BASE}
    timeout: ${TEST_CG_TIMEOUT}
`)
	path := writeFile(t, dir, "cryptoagent.yaml", `
Name: cryptoagent
Port: 8000
DataPath: ${TEST_DATA_PATH}
LLM:
  File: llm.yaml
Market:
  File: market.yaml
`)

	t.Setenv("TEST_LLM_BASE", "https://llm.example/v1")
	t.Setenv("TEST_LLM_KEY", "test-key")
	t.Setenv("TEST_CG_BASE", "https://cg.example/api/v3")
	t.Setenv("TEST_CG_TIMEOUT", "7s")
	t.Setenv("TEST_DATA_PATH", filepath.Join(dir, "state"))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "state"), cfg.DataPath)
	assert.Equal(t, "https://llm.example/v1", cfg.LLM.Value.BaseURL)
	assert.Equal(t, "test-key", cfg.LLM.Value.APIKey)
	assert.Equal(t, 2*time.Second, cfg.LLM.Value.Timeout)

	p := cfg.Market.Value.Providers["cg"]
	require.NotNil(t, p)
	assert.Equal(t, "https://cg.example/api/v3", p.BaseURL)
	assert.Equal(t, 7*time.Second, p.Timeout)
}
