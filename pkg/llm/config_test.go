package llm

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("load from valid file", func(t *testing.T) {
		content := `
provider: openai
base_url: "https://api.example.com/v1"
api_key: "test-api-key"
default_model: "fast"
timeout: "30s"
max_retries: 2
log_level: "debug"

models:
  fast:
    model_name: "gpt-4o-mini"
    temperature: 0.2
    max_tokens: 256
`
		configPath := filepath.Join(t.TempDir(), "llm.yaml")
		require.NoError(t, os.WriteFile(configPath, []byte(content), 0o644))

		cfg, err := LoadConfig(configPath)
		require.NoError(t, err)
		require.Equal(t, ProviderOpenAI, cfg.Provider)
		require.Equal(t, "https://api.example.com/v1", cfg.BaseURL)
		require.Equal(t, "test-api-key", cfg.APIKey)
		require.Equal(t, 30*time.Second, cfg.Timeout)
		require.Equal(t, 2, cfg.MaxRetries)

		id, model := cfg.ResolveModel("")
		require.Equal(t, "gpt-4o-mini", id)
		require.NotNil(t, model.Temperature)
		require.InDelta(t, 0.2, *model.Temperature, 1e-9)
		require.Equal(t, 256, *model.MaxTokens)
	})

	t.Run("file not found", func(t *testing.T) {
		_, err := LoadConfig("/nonexistent/path/llm.yaml")
		require.Error(t, err)
		require.Contains(t, err.Error(), "open llm config")
	})
}

func TestLoadConfigFromReader_Defaults(t *testing.T) {
	cfg, err := LoadConfigFromReader(strings.NewReader("{}"))
	require.NoError(t, err)
	require.Equal(t, ProviderOllama, cfg.Provider)
	require.Equal(t, defaultOllamaBaseURL, cfg.BaseURL)
	require.Equal(t, "llama3.2", cfg.DefaultModel)
	require.Equal(t, defaultTimeout, cfg.Timeout)
	require.Equal(t, 0, cfg.MaxRetries)
	require.Empty(t, cfg.APIKey)
}

func TestLoadConfigFromReader_EnvOverrides(t *testing.T) {
	t.Setenv(envProvider, "openai")
	t.Setenv(envAPIKey, "env-key")
	t.Setenv(envDefaultModel, "gpt-4o")
	t.Setenv(envTimeout, "45s")
	t.Setenv(envMaxRetries, "1")
	t.Setenv("CUSTOM_LLM_HOST", "https://llm.internal/v1")

	cfg, err := LoadConfigFromReader(strings.NewReader(`
base_url: "${CUSTOM_LLM_HOST}"
default_model: llama3.2
timeout: 10s
`))
	require.NoError(t, err)
	require.Equal(t, ProviderOpenAI, cfg.Provider)
	require.Equal(t, "https://llm.internal/v1", cfg.BaseURL)
	require.Equal(t, "env-key", cfg.APIKey)
	require.Equal(t, "gpt-4o", cfg.DefaultModel)
	require.Equal(t, 45*time.Second, cfg.Timeout)
	require.Equal(t, 1, cfg.MaxRetries)
}

func TestLoadConfigFromReader_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"openai without key", "provider: openai", "api_key is required"},
		{"unknown provider", "provider: bard", "unsupported provider"},
		{"bad timeout", "timeout: soon", "invalid timeout"},
		{"negative timeout", "timeout: -1s", "timeout must be positive"},
		{"negative retries", "max_retries: -1", "max_retries cannot be negative"},
		{"bad yaml", "provider: [", "unmarshal llm config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfigFromReader(strings.NewReader(tt.yaml))
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestResolveModel(t *testing.T) {
	cfg := &Config{
		DefaultModel: "llama3.2",
		Models: map[string]ModelConfig{
			"smart": {ModelName: "llama3.1:70b"},
			"blank": {},
		},
	}
	id, _ := cfg.ResolveModel("")
	require.Equal(t, "llama3.2", id)
	id, _ = cfg.ResolveModel("smart")
	require.Equal(t, "llama3.1:70b", id)
	id, _ = cfg.ResolveModel("blank")
	require.Equal(t, "blank", id)
	id, _ = cfg.ResolveModel("mistral")
	require.Equal(t, "mistral", id)
}

func TestConfigClone(t *testing.T) {
	cfg := &Config{Models: map[string]ModelConfig{"a": {ModelName: "x"}}}
	cp := cfg.Clone()
	cp.Models["a"] = ModelConfig{ModelName: "y"}
	require.Equal(t, "x", cfg.Models["a"].ModelName)
	require.Nil(t, (*Config)(nil).Clone())
}
