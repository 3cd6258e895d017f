//go:build integration

package llm

import (
	"context"
	"os"
	"testing"
	"time"

	"cryptoagent/pkg/confkit"
)

// newIntegrationClient targets a live backend described by LLM_* variables,
// defaulting to a local Ollama with llama3.2.
func newIntegrationClient(t *testing.T) LLMClient {
	t.Helper()
	confkit.LoadDotenvOnce()
	if os.Getenv("LLM_INTEGRATION") == "" {
		t.Skip("LLM_INTEGRATION not set; skipping integration test")
	}

	cfg := &Config{
		Provider:     os.Getenv(envProvider),
		BaseURL:      os.Getenv(envBaseURL),
		APIKey:       os.Getenv(envAPIKey),
		DefaultModel: os.Getenv(envDefaultModel),
		Timeout:      60 * time.Second,
		LogLevel:     "error",
	}
	client, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return client
}

func TestIntegration_Complete(t *testing.T) {
	client := newIntegrationClient(t)
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	answer, err := client.Complete(ctx, "Say a short hello.")
	if err != nil {
		t.Fatalf("Complete error: %v", err)
	}
	if answer == "" {
		t.Fatal("unexpected empty answer")
	}
}
