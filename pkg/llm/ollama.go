package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const ollamaChatPath = "/api/chat"

// StatusError reports a non-2xx answer from an HTTP backend.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("llm: http %d", e.StatusCode)
	}
	return fmt.Sprintf("llm: http %d: %s", e.StatusCode, e.Body)
}

// OllamaClient talks to an Ollama server's native chat endpoint.
type OllamaClient struct {
	config       *Config
	http         *resty.Client
	logger       Logger
	retryHandler *RetryHandler
}

type ollamaChatRequest struct {
	Model    string         `json:"model"`
	Messages []Message      `json:"messages"`
	Stream   bool           `json:"stream"`
	Options  map[string]any `json:"options,omitempty"`
}

type ollamaChatResponse struct {
	Model           string    `json:"model"`
	CreatedAt       time.Time `json:"created_at"`
	Message         Message   `json:"message"`
	Done            bool      `json:"done"`
	DoneReason      string    `json:"done_reason"`
	PromptEvalCount int       `json:"prompt_eval_count"`
	EvalCount       int       `json:"eval_count"`
}

// NewOllamaClient constructs a client for cfg.BaseURL (default localhost:11434).
func NewOllamaClient(cfg *Config, opts ...ClientOption) (*OllamaClient, error) {
	clientCfg, err := prepareConfig(cfg, ProviderOllama)
	if err != nil {
		return nil, err
	}
	optState := resolveOptions(clientCfg, opts)

	var rc *resty.Client
	if optState.httpClient != nil {
		rc = resty.NewWithClient(optState.httpClient)
	} else {
		rc = resty.New()
	}
	rc.SetBaseURL(strings.TrimRight(clientCfg.BaseURL, "/")).
		SetTimeout(clientCfg.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if key := strings.TrimSpace(clientCfg.APIKey); key != "" {
		rc.SetAuthToken(key)
	}

	return &OllamaClient{
		config:       clientCfg,
		http:         rc,
		logger:       optState.logger,
		retryHandler: optState.retry,
	}, nil
}

// Chat performs one non-streaming chat call.
func (c *OllamaClient) Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	if req == nil {
		return nil, errors.New("llm: request cannot be nil")
	}
	if len(req.Messages) == 0 {
		return nil, errors.New("llm: request requires at least one message")
	}
	modelID, modelCfg := c.config.ResolveModel(req.Model)
	body := ollamaChatRequest{Model: modelID, Messages: req.Messages}
	opts := map[string]any{}
	if t := pickFloat(req.Temperature, modelCfg.Temperature); t != nil {
		opts["temperature"] = *t
	}
	if n := pickInt(req.MaxTokens, modelCfg.MaxTokens); n != nil {
		opts["num_predict"] = *n
	}
	if p := pickFloat(req.TopP, modelCfg.TopP); p != nil {
		opts["top_p"] = *p
	}
	if len(opts) > 0 {
		body.Options = opts
	}

	start := time.Now()
	c.logger.Debug(ctx, "llm chat request", Fields{
		"provider": ProviderOllama,
		"model":    modelID,
		"messages": len(req.Messages),
	})

	var out ollamaChatResponse
	err := c.retryHandler.Do(ctx, func() error {
		resp, callErr := c.http.R().
			SetContext(ctx).
			SetBody(body).
			SetResult(&out).
			Post(ollamaChatPath)
		if callErr != nil {
			return callErr
		}
		if !resp.IsSuccess() {
			return &StatusError{StatusCode: resp.StatusCode(), Body: truncate(strings.TrimSpace(resp.String()), 256)}
		}
		return nil
	})
	if err != nil {
		c.logger.Error(ctx, fmt.Errorf("chat completion failed: %w", err), Fields{"model": modelID})
		return nil, err
	}

	result := &ChatResponse{
		Model:   out.Model,
		Created: out.CreatedAt.Unix(),
		Choices: []Choice{{
			Message:      Message{Role: out.Message.Role, Content: out.Message.Content},
			FinishReason: out.DoneReason,
		}},
		Usage: Usage{
			PromptTokens:     out.PromptEvalCount,
			CompletionTokens: out.EvalCount,
			TotalTokens:      out.PromptEvalCount + out.EvalCount,
		},
	}
	c.logger.Info(ctx, "llm chat success", Fields{
		"provider":          ProviderOllama,
		"model":             modelID,
		"duration_ms":       time.Since(start).Milliseconds(),
		"prompt_tokens":     result.Usage.PromptTokens,
		"completion_tokens": result.Usage.CompletionTokens,
	})
	return result, nil
}

// Complete sends prompt as a single user message and returns the answer text.
func (c *OllamaClient) Complete(ctx context.Context, prompt string) (string, error) {
	return complete(ctx, c, prompt)
}

// GetConfig returns a copy of the client configuration.
func (c *OllamaClient) GetConfig() *Config {
	return c.config.Clone()
}

// Close releases idle connections.
func (c *OllamaClient) Close() error {
	c.http.GetClient().CloseIdleConnections()
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
