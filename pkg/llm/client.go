package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// LLMClient defines the supported client behaviours.
type LLMClient interface {
	Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error)
	Complete(ctx context.Context, prompt string) (string, error)
	GetConfig() *Config
	Close() error
}

// ErrEmptyCompletion is returned when the backend answers with no text.
var ErrEmptyCompletion = errors.New("llm: empty completion")

// Client talks to OpenAI-compatible chat completion endpoints via the OpenAI SDK.
type Client struct {
	config       *Config
	openaiClient *openai.Client
	logger       Logger
	retryHandler *RetryHandler
	httpClient   *http.Client
}

// ClientOption configures optional client behaviour.
type ClientOption func(*clientOptions)

type clientOptions struct {
	logger       Logger
	retry        *RetryHandler
	httpClient   *http.Client
	openaiClient *openai.Client
}

// WithLogger injects a custom logger implementation.
func WithLogger(logger Logger) ClientOption {
	return func(opts *clientOptions) {
		opts.logger = logger
	}
}

// WithRetryHandler injects a custom retry handler.
func WithRetryHandler(handler *RetryHandler) ClientOption {
	return func(opts *clientOptions) {
		opts.retry = handler
	}
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(opts *clientOptions) {
		opts.httpClient = client
	}
}

// WithOpenAIClient injects a pre-configured OpenAI client (primarily for testing).
func WithOpenAIClient(client *openai.Client) ClientOption {
	return func(opts *clientOptions) {
		opts.openaiClient = client
	}
}

// New builds the client for cfg.Provider.
func New(cfg *Config, opts ...ClientOption) (LLMClient, error) {
	if cfg == nil {
		return nil, errors.New("llm: config cannot be nil")
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case ProviderOpenAI:
		return NewClient(cfg, opts...)
	case ProviderOllama, "":
		return NewOllamaClient(cfg, opts...)
	default:
		return nil, fmt.Errorf("llm: unsupported provider %q", cfg.Provider)
	}
}

func resolveOptions(cfg *Config, opts []ClientOption) clientOptions {
	state := clientOptions{}
	for _, opt := range opts {
		opt(&state)
	}
	if state.logger == nil {
		state.logger = NewLogger(cfg.LogLevel)
	}
	if state.retry == nil {
		state.retry = NewRetryHandler(RetryConfig{MaxRetries: cfg.MaxRetries})
	}
	return state
}

func prepareConfig(cfg *Config, provider string) (*Config, error) {
	if cfg == nil {
		return nil, errors.New("llm: config cannot be nil")
	}
	clientCfg := cfg.Clone()
	if clientCfg.Provider == "" {
		clientCfg.Provider = provider
	}
	clientCfg.applyDefaults()
	if clientCfg.Timeout <= 0 {
		clientCfg.Timeout = defaultTimeout
	}
	if err := clientCfg.Validate(); err != nil {
		return nil, err
	}
	return clientCfg, nil
}

// NewClient constructs an OpenAI-compatible client. SDK-level retries are
// disabled; MaxRetries on the config is the only retry budget.
func NewClient(cfg *Config, opts ...ClientOption) (*Client, error) {
	clientCfg, err := prepareConfig(cfg, ProviderOpenAI)
	if err != nil {
		return nil, err
	}
	optState := resolveOptions(clientCfg, opts)

	oaClient := optState.openaiClient
	if oaClient == nil {
		oaOpts := []option.RequestOption{
			option.WithAPIKey(clientCfg.APIKey),
			option.WithBaseURL(clientCfg.BaseURL),
			option.WithMaxRetries(0),
			option.WithRequestTimeout(clientCfg.Timeout),
		}
		if optState.httpClient != nil {
			oaOpts = append(oaOpts, option.WithHTTPClient(optState.httpClient))
		}
		clientVal := openai.NewClient(oaOpts...)
		oaClient = &clientVal
	}

	return &Client{
		config:       clientCfg,
		openaiClient: oaClient,
		logger:       optState.logger,
		retryHandler: optState.retry,
		httpClient:   optState.httpClient,
	}, nil
}

// Chat performs a single synchronous completion request.
func (c *Client) Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	if req == nil {
		return nil, errors.New("llm: request cannot be nil")
	}
	params, modelID, err := c.buildChatParams(req)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	c.logger.Debug(ctx, "llm chat request", Fields{
		"provider": ProviderOpenAI,
		"model":    modelID,
		"messages": len(req.Messages),
	})

	var completion *openai.ChatCompletion
	err = c.retryHandler.Do(ctx, func() error {
		resp, callErr := c.openaiClient.Chat.Completions.New(ctx, params)
		if callErr != nil {
			return callErr
		}
		completion = resp
		return nil
	})
	if err != nil {
		c.logger.Error(ctx, fmt.Errorf("chat completion failed: %w", err), Fields{"model": modelID})
		return nil, err
	}

	result := convertCompletion(completion)
	c.logger.Info(ctx, "llm chat success", Fields{
		"provider":          ProviderOpenAI,
		"model":             modelID,
		"duration_ms":       time.Since(start).Milliseconds(),
		"prompt_tokens":     result.Usage.PromptTokens,
		"completion_tokens": result.Usage.CompletionTokens,
	})
	return result, nil
}

// Complete sends prompt as a single user message and returns the answer text.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	return complete(ctx, c, prompt)
}

// GetConfig returns an immutable copy of the client configuration.
func (c *Client) GetConfig() *Config {
	return c.config.Clone()
}

// Close releases resources associated with the client.
func (c *Client) Close() error {
	if c.httpClient != nil {
		c.httpClient.CloseIdleConnections()
	}
	return nil
}

func (c *Client) buildChatParams(req *ChatRequest) (openai.ChatCompletionNewParams, string, error) {
	if len(req.Messages) == 0 {
		return openai.ChatCompletionNewParams{}, "", errors.New("llm: request requires at least one message")
	}
	modelID, modelCfg := c.config.ResolveModel(req.Model)

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(modelID),
		Messages: buildMessageParams(req.Messages),
	}
	if t := pickFloat(req.Temperature, modelCfg.Temperature); t != nil {
		params.Temperature = openai.Float(*t)
	}
	if n := pickInt(req.MaxTokens, modelCfg.MaxTokens); n != nil {
		params.MaxCompletionTokens = openai.Int(int64(*n))
	}
	if p := pickFloat(req.TopP, modelCfg.TopP); p != nil {
		params.TopP = openai.Float(*p)
	}
	return params, modelID, nil
}

func buildMessageParams(msgs []Message) []openai.ChatCompletionMessageParamUnion {
	result := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs))
	for _, m := range msgs {
		switch strings.ToLower(m.Role) {
		case "system":
			result = append(result, openai.SystemMessage(m.Content))
		case "assistant":
			result = append(result, openai.AssistantMessage(m.Content))
		default:
			result = append(result, openai.UserMessage(m.Content))
		}
	}
	return result
}

func convertCompletion(resp *openai.ChatCompletion) *ChatResponse {
	if resp == nil {
		return &ChatResponse{}
	}
	result := &ChatResponse{
		ID:      resp.ID,
		Model:   resp.Model,
		Created: resp.Created,
		Usage: Usage{
			PromptTokens:     int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:      int(resp.Usage.TotalTokens),
		},
	}
	for _, choice := range resp.Choices {
		result.Choices = append(result.Choices, Choice{
			Index:        int(choice.Index),
			Message:      Message{Role: string(choice.Message.Role), Content: choice.Message.Content},
			FinishReason: choice.FinishReason,
		})
	}
	return result
}

func complete(ctx context.Context, c interface {
	Chat(context.Context, *ChatRequest) (*ChatResponse, error)
}, prompt string) (string, error) {
	resp, err := c.Chat(ctx, &ChatRequest{Messages: []Message{{Role: "user", Content: prompt}}})
	if err != nil {
		return "", err
	}
	text := resp.Content()
	if text == "" {
		return "", ErrEmptyCompletion
	}
	return text, nil
}

func pickFloat(req, model *float64) *float64 {
	if req != nil {
		return req
	}
	return model
}

func pickInt(req, model *int) *int {
	if req != nil {
		return req
	}
	return model
}
