package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"cryptoagent/pkg/llm"
)

// DefaultPromptTemplate wraps retrieved facts and the question into one instruction.
const DefaultPromptTemplate = "Use the following data to answer the user's query.\n" +
	"Data : {{ .Context }}\n" +
	"User query : {{ .Query }}\n" +
	"Answer based on the above data."

// DefaultAnswerTimeout bounds a single language-model call.
const DefaultAnswerTimeout = 60 * time.Second

// Completer turns a prompt into an answer. Both llm backends implement it.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// GenerationError reports a failed or timed-out language-model call.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generate answer: %v", e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// PromptData is the template input.
type PromptData struct {
	Context string
	Query   string
}

// Composer builds the prompt and calls the language model once.
type Composer struct {
	completer Completer
	template  *llm.PromptTemplate
	timeout   time.Duration
}

// NewComposer wires a composer. A nil template uses DefaultPromptTemplate and
// a non-positive timeout uses DefaultAnswerTimeout.
func NewComposer(completer Completer, tmpl *llm.PromptTemplate, timeout time.Duration) (*Composer, error) {
	if completer == nil {
		return nil, errors.New("agent: completer is required")
	}
	if tmpl == nil {
		var err error
		tmpl, err = llm.NewPromptTemplateFromString("grounded", DefaultPromptTemplate, nil)
		if err != nil {
			return nil, err
		}
	}
	if timeout <= 0 {
		timeout = DefaultAnswerTimeout
	}
	return &Composer{completer: completer, template: tmpl, timeout: timeout}, nil
}

// Prompt returns what would be sent for (query, facts): the raw query when
// facts is empty, otherwise the rendered grounding template.
func (c *Composer) Prompt(query, facts string) (string, error) {
	if facts == "" {
		return query, nil
	}
	return c.template.Render(PromptData{Context: facts, Query: query})
}

// Compose sends the prompt and returns the model text unmodified.
func (c *Composer) Compose(ctx context.Context, query, facts string) (string, error) {
	prompt, err := c.Prompt(query, facts)
	if err != nil {
		return "", &GenerationError{Err: fmt.Errorf("render prompt: %w", err)}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	type result struct {
		answer string
		err    error
	}
	done := make(chan result, 1)
	go func() {
		answer, err := c.completer.Complete(ctx, prompt)
		done <- result{answer: answer, err: err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			return "", &GenerationError{Err: r.err}
		}
		return r.answer, nil
	case <-ctx.Done():
		logx.WithContext(ctx).Errorf("agent: language model call abandoned after %s: %v", c.timeout, ctx.Err())
		return "", &GenerationError{Err: ctx.Err()}
	}
}

