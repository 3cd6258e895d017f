package agent

import (
	"context"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"cryptoagent/pkg/intent"
)

// Resolver classifies a query and builds its grounding context.
type Resolver interface {
	Resolve(ctx context.Context, query string) (*intent.Resolution, error)
}

// Answer is the full outcome of one question.
type Answer struct {
	Query   string
	Answer  string
	Intent  intent.Intent
	Context string
}

// Agent answers free-text questions: resolve, then compose.
type Agent struct {
	resolver Resolver
	composer *Composer
}

func New(resolver Resolver, composer *Composer) *Agent {
	return &Agent{resolver: resolver, composer: composer}
}

// AnswerQuery returns the model's answer to query.
func (a *Agent) AnswerQuery(ctx context.Context, query string) (string, error) {
	ans, err := a.Answer(ctx, query)
	if err != nil {
		return "", err
	}
	return ans.Answer, nil
}

// Answer is AnswerQuery with the resolved intent and context attached. A
// store failure during resolution degrades to an ungrounded answer.
func (a *Agent) Answer(ctx context.Context, query string) (*Answer, error) {
	start := time.Now()
	out := &Answer{Query: query, Intent: intent.Other}

	res, err := a.resolver.Resolve(ctx, query)
	if err != nil {
		logx.WithContext(ctx).Errorf("agent: resolve %q: %v; answering without data", query, err)
	} else {
		out.Intent = res.Intent
		out.Context = res.Context
	}

	answer, err := a.composer.Compose(ctx, query, out.Context)
	if err != nil {
		logx.WithContext(ctx).WithFields(
			logx.Field("intent", out.Intent),
			logx.Field("duration_ms", time.Since(start).Milliseconds()),
		).Errorf("agent: %v", err)
		return nil, err
	}
	out.Answer = answer

	logx.WithContext(ctx).WithFields(
		logx.Field("intent", out.Intent),
		logx.Field("grounded", out.Context != ""),
		logx.Field("duration_ms", time.Since(start).Milliseconds()),
	).Infof("agent: answered query")
	return out, nil
}
