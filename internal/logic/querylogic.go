package logic

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/zeromicro/go-zero/core/logx"

	"cryptoagent/internal/svc"
	"cryptoagent/internal/types"
)

// ErrAnswerFailed is the only detail a client sees when answering fails.
var ErrAnswerFailed = errors.New("failed to generate an answer")

// ValidationError reports a query rejected before reaching the agent.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

type QueryLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewQueryLogic(ctx context.Context, svcCtx *svc.ServiceContext) *QueryLogic {
	return &QueryLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *QueryLogic) Query(req *types.QueryRequest) (*types.QueryResponse, error) {
	q := strings.TrimSpace(req.Q)
	bounds := l.svcCtx.Config.Query
	if n := utf8.RuneCountInString(q); n < bounds.MinLength || n > bounds.MaxLength {
		return nil, &ValidationError{
			Msg: fmt.Sprintf("query must be between %d and %d characters", bounds.MinLength, bounds.MaxLength),
		}
	}

	answer, err := l.svcCtx.Agent.AnswerQuery(l.ctx, q)
	if err != nil {
		l.Errorw("query failed", logx.Field("query", q), logx.Field("error", err.Error()))
		return nil, ErrAnswerFailed
	}
	return &types.QueryResponse{Query: q, Answer: answer}, nil
}
