package llm

import (
	"context"
	"sort"
	"strings"

	"github.com/zeromicro/go-zero/core/logx"
)

// Fields represents structured logging fields.
type Fields map[string]interface{}

// Logger wraps logging behaviour used by the clients.
type Logger interface {
	Debug(ctx context.Context, msg string, fields Fields)
	Info(ctx context.Context, msg string, fields Fields)
	Warn(ctx context.Context, msg string, fields Fields)
	Error(ctx context.Context, err error, fields Fields)
}

const (
	levelDebug = iota
	levelInfo
	levelError
)

// logxLogger forwards to go-zero's logx, dropping entries below its own
// threshold. The process-wide logx level still applies on top.
type logxLogger struct {
	threshold int
}

// NewLogger returns a Logger backed by go-zero's logx.
func NewLogger(level string) Logger {
	return &logxLogger{threshold: parseLevel(level)}
}

func (l *logxLogger) Debug(ctx context.Context, msg string, fields Fields) {
	if l.threshold <= levelDebug {
		logx.WithContext(ctx).Debugw(msg, toLogFields(fields)...)
	}
}

func (l *logxLogger) Info(ctx context.Context, msg string, fields Fields) {
	if l.threshold <= levelInfo {
		logx.WithContext(ctx).Infow(msg, toLogFields(fields)...)
	}
}

func (l *logxLogger) Warn(ctx context.Context, msg string, fields Fields) {
	if l.threshold <= levelInfo {
		logx.WithContext(ctx).Sloww(msg, toLogFields(fields)...)
	}
}

func (l *logxLogger) Error(ctx context.Context, err error, fields Fields) {
	logx.WithContext(ctx).Errorw(err.Error(), toLogFields(fields)...)
}

func parseLevel(level string) int {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return levelDebug
	case "error", "severe", "fatal":
		return levelError
	default:
		return levelInfo
	}
}

func toLogFields(fields Fields) []logx.LogField {
	if len(fields) == 0 {
		return nil
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]logx.LogField, 0, len(keys))
	for _, k := range keys {
		out = append(out, logx.Field(k, fields[k]))
	}
	return out
}
