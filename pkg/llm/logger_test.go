package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zeromicro/go-zero/core/logx"
)

func TestLoggerMethods(t *testing.T) {
	logger := NewLogger("debug")
	ctx := context.Background()
	require.NotPanics(t, func() {
		logger.Debug(ctx, "debug message", Fields{"key": "value"})
		logger.Info(ctx, "info message", nil)
		logger.Warn(ctx, "warning message", Fields{})
		logger.Error(ctx, errors.New("boom"), Fields{"model": "llama3.2"})
	})
}

func TestParseLevel(t *testing.T) {
	require.Equal(t, levelDebug, parseLevel("  DEBUG "))
	require.Equal(t, levelInfo, parseLevel("info"))
	require.Equal(t, levelInfo, parseLevel(""))
	require.Equal(t, levelInfo, parseLevel("verbose"))
	require.Equal(t, levelError, parseLevel("error"))
	require.Equal(t, parseLevel("severe"), parseLevel("fatal"))
}

func TestToLogFields(t *testing.T) {
	require.Nil(t, toLogFields(nil))
	fields := toLogFields(Fields{"b": 2, "a": "x"})
	require.Equal(t, []logx.LogField{logx.Field("a", "x"), logx.Field("b", 2)}, fields)
}
