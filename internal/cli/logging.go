package cli

import (
	"fmt"
	"strings"

	"github.com/zeromicro/go-zero/core/logx"

	"cryptoagent/internal/config"
	"cryptoagent/pkg/artifact"
	"cryptoagent/pkg/confkit"
)

// ConfigSummaryLines returns human readable lines describing the loaded app config.
func ConfigSummaryLines(cfg *config.Config) []string {
	if cfg == nil {
		return []string{"Configuration: <nil>"}
	}

	lines := []string{
		fmt.Sprintf("Environment: %s", cfg.Env),
		fmt.Sprintf("Data path: %s", cfg.DataPath),
		storeLine(cfg.Store),
		fmt.Sprintf("Redis: %s", presence(cfg.CacheEnabled())),
		fmt.Sprintf("TTL (short/medium/long): %ds / %ds / %ds", cfg.TTL.Short, cfg.TTL.Medium, cfg.TTL.Long),
		fmt.Sprintf("Artifacts (raw/processed): %s / %s", artifactLine(cfg.Raw), artifactLine(cfg.Processed)),
		fmt.Sprintf("Pipeline: every %s, stage timeout %s", cfg.Pipeline.Interval, cfg.Pipeline.StageTimeout),
		sectionLine("LLM config", cfg.LLM),
		sectionLine("Market config", cfg.Market),
		sectionLine("Intent config", cfg.Intent),
	}
	if cfg.PromptFile != "" {
		lines = append(lines, fmt.Sprintf("Prompt template: %s", cfg.PromptFile))
	}

	return lines
}

// LogConfigSummary emits the configuration summary using logx.
func LogConfigSummary(cfg *config.Config) {
	lines := ConfigSummaryLines(cfg)
	if len(lines) == 0 {
		return
	}
	logx.Info("configuration summary")
	for _, line := range lines {
		logx.Infof("config • %s", line)
	}
}

func presence(ok bool) string {
	if ok {
		return "configured"
	}
	return "not configured"
}

func storeLine(s config.StoreConf) string {
	if strings.EqualFold(s.Driver, "postgres") {
		return fmt.Sprintf("Store: postgres (%s)", presence(s.DSN != ""))
	}
	return fmt.Sprintf("Store: sqlite %s", s.Path)
}

func artifactLine(a artifact.Config) string {
	if strings.EqualFold(a.Type, "s3") {
		return fmt.Sprintf("s3://%s/%s", a.Bucket, strings.TrimPrefix(a.Prefix, "/"))
	}
	return a.Dir
}

func sectionLine[T any](name string, section confkit.Section[T]) string {
	switch {
	case strings.TrimSpace(section.File) != "":
		return fmt.Sprintf("%s: %s", name, section.File)
	case section.Value != nil:
		return fmt.Sprintf("%s: inline", name)
	default:
		return fmt.Sprintf("%s: not configured", name)
	}
}
