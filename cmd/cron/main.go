package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"cryptoagent/internal/cli"
	"cryptoagent/internal/config"
	"cryptoagent/internal/svc"
)

const shutdownTimeout = 10 * time.Second

var configFile = flag.String("f", "etc/cryptoagent.yaml", "the config file")

// batchRunner is the slice of pipeline.Runner the scheduler needs.
type batchRunner interface {
	RunAll(ctx context.Context) error
}

func main() {
	flag.Parse()

	cfg := config.MustLoad(*configFile)
	logx.MustSetup(cfg.Log)
	logx.DisableStat()
	cli.LogConfigSummary(cfg)

	sc := svc.MustNewServiceContext(*cfg)
	defer sc.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	done := make(chan struct{})
	go func() {
		defer close(done)
		schedule(ctx, sc.Runner, cfg.Pipeline.Interval, cfg.Pipeline.RunOnStart)
	}()

	logx.Infof("cron: pipeline scheduled every %s, press Ctrl+C to stop", cfg.Pipeline.Interval)
	<-ctx.Done()
	logx.Info("cron: shutdown signal received")

	select {
	case <-done:
		logx.Info("cron: stopped cleanly")
	case <-time.After(shutdownTimeout):
		logx.Error("cron: shutdown timeout exceeded, forcing exit")
	}
}

// schedule runs the batch every interval until ctx ends. A failed run is
// logged and the next tick tries again.
func schedule(ctx context.Context, r batchRunner, interval time.Duration, runOnStart bool) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	if runOnStart {
		runOnce(ctx, r)
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runOnce(ctx, r)
		}
	}
}

func runOnce(ctx context.Context, r batchRunner) {
	if ctx.Err() != nil {
		return
	}
	start := time.Now()
	if err := r.RunAll(ctx); err != nil {
		logx.WithContext(ctx).Errorw("cron: pipeline run failed",
			logx.Field("error", err.Error()),
			logx.Field("duration", time.Since(start).String()))
		return
	}
	logx.WithContext(ctx).Infow("cron: pipeline run completed",
		logx.Field("duration", time.Since(start).String()))
}
