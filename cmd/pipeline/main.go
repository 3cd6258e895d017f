package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/zeromicro/go-zero/core/logx"

	"cryptoagent/internal/config"
	"cryptoagent/internal/svc"
)

var (
	configFlag string
	rootCmd    = &cobra.Command{
		Use:          "pipeline",
		Short:        "Run market-data batch stages by hand",
		SilenceUsage: true,
	}
)

func main() {
	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "f", "etc/cryptoagent.yaml", "the config file")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "fetch",
		Short: "Capture trending and market snapshots into the raw store",
		RunE: withService(func(ctx context.Context, sc *svc.ServiceContext) error {
			res, err := sc.Runner.RunFetchCycle(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "fetched %s and %s\n", res.Trending, res.MarketData)
			return nil
		}),
	})
	rootCmd.AddCommand(&cobra.Command{
		Use:   "normalize",
		Short: "Clean the latest raw market snapshot",
		RunE: withService(func(ctx context.Context, sc *svc.ServiceContext) error {
			res, err := sc.Runner.RunNormalizeCycle(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "normalized %s -> %s (%d records)\n", res.Source, res.Output, len(res.Entries))
			return nil
		}),
	})
	rootCmd.AddCommand(&cobra.Command{
		Use:   "load",
		Short: "Replace the query store with the latest processed snapshot",
		RunE: withService(func(ctx context.Context, sc *svc.ServiceContext) error {
			res, err := sc.Runner.RunLoadCycle(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "loaded %d records from %s, skipped %d\n", res.Loaded, res.Source, len(res.Skipped))
			return nil
		}),
	})
	rootCmd.AddCommand(&cobra.Command{
		Use:   "run",
		Short: "Fetch, normalize and load in one go",
		RunE: withService(func(ctx context.Context, sc *svc.ServiceContext) error {
			if err := sc.Runner.RunAll(ctx); err != nil {
				return err
			}
			fmt.Fprintln(os.Stdout, "pipeline completed")
			return nil
		}),
	})

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func withService(fn func(context.Context, *svc.ServiceContext) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load(configFlag)
		if err != nil {
			return err
		}
		logx.MustSetup(cfg.Log)
		logx.DisableStat()

		sc, err := svc.NewServiceContext(*cfg)
		if err != nil {
			return err
		}
		defer sc.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return fn(ctx, sc)
	}
}
