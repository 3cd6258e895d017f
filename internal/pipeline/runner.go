package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/zeromicro/go-zero/core/logx"

	"cryptoagent/pkg/journal"
)

// Stage names recorded in the journal.
const (
	StageFetch     = "fetch"
	StageNormalize = "normalize"
	StageLoad      = "load"
)

// Journal records finished stage runs.
type Journal interface {
	WriteCycle(rec *journal.CycleRecord) (string, error)
}

// Runner drives the batch stages. Each run gets its own run id, a log line
// and, when a journal is configured, a cycle record.
type Runner struct {
	fetcher    *Fetcher
	normalizer *Normalizer
	loader     *Loader
	journal    Journal
	timeout    time.Duration
}

// NewRunner wires the stages. journal may be nil; timeout <= 0 disables the
// per-stage deadline.
func NewRunner(f *Fetcher, n *Normalizer, l *Loader, j Journal, timeout time.Duration) *Runner {
	return &Runner{fetcher: f, normalizer: n, loader: l, journal: j, timeout: timeout}
}

// RunFetchCycle snapshots the provider into the raw store.
func (r *Runner) RunFetchCycle(ctx context.Context) (*FetchResult, error) {
	var res *FetchResult
	err := r.run(ctx, StageFetch, func(ctx context.Context, rec *journal.CycleRecord) error {
		var err error
		res, err = r.fetcher.Fetch(ctx)
		if res != nil {
			rec.Artifacts = res.Artifacts()
		}
		return err
	})
	return res, err
}

// RunNormalizeCycle cleans the latest raw market snapshot.
func (r *Runner) RunNormalizeCycle(ctx context.Context) (*NormalizeResult, error) {
	var res *NormalizeResult
	err := r.run(ctx, StageNormalize, func(ctx context.Context, rec *journal.CycleRecord) error {
		var err error
		res, err = r.normalizer.Normalize(ctx)
		if res != nil {
			rec.Artifacts = []string{res.Source, res.Output}
			rec.Records = len(res.Entries)
		}
		return err
	})
	return res, err
}

// RunLoadCycle loads the latest cleaned artifact into the query store.
func (r *Runner) RunLoadCycle(ctx context.Context) (*LoadResult, error) {
	return r.runLoad(ctx, func(ctx context.Context) (*LoadResult, error) {
		return r.loader.LoadLatest(ctx)
	})
}

// RunAll runs fetch, normalize and load in order, handing the cleaned entries
// straight to the loader. It stops at the first failing stage.
func (r *Runner) RunAll(ctx context.Context) error {
	if _, err := r.RunFetchCycle(ctx); err != nil {
		return err
	}
	normalized, err := r.RunNormalizeCycle(ctx)
	if err != nil {
		return err
	}
	_, err = r.runLoad(ctx, func(ctx context.Context) (*LoadResult, error) {
		return r.loader.Load(ctx, normalized.Output, normalized.Entries)
	})
	return err
}

func (r *Runner) runLoad(ctx context.Context, load func(context.Context) (*LoadResult, error)) (*LoadResult, error) {
	var res *LoadResult
	err := r.run(ctx, StageLoad, func(ctx context.Context, rec *journal.CycleRecord) error {
		var err error
		res, err = load(ctx)
		if res != nil {
			rec.Artifacts = []string{res.Source}
			rec.Records = res.Loaded
			rec.Skipped = len(res.Skipped)
			rec.SkippedIDs = res.SkippedIDs()
		}
		return err
	})
	return res, err
}

func (r *Runner) run(ctx context.Context, stage string, fn func(context.Context, *journal.CycleRecord) error) error {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	runID := uuid.NewString()
	logger := logx.WithContext(ctx).WithFields(logx.Field("run_id", runID), logx.Field("stage", stage))
	start := time.Now()
	rec := &journal.CycleRecord{RunID: runID, Stage: stage, Timestamp: start.UTC()}

	err := fn(ctx, rec)

	rec.DurationMs = time.Since(start).Milliseconds()
	rec.Success = err == nil
	if err != nil {
		rec.ErrorMessage = err.Error()
		logger.Errorf("pipeline: %s failed after %dms: %v", stage, rec.DurationMs, err)
	} else {
		logger.Infof("pipeline: %s ok artifacts=%v records=%d skipped=%d took=%dms",
			stage, rec.Artifacts, rec.Records, rec.Skipped, rec.DurationMs)
	}
	if r.journal != nil {
		if _, jerr := r.journal.WriteCycle(rec); jerr != nil {
			logger.Errorf("pipeline: journal %s: %v", stage, jerr)
		}
	}
	return err
}
