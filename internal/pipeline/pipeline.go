package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/ppiankov/leakprobe/internal/archive"
	"github.com/ppiankov/leakprobe/internal/cache"
	"github.com/ppiankov/leakprobe/internal/dataset"
	"github.com/ppiankov/leakprobe/internal/model"
	"github.com/ppiankov/leakprobe/internal/verbalize"
	"github.com/ppiankov/leakprobe/internal/worker"
)

// Pipeline loads a benchmark sample and audits every record
type Pipeline struct {
	provider  dataset.Provider
	checker   PresenceChecker
	verbalize *verbalize.Verbalizer
	config    *model.Config
	logger    *slog.Logger
}

// NewPipeline wires a pipeline from configuration
func NewPipeline(ctx context.Context, cfg *model.Config, provider dataset.Provider, logger *slog.Logger) (*Pipeline, error) {
	checker, err := NewChecker(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	return &Pipeline{
		provider:  provider,
		checker:   checker,
		verbalize: verbalize.NewVerbalizer(logger),
		config:    cfg,
		logger:    logger,
	}, nil
}

// RunResult holds the per-record results and their tally
type RunResult struct {
	Results []model.AuditResult
	Summary model.AuditSummary
}

// Run audits a sample of benchmark
func (p *Pipeline) Run(ctx context.Context, benchmark string) (*RunResult, error) {
	if _, err := verbalize.Lookup(benchmark); err != nil {
		return nil, err
	}

	records, err := p.provider.Load(ctx, benchmark, p.config.Dataset.Sample)
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}
	p.logger.Info("loaded records", "benchmark", benchmark, "count", len(records))

	runID := uuid.NewString()
	auditor := NewAuditor(p.verbalize, p.checker, runID, p.logger)
	processor := worker.NewBatchProcessor(auditor, p.config.Concurrency.Workers)

	results, err := processor.ProcessRecords(ctx, benchmark, records)
	if err != nil {
		return nil, fmt.Errorf("audit: %w", err)
	}

	return &RunResult{
		Results: results,
		Summary: model.Summarize(runID, benchmark, results),
	}, nil
}

// NewLimiter builds the per-host archive limiter with configured overrides
func NewLimiter(cfg model.ArchiveConfig) *worker.Limiter {
	limiter := worker.NewLimiter(cfg.RequestsPerSecond, cfg.Burst)
	for _, hr := range cfg.HostRates {
		if hr.Host == "" {
			continue
		}
		limiter.SetHostRate(hr.Host, hr.RequestsPerSecond, hr.Burst)
	}
	return limiter
}

// NewChecker builds the archive checker for the configured backend. The
// snapshot catalog is only fetched when the commoncrawl backend is selected.
func NewChecker(ctx context.Context, cfg *model.Config, logger *slog.Logger) (*archive.Checker, error) {
	opts := []archive.Option{
		archive.WithLimiter(NewLimiter(cfg.Archive)),
		archive.WithLogger(logger),
	}
	if cfg.Cache.Enabled {
		store := cache.NewLayeredCache(cfg.Cache.MemoryTTL, cfg.Cache.Dir, cfg.Cache.DiskTTL)
		opts = append(opts, archive.WithVerdictCache(cache.NewVerdictCache(store, 0)))
	}

	cumulative := archive.NewCumulativeIndex(cfg.HTTP, cfg.Archive, opts...)

	var snapshots *archive.SnapshotIndex
	if cfg.Archive.Backend == model.BackendCommonCrawl {
		tr, err := archive.ParseTimeRange(cfg.Archive.From, cfg.Archive.To)
		if err != nil {
			return nil, fmt.Errorf("archive time range: %w", err)
		}
		snapshots, err = archive.NewSnapshotIndex(ctx, cfg.HTTP, cfg.Archive, tr, opts...)
		if err != nil {
			return nil, err
		}
		logger.Info("snapshot index ready", "snapshots", len(snapshots.Snapshots()), "range", tr.String())
	}

	return archive.NewChecker(cumulative, snapshots, cfg.Archive.Backend, cfg.Archive.CheckTimeout)
}
