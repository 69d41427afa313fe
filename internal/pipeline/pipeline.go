// Package pipeline orchestrates the ingest → analyze → track cycle.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/tephralabs/lavaflow/internal/archive"
	"github.com/tephralabs/lavaflow/internal/breakthrough"
	"github.com/tephralabs/lavaflow/internal/config"
	"github.com/tephralabs/lavaflow/internal/domain"
	"github.com/tephralabs/lavaflow/internal/ingest"
	"github.com/tephralabs/lavaflow/internal/observability"
	"github.com/tephralabs/lavaflow/internal/tagger"
)

// Source downloads one product's detection batch.
type Source interface {
	FetchBatch(ctx context.Context, product string, box domain.BoundingBox, startDate time.Time, dayCount int) ([]domain.RawRow, error)
}

// ArchiveStore loads and replaces per-product archives.
type ArchiveStore interface {
	Load(product string) ([]domain.DetectionRecord, error)
	Save(product string, records []domain.DetectionRecord) error
}

// OutputStore persists the derived datasets.
type OutputStore interface {
	WriteFiltered([]domain.FilteredDetection) error
	WriteDailyExtent([]domain.DailyExtent) error
	LoadDailyExtent() ([]domain.DailyExtent, error)
	WritePropagation([]domain.BreakthroughEvent) error
	WriteFRPSummary([]tagger.FRPSummary) error
}

// EventSink publishes breakthrough events to an external consumer.
type EventSink interface {
	PublishBreakthroughs(ctx context.Context, events []domain.BreakthroughEvent) error
}

// Pipeline wires the stages together. Construct with New.
type Pipeline struct {
	cfg     *config.Config
	source  Source
	store   ArchiveStore
	outputs OutputStore
	sink    EventSink // nil disables event publishing

	merger  *ingest.Merger
	tagger  *tagger.Tagger
	tracker *breakthrough.Tracker

	logger  *slog.Logger
	metrics *observability.Metrics
	ready   atomic.Bool
}

// New creates a Pipeline. sink may be nil when no event sink is configured.
func New(cfg *config.Config, source Source, store ArchiveStore, outputs OutputStore, sink EventSink, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		cfg:     cfg,
		source:  source,
		store:   store,
		outputs: outputs,
		sink:    sink,
		merger:  ingest.New(logger),
		tagger:  tagger.New(logger),
		tracker: breakthrough.New(logger),
		logger:  logger,
		metrics: metrics,
	}
}

// CheckReadiness returns nil once at least one full cycle has completed.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("no pipeline cycle has completed yet")
	}
	return nil
}

// RunCycle executes one complete ingest → analyze → track pass. Per-source
// ingest failures are reported in the outcome log and do not fail the cycle;
// an invalid analysis configuration does.
func (p *Pipeline) RunCycle(ctx context.Context) error {
	start := time.Now()
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	outcomes := p.Ingest(ctx)
	for _, o := range outcomes {
		o.Log(p.logger)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	analysis, err := p.Analyze(ctx)
	if err != nil {
		return err
	}

	track, err := p.Track(ctx)
	if err != nil {
		return err
	}

	p.metrics.CycleDuration.Observe(time.Since(start).Seconds())
	p.ready.Store(true)

	p.logger.Info("cycle complete",
		"sources", len(outcomes),
		"archive_records", analysis.ArchiveRecords,
		"filtered", analysis.Filtered,
		"daily_extents", analysis.DailyExtents,
		"breakthroughs", track.Events,
		"duration", time.Since(start),
	)
	return nil
}

// Watch repeats cycles on the configured interval until the context is
// cancelled. The first cycle starts immediately.
func (p *Pipeline) Watch(ctx context.Context) error {
	p.logger.Info("watch started", "interval", p.cfg.WatchInterval)

	for {
		if err := p.RunCycle(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			// Bad configuration will not fix itself between cycles.
			return err
		}
		if !sleepWithContext(ctx, p.cfg.WatchInterval) {
			p.logger.Info("watch stopping", "reason", ctx.Err())
			return nil
		}
	}
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// compile-time checks that the concrete archive types satisfy the stage
// interfaces.
var (
	_ ArchiveStore = (*archive.Store)(nil)
	_ OutputStore  = (*archive.OutputWriter)(nil)
)
