package pipeline

import (
	"context"
	"fmt"

	"github.com/tephralabs/lavaflow/internal/breakthrough"
	"github.com/tephralabs/lavaflow/internal/tagger"
)

// AnalysisSummary reports what one analysis pass produced.
type AnalysisSummary struct {
	ArchiveRecords int `json:"archive_records"`
	Filtered       int `json:"filtered"`
	DailyExtents   int `json:"daily_extents"`
}

// TrackSummary reports what one tracking pass produced.
type TrackSummary struct {
	Events int `json:"events"`
}

// Analyze tags and filters the union of all product archives and writes the
// filtered, daily extent, and FRP summary datasets. It reads only from disk,
// so it works on whatever the last successful ingest left behind.
func (p *Pipeline) Analyze(_ context.Context) (AnalysisSummary, error) {
	var summary AnalysisSummary

	records, err := p.ArchiveUnion()
	if err != nil {
		return summary, fmt.Errorf("load archives: %w", err)
	}
	summary.ArchiveRecords = len(records)

	params := tagger.Params{
		ReferenceLat: p.cfg.ReferenceLat,
		ReferenceLon: p.cfg.ReferenceLon,
		MaxTrack:     p.cfg.MaxTrack,
		MinFRP:       p.cfg.MinFRP,
		Start:        p.cfg.WindowStart,
		End:          p.cfg.WindowEnd,
	}
	filtered, daily, err := p.tagger.TagAndFilter(records, params)
	if err != nil {
		return summary, err
	}
	summary.Filtered = len(filtered)
	summary.DailyExtents = len(daily)
	p.metrics.FilteredDetections.Set(float64(len(filtered)))

	if err := p.outputs.WriteFiltered(filtered); err != nil {
		return summary, fmt.Errorf("write filtered detections: %w", err)
	}
	if err := p.outputs.WriteDailyExtent(daily); err != nil {
		return summary, fmt.Errorf("write daily extents: %w", err)
	}
	if err := p.outputs.WriteFRPSummary(tagger.FRPSummaries(filtered)); err != nil {
		return summary, fmt.Errorf("write frp summary: %w", err)
	}
	return summary, nil
}

// Track derives breakthrough events from the persisted daily extents and
// writes the propagation dataset. When an event sink is configured, new
// events are also published there; a publish failure is logged but does not
// fail the pass, since the dataset on disk is already current.
func (p *Pipeline) Track(ctx context.Context) (TrackSummary, error) {
	var summary TrackSummary

	daily, err := p.outputs.LoadDailyExtent()
	if err != nil {
		return summary, fmt.Errorf("load daily extents: %w", err)
	}

	events := p.tracker.Track(daily, breakthrough.Mode(p.cfg.TrackerMode))
	summary.Events = len(events)
	p.metrics.Breakthroughs.Set(float64(len(events)))

	if err := p.outputs.WritePropagation(events); err != nil {
		return summary, fmt.Errorf("write propagation: %w", err)
	}

	if p.sink != nil && len(events) > 0 {
		if err := p.sink.PublishBreakthroughs(ctx, events); err != nil {
			p.logger.Error("publishing breakthrough events failed", "error", err)
		}
	}
	return summary, nil
}
