// Package tagger derives the filtered, distance-tagged view of the archived
// detections and the per-day furthest-extent summary consumed by the
// propagation tracker and the visualization layer.
package tagger

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/tephralabs/lavaflow/internal/domain"
)

// Params are the resolved analysis settings for one tagging run. Distance is
// meaningless without a valid reference point, so Params are validated up
// front and a bad value fails the whole run.
type Params struct {
	ReferenceLat float64
	ReferenceLon float64
	MaxTrack     float64 // keep detections with track <= MaxTrack
	MinFRP       float64 // keep detections with frp >= MinFRP
	Start        time.Time
	End          time.Time
}

// Validate checks the reference point and analysis window.
func (p Params) Validate() error {
	if p.ReferenceLat < -90 || p.ReferenceLat > 90 {
		return fmt.Errorf("tagger params: reference latitude %v out of range", p.ReferenceLat)
	}
	if p.ReferenceLon < -180 || p.ReferenceLon > 180 {
		return fmt.Errorf("tagger params: reference longitude %v out of range", p.ReferenceLon)
	}
	if p.Start.IsZero() || p.End.IsZero() {
		return fmt.Errorf("tagger params: analysis window is required")
	}
	if p.End.Before(p.Start) {
		return fmt.Errorf("tagger params: window end %v precedes start %v", p.End, p.Start)
	}
	if p.MaxTrack <= 0 {
		return fmt.Errorf("tagger params: max track must be positive, got %v", p.MaxTrack)
	}
	if p.MinFRP < 0 {
		return fmt.Errorf("tagger params: min frp must not be negative, got %v", p.MinFRP)
	}
	return nil
}

type Tagger struct {
	logger *slog.Logger
}

func New(logger *slog.Logger) *Tagger {
	return &Tagger{logger: logger}
}

// TagAndFilter computes the vent distance for every archived detection,
// applies the quality and window filters, and aggregates the survivors into
// one DailyExtent per (calendar date, satellite).
//
// The filtered output is sorted by acquisition timestamp; representative
// coordinates in each DailyExtent come from the earliest detection of that
// day. Empty inputs or an empty filter result are valid and return empty
// slices.
func (t *Tagger) TagAndFilter(records []domain.DetectionRecord, p Params) ([]domain.FilteredDetection, []domain.DailyExtent, error) {
	if err := p.Validate(); err != nil {
		return nil, nil, err
	}

	filtered := make([]domain.FilteredDetection, 0, len(records))
	for _, rec := range records {
		if rec.Track > p.MaxTrack || rec.FRP < p.MinFRP {
			continue
		}
		ts := rec.Timestamp()
		if ts.Before(p.Start) || ts.After(p.End) {
			continue
		}
		filtered = append(filtered, domain.FilteredDetection{
			DetectionRecord: rec,
			Satellite:       domain.SatelliteLabel(rec.Product),
			DistanceKM:      domain.Haversine(p.ReferenceLat, p.ReferenceLon, rec.Latitude, rec.Longitude),
		})
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Timestamp().Before(filtered[j].Timestamp())
	})

	daily := summarizeDaily(filtered)

	t.logger.Debug("tagged archive union",
		"records", len(records),
		"filtered", len(filtered),
		"daily_extents", len(daily),
	)
	return filtered, daily, nil
}

// summarizeDaily groups timestamp-sorted detections by (date, satellite).
func summarizeDaily(filtered []domain.FilteredDetection) []domain.DailyExtent {
	type groupKey struct {
		date      string
		satellite string
	}

	groups := make(map[groupKey]*domain.DailyExtent)
	order := make([]groupKey, 0)

	for _, det := range filtered {
		day := det.AcqDate
		key := groupKey{date: day.Format("2006-01-02"), satellite: det.Satellite}

		g, ok := groups[key]
		if !ok {
			groups[key] = &domain.DailyExtent{
				Date:          day,
				Satellite:     det.Satellite,
				MaxDistanceKM: det.DistanceKM,
				MaxFRP:        det.FRP,
				Latitude:      det.Latitude,
				Longitude:     det.Longitude,
			}
			order = append(order, key)
			continue
		}
		if det.DistanceKM > g.MaxDistanceKM {
			g.MaxDistanceKM = det.DistanceKM
		}
		if det.FRP > g.MaxFRP {
			g.MaxFRP = det.FRP
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		if order[i].date != order[j].date {
			return order[i].date < order[j].date
		}
		return order[i].satellite < order[j].satellite
	})

	daily := make([]domain.DailyExtent, 0, len(order))
	for _, key := range order {
		daily = append(daily, *groups[key])
	}
	return daily
}
