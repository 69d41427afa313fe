// Package breakthrough extracts new-maximum ("breakthrough") events from the
// daily furthest-extent summary and derives the propagation speed of the
// flow front between successive events.
package breakthrough

import (
	"log/slog"
	"sort"

	"github.com/tephralabs/lavaflow/internal/domain"
)

// Mode selects how daily extents from different satellites are combined.
type Mode string

const (
	// Pooled treats all satellites as observers of one physical front:
	// their daily extents merge into a single chronological timeline.
	Pooled Mode = "pooled"
	// PerSource tracks an independent breakthrough sequence per satellite.
	PerSource Mode = "per-source"
)

// Valid reports whether m is a known tracking mode.
func (m Mode) Valid() bool {
	return m == Pooled || m == PerSource
}

type Tracker struct {
	logger *slog.Logger
}

func New(logger *slog.Logger) *Tracker {
	return &Tracker{logger: logger}
}

// Track extracts breakthrough events from a daily-extent history.
//
// In Pooled mode all entries form one timeline; days observed by several
// satellites are collapsed to the furthest extent seen that day, so the
// output is strictly increasing in both date and cumulative distance. In
// PerSource mode each satellite gets its own timeline and the invariants
// hold per satellite; events carry the satellite label and are returned
// grouped by satellite.
//
// An empty or missing history is not an error: it yields no events.
func (t *Tracker) Track(daily []domain.DailyExtent, mode Mode) []domain.BreakthroughEvent {
	if len(daily) == 0 {
		t.logger.Info("no propagation data available")
		return nil
	}

	if mode == PerSource {
		return t.trackPerSource(daily)
	}
	return extract(collapseByDate(daily), "")
}

func (t *Tracker) trackPerSource(daily []domain.DailyExtent) []domain.BreakthroughEvent {
	bySat := make(map[string][]domain.DailyExtent)
	sats := make([]string, 0)
	for _, d := range daily {
		if _, ok := bySat[d.Satellite]; !ok {
			sats = append(sats, d.Satellite)
		}
		bySat[d.Satellite] = append(bySat[d.Satellite], d)
	}
	sort.Strings(sats)

	var events []domain.BreakthroughEvent
	for _, sat := range sats {
		events = append(events, extract(sortByDate(bySat[sat]), sat)...)
	}
	return events
}

// collapseByDate reduces a pooled history to one entry per calendar date,
// keeping the furthest extent observed that day by any satellite.
func collapseByDate(daily []domain.DailyExtent) []domain.DailyExtent {
	byDate := make(map[string]domain.DailyExtent, len(daily))
	for _, d := range daily {
		key := d.Date.Format("2006-01-02")
		if best, ok := byDate[key]; !ok || d.MaxDistanceKM > best.MaxDistanceKM {
			byDate[key] = d
		}
	}

	collapsed := make([]domain.DailyExtent, 0, len(byDate))
	for _, d := range byDate {
		collapsed = append(collapsed, d)
	}
	return sortByDate(collapsed)
}

func sortByDate(daily []domain.DailyExtent) []domain.DailyExtent {
	sorted := make([]domain.DailyExtent, len(daily))
	copy(sorted, daily)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})
	return sorted
}

// extract walks a date-ordered timeline keeping a running maximum and emits
// an event for every entry that pushes the front past it. The first event
// has no predecessor, so its time delta and speed stay nil rather than zero.
func extract(timeline []domain.DailyExtent, satellite string) []domain.BreakthroughEvent {
	var events []domain.BreakthroughEvent
	cumulativeMax := 0.0

	for _, d := range timeline {
		if d.MaxDistanceKM <= cumulativeMax {
			continue
		}

		event := domain.BreakthroughEvent{
			Date:            d.Date,
			Satellite:       satellite,
			CumulativeMaxKM: d.MaxDistanceKM,
			PreviousMaxKM:   cumulativeMax,
			DistanceDiffM:   (d.MaxDistanceKM - cumulativeMax) * 1000,
		}
		if len(events) > 0 {
			hours := d.Date.Sub(events[len(events)-1].Date).Hours()
			speed := event.DistanceDiffM / hours
			event.TimeDiffHours = &hours
			event.SpeedMPerHour = &speed
		}

		events = append(events, event)
		cumulativeMax = d.MaxDistanceKM
	}
	return events
}
