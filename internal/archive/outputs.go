package archive

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/tephralabs/lavaflow/internal/domain"
	"github.com/tephralabs/lavaflow/internal/tagger"
)

// Output dataset file names, consumed by the visualization layer.
const (
	FilteredFile    = "filtered_detections.csv"
	DailyExtentFile = "daily_extent.csv"
	PropagationFile = "propagation.csv"
	FRPSummaryFile  = "frp_summary.csv"
)

const outputDateLayout = "2006-01-02"

// OutputWriter persists the derived datasets under one directory, using the
// same snapshot-and-rename discipline as the archives.
type OutputWriter struct {
	dir string
}

func NewOutputWriter(dir string) *OutputWriter {
	return &OutputWriter{dir: dir}
}

func (w *OutputWriter) path(name string) string {
	return filepath.Join(w.dir, name)
}

// WriteFiltered persists the distance-tagged filtered dataset.
func (w *OutputWriter) WriteFiltered(dets []domain.FilteredDetection) error {
	return w.writeCSV(FilteredFile,
		[]string{"satellite", "latitude", "longitude", "acq_date", "acq_time", "frp", "track", "distance_km"},
		len(dets), func(i int) []string {
			d := dets[i]
			return []string{
				d.Satellite,
				formatFloat(d.Latitude),
				formatFloat(d.Longitude),
				d.AcqDate.Format(outputDateLayout),
				d.AcqTime,
				formatFloat(d.FRP),
				formatFloat(d.Track),
				strconv.FormatFloat(d.DistanceKM, 'f', 6, 64),
			}
		})
}

// WriteDailyExtent persists the per-day furthest-extent summary.
func (w *OutputWriter) WriteDailyExtent(daily []domain.DailyExtent) error {
	return w.writeCSV(DailyExtentFile,
		[]string{"date", "satellite", "max_distance_km", "max_frp", "latitude", "longitude"},
		len(daily), func(i int) []string {
			d := daily[i]
			return []string{
				d.Date.Format(outputDateLayout),
				d.Satellite,
				strconv.FormatFloat(d.MaxDistanceKM, 'f', 6, 64),
				formatFloat(d.MaxFRP),
				formatFloat(d.Latitude),
				formatFloat(d.Longitude),
			}
		})
}

// LoadDailyExtent reads a previously written daily-extent summary. A missing
// file means no propagation data is available yet and yields an empty result.
func (w *OutputWriter) LoadDailyExtent() ([]domain.DailyExtent, error) {
	f, err := os.Open(w.path(DailyExtentFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open daily extent: %w", err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read daily extent: %w", err)
	}
	if len(rows) <= 1 {
		return nil, nil
	}

	daily := make([]domain.DailyExtent, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) < 6 {
			return nil, fmt.Errorf("daily extent row has %d columns, want 6", len(row))
		}
		date, err := time.ParseInLocation(outputDateLayout, row[0], time.UTC)
		if err != nil {
			return nil, fmt.Errorf("parse daily extent date %q: %w", row[0], err)
		}
		dist, err := strconv.ParseFloat(row[2], 64)
		if err != nil {
			return nil, fmt.Errorf("parse daily extent distance %q: %w", row[2], err)
		}
		frp, err := strconv.ParseFloat(row[3], 64)
		if err != nil {
			return nil, fmt.Errorf("parse daily extent frp %q: %w", row[3], err)
		}
		lat, err := strconv.ParseFloat(row[4], 64)
		if err != nil {
			return nil, fmt.Errorf("parse daily extent latitude %q: %w", row[4], err)
		}
		lon, err := strconv.ParseFloat(row[5], 64)
		if err != nil {
			return nil, fmt.Errorf("parse daily extent longitude %q: %w", row[5], err)
		}
		daily = append(daily, domain.DailyExtent{
			Date:          date,
			Satellite:     row[1],
			MaxDistanceKM: dist,
			MaxFRP:        frp,
			Latitude:      lat,
			Longitude:     lon,
		})
	}
	return daily, nil
}

// WritePropagation persists the breakthrough-event sequence. The first event
// of a timeline has empty time and speed cells, not zeros.
func (w *OutputWriter) WritePropagation(events []domain.BreakthroughEvent) error {
	return w.writeCSV(PropagationFile,
		[]string{"date", "satellite", "cumulative_max_distance_km", "previous_max_km", "distance_diff_m", "time_diff_hours", "speed_m_per_hour"},
		len(events), func(i int) []string {
			e := events[i]
			return []string{
				e.Date.Format(outputDateLayout),
				e.Satellite,
				strconv.FormatFloat(e.CumulativeMaxKM, 'f', 6, 64),
				strconv.FormatFloat(e.PreviousMaxKM, 'f', 6, 64),
				strconv.FormatFloat(e.DistanceDiffM, 'f', 1, 64),
				formatOptional(e.TimeDiffHours),
				formatOptional(e.SpeedMPerHour),
			}
		})
}

// WriteFRPSummary persists per-satellite FRP statistics.
func (w *OutputWriter) WriteFRPSummary(summaries []tagger.FRPSummary) error {
	return w.writeCSV(FRPSummaryFile,
		[]string{"satellite", "count", "min", "q1", "median", "mean", "q3", "p95", "max"},
		len(summaries), func(i int) []string {
			s := summaries[i]
			return []string{
				s.Satellite,
				strconv.Itoa(s.Count),
				formatStat(s.Min),
				formatStat(s.Q1),
				formatStat(s.Median),
				formatStat(s.Mean),
				formatStat(s.Q3),
				formatStat(s.P95),
				formatStat(s.Max),
			}
		})
}

func (w *OutputWriter) writeCSV(name string, header []string, n int, row func(int) []string) error {
	err := writeAtomic(w.path(name), func(out io.Writer) error {
		cw := csv.NewWriter(out)
		if err := cw.Write(header); err != nil {
			return err
		}
		for i := 0; i < n; i++ {
			if err := cw.Write(row(i)); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	})
	if err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 3, 64)
}

func formatStat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
