package tagger

import (
	"math"
	"sort"

	"github.com/tephralabs/lavaflow/internal/domain"
)

// FRPSummary holds descriptive statistics of fire radiative power for one
// satellite over the filtered window.
type FRPSummary struct {
	Satellite string  `json:"satellite"`
	Count     int     `json:"count"`
	Min       float64 `json:"min"`
	Q1        float64 `json:"q1"`
	Median    float64 `json:"median"`
	Mean      float64 `json:"mean"`
	Q3        float64 `json:"q3"`
	P95       float64 `json:"p95"`
	Max       float64 `json:"max"`
}

// FRPSummaries computes per-satellite FRP statistics from a filtered dataset.
// Satellites are reported in alphabetical order.
func FRPSummaries(filtered []domain.FilteredDetection) []FRPSummary {
	bySat := make(map[string][]float64)
	for _, det := range filtered {
		bySat[det.Satellite] = append(bySat[det.Satellite], det.FRP)
	}

	sats := make([]string, 0, len(bySat))
	for sat := range bySat {
		sats = append(sats, sat)
	}
	sort.Strings(sats)

	summaries := make([]FRPSummary, 0, len(sats))
	for _, sat := range sats {
		values := bySat[sat]
		sort.Float64s(values)

		sum := 0.0
		for _, v := range values {
			sum += v
		}

		summaries = append(summaries, FRPSummary{
			Satellite: sat,
			Count:     len(values),
			Min:       values[0],
			Q1:        quantile(values, 0.25),
			Median:    quantile(values, 0.50),
			Mean:      sum / float64(len(values)),
			Q3:        quantile(values, 0.75),
			P95:       quantile(values, 0.95),
			Max:       values[len(values)-1],
		})
	}
	return summaries
}

// quantile returns the q-th quantile of a sorted sample using linear
// interpolation between closest ranks.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
