package domain

import (
	"fmt"
	"math"
	"time"
)

// Source identifies one FIRMS product and the satellite label used in
// derived datasets.
type Source struct {
	Product   string // FIRMS product identifier, e.g. "VIIRS_SNPP_NRT"
	Satellite string // short label used in outputs, e.g. "SNPP"
}

// DefaultSources lists the FIRMS products archived by the pipeline, in the
// order they are fetched.
var DefaultSources = []Source{
	{Product: "VIIRS_SNPP_NRT", Satellite: "SNPP"},
	{Product: "VIIRS_NOAA21_NRT", Satellite: "NOAA21"},
	{Product: "VIIRS_NOAA20_NRT", Satellite: "NOAA20"},
	{Product: "MODIS_NRT", Satellite: "MODIS"},
}

// SatelliteLabel returns the short label for a product, or the product
// itself when the product is not one of the known sources.
func SatelliteLabel(product string) string {
	for _, s := range DefaultSources {
		if s.Product == product {
			return s.Satellite
		}
	}
	return product
}

// DetectionRecord is a single satellite-reported thermal-anomaly observation.
// Immutable once created.
type DetectionRecord struct {
	Product   string    `json:"product"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	AcqDate   time.Time `json:"acq_date"` // calendar date, midnight UTC
	AcqTime   string    `json:"acq_time"` // zero-padded HHMM, UTC
	FRP       float64   `json:"frp"`      // fire radiative power, MW
	Track     float64   `json:"track"`    // sensor footprint width, km
}

// Timestamp combines the acquisition date and HHMM time into a full UTC time.
func (r DetectionRecord) Timestamp() time.Time {
	hour, min, ok := splitHHMM(r.AcqTime)
	if !ok {
		return r.AcqDate
	}
	return time.Date(r.AcqDate.Year(), r.AcqDate.Month(), r.AcqDate.Day(),
		hour, min, 0, 0, time.UTC)
}

// Key returns the dedup key identifying this physical detection across
// repeated downloads.
func (r DetectionRecord) Key() DedupKey {
	return DedupKey{
		Product: r.Product,
		LatE4:   roundE4(r.Latitude),
		LonE4:   roundE4(r.Longitude),
		Date:    r.AcqDate.Format(dateKeyLayout),
		Time:    r.AcqTime,
	}
}

const dateKeyLayout = "2006-01-02"

// DedupKey is the composite identity of a detection: product, coordinates
// rounded to 4 decimal degrees (~11 m at the equator), acquisition date, and
// acquisition time. The rounded integer fields avoid floating-point equality.
type DedupKey struct {
	Product string
	LatE4   int64 // latitude × 10⁴, rounded half away from zero
	LonE4   int64
	Date    string // "2006-01-02"
	Time    string // zero-padded HHMM
}

func (k DedupKey) String() string {
	return fmt.Sprintf("%s|%d|%d|%s|%s", k.Product, k.LatE4, k.LonE4, k.Date, k.Time)
}

func roundE4(v float64) int64 {
	return int64(math.Round(v * 1e4))
}

// FilteredDetection is a DetectionRecord tagged with its distance from the
// vent and the satellite label. Derived, recomputed on each tagging run.
type FilteredDetection struct {
	DetectionRecord
	Satellite  string  `json:"satellite"`
	DistanceKM float64 `json:"distance_km"`
}

// DailyExtent summarizes one (calendar date, satellite) group of filtered
// detections: furthest distance, peak FRP, and the coordinates of the first
// detection seen that day.
type DailyExtent struct {
	Date          time.Time `json:"date"`
	Satellite     string    `json:"satellite"`
	MaxDistanceKM float64   `json:"max_distance_km"`
	MaxFRP        float64   `json:"max_frp"`
	Latitude      float64   `json:"latitude"`
	Longitude     float64   `json:"longitude"`
}

// BreakthroughEvent marks a day on which the furthest-ever-observed distance
// from the vent increased. TimeDiffHours and SpeedMPerHour are nil on the
// first event of a sequence: there is no predecessor to measure against, and
// zero would read as infinite speed.
type BreakthroughEvent struct {
	Date            time.Time `json:"date"`
	Satellite       string    `json:"satellite,omitempty"` // empty in pooled mode
	CumulativeMaxKM float64   `json:"cumulative_max_distance_km"`
	PreviousMaxKM   float64   `json:"previous_max_km"`
	DistanceDiffM   float64   `json:"distance_diff_m"`
	TimeDiffHours   *float64  `json:"time_diff_hours,omitempty"`
	SpeedMPerHour   *float64  `json:"speed_m_per_hour,omitempty"`
}
