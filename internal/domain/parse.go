package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// RawRow is one wire-format detection row before numeric coercion. The FIRMS
// API and the archive CSVs both reduce to this shape.
type RawRow struct {
	Latitude  string
	Longitude string
	AcqDate   string
	AcqTime   string
	FRP       string
	Track     string
}

// RowError reports a row whose field could not be parsed. The row is dropped
// by the merge, but callers receive the error so drops can be counted and
// logged rather than silently swallowed.
type RowError struct {
	Field string
	Value string
	Err   error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("parse row field %s=%q: %v", e.Field, e.Value, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// Date layouts seen on the wire: the FIRMS API returns ISO dates, archives
// store day-first dates.
var acqDateLayouts = []string{"2006-01-02", "02/01/2006"}

// ParseRow coerces a raw row into a DetectionRecord for the given product.
// It returns a *RowError when any field fails to parse.
func ParseRow(product string, row RawRow) (DetectionRecord, error) {
	lat, err := parseFloatField("latitude", row.Latitude)
	if err != nil {
		return DetectionRecord{}, err
	}
	lon, err := parseFloatField("longitude", row.Longitude)
	if err != nil {
		return DetectionRecord{}, err
	}
	frp, err := parseFloatField("frp", row.FRP)
	if err != nil {
		return DetectionRecord{}, err
	}
	track, err := parseFloatField("track", row.Track)
	if err != nil {
		return DetectionRecord{}, err
	}

	date, err := parseAcqDate(row.AcqDate)
	if err != nil {
		return DetectionRecord{}, err
	}
	hhmm, err := NormalizeHHMM(row.AcqTime)
	if err != nil {
		return DetectionRecord{}, err
	}

	return DetectionRecord{
		Product:   product,
		Latitude:  lat,
		Longitude: lon,
		AcqDate:   date,
		AcqTime:   hhmm,
		FRP:       frp,
		Track:     track,
	}, nil
}

func parseFloatField(field, value string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, &RowError{Field: field, Value: value, Err: err}
	}
	return v, nil
}

func parseAcqDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range acqDateLayouts {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, &RowError{Field: "acq_date", Value: value, Err: fmt.Errorf("unrecognized date")}
}

// NormalizeHHMM zero-pads an acquisition time to 4 characters and validates
// it as a 24-hour HHMM clock string ("930" → "0930").
func NormalizeHHMM(value string) (string, error) {
	value = strings.TrimSpace(value)
	if len(value) == 0 || len(value) > 4 {
		return "", &RowError{Field: "acq_time", Value: value, Err: fmt.Errorf("bad length")}
	}
	padded := strings.Repeat("0", 4-len(value)) + value
	if _, _, ok := splitHHMM(padded); !ok {
		return "", &RowError{Field: "acq_time", Value: value, Err: fmt.Errorf("not a HHMM time")}
	}
	return padded, nil
}

func splitHHMM(hhmm string) (hour, min int, ok bool) {
	if len(hhmm) != 4 {
		return 0, 0, false
	}
	hour, errH := strconv.Atoi(hhmm[:2])
	min, errM := strconv.Atoi(hhmm[2:])
	if errH != nil || errM != nil || hour < 0 || hour > 23 || min < 0 || min > 59 {
		return 0, 0, false
	}
	return hour, min, true
}
