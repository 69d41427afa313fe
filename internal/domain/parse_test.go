package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRow() RawRow {
	return RawRow{
		Latitude:  "-0.3812",
		Longitude: "-78.4425",
		AcqDate:   "2024-01-15",
		AcqTime:   "930",
		FRP:       "25.4",
		Track:     "0.39",
	}
}

func TestParseRow(t *testing.T) {
	t.Run("API row", func(t *testing.T) {
		rec, err := ParseRow("VIIRS_SNPP_NRT", validRow())
		require.NoError(t, err)

		assert.Equal(t, "VIIRS_SNPP_NRT", rec.Product)
		assert.Equal(t, -0.3812, rec.Latitude)
		assert.Equal(t, -78.4425, rec.Longitude)
		assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), rec.AcqDate)
		assert.Equal(t, "0930", rec.AcqTime)
		assert.Equal(t, 25.4, rec.FRP)
		assert.Equal(t, 0.39, rec.Track)
	})

	t.Run("archive day-first date", func(t *testing.T) {
		row := validRow()
		row.AcqDate = "15/01/2024"
		rec, err := ParseRow("MODIS_NRT", row)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), rec.AcqDate)
	})

	t.Run("whitespace tolerated", func(t *testing.T) {
		row := validRow()
		row.Latitude = " -0.3812 "
		rec, err := ParseRow("VIIRS_SNPP_NRT", row)
		require.NoError(t, err)
		assert.Equal(t, -0.3812, rec.Latitude)
	})
}

func TestParseRow_FieldErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*RawRow)
		field  string
	}{
		{"non-numeric latitude", func(r *RawRow) { r.Latitude = "north" }, "latitude"},
		{"empty longitude", func(r *RawRow) { r.Longitude = "" }, "longitude"},
		{"non-numeric frp", func(r *RawRow) { r.FRP = "n/a" }, "frp"},
		{"non-numeric track", func(r *RawRow) { r.Track = "-" }, "track"},
		{"garbage date", func(r *RawRow) { r.AcqDate = "Jan 15" }, "acq_date"},
		{"five digit time", func(r *RawRow) { r.AcqTime = "12345" }, "acq_time"},
		{"hour out of range", func(r *RawRow) { r.AcqTime = "2510" }, "acq_time"},
		{"minute out of range", func(r *RawRow) { r.AcqTime = "1275" }, "acq_time"},
		{"non-numeric time", func(r *RawRow) { r.AcqTime = "noon" }, "acq_time"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := validRow()
			tt.mutate(&row)

			_, err := ParseRow("VIIRS_SNPP_NRT", row)
			require.Error(t, err)

			var rowErr *RowError
			require.ErrorAs(t, err, &rowErr)
			assert.Equal(t, tt.field, rowErr.Field)
		})
	}
}

func TestNormalizeHHMM(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		expected string
		wantErr  bool
	}{
		{"four digits", "1510", "1510", false},
		{"three digits", "930", "0930", false},
		{"two digits", "45", "0045", false},
		{"one digit", "7", "0007", false},
		{"midnight", "0000", "0000", false},
		{"empty", "", "", true},
		{"too long", "00930", "", true},
		{"invalid hour", "2400", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeHHMM(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}
