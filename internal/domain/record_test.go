package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDetectionRecord_Timestamp(t *testing.T) {
	rec := DetectionRecord{
		AcqDate: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		AcqTime: "1510",
	}
	assert.Equal(t, time.Date(2024, 1, 15, 15, 10, 0, 0, time.UTC), rec.Timestamp())
}

func TestDetectionRecord_Key(t *testing.T) {
	base := DetectionRecord{
		Product:   "VIIRS_SNPP_NRT",
		Latitude:  -0.38121,
		Longitude: -78.44254,
		AcqDate:   time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		AcqTime:   "0930",
	}

	t.Run("jitter below key precision collapses", func(t *testing.T) {
		jittered := base
		jittered.Latitude += 0.00004
		jittered.Longitude += 0.00004
		assert.Equal(t, base.Key(), jittered.Key())
	})

	t.Run("shift above key precision separates", func(t *testing.T) {
		moved := base
		moved.Latitude += 0.0002
		assert.NotEqual(t, base.Key(), moved.Key())
	})

	t.Run("different product separates", func(t *testing.T) {
		other := base
		other.Product = "MODIS_NRT"
		assert.NotEqual(t, base.Key(), other.Key())
	})

	t.Run("different time separates", func(t *testing.T) {
		other := base
		other.AcqTime = "0931"
		assert.NotEqual(t, base.Key(), other.Key())
	})
}

func TestSatelliteLabel(t *testing.T) {
	assert.Equal(t, "SNPP", SatelliteLabel("VIIRS_SNPP_NRT"))
	assert.Equal(t, "NOAA20", SatelliteLabel("VIIRS_NOAA20_NRT"))
	assert.Equal(t, "NOAA21", SatelliteLabel("VIIRS_NOAA21_NRT"))
	assert.Equal(t, "MODIS", SatelliteLabel("MODIS_NRT"))
	assert.Equal(t, "CUSTOM_NRT", SatelliteLabel("CUSTOM_NRT"))
}
