package breakthrough

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tephralabs/lavaflow/internal/domain"
)

func testTracker() *Tracker {
	return New(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func extent(day int, satellite string, distanceKM float64) domain.DailyExtent {
	return domain.DailyExtent{
		Date:          time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC),
		Satellite:     satellite,
		MaxDistanceKM: distanceKM,
	}
}

func TestTrack_EmptyHistory(t *testing.T) {
	assert.Nil(t, testTracker().Track(nil, Pooled))
	assert.Nil(t, testTracker().Track([]domain.DailyExtent{}, PerSource))
}

func TestTrack_FirstEventHasNoSpeed(t *testing.T) {
	events := testTracker().Track([]domain.DailyExtent{extent(1, "SNPP", 0.8)}, Pooled)
	require.Len(t, events, 1)

	assert.Equal(t, 0.8, events[0].CumulativeMaxKM)
	assert.Equal(t, 0.0, events[0].PreviousMaxKM)
	assert.Equal(t, 800.0, events[0].DistanceDiffM)
	assert.Nil(t, events[0].TimeDiffHours)
	assert.Nil(t, events[0].SpeedMPerHour)
}

func TestTrack_SpeedBetweenBreakthroughs(t *testing.T) {
	// 500 m gained over 10 days: 500 / 240 m per hour.
	daily := []domain.DailyExtent{
		extent(1, "SNPP", 1.0),
		extent(11, "SNPP", 1.5),
	}

	events := testTracker().Track(daily, Pooled)
	require.Len(t, events, 2)

	second := events[1]
	assert.Equal(t, 1.5, second.CumulativeMaxKM)
	assert.Equal(t, 1.0, second.PreviousMaxKM)
	assert.Equal(t, 500.0, second.DistanceDiffM)
	require.NotNil(t, second.TimeDiffHours)
	require.NotNil(t, second.SpeedMPerHour)
	assert.Equal(t, 240.0, *second.TimeDiffHours)
	assert.InDelta(t, 500.0/240.0, *second.SpeedMPerHour, 1e-9)
}

func TestExtract_SpeedFormula(t *testing.T) {
	// 1.0 km then 1.5 km ten hours later: 500 m / 10 h = 50 m/h.
	timeline := []domain.DailyExtent{
		{Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), MaxDistanceKM: 1.0},
		{Date: time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC), MaxDistanceKM: 1.5},
	}

	events := extract(timeline, "")
	require.Len(t, events, 2)
	require.NotNil(t, events[1].SpeedMPerHour)
	assert.Equal(t, 50.0, *events[1].SpeedMPerHour)
	assert.Equal(t, 10.0, *events[1].TimeDiffHours)
}

func TestTrack_SkipsNonExtendingDays(t *testing.T) {
	daily := []domain.DailyExtent{
		extent(1, "SNPP", 1.0),
		extent(2, "SNPP", 0.7), // front retreated; not an event
		extent(3, "SNPP", 1.0), // ties the max; not an event
		extent(4, "SNPP", 1.4),
	}

	events := testTracker().Track(daily, Pooled)
	require.Len(t, events, 2)

	assert.Equal(t, 1, events[0].Date.Day())
	assert.Equal(t, 4, events[1].Date.Day())
	// Time delta runs from the previous emitted event, not the previous row.
	require.NotNil(t, events[1].TimeDiffHours)
	assert.Equal(t, 72.0, *events[1].TimeDiffHours)
}

func TestTrack_Monotonic(t *testing.T) {
	daily := []domain.DailyExtent{
		extent(3, "SNPP", 2.1),
		extent(1, "NOAA20", 0.9),
		extent(5, "SNPP", 1.8),
		extent(2, "MODIS", 1.4),
		extent(9, "NOAA21", 3.3),
		extent(7, "SNPP", 3.3),
	}

	events := testTracker().Track(daily, Pooled)
	require.NotEmpty(t, events)

	for i := 1; i < len(events); i++ {
		assert.Greater(t, events[i].CumulativeMaxKM, events[i-1].CumulativeMaxKM)
		assert.True(t, events[i].Date.After(events[i-1].Date))
	}
}

func TestTrack_PooledCollapsesSameDay(t *testing.T) {
	// Two satellites report the same day; only the furthest counts, and no
	// zero-hour (infinite speed) pair may be emitted.
	daily := []domain.DailyExtent{
		extent(1, "SNPP", 1.0),
		extent(1, "NOAA20", 1.2),
		extent(2, "SNPP", 1.5),
	}

	events := testTracker().Track(daily, Pooled)
	require.Len(t, events, 2)
	assert.Equal(t, 1.2, events[0].CumulativeMaxKM)
	assert.Equal(t, 1.5, events[1].CumulativeMaxKM)
	require.NotNil(t, events[1].TimeDiffHours)
	assert.Equal(t, 24.0, *events[1].TimeDiffHours)
}

func TestTrack_PerSource(t *testing.T) {
	daily := []domain.DailyExtent{
		extent(1, "SNPP", 1.0),
		extent(2, "SNPP", 1.5),
		extent(1, "MODIS", 2.0), // MODIS alone already past SNPP's max
		extent(3, "MODIS", 2.2),
	}

	events := testTracker().Track(daily, PerSource)
	require.Len(t, events, 4)

	// Grouped by satellite, alphabetical.
	assert.Equal(t, "MODIS", events[0].Satellite)
	assert.Equal(t, "MODIS", events[1].Satellite)
	assert.Equal(t, "SNPP", events[2].Satellite)
	assert.Equal(t, "SNPP", events[3].Satellite)

	// Each timeline is independent: SNPP's 1.0 km day 1 is an event even
	// though MODIS had already reached 2.0 km.
	assert.Equal(t, 1.0, events[2].CumulativeMaxKM)
	assert.Nil(t, events[2].SpeedMPerHour)
	require.NotNil(t, events[3].SpeedMPerHour)
	assert.InDelta(t, 500.0/24.0, *events[3].SpeedMPerHour, 1e-9)

	require.NotNil(t, events[1].TimeDiffHours)
	assert.Equal(t, 48.0, *events[1].TimeDiffHours)
}

func TestMode_Valid(t *testing.T) {
	assert.True(t, Pooled.Valid())
	assert.True(t, PerSource.Valid())
	assert.False(t, Mode("both").Valid())
}
