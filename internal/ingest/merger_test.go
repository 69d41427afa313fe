package ingest

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tephralabs/lavaflow/internal/domain"
)

const testProduct = "VIIRS_SNPP_NRT"

func testMerger() *Merger {
	return New(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func row(date, hhmm, lat, lon string) domain.RawRow {
	return domain.RawRow{
		Latitude:  lat,
		Longitude: lon,
		AcqDate:   date,
		AcqTime:   hhmm,
		FRP:       "15.0",
		Track:     "0.4",
	}
}

func keySet(records []domain.DetectionRecord) map[domain.DedupKey]struct{} {
	set := make(map[domain.DedupKey]struct{}, len(records))
	for _, rec := range records {
		set[rec.Key()] = struct{}{}
	}
	return set
}

func TestMerge_EmptyBatch(t *testing.T) {
	m := testMerger()

	existing, summary := m.Merge(testProduct, []domain.RawRow{row("2024-01-01", "0930", "0.001", "0")}, nil)
	require.Len(t, existing, 1)

	merged, summary2 := m.Merge(testProduct, nil, existing)
	assert.Equal(t, existing, merged)
	assert.Equal(t, 0, summary2.RecordsInBatch)
	assert.Equal(t, summary.RecordsTotal, summary2.RecordsTotal)
}

func TestMerge_Idempotent(t *testing.T) {
	m := testMerger()
	batch := []domain.RawRow{
		row("2024-01-01", "930", "0.0010", "0.0020"),
		row("2024-01-01", "1430", "0.0030", "0.0040"),
		row("2024-01-02", "215", "0.0050", "0.0060"),
	}

	once, s1 := m.Merge(testProduct, batch, nil)
	twice, s2 := m.Merge(testProduct, batch, once)

	assert.Equal(t, s1.RecordsTotal, s2.RecordsTotal)
	assert.Equal(t, keySet(once), keySet(twice))
	assert.Len(t, twice, 3)
}

func TestMerge_RefreshWindowReplacesWholeDay(t *testing.T) {
	m := testMerger()

	old := []domain.RawRow{
		row("2024-01-01", "0100", "0.1", "0.1"),
		row("2024-01-01", "0200", "0.2", "0.2"),
		row("2024-01-01", "0300", "0.3", "0.3"),
		row("2024-01-02", "0400", "0.4", "0.4"),
	}
	archive, _ := m.Merge(testProduct, old, nil)
	require.Len(t, archive, 4)

	// Reprocessed day 1 has fewer rows; the older day-1 rows must all go.
	fresh := []domain.RawRow{row("2024-01-01", "0500", "0.5", "0.5")}
	merged, summary := m.Merge(testProduct, fresh, archive)

	assert.Equal(t, 2, summary.RecordsTotal)
	require.Len(t, merged, 2)
	for _, rec := range merged {
		switch rec.AcqDate.Day() {
		case 1:
			assert.Equal(t, "0500", rec.AcqTime)
		case 2:
			assert.Equal(t, "0400", rec.AcqTime)
		default:
			t.Fatalf("unexpected date %v", rec.AcqDate)
		}
	}
}

func TestMerge_DeduplicatesCoordinateJitter(t *testing.T) {
	m := testMerger()

	batch := []domain.RawRow{
		row("2024-01-01", "0930", "-0.38121", "-78.44251"),
		row("2024-01-01", "0930", "-0.38123", "-78.44253"), // same detection, download jitter
	}

	merged, summary := m.Merge(testProduct, batch, nil)
	assert.Len(t, merged, 1)
	assert.Equal(t, 1, summary.RecordsTotal)
	assert.Equal(t, 2, summary.RecordsInBatch)
	// First-seen wins.
	assert.Equal(t, -0.38121, merged[0].Latitude)
}

func TestMerge_KeepsDistinctTimes(t *testing.T) {
	m := testMerger()

	batch := []domain.RawRow{
		row("2024-01-01", "0930", "-0.3812", "-78.4425"),
		row("2024-01-01", "1102", "-0.3812", "-78.4425"), // same spot, later overpass
	}

	merged, _ := m.Merge(testProduct, batch, nil)
	assert.Len(t, merged, 2)
}

func TestMerge_DropsUnparsableRows(t *testing.T) {
	m := testMerger()

	batch := []domain.RawRow{
		row("2024-01-01", "0930", "0.001", "0"),
		row("2024-01-01", "1030", "bogus", "0"),
		row("not-a-date", "1130", "0.002", "0"),
	}

	merged, summary := m.Merge(testProduct, batch, nil)
	assert.Len(t, merged, 1)
	assert.Equal(t, 3, summary.RecordsInBatch)
	assert.Equal(t, 2, summary.RecordsDropped)
	require.Len(t, summary.ParseFailures, 2)

	var rowErr *domain.RowError
	require.ErrorAs(t, summary.ParseFailures[0], &rowErr)
	assert.Equal(t, "latitude", rowErr.Field)
}

func TestMerge_AllRowsUnparsableLeavesArchiveUnchanged(t *testing.T) {
	m := testMerger()

	archive, _ := m.Merge(testProduct, []domain.RawRow{row("2024-01-01", "0930", "0.001", "0")}, nil)
	merged, summary := m.Merge(testProduct, []domain.RawRow{row("2024-01-01", "0930", "bad", "0")}, archive)

	assert.Equal(t, archive, merged)
	assert.Equal(t, 1, summary.RecordsDropped)
	assert.Equal(t, 1, summary.RecordsTotal)
}
