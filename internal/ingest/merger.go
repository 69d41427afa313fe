// Package ingest merges freshly downloaded detection batches into per-product
// archives without duplicating detections across repeated downloads.
package ingest

import (
	"log/slog"
	"time"

	"github.com/tephralabs/lavaflow/internal/domain"
)

// Summary reports what one merge did.
type Summary struct {
	Product        string    `json:"product"`
	RecordsInBatch int       `json:"records_in_batch"` // raw rows received, including dropped ones
	RecordsDropped int       `json:"records_dropped"`  // rows that failed numeric coercion
	RecordsTotal   int       `json:"records_total"`    // archive size after the merge
	MergedAt       time.Time `json:"merged_at"`

	// ParseFailures holds one *domain.RowError per dropped row so callers can
	// aggregate or surface them. Dropping a row is not a merge failure.
	ParseFailures []error `json:"-"`
}

// Merger folds new detection batches into existing archives. The zero-value
// Merger is not usable; construct with New.
type Merger struct {
	logger *slog.Logger
}

func New(logger *slog.Logger) *Merger {
	return &Merger{logger: logger}
}

// Merge combines a raw batch with the existing archive for one product and
// returns the new archive snapshot. The input archive is never mutated.
//
// Every acquisition date present in the batch is refreshed: previously
// archived records for those dates are discarded before the batch is
// appended, so an upstream reprocessing of a day fully supersedes older
// partial data. Afterwards the combined set is deduplicated by
// [domain.DedupKey], keeping the first occurrence. Merging the same batch
// twice therefore yields the same record set.
//
// An empty batch returns the existing archive unchanged.
func (m *Merger) Merge(product string, rows []domain.RawRow, existing []domain.DetectionRecord) ([]domain.DetectionRecord, Summary) {
	summary := Summary{
		Product:        product,
		RecordsInBatch: len(rows),
		RecordsTotal:   len(existing),
		MergedAt:       domain.Now(),
	}

	batch := make([]domain.DetectionRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := domain.ParseRow(product, row)
		if err != nil {
			summary.RecordsDropped++
			summary.ParseFailures = append(summary.ParseFailures, err)
			m.logger.Warn("dropping unparsable row", "product", product, "error", err)
			continue
		}
		batch = append(batch, rec)
	}

	if len(batch) == 0 {
		return existing, summary
	}

	refresh := make(map[string]struct{}, len(batch))
	for _, rec := range batch {
		refresh[rec.AcqDate.Format("2006-01-02")] = struct{}{}
	}

	merged := make([]domain.DetectionRecord, 0, len(existing)+len(batch))
	for _, rec := range existing {
		if _, ok := refresh[rec.AcqDate.Format("2006-01-02")]; ok {
			continue
		}
		merged = append(merged, rec)
	}
	merged = append(merged, batch...)
	merged = dedupe(merged)

	summary.RecordsTotal = len(merged)
	return merged, summary
}

// dedupe keeps the first record for each dedup key, preserving order.
func dedupe(records []domain.DetectionRecord) []domain.DetectionRecord {
	seen := make(map[domain.DedupKey]struct{}, len(records))
	out := records[:0:0]
	for _, rec := range records {
		key := rec.Key()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, rec)
	}
	return out
}
