package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/tephralabs/lavaflow/internal/domain"
)

// Status classifies the result of one product's ingest attempt.
type Status string

const (
	StatusMerged        Status = "merged"
	StatusEmpty         Status = "empty"
	StatusFetchFailed   Status = "fetch_failed"
	StatusArchiveFailed Status = "archive_failed"
)

// SourceOutcome is the structured per-product record of an ingest pass.
type SourceOutcome struct {
	Product        string `json:"product"`
	Satellite      string `json:"satellite"`
	Status         Status `json:"status"`
	Message        string `json:"message,omitempty"`
	RecordsInBatch int    `json:"records_in_batch"`
	RecordsDropped int    `json:"records_dropped"`
	RecordsTotal   int    `json:"records_total"`
}

// Log writes the outcome at a level matching its status.
func (o SourceOutcome) Log(logger *slog.Logger) {
	attrs := []any{
		"product", o.Product,
		"status", string(o.Status),
		"batch", o.RecordsInBatch,
		"dropped", o.RecordsDropped,
		"total", o.RecordsTotal,
	}
	switch o.Status {
	case StatusMerged:
		logger.Info("source merged", attrs...)
	case StatusEmpty:
		logger.Info("source returned no data", attrs...)
	default:
		logger.Error("source failed", append(attrs, "message", o.Message)...)
	}
}

// Ingest fetches and merges every configured product. Products run
// concurrently: their archives are disjoint, and one failing download never
// blocks its siblings. The returned outcomes follow the configured product
// order.
func (p *Pipeline) Ingest(ctx context.Context) []SourceOutcome {
	box := domain.BoundingBoxAround(p.cfg.ReferenceLat, p.cfg.ReferenceLon, p.cfg.RadiusM)
	// NRT products republish recent days; fetch a window ending today so
	// every cycle refreshes what upstream may have reprocessed.
	startDate := domain.Now().UTC().AddDate(0, 0, -(p.cfg.FetchDays - 1))

	outcomes := make([]SourceOutcome, len(p.cfg.Products))
	var wg sync.WaitGroup
	for i, product := range p.cfg.Products {
		wg.Add(1)
		go func(i int, product string) {
			defer wg.Done()
			outcomes[i] = p.ingestOne(ctx, product, box, startDate)
		}(i, product)
	}
	wg.Wait()

	for _, o := range outcomes {
		p.metrics.SourceFetches.WithLabelValues(o.Product, string(o.Status)).Inc()
		if o.Status == StatusMerged {
			p.metrics.RecordsMerged.WithLabelValues(o.Product).Add(float64(o.RecordsInBatch - o.RecordsDropped))
			p.metrics.RowsDropped.WithLabelValues(o.Product).Add(float64(o.RecordsDropped))
			p.metrics.ArchiveRecords.WithLabelValues(o.Product).Set(float64(o.RecordsTotal))
		}
	}
	return outcomes
}

// ingestOne runs the fetch-merge-save sequence for a single product. All
// failure paths leave the product's archive untouched.
func (p *Pipeline) ingestOne(ctx context.Context, product string, box domain.BoundingBox, startDate time.Time) SourceOutcome {
	outcome := SourceOutcome{
		Product:   product,
		Satellite: domain.SatelliteLabel(product),
	}

	fetchStart := time.Now()
	rows, err := p.source.FetchBatch(ctx, product, box, startDate, p.cfg.FetchDays)
	p.metrics.FetchDuration.WithLabelValues(product).Observe(time.Since(fetchStart).Seconds())
	if err != nil {
		outcome.Status = StatusFetchFailed
		outcome.Message = err.Error()
		return outcome
	}
	if len(rows) == 0 {
		outcome.Status = StatusEmpty
		return outcome
	}

	existing, err := p.store.Load(product)
	if err != nil {
		outcome.Status = StatusArchiveFailed
		outcome.Message = fmt.Sprintf("load archive: %v", err)
		return outcome
	}

	merged, summary := p.merger.Merge(product, rows, existing)
	outcome.RecordsInBatch = summary.RecordsInBatch
	outcome.RecordsDropped = summary.RecordsDropped
	outcome.RecordsTotal = summary.RecordsTotal

	if summary.RecordsInBatch == summary.RecordsDropped {
		// Nothing survived parsing; treat like an empty batch and keep the
		// archive as it was.
		outcome.Status = StatusEmpty
		outcome.Message = fmt.Sprintf("all %d rows failed to parse", summary.RecordsDropped)
		return outcome
	}

	if err := p.store.Save(product, merged); err != nil {
		outcome.Status = StatusArchiveFailed
		outcome.Message = fmt.Sprintf("save archive: %v", err)
		return outcome
	}

	outcome.Status = StatusMerged
	return outcome
}

// ArchiveUnion loads every configured product archive into one slice,
// ordered by product then archive order.
func (p *Pipeline) ArchiveUnion() ([]domain.DetectionRecord, error) {
	products := make([]string, len(p.cfg.Products))
	copy(products, p.cfg.Products)
	sort.Strings(products)

	var union []domain.DetectionRecord
	for _, product := range products {
		records, err := p.store.Load(product)
		if err != nil {
			return nil, err
		}
		union = append(union, records...)
	}
	return union, nil
}
