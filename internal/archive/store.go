// Package archive persists per-product detection archives and the derived
// datasets as CSV files. Every write builds a complete snapshot in a
// temporary file and renames it into place, so a failure mid-write never
// leaves a truncated dataset behind.
package archive

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/tephralabs/lavaflow/internal/domain"
)

// archiveHeader is the wire layout of a per-product archive, one row per
// detection. Dates are day-first, times zero-padded HHMM.
var archiveHeader = []string{"latitude", "longitude", "acq_date", "acq_time", "frp", "track"}

const archiveDateLayout = "02/01/2006"

// Store reads and writes per-product archives under a single directory.
// Concurrent Save calls for different products are safe; the caller must
// serialize writes to the same product.
type Store struct {
	dir    string
	logger *slog.Logger
}

func NewStore(dir string, logger *slog.Logger) *Store {
	return &Store{dir: dir, logger: logger}
}

// Path returns the archive file for a product, e.g. historical_MODIS_NRT.csv.
func (s *Store) Path(product string) string {
	return filepath.Join(s.dir, "historical_"+product+".csv")
}

// Load reads a product's archive. A missing file is an empty archive, not an
// error. Rows that no longer parse are skipped with a warning so one corrupt
// line cannot take the whole product offline.
func (s *Store) Load(product string) ([]domain.DetectionRecord, error) {
	f, err := os.Open(s.Path(product))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open archive for %s: %w", product, err)
	}
	defer f.Close()

	rows, err := domain.ReadRawRows(f)
	if err != nil {
		return nil, fmt.Errorf("read archive for %s: %w", product, err)
	}

	records := make([]domain.DetectionRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := domain.ParseRow(product, row)
		if err != nil {
			s.logger.Warn("skipping corrupt archive row", "product", product, "error", err)
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// Save replaces a product's archive with a new snapshot.
func (s *Store) Save(product string, records []domain.DetectionRecord) error {
	err := writeAtomic(s.Path(product), func(w io.Writer) error {
		cw := csv.NewWriter(w)
		if err := cw.Write(archiveHeader); err != nil {
			return err
		}
		for _, rec := range records {
			row := []string{
				formatFloat(rec.Latitude),
				formatFloat(rec.Longitude),
				rec.AcqDate.Format(archiveDateLayout),
				rec.AcqTime,
				formatFloat(rec.FRP),
				formatFloat(rec.Track),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	})
	if err != nil {
		return fmt.Errorf("save archive for %s: %w", product, err)
	}
	return nil
}

// writeAtomic writes through a temp file in the target directory and renames
// it over the destination once the contents are synced.
func writeAtomic(path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-")
	if err != nil {
		return err
	}
	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	if err := write(tmp); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
