package domain

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
)

// RawColumns are the columns every detection CSV must carry, whether it came
// from the FIRMS API or from an archive on disk.
var RawColumns = []string{"latitude", "longitude", "acq_date", "acq_time", "frp", "track"}

// ReadRawRows decodes a detection CSV into raw rows, addressing fields by
// header name so extra upstream columns (brightness, confidence, daynight,
// ...) are ignored. An empty reader yields an empty batch.
func ReadRawRows(r io.Reader) ([]RawRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, err
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}
	for _, required := range RawColumns {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("missing column %q", required)
		}
	}

	var rows []RawRow
	for {
		fields, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return rows, nil
			}
			return nil, err
		}
		pick := func(name string) string {
			i := col[name]
			if i >= len(fields) {
				return ""
			}
			return fields[i]
		}
		rows = append(rows, RawRow{
			Latitude:  pick("latitude"),
			Longitude: pick("longitude"),
			AcqDate:   pick("acq_date"),
			AcqTime:   pick("acq_time"),
			FRP:       pick("frp"),
			Track:     pick("track"),
		})
	}
}
