package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
)

// Record is one CSV row keyed by header, or the error reading it.
type Record struct {
	Line   int
	Fields map[string]string
	Err    error
}

type CSVReader struct {
	r io.Reader
}

func NewCSVReader(r io.Reader) *CSVReader {
	return &CSVReader{r: r}
}

// Stream reads the header row, then sends every following row until EOF or
// ctx is done. The channel is closed when reading stops.
func (cr *CSVReader) Stream(ctx context.Context) (<-chan Record, error) {
	csvReader := csv.NewReader(cr.r)
	csvReader.FieldsPerRecord = -1

	headers, err := csvReader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	out := make(chan Record)
	go func() {
		defer close(out)
		for line := 2; ; line++ {
			row, err := csvReader.Read()
			if errors.Is(err, io.EOF) {
				return
			}

			rec := Record{Line: line}
			switch {
			case err != nil:
				rec.Err = err
			case len(row) != len(headers):
				rec.Err = fmt.Errorf("line %d: %d fields, header has %d", line, len(row), len(headers))
			default:
				rec.Fields = make(map[string]string, len(headers))
				for i, h := range headers {
					rec.Fields[h] = row[i]
				}
			}

			select {
			case out <- rec:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}
