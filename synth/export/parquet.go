package export

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	parquet "github.com/parquet-go/parquet-go"

	"github.com/cwbudde/algo-ramix/synth/core"
)

// arrayRow is one matrix row in a Parquet file.
type arrayRow struct {
	Row    int64     `parquet:"row"`
	Values []float64 `parquet:"values,list"`
}

func parquetCompression(name string) (parquet.WriterOption, error) {
	switch strings.ToLower(name) {
	case "", "snappy":
		return parquet.Compression(&parquet.Snappy), nil
	case "zstd":
		return parquet.Compression(&parquet.Zstd), nil
	case "gzip", "gz":
		return parquet.Compression(&parquet.Gzip), nil
	default:
		return nil, fmt.Errorf("export: unknown parquet compression %q", name)
	}
}

// EncodeParquet writes m with one record per row.
func EncodeParquet(m core.Matrix, compression parquet.WriterOption) ([]byte, error) {
	rows := make([]arrayRow, m.Rows())
	for i := range rows {
		rows[i] = arrayRow{Row: int64(i), Values: append([]float64(nil), m.Row(i)...)}
	}

	var buf bytes.Buffer
	w := parquet.NewGenericWriter[arrayRow](&buf, compression)
	if len(rows) > 0 {
		if _, err := w.Write(rows); err != nil {
			return nil, fmt.Errorf("export: parquet write: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("export: parquet close: %w", err)
	}
	return buf.Bytes(), nil
}

// ReadParquet decodes a file written by EncodeParquet. cols is needed to
// shape files with zero rows.
func ReadParquet(data []byte, cols int) (core.Matrix, error) {
	gr := parquet.NewGenericReader[arrayRow](bytes.NewReader(data))
	defer gr.Close()

	var values [][]float64
	batch := make([]arrayRow, 256)
	for {
		n, err := gr.Read(batch)
		for _, r := range batch[:n] {
			if int(r.Row) != len(values) || len(r.Values) != cols {
				return core.Matrix{}, fmt.Errorf("export: parquet row %d has %d values, want %d", r.Row, len(r.Values), cols)
			}
			values = append(values, append([]float64(nil), r.Values...))
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return core.Matrix{}, fmt.Errorf("export: parquet read: %w", err)
		}
	}

	m, err := core.NewMatrix(len(values), cols)
	if err != nil {
		return core.Matrix{}, err
	}
	for i, v := range values {
		copy(m.Row(i), v)
	}
	return m, nil
}
