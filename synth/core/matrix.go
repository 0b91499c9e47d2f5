package core

import "fmt"

// Matrix is a dense row-major float64 array. Rows may be zero, which is how
// an empty dataset is represented.
type Matrix struct {
	rows int
	cols int
	data []float64
}

// NewMatrix allocates a zeroed rows x cols matrix.
func NewMatrix(rows, cols int) (Matrix, error) {
	if rows < 0 || cols < 0 {
		return Matrix{}, fmt.Errorf("matrix dimensions must be >= 0: %dx%d", rows, cols)
	}
	return Matrix{
		rows: rows,
		cols: cols,
		data: make([]float64, rows*cols),
	}, nil
}

// MatrixFromData wraps data as a rows x cols matrix without copying.
func MatrixFromData(rows, cols int, data []float64) (Matrix, error) {
	if rows < 0 || cols < 0 {
		return Matrix{}, fmt.Errorf("matrix dimensions must be >= 0: %dx%d", rows, cols)
	}
	if len(data) != rows*cols {
		return Matrix{}, fmt.Errorf("matrix data length %d does not match %dx%d", len(data), rows, cols)
	}
	return Matrix{rows: rows, cols: cols, data: data}, nil
}

// Dims returns the number of rows and columns.
func (m Matrix) Dims() (rows, cols int) {
	return m.rows, m.cols
}

// Rows returns the row count.
func (m Matrix) Rows() int { return m.rows }

// Cols returns the column count.
func (m Matrix) Cols() int { return m.cols }

// Row returns a view of row i. Writes through the view modify the matrix.
func (m Matrix) Row(i int) []float64 {
	if i < 0 || i >= m.rows {
		panic(fmt.Sprintf("matrix row %d out of range [0,%d)", i, m.rows))
	}
	return m.data[i*m.cols : (i+1)*m.cols : (i+1)*m.cols]
}

// At returns element (i, j).
func (m Matrix) At(i, j int) float64 {
	return m.Row(i)[j]
}

// Data returns the backing row-major slice.
func (m Matrix) Data() []float64 {
	return m.data
}
