// Package descriptor implements the fixed-width binary codec for AKAZE-style
// MLDB descriptor matrices: a flat byte buffer holding row-major, 61-byte-wide
// rows with no header, the wire format the catalog store persists and the
// index loads back into matrices for matching.
package descriptor

import "fmt"

// RowWidth is the fixed width, in bytes, of a single descriptor row.
const RowWidth = 61

// ErrInvalidBlob is returned when a byte buffer's length is not a multiple
// of RowWidth and therefore cannot represent a whole number of descriptor rows.
var ErrInvalidBlob = fmt.Errorf("descriptor: invalid blob length, must be a multiple of %d", RowWidth)

// Matrix is a set of descriptor rows, each RowWidth bytes wide, in
// algorithm-defined order.
type Matrix [][]byte

// Rows reports the number of descriptor rows in the matrix.
func (m Matrix) Rows() int {
	return len(m)
}

// Encode concatenates a matrix's rows into a single flat buffer, row-major,
// with no header. The empty matrix encodes to an empty (non-nil) slice.
func Encode(m Matrix) []byte {
	out := make([]byte, 0, len(m)*RowWidth)
	for _, row := range m {
		out = append(out, row...)
	}
	return out
}

// Decode splits a flat buffer back into a Matrix. It fails with
// ErrInvalidBlob if the buffer length is not a multiple of RowWidth; an
// empty buffer decodes to an empty matrix without error.
func Decode(b []byte) (Matrix, error) {
	if len(b)%RowWidth != 0 {
		return nil, ErrInvalidBlob
	}
	if len(b) == 0 {
		return Matrix{}, nil
	}
	rows := len(b) / RowWidth
	m := make(Matrix, rows)
	for i := 0; i < rows; i++ {
		row := make([]byte, RowWidth)
		copy(row, b[i*RowWidth:(i+1)*RowWidth])
		m[i] = row
	}
	return m, nil
}
