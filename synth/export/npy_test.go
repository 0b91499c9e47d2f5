package export

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-ramix/synth/core"
)

func TestEncodeNPYHeader(t *testing.T) {
	m, err := core.MatrixFromData(2, 3, []float64{1, 2, 3, 4, 5, 6})
	require.NoError(t, err)

	data := EncodeNPY(m)
	require.Equal(t, []byte("\x93NUMPY"), data[:6])
	require.Equal(t, []byte{1, 0}, data[6:8])

	headerLen := int(binary.LittleEndian.Uint16(data[8:10]))
	require.Zero(t, (10+headerLen)%npyAlign, "header must end on a 64 byte boundary")
	header := string(data[10 : 10+headerLen])
	require.Contains(t, header, "'descr': '<f8'")
	require.Contains(t, header, "'fortran_order': False")
	require.Contains(t, header, "'shape': (2, 3)")
	require.Equal(t, byte('\n'), header[len(header)-1])

	require.Len(t, data, 10+headerLen+6*8)
	first := math.Float64frombits(binary.LittleEndian.Uint64(data[10+headerLen:]))
	require.Equal(t, 1.0, first)
}

func TestNPYRoundTrip(t *testing.T) {
	tests := []struct {
		name       string
		rows, cols int
	}{
		{"matrix", 3, 5},
		{"single", 1, 1},
		{"no rows", 0, 1800},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := core.NewMatrix(tt.rows, tt.cols)
			require.NoError(t, err)
			for i := range m.Data() {
				m.Data()[i] = float64(i)*0.25 - 1
			}

			got, err := ReadNPY(bytes.NewReader(EncodeNPY(m)))
			require.NoError(t, err)
			r, c := got.Dims()
			require.Equal(t, tt.rows, r)
			require.Equal(t, tt.cols, c)
			require.Equal(t, m.Data(), got.Data())
		})
	}
}

func TestReadNPYRejects(t *testing.T) {
	_, err := ReadNPY(bytes.NewReader([]byte("\x93NUMPX\x01\x00\x00\x00")))
	require.True(t, errors.Is(err, errNPYFormat))

	m, _ := core.NewMatrix(1, 2)
	data := EncodeNPY(m)
	data = bytes.Replace(data, []byte("<f8"), []byte("<f4"), 1)
	_, err = ReadNPY(bytes.NewReader(data))
	require.True(t, errors.Is(err, errNPYFormat))

	_, err = ReadNPY(bytes.NewReader(EncodeNPY(m)[:20]))
	require.Error(t, err)
}

// npyWithShape builds a v1.0 '<f8' document whose header declares shape,
// followed by payload.
func npyWithShape(shape string, payload []byte) []byte {
	header := "{'descr': '<f8', 'fortran_order': False, 'shape': " + shape + ", }\n"
	var buf bytes.Buffer
	buf.Write(npyMagic)
	buf.Write([]byte{1, 0})
	_ = binary.Write(&buf, binary.LittleEndian, uint16(len(header)))
	buf.WriteString(header)
	buf.Write(payload)
	return buf.Bytes()
}

func TestReadNPYRejectsBadShape(t *testing.T) {
	tests := []struct {
		name  string
		shape string
	}{
		{"rows overflow int", "(99999999999999999999, 2)"},
		{"cols overflow int", "(2, 99999999999999999999)"},
		{"product overflows", "(4611686018427387904, 4)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NotPanics(t, func() {
				_, err := ReadNPY(bytes.NewReader(npyWithShape(tt.shape, nil)))
				require.ErrorIs(t, err, errNPYFormat)
			})
		})
	}
}

func TestReadNPYShortPayload(t *testing.T) {
	// A huge but representable shape must fail on the missing data rather
	// than allocate the declared size.
	doc := npyWithShape("(1000000000, 1000)", make([]byte, 20))
	require.NotPanics(t, func() {
		_, err := ReadNPY(bytes.NewReader(doc))
		require.ErrorIs(t, err, io.ErrUnexpectedEOF)
	})
}
