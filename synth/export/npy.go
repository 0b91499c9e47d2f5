package export

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"

	"github.com/cwbudde/algo-ramix/synth/core"
)

var npyMagic = []byte("\x93NUMPY")

const (
	npyAlign    = 64
	npyPrealloc = 1 << 16
)

var errNPYFormat = errors.New("export: unsupported npy layout")

// EncodeNPY renders m as a version 1.0 .npy document with little-endian
// float64 ('<f8') elements in C order.
func EncodeNPY(m core.Matrix) []byte {
	rows, cols := m.Dims()
	header := fmt.Sprintf("{'descr': '<f8', 'fortran_order': False, 'shape': (%d, %d), }", rows, cols)

	// magic(6) + version(2) + header length(2) + header + '\n', padded to npyAlign
	pre := len(npyMagic) + 4
	pad := npyAlign - (pre+len(header)+1)%npyAlign
	if pad == npyAlign {
		pad = 0
	}
	headerLen := len(header) + pad + 1

	buf := bytes.NewBuffer(make([]byte, 0, pre+headerLen+8*len(m.Data())))
	buf.Write(npyMagic)
	buf.Write([]byte{1, 0})
	_ = binary.Write(buf, binary.LittleEndian, uint16(headerLen))
	buf.WriteString(header)
	buf.Write(bytes.Repeat([]byte{' '}, pad))
	buf.WriteByte('\n')

	var word [8]byte
	for _, v := range m.Data() {
		binary.LittleEndian.PutUint64(word[:], math.Float64bits(v))
		buf.Write(word[:])
	}
	return buf.Bytes()
}

var shapePattern = regexp.MustCompile(`'shape':\s*\((\d+),\s*(\d+)\)`)

// ReadNPY decodes a two-dimensional '<f8' C-order .npy document, the layout
// written by EncodeNPY. Files from separate runs can be combined this way.
func ReadNPY(r io.Reader) (core.Matrix, error) {
	br := bufio.NewReader(r)
	pre := make([]byte, len(npyMagic)+2)
	if _, err := io.ReadFull(br, pre); err != nil {
		return core.Matrix{}, fmt.Errorf("export: npy preamble: %w", err)
	}
	if !bytes.Equal(pre[:len(npyMagic)], npyMagic) {
		return core.Matrix{}, fmt.Errorf("%w: bad magic", errNPYFormat)
	}

	var headerLen int
	switch pre[len(npyMagic)] {
	case 1:
		var n uint16
		if err := binary.Read(br, binary.LittleEndian, &n); err != nil {
			return core.Matrix{}, fmt.Errorf("export: npy header length: %w", err)
		}
		headerLen = int(n)
	case 2, 3:
		var n uint32
		if err := binary.Read(br, binary.LittleEndian, &n); err != nil {
			return core.Matrix{}, fmt.Errorf("export: npy header length: %w", err)
		}
		headerLen = int(n)
	default:
		return core.Matrix{}, fmt.Errorf("%w: version %d", errNPYFormat, pre[len(npyMagic)])
	}

	header := make([]byte, headerLen)
	if _, err := io.ReadFull(br, header); err != nil {
		return core.Matrix{}, fmt.Errorf("export: npy header: %w", err)
	}
	if !bytes.Contains(header, []byte("'descr': '<f8'")) || !bytes.Contains(header, []byte("'fortran_order': False")) {
		return core.Matrix{}, fmt.Errorf("%w: %s", errNPYFormat, bytes.TrimSpace(header))
	}
	match := shapePattern.FindSubmatch(header)
	if match == nil {
		return core.Matrix{}, fmt.Errorf("%w: %s", errNPYFormat, bytes.TrimSpace(header))
	}
	rows, err := strconv.Atoi(string(match[1]))
	if err != nil {
		return core.Matrix{}, fmt.Errorf("%w: rows: %w", errNPYFormat, err)
	}
	cols, err := strconv.Atoi(string(match[2]))
	if err != nil {
		return core.Matrix{}, fmt.Errorf("%w: cols: %w", errNPYFormat, err)
	}
	if cols > 0 && rows > math.MaxInt/8/cols {
		return core.Matrix{}, fmt.Errorf("%w: shape (%d, %d) too large", errNPYFormat, rows, cols)
	}

	// The header is untrusted, so grow with the payload instead of
	// allocating the declared shape up front.
	n := rows * cols
	data := make([]float64, 0, min(n, npyPrealloc))
	var word [8]byte
	for range n {
		if _, err := io.ReadFull(br, word[:]); err != nil {
			return core.Matrix{}, fmt.Errorf("export: npy data: %w", err)
		}
		data = append(data, math.Float64frombits(binary.LittleEndian.Uint64(word[:])))
	}
	return core.MatrixFromData(rows, cols, data)
}
