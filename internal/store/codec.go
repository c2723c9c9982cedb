package store

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/MeKo-Tech/hflab/internal/hfield"
)

// encode serializes the real plane, followed by the imaginary plane for
// complex fields, as gzip-compressed little-endian float32.
func encode(f *hfield.Field) ([]byte, error) {
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)

	if err := binary.Write(gw, binary.LittleEndian, f.Re); err != nil {
		gw.Close()
		return nil, err
	}
	if f.IsComplex() {
		if err := binary.Write(gw, binary.LittleEndian, f.Im); err != nil {
			gw.Close()
			return nil, err
		}
	}
	if err := gw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decode(w, h int, cplx bool, data []byte) (*hfield.Field, error) {
	gr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer gr.Close()

	raw, err := io.ReadAll(gr)
	if err != nil {
		return nil, err
	}

	n := w * h
	planes := 1
	if cplx {
		planes = 2
	}
	if len(raw) != 4*n*planes {
		return nil, fmt.Errorf("payload has %d bytes, want %d: %w", len(raw), 4*n*planes, hfield.ErrSize)
	}

	vals := make([]float32, n*planes)
	if err := binary.Read(bytes.NewReader(raw), binary.LittleEndian, vals); err != nil {
		return nil, err
	}
	var im []float32
	if cplx {
		im = vals[n:]
	}
	return hfield.FromBuffer(w, h, vals[:n], im)
}
