package index

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

const (
	magic         = "JQIX"
	formatVersion = 1
)

// Header describes a serialized index.
type Header struct {
	Kind  string
	Dim   int
	Count int
	RunID string
}

// Encode stores: magic, version(uint32), kind and run id (uint32 length +
// bytes each), dim(uint32), n(uint32), then n vectors of dim float32 in id
// order. Integers and floats are little-endian.
func Encode(h Header, vectors [][]float32) []byte {
	out := make([]byte, 0, 24+len(h.Kind)+len(h.RunID)+len(vectors)*h.Dim*4)
	out = append(out, magic...)
	out = binary.LittleEndian.AppendUint32(out, formatVersion)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(h.Kind)))
	out = append(out, h.Kind...)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(h.RunID)))
	out = append(out, h.RunID...)
	out = binary.LittleEndian.AppendUint32(out, uint32(h.Dim))
	out = binary.LittleEndian.AppendUint32(out, uint32(len(vectors)))
	for _, vec := range vectors {
		for j := 0; j < h.Dim; j++ {
			out = binary.LittleEndian.AppendUint32(out, math.Float32bits(vec[j]))
		}
	}
	return out
}

// Decode parses data written by Encode.
func Decode(data []byte) (Header, [][]float32, error) {
	var h Header
	if len(data) < len(magic) || string(data[:len(magic)]) != magic {
		return h, nil, errors.New("index: invalid magic")
	}
	off := len(magic)
	getU32 := func() (uint32, error) {
		if off+4 > len(data) {
			return 0, errors.New("index: truncated header")
		}
		v := binary.LittleEndian.Uint32(data[off:])
		off += 4
		return v, nil
	}
	getString := func() (string, error) {
		n, err := getU32()
		if err != nil {
			return "", err
		}
		if off+int(n) > len(data) {
			return "", errors.New("index: truncated string")
		}
		s := string(data[off : off+int(n)])
		off += int(n)
		return s, nil
	}
	version, err := getU32()
	if err != nil {
		return h, nil, err
	}
	if version != formatVersion {
		return h, nil, fmt.Errorf("index: unsupported format version %d", version)
	}
	if h.Kind, err = getString(); err != nil {
		return h, nil, err
	}
	if h.RunID, err = getString(); err != nil {
		return h, nil, err
	}
	dim, err := getU32()
	if err != nil {
		return h, nil, err
	}
	n, err := getU32()
	if err != nil {
		return h, nil, err
	}
	h.Dim, h.Count = int(dim), int(n)
	if want := off + h.Count*h.Dim*4; want != len(data) {
		return h, nil, fmt.Errorf("index: payload is %d bytes, want %d", len(data)-off, want-off)
	}
	vectors := make([][]float32, h.Count)
	for i := range vectors {
		vec := make([]float32, h.Dim)
		for j := range vec {
			vec[j] = math.Float32frombits(binary.LittleEndian.Uint32(data[off:]))
			off += 4
		}
		vectors[i] = vec
	}
	return h, vectors, nil
}
