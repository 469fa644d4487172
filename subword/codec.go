package subword

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sort"
)

const (
	magic         = "JQSW"
	formatVersion = 1
)

// MarshalBinary stores: magic, version, dim, minN, maxN, buckets, then the
// vocabulary (len-prefixed word, dim float32) and the observed n-gram buckets
// (bucket uint32, dim float32) in ascending bucket order. All integers are
// little-endian uint32.
func (m *Model) MarshalBinary() ([]byte, error) {
	if m == nil || m.dim == 0 {
		return nil, errors.New("subword: empty model")
	}
	out := make([]byte, 0, 32+len(m.words)*(8+4*m.dim)+len(m.ngramVecs)*(4+4*m.dim))
	out = append(out, magic...)
	for _, v := range []uint32{formatVersion, uint32(m.dim), uint32(m.minN), uint32(m.maxN), m.buckets, uint32(len(m.words))} {
		out = binary.LittleEndian.AppendUint32(out, v)
	}
	putVec := func(vec []float32) {
		for _, x := range vec {
			out = binary.LittleEndian.AppendUint32(out, math.Float32bits(x))
		}
	}
	for i, w := range m.words {
		out = binary.LittleEndian.AppendUint32(out, uint32(len(w)))
		out = append(out, w...)
		putVec(m.wordVecs[i])
	}
	keys := make([]uint32, 0, len(m.ngramVecs))
	for b := range m.ngramVecs {
		keys = append(keys, b)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	out = binary.LittleEndian.AppendUint32(out, uint32(len(keys)))
	for _, b := range keys {
		out = binary.LittleEndian.AppendUint32(out, b)
		putVec(m.ngramVecs[b])
	}
	return out, nil
}

// UnmarshalBinary restores a model written by MarshalBinary.
func (m *Model) UnmarshalBinary(data []byte) error {
	if len(data) < len(magic) || string(data[:len(magic)]) != magic {
		return errors.New("subword: invalid magic")
	}
	r := &reader{data: data, off: len(magic)}
	version := r.u32()
	if r.err == nil && version != formatVersion {
		return fmt.Errorf("subword: unsupported format version %d", version)
	}
	dim, minN, maxN, buckets, nwords := int(r.u32()), int(r.u32()), int(r.u32()), r.u32(), int(r.u32())
	if r.err != nil {
		return r.err
	}
	if dim <= 0 || buckets == 0 {
		return errors.New("subword: invalid header")
	}
	restored := Model{
		dim:       dim,
		minN:      minN,
		maxN:      maxN,
		buckets:   buckets,
		words:     make([]string, 0, nwords),
		index:     make(map[string]int, nwords),
		wordVecs:  make([][]float32, 0, nwords),
		ngramVecs: map[uint32][]float32{},
	}
	for i := 0; i < nwords && r.err == nil; i++ {
		w := string(r.bytes(int(r.u32())))
		restored.index[w] = len(restored.words)
		restored.words = append(restored.words, w)
		restored.wordVecs = append(restored.wordVecs, r.vec(dim))
	}
	nngrams := int(r.u32())
	for i := 0; i < nngrams && r.err == nil; i++ {
		b := r.u32()
		restored.ngramVecs[b] = r.vec(dim)
	}
	if r.err != nil {
		return r.err
	}
	*m = restored
	return nil
}

type reader struct {
	data []byte
	off  int
	err  error
}

func (r *reader) bytes(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || r.off+n > len(r.data) {
		r.err = errors.New("subword: truncated data")
		return nil
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b
}

func (r *reader) u32() uint32 {
	b := r.bytes(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func (r *reader) vec(dim int) []float32 {
	out := make([]float32, dim)
	for i := range out {
		out[i] = math.Float32frombits(r.u32())
	}
	return out
}
