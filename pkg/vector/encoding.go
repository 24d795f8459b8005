package vector

import (
	"encoding/binary"
	"fmt"
	"math"
)

// EncodeEmbedding serializes an embedding as sequential little-endian
// IEEE-754 32-bit floats, 4 bytes per dimension with no framing. The blob is
// the on-disk format shared by every durable store backend.
func EncodeEmbedding(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// DecodeEmbedding deserializes a blob written by EncodeEmbedding. The
// round trip is bit-identical for every float32 value, subnormals included.
func DecodeEmbedding(b []byte) ([]float32, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("invalid embedding blob length %d: must be divisible by 4", len(b))
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v, nil
}
