package catalog

import (
	"encoding/binary"
	"fmt"
	"math"
)

// serializeEmbedding converts a float32 vector to bytes using little-endian
// IEEE 754 encoding, 4 bytes per dimension, for SQLite BLOB columns.
func serializeEmbedding(embedding []float32) []byte {
	if len(embedding) == 0 {
		return nil
	}
	buf := make([]byte, len(embedding)*4)
	for i, f := range embedding {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// deserializeEmbedding reverses serializeEmbedding. A length not divisible
// by 4 indicates corrupted data.
func deserializeEmbedding(buf []byte) ([]float32, error) {
	if len(buf) == 0 {
		return nil, nil
	}
	if len(buf)%4 != 0 {
		return nil, fmt.Errorf("invalid embedding data: length %d not divisible by 4", len(buf))
	}
	floats := make([]float32, len(buf)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return floats, nil
}
