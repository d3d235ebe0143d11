package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddingEncodingRoundTrip(t *testing.T) {
	t.Parallel()

	vector := []float32{0.0, 1.0, -1.0, 0.333333, 3.4e38, -1.2e-38}
	buf := serializeEmbedding(vector)
	assert.Len(t, buf, len(vector)*4)

	decoded, err := deserializeEmbedding(buf)
	require.NoError(t, err)
	assert.Equal(t, vector, decoded)
}

func TestEmbeddingEncodingEmpty(t *testing.T) {
	t.Parallel()

	assert.Nil(t, serializeEmbedding(nil))
	assert.Nil(t, serializeEmbedding([]float32{}))

	decoded, err := deserializeEmbedding(nil)
	require.NoError(t, err)
	assert.Nil(t, decoded)
}

func TestEmbeddingEncodingCorrupt(t *testing.T) {
	t.Parallel()

	_, err := deserializeEmbedding([]byte{1, 2, 3})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not divisible by 4")
}
