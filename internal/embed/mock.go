package embed

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"math"
	"strings"
	"unicode"
)

// mockProvider generates deterministic embeddings without a model. Each text
// is split into word tokens, every token hashed into a fixed pseudo-random
// vector, and the token vectors summed and normalized. Texts that share words
// land close together, so offline search behaves sensibly.
type mockProvider struct {
	dimensions int
}

// newMockProvider creates a mock embedding provider. Useful for tests and
// for running without any embedding service configured.
func newMockProvider() Provider {
	return &mockProvider{
		dimensions: 384, // Standard dimension for sentence transformers
	}
}

// Initialize is a no-op; the mock is always ready.
func (p *mockProvider) Initialize(ctx context.Context) error {
	return nil
}

// Embed generates bag-of-words embeddings. The mode is ignored: queries and
// passages share one vocabulary, so overlapping words always align.
func (p *mockProvider) Embed(ctx context.Context, texts []string, mode Mode) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		embeddings[i] = p.embedText(text)
	}
	return embeddings, nil
}

func (p *mockProvider) embedText(text string) []float32 {
	vec := make([]float32, p.dimensions)
	for _, tok := range splitWords(text) {
		addTokenVector(vec, tok)
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		inv := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= inv
		}
	}
	return vec
}

// addTokenVector accumulates the token's pseudo-random vector into vec. The
// vector is derived only from the token hash, so the same word always maps to
// the same direction.
func addTokenVector(vec []float32, tok string) {
	seed := sha256.Sum256([]byte(tok))
	block := make([]byte, sha256.Size+1)
	copy(block, seed[:])

	for i := 0; i < len(vec); i += 8 {
		block[sha256.Size] = byte(i / 8)
		h := sha256.Sum256(block)
		for k := 0; k < 8 && i+k < len(vec); k++ {
			val := binary.BigEndian.Uint32(h[k*4 : k*4+4])
			// Normalize to [-1, 1] range
			vec[i+k] += (float32(val)/float32(1<<32))*2.0 - 1.0
		}
	}
}

// splitWords lowercases text into word tokens, splitting identifiers on case
// boundaries and punctuation so "CalculateOrderTotal", "calculate_order_total",
// and "calculate order total" all tokenize the same way.
func splitWords(text string) []string {
	var words []string
	var cur []rune
	flush := func() {
		if len(cur) > 0 {
			words = append(words, strings.ToLower(string(cur)))
			cur = cur[:0]
		}
	}

	prevLower := false
	for _, r := range text {
		switch {
		case unicode.IsLetter(r):
			if unicode.IsUpper(r) && prevLower {
				flush()
			}
			cur = append(cur, r)
			prevLower = unicode.IsLower(r)
		case unicode.IsDigit(r):
			cur = append(cur, r)
			prevLower = false
		default:
			flush()
			prevLower = false
		}
	}
	flush()
	return words
}

// Dimensions returns the dimensionality of mock embeddings.
func (p *mockProvider) Dimensions() int {
	return p.dimensions
}

// Close is a no-op for the mock provider.
func (p *mockProvider) Close() error {
	return nil
}
