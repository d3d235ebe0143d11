package embed

import (
	"context"
	"fmt"
)

// BatchProgress reports embedding progress for real-time feedback.
type BatchProgress struct {
	BatchIndex     int // Current batch number (1-indexed)
	TotalBatches   int // Total number of batches
	ProcessedTexts int // Number of texts processed so far
	TotalTexts     int // Total number of texts to process
}

// EmbedWithProgress embeds texts in sequential batches, sending a progress
// update after each batch completes. progressCh may be nil to disable
// progress reporting; sends are synchronous, so the channel should be
// buffered or drained concurrently. Context cancellation is honored between
// batches. Results come back in input order.
func EmbedWithProgress(
	ctx context.Context,
	provider Provider,
	texts []string,
	mode Mode,
	batchSize int,
	progressCh chan<- BatchProgress,
) ([][]float32, error) {
	total := len(texts)
	if total == 0 {
		return [][]float32{}, nil
	}
	if batchSize <= 0 {
		batchSize = total
	}

	numBatches := (total + batchSize - 1) / batchSize
	results := make([][]float32, total)

	processed := 0
	for batch := 0; batch < numBatches; batch++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		start := batch * batchSize
		end := start + batchSize
		if end > total {
			end = total
		}

		vectors, err := provider.Embed(ctx, texts[start:end], mode)
		if err != nil {
			return nil, fmt.Errorf("batch %d/%d failed: %w", batch+1, numBatches, err)
		}
		for i, vec := range vectors {
			results[start+i] = vec
		}

		processed += end - start
		if progressCh != nil {
			progressCh <- BatchProgress{
				BatchIndex:     batch + 1,
				TotalBatches:   numBatches,
				ProcessedTexts: processed,
				TotalTexts:     total,
			}
		}
	}

	return results, nil
}
