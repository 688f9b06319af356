package embedding

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"reasonmed-be/internal/pkg/logger"
)

// Service composes a Provider with in-process caching for single-text
// embeds (repeated queries skip the upstream call) and rate-limited
// batching for corpus ingestion.
type Service struct {
	provider Provider
	cache    *gocache.Cache
	logger   logger.ILogger
}

func NewService(provider Provider, log logger.ILogger) *Service {
	return &Service{
		provider: provider,
		cache:    gocache.New(10*time.Minute, 15*time.Minute),
		logger:   log,
	}
}

// Embed converts one text into a vector. Results are cached by text with a
// short TTL; a stored text never changes meaning within one.
func (s *Service) Embed(ctx context.Context, text string) ([]float32, error) {
	if cached, found := s.cache.Get(text); found {
		return cached.([]float32), nil
	}

	vector, err := s.provider.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	s.cache.Set(text, vector, gocache.DefaultExpiration)
	return vector, nil
}

// EmbedBatch embeds texts in chunks of at most batchSize, one upstream call
// per chunk, sleeping interBatchDelay between chunks (not after the last) to
// respect upstream rate limits. Any chunk failure aborts the whole batch;
// partial results are discarded.
func (s *Service) EmbedBatch(ctx context.Context, texts []string, batchSize int, interBatchDelay time.Duration) ([][]float32, error) {
	if batchSize <= 0 {
		batchSize = 100
	}

	total := len(texts)
	allVectors := make([][]float32, 0, total)

	s.logger.Info("embedding", "Generating embeddings", map[string]interface{}{
		"total": total,
	})

	for i := 0; i < total; i += batchSize {
		end := i + batchSize
		if end > total {
			end = total
		}

		vectors, err := s.provider.EmbedMany(ctx, texts[i:end])
		if err != nil {
			return nil, err
		}
		allVectors = append(allVectors, vectors...)

		s.logger.Debug("embedding", "Embedded batch", map[string]interface{}{
			"done":  end,
			"total": total,
		})

		if end < total && interBatchDelay > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(interBatchDelay):
			}
		}
	}

	s.logger.Info("embedding", "Embedding generation complete", map[string]interface{}{
		"count": len(allVectors),
	})
	return allVectors, nil
}
