// Package lookup resolves phone numbers to Telegram registration status
// through an external lookup provider.
package lookup

import (
	"context"

	"go.uber.org/zap"

	"inviterbot/internal/models"
)

// batchSize is the maximum number of phone numbers sent to the provider
// in a single call.
const batchSize = 10

// Provider checks one batch of at most batchSize phone numbers.
type Provider interface {
	CheckBatch(ctx context.Context, phoneNumbers []string) ([]models.PhoneLookupResult, error)
}

// Checker batches phone numbers and collects provider results.
type Checker struct {
	provider Provider
	logger   *zap.Logger
}

// NewChecker creates a checker over the given provider.
func NewChecker(provider Provider, logger *zap.Logger) *Checker {
	return &Checker{
		provider: provider,
		logger:   logger,
	}
}

// Check looks up all phone numbers in batches of ten and returns the
// results concatenated in batch order, preserving provider order within
// each batch. A failing batch is logged and skipped; its numbers simply
// produce no results and the remaining batches still run. Empty input
// returns an empty result with no provider calls.
func (c *Checker) Check(ctx context.Context, phoneNumbers []string) []models.PhoneLookupResult {
	var results []models.PhoneLookupResult

	for start := 0; start < len(phoneNumbers); start += batchSize {
		end := start + batchSize
		if end > len(phoneNumbers) {
			end = len(phoneNumbers)
		}
		batch := phoneNumbers[start:end]

		batchResults, err := c.provider.CheckBatch(ctx, batch)
		if err != nil {
			c.logger.Error("Lookup batch failed, skipping",
				zap.Int("batch", start/batchSize+1),
				zap.Int("batch_size", len(batch)),
				zap.Error(err),
			)
			continue
		}
		results = append(results, batchResults...)

		c.logger.Info("Lookup batch processed",
			zap.Int("batch", start/batchSize+1),
			zap.Int("results", len(batchResults)),
		)
	}

	c.logger.Info("Lookup finished",
		zap.Int("numbers", len(phoneNumbers)),
		zap.Int("results", len(results)),
	)
	return results
}
