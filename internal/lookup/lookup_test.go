package lookup

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"inviterbot/internal/models"
)

// fakeProvider records batches and answers from a scripted function.
type fakeProvider struct {
	batches [][]string
	answer  func(batch []string) ([]models.PhoneLookupResult, error)
}

func (f *fakeProvider) CheckBatch(ctx context.Context, phoneNumbers []string) ([]models.PhoneLookupResult, error) {
	copied := make([]string, len(phoneNumbers))
	copy(copied, phoneNumbers)
	f.batches = append(f.batches, copied)
	if f.answer == nil {
		return nil, nil
	}
	return f.answer(phoneNumbers)
}

func registeredResults(batch []string) []models.PhoneLookupResult {
	results := make([]models.PhoneLookupResult, 0, len(batch))
	for i, phone := range batch {
		results = append(results, models.PhoneLookupResult{
			PhoneNumber:  phone,
			IsRegistered: true,
			UserID:       int64(i + 1),
		})
	}
	return results
}

func numbers(n int) []string {
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, fmt.Sprintf("+%d00", i+1))
	}
	return out
}

func TestCheck_BatchesOfTen(t *testing.T) {
	provider := &fakeProvider{answer: func(batch []string) ([]models.PhoneLookupResult, error) {
		return registeredResults(batch), nil
	}}
	checker := NewChecker(provider, zap.NewNop())

	results := checker.Check(context.Background(), numbers(25))

	require.Len(t, provider.batches, 3, "25 numbers must produce exactly 3 provider calls")
	assert.Len(t, provider.batches[0], 10)
	assert.Len(t, provider.batches[1], 10)
	assert.Len(t, provider.batches[2], 5)
	assert.Len(t, results, 25)
}

func TestCheck_PreservesOrder(t *testing.T) {
	provider := &fakeProvider{answer: func(batch []string) ([]models.PhoneLookupResult, error) {
		return registeredResults(batch), nil
	}}
	checker := NewChecker(provider, zap.NewNop())

	input := numbers(12)
	results := checker.Check(context.Background(), input)

	require.Len(t, results, 12)
	for i, result := range results {
		assert.Equal(t, input[i], result.PhoneNumber)
	}
}

func TestCheck_EmptyInputMakesNoCalls(t *testing.T) {
	provider := &fakeProvider{}
	checker := NewChecker(provider, zap.NewNop())

	results := checker.Check(context.Background(), nil)

	assert.Empty(t, results)
	assert.Empty(t, provider.batches)
}

func TestCheck_FailingBatchIsSkipped(t *testing.T) {
	calls := 0
	provider := &fakeProvider{answer: func(batch []string) ([]models.PhoneLookupResult, error) {
		calls++
		if calls == 2 {
			return nil, errors.New("provider unavailable")
		}
		return registeredResults(batch), nil
	}}
	checker := NewChecker(provider, zap.NewNop())

	results := checker.Check(context.Background(), numbers(25))

	// Second batch yields nothing, but batches one and three still run.
	require.Len(t, provider.batches, 3)
	assert.Len(t, results, 15)
	assert.Equal(t, "+100", results[0].PhoneNumber)
	assert.Equal(t, "+2100", results[10].PhoneNumber)
}
