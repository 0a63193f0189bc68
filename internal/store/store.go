// internal/store/store.go
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"listing-analytics/internal/common/errors"
	"listing-analytics/internal/common/logger"
	"listing-analytics/internal/models"
)

const (
	subscriptionPrefix = "subscription:"
	analysisPrefix     = "ai-analysis:"
)

// Store persists subscriptions and analysis records as JSON values in Redis.
// Records never expire.
type Store struct {
	client *redis.Client
	logger logger.Logger
}

func New(client *redis.Client, log logger.Logger) *Store {
	return &Store{
		client: client,
		logger: log,
	}
}

// SubscriptionKey returns the storage key for an address or payment intent ID.
func SubscriptionKey(key string) string {
	return subscriptionPrefix + strings.TrimSpace(key)
}

// AnalysisKey returns the storage key for a listing address.
func AnalysisKey(address string) string {
	return analysisPrefix + strings.TrimSpace(address)
}

// SaveSubscription writes a subscription record keyed by address (or payment
// intent ID when no address is available).
func (s *Store) SaveSubscription(ctx context.Context, key string, sub *models.Subscription) error {
	payload, err := json.Marshal(sub)
	if err != nil {
		return errors.NewStoreError(errors.ErrCodeStoreWriteFailed, fmt.Errorf("marshal subscription: %w", err))
	}

	if err := s.client.Set(ctx, SubscriptionKey(key), payload, 0).Err(); err != nil {
		return errors.NewStoreError(errors.ErrCodeStoreWriteFailed, err)
	}

	s.logger.Info("Subscription saved", map[string]interface{}{
		"key": SubscriptionKey(key),
	})
	return nil
}

// GetSubscription loads a subscription record. found is false when no record
// exists for the key.
func (s *Store) GetSubscription(ctx context.Context, key string) (*models.Subscription, bool, error) {
	raw, err := s.client.Get(ctx, SubscriptionKey(key)).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.NewStoreError(errors.ErrCodeStoreReadFailed, err)
	}

	var sub models.Subscription
	if err := json.Unmarshal([]byte(raw), &sub); err != nil {
		return nil, false, errors.NewStoreError(errors.ErrCodeStoreReadFailed, fmt.Errorf("unmarshal subscription: %w", err))
	}
	return &sub, true, nil
}

// SaveAnalysis writes an analysis record keyed by address. The record is an
// audit trail only; request handling never reads it back.
func (s *Store) SaveAnalysis(ctx context.Context, address string, rec *models.CachedAnalysis) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return errors.NewStoreError(errors.ErrCodeStoreWriteFailed, fmt.Errorf("marshal analysis: %w", err))
	}

	if err := s.client.Set(ctx, AnalysisKey(address), payload, 0).Err(); err != nil {
		return errors.NewStoreError(errors.ErrCodeStoreWriteFailed, err)
	}
	return nil
}

// Delete removes a record by its full key. Used by maintenance tooling and
// tests.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return errors.NewStoreError(errors.ErrCodeStoreWriteFailed, err)
	}
	return nil
}
