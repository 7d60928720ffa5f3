package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/qbazz/storefront/internal/domain"
	"github.com/qbazz/storefront/internal/repository"
)

const historyKeyPrefix = "search_history:"

// SearchHistoryRepository implements repository.SearchHistoryRepository using Redis.
type SearchHistoryRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSearchHistoryRepository creates a Redis-backed search history repository.
func NewSearchHistoryRepository(client *redis.Client, ttl time.Duration) *SearchHistoryRepository {
	return &SearchHistoryRepository{
		client: client,
		ttl:    ttl,
	}
}

// Get reads the visitor's history. Stored values are sanitized so a
// hand-edited or legacy value never exceeds the history limits.
func (r *SearchHistoryRepository) Get(ctx context.Context, visitorID string) (domain.SearchHistory, error) {
	data, err := r.client.Get(ctx, historyKeyPrefix+visitorID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.SearchHistory{}, nil
		}
		return nil, fmt.Errorf("redis get search history: %w", err)
	}

	var history domain.SearchHistory
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, fmt.Errorf("unmarshal search history: %w: %w", repository.ErrCorruptHistory, err)
	}
	return history.Sanitize(), nil
}

// Save writes the visitor's history with the configured TTL.
func (r *SearchHistoryRepository) Save(ctx context.Context, visitorID string, history domain.SearchHistory) error {
	if history == nil {
		history = domain.SearchHistory{}
	}
	data, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("marshal search history: %w", err)
	}

	if err := r.client.Set(ctx, historyKeyPrefix+visitorID, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set search history: %w", err)
	}
	return nil
}

// Delete removes the visitor's history.
func (r *SearchHistoryRepository) Delete(ctx context.Context, visitorID string) error {
	if err := r.client.Del(ctx, historyKeyPrefix+visitorID).Err(); err != nil {
		return fmt.Errorf("redis del search history: %w", err)
	}
	return nil
}
