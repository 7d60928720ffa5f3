package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/qbazz/storefront/internal/registration"
	apperrors "github.com/qbazz/storefront/pkg/errors"
)

const wizardKeyPrefix = "registration:"

// WizardRepository implements repository.WizardRepository using Redis.
type WizardRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewWizardRepository creates a Redis-backed registration draft repository.
func NewWizardRepository(client *redis.Client, ttl time.Duration) *WizardRepository {
	return &WizardRepository{
		client: client,
		ttl:    ttl,
	}
}

func (r *WizardRepository) Get(ctx context.Context, visitorID string) (*registration.Wizard, error) {
	data, err := r.client.Get(ctx, wizardKeyPrefix+visitorID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperrors.NotFound("registration", visitorID)
		}
		return nil, fmt.Errorf("redis get registration: %w", err)
	}

	var w registration.Wizard
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("unmarshal registration: %w", err)
	}
	return &w, nil
}

func (r *WizardRepository) Save(ctx context.Context, visitorID string, w *registration.Wizard) error {
	data, err := json.Marshal(w)
	if err != nil {
		return fmt.Errorf("marshal registration: %w", err)
	}

	if err := r.client.Set(ctx, wizardKeyPrefix+visitorID, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set registration: %w", err)
	}
	return nil
}

func (r *WizardRepository) Delete(ctx context.Context, visitorID string) error {
	if err := r.client.Del(ctx, wizardKeyPrefix+visitorID).Err(); err != nil {
		return fmt.Errorf("redis del registration: %w", err)
	}
	return nil
}
