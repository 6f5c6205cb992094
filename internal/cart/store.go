package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/noah-isme/pizzeria-storefront/internal/shipping"
)

// Store persists cart snapshots per session.
type Store interface {
	Load(ctx context.Context, sessionID string) ([]Line, error)
	Save(ctx context.Context, sessionID string, lines []Line) error
	Clear(ctx context.Context, sessionID string) error
	DeliveryMode(ctx context.Context, sessionID string) (shipping.Mode, error)
	SetDeliveryMode(ctx context.Context, sessionID string, mode shipping.Mode) error
}

// RedisStore keeps cart snapshots as JSON documents with a sliding TTL.
type RedisStore struct {
	Client *redis.Client
	TTL    time.Duration
}

func (s RedisStore) ttl() time.Duration {
	if s.TTL <= 0 {
		return 7 * 24 * time.Hour
	}
	return s.TTL
}

func cartKey(sessionID string) string     { return "cart:" + sessionID }
func deliveryKey(sessionID string) string { return "cart:" + sessionID + ":delivery" }

// Load returns the persisted lines. A missing snapshot is an empty cart.
func (s RedisStore) Load(ctx context.Context, sessionID string) ([]Line, error) {
	if s.Client == nil {
		return nil, errors.New("cart store not configured")
	}
	raw, err := s.Client.Get(ctx, cartKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("load cart: %w", err)
	}
	var lines []Line
	if err := json.Unmarshal(raw, &lines); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	return lines, nil
}

// Save overwrites the snapshot and refreshes the TTL of both session keys.
func (s RedisStore) Save(ctx context.Context, sessionID string, lines []Line) error {
	if s.Client == nil {
		return errors.New("cart store not configured")
	}
	if lines == nil {
		lines = []Line{}
	}
	payload, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	pipe := s.Client.TxPipeline()
	pipe.Set(ctx, cartKey(sessionID), payload, s.ttl())
	pipe.Expire(ctx, deliveryKey(sessionID), s.ttl())
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

// Clear removes the cart snapshot. The delivery preference survives.
func (s RedisStore) Clear(ctx context.Context, sessionID string) error {
	if s.Client == nil {
		return errors.New("cart store not configured")
	}
	if err := s.Client.Del(ctx, cartKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

// DeliveryMode returns the stored delivery preference, defaulting to delivery.
func (s RedisStore) DeliveryMode(ctx context.Context, sessionID string) (shipping.Mode, error) {
	if s.Client == nil {
		return shipping.ModeDelivery, errors.New("cart store not configured")
	}
	raw, err := s.Client.Get(ctx, deliveryKey(sessionID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return shipping.ModeDelivery, nil
		}
		return shipping.ModeDelivery, fmt.Errorf("load delivery mode: %w", err)
	}
	return shipping.ParseMode(raw), nil
}

// SetDeliveryMode stores the delivery preference.
func (s RedisStore) SetDeliveryMode(ctx context.Context, sessionID string, mode shipping.Mode) error {
	if s.Client == nil {
		return errors.New("cart store not configured")
	}
	if err := s.Client.Set(ctx, deliveryKey(sessionID), string(mode), s.ttl()).Err(); err != nil {
		return fmt.Errorf("save delivery mode: %w", err)
	}
	return nil
}
