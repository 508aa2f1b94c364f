package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/felixgeelhaar/behaviortracker/internal/behavior/domain"
)

// envelope is the stored form of an entry.
type envelope struct {
	Stamp string          `json:"stamp"`
	Value json.RawMessage `json:"value"`
}

// RedisCache implements domain.AggregateCache on Redis with a fixed TTL.
type RedisCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedisCache creates a cache. A zero ttl stores entries without expiry.
func NewRedisCache(client redis.UniversalClient, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) GetAggregate(ctx context.Context, userID uuid.UUID, day, stamp string) (*domain.DailyAggregate, bool, error) {
	var agg domain.DailyAggregate
	ok, err := c.get(ctx, dayKey(userID, day, kindAggregate), stamp, &agg)
	if !ok || err != nil {
		return nil, false, err
	}
	return &agg, true, nil
}

func (c *RedisCache) SetAggregate(ctx context.Context, agg *domain.DailyAggregate, day, stamp string) error {
	return c.set(ctx, dayKey(agg.UserID, day, kindAggregate), stamp, agg)
}

func (c *RedisCache) GetAdvice(ctx context.Context, userID uuid.UUID, day, stamp string) ([]domain.AdviceCard, bool, error) {
	var cards []domain.AdviceCard
	ok, err := c.get(ctx, dayKey(userID, day, kindAdvice), stamp, &cards)
	if !ok || err != nil {
		return nil, false, err
	}
	if cards == nil {
		cards = []domain.AdviceCard{}
	}
	return cards, true, nil
}

func (c *RedisCache) SetAdvice(ctx context.Context, userID uuid.UUID, day, stamp string, cards []domain.AdviceCard) error {
	return c.set(ctx, dayKey(userID, day, kindAdvice), stamp, cards)
}

// Invalidate deletes one day's entries, or scans and deletes all of the
// user's entries when day is empty.
func (c *RedisCache) Invalidate(ctx context.Context, userID uuid.UUID, day string) error {
	if day != "" {
		return c.client.Del(ctx, dayKey(userID, day, kindAggregate), dayKey(userID, day, kindAdvice)).Err()
	}

	var keys []string
	iter := c.client.Scan(ctx, 0, userPrefix(userID)+"*", 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

// Ping checks the connection.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// get decodes the entry at key into v. An entry stored under another stamp is a miss.
func (c *RedisCache) get(ctx context.Context, key, stamp string, v any) (bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return false, err
	}
	if env.Stamp != stamp {
		return false, nil
	}
	if err := json.Unmarshal(env.Value, v); err != nil {
		return false, err
	}
	return true, nil
}

func (c *RedisCache) set(ctx context.Context, key, stamp string, v any) error {
	value, err := json.Marshal(v)
	if err != nil {
		return err
	}
	data, err := json.Marshal(envelope{Stamp: stamp, Value: value})
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, c.ttl).Err()
}
