package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"studyhub/internal/game"
)

// GameCache stores ephemeral game state. Games expire an hour after their last move.
type GameCache interface {
	Save(ctx context.Context, rec *game.Record) error
	Get(ctx context.Context, id string) (*game.Record, error)

	// Acquire sets the in-flight flag for a game; false means a request already holds it.
	Acquire(ctx context.Context, id string) (bool, error)
	Release(ctx context.Context, id string) error
}

type gameCache struct {
	client    *redis.Client
	ttl       time.Duration
	flightTTL time.Duration
}

// NewGameCache creates a new game cache
func NewGameCache(client *redis.Client) GameCache {
	return &gameCache{
		client:    client,
		ttl:       time.Hour,
		flightTTL: 2 * time.Minute, // outlives the model timeout
	}
}

func (c *gameCache) key(id string) string {
	return fmt.Sprintf("game:%s", id)
}

func (c *gameCache) flightKey(id string) string {
	return fmt.Sprintf("game:%s:inflight", id)
}

func (c *gameCache) Save(ctx context.Context, rec *game.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(rec.ID), data, c.ttl).Err()
}

func (c *gameCache) Get(ctx context.Context, id string) (*game.Record, error) {
	data, err := c.client.Get(ctx, c.key(id)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var rec game.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (c *gameCache) Acquire(ctx context.Context, id string) (bool, error) {
	return c.client.SetNX(ctx, c.flightKey(id), 1, c.flightTTL).Result()
}

func (c *gameCache) Release(ctx context.Context, id string) error {
	return c.client.Del(ctx, c.flightKey(id)).Err()
}
