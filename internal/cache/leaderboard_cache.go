package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"studyhub/internal/game"
)

// LeaderboardCache keeps each user's best score per game kind in a Redis ZSET
type LeaderboardCache interface {
	RecordBest(ctx context.Context, kind game.Kind, userID string, score int) error
	GetTop(ctx context.Context, kind game.Kind, limit int) ([]LeaderboardEntry, error)
	GetEntry(ctx context.Context, kind game.Kind, userID string) (*LeaderboardEntry, error)
}

// LeaderboardEntry represents a single leaderboard entry
type LeaderboardEntry struct {
	UserID string `json:"userId"`
	Name   string `json:"name,omitempty"`
	Score  int    `json:"score"`
	Rank   int    `json:"rank"`
}

type leaderboardCache struct {
	client *redis.Client
}

// NewLeaderboardCache creates a new leaderboard cache
func NewLeaderboardCache(client *redis.Client) LeaderboardCache {
	return &leaderboardCache{
		client: client,
	}
}

func (c *leaderboardCache) key(kind game.Kind) string {
	return fmt.Sprintf("games:%s:lb", kind)
}

// RecordBest only raises a score; a lower result leaves the entry unchanged.
func (c *leaderboardCache) RecordBest(ctx context.Context, kind game.Kind, userID string, score int) error {
	return c.client.ZAddArgs(ctx, c.key(kind), redis.ZAddArgs{
		GT: true,
		Members: []redis.Z{{
			Score:  float64(score),
			Member: userID,
		}},
	}).Err()
}

func (c *leaderboardCache) GetTop(ctx context.Context, kind game.Kind, limit int) ([]LeaderboardEntry, error) {
	results, err := c.client.ZRevRangeWithScores(ctx, c.key(kind), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, len(results))
	for i, z := range results {
		entries[i] = LeaderboardEntry{
			UserID: z.Member.(string),
			Score:  int(z.Score),
			Rank:   i + 1,
		}
	}
	return entries, nil
}

// GetEntry returns userID's own standing, or nil when they have no recorded score.
func (c *leaderboardCache) GetEntry(ctx context.Context, kind game.Kind, userID string) (*LeaderboardEntry, error) {
	key := c.key(kind)
	pipe := c.client.Pipeline()
	rankCmd := pipe.ZRevRank(ctx, key, userID)
	scoreCmd := pipe.ZScore(ctx, key, userID)
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, err
	}

	rank, err := rankCmd.Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	score, err := scoreCmd.Result()
	if err != nil {
		return nil, err
	}
	return &LeaderboardEntry{
		UserID: userID,
		Score:  int(score),
		Rank:   int(rank) + 1, // 1-indexed
	}, nil
}
