package question

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultCacheTTL = 10 * time.Minute

// Cache keeps normalised questions in Redis so a room's set is read from the
// bank once.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

var _ QuestionCache = (*Cache)(nil)

func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &Cache{client: client, ttl: ttl}
}

func cacheKey(id string) string {
	return "question:" + id
}

func (c *Cache) GetMany(ctx context.Context, ids []string) (map[string]Question, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = cacheKey(id)
	}
	vals, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	out := make(map[string]Question, len(vals))
	for _, v := range vals {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var q Question
		if err := json.Unmarshal([]byte(raw), &q); err != nil {
			continue
		}
		out[q.ID] = q
	}
	return out, nil
}

func (c *Cache) SetMany(ctx context.Context, questions []Question) error {
	pipe := c.client.Pipeline()
	for _, q := range questions {
		data, err := json.Marshal(q)
		if err != nil {
			return err
		}
		pipe.Set(ctx, cacheKey(q.ID), data, c.ttl)
	}
	_, err := pipe.Exec(ctx)
	return err
}
