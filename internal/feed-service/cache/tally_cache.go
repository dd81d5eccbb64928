package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache guarda tallies recentes no Redis com TTL curto
// O tally é a consulta mais quente do feed (todo card da listagem mostra os
// contadores), então alguns segundos de atraso são aceitáveis
type Cache struct{ R *redis.Client }

func New(r *redis.Client) *Cache { return &Cache{R: r} }

func keyTally(challengeID string) string { return "tally:challenge:" + challengeID }

func (c *Cache) GetTally(ctx context.Context, challengeID string, dst any) (bool, error) {
	b, err := c.R.Get(ctx, keyTally(challengeID)).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, json.Unmarshal(b, dst)
}

func (c *Cache) SetTally(ctx context.Context, challengeID string, v any, ttl time.Duration) error {
	b, _ := json.Marshal(v)
	return c.R.Set(ctx, keyTally(challengeID), b, ttl).Err()
}
