package store

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisKV adapte un client go-redis à l'interface KV du Store.
type RedisKV struct {
	Client *redis.Client
	TTL    time.Duration
}

func (r RedisKV) Set(ctx context.Context, key string, value []byte) error {
	return r.Client.Set(ctx, key, value, r.TTL).Err()
}

func (r RedisKV) Del(ctx context.Context, key string) error {
	return r.Client.Del(ctx, key).Err()
}
