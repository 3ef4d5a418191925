package accounts

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const RedisKey = "geo-tenants:master-accounts"

// Mirror persists a snapshot outside the process so restarts skip the
// Postgres scan.
type Mirror interface {
	Load(ctx context.Context) (Snapshot, bool, error)
	Store(ctx context.Context, s Snapshot, ttl time.Duration) error
	Drop(ctx context.Context) error
}

type RedisMirror struct {
	Client *redis.Client
	Key    string
}

// NewRedisMirror parses a redis:// URL and pings the server.
func NewRedisMirror(ctx context.Context, url string) (*RedisMirror, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return &RedisMirror{Client: client, Key: RedisKey}, nil
}

func (m *RedisMirror) Load(ctx context.Context) (Snapshot, bool, error) {
	raw, err := m.Client.Get(ctx, m.Key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Snapshot{}, false, nil
	}
	if err != nil {
		return Snapshot{}, false, err
	}

	var s Snapshot
	if err := json.Unmarshal(raw, &s); err != nil {
		return Snapshot{}, false, err
	}
	return s, true, nil
}

func (m *RedisMirror) Store(ctx context.Context, s Snapshot, ttl time.Duration) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return m.Client.Set(ctx, m.Key, raw, ttl).Err()
}

func (m *RedisMirror) Drop(ctx context.Context) error {
	return m.Client.Del(ctx, m.Key).Err()
}

func (m *RedisMirror) Close() error {
	return m.Client.Close()
}
