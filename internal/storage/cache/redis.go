package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/zappabad/stockwire/internal/config"
	"github.com/zappabad/stockwire/internal/desk"
	"github.com/zappabad/stockwire/pkg/metrics"
)

var ErrNoSnapshot = errors.New("no snapshot stored")

// SnapshotStore keeps one desk snapshot as JSON under a fixed key.
type SnapshotStore struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

func NewSnapshotStore(cfg *config.Config) (*SnapshotStore, error) {
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	opt.PoolSize = 10
	opt.MinIdleConns = 2
	opt.MaxRetries = 3
	opt.DialTimeout = 5 * time.Second
	opt.ReadTimeout = 3 * time.Second
	opt.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	return &SnapshotStore{
		client: client,
		key:    cfg.SnapshotKey,
		ttl:    cfg.SnapshotTTL,
	}, nil
}

// Save stores snap, replacing any previous snapshot.
func (s *SnapshotStore) Save(ctx context.Context, snap desk.Snapshot) (err error) {
	timer := metrics.NewTimer()
	defer func() { metrics.RecordStorage("redis", "save", err, timer.Elapsed()) }()

	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := s.client.Set(ctx, s.key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// Load returns the stored snapshot, or ErrNoSnapshot.
func (s *SnapshotStore) Load(ctx context.Context) (snap desk.Snapshot, err error) {
	timer := metrics.NewTimer()
	defer func() { metrics.RecordStorage("redis", "load", err, timer.Elapsed()) }()

	val, err := s.client.Get(ctx, s.key).Bytes()
	if err == redis.Nil {
		return desk.Snapshot{}, ErrNoSnapshot
	}
	if err != nil {
		return desk.Snapshot{}, fmt.Errorf("load snapshot: %w", err)
	}
	if err := json.Unmarshal(val, &snap); err != nil {
		return desk.Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, nil
}

// Delete removes the stored snapshot.
func (s *SnapshotStore) Delete(ctx context.Context) error {
	return s.client.Del(ctx, s.key).Err()
}

func (s *SnapshotStore) Close() error {
	return s.client.Close()
}

func (s *SnapshotStore) HealthCheck(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
