package stash

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/msomdec/healthyu/internal/domain"
	"github.com/msomdec/healthyu/internal/metrics"
	"github.com/redis/go-redis/v9"
)

const opTimeout = 2 * time.Second

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Redis is a ReportStash backed by Redis string keys with a TTL.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis connects to Redis and verifies the connection.
func NewRedis(ctx context.Context, cfg RedisConfig, ttl time.Duration) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	slog.Info("connected to redis report stash", "addr", cfg.Addr, "db", cfg.DB)
	return &Redis{client: client, ttl: ttl}, nil
}

func (r *Redis) Put(ctx context.Context, userID int64, report domain.SessionReport) error {
	data, err := encode(report)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if err := r.client.Set(ctx, Key(userID), data, r.ttl).Err(); err != nil {
		metrics.RecordStash("redis", "put", "error")
		return fmt.Errorf("stash report: %w", err)
	}
	metrics.RecordStash("redis", "put", "ok")
	return nil
}

func (r *Redis) Get(ctx context.Context, userID int64) (*domain.SessionReport, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	data, err := r.client.Get(ctx, Key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.RecordStash("redis", "get", "miss")
		return nil, domain.ErrNotFound
	}
	if err != nil {
		metrics.RecordStash("redis", "get", "error")
		return nil, fmt.Errorf("read stashed report: %w", err)
	}

	report, err := decode(data)
	if err != nil {
		slog.Warn("discarding unreadable stashed report", "user_id", userID, "error", err)
		metrics.RecordStash("redis", "get", "corrupt")
		return nil, err
	}
	metrics.RecordStash("redis", "get", "hit")
	return report, nil
}

func (r *Redis) Delete(ctx context.Context, userID int64) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if err := r.client.Del(ctx, Key(userID)).Err(); err != nil {
		metrics.RecordStash("redis", "delete", "error")
		return fmt.Errorf("delete stashed report: %w", err)
	}
	metrics.RecordStash("redis", "delete", "ok")
	return nil
}

// HealthCheck pings Redis.
func (r *Redis) HealthCheck(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *Redis) Close() error {
	return r.client.Close()
}
