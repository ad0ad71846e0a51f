package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vietddude/watchonly/internal/core/domain"
	"github.com/vietddude/watchonly/internal/core/metrics"
	"github.com/vietddude/watchonly/internal/infra/storage"
)

const defaultPrefix = "watchonly"

// Config holds Redis connection configuration.
type Config struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
	Prefix   string `yaml:"prefix"`
}

// Client stores the keyring snapshot in Redis.
type Client struct {
	rdb    *redis.Client
	prefix string
	log    *slog.Logger
}

// NewClient creates a new Redis client and verifies the connection.
func NewClient(cfg Config, log *slog.Logger) (*Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}
	if log == nil {
		log = slog.Default()
	}

	rdb := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return newClient(rdb, cfg.Prefix, log), nil
}

func newClient(rdb *redis.Client, prefix string, log *slog.Logger) *Client {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &Client{rdb: rdb, prefix: prefix, log: log}
}

var _ storage.SnapshotStore = (*Client)(nil)

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}

func (c *Client) Name() string {
	return "redis"
}

// Key helpers
func (c *Client) snapshotKey() string {
	return fmt.Sprintf("%s:snapshot", c.prefix)
}

func (c *Client) updatedAtKey() string {
	return fmt.Sprintf("%s:updated_at", c.prefix)
}

// Load fetches and decodes the stored snapshot.
func (c *Client) Load(ctx context.Context) (*domain.Snapshot, error) {
	start := time.Now()
	defer func() {
		metrics.SnapshotLatency.WithLabelValues(c.Name(), "load").Observe(time.Since(start).Seconds())
	}()

	data, err := c.rdb.Get(ctx, c.snapshotKey()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, storage.ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get failed: %w", err)
	}
	return domain.DecodeSnapshot(data)
}

// Save writes the snapshot and its timestamp in a single MULTI/EXEC.
func (c *Client) Save(ctx context.Context, snapshot *domain.Snapshot) (err error) {
	start := time.Now()
	defer func() {
		metrics.SnapshotLatency.WithLabelValues(c.Name(), "save").Observe(time.Since(start).Seconds())
		metrics.SnapshotPersists.WithLabelValues(c.Name(), metrics.Result(err)).Inc()
	}()

	data, err := domain.EncodeSnapshot(snapshot)
	if err != nil {
		return err
	}

	_, err = c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, c.snapshotKey(), data, 0)
		pipe.Set(ctx, c.updatedAtKey(), strconv.FormatInt(time.Now().Unix(), 10), 0)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}

	c.log.Debug("Stored snapshot in redis", "key", c.snapshotKey(), "accounts", snapshot.Len())
	return nil
}

// UpdatedAt returns when the snapshot was last saved.
func (c *Client) UpdatedAt(ctx context.Context) (time.Time, error) {
	val, err := c.rdb.Get(ctx, c.updatedAtKey()).Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, storage.ErrSnapshotNotFound
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("get failed: %w", err)
	}
	sec, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp: %w", err)
	}
	return time.Unix(sec, 0), nil
}

// Health pings the server.
func (c *Client) Health(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}
