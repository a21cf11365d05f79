package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fairyhunter13/storefront-intake/internal/model"
)

// RedisOptions configures the Redis publisher. URL takes a redis:// or
// rediss:// URL; a bare host:port is accepted as Addr. Password and DB, when
// set, override the URL's.
type RedisOptions struct {
	URL      string
	Addr     string
	Password string
	DB       int
	Channel  string
}

// Redis publishes signals as JSON on a pub/sub channel.
type Redis struct {
	client  *redis.Client
	channel string
}

// NewRedis builds a publisher. The connection is established lazily by the
// client, so a Redis outage only shows up as Notify errors.
func NewRedis(opts RedisOptions) (*Redis, error) {
	ro := &redis.Options{Addr: opts.Addr}
	switch {
	case strings.Contains(opts.URL, "://"):
		parsed, err := redis.ParseURL(opts.URL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		ro = parsed
	case opts.URL != "":
		ro.Addr = opts.URL
	}
	if opts.Password != "" {
		ro.Password = opts.Password
	}
	if opts.DB != 0 {
		ro.DB = opts.DB
	}
	ro.PoolSize = 4
	ro.DialTimeout = 2 * time.Second
	ro.ReadTimeout = 2 * time.Second
	ro.WriteTimeout = 2 * time.Second

	ch := opts.Channel
	if ch == "" {
		ch = "storefront:low-stock"
	}
	return &Redis{client: redis.NewClient(ro), channel: ch}, nil
}

// Addr is the server address the client dials.
func (r *Redis) Addr() string { return r.client.Options().Addr }

// Ping checks connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *Redis) Notify(ctx context.Context, sig model.LowStockSignal) error {
	payload, err := json.Marshal(sig)
	if err != nil {
		return fmt.Errorf("marshal low stock signal: %w", err)
	}
	if err := r.client.Publish(ctx, r.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish low stock signal to %s: %w", r.channel, err)
	}
	return nil
}

// Close releases the client's connections.
func (r *Redis) Close() error { return r.client.Close() }
