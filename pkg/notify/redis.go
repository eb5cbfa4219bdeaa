package notify

import (
	"context"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/bubblechart/pkg/errors"
)

// RedisConfig configures a [RedisNotifier].
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`

	// Prefix namespaces both the value keys and the channels.
	Prefix string `toml:"prefix"`

	// TTL bounds how long the last value per key is kept. Zero keeps it
	// until overwritten.
	TTL time.Duration `toml:"ttl"`
}

// DefaultRedisPrefix is used when RedisConfig.Prefix is empty.
const DefaultRedisPrefix = "bubblechart:"

// RedisNotifier mirrors the host's input-value semantics on Redis: the last
// value of every key is SET under <prefix><key>, and every emission is
// PUBLISHed as a JSON [Event] on the channel <prefix><key>. Both commands
// run in one MULTI/EXEC transaction.
type RedisNotifier struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewRedisNotifier wraps an existing client.
func NewRedisNotifier(client redis.UniversalClient, cfg RedisConfig) *RedisNotifier {
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisNotifier{client: client, prefix: prefix, ttl: cfg.TTL}
}

// DialRedis connects to Redis and verifies the connection with PING.
func DialRedis(ctx context.Context, cfg RedisConfig) (*RedisNotifier, error) {
	if cfg.Addr == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "redis address is required")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "connect to redis at %s", cfg.Addr)
	}
	return NewRedisNotifier(client, cfg), nil
}

// Channel returns the channel and value key used for key.
func (n *RedisNotifier) Channel(key string) string {
	return n.prefix + key
}

// Emit stores the value and publishes the event.
func (n *RedisNotifier) Emit(ctx context.Context, key, value string, opts Options) error {
	payload, err := json.Marshal(NewEvent(key, value, opts))
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode event")
	}

	target := n.Channel(key)
	_, err = n.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, target, value, n.ttl)
		pipe.Publish(ctx, target, payload)
		return nil
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeNetwork, err, "publish %s", target)
	}
	return nil
}

// Close closes the underlying client.
func (n *RedisNotifier) Close() error {
	return n.client.Close()
}

var _ Notifier = (*RedisNotifier)(nil)
