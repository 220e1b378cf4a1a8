package counter

import (
	"context"
	"net/url"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/sysresolve/pkg/errors"
)

// DefaultRedisKey is used when the counter URL has no key parameter.
const DefaultRedisKey = "sysresolve:bisect"

// Reads and writes are retried on connection errors. Decrements are not:
// the script may already have run when the reply is lost.
const (
	redisAttempts = 3
	redisDelay    = 50 * time.Millisecond
)

// decrementScript returns the value before decrementing and only
// decrements positive values. A missing key reads as zero.
var decrementScript = redis.NewScript(`
local v = tonumber(redis.call("GET", KEYS[1]) or "0")
if v == nil then
  return redis.error_reply("malformed counter value")
end
if v > 0 then
  redis.call("SET", KEYS[1], v - 1)
end
return v
`)

// RedisCounter keeps the value in a Redis key.
type RedisCounter struct {
	client *redis.Client
	key    string
}

var _ Counter = (*RedisCounter)(nil)

// NewRedisCounter parses a URL of the form
// redis://[user:pass@]host:port/db?key=name and returns a counter. The
// key query parameter is stripped before the URL is handed to the client.
func NewRedisCounter(rawURL string) (*RedisCounter, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse counter URL")
	}
	q := u.Query()
	key := q.Get("key")
	if key == "" {
		key = DefaultRedisKey
	}
	q.Del("key")
	u.RawQuery = q.Encode()

	opts, err := redis.ParseURL(u.String())
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse counter URL")
	}
	return NewRedisCounterWithClient(redis.NewClient(opts), key), nil
}

// NewRedisCounterWithClient returns a counter using an existing client.
func NewRedisCounterWithClient(client *redis.Client, key string) *RedisCounter {
	return &RedisCounter{client: client, key: key}
}

// Key returns the Redis key holding the value.
func (c *RedisCounter) Key() string { return c.key }

func (c *RedisCounter) TryDecrement(ctx context.Context) (int, error) {
	v, err := decrementScript.Run(ctx, c.client, []string{c.key}).Int()
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeCounterIO, err, "decrement counter %s", c.key)
	}
	return v, nil
}

func (c *RedisCounter) Value(ctx context.Context) (int, error) {
	var v int
	err := retry(ctx, redisAttempts, redisDelay, func() error {
		n, err := c.client.Get(ctx, c.key).Int()
		if err == redis.Nil {
			v = 0
			return nil
		}
		v = n
		return classify(err)
	})
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeCounterIO, err, "read counter %s", c.key)
	}
	return v, nil
}

func (c *RedisCounter) Set(ctx context.Context, v int) error {
	if v < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "counter value must not be negative, got %d", v)
	}
	err := retry(ctx, redisAttempts, redisDelay, func() error {
		return classify(c.client.Set(ctx, c.key, v, 0).Err())
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeCounterIO, err, "write counter %s", c.key)
	}
	return nil
}

// Close releases the client connection pool.
func (c *RedisCounter) Close() error { return c.client.Close() }
