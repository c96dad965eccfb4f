// Package ratelimit provides a Redis-backed token-bucket limiter for the
// credential endpoints. With no Redis client configured the middleware is a
// pass-through.
package ratelimit

import (
	"fmt"
	"math"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

type Config struct {
	Enabled    bool
	Capacity   int
	RefillMs   int
	TTLSeconds int
}

// The bucket state lives in a Redis hash so concurrent requests across
// instances share one budget; the Lua script keeps refill-and-take atomic.
var bucketScript = redis.NewScript(`
	local key = KEYS[1]
	local now_ms = tonumber(ARGV[1])
	local capacity = tonumber(ARGV[2])
	local interval_ms = tonumber(ARGV[3])
	local ttl_seconds = tonumber(ARGV[4])

	local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
	local tokens = tonumber(state[1])
	local last_refill = tonumber(state[2])

	if tokens == nil or last_refill == nil then
		tokens = capacity
		last_refill = now_ms
	end

	if interval_ms > 0 then
		local elapsed = math.max(0, now_ms - last_refill)
		local intervals = math.floor(elapsed / interval_ms)
		if intervals > 0 then
			tokens = math.min(capacity, tokens + intervals)
			last_refill = last_refill + (intervals * interval_ms)
		end
	end

	local allowed = 0
	local retry_after_ms = 0
	if tokens > 0 then
		allowed = 1
		tokens = tokens - 1
	else
		retry_after_ms = math.max(0, interval_ms - (now_ms - last_refill))
	end

	redis.call('HSET', key, 'tokens', tokens, 'last_refill_ms', last_refill)
	redis.call('EXPIRE', key, ttl_seconds)

	return { allowed, retry_after_ms }
`)

// New returns a fiber middleware limiting requests per client IP.
func New(cfg Config, rdb *redis.Client) fiber.Handler {
	if !cfg.Enabled || rdb == nil {
		return func(c *fiber.Ctx) error { return c.Next() }
	}

	ttl := cfg.TTLSeconds
	if ttl <= 0 {
		ttl = 600
	}

	return func(c *fiber.Ctx) error {
		key := "ratelimit:auth:" + c.IP()
		nowMs := time.Now().UnixMilli()

		res, err := bucketScript.Run(c.UserContext(), rdb,
			[]string{key}, nowMs, cfg.Capacity, cfg.RefillMs, ttl).Int64Slice()
		if err != nil || len(res) != 2 {
			// Limiter failures never take down login; fail open.
			return c.Next()
		}

		if res[0] == 1 {
			return c.Next()
		}

		retryAfterSec := int(math.Ceil(float64(res[1]) / 1000.0))
		if retryAfterSec < 1 {
			retryAfterSec = 1
		}
		c.Set(fiber.HeaderRetryAfter, fmt.Sprintf("%d", retryAfterSec))

		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate_limited"})
	}
}
