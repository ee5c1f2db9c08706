package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/interview-scheduler/internal/config"
)

// takeToken refills the bucket in whole intervals, then takes one token.
// KEYS[1] bucket; ARGV now_ms, capacity, refill, interval_ms, ttl_s.
// Reply: {allowed 0|1, tokens left, ms until the next refill}.
var takeToken = redis.NewScript(`
local b = redis.call('HMGET', KEYS[1], 'tokens', 'ts')
local now, cap, refill, every, ttl =
    tonumber(ARGV[1]), tonumber(ARGV[2]), tonumber(ARGV[3]), tonumber(ARGV[4]), tonumber(ARGV[5])
local left, ts = tonumber(b[1]), tonumber(b[2])
if left == nil or ts == nil then
    left, ts = cap, now
end
if every > 0 and now > ts then
    local n = math.floor((now - ts) / every)
    if n > 0 then
        left = math.min(cap, left + n * refill)
        ts = ts + n * every
    end
end
local ok, wait = 0, 0
if left >= 1 then
    ok, left = 1, left - 1
else
    wait = math.max(0, every - (now - ts))
end
redis.call('HSET', KEYS[1], 'tokens', left, 'ts', ts)
redis.call('EXPIRE', KEYS[1], ttl)
return {ok, left, wait}
`)

type bucketResult struct {
	allowed   bool
	remaining int64
	wait      time.Duration
}

func parseBucketResult(vals []int64) (bucketResult, bool) {
	if len(vals) != 3 {
		return bucketResult{}, false
	}
	return bucketResult{
		allowed:   vals[0] == 1,
		remaining: vals[1],
		wait:      time.Duration(vals[2]) * time.Millisecond,
	}, true
}

// retryAfterSeconds rounds up, so a client never retries too early.
func retryAfterSeconds(wait time.Duration) int {
	if wait <= 0 {
		return 0
	}
	return int((wait + time.Second - 1) / time.Second)
}

// NewTokenBucket limits requests with a Redis token bucket per key.  It
// is a pass-through when disabled or without a Redis client, and fails
// open on Redis errors.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	ttlSeconds := int64(cfg.TTL / time.Second)
	if ttlSeconds < 1 {
		ttlSeconds = 1
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := buildRateKey(cfg, c)
			vals, err := takeToken.Run(c.Request().Context(), rdb, []string{key},
				time.Now().UnixMilli(), cfg.Capacity, cfg.RefillTokens,
				cfg.RefillInterval.Milliseconds(), ttlSeconds).Int64Slice()
			res, ok := parseBucketResult(vals)
			if err != nil || !ok {
				if cfg.Debug {
					c.Logger().Warnf("ratelimit: key=%s vals=%v err=%v", key, vals, err)
				}
				return next(c)
			}

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(res.remaining, 10))
			if cfg.Debug {
				h.Set("X-RateLimit-Key", key)
			}
			if res.allowed {
				return next(c)
			}
			secs := retryAfterSeconds(res.wait)
			h.Set("Retry-After", strconv.Itoa(secs))
			return c.JSON(http.StatusTooManyRequests, echo.Map{
				"error":       "too many requests",
				"retry_after": secs,
			})
		}
	}
}

// buildRateKey joins the request parts named by the key strategy.
// Strategies are "ip", "user", "route" or an underscore-joined
// combination in that order; anything else uses all three.
func buildRateKey(cfg config.RateLimitConfig, c echo.Context) string {
	strategy := strings.ToLower(strings.TrimSpace(cfg.KeyStrategy))
	use := map[string]bool{}
	for _, p := range strings.Split(strategy, "_") {
		use[p] = true
	}
	if !use["ip"] && !use["user"] && !use["route"] {
		use = map[string]bool{"ip": true, "user": true, "route": true}
	}

	parts := []string{cfg.Prefix}
	if use["ip"] {
		ip := c.RealIP()
		if ip == "" {
			ip = "unknown"
		}
		parts = append(parts, "ip", ip)
	}
	if use["user"] {
		parts = append(parts, "user", userKey(c))
	}
	if use["route"] {
		parts = append(parts, "route", c.Request().Method+" "+c.Path())
	}
	return strings.Join(parts, ":")
}
