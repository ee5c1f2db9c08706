package middleware

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/interview-scheduler/internal/config"
)

// cachedResponse is what a cache entry holds.  Body is base64 in JSON.
type cachedResponse struct {
	Status int         `json:"s"`
	Header http.Header `json:"h,omitempty"`
	Body   []byte      `json:"b,omitempty"`
}

// bodyRecorder tees the response body into a bounded buffer.
type bodyRecorder struct {
	http.ResponseWriter
	status    int
	body      bytes.Buffer
	max       int
	truncated bool
}

func (r *bodyRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *bodyRecorder) Write(p []byte) (int, error) {
	switch {
	case r.truncated:
	case r.max > 0 && r.body.Len()+len(p) > r.max:
		r.truncated = true
		r.body.Reset()
	default:
		r.body.Write(p)
	}
	return r.ResponseWriter.Write(p)
}

// responseCacheKey hashes the request parts selected by the key strategy.
// "user_route_query" keeps each caller's responses apart.
func responseCacheKey(cfg config.CacheConfig, c echo.Context) string {
	req := c.Request()
	var parts []string
	switch strings.ToLower(cfg.KeyStrategy) {
	case "route":
		parts = []string{c.Path()}
	case "method_route":
		parts = []string{req.Method, c.Path()}
	case "method_route_query":
		parts = []string{req.Method, c.Path(), req.URL.RawQuery}
	case "user_route_query":
		parts = []string{userKey(c), c.Path(), req.URL.RawQuery}
	default: // route_query
		parts = []string{c.Path(), req.URL.RawQuery}
	}
	sum := sha1.Sum([]byte(strings.Join(parts, "\x00")))
	return cfg.Prefix + ":" + hex.EncodeToString(sum[:])
}

func replay(c echo.Context, entry cachedResponse) {
	h := c.Response().Header()
	for k, vals := range entry.Header {
		if strings.EqualFold(k, echo.HeaderContentLength) {
			continue
		}
		h[k] = append([]string(nil), vals...)
	}
	h.Set("X-Cache", "HIT")
	c.Response().WriteHeader(entry.Status)
	if len(entry.Body) > 0 {
		_, _ = c.Response().Write(entry.Body)
	}
}

// NewRedisCache serves repeated reads of the configured methods from
// Redis.  Only 200 responses within MaxBodyBytes are stored.  It is a
// pass-through when disabled or without a Redis client.
func NewRedisCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !cfg.Methods[strings.ToUpper(c.Request().Method)] {
				return next(c)
			}
			ctx := c.Request().Context()
			key := responseCacheKey(cfg, c)

			if raw, err := rdb.Get(ctx, key).Bytes(); err == nil {
				var entry cachedResponse
				if json.Unmarshal(raw, &entry) == nil && entry.Status != 0 {
					replay(c, entry)
					return nil
				}
			}

			rec := &bodyRecorder{ResponseWriter: c.Response().Writer, status: http.StatusOK, max: cfg.MaxBodyBytes}
			c.Response().Writer = rec
			c.Response().Header().Set("X-Cache", "MISS")
			if err := next(c); err != nil {
				return err
			}
			if rec.status != http.StatusOK || rec.truncated {
				return nil
			}

			hdr := c.Response().Header().Clone()
			hdr.Del("X-Cache")
			raw, err := json.Marshal(cachedResponse{Status: rec.status, Header: hdr, Body: rec.body.Bytes()})
			if err != nil {
				return nil
			}
			if err := rdb.Set(context.WithoutCancel(ctx), key, raw, ttl).Err(); err != nil {
				log.Printf("cache: store %s: %v", c.Path(), err)
			}
			return nil
		}
	}
}

// PurgeCacheOnSuccess drops every cached response under cfg.Prefix after
// the wrapped handler answers 2xx.  The identity webhook uses it so a
// synced profile shows up in the next user listing.
func PurgeCacheOnSuccess(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := next(c); err != nil {
				return err
			}
			if s := c.Response().Status; s < 200 || s >= 300 {
				return nil
			}
			ctx := context.WithoutCancel(c.Request().Context())
			if err := purgePrefix(ctx, rdb, cfg.Prefix); err != nil {
				log.Printf("cache: purge %s: %v", cfg.Prefix, err)
			}
			return nil
		}
	}
}

func purgePrefix(ctx context.Context, rdb *redis.Client, prefix string) error {
	iter := rdb.Scan(ctx, 0, prefix+":*", 100).Iterator()
	var batch []string
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == 100 {
			if err := rdb.Del(ctx, batch...).Err(); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(batch) > 0 {
		return rdb.Del(ctx, batch...).Err()
	}
	return nil
}
