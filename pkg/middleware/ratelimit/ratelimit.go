package ratelimit

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/Skotchmaster/game_store/pkg/logging"
)

// FixedWindow allows Limit requests per client IP and route within each Window.
// Redis errors let the request through.
type FixedWindow struct {
	rdb    *redis.Client
	Limit  int
	Window time.Duration
	Prefix string
	now    func() time.Time
}

func New(rdb *redis.Client, limit int, window time.Duration) *FixedWindow {
	if window <= 0 {
		window = time.Minute
	}
	return &FixedWindow{rdb: rdb, Limit: limit, Window: window, Prefix: "rl", now: time.Now}
}

func (f *FixedWindow) key(c echo.Context, slot int64) string {
	ip := c.RealIP()
	if ip == "" {
		ip = "unknown"
	}
	return fmt.Sprintf("%s:%s %s:%s:%d", f.Prefix, c.Request().Method, c.Path(), ip, slot)
}

func (f *FixedWindow) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		if f == nil || f.rdb == nil || f.Limit <= 0 {
			return next
		}
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			now := f.now()
			slot := now.UnixNano() / int64(f.Window)
			key := f.key(c, slot)

			var incr *redis.IntCmd
			_, err := f.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
				incr = p.Incr(ctx, key)
				p.Expire(ctx, key, f.Window)
				return nil
			})
			if err != nil {
				logging.FromContext(ctx).Warn("ratelimit_unavailable", "error", err)
				return next(c)
			}

			count := incr.Val()
			remaining := int64(f.Limit) - count
			if remaining < 0 {
				remaining = 0
			}
			c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(f.Limit))
			c.Response().Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

			if count > int64(f.Limit) {
				windowEnd := time.Unix(0, (slot+1)*int64(f.Window))
				retry := int(windowEnd.Sub(now).Seconds()) + 1
				c.Response().Header().Set("Retry-After", strconv.Itoa(retry))
				logging.FromContext(ctx).Warn("ratelimit_exceeded", "status", 429, "key", key)
				return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
			}
			return next(c)
		}
	}
}
