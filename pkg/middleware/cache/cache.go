package cache

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/Skotchmaster/game_store/pkg/logging"
)

const maxBodyBytes = 1 << 20

// Cache stores successful GET responses in Redis. Keys embed a generation
// counter, so Invalidate drops every cached entry at once.
type Cache struct {
	rdb    *redis.Client
	ttl    time.Duration
	prefix string
}

func New(rdb *redis.Client, ttl time.Duration, prefix string) *Cache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if prefix == "" {
		prefix = "cache"
	}
	return &Cache{rdb: rdb, ttl: ttl, prefix: prefix}
}

type entry struct {
	Status      int    `json:"status"`
	ContentType string `json:"contentType"`
	Body        []byte `json:"body"`
}

type captureWriter struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
}

func (cw *captureWriter) WriteHeader(code int) {
	cw.status = code
	cw.ResponseWriter.WriteHeader(code)
}

func (cw *captureWriter) Write(b []byte) (int, error) {
	if cw.buf.Len() <= maxBodyBytes {
		cw.buf.Write(b)
	}
	return cw.ResponseWriter.Write(b)
}

func (ch *Cache) enabled() bool { return ch != nil && ch.rdb != nil }

func (ch *Cache) genKey() string { return ch.prefix + ":gen" }

func (ch *Cache) key(ctx context.Context, c echo.Context) string {
	gen, err := ch.rdb.Get(ctx, ch.genKey()).Int64()
	if err != nil {
		gen = 0
	}
	req := c.Request()
	sum := sha1.Sum([]byte(req.Method + " " + req.URL.Path + "?" + req.URL.RawQuery))
	return fmt.Sprintf("%s:%d:%x", ch.prefix, gen, sum[:])
}

func (ch *Cache) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !ch.enabled() || c.Request().Method != http.MethodGet {
				return next(c)
			}

			ctx := c.Request().Context()
			key := ch.key(ctx, c)

			if raw, err := ch.rdb.Get(ctx, key).Bytes(); err == nil {
				var e entry
				if json.Unmarshal(raw, &e) == nil {
					c.Response().Header().Set("X-Cache", "HIT")
					return c.Blob(e.Status, e.ContentType, e.Body)
				}
			}

			cw := &captureWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK}
			c.Response().Writer = cw
			c.Response().Header().Set("X-Cache", "MISS")

			if err := next(c); err != nil {
				return err
			}

			if cw.status == http.StatusOK && cw.buf.Len() <= maxBodyBytes {
				payload, err := json.Marshal(entry{
					Status:      cw.status,
					ContentType: c.Response().Header().Get(echo.HeaderContentType),
					Body:        cw.buf.Bytes(),
				})
				if err == nil {
					if err := ch.rdb.Set(context.WithoutCancel(ctx), key, payload, ch.ttl).Err(); err != nil {
						logging.FromContext(ctx).Warn("cache_store_failed", "error", err)
					}
				}
			}
			return nil
		}
	}
}

func (ch *Cache) Invalidate(ctx context.Context) error {
	if !ch.enabled() {
		return nil
	}
	return ch.rdb.Incr(ctx, ch.genKey()).Err()
}
