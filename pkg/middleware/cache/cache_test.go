package cache

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func newServer(ch *Cache, hits *int) *echo.Echo {
	e := echo.New()
	e.GET("/games", func(c echo.Context) error {
		*hits++
		return c.JSON(http.StatusOK, map[string]int{"n": *hits})
	}, ch.Middleware())
	e.GET("/games/:id", func(c echo.Context) error {
		*hits++
		return c.JSON(http.StatusOK, map[string]string{"id": c.Param("id")})
	}, ch.Middleware())
	e.GET("/games/:id/missing", func(c echo.Context) error {
		*hits++
		return echo.NewHTTPError(http.StatusNotFound, "game not found")
	}, ch.Middleware())
	return e
}

func get(e *echo.Echo, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestCache_DisabledWithoutRedis(t *testing.T) {
	t.Parallel()

	hits := 0
	ch := New(nil, time.Minute, "")
	e := newServer(ch, &hits)

	get(e, "/games?genre=RPG")
	rec := get(e, "/games?genre=RPG")
	assert.Equal(t, 2, hits)
	assert.Empty(t, rec.Header().Get("X-Cache"))
	require.NoError(t, ch.Invalidate(context.Background()))

	var nilCache *Cache
	require.NoError(t, nilCache.Invalidate(context.Background()))
}

func TestCache_HitAndInvalidate(t *testing.T) {
	t.Parallel()

	_, rdb := newRedis(t)
	hits := 0
	ch := New(rdb, time.Minute, "games")
	e := newServer(ch, &hits)

	first := get(e, "/games?genre=RPG")
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))

	second := get(e, "/games?genre=RPG")
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, 1, hits)

	other := get(e, "/games?genre=Indie")
	assert.Equal(t, "MISS", other.Header().Get("X-Cache"))
	assert.Equal(t, 2, hits)

	require.NoError(t, ch.Invalidate(context.Background()))
	third := get(e, "/games?genre=RPG")
	assert.Equal(t, "MISS", third.Header().Get("X-Cache"))
	assert.Equal(t, 3, hits)
}

func TestCache_KeysByRequestPath(t *testing.T) {
	t.Parallel()

	_, rdb := newRedis(t)
	hits := 0
	e := newServer(New(rdb, time.Minute, "games"), &hits)

	a := get(e, "/games/alpha")
	b := get(e, "/games/beta")
	assert.JSONEq(t, `{"id":"alpha"}`, a.Body.String())
	assert.JSONEq(t, `{"id":"beta"}`, b.Body.String())
	assert.Equal(t, "MISS", b.Header().Get("X-Cache"))

	again := get(e, "/games/beta")
	assert.Equal(t, "HIT", again.Header().Get("X-Cache"))
	assert.JSONEq(t, `{"id":"beta"}`, again.Body.String())
	assert.Equal(t, 2, hits)
}

func TestCache_SkipsErrorResponses(t *testing.T) {
	t.Parallel()

	_, rdb := newRedis(t)
	hits := 0
	e := newServer(New(rdb, time.Minute, "games"), &hits)

	assert.Equal(t, http.StatusNotFound, get(e, "/games/x/missing").Code)
	assert.Equal(t, http.StatusNotFound, get(e, "/games/x/missing").Code)
	assert.Equal(t, 2, hits)
}

func TestCache_ExpiresAfterTTL(t *testing.T) {
	t.Parallel()

	mr, rdb := newRedis(t)
	hits := 0
	e := newServer(New(rdb, time.Minute, "games"), &hits)

	get(e, "/games/alpha")
	mr.FastForward(2 * time.Minute)
	rec := get(e, "/games/alpha")
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	assert.Equal(t, 2, hits)
}
