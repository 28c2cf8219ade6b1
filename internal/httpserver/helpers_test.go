package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/game_store/internal/cart"
	"github.com/Skotchmaster/game_store/internal/dbtest"
	"github.com/Skotchmaster/game_store/internal/events"
	"github.com/Skotchmaster/game_store/internal/media"
	"github.com/Skotchmaster/game_store/internal/models"
	"github.com/Skotchmaster/game_store/internal/queue"
	"github.com/Skotchmaster/game_store/internal/repo"
	"github.com/Skotchmaster/game_store/internal/service"
	"github.com/Skotchmaster/game_store/pkg/httperror"
	"github.com/Skotchmaster/game_store/pkg/logging"
	middleware "github.com/Skotchmaster/game_store/pkg/middleware/auth"
	"github.com/Skotchmaster/game_store/pkg/middleware/cache"
	loggingmw "github.com/Skotchmaster/game_store/pkg/middleware/logging"
	"github.com/Skotchmaster/game_store/pkg/tokens"
)

var testSecret = []byte("test-jwt-secret")

type testEnv struct {
	T        *testing.T
	E        *echo.Echo
	DB       *gorm.DB
	Repo     *repo.GormRepo
	Events   *events.Recorder
	Receipts *receiptSink
	Deps     *Deps
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return buildTestEnv(t, nil)
}

// newCachedTestEnv wires the catalog response cache to an in-process Redis.
func newCachedTestEnv(t *testing.T) *testEnv {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return buildTestEnv(t, cache.New(rdb, time.Minute, "games"))
}

func buildTestEnv(t *testing.T, ch *cache.Cache) *testEnv {
	t.Helper()

	db := dbtest.Open(t)
	r := &repo.GormRepo{DB: db}
	rec := &events.Recorder{}
	receipts := &receiptSink{}

	catalog := &service.CatalogService{Repo: r, Events: rec}
	if ch != nil {
		catalog.Cache = ch
	}
	purchases := &service.PurchaseService{Repo: r, Events: rec, Receipts: receipts}
	authSvc := &service.AuthService{Repo: r, JWTSecret: testSecret, Events: rec}

	deps := &Deps{
		DB:        db,
		Catalog:   &CatalogHTTP{Svc: catalog},
		Auth:      &AuthHTTP{Svc: authSvc},
		Purchases: &PurchaseHTTP{Svc: purchases},
		Cart: &CartHTTP{Svc: &service.CartService{
			Store:     cart.NewMemoryStore(),
			Catalog:   catalog,
			Purchases: purchases,
		}},
		Upload: &UploadHTTP{},
		Guard:  middleware.NewGuard(testSecret, false),
		Cache:  ch,
	}

	e := echo.New()
	e.HTTPErrorHandler = httperror.Handler
	e.Use(loggingmw.RequestLogger(logging.NewWithWriter(io.Discard, "error")))
	Register(e, deps)

	return &testEnv{T: t, E: e, DB: db, Repo: r, Events: rec, Receipts: receipts, Deps: deps}
}

func (env *testEnv) doJSONRequest(method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	env.T.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(env.T, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}

	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	return rec
}

// sessionCookie stores a user with the given role and returns its auth cookie.
func (env *testEnv) sessionCookie(email, role string) (*http.Cookie, *models.User) {
	env.T.Helper()

	u := &models.User{Email: email, PasswordHash: "x", Name: "Test " + role, Role: role}
	require.NoError(env.T, env.Repo.CreateUser(context.Background(), u))

	token, exp, err := tokens.IssueSession(service.SessionOf(u), testSecret, time.Now())
	require.NoError(env.T, err)
	return tokens.CreateCookie(token, exp, false), u
}

func (env *testEnv) seedGame(title string, price float64, inStock bool) *models.Game {
	env.T.Helper()
	g, err := env.Repo.CreateGame(context.Background(), &models.Game{Title: title, Price: price, InStock: inStock, Genre: "Indie"})
	require.NoError(env.T, err)
	return g
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[map[string]string](t, rec)["error"]
}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == name {
			return ck
		}
	}
	return nil
}

type receiptSink struct {
	mu  sync.Mutex
	got []queue.Receipt
}

func (s *receiptSink) PublishReceipt(_ context.Context, r queue.Receipt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.got = append(s.got, r)
	return nil
}

func (s *receiptSink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.got)
}

type fakeUploader struct {
	got []byte
}

func (f *fakeUploader) Upload(_ context.Context, r io.Reader) (*media.Result, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	f.got = b
	return &media.Result{URL: "https://cdn.example.com/cover.png", PublicID: "covers/cover"}, nil
}
