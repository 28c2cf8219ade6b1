package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/game_store/internal/cart"
	"github.com/Skotchmaster/game_store/internal/dbtest"
	"github.com/Skotchmaster/game_store/internal/events"
	"github.com/Skotchmaster/game_store/internal/models"
	"github.com/Skotchmaster/game_store/internal/queue"
	"github.com/Skotchmaster/game_store/internal/repo"
)

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

type env struct {
	Repo      *repo.GormRepo
	Events    *events.Recorder
	Receipts  *fakeReceipts
	Cache     *countingCache
	Catalog   *CatalogService
	Auth      *AuthService
	Purchases *PurchaseService
	Carts     *CartService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	r := &repo.GormRepo{DB: dbtest.Open(t)}
	rec := &events.Recorder{}
	receipts := &fakeReceipts{}
	cache := &countingCache{}
	now := func() time.Time { return fixedNow }

	e := &env{Repo: r, Events: rec, Receipts: receipts, Cache: cache}
	e.Catalog = &CatalogService{Repo: r, Events: rec, Cache: cache, Now: now}
	e.Auth = &AuthService{Repo: r, JWTSecret: []byte("test-jwt-secret"), Events: rec, Now: now}
	e.Purchases = &PurchaseService{Repo: r, Events: rec, Receipts: receipts, Now: now}
	e.Carts = &CartService{Store: cart.NewMemoryStore(), Catalog: e.Catalog, Purchases: e.Purchases}
	return e
}

func (e *env) game(t *testing.T, title string, price float64, inStock bool) *models.Game {
	t.Helper()
	g, err := e.Repo.CreateGame(context.Background(), &models.Game{Title: title, Price: price, InStock: inStock})
	if err != nil {
		t.Fatalf("seed game: %v", err)
	}
	return g
}

type fakeReceipts struct {
	mu  sync.Mutex
	got []queue.Receipt
	Err error
}

func (f *fakeReceipts) PublishReceipt(_ context.Context, r queue.Receipt) error {
	if f.Err != nil {
		return f.Err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.got = append(f.got, r)
	return nil
}

func (f *fakeReceipts) Receipts() []queue.Receipt {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]queue.Receipt(nil), f.got...)
}

type countingCache struct {
	mu sync.Mutex
	n  int
}

func (c *countingCache) Invalidate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n++
	return nil
}

func (c *countingCache) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}

type fakeSearcher struct {
	mu      sync.Mutex
	err     error
	total   int64
	games   []models.Game
	indexed []uuid.UUID
	deleted []uuid.UUID
}

func (f *fakeSearcher) Search(context.Context, string, int, int) (int64, []models.Game, error) {
	if f.err != nil {
		return 0, nil, f.err
	}
	return f.total, f.games, nil
}

func (f *fakeSearcher) IndexGame(_ context.Context, g models.Game) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.indexed = append(f.indexed, g.ID)
	return nil
}

func (f *fakeSearcher) DeleteGame(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	return nil
}

var errBoom = errors.New("boom")

func ptr[T any](v T) *T { return &v }
