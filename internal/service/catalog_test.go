package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/game_store/internal/events"
	"github.com/Skotchmaster/game_store/internal/models"
)

func TestCatalogService_CreateGame_Validation(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	ctx := context.Background()

	tests := []struct {
		name string
		in   models.GamePatch
	}{
		{name: "missing title", in: models.GamePatch{Price: ptr(10.0)}},
		{name: "blank title", in: models.GamePatch{Title: ptr("   ")}},
		{name: "negative price", in: models.GamePatch{Title: ptr("x"), Price: ptr(-1.0)}},
		{name: "rating too high", in: models.GamePatch{Title: ptr("x"), Rating: ptr(10.5)}},
		{name: "negative rating", in: models.GamePatch{Title: ptr("x"), Rating: ptr(-0.1)}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Catalog.CreateGame(ctx, tt.in)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
	assert.Empty(t, e.Events.Types(events.TopicGames))
}

func TestCatalogService_CreateGame_DefaultsAndSideEffects(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	s := &fakeSearcher{}
	e.Catalog.Search = s
	ctx := context.Background()

	g, err := e.Catalog.CreateGame(ctx, models.GamePatch{
		Title:    ptr("  Celeste "),
		Price:    ptr(19.99),
		Platform: ptr([]string{"PC", "Switch"}),
	})
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, g.ID)
	assert.Equal(t, "Celeste", g.Title)
	assert.True(t, g.InStock)
	assert.Equal(t, []string{events.GameCreated}, e.Events.Types(events.TopicGames))
	assert.Equal(t, 1, e.Cache.Count())
	assert.Equal(t, []uuid.UUID{g.ID}, s.indexed)

	got, err := e.Catalog.GetGame(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"PC", "Switch"}, got.Platform)
}

func TestCatalogService_UpdateAndDelete(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	s := &fakeSearcher{}
	e.Catalog.Search = s
	ctx := context.Background()
	g := e.game(t, "Hades", 24.99, true)

	updated, err := e.Catalog.UpdateGame(ctx, g.ID, models.GamePatch{Price: ptr(19.99), InStock: ptr(false)})
	require.NoError(t, err)
	assert.Equal(t, "Hades", updated.Title)
	assert.Equal(t, 19.99, updated.Price)
	assert.False(t, updated.InStock)

	_, err = e.Catalog.UpdateGame(ctx, g.ID, models.GamePatch{Title: ptr("")})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = e.Catalog.UpdateGame(ctx, uuid.New(), models.GamePatch{Price: ptr(1.0)})
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, e.Catalog.DeleteGame(ctx, g.ID))
	assert.ErrorIs(t, e.Catalog.DeleteGame(ctx, g.ID), ErrNotFound)

	_, err = e.Catalog.GetGame(ctx, g.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Equal(t, []string{events.GameUpdated, events.GameDeleted}, e.Events.Types(events.TopicGames))
	assert.Equal(t, 2, e.Cache.Count())
	assert.Equal(t, []uuid.UUID{g.ID}, s.deleted)
}

func TestCatalogService_PublishFailureDoesNotFailWrite(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	e.Events.Err = errBoom

	g, err := e.Catalog.CreateGame(context.Background(), models.GamePatch{Title: ptr("Tunic")})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, g.ID)
}

func TestCatalogService_Search(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	ctx := context.Background()
	e.game(t, "Stardew Valley", 14.99, true)
	e.game(t, "Valheim", 19.99, true)
	e.game(t, "Doom", 9.99, true)

	_, err := e.Catalog.SearchGames(ctx, "  ", 0, 10)
	assert.ErrorIs(t, err, ErrValidation)

	t.Run("database fallback", func(t *testing.T) {
		res, err := e.Catalog.SearchGames(ctx, "val", 0, 10)
		require.NoError(t, err)
		assert.EqualValues(t, 2, res.Total)
		assert.Len(t, res.Games, 2)
	})

	t.Run("engine result", func(t *testing.T) {
		c := *e.Catalog
		c.Search = &fakeSearcher{total: 42, games: []models.Game{{Title: "from index"}}}
		res, err := c.SearchGames(ctx, "val", 0, 10)
		require.NoError(t, err)
		assert.EqualValues(t, 42, res.Total)
		assert.Equal(t, "from index", res.Games[0].Title)
	})

	t.Run("engine failure falls back", func(t *testing.T) {
		c := *e.Catalog
		c.Search = &fakeSearcher{err: errBoom}
		res, err := c.SearchGames(ctx, "doom", 0, 10)
		require.NoError(t, err)
		assert.EqualValues(t, 1, res.Total)
	})
}

func TestCatalogService_FeaturedAndFacets(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	ctx := context.Background()
	for i, r := range []float64{9.5, 8.0, 7.9, 8.8, 9.0, 8.1, 8.2, 8.3} {
		_, err := e.Catalog.CreateGame(ctx, models.GamePatch{
			Title:    ptr("Game " + string(rune('A'+i))),
			Rating:   ptr(r),
			Genre:    ptr("RPG"),
			Platform: ptr([]string{"PC"}),
		})
		require.NoError(t, err)
	}

	featured, err := e.Catalog.Featured(ctx)
	require.NoError(t, err)
	assert.Len(t, featured, FeaturedLimit)
	for _, g := range featured {
		assert.GreaterOrEqual(t, g.Rating, FeaturedMinRating)
	}

	f, err := e.Catalog.Facets(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"RPG"}, f.Genres)
	assert.Equal(t, []string{"PC"}, f.Platforms)
}
