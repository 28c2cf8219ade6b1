package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/game_store/internal/events"
	"github.com/Skotchmaster/game_store/internal/models"
	"github.com/Skotchmaster/game_store/internal/repo"
	"github.com/Skotchmaster/game_store/pkg/logging"
)

const (
	FeaturedMinRating = 8.0
	FeaturedLimit     = 6
	NewReleasesLimit  = 6
)

// Searcher is the full-text index kept next to the database.
type Searcher interface {
	Search(ctx context.Context, query string, from, size int) (int64, []models.Game, error)
	IndexGame(ctx context.Context, g models.Game) error
	DeleteGame(ctx context.Context, id uuid.UUID) error
}

type Invalidator interface {
	Invalidate(ctx context.Context) error
}

type CatalogService struct {
	Repo   *repo.GormRepo
	Events events.Publisher
	Search Searcher
	Cache  Invalidator
	Now    func() time.Time
}

type Facets struct {
	Genres    []string `json:"genres"`
	Platforms []string `json:"platforms"`
}

type SearchResult struct {
	Total int64         `json:"total"`
	Games []models.Game `json:"games"`
}

func (s *CatalogService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *CatalogService) ListGames(ctx context.Context, f repo.GameFilter) ([]models.Game, error) {
	return s.Repo.ListGames(ctx, f)
}

func (s *CatalogService) GetGame(ctx context.Context, id uuid.UUID) (*models.Game, error) {
	g, err := s.Repo.GetGame(ctx, id)
	if err != nil {
		if notFound(err) {
			return nil, fmt.Errorf("game not found: %w", ErrNotFound)
		}
		return nil, err
	}
	return g, nil
}

func (s *CatalogService) Featured(ctx context.Context) ([]models.Game, error) {
	return s.Repo.FeaturedGames(ctx, FeaturedMinRating, FeaturedLimit)
}

func (s *CatalogService) NewReleases(ctx context.Context) ([]models.Game, error) {
	return s.Repo.NewReleases(ctx, NewReleasesLimit)
}

func (s *CatalogService) Facets(ctx context.Context) (*Facets, error) {
	genres, platforms, err := s.Repo.Facets(ctx)
	if err != nil {
		return nil, err
	}
	return &Facets{Genres: genres, Platforms: platforms}, nil
}

// SearchGames queries the search index and falls back to the database
// when no index is configured or the index call fails.
func (s *CatalogService) SearchGames(ctx context.Context, q string, from, size int) (*SearchResult, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.search")

	q = strings.TrimSpace(q)
	if q == "" {
		return nil, fmt.Errorf("query is required: %w", ErrValidation)
	}

	if s.Search != nil {
		total, games, err := s.Search.Search(ctx, q, from, size)
		if err == nil {
			return &SearchResult{Total: total, Games: games}, nil
		}
		l.Warn("search_engine_failed", "reason", "falling back to database", "error", err)
	}

	total, games, err := s.Repo.SearchGames(ctx, q, from, size)
	if err != nil {
		return nil, err
	}
	return &SearchResult{Total: total, Games: games}, nil
}

func validateGame(g *models.Game) error {
	g.Title = strings.TrimSpace(g.Title)
	switch {
	case g.Title == "":
		return fmt.Errorf("title is required: %w", ErrValidation)
	case g.Price < 0:
		return fmt.Errorf("price cannot be negative: %w", ErrValidation)
	case g.Rating < 0 || g.Rating > 10:
		return fmt.Errorf("rating must be between 0 and 10: %w", ErrValidation)
	}
	return nil
}

// CreateGame builds a game from the supplied fields. InStock defaults to true.
func (s *CatalogService) CreateGame(ctx context.Context, in models.GamePatch) (*models.Game, error) {
	g := models.Game{InStock: true}
	in.Apply(&g)
	if err := validateGame(&g); err != nil {
		return nil, err
	}

	created, err := s.Repo.CreateGame(ctx, &g)
	if err != nil {
		return nil, err
	}
	s.afterWrite(ctx, events.GameCreated, created)
	return created, nil
}

func (s *CatalogService) UpdateGame(ctx context.Context, id uuid.UUID, patch models.GamePatch) (*models.Game, error) {
	if patch.Title != nil {
		t := strings.TrimSpace(*patch.Title)
		patch.Title = &t
	}
	// validate the merged result without touching the stored row
	candidate := models.Game{Title: "-"}
	patch.Apply(&candidate)
	if err := validateGame(&candidate); err != nil {
		return nil, err
	}

	g, err := s.Repo.UpdateGame(ctx, id, patch)
	if err != nil {
		if notFound(err) {
			return nil, fmt.Errorf("game not found: %w", ErrNotFound)
		}
		return nil, err
	}
	s.afterWrite(ctx, events.GameUpdated, g)
	return g, nil
}

func (s *CatalogService) DeleteGame(ctx context.Context, id uuid.UUID) error {
	if err := s.Repo.DeleteGame(ctx, id); err != nil {
		if notFound(err) {
			return fmt.Errorf("game not found: %w", ErrNotFound)
		}
		return err
	}
	s.afterWrite(ctx, events.GameDeleted, &models.Game{ID: id})
	return nil
}

func (s *CatalogService) afterWrite(ctx context.Context, typ string, g *models.Game) {
	l := logging.FromContext(ctx).With("svc", "catalog", "game_id", g.ID.String())

	publish(ctx, s.Events, events.TopicGames, g.ID.String(), events.NewGameEvent(typ, g, s.now()))

	if s.Cache != nil {
		if err := s.Cache.Invalidate(ctx); err != nil {
			l.Warn("cache_invalidate_failed", "error", err)
		}
	}

	if s.Search != nil {
		var err error
		if typ == events.GameDeleted {
			err = s.Search.DeleteGame(ctx, g.ID)
		} else {
			err = s.Search.IndexGame(ctx, *g)
		}
		if err != nil {
			l.Warn("search_index_failed", "event", typ, "error", err)
		}
	}
}
