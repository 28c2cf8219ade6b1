package httpserver

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/game_store/internal/models"
	"github.com/Skotchmaster/game_store/internal/repo"
	"github.com/Skotchmaster/game_store/internal/service"
	"github.com/Skotchmaster/game_store/pkg/logging"
)

type CatalogHTTP struct {
	Svc *service.CatalogService
}

func parseGameID(c echo.Context) (uuid.UUID, error) {
	return uuid.Parse(c.Param("id"))
}

func (h *CatalogHTTP) ListGames(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.list_games")

	f := repo.GameFilter{
		Query:    c.QueryParam("q"),
		Genre:    c.QueryParam("genre"),
		Platform: c.QueryParam("platform"),
	}
	if s := c.QueryParam("inStock"); s != "" {
		v, err := strconv.ParseBool(s)
		if err != nil {
			l.Warn("list_games_failed", "status", 400, "reason", "inStock is not a boolean", "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, "inStock must be true or false")
		}
		f.InStock = &v
	}

	games, err := h.Svc.ListGames(ctx, f)
	if err != nil {
		return fail(l, "list_games_failed", err)
	}
	return c.JSON(http.StatusOK, games)
}

func (h *CatalogHTTP) Featured(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.featured")

	games, err := h.Svc.Featured(ctx)
	if err != nil {
		return fail(l, "featured_failed", err)
	}
	return c.JSON(http.StatusOK, games)
}

func (h *CatalogHTTP) NewReleases(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.new_releases")

	games, err := h.Svc.NewReleases(ctx)
	if err != nil {
		return fail(l, "new_releases_failed", err)
	}
	return c.JSON(http.StatusOK, games)
}

func (h *CatalogHTTP) Facets(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.facets")

	f, err := h.Svc.Facets(ctx)
	if err != nil {
		return fail(l, "facets_failed", err)
	}
	return c.JSON(http.StatusOK, f)
}

func (h *CatalogHTTP) Search(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.search")

	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), DefaultPageSize)
	offset, limit := pageWindow(page, size)

	res, err := h.Svc.SearchGames(ctx, c.QueryParam("q"), offset, limit)
	if err != nil {
		return fail(l, "search_failed", err)
	}
	l.Info("search_success", "total", res.Total)
	return c.JSON(http.StatusOK, res)
}

func (h *CatalogHTTP) GetGame(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.get_game")

	id, err := parseGameID(c)
	if err != nil {
		l.Warn("get_game_failed", "status", 400, "reason", "id is not a uuid", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid game id")
	}

	game, err := h.Svc.GetGame(ctx, id)
	if err != nil {
		return fail(l, "get_game_failed", err)
	}
	return c.JSON(http.StatusOK, game)
}

func (h *CatalogHTTP) CreateGame(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.create_game")

	var req models.GamePatch
	if err := c.Bind(&req); err != nil {
		l.Warn("create_game_failed", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	game, err := h.Svc.CreateGame(ctx, req)
	if err != nil {
		return fail(l, "create_game_failed", err)
	}
	l.Info("create_game_success", "game_id", game.ID.String())
	return c.JSON(http.StatusCreated, game)
}

func (h *CatalogHTTP) UpdateGame(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.update_game")

	id, err := parseGameID(c)
	if err != nil {
		l.Warn("update_game_failed", "status", 400, "reason", "id is not a uuid", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid game id")
	}

	var req models.GamePatch
	if err := c.Bind(&req); err != nil {
		l.Warn("update_game_failed", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	game, err := h.Svc.UpdateGame(ctx, id, req)
	if err != nil {
		return fail(l, "update_game_failed", err)
	}
	l.Info("update_game_success", "game_id", id.String())
	return c.JSON(http.StatusOK, game)
}

func (h *CatalogHTTP) DeleteGame(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.delete_game")

	id, err := parseGameID(c)
	if err != nil {
		l.Warn("delete_game_failed", "status", 400, "reason", "id is not a uuid", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid game id")
	}

	if err := h.Svc.DeleteGame(ctx, id); err != nil {
		return fail(l, "delete_game_failed", err)
	}
	l.Info("delete_game_success", "game_id", id.String())
	return c.NoContent(http.StatusNoContent)
}
