package httpserver

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/game_store/internal/service"
	"github.com/Skotchmaster/game_store/pkg/logging"
	middleware "github.com/Skotchmaster/game_store/pkg/middleware/auth"
	"github.com/Skotchmaster/game_store/pkg/tokens"
)

type PurchaseHTTP struct {
	Svc *service.PurchaseService
}

// sessionUser returns the verified claims and the caller's id.
func sessionUser(c echo.Context) (*tokens.SessionClaims, uuid.UUID, error) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		return nil, uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	id, err := uuid.Parse(claims.UserID())
	if err != nil {
		return nil, uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "invalid session token")
	}
	return claims, id, nil
}

func (h *PurchaseHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "purchases.create")

	_, userID, err := sessionUser(c)
	if err != nil {
		return err
	}

	var req CreatePurchaseRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("create_purchase_failed", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	p, err := h.Svc.Create(ctx, userID, req.Items)
	if err != nil {
		return fail(l, "create_purchase_failed", err)
	}
	l.Info("create_purchase_success", "purchase_id", p.ID.String(), "total", p.TotalAmount)
	return c.JSON(http.StatusCreated, p)
}

func (h *PurchaseHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "purchases.list")

	claims, userID, err := sessionUser(c)
	if err != nil {
		return err
	}

	list, err := h.Svc.List(ctx, userID, claims.IsAdmin(), c.QueryParam("userId"))
	if err != nil {
		return fail(l, "list_purchases_failed", err)
	}
	return c.JSON(http.StatusOK, list)
}
