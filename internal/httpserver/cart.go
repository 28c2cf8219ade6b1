package httpserver

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/game_store/internal/cart"
	"github.com/Skotchmaster/game_store/internal/service"
	"github.com/Skotchmaster/game_store/pkg/logging"
	middleware "github.com/Skotchmaster/game_store/pkg/middleware/auth"
)

const (
	CartCookieName = "cart-id"
	cartCookieTTL  = 30 * 24 * time.Hour
)

type CartHTTP struct {
	Svc           *service.CartService
	SecureCookies bool
}

func (h *CartHTTP) cartCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     CartCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.SecureCookies,
		SameSite: http.SameSiteStrictMode,
	}
}

// open resolves the cart for this request. Anonymous visitors get a cart-id
// cookie; once a session is present the anonymous cart is merged and the
// cookie dropped.
func (h *CartHTTP) open(c echo.Context) (*cart.Container, error) {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.open")

	userID := ""
	if claims, ok := middleware.ClaimsFrom(c); ok {
		userID = claims.UserID()
	}

	cartID := ""
	if ck, err := c.Cookie(CartCookieName); err == nil {
		if _, perr := uuid.Parse(ck.Value); perr == nil {
			cartID = ck.Value
		}
	}

	if userID == "" && cartID == "" {
		cartID = uuid.NewString()
		c.SetCookie(h.cartCookie(cartID, int(cartCookieTTL.Seconds())))
	}

	cont, err := h.Svc.Open(ctx, userID, cartID)
	if err != nil {
		return nil, fail(l, "cart_open_failed", err)
	}
	if userID != "" && cartID != "" {
		c.SetCookie(h.cartCookie("", -1))
	}
	return cont, nil
}

func (h *CartHTTP) Get(c echo.Context) error {
	cont, err := h.open(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cont.View())
}

func (h *CartHTTP) AddItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add_item")

	var req AddCartItemRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("cart_add_failed", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	id, err := uuid.Parse(req.GameID)
	if err != nil {
		l.Warn("cart_add_failed", "status", 400, "reason", "gameId is not a uuid", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid gameId")
	}

	cont, err := h.open(c)
	if err != nil {
		return err
	}
	if err := h.Svc.AddGame(ctx, cont, id); err != nil {
		return fail(l, "cart_add_failed", err)
	}
	return c.JSON(http.StatusOK, cont.View())
}

func (h *CartHTTP) SetQuantity(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.set_quantity")

	id, err := uuid.Parse(c.Param("gameId"))
	if err != nil {
		l.Warn("cart_update_failed", "status", 400, "reason", "gameId is not a uuid", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid gameId")
	}
	var req SetQuantityRequest
	if err := c.Bind(&req); err != nil || req.Quantity == nil {
		l.Warn("cart_update_failed", "status", 400, "reason", "quantity is required", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "quantity is required")
	}

	cont, err := h.open(c)
	if err != nil {
		return err
	}
	if err := cont.SetQuantity(ctx, id, *req.Quantity); err != nil {
		return fail(l, "cart_update_failed", err)
	}
	return c.JSON(http.StatusOK, cont.View())
}

func (h *CartHTTP) RemoveItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.remove_item")

	id, err := uuid.Parse(c.Param("gameId"))
	if err != nil {
		l.Warn("cart_remove_failed", "status", 400, "reason", "gameId is not a uuid", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid gameId")
	}

	cont, err := h.open(c)
	if err != nil {
		return err
	}
	if err := cont.Remove(ctx, id); err != nil {
		return fail(l, "cart_remove_failed", err)
	}
	return c.JSON(http.StatusOK, cont.View())
}

func (h *CartHTTP) Clear(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.clear")

	cont, err := h.open(c)
	if err != nil {
		return err
	}
	if err := cont.Clear(ctx); err != nil {
		return fail(l, "cart_clear_failed", err)
	}
	return c.JSON(http.StatusOK, cont.View())
}

func (h *CartHTTP) Checkout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.checkout")

	_, userID, err := sessionUser(c)
	if err != nil {
		return err
	}
	cont, err := h.open(c)
	if err != nil {
		return err
	}

	p, err := h.Svc.Checkout(ctx, cont, userID)
	if err != nil {
		return fail(l, "checkout_failed", err)
	}
	l.Info("checkout_success", "purchase_id", p.ID.String(), "total", p.TotalAmount)
	return c.JSON(http.StatusCreated, p)
}
