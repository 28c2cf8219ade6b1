package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/game_store/pkg/logging"
	"github.com/Skotchmaster/game_store/pkg/tokens"
)

const (
	CtxSession = "session"
	CtxUserID  = "user_id"
	CtxRole    = "role"
)

// Guard verifies the session token carried by the auth-token cookie
// or, for non-browser clients, an Authorization: Bearer header.
type Guard struct {
	JWTSecret     []byte
	SecureCookies bool
}

func NewGuard(secret []byte, secureCookies bool) *Guard {
	return &Guard{JWTSecret: secret, SecureCookies: secureCookies}
}

type ValidatorFunc func(claims *tokens.SessionClaims) error

func (g *Guard) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return g.requireAuthWithValidator(next, nil)
}

func (g *Guard) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return g.requireAuthWithValidator(next, func(claims *tokens.SessionClaims) error {
		if !claims.IsAdmin() {
			return echo.NewHTTPError(http.StatusForbidden, "admin access required")
		}
		return nil
	})
}

// Optional attaches the session when a valid token is present and never rejects.
func (g *Guard) Optional(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if raw := TokenFromRequest(c); raw != "" {
			if claims, err := tokens.SessionClaimsFromToken(raw, g.JWTSecret); err == nil {
				setUserContext(c, claims)
			}
		}
		return next(c)
	}
}

func (g *Guard) requireAuthWithValidator(next echo.HandlerFunc, validator ValidatorFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		l := logging.FromContext(c.Request().Context()).With("middleware", "auth_guard")

		raw := TokenFromRequest(c)
		if raw == "" {
			l.Warn("auth_rejected", "status", 401, "reason", "missing session token")
			return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
		}

		claims, err := tokens.SessionClaimsFromToken(raw, g.JWTSecret)
		if err != nil {
			l.Warn("auth_rejected", "status", 401, "reason", "invalid session token", "error", err)
			c.SetCookie(tokens.DeleteCookie(g.SecureCookies))
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid session token")
		}

		if validator != nil {
			if vErr := validator(claims); vErr != nil {
				l.Warn("auth_rejected", "status", 403, "reason", "insufficient role", "user_id", claims.UserID(), "role", claims.Role)
				return vErr
			}
		}

		setUserContext(c, claims)
		return next(c)
	}
}

func TokenFromRequest(c echo.Context) string {
	if ck, err := c.Cookie(tokens.CookieName); err == nil && ck.Value != "" {
		return ck.Value
	}
	h := c.Request().Header.Get(echo.HeaderAuthorization)
	if scheme, tok, ok := strings.Cut(h, " "); ok && strings.EqualFold(scheme, "bearer") {
		return strings.TrimSpace(tok)
	}
	return ""
}

func ClaimsFrom(c echo.Context) (*tokens.SessionClaims, bool) {
	claims, ok := c.Get(CtxSession).(*tokens.SessionClaims)
	return claims, ok && claims != nil
}

func setUserContext(c echo.Context, claims *tokens.SessionClaims) {
	c.Set(CtxSession, claims)
	c.Set(CtxUserID, claims.Subject)
	c.Set(CtxRole, claims.Role)
}
