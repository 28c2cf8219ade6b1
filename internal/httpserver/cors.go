package httpserver

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

// CORS allows credentialed cross-origin requests only from the listed
// origins. With no origins configured any origin may call the API, but
// browsers will not attach cookies.
func CORS(origins []string) echo.MiddlewareFunc {
	cfg := echomw.CORSConfig{
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization, "X-CSRF-Token"},
	}
	if len(origins) > 0 {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	return echomw.CORSWithConfig(cfg)
}
