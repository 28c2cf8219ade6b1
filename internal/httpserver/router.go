package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"

	"github.com/Skotchmaster/game_store/pkg/middleware/auth"
	"github.com/Skotchmaster/game_store/pkg/middleware/cache"
	"github.com/Skotchmaster/game_store/pkg/middleware/ratelimit"
)

type Deps struct {
	DB *gorm.DB

	Catalog   *CatalogHTTP
	Auth      *AuthHTTP
	Purchases *PurchaseHTTP
	Cart      *CartHTTP
	Upload    *UploadHTTP

	Guard     *middleware.Guard
	Cache     *cache.Cache
	RateLimit *ratelimit.FixedWindow
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", d.ready)

	guard := d.Guard
	cached := d.Cache.Middleware()
	limited := d.RateLimit.Middleware()

	games := e.Group("/games")
	games.GET("", d.Catalog.ListGames, cached)
	games.GET("/featured", d.Catalog.Featured, cached)
	games.GET("/new-releases", d.Catalog.NewReleases, cached)
	games.GET("/facets", d.Catalog.Facets, cached)
	games.GET("/search", d.Catalog.Search, cached)
	games.GET("/:id", d.Catalog.GetGame, cached)

	admin := games.Group("", guard.RequireAdmin)
	admin.POST("", d.Catalog.CreateGame)
	admin.PUT("/:id", d.Catalog.UpdateGame)
	admin.DELETE("/:id", d.Catalog.DeleteGame)

	e.POST("/upload", d.Upload.Upload, guard.RequireAdmin, echomw.BodyLimit("11M"))

	authGroup := e.Group("/auth")
	authGroup.POST("/register", d.Auth.Register, limited)
	authGroup.POST("/login", d.Auth.Login, limited)
	authGroup.POST("/logout", d.Auth.Logout)
	authGroup.GET("/me", d.Auth.Me, guard.RequireAuth)
	e.POST("/users", d.Auth.CreateUser, limited)

	purchases := e.Group("/purchases", guard.RequireAuth)
	purchases.POST("", d.Purchases.Create)
	purchases.GET("", d.Purchases.List)

	cartGroup := e.Group("/cart", guard.Optional)
	cartGroup.GET("", d.Cart.Get)
	cartGroup.DELETE("", d.Cart.Clear)
	cartGroup.POST("/items", d.Cart.AddItem)
	cartGroup.PUT("/items/:gameId", d.Cart.SetQuantity)
	cartGroup.DELETE("/items/:gameId", d.Cart.RemoveItem)
	cartGroup.POST("/checkout", d.Cart.Checkout, guard.RequireAuth)
}

func (d *Deps) ready(c echo.Context) error {
	if d.DB == nil {
		return c.NoContent(http.StatusOK)
	}
	sqlDB, err := d.DB.DB()
	if err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "database unavailable")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "database unavailable")
	}
	return c.NoContent(http.StatusOK)
}
