package httpserver

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func preflight(e *echo.Echo, origin string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodOptions, "/games", nil)
	req.Header.Set(echo.HeaderOrigin, origin)
	req.Header.Set(echo.HeaderAccessControlRequestMethod, http.MethodPost)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestCORS(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		origins     []string
		origin      string
		allowOrigin string
		credentials string
	}{
		{name: "configured origin", origins: []string{"https://shop.example.com"}, origin: "https://shop.example.com", allowOrigin: "https://shop.example.com", credentials: "true"},
		{name: "unknown origin", origins: []string{"https://shop.example.com"}, origin: "https://evil.example.com", allowOrigin: "", credentials: ""},
		{name: "no origins configured", origin: "https://any.example.com", allowOrigin: "*", credentials: ""},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e := echo.New()
			e.Use(CORS(tt.origins))
			e.POST("/games", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

			rec := preflight(e, tt.origin)
			assert.Equal(t, tt.allowOrigin, rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
			assert.Equal(t, tt.credentials, rec.Header().Get(echo.HeaderAccessControlAllowCredentials))
		})
	}
}
