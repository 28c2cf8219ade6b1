package httpserver

import (
	"bufio"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/game_store/internal/media"
	"github.com/Skotchmaster/game_store/pkg/logging"
)

const MaxUploadBytes = 10 << 20

type UploadHTTP struct {
	Uploader media.Uploader
}

func (h *UploadHTTP) Upload(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "media.upload")

	if h.Uploader == nil {
		l.Warn("upload_failed", "status", 503, "reason", "media storage is not configured")
		return echo.NewHTTPError(http.StatusServiceUnavailable, "image upload is not configured")
	}

	fh, err := c.FormFile("file")
	if err != nil {
		l.Warn("upload_failed", "status", 400, "reason", "missing file field", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}
	if fh.Size > MaxUploadBytes {
		l.Warn("upload_failed", "status", 413, "size", fh.Size)
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "file is too large")
	}

	f, err := fh.Open()
	if err != nil {
		return fail(l, "upload_failed", err)
	}
	defer f.Close()

	br := bufio.NewReader(f)
	head, _ := br.Peek(512)
	if ct := http.DetectContentType(head); !strings.HasPrefix(ct, "image/") {
		l.Warn("upload_failed", "status", 400, "reason", "not an image", "content_type", ct)
		return echo.NewHTTPError(http.StatusBadRequest, "file must be an image")
	}

	res, err := h.Uploader.Upload(ctx, br)
	if err != nil {
		l.Error("upload_failed", "status", 502, "error", err)
		return echo.NewHTTPError(http.StatusBadGateway, "image upload failed")
	}
	l.Info("upload_success", "public_id", res.PublicID)
	return c.JSON(http.StatusOK, res)
}
