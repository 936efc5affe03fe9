package handlers

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"
)

// opTimeout bounds every store/cache round trip made on behalf of a request.
const opTimeout = 5 * time.Second

func opCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), opTimeout)
}
