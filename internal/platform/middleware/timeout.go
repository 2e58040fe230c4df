package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// RequestTimeout bounds each request with a context deadline. Handlers
// that overrun it get their context cancelled and the client receives a
// 504 with a JSON message.
func RequestTimeout(d time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx, cancel := context.WithTimeout(c.Request().Context(), d)
			defer cancel()
			c.SetRequest(c.Request().WithContext(ctx))
			return awaitWithDeadline(ctx, c, next)
		}
	}
}

// awaitWithDeadline runs next in its own goroutine so the deadline is
// observed even while the handler blocks.
func awaitWithDeadline(ctx context.Context, c echo.Context, next echo.HandlerFunc) error {
	done := make(chan error, 1)
	go func() { done <- next(c) }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return timeoutResponse(c)
		}
		// Client disconnects and other cancellations propagate.
		return ctx.Err()
	}
}

func timeoutResponse(c echo.Context) error {
	if c.Response().Committed {
		return nil
	}
	return c.JSON(http.StatusGatewayTimeout, map[string]string{
		"message": "request processing exceeded the allowed time limit",
	})
}
