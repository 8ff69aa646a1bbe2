package middleware

import (
	"net/http"
	"time"

	"banksentinel/internal/dto"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

// NewRateLimiterMiddleware applies a per-client-IP token bucket to the API.
// Collector runs and scoring sweeps are cheap to trigger but expensive to
// execute, so the burst is kept small.
func NewRateLimiterMiddleware() echo.MiddlewareFunc {
	config := middleware.RateLimiterConfig{
		Skipper: middleware.DefaultSkipper,
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(
			middleware.RateLimiterMemoryStoreConfig{
				Rate:      rate.Limit(10),
				Burst:     30,
				ExpiresIn: 3 * time.Minute,
			},
		),

		IdentifierExtractor: func(ctx echo.Context) (string, error) {
			return ctx.RealIP(), nil
		},

		ErrorHandler: func(c echo.Context, err error) error {
			return c.JSON(http.StatusForbidden,
				dto.NewBaseResponse(http.StatusForbidden, "could not identify client for rate limiting", nil))
		},

		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return c.JSON(http.StatusTooManyRequests,
				dto.NewBaseResponse(http.StatusTooManyRequests, "rate limit exceeded, try again later", nil))
		},
	}

	return middleware.RateLimiterWithConfig(config)
}
