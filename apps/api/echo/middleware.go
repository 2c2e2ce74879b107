package echoapi

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const requestIDHeader = "X-Request-Id"

// requestIDMiddleware tags every request with a UUID so gateway logs can be
// correlated with upstream logs.
func requestIDMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			rid := ctx.Request().Header.Get(requestIDHeader)
			if rid == "" {
				rid = uuid.New().String()
			}
			ctx.Response().Header().Set(requestIDHeader, rid)
			return next(ctx)
		}
	}
}
