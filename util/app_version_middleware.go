package util

import (
	"github.com/labstack/echo/v4"
)

// AppVersionMiddleware stamps every response with the running build version
// so clients can detect stale deployments.
func AppVersionMiddleware(appVersion string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if appVersion != "" {
				c.Response().Header().Set("X-AppVersion", appVersion)
			}
			return next(c)
		}
	}
}
