package middleware

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/raffle-reservation/internal/auth"
)

// RequireRole aborts with 403 unless the session established by JWTAuth
// carries one of roles.  Mount it after JWTAuth.
func RequireRole(roles ...string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if !auth.FromContext(c).HasRole(roles...) {
                return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden", "code": "not_authorized"})
            }
            return next(c)
        }
    }
}
