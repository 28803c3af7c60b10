package middleware

import (
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/raffle-reservation/internal/auth"
)

// clientIdentity names the caller for rate-limit keys: the admin id when a
// session exists, otherwise "guest".
func clientIdentity(c echo.Context) string {
    return auth.FromContext(c).Actor()
}

// clientIP falls back to "unknown" so keys never contain an empty segment.
func clientIP(c echo.Context) string {
    if ip := c.RealIP(); ip != "" {
        return ip
    }
    return "unknown"
}
