package middleware

import (
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/raffle-reservation/internal/auth"
    "github.com/iliyamo/raffle-reservation/internal/utils"
)

// JWTAuth returns an Echo middleware that validates a Bearer access token and
// stores the resulting auth.Session on the context.  Handlers behind it read
// the admin through auth.FromContext rather than raw claims.
func JWTAuth(secret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            raw, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
            if !ok {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token", "code": "unauthorized"})
            }
            claims, err := utils.ParseAccessToken(secret, raw)
            if err != nil {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token", "code": "unauthorized"})
            }
            auth.WithSession(c, auth.Session{
                AdminID:       claims.Subject,
                Role:          claims.Role,
                Authenticated: true,
            })
            return next(c)
        }
    }
}

// bearerToken strips the "Bearer " scheme; the scheme match is case-insensitive.
func bearerToken(header string) (string, bool) {
    const prefix = "bearer "
    if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
        return "", false
    }
    raw := strings.TrimSpace(header[len(prefix):])
    return raw, raw != ""
}

// OptionalJWT stores a session when a valid bearer token is present and
// otherwise lets the request through anonymously.
func OptionalJWT(secret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if raw, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization)); ok {
                if claims, err := utils.ParseAccessToken(secret, raw); err == nil {
                    auth.WithSession(c, auth.Session{AdminID: claims.Subject, Role: claims.Role, Authenticated: true})
                }
            }
            return next(c)
        }
    }
}
