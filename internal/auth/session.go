// Package auth carries the authenticated admin session through a request.
package auth

import "github.com/labstack/echo/v4"

const sessionKey = "auth.session"

// Session is the admin identity established by the JWT middleware.  The zero
// value is an anonymous session.
type Session struct {
    AdminID       string
    Role          string
    Authenticated bool
}

// HasRole reports whether the session is authenticated with one of roles.
func (s Session) HasRole(roles ...string) bool {
    if !s.Authenticated {
        return false
    }
    for _, r := range roles {
        if s.Role == r {
            return true
        }
    }
    return false
}

// Actor names the session in audit events; anonymous callers are "guest".
func (s Session) Actor() string {
    if !s.Authenticated || s.AdminID == "" {
        return "guest"
    }
    return s.AdminID
}

// WithSession stores s on the request context.
func WithSession(c echo.Context, s Session) { c.Set(sessionKey, s) }

// FromContext returns the session stored by WithSession, or an anonymous one.
func FromContext(c echo.Context) Session {
    if s, ok := c.Get(sessionKey).(Session); ok {
        return s
    }
    return Session{}
}
