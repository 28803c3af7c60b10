package router // package router defines how HTTP routes are registered for the API

import (
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/raffle-reservation/internal/handler"
    "github.com/iliyamo/raffle-reservation/internal/middleware"
    "github.com/iliyamo/raffle-reservation/internal/model"
)

// Handlers groups every handler the API exposes.  Nil groups are skipped so
// tests can mount only what they exercise.
type Handlers struct {
    Health  echo.HandlerFunc
    Public  *handler.PublicHandler
    Live    *handler.LiveHandler
    Payment *handler.PaymentHandler
    Auth    *handler.AuthHandler
    Admin   *handler.AdminHandler
}

// Middlewares are the cross-cutting wrappers applied to specific groups.
type Middlewares struct {
    RateLimit echo.MiddlewareFunc // public writes and login
    Cache     echo.MiddlewareFunc // payment instructions
}

func (m Middlewares) rateLimit() []echo.MiddlewareFunc {
    if m.RateLimit == nil {
        return nil
    }
    return []echo.MiddlewareFunc{m.RateLimit}
}

func (m Middlewares) cache() []echo.MiddlewareFunc {
    if m.Cache == nil {
        return nil
    }
    return []echo.MiddlewareFunc{m.Cache}
}

// RegisterRoutes mounts the whole API on e.
func RegisterRoutes(e *echo.Echo, h Handlers, mw Middlewares, jwtSecret string) {
    if h.Health != nil {
        e.GET("/healthz", h.Health)
    }
    RegisterPublic(e, h, mw)
    if h.Auth != nil {
        RegisterAuth(e, h.Auth, mw, jwtSecret)
    }
    if h.Admin != nil {
        RegisterAdmin(e, h.Admin, jwtSecret)
    }
}

// RegisterPublic mounts the unauthenticated slot, live and payment routes.
// Writes are rate limited; the payment resources go through the cache.
func RegisterPublic(e *echo.Echo, h Handlers, mw Middlewares) {
    v1 := e.Group("/v1")
    if h.Public != nil {
        v1.GET("/slots", h.Public.ListSlots)
        v1.GET("/slots/:number", h.Public.CheckSlot)
        v1.POST("/slots/:number/reservation", h.Public.Reserve, mw.rateLimit()...)
        v1.DELETE("/slots/:number/reservation", h.Public.Withdraw, mw.rateLimit()...)
    }
    if h.Live != nil {
        // registered as a static route, so it takes precedence over /slots/:number
        v1.GET("/slots/ws", h.Live.Stream)
    }
    if h.Payment != nil {
        v1.GET("/payment", h.Payment.Info, mw.cache()...)
        v1.GET("/payment/qr.png", h.Payment.QRCode, mw.cache()...)
    }
}

// RegisterAuth mounts the admin session endpoints under /v1/auth.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, mw Middlewares, jwtSecret string) {
    g := e.Group("/v1/auth")
    g.POST("/login", a.Login, mw.rateLimit()...)
    g.POST("/refresh", a.Refresh, mw.rateLimit()...)
    // logout accepts either a refresh token or a bearer session
    g.POST("/logout", a.Logout, middleware.OptionalJWT(jwtSecret))
    g.GET("/me", a.Me, middleware.JWTAuth(jwtSecret), middleware.RequireRole(model.RoleAdmin))
}

// RegisterAdmin mounts /v1/admin behind JWTAuth and RequireRole(ADMIN).
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, jwtSecret string) {
    g := e.Group("/v1/admin", middleware.JWTAuth(jwtSecret), middleware.RequireRole(model.RoleAdmin))
    g.GET("/entries", a.ListEntries)
    g.GET("/entries/export.pdf", a.ExportPDF)
    g.PATCH("/entries/:id/paid", a.SetPaid)
    g.DELETE("/entries/:id", a.DeleteEntry)
    g.GET("/stats", a.Stats)
    g.POST("/draw", a.Draw)
}
