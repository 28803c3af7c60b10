package handler

import (
    "context"
    "errors"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/raffle-reservation/internal/auth"
    "github.com/iliyamo/raffle-reservation/internal/config"
    "github.com/iliyamo/raffle-reservation/internal/model"
    "github.com/iliyamo/raffle-reservation/internal/repository"
    "github.com/iliyamo/raffle-reservation/internal/utils"
)

// AdminStore looks up admin accounts.
type AdminStore interface {
    GetByUsername(ctx context.Context, username string) (model.Admin, error)
    GetByID(ctx context.Context, id string) (model.Admin, error)
}

// TokenStore persists hashed refresh tokens.
type TokenStore interface {
    StoreRefresh(ctx context.Context, adminID, tokenHash string, exp time.Time) error
    ValidateRefresh(ctx context.Context, tokenHash string) (string, error)
    RevokeByHash(ctx context.Context, tokenHash string) (bool, error)
    RevokeAllForAdmin(ctx context.Context, adminID string) error
}

// AuthHandler bundles dependencies for the admin session endpoints.
type AuthHandler struct {
    Cfg    config.Config
    Admins AdminStore
    Tokens TokenStore
}

func NewAuthHandler(cfg config.Config, a AdminStore, t TokenStore) *AuthHandler {
    return &AuthHandler{Cfg: cfg, Admins: a, Tokens: t}
}

// ----- DTOs -----

type loginReq struct {
    Username string `json:"username"`
    Password string `json:"password"`
}
type refreshReq struct {
    RefreshToken string `json:"refresh_token"`
}

type tokenPart struct {
    Token   string    `json:"token"`
    Expires time.Time `json:"expires"`
}
type adminPart struct {
    ID       string `json:"id"`
    Username string `json:"username"`
    Role     string `json:"role"`
}
type authResp struct {
    Admin   adminPart `json:"admin"`
    Access  tokenPart `json:"access"`
    Refresh tokenPart `json:"refresh"`
}

func unauthorized(c echo.Context, msg string) error {
    return c.JSON(http.StatusUnauthorized, errorBody{Error: msg, Code: "unauthorized"})
}

func internalError(c echo.Context, msg string, err error) error {
    c.Logger().Error(msg, ": ", err)
    return c.JSON(http.StatusInternalServerError, errorBody{Error: msg, Code: "internal"})
}

// issue creates an access/refresh pair for a and stores the refresh hash.
func (h *AuthHandler) issue(ctx context.Context, c echo.Context, status int, a model.Admin) error {
    access, err := utils.NewAccessToken(h.Cfg.JWTSecret, a.ID, model.RoleAdmin, h.Cfg.AccessTTLMin)
    if err != nil {
        return internalError(c, "issue access failed", err)
    }
    refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
    if err != nil {
        return internalError(c, "issue refresh failed", err)
    }
    if err := h.Tokens.StoreRefresh(ctx, a.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
        return internalError(c, "save refresh failed", err)
    }
    return c.JSON(status, authResp{
        Admin:   adminPart{ID: a.ID, Username: a.Username, Role: model.RoleAdmin},
        Access:  tokenPart{Token: access.Token, Expires: access.Exp},
        Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp}, // raw back to client
    })
}

// Login verifies the admin password and returns a new token pair.
func (h *AuthHandler) Login(c echo.Context) error {
    var req loginReq
    if err := c.Bind(&req); err != nil {
        return badRequest(c, "invalid body")
    }
    req.Username = strings.TrimSpace(req.Username)
    if req.Username == "" || req.Password == "" {
        return badRequest(c, "username/password required")
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    a, err := h.Admins.GetByUsername(ctx, req.Username)
    if err != nil {
        if errors.Is(err, repository.ErrAdminNotFound) {
            return unauthorized(c, "invalid credentials")
        }
        return internalError(c, "query failed", err)
    }
    if !utils.VerifyPassword(a.PasswordHash, req.Password) {
        return unauthorized(c, "invalid credentials")
    }
    return h.issue(ctx, c, http.StatusOK, a)
}

// Refresh validates a refresh token by hash, revokes it and issues a new
// pair.  A token can be rotated only once.
func (h *AuthHandler) Refresh(c echo.Context) error {
    var req refreshReq
    if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
        return badRequest(c, "refresh_token required")
    }
    hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    adminID, err := h.Tokens.ValidateRefresh(ctx, hash)
    if err != nil {
        if errors.Is(err, repository.ErrInvalidRefresh) {
            return unauthorized(c, "invalid refresh")
        }
        return internalError(c, "validate refresh failed", err)
    }
    revoked, err := h.Tokens.RevokeByHash(ctx, hash)
    if err != nil {
        return internalError(c, "revoke refresh failed", err)
    }
    if !revoked {
        // lost a race with a concurrent rotation of the same token
        return unauthorized(c, "invalid refresh")
    }

    a, err := h.Admins.GetByID(ctx, adminID)
    if err != nil {
        if errors.Is(err, repository.ErrAdminNotFound) {
            return unauthorized(c, "invalid refresh")
        }
        return internalError(c, "load admin failed", err)
    }
    return h.issue(ctx, c, http.StatusOK, a)
}

// Logout revokes the refresh token in the body.  Without a body token it
// falls back to the bearer session and revokes every token of that admin.
func (h *AuthHandler) Logout(c echo.Context) error {
    var req refreshReq
    _ = c.Bind(&req)
    raw := strings.TrimSpace(req.RefreshToken)

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    if raw != "" {
        revoked, err := h.Tokens.RevokeByHash(ctx, utils.HashRefreshRaw(raw))
        if err != nil {
            return internalError(c, "logout failed", err)
        }
        if !revoked {
            return unauthorized(c, "invalid refresh token")
        }
        return c.NoContent(http.StatusNoContent)
    }

    if s := auth.FromContext(c); s.Authenticated {
        if err := h.Tokens.RevokeAllForAdmin(ctx, s.AdminID); err != nil {
            return internalError(c, "logout failed", err)
        }
        return c.NoContent(http.StatusNoContent)
    }
    return badRequest(c, "provide Authorization header or refresh_token")
}

// Me echoes the current session.
func (h *AuthHandler) Me(c echo.Context) error {
    s := auth.FromContext(c)
    return c.JSON(http.StatusOK, echo.Map{"admin_id": s.AdminID, "role": s.Role})
}
