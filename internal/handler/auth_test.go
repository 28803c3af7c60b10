package handler

import (
    "context"
    "encoding/json"
    "net/http"
    "sync"
    "testing"
    "time"

    "github.com/iliyamo/raffle-reservation/internal/config"
    "github.com/iliyamo/raffle-reservation/internal/model"
    "github.com/iliyamo/raffle-reservation/internal/repository"
    "github.com/iliyamo/raffle-reservation/internal/utils"
)

type memAdmins struct{ admin model.Admin }

func (m memAdmins) GetByUsername(_ context.Context, u string) (model.Admin, error) {
    if u != m.admin.Username {
        return model.Admin{}, repository.ErrAdminNotFound
    }
    return m.admin, nil
}

func (m memAdmins) GetByID(_ context.Context, id string) (model.Admin, error) {
    if id != m.admin.ID {
        return model.Admin{}, repository.ErrAdminNotFound
    }
    return m.admin, nil
}

type memToken struct {
    adminID string
    exp     time.Time
    revoked bool
}

type memTokens struct {
    mu     sync.Mutex
    tokens map[string]*memToken
}

func newMemTokens() *memTokens { return &memTokens{tokens: map[string]*memToken{}} }

func (m *memTokens) StoreRefresh(_ context.Context, adminID, hash string, exp time.Time) error {
    m.mu.Lock()
    defer m.mu.Unlock()
    m.tokens[hash] = &memToken{adminID: adminID, exp: exp}
    return nil
}

func (m *memTokens) ValidateRefresh(_ context.Context, hash string) (string, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    t, ok := m.tokens[hash]
    if !ok || t.revoked || time.Now().After(t.exp) {
        return "", repository.ErrInvalidRefresh
    }
    return t.adminID, nil
}

func (m *memTokens) RevokeByHash(_ context.Context, hash string) (bool, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    t, ok := m.tokens[hash]
    if !ok || t.revoked {
        return false, nil
    }
    t.revoked = true
    return true, nil
}

func (m *memTokens) RevokeAllForAdmin(_ context.Context, adminID string) error {
    m.mu.Lock()
    defer m.mu.Unlock()
    for _, t := range m.tokens {
        if t.adminID == adminID {
            t.revoked = true
        }
    }
    return nil
}

func newAuthHandler(t *testing.T) (*AuthHandler, *memTokens) {
    t.Helper()
    hash, err := utils.HashPassword("s3cret", 4)
    if err != nil {
        t.Fatal(err)
    }
    tokens := newMemTokens()
    cfg := config.Config{JWTSecret: "test-secret", AccessTTLMin: 5, RefreshTTLDays: 1}
    return NewAuthHandler(cfg, memAdmins{admin: model.Admin{ID: "admin-1", Username: "admin", PasswordHash: hash}}, tokens), tokens
}

func login(t *testing.T, h *AuthHandler) authResp {
    t.Helper()
    rec := do(h.Login, http.MethodPost, "/v1/auth/login", "/v1/auth/login", nil, `{"username":"admin","password":"s3cret"}`)
    if rec.Code != http.StatusOK {
        t.Fatalf("login status = %d (%s)", rec.Code, rec.Body.String())
    }
    var resp authResp
    if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
        t.Fatal(err)
    }
    return resp
}

func TestLogin(t *testing.T) {
    h, _ := newAuthHandler(t)
    resp := login(t, h)
    claims, err := utils.ParseAccessToken("test-secret", resp.Access.Token)
    if err != nil {
        t.Fatalf("access token: %v", err)
    }
    if claims.Subject != "admin-1" || claims.Role != model.RoleAdmin {
        t.Fatalf("claims = %+v", claims)
    }

    tests := []struct {
        name   string
        body   string
        status int
    }{
        {"wrong password", `{"username":"admin","password":"nope"}`, http.StatusUnauthorized},
        {"unknown admin", `{"username":"root","password":"s3cret"}`, http.StatusUnauthorized},
        {"missing fields", `{"username":"admin"}`, http.StatusBadRequest},
    }
    for _, tt := range tests {
        t.Run(tt.name, func(t *testing.T) {
            rec := do(h.Login, http.MethodPost, "/v1/auth/login", "/v1/auth/login", nil, tt.body)
            if rec.Code != tt.status {
                t.Fatalf("status = %d, want %d", rec.Code, tt.status)
            }
        })
    }
}

func TestRefreshRotatesOnce(t *testing.T) {
    h, _ := newAuthHandler(t)
    first := login(t, h)
    body := `{"refresh_token":"` + first.Refresh.Token + `"}`

    rec := do(h.Refresh, http.MethodPost, "/v1/auth/refresh", "/v1/auth/refresh", nil, body)
    if rec.Code != http.StatusOK {
        t.Fatalf("refresh status = %d", rec.Code)
    }
    var second authResp
    if err := json.Unmarshal(rec.Body.Bytes(), &second); err != nil {
        t.Fatal(err)
    }
    if second.Refresh.Token == first.Refresh.Token {
        t.Fatal("refresh token was not rotated")
    }

    rec = do(h.Refresh, http.MethodPost, "/v1/auth/refresh", "/v1/auth/refresh", nil, body)
    if rec.Code != http.StatusUnauthorized {
        t.Fatalf("reused refresh status = %d", rec.Code)
    }
}

func TestLogout(t *testing.T) {
    h, tokens := newAuthHandler(t)
    a := login(t, h)
    b := login(t, h)

    rec := do(h.Logout, http.MethodPost, "/v1/auth/logout", "/v1/auth/logout", nil, `{"refresh_token":"`+a.Refresh.Token+`"}`)
    if rec.Code != http.StatusNoContent {
        t.Fatalf("logout status = %d", rec.Code)
    }
    if _, err := tokens.ValidateRefresh(context.Background(), utils.HashRefreshRaw(a.Refresh.Token)); err == nil {
        t.Fatal("token a still valid")
    }
    if _, err := tokens.ValidateRefresh(context.Background(), utils.HashRefreshRaw(b.Refresh.Token)); err != nil {
        t.Fatal("token b should survive a single-session logout")
    }

    rec = do(withSession(h.Logout, "admin-1"), http.MethodPost, "/v1/auth/logout", "/v1/auth/logout", nil, "")
    if rec.Code != http.StatusNoContent {
        t.Fatalf("logout all status = %d", rec.Code)
    }
    if _, err := tokens.ValidateRefresh(context.Background(), utils.HashRefreshRaw(b.Refresh.Token)); err == nil {
        t.Fatal("token b still valid after logout-all")
    }

    rec = do(h.Logout, http.MethodPost, "/v1/auth/logout", "/v1/auth/logout", nil, "")
    if rec.Code != http.StatusBadRequest {
        t.Fatalf("anonymous logout status = %d", rec.Code)
    }
}
