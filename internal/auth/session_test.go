package auth

import (
    "net/http/httptest"
    "testing"

    "github.com/labstack/echo/v4"
)

func TestSessionRoundTrip(t *testing.T) {
    e := echo.New()
    c := e.NewContext(httptest.NewRequest("GET", "/", nil), httptest.NewRecorder())

    if s := FromContext(c); s.Authenticated || s.Actor() != "guest" {
        t.Fatalf("empty context session = %+v", s)
    }

    WithSession(c, Session{AdminID: "a1", Role: "ADMIN", Authenticated: true})
    s := FromContext(c)
    if !s.HasRole("ADMIN") || s.HasRole("OWNER") || s.Actor() != "a1" {
        t.Fatalf("session = %+v", s)
    }
}

func TestUnauthenticatedHasNoRole(t *testing.T) {
    s := Session{AdminID: "a1", Role: "ADMIN"}
    if s.HasRole("ADMIN") {
        t.Fatal("unauthenticated session must not match a role")
    }
}
