package handler

import (
    "bytes"
    "context"
    "io"
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/raffle-reservation/internal/auth"
    "github.com/iliyamo/raffle-reservation/internal/model"
    "github.com/iliyamo/raffle-reservation/internal/service"
)

// AdminOps is the administrative surface of the raffle.
type AdminOps interface {
    SetPaid(ctx context.Context, actor, id string, paid bool) (model.Entry, error)
    DeleteRecord(ctx context.Context, actor, id string) error
    Search(ctx context.Context, f service.EntryFilter) ([]model.Entry, error)
    Stats(ctx context.Context) (service.Stats, error)
    Draw(ctx context.Context, actor string) (model.Entry, error)
    ExportPDF(ctx context.Context, w io.Writer, title string, f service.EntryFilter) error
}

// AdminHandler serves /v1/admin.  Every route sits behind JWTAuth and
// RequireRole(ADMIN).
type AdminHandler struct {
    Admin AdminOps
    Title string
}

func NewAdminHandler(a AdminOps, title string) *AdminHandler {
    return &AdminHandler{Admin: a, Title: title}
}

type setPaidReq struct {
    Paid *bool `json:"paid"`
}

type entriesResp struct {
    Count   int           `json:"count"`
    Entries []model.Entry `json:"entries"`
}

func filterFrom(c echo.Context) (service.EntryFilter, error) {
    return service.ParseEntryFilter(c.QueryParam("q"), c.QueryParam("status"), c.QueryParam("sort"))
}

// ListEntries searches entries.  Query parameters: q, status
// (all|paid|unpaid) and sort (asc|desc by creation time).
func (h *AdminHandler) ListEntries(c echo.Context) error {
    f, err := filterFrom(c)
    if err != nil {
        return writeError(c, err)
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
    defer cancel()
    entries, err := h.Admin.Search(ctx, f)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, entriesResp{Count: len(entries), Entries: entries})
}

// SetPaid overwrites the paid flag.  Body: {"paid": true|false}.
func (h *AdminHandler) SetPaid(c echo.Context) error {
    var req setPaidReq
    if err := c.Bind(&req); err != nil || req.Paid == nil {
        return badRequest(c, "paid (boolean) required")
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()
    e, err := h.Admin.SetPaid(ctx, auth.FromContext(c).Actor(), c.Param("id"), *req.Paid)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, e)
}

// DeleteEntry removes an entry whether or not it is paid.
func (h *AdminHandler) DeleteEntry(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()
    if err := h.Admin.DeleteRecord(ctx, auth.FromContext(c).Actor(), c.Param("id")); err != nil {
        return writeError(c, err)
    }
    return c.NoContent(http.StatusNoContent)
}

// Stats returns the dashboard.
func (h *AdminHandler) Stats(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
    defer cancel()
    st, err := h.Admin.Stats(ctx)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, st)
}

// Draw picks the winner among paid entries.
func (h *AdminHandler) Draw(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()
    winner, err := h.Admin.Draw(ctx, auth.FromContext(c).Actor())
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"winner": winner})
}

// ExportPDF downloads the filtered entries as a PDF table.  It accepts the
// same query parameters as ListEntries.
func (h *AdminHandler) ExportPDF(c echo.Context) error {
    f, err := filterFrom(c)
    if err != nil {
        return writeError(c, err)
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
    defer cancel()

    // rendered to a buffer first so a failure can still produce a JSON error
    var buf bytes.Buffer
    if err := h.Admin.ExportPDF(ctx, &buf, h.Title, f); err != nil {
        return writeError(c, err)
    }
    name := "entries-" + strconv.FormatInt(time.Now().UTC().Unix(), 10) + ".pdf"
    c.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename="+name)
    return c.Blob(http.StatusOK, "application/pdf", buf.Bytes())
}
