package handler

import (
    "context"
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/raffle-reservation/internal/live"
    "github.com/iliyamo/raffle-reservation/internal/model"
)

// Reserver is the public reservation flow.
type Reserver interface {
    RequestSlot(ctx context.Context, slot int) error
    CommitReservation(ctx context.Context, slot int, name, contact string) (model.Entry, error)
    WithdrawReservation(ctx context.Context, slot int, name, contact string) error
}

// SnapshotSource yields the latest slot grid.
type SnapshotSource interface {
    Current() (live.Snapshot, bool)
    CurrentJSON() []byte
}

// PublicHandler serves the unauthenticated slot endpoints.
type PublicHandler struct {
    Reservations Reserver
    Slots        SnapshotSource
    Timeout      time.Duration
}

func NewPublicHandler(r Reserver, s SnapshotSource) *PublicHandler {
    return &PublicHandler{Reservations: r, Slots: s, Timeout: 5 * time.Second}
}

type reservationReq struct {
    Name          string `json:"name"`
    ContactNumber string `json:"contact_number"`
}

// reservationResp echoes the committed entry back to the participant who
// made it.
type reservationResp struct {
    ID            string    `json:"id"`
    SlotNumber    int       `json:"slot_number"`
    Name          string    `json:"name"`
    ContactNumber string    `json:"contact_number"`
    Paid          bool      `json:"paid"`
    CreatedAt     time.Time `json:"created_at"`
}

func (h *PublicHandler) ctx(c echo.Context) (context.Context, context.CancelFunc) {
    return context.WithTimeout(c.Request().Context(), h.Timeout)
}

// ListSlots returns the current snapshot of the grid.
func (h *PublicHandler) ListSlots(c echo.Context) error {
    raw := h.Slots.CurrentJSON()
    if len(raw) == 0 {
        return c.JSON(http.StatusServiceUnavailable, errorBody{Error: "slot grid not ready", Code: "store_unavailable"})
    }
    return c.JSONBlob(http.StatusOK, raw)
}

// CheckSlot reports whether a slot can still be reserved.  A taken slot
// answers 409 already_reserved.
func (h *PublicHandler) CheckSlot(c echo.Context) error {
    slot, err := slotParam(c)
    if err != nil {
        return badRequest(c, "slot number must be an integer")
    }
    ctx, cancel := h.ctx(c)
    defer cancel()
    if err := h.Reservations.RequestSlot(ctx, slot); err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"slot_number": slot, "available": true})
}

// Reserve commits a reservation for the slot in the path.
func (h *PublicHandler) Reserve(c echo.Context) error {
    slot, err := slotParam(c)
    if err != nil {
        return badRequest(c, "slot number must be an integer")
    }
    var req reservationReq
    if err := c.Bind(&req); err != nil {
        return badRequest(c, "invalid body")
    }
    ctx, cancel := h.ctx(c)
    defer cancel()
    e, err := h.Reservations.CommitReservation(ctx, slot, req.Name, req.ContactNumber)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusCreated, reservationResp{
        ID:            e.ID,
        SlotNumber:    e.SlotNumber,
        Name:          e.Name,
        ContactNumber: e.ContactNumber,
        Paid:          e.Paid,
        CreatedAt:     e.CreatedAt,
    })
}

// Withdraw removes the caller's own unpaid reservation.  The body must
// repeat the name and contact number used to reserve.
func (h *PublicHandler) Withdraw(c echo.Context) error {
    slot, err := slotParam(c)
    if err != nil {
        return badRequest(c, "slot number must be an integer")
    }
    var req reservationReq
    if err := c.Bind(&req); err != nil {
        return badRequest(c, "invalid body")
    }
    ctx, cancel := h.ctx(c)
    defer cancel()
    if err := h.Reservations.WithdrawReservation(ctx, slot, req.Name, req.ContactNumber); err != nil {
        return writeError(c, err)
    }
    return c.NoContent(http.StatusNoContent)
}

func slotParam(c echo.Context) (int, error) {
    return strconv.Atoi(c.Param("number"))
}
