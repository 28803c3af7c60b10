package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"
    "github.com/skip2/go-qrcode"
)

// PaymentHandler publishes the payment instruction.  The payload is an
// opaque string (a PIX copy-and-paste code) and is never parsed.
type PaymentHandler struct {
    Title      string
    Payload    string
    PriceCents int64
    Currency   string
    QRSize     int
}

func NewPaymentHandler(title, payload string, priceCents int64, currency string) *PaymentHandler {
    return &PaymentHandler{Title: title, Payload: payload, PriceCents: priceCents, Currency: currency, QRSize: 256}
}

type paymentResp struct {
    Title      string `json:"title"`
    Payload    string `json:"payload"`
    PriceCents int64  `json:"price_cents"`
    Currency   string `json:"currency"`
}

func (h *PaymentHandler) unconfigured(c echo.Context) error {
    return c.JSON(http.StatusServiceUnavailable, errorBody{Error: "payment instructions not configured", Code: "payment_unconfigured"})
}

// Info returns the payload with the ticket price.
func (h *PaymentHandler) Info(c echo.Context) error {
    if h.Payload == "" {
        return h.unconfigured(c)
    }
    return c.JSON(http.StatusOK, paymentResp{
        Title:      h.Title,
        Payload:    h.Payload,
        PriceCents: h.PriceCents,
        Currency:   h.Currency,
    })
}

// QRCode renders the payload as a PNG QR code.
func (h *PaymentHandler) QRCode(c echo.Context) error {
    if h.Payload == "" {
        return h.unconfigured(c)
    }
    png, err := qrcode.Encode(h.Payload, qrcode.Medium, h.QRSize)
    if err != nil {
        c.Logger().Error(err)
        return c.JSON(http.StatusInternalServerError, errorBody{Error: "qr encoding failed", Code: "internal"})
    }
    c.Response().Header().Set("Cache-Control", "public, max-age=300")
    return c.Blob(http.StatusOK, "image/png", png)
}
