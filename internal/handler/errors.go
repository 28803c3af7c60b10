package handler

import (
    "errors"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/raffle-reservation/internal/service"
)

// errorBody is the JSON shape of every failed response.
type errorBody struct {
    Error string `json:"error"`
    Code  string `json:"code"`
    Field string `json:"field,omitempty"`
}

// statusFor maps a service error onto an HTTP status and stable code.
func statusFor(err error) (int, string) {
    switch {
    case errors.Is(err, service.ErrValidation):
        return http.StatusBadRequest, "validation_failed"
    case errors.Is(err, service.ErrAlreadyReserved):
        return http.StatusConflict, "already_reserved"
    case errors.Is(err, service.ErrCannotModifyPaid):
        return http.StatusConflict, "cannot_modify_paid"
    case errors.Is(err, service.ErrNotAuthorized):
        return http.StatusForbidden, "not_authorized"
    case errors.Is(err, service.ErrNotFound):
        return http.StatusNotFound, "not_found"
    case errors.Is(err, service.ErrNoPaidEntries):
        return http.StatusConflict, "no_paid_entries"
    case errors.Is(err, service.ErrStoreUnavailable):
        return http.StatusServiceUnavailable, "store_unavailable"
    default:
        return http.StatusInternalServerError, "internal"
    }
}

// writeError renders err.  Store and internal failures are reported with a
// generic message so driver details stay in the log.
func writeError(c echo.Context, err error) error {
    status, code := statusFor(err)
    body := errorBody{Error: err.Error(), Code: code}

    var ve *service.ValidationError
    if errors.As(err, &ve) {
        body.Field = ve.Field
    }
    if status >= http.StatusInternalServerError {
        c.Logger().Error(err)
        body.Error = http.StatusText(status)
    }
    return c.JSON(status, body)
}

func badRequest(c echo.Context, msg string) error {
    return c.JSON(http.StatusBadRequest, errorBody{Error: msg, Code: "bad_request"})
}
