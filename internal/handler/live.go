package handler

import (
    "net/http"
    "time"

    "github.com/gorilla/websocket"
    "github.com/labstack/echo/v4"
    "go.uber.org/zap"

    "github.com/iliyamo/raffle-reservation/internal/live"
)

const (
    wsWriteWait  = 10 * time.Second
    wsPongWait   = 60 * time.Second
    wsPingPeriod = 30 * time.Second
)

// Subscriber hands out snapshot streams.
type Subscriber interface {
    Register() *live.Client
    Unregister(c *live.Client)
}

// LiveHandler streams slot snapshots over a websocket.
type LiveHandler struct {
    Hub      Subscriber
    Upgrader websocket.Upgrader
    Logger   *zap.Logger
}

// NewLiveHandler accepts every origin; CORS policy is enforced in front of
// the router.
func NewLiveHandler(hub Subscriber, logger *zap.Logger) *LiveHandler {
    if logger == nil {
        logger = zap.NewNop()
    }
    return &LiveHandler{
        Hub: hub,
        Upgrader: websocket.Upgrader{
            ReadBufferSize:  1024,
            WriteBufferSize: 4096,
            CheckOrigin:     func(r *http.Request) bool { return true },
        },
        Logger: logger.Named("ws"),
    }
}

// Stream upgrades the connection and relays the client's hub stream, which
// opens with the latest snapshot and continues with every newer one.
func (h *LiveHandler) Stream(c echo.Context) error {
    conn, err := h.Upgrader.Upgrade(c.Response(), c.Request(), nil)
    if err != nil {
        h.Logger.Debug("upgrade failed", zap.Error(err))
        return nil
    }
    defer conn.Close()

    client := h.Hub.Register()
    if client == nil {
        _ = conn.WriteControl(websocket.CloseMessage,
            websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
            time.Now().Add(wsWriteWait))
        return nil
    }
    defer h.Hub.Unregister(client)

    // Reads only service control frames; the first error means the viewer
    // went away.
    gone := make(chan struct{})
    go func() {
        defer close(gone)
        conn.SetReadLimit(512)
        _ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
        conn.SetPongHandler(func(string) error {
            return conn.SetReadDeadline(time.Now().Add(wsPongWait))
        })
        for {
            if _, _, err := conn.ReadMessage(); err != nil {
                return
            }
        }
    }()

    ping := time.NewTicker(wsPingPeriod)
    defer ping.Stop()
    for {
        select {
        case <-gone:
            return nil
        case msg, ok := <-client.Messages():
            if !ok {
                _ = conn.WriteControl(websocket.CloseMessage,
                    websocket.FormatCloseMessage(websocket.CloseGoingAway, ""),
                    time.Now().Add(wsWriteWait))
                return nil
            }
            if err := h.write(conn, msg); err != nil {
                return nil
            }
        case <-ping.C:
            if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
                return nil
            }
        }
    }
}

func (h *LiveHandler) write(conn *websocket.Conn, msg []byte) error {
    _ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
    return conn.WriteMessage(websocket.TextMessage, msg)
}
