package app

import (
    "github.com/labstack/echo/v4"
    "github.com/labstack/echo/v4/middleware"
    "go.uber.org/zap"
)

// RequestLogger writes one zap line per request.  5xx responses log at
// error level, everything else at info.
func RequestLogger(logger *zap.Logger) echo.MiddlewareFunc {
    logger = logger.Named("http")
    return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
        LogStatus:    true,
        LogURI:       true,
        LogMethod:    true,
        LogLatency:   true,
        LogRemoteIP:  true,
        LogRequestID: true,
        LogError:     true,
        HandleError:  true,
        Skipper: func(c echo.Context) bool {
            return c.Path() == "/healthz"
        },
        LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
            fields := []zap.Field{
                zap.String("method", v.Method),
                zap.String("uri", v.URI),
                zap.Int("status", v.Status),
                zap.Duration("latency", v.Latency),
                zap.String("remote_ip", v.RemoteIP),
            }
            if v.RequestID != "" {
                fields = append(fields, zap.String("request_id", v.RequestID))
            }
            if v.Error != nil {
                fields = append(fields, zap.Error(v.Error))
            }
            if v.Status >= 500 {
                logger.Error("request", fields...)
            } else {
                logger.Info("request", fields...)
            }
            return nil
        },
    })
}
