package app

import (
    "go.uber.org/zap"
    "go.uber.org/zap/zapcore"
)

// NewLogger returns a JSON production logger for APP_ENV=production and a
// colored console logger otherwise.
func NewLogger(env string) *zap.Logger {
    var config zap.Config

    if env == "production" || env == "prod" {
        config = zap.NewProductionConfig()
    } else {
        config = zap.NewDevelopmentConfig()
        config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
    }

    config.OutputPaths = []string{"stdout"}

    logger, err := config.Build()
    if err != nil {
        panic("failed to create logger: " + err.Error())
    }

    return logger
}
