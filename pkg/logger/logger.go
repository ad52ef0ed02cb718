package logger

import (
	"log"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	envLocal      = "local"
	envDev        = "development"
	envProduction = "production"
)

// New создает zap logger в зависимости от окружения
func New(env string) *zap.Logger {
	var cfg zap.Config

	switch env {
	case envLocal, envDev:
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	case envProduction:
		cfg = zap.NewProductionConfig()
	default:
		cfg = zap.NewProductionConfig()
	}

	logger, err := cfg.Build()
	if err != nil {
		log.Fatalf("cannot build zap logger: %v", err)
	}

	return logger
}
