package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var Logger = zap.NewNop()

// New строит логгер для заданного уровня
func New(level string) (*zap.Logger, error) {
	var config zap.Config

	switch level {
	case "debug":
		config = zap.NewDevelopmentConfig()
	case "info", "warn", "error":
		config = zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(parseLevel(level))
	default:
		return nil, fmt.Errorf("invalid log level: %s", level)
	}

	// Настраиваем формат времени
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return config.Build()
}

// Initialize инициализирует глобальный логгер
func Initialize(level string) error {
	l, err := New(level)
	if err != nil {
		return err
	}

	Logger = l
	zap.ReplaceGlobals(l)
	return nil
}

// Component возвращает логгер подсистемы
func Component(name string) *zap.Logger {
	return Logger.Named(name)
}

// parseLevel конвертирует строку в zapcore.Level
func parseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Cleanup корректно закрывает логгер
func Cleanup() {
	if Logger != nil {
		_ = Logger.Sync()
	}
}
