// Package hlog provides the structured logger the participant factory uses,
// wrapping go.uber.org/zap behind a small interface with a real backend
// plus a NoLog no-op for tests.
package hlog

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the logging surface components depend on. Nothing in this
// module logs above Warn for conditions it can recover from; Error is
// reserved for conditions the caller must also observe through a returned
// error.
type Logger interface {
	Debug(msg string, fields ...zap.Field)
	Info(msg string, fields ...zap.Field)
	Warn(msg string, fields ...zap.Field)
	Error(msg string, fields ...zap.Field)
	With(fields ...zap.Field) Logger
}

type zapLogger struct {
	l *zap.Logger
}

func (z *zapLogger) Debug(msg string, fields ...zap.Field) { z.l.Debug(msg, fields...) }
func (z *zapLogger) Info(msg string, fields ...zap.Field)  { z.l.Info(msg, fields...) }
func (z *zapLogger) Warn(msg string, fields ...zap.Field)  { z.l.Warn(msg, fields...) }
func (z *zapLogger) Error(msg string, fields ...zap.Field) { z.l.Error(msg, fields...) }
func (z *zapLogger) With(fields ...zap.Field) Logger {
	return &zapLogger{l: z.l.With(fields...)}
}

// NoLog discards everything. Used by tests and by embedders that install
// their own telemetry pipeline.
var NoLog Logger = &noLog{}

type noLog struct{}

func (*noLog) Debug(string, ...zap.Field)  {}
func (*noLog) Info(string, ...zap.Field)   {}
func (*noLog) Warn(string, ...zap.Field)   {}
func (*noLog) Error(string, ...zap.Field)  {}
func (*noLog) With(...zap.Field) Logger    { return NoLog }

// LevelFromEnv parses HDDS_LOG_LEVEL ("debug", "info", "warn", "error"),
// defaulting to info when unset or unrecognized.
func LevelFromEnv() zapcore.Level {
	switch os.Getenv("HDDS_LOG_LEVEL") {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// New builds a production-style zap logger at the level named by
// HDDS_LOG_LEVEL, writing JSON to stderr.
func New() (Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(LevelFromEnv())
	cfg.OutputPaths = []string{"stderr"}
	l, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return &zapLogger{l: l}, nil
}
