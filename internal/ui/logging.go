package ui

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger narrates the run on the console. Errors go to stderr, the rest to stdout.
type Logger struct {
	Debug bool

	z *zap.Logger
	s *zap.SugaredLogger
}

func NewLogger(debug bool) *Logger {
	ec := zap.NewDevelopmentEncoderConfig()
	ec.EncodeCaller = nil
	ec.TimeKey = zapcore.OmitKey
	ec.EncodeLevel = zapcore.CapitalLevelEncoder
	enc := zapcore.NewConsoleEncoder(ec)

	minLevel := zapcore.InfoLevel
	if debug {
		minLevel = zapcore.DebugLevel
	}

	low := zapcore.NewCore(enc, zapcore.Lock(os.Stdout), zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		return minLevel <= lvl && lvl < zapcore.ErrorLevel
	}))
	high := zapcore.NewCore(enc, zapcore.Lock(os.Stderr), zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		return lvl >= zapcore.ErrorLevel
	}))

	z := zap.New(zapcore.NewTee(low, high)).Named("crunchymanga")
	return &Logger{Debug: debug, z: z, s: z.Sugar()}
}

// NewNopLogger discards everything; used by tests.
func NewNopLogger() *Logger {
	z := zap.NewNop()
	return &Logger{z: z, s: z.Sugar()}
}

// Zap exposes the structured logger for components that log with fields.
func (l *Logger) Zap() *zap.Logger {
	return l.z
}

func (l *Logger) Debugf(format string, args ...any) {
	l.s.Debugf(format, args...)
}

func (l *Logger) Infof(format string, args ...any) {
	l.s.Infof(format, args...)
}

func (l *Logger) Warnf(format string, args ...any) {
	l.s.Warnf(format, args...)
}

func (l *Logger) Errorf(format string, args ...any) {
	l.s.Errorf(format, args...)
}

func (l *Logger) Sync() {
	_ = l.z.Sync()
}
