package logging

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const timeLayout = "2006-01-02T15:04:05"

// Logger is a sugared zap logger. Components keep a named child of the root
// logger so every line carries its origin ("session", "contract", ...).
type Logger struct {
	*zap.SugaredLogger
}

// New builds a logger writing to stderr. level is one of zap's level names
// ("debug", "info", "warn", "error"); json switches to the JSON encoder.
func New(level string, json bool) (*Logger, error) {
	return newLogger(level, json, os.Stderr)
}

// NewWriter is like New but writes to w. Used by tests that inspect output.
func NewWriter(level string, json bool, w io.Writer) (*Logger, error) {
	return newLogger(level, json, w)
}

// NewNop returns a logger that discards everything.
func NewNop() *Logger {
	return &Logger{SugaredLogger: zap.NewNop().Sugar()}
}

// NewTestLogger logs everything to stdout.
func NewTestLogger() *Logger {
	l, _ := newLogger("debug", false, os.Stdout)
	return l
}

func newLogger(levelStr string, json bool, w io.Writer) (*Logger, error) {
	level, err := zapcore.ParseLevel(levelStr)
	if err != nil {
		return nil, err
	}

	encoderCfg := zap.NewDevelopmentEncoderConfig()
	encoderCfg.EncodeTime = zapcore.TimeEncoderOfLayout(timeLayout)

	var encoder zapcore.Encoder
	if json {
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	} else {
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(w), level)
	return &Logger{SugaredLogger: zap.New(core, zap.AddStacktrace(zap.ErrorLevel)).Sugar()}, nil
}

// Named returns a child logger with name appended to the logger's path.
func (l *Logger) Named(name string) *Logger {
	return &Logger{SugaredLogger: l.SugaredLogger.Named(name)}
}

// With returns a child logger carrying the given key/value pairs.
func (l *Logger) With(args ...interface{}) *Logger {
	return &Logger{SugaredLogger: l.SugaredLogger.With(args...)}
}

// Sync flushes buffered entries; errors from syncing a terminal are ignored.
func (l *Logger) Sync() {
	_ = l.SugaredLogger.Sync()
}
