package log

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelError Level = "ERROR"
)

var (
	mu       sync.Mutex
	sugar    *zap.SugaredLogger
	atomicLv = zap.NewAtomicLevelAt(zapcore.InfoLevel)
)

// initLogger builds the global zap logger on first use. Output goes to
// stderr with ISO8601 timestamps.
func initLogger() *zap.SugaredLogger {
	mu.Lock()
	defer mu.Unlock()
	if sugar != nil {
		return sugar
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = atomicLv
	cfg.Encoding = "console"
	cfg.OutputPaths = []string{"stderr"}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	l, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		// zap only fails on bad output paths; a no-op logger beats
		// panicking inside logging.
		l = zap.NewNop()
	}
	sugar = l.Sugar()
	return sugar
}

func SetLevel(l Level) {
	switch l {
	case LevelDebug:
		atomicLv.SetLevel(zapcore.DebugLevel)
	case LevelInfo:
		atomicLv.SetLevel(zapcore.InfoLevel)
	case LevelError:
		atomicLv.SetLevel(zapcore.ErrorLevel)
	}
}

func Debug(msg string, kv ...any) {
	initLogger().Debugw(msg, kv...)
}

func Info(msg string, kv ...any) {
	initLogger().Infow(msg, kv...)
}

// Error logs msg with err prepended to the key-value list.
func Error(msg string, err error, kv ...any) {
	extended := append([]any{"err", err}, kv...)
	initLogger().Errorw(msg, extended...)
}
