package logutil

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu     sync.RWMutex
	logger = zap.NewNop()
)

// InitLogger installs a production logger writing to stderr at the given
// level. Unknown levels fall back to info.
func InitLogger(level ...string) {
	lvl := zapcore.InfoLevel
	if len(level) > 0 && level[0] != "" {
		if parsed, err := zapcore.ParseLevel(level[0]); err == nil {
			lvl = parsed
		}
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{"stderr"}
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	l, err := cfg.Build()
	if err != nil {
		l = zap.NewExample()
	}
	ReplaceLogger(l)
}

func GetLogger() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// ReplaceLogger swaps the shared logger and returns a func restoring the
// previous one.
func ReplaceLogger(l *zap.Logger) func() {
	mu.Lock()
	defer mu.Unlock()
	prev := logger
	logger = l
	return func() {
		mu.Lock()
		logger = prev
		mu.Unlock()
	}
}
