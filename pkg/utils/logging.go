package utils

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	logger *zap.Logger
	once   sync.Once
)

// Logger returns the process logger. Diagnostics go to stderr so stdout stays
// free for results: human-readable on a terminal, JSON otherwise. LOG_LEVEL
// picks the level and LOG_FILE additionally appends JSON lines to a file.
func Logger() *zap.Logger {
	once.Do(func() { logger = newLogger() })
	return logger
}

func newLogger() *zap.Logger {
	lvl := zapcore.InfoLevel
	if s := os.Getenv("LOG_LEVEL"); s != "" {
		if l, err := zapcore.ParseLevel(s); err == nil {
			lvl = l
		}
	}
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	jsonEnc := zapcore.NewJSONEncoder(encCfg)
	var consoleEnc zapcore.Encoder = jsonEnc
	if isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		devCfg := zap.NewDevelopmentEncoderConfig()
		devCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		consoleEnc = zapcore.NewConsoleEncoder(devCfg)
	}
	cores := []zapcore.Core{zapcore.NewCore(consoleEnc, zapcore.Lock(os.Stderr), lvl)}

	if logFile := os.Getenv("LOG_FILE"); logFile != "" {
		_ = os.MkdirAll(filepath.Dir(logFile), 0o755)
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err == nil {
			cores = append(cores, zapcore.NewCore(jsonEnc, zapcore.AddSync(f), lvl))
		}
	}
	return zap.New(zapcore.NewTee(cores...))
}
