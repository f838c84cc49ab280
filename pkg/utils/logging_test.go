package utils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewLoggerWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "run.log")
	t.Setenv("LOG_FILE", path)
	t.Setenv("LOG_LEVEL", "debug")
	l := newLogger()
	l.Debug("fold finished")
	_ = l.Sync()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), `"msg":"fold finished"`) {
		t.Errorf("log file = %s", b)
	}
}

func TestLoggerIsShared(t *testing.T) {
	if Logger() != Logger() {
		t.Error("Logger should return the same instance")
	}
}
