package logger

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewRejectsUnknownLevel(t *testing.T) {
	if _, err := New(Config{Level: "verbose"}); err == nil {
		t.Fatal("expected error for unknown log level")
	}
}

func TestNewDefaultsToInfoWhenLevelEmpty(t *testing.T) {
	built, err := New(Config{})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	if built.Core().Enabled(zapcore.DebugLevel) {
		t.Fatal("expected debug level to be disabled by default")
	}
	if !built.Core().Enabled(zapcore.InfoLevel) {
		t.Fatal("expected info level to be enabled by default")
	}
}

func TestInitWritesToRotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "edextemp.log")
	if err := Init(Config{Level: "info", FilePath: path, MaxSizeMB: 1}); err != nil {
		t.Fatalf("init logger: %v", err)
	}
	t.Cleanup(func() {
		mu.Lock()
		global = zap.NewNop()
		mu.Unlock()
	})

	Infof(WithRequestID(context.Background(), "req-42"), "prep %d saved", 7)
	Close()

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	text := string(content)
	if !strings.Contains(text, "prep 7 saved") {
		t.Fatalf("expected message in log file, got %q", text)
	}
	if !strings.Contains(text, `"request_id":"req-42"`) {
		t.Fatalf("expected request id field in log file, got %q", text)
	}
}
