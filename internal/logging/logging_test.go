package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/dshills/imagenode/internal/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    zapcore.Level
		wantErr bool
	}{
		{"debug", zapcore.DebugLevel, false},
		{"INFO", zapcore.InfoLevel, false},
		{"warn", zapcore.WarnLevel, false},
		{"warning", zapcore.WarnLevel, false},
		{" error ", zapcore.ErrorLevel, false},
		{"trace", zapcore.InfoLevel, true},
		{"", zapcore.InfoLevel, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestConsoleOutput(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(config.LoggingConfig{Level: "info", Format: "console"}, &buf)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	l.Debug("hidden")
	l.Info("image loaded", zap.String("src", "a.png"))

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug entry written at info level: %q", out)
	}
	if !strings.Contains(out, "INFO") || !strings.Contains(out, "image loaded") || !strings.Contains(out, "a.png") {
		t.Errorf("output = %q", out)
	}
}

func TestJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(config.LoggingConfig{Level: "debug", Format: "json"}, &buf)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	l.Debug("resize committed", zap.Int("width", 300))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v: %q", err, buf.String())
	}
	if entry["msg"] != "resize committed" {
		t.Errorf("msg = %v", entry["msg"])
	}
	if entry["logger"] != "imagenode" {
		t.Errorf("logger = %v, want imagenode", entry["logger"])
	}
	if entry["width"] != float64(300) {
		t.Errorf("width = %v, want 300", entry["width"])
	}
}

func TestSetLevel(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(config.LoggingConfig{Level: "warn"}, &buf)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	l.Info("before")
	if err := l.Apply(config.LoggingConfig{Level: "debug"}); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if l.Level() != zapcore.DebugLevel {
		t.Errorf("Level() = %v, want debug", l.Level())
	}
	l.Debug("after")

	out := buf.String()
	if strings.Contains(out, "before") {
		t.Errorf("info entry written at warn level")
	}
	if !strings.Contains(out, "after") {
		t.Errorf("debug entry missing after SetLevel")
	}
	if err := l.SetLevel("loud"); err == nil {
		t.Error("SetLevel(loud) should fail")
	}
}

func TestFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "imagenode.log")
	var fallback bytes.Buffer
	l, err := New(config.LoggingConfig{Level: "info", File: path}, &fallback)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	l.Info("to file")
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "to file") {
		t.Errorf("file = %q", data)
	}
	if fallback.Len() != 0 {
		t.Errorf("fallback received %q", fallback.String())
	}
}

func TestNewErrors(t *testing.T) {
	if _, err := New(config.LoggingConfig{Level: "nope"}, nil); err == nil {
		t.Error("New with bad level should fail")
	}
	if _, err := New(config.LoggingConfig{Level: "info", Format: "xml"}, nil); err == nil {
		t.Error("New with bad format should fail")
	}
	if _, err := New(config.LoggingConfig{Level: "info", File: filepath.Join(t.TempDir(), "missing", "x.log")}, nil); err == nil {
		t.Error("New with unwritable file should fail")
	}
}

func TestNilFallbackDiscards(t *testing.T) {
	l, err := New(config.LoggingConfig{Level: "info"}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	l.Info("nowhere")
	if err := l.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}
