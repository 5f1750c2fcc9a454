package logging

import (
	"path/filepath"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestInitialize_SilentByDefault(t *testing.T) {
	t.Setenv(LogLevelEnvVar, "")
	t.Setenv(LogFileEnvVar, "")

	if err := Initialize("", ""); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	if GetLogger().Core().Enabled(zapcore.ErrorLevel) {
		t.Error("expected nop logger when no level is configured")
	}
}

func TestInitialize_FromEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "devterm.log")
	t.Setenv(LogLevelEnvVar, "warn")
	t.Setenv(LogFileEnvVar, path)

	if err := Initialize("", ""); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	defer func() { logger = nil }()

	core := GetLogger().Core()
	if !core.Enabled(zapcore.WarnLevel) {
		t.Error("expected warn level to be enabled")
	}
	if core.Enabled(zapcore.InfoLevel) {
		t.Error("expected info level to be disabled")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"verbose", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := parseLevel(tt.in); got != tt.want {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestAsciiDump(t *testing.T) {
	got := asciiDump([]byte("OK\r\n"))
	if got != "OK.." {
		t.Errorf("asciiDump() = %q, want %q", got, "OK..")
	}
	if hexDump(nil) != "" {
		t.Error("hexDump(nil) should be empty")
	}
}
