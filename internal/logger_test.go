package internal

import (
	"bytes"
	"strings"
	"testing"
)

func TestSetLogLevel(t *testing.T) {
	originalLevel := logLevel
	defer func() { logLevel = originalLevel }()

	SetLogLevel(LogLevelDebug)
	if logLevel != LogLevelDebug {
		t.Errorf("SetLogLevel() logLevel = %v, want LogLevelDebug", logLevel)
	}

	SetLogLevel(LogLevelError)
	if logLevel != LogLevelError {
		t.Errorf("SetLogLevel() logLevel = %v, want LogLevelError", logLevel)
	}
}

func TestSetVerbose(t *testing.T) {
	originalLevel := logLevel
	defer func() { logLevel = originalLevel }()

	SetVerbose(true)
	if logLevel != LogLevelDebug {
		t.Errorf("SetVerbose(true) logLevel = %v, want LogLevelDebug", logLevel)
	}

	SetVerbose(false)
	if logLevel != LogLevelInfo {
		t.Errorf("SetVerbose(false) logLevel = %v, want LogLevelInfo", logLevel)
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want LogLevel
	}{
		{in: "error", want: LogLevelError},
		{in: "WARN", want: LogLevelWarn},
		{in: "warning", want: LogLevelWarn},
		{in: " debug ", want: LogLevelDebug},
		{in: "info", want: LogLevelInfo},
		{in: "", want: LogLevelInfo},
		{in: "loud", want: LogLevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseLogLevel(tt.in); got != tt.want {
				t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestLogOutputFiltering(t *testing.T) {
	originalLevel := logLevel
	var buf bytes.Buffer
	SetLogOutput(&buf)
	defer func() {
		logLevel = originalLevel
		SetLogOutput(nil)
	}()

	SetLogLevel(LogLevelWarn)
	LogError("first %d", 1)
	LogWarn("second")
	LogInfo("hidden info")
	LogDebug("hidden debug")

	out := buf.String()
	if !strings.Contains(out, "[ERROR] first 1") {
		t.Errorf("output should contain the error line, got: %q", out)
	}
	if !strings.Contains(out, "[WARN] second") {
		t.Errorf("output should contain the warning line, got: %q", out)
	}
	if strings.Contains(out, "hidden") {
		t.Errorf("output should not contain messages above the level, got: %q", out)
	}
}

func TestLogLevels(t *testing.T) {
	if LogLevelError >= LogLevelWarn {
		t.Error("LogLevelError should be less than LogLevelWarn")
	}
	if LogLevelWarn >= LogLevelInfo {
		t.Error("LogLevelWarn should be less than LogLevelInfo")
	}
	if LogLevelInfo >= LogLevelDebug {
		t.Error("LogLevelInfo should be less than LogLevelDebug")
	}
	if LogLevelDebug.String() != "debug" {
		t.Errorf("LogLevelDebug.String() = %q, want debug", LogLevelDebug.String())
	}
}
