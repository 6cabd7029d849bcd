package docgen

import (
	"bytes"
	"strings"
	"testing"
)

func TestLogger(t *testing.T) {
	tests := []struct {
		name           string
		level          LogLevel
		expectedOutput []string
		notExpected    []string
	}{
		{
			name:           "debug level shows all messages",
			level:          LogDebug,
			expectedOutput: []string{"[DEBUG] debug message", "[INFO] info message", "[WARN] warn message", "[ERROR] error message"},
		},
		{
			name:           "info level hides debug messages",
			level:          LogInfo,
			expectedOutput: []string{"[INFO]", "[WARN]", "[ERROR]"},
			notExpected:    []string{"[DEBUG]"},
		},
		{
			name:           "error level shows only errors",
			level:          LogError,
			expectedOutput: []string{"[ERROR] error message"},
			notExpected:    []string{"[DEBUG]", "[INFO]", "[WARN]"},
		},
		{
			name:        "off level shows nothing",
			level:       LogOff,
			notExpected: []string{"message"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			l := NewLogger(&buf, tt.level)
			l.Debug("debug message")
			l.Info("info message")
			l.Warn("warn message")
			l.Error("error message")

			output := buf.String()
			for _, expected := range tt.expectedOutput {
				if !strings.Contains(output, expected) {
					t.Errorf("expected output to contain %q, got:\n%s", expected, output)
				}
			}
			for _, unexpected := range tt.notExpected {
				if strings.Contains(output, unexpected) {
					t.Errorf("expected output not to contain %q, got:\n%s", unexpected, output)
				}
			}
		})
	}
}

func TestLoggerFields(t *testing.T) {
	var buf bytes.Buffer
	base := NewLogger(&buf, LogDebug)
	derived := base.WithField("part", "word/document.xml").WithFields(Fields{"count": 3})

	derived.Info("rendered")
	line := buf.String()
	if !strings.Contains(line, "rendered count=3 part=word/document.xml") {
		t.Errorf("fields missing or unsorted: %q", line)
	}

	buf.Reset()
	base.Info("plain")
	if strings.Contains(buf.String(), "part=") {
		t.Errorf("parent logger picked up derived fields: %q", buf.String())
	}

	base.SetLevel(LogError)
	buf.Reset()
	derived.Info("hidden")
	if buf.Len() != 0 {
		t.Errorf("derived logger ignores the shared level: %q", buf.String())
	}
}

func TestLoggerDebugCommand(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf, LogInfo)
	l.DebugCommand("name", "ACME")
	if buf.Len() != 0 {
		t.Errorf("DebugCommand logged at info level: %q", buf.String())
	}

	l.SetLevel(LogDebug)
	l.DebugCommand("name", "ACME")
	if !strings.Contains(buf.String(), "command {name} -> ACME") {
		t.Errorf("unexpected output: %q", buf.String())
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]LogLevel{
		"debug":   LogDebug,
		"INFO":    LogInfo,
		"warn":    LogWarn,
		"error":   LogError,
		"off":     LogOff,
		"unknown": LogInfo,
	}
	for input, want := range tests {
		if got := parseLogLevel(input); got != want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestSetLogger(t *testing.T) {
	original := GetLogger()
	defer SetLogger(original)

	var buf bytes.Buffer
	SetLogger(NewLogger(&buf, LogDebug))
	if _, _, err := NormalizeDelimiters(buildDocx(t, map[string]string{
		"word/document.xml": documentXML(para("[name]")),
	})); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "part=word/document.xml") {
		t.Errorf("normalizer did not log through the package logger: %q", buf.String())
	}
}
