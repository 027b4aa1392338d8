package debug

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestWarnAlwaysWrites(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stderr)
	SetEnabled(false)

	Warn("saving data: %v", "disk full")
	Log("hidden %d", 1)

	out := buf.String()
	if !strings.Contains(out, "saving data: disk full") {
		t.Errorf("expected warning in output, got %q", out)
	}
	if strings.Contains(out, "hidden") {
		t.Errorf("debug log written while disabled: %q", out)
	}
}

func TestLogWhenEnabled(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stderr)
	SetEnabled(true)
	defer SetEnabled(false)

	Log("mounted %s", "profile")
	LogEnterExit("fetch")()

	out := buf.String()
	if !strings.Contains(out, "mounted profile") {
		t.Errorf("expected debug line, got %q", out)
	}
	if !strings.Contains(out, "-> fetch") || !strings.Contains(out, "<- fetch") {
		t.Errorf("expected enter/exit lines, got %q", out)
	}
}
