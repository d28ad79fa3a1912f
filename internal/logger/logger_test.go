package logger

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestSetVerbose(t *testing.T) {
	// Reset state after test
	defer func() {
		SetVerbose(false)
		SetOutput(os.Stderr)
	}()

	SetVerbose(false)
	if IsVerbose() {
		t.Error("expected verbose to be false initially")
	}

	SetVerbose(true)
	if !IsVerbose() {
		t.Error("expected verbose to be true after SetVerbose(true)")
	}

	SetVerbose(false)
	if IsVerbose() {
		t.Error("expected verbose to be false after SetVerbose(false)")
	}
}

func TestDebug_WhenVerbose(t *testing.T) {
	defer func() {
		SetVerbose(false)
		SetOutput(os.Stderr)
	}()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(true)

	Debug("test message %s", "arg")

	output := buf.String()
	if !strings.Contains(output, "level=DEBUG") {
		t.Errorf("expected debug level in output: %q", output)
	}
	if !strings.Contains(output, `msg="test message arg"`) {
		t.Errorf("unexpected output: %q", output)
	}
}

func TestDebug_WhenNotVerbose(t *testing.T) {
	defer func() {
		SetVerbose(false)
		SetOutput(os.Stderr)
	}()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(false)

	Debug("hidden %d", 1)

	if buf.Len() != 0 {
		t.Errorf("expected no output when verbose is disabled, got %q", buf.String())
	}
}

func TestInfoAndWarn_AlwaysWritten(t *testing.T) {
	defer func() {
		SetVerbose(false)
		SetOutput(os.Stderr)
	}()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(false)

	Info("harvested %d of %d", 20, 40)
	Warn("skipping record")
	Error("publish failed")

	output := buf.String()
	for _, want := range []string{"level=INFO", "level=WARN", "level=ERROR", "harvested 20 of 40"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output: %q", want, output)
		}
	}
}

func TestSection_OnlyWhenVerbose(t *testing.T) {
	defer func() {
		SetVerbose(false)
		SetOutput(os.Stderr)
	}()

	var buf bytes.Buffer
	SetOutput(&buf)

	SetVerbose(false)
	Section("Harvest")
	if buf.Len() != 0 {
		t.Errorf("expected no section header, got %q", buf.String())
	}

	SetVerbose(true)
	Section("Harvest")
	if buf.String() != "\n=== Harvest ===\n" {
		t.Errorf("unexpected section output: %q", buf.String())
	}
}

func TestWith_AddsComponent(t *testing.T) {
	defer func() {
		SetVerbose(false)
		SetOutput(os.Stderr)
	}()

	var buf bytes.Buffer
	SetOutput(&buf)

	With("publisher").Info("swapped", "path", "/tmp/catalog.db")

	output := buf.String()
	if !strings.Contains(output, "component=publisher") || !strings.Contains(output, "path=/tmp/catalog.db") {
		t.Errorf("unexpected output: %q", output)
	}
}
