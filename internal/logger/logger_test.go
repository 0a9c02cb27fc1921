package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewWithWriter_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "warn", "json")

	log.Info("hidden")
	log.With("run_id", "r1").Warnf("shown %d", 1)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info message leaked at warn level: %s", out)
	}
	if !strings.Contains(out, `"run_id":"r1"`) || !strings.Contains(out, "shown 1") {
		t.Errorf("expected warn message with run_id field, got: %s", out)
	}
}

func TestNewWithWriter_BadLevelDefaultsToWarn(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "loud", "json")
	log.Debugf("debug")
	log.Warnf("warn")
	if strings.Contains(buf.String(), `"debug"`) {
		t.Errorf("debug should be filtered: %s", buf.String())
	}
}
