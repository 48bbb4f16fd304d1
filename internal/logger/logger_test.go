package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNewModes(t *testing.T) {
	for _, mode := range []string{"", ModeWarn, ModeDebug, ModeRelease, ModeQuiet} {
		l, err := New(mode)
		if err != nil {
			t.Fatalf("New(%q) error = %v", mode, err)
		}
		if l == nil {
			t.Fatalf("New(%q) returned nil logger", mode)
		}
	}
	if _, err := New("verbose"); err == nil {
		t.Fatalf("New(verbose) should fail")
	}
}

func TestDefaultModeHidesInfo(t *testing.T) {
	for _, mode := range []string{"", ModeWarn} {
		l, _ := New(mode)
		if l.Core().Enabled(zapcore.InfoLevel) {
			t.Fatalf("New(%q) logs info lines", mode)
		}
		if !l.Core().Enabled(zapcore.WarnLevel) {
			t.Fatalf("New(%q) hides warnings", mode)
		}
	}
	l, _ := New(ModeDebug)
	if !l.Core().Enabled(zapcore.DebugLevel) {
		t.Fatalf("debug mode should log debug lines")
	}
}

func TestQuietDisablesEverything(t *testing.T) {
	l, _ := New(ModeQuiet)
	if l.Core().Enabled(l.Level()) {
		t.Fatalf("quiet logger should not log")
	}
}
