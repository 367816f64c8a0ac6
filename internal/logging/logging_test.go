package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	log "github.com/sirupsen/logrus"
)

func TestNewLevels(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Level = "debug"

	logger, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if logger.GetLevel() != log.DebugLevel {
		t.Fatalf("level = %v, want debug", logger.GetLevel())
	}
}

func TestNewBadLevel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Level = "loud"

	if _, err := New(cfg); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestNewConsoleDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Console = false

	logger, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if logger.Out != io.Discard {
		t.Fatal("console-disabled logger should discard output")
	}
}

func TestNewFileHook(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Console = false
	cfg.FilePath = filepath.Join(t.TempDir(), "getter.log")

	logger, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if len(logger.Hooks) == 0 {
		t.Fatal("file path set but no hook installed")
	}

	logger.Info("file hook entry")

	data, err := os.ReadFile(cfg.FilePath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "file hook entry") {
		t.Fatalf("log file missing entry, got %q", data)
	}
}

func TestDiscard(t *testing.T) {
	logger := Discard()
	if logger.Out != io.Discard {
		t.Fatal("Discard logger should drop output")
	}
	logger.Info("must not panic")
}
