// Package logging builds the process logger from configuration.
package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/rifflock/lfshook"
	log "github.com/sirupsen/logrus"
)

// Config controls the logger's level and destinations.
type Config struct {
	// Level is a logrus level name: trace, debug, info, warn, error.
	Level string `yaml:"level"`

	// Console enables output to stderr.
	Console bool `yaml:"console"`

	// FilePath, when set, duplicates entries into the named file.
	FilePath string `yaml:"filepath"`
}

// DefaultConfig returns the default logging configuration.
func DefaultConfig() Config {
	return Config{
		Level:   "info",
		Console: true,
	}
}

// New builds a logrus logger from cfg. Console output goes to stderr;
// when FilePath is set a file hook writes the same entries there.
func New(cfg Config) (*log.Logger, error) {
	logger := log.New()
	logger.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("logging: parse level %q: %w", cfg.Level, err)
	}
	logger.SetLevel(level)

	if cfg.Console {
		logger.SetOutput(os.Stderr)
	} else {
		logger.SetOutput(io.Discard)
	}

	if cfg.FilePath != "" {
		logger.AddHook(lfshook.NewHook(cfg.FilePath, logger.Formatter))
	}

	return logger, nil
}

// Discard returns a logger that drops everything. Library code uses it
// when the caller does not supply a logger.
func Discard() *log.Logger {
	logger := log.New()
	logger.SetOutput(io.Discard)
	return logger
}
