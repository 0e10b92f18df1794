package internal

import (
	"errors"

	"LineCounter/internal/scanner"
)

// WalkOptions - public options from CLI.
type WalkOptions struct {
	Root       string
	BufferSize int
	Archives   bool
	KeepGoing  bool
	LogFile    string
	LogLevel   string
	NoColor    bool
	NoPause    bool
}

// Validate checks invariants.
func (o *WalkOptions) Validate() error {
	if o.Root == "" {
		return errors.New("root directory is required")
	}
	if o.BufferSize < 0 {
		return errors.New("buffer-size must not be negative")
	}
	switch o.LogLevel {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return errors.New("log-level must be one of debug, info, warn, error")
	}
	return nil
}

// Prepare fills in defaults.
func (o *WalkOptions) Prepare() {
	if o.BufferSize <= 0 {
		o.BufferSize = scanner.DefaultBufferSize
	}
	if o.LogLevel == "" {
		o.LogLevel = "info"
	}
}
