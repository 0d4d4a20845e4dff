package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config describes a logging sink: the minimum level, the rotated file
// it writes to, and whether lines are mirrored to stderr.
type Config struct {
	// Level is the minimum level name: debug, info, warn, error.
	Level string
	// FilePath is the rotated log file destination.
	FilePath string
	// MaxSizeMB rotates the file once it exceeds this size.
	MaxSizeMB int
	// MaxFiles bounds how many rotated files are kept.
	MaxFiles int
	// WriteToStderr mirrors every line to stderr for interactive runs.
	WriteToStderr bool
}

// DefaultConfig returns the standard file-logging setup: info level to
// ~/.scoutmcp/logs/scoutmcp.log, 10 MB per file, 3 rotated files kept,
// mirrored to stderr.
func DefaultConfig() Config {
	return Config{
		Level:         "info",
		FilePath:      DefaultLogPath(),
		MaxSizeMB:     10,
		MaxFiles:      3,
		WriteToStderr: true,
	}
}

// DebugConfig is DefaultConfig at debug level, for --verbose runs.
func DebugConfig() Config {
	cfg := DefaultConfig()
	cfg.Level = "debug"
	return cfg
}

// Setup opens the rotating log file and returns a JSON slog.Logger
// writing to it. The cleanup function flushes and closes the file.
func Setup(cfg Config) (*slog.Logger, func(), error) {
	writer, err := NewRotatingWriter(cfg.FilePath, cfg.MaxSizeMB, cfg.MaxFiles)
	if err != nil {
		return nil, nil, err
	}

	var sink io.Writer = writer
	if cfg.WriteToStderr {
		sink = io.MultiWriter(writer, os.Stderr)
	}

	logger := slog.New(slog.NewJSONHandler(sink, &slog.HandlerOptions{
		Level: LevelFromString(cfg.Level),
	}))

	cleanup := func() {
		_ = writer.Sync()
		_ = writer.Close()
	}
	return logger, cleanup, nil
}

var levelNames = map[string]slog.Level{
	"debug":   slog.LevelDebug,
	"info":    slog.LevelInfo,
	"warn":    slog.LevelWarn,
	"warning": slog.LevelWarn,
	"error":   slog.LevelError,
}

// LevelFromString maps a level name to its slog.Level, case
// insensitively. Unknown names fall back to info.
func LevelFromString(name string) slog.Level {
	if lvl, ok := levelNames[strings.ToLower(name)]; ok {
		return lvl
	}
	return slog.LevelInfo
}
