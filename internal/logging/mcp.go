package logging

import (
	"log/slog"
)

// SetupMCPMode initializes logging for MCP serve mode.
//
// MCP over stdio requires stdout to carry JSON-RPC exclusively, and many
// clients also treat stray stderr output as noise. In serve mode logs
// therefore go to the rotating file only. An empty logFile uses the
// default path.
func SetupMCPMode(level, logFile string) (*slog.Logger, func(), error) {
	if logFile == "" {
		logFile = DefaultLogPath()
	}
	cfg := Config{
		Level:         level,
		FilePath:      logFile,
		MaxSizeMB:     10,
		MaxFiles:      3,
		WriteToStderr: false,
	}

	logger, cleanup, err := Setup(cfg)
	if err != nil {
		return nil, nil, err
	}

	slog.SetDefault(logger)
	logger.Info("mcp mode logging initialized",
		slog.String("log_file", cfg.FilePath),
		slog.String("level", cfg.Level))

	return logger, cleanup, nil
}
