package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/scoutmcp/scoutmcp/internal/corpus"
	"github.com/scoutmcp/scoutmcp/internal/lockfile"
	"github.com/scoutmcp/scoutmcp/internal/logging"
	scoutmcp "github.com/scoutmcp/scoutmcp/internal/mcp"
	"github.com/scoutmcp/scoutmcp/internal/pipeline"
	"github.com/scoutmcp/scoutmcp/internal/telemetry"
)

// serveOptions holds CLI flags for serve.
type serveOptions struct {
	logLevel string
	logFile  string
}

func newServeCmd() *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server on stdio",
		Long: `Run the MCP server on stdio.

Stdout carries the MCP protocol exclusively; all logging goes to the
rotating log file (~/.scoutmcp/logs/scoutmcp.log by default).

This command is meant to be launched by an MCP client (Claude Code,
Cursor), not run interactively.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error (default from config)")
	cmd.Flags().StringVar(&opts.logFile, "log-file", "", "Log file path (default ~/.scoutmcp/logs/scoutmcp.log)")

	return cmd
}

// runServe starts the MCP server over stdio and blocks until the client
// disconnects or the context is cancelled.
//
// MCP over stdio requires stdout to carry JSON-RPC exclusively, so
// nothing may be printed before or while the server runs. Logging is
// file-only in this mode.
func runServe(ctx context.Context, opts serveOptions) error {
	if err := verifyStdinForMCP(); err != nil {
		return err
	}

	c := effectiveConfig()
	level := c.Server.LogLevel
	if opts.logLevel != "" {
		level = opts.logLevel
	}
	logFile := c.Server.LogFile
	if opts.logFile != "" {
		logFile = opts.logFile
	}

	logger, cleanup, err := logging.SetupMCPMode(level, logFile)
	if err != nil {
		// An unwritable log destination must not keep the server down;
		// run silent instead.
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
		slog.SetDefault(logger)
	} else {
		defer cleanup()
	}

	lock, err := acquireServeLock()
	if err != nil {
		return err
	}
	defer func() { _ = lock.Unlock() }()

	pl := pipeline.New(
		pipeline.WithLogger(logger),
		pipeline.WithWalker(corpus.NewWalker(
			corpus.WithWorkers(c.Walk.Workers),
			corpus.WithLogger(logger),
		)),
	)

	server, err := scoutmcp.NewServer(c, pl, logger)
	if err != nil {
		return err
	}
	defer func() { _ = server.Close() }()

	if c.Telemetry.Enabled {
		path := c.Telemetry.Path
		if path == "" {
			path = telemetry.DefaultHistoryPath()
		}
		history, err := telemetry.OpenHistory(path, telemetry.WithHistoryLogger(logger))
		if err != nil {
			// History is best-effort; serve without it.
			logger.Warn("search history disabled",
				slog.String("path", path),
				slog.String("error", err.Error()))
		} else {
			server.SetHistory(history)
			defer func() { _ = history.Close() }()
		}
	}

	return server.Serve(ctx)
}

// verifyStdinForMCP rejects interactive invocations. The stdio transport
// needs stdin on a pipe; a terminal means a user typed the command by
// hand and would sit at a silent prompt.
func verifyStdinForMCP() error {
	fd := os.Stdin.Fd()
	if isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd) {
		return fmt.Errorf("stdin is a terminal, not a pipe: the MCP server must be launched by an MCP client.\n" +
			"Configure your client to run 'scoutmcp serve', or use 'scoutmcp search' for one-shot searches")
	}
	return nil
}

// serveLockPath returns the advisory lock file guarding the serve
// instance (~/.scoutmcp/serve.lock).
func serveLockPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".scoutmcp", "serve.lock")
	}
	return filepath.Join(home, ".scoutmcp", "serve.lock")
}

// acquireServeLock takes the single-instance lock. Two serve processes
// would interleave writes to the shared history database and log file.
func acquireServeLock() (*lockfile.FileLock, error) {
	lock := lockfile.New(serveLockPath())
	acquired, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire serve lock: %w", err)
	}
	if !acquired {
		return nil, fmt.Errorf("another scoutmcp serve instance is already running (lock: %s)", lock.Path())
	}
	return lock, nil
}
