// Package cmd provides the CLI commands for ScoutMCP.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/scoutmcp/scoutmcp/internal/config"
	scouterrors "github.com/scoutmcp/scoutmcp/internal/errors"
	"github.com/scoutmcp/scoutmcp/internal/logging"
	"github.com/scoutmcp/scoutmcp/internal/profiling"
	"github.com/scoutmcp/scoutmcp/pkg/version"
)

// Global flags, shared by every command.
var (
	configPath string
	verbose    bool
	noColor    bool

	// cfg is the effective configuration, loaded once per invocation.
	cfg *config.Config
)

// Profiling flags.
var (
	profileCPU   string
	profileMem   string
	profileTrace string
	profiler     = profiling.NewProfiler()
	cpuCleanup   func()
	traceCleanup func()
)

// NewRootCmd creates the root command for the scoutmcp CLI.
func NewRootCmd() *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "scoutmcp",
		Short: "Disposable keyword search over a directory, served via MCP",
		Long: `ScoutMCP searches for keywords in the text files of a directory.

Every search is self-contained: walk the directory, build a throwaway
in-memory index, run the query, return the ranked matches, discard the
index. No index files, no daemons, no state between searches.

Run 'scoutmcp' with no arguments to serve MCP on stdio (the mode MCP
clients launch), or 'scoutmcp search' for a one-shot search.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if err := initConfig(); err != nil {
				return err
			}
			return startProfiling()
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return stopProfiling()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// If arguments were given, show help instead of guessing.
			if len(args) > 0 {
				return cmd.Help()
			}
			// Bare invocation serves MCP on stdio. MCP clients launch the
			// binary without arguments, so this must stay protocol-clean.
			return runServe(cmd.Context(), opts)
		},
	}

	cmd.SetVersionTemplate("scoutmcp version {{.Version}}\n")

	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.scoutmcp.yaml)")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable styled output")

	cmd.PersistentFlags().StringVar(&profileCPU, "profile-cpu", "", "Write CPU profile to file")
	cmd.PersistentFlags().StringVar(&profileMem, "profile-mem", "", "Write memory profile to file")
	cmd.PersistentFlags().StringVar(&profileTrace, "profile-trace", "", "Write execution trace to file")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newClassifyCmd())
	cmd.AddCommand(newStatsCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newLogsCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	cmd := NewRootCmd()
	if err := cmd.Execute(); err != nil {
		fmt.Fprint(os.Stderr, scouterrors.FormatForCLI(err))
		return err
	}
	return nil
}

// initConfig loads the effective configuration for this invocation.
func initConfig() error {
	loaded, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if verbose {
		loaded.Server.LogLevel = "debug"
	}
	cfg = loaded
	return nil
}

// effectiveConfig returns the loaded configuration, falling back to the
// defaults when a command runs without the root PersistentPreRunE.
func effectiveConfig() *config.Config {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	return cfg
}

// startProfiling starts CPU/trace profiling when the flags ask for it.
func startProfiling() error {
	var err error

	if profileCPU != "" {
		cpuCleanup, err = profiler.StartCPU(profileCPU)
		if err != nil {
			return fmt.Errorf("failed to start CPU profile: %w", err)
		}
	}

	if profileTrace != "" {
		traceCleanup, err = profiler.StartTrace(profileTrace)
		if err != nil {
			if cpuCleanup != nil {
				cpuCleanup()
			}
			return fmt.Errorf("failed to start trace: %w", err)
		}
	}

	return nil
}

// stopProfiling stops active profiles and writes the heap profile if
// requested.
func stopProfiling() error {
	if cpuCleanup != nil {
		cpuCleanup()
		cpuCleanup = nil
	}

	if traceCleanup != nil {
		traceCleanup()
		traceCleanup = nil
	}

	if profileMem != "" {
		if err := profiler.WriteHeap(profileMem); err != nil {
			return fmt.Errorf("failed to write memory profile: %w", err)
		}
	}

	return nil
}

// setupCLILogging routes slog to the log file for one-shot commands, so
// status output on the console stays clean. Setup failure is not fatal
// here: the command itself can still run.
func setupCLILogging() func() {
	c := effectiveConfig()

	logCfg := logging.DefaultConfig()
	logCfg.Level = c.Server.LogLevel
	if c.Server.LogFile != "" {
		logCfg.FilePath = c.Server.LogFile
	}
	logCfg.WriteToStderr = verbose

	logger, cleanup, err := logging.Setup(logCfg)
	if err != nil {
		return func() {}
	}
	slog.SetDefault(logger)
	return cleanup
}
