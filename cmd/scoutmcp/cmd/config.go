package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/scoutmcp/scoutmcp/configs"
	"github.com/scoutmcp/scoutmcp/internal/config"
	"github.com/scoutmcp/scoutmcp/internal/output"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long: `Manage the ScoutMCP configuration file.

Configuration lives in a single optional file at ~/.scoutmcp.yaml.
Precedence (lowest to highest):
  1. Built-in defaults
  2. Config file (~/.scoutmcp.yaml, or --config)
  3. Environment variables (SCOUTMCP_*)`,
		Example: `  # Create a commented starter config
  scoutmcp config init

  # Show the effective configuration (merged from all sources)
  scoutmcp config show

  # Print the config file path
  scoutmcp config path`,
	}

	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigPathCmd())

	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the configuration file",
		Long: `Create ~/.scoutmcp.yaml from the embedded template.

The template documents every key, its default, and its SCOUTMCP_*
environment override. An existing file is left untouched unless --force
is given.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigInit(cmd, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing configuration file")

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Long: `Show the effective configuration after merging defaults, the config
file, and environment variables.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigShow(cmd, jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the configuration file path",
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), config.DefaultPath())
			return nil
		},
	}
}

func runConfigInit(cmd *cobra.Command, force bool) error {
	out := output.New(cmd.ErrOrStderr(), output.WithNoColor(noColor))
	path := config.DefaultPath()

	if _, err := os.Stat(path); err == nil && !force {
		out.Warning("Configuration file already exists")
		out.Statusf("📁", "Location: %s", path)
		out.Status("💡", "Use --force to overwrite it with the template")
		return nil
	}

	if err := os.WriteFile(path, []byte(configs.ExampleConfig), 0o644); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}

	out.Success("Created configuration file")
	out.Statusf("📁", "Location: %s", path)
	out.Newline()
	out.Status("💡", "Edit the file, then run 'scoutmcp config show' to verify")

	return nil
}

func runConfigShow(cmd *cobra.Command, jsonOutput bool) error {
	// Already merged from defaults, file, and env by the root pre-run.
	c := effectiveConfig()

	if jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(c)
	}

	out := output.New(cmd.ErrOrStderr(), output.WithNoColor(noColor))
	source := configPath
	if source == "" {
		source = config.DefaultPath()
		if _, err := os.Stat(source); err != nil {
			source = "built-in defaults (no config file)"
		}
	}
	out.Statusf("📋", "Configuration: %s", source)

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	fmt.Fprint(cmd.OutOrStdout(), string(data))

	return nil
}
