package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/scoutmcp/scoutmcp/internal/corpus"
	"github.com/scoutmcp/scoutmcp/internal/output"
	"github.com/scoutmcp/scoutmcp/internal/pipeline"
)

// searchOptions holds CLI flags for search.
type searchOptions struct {
	dir        string
	jsonOutput bool
}

func newSearchCmd() *cobra.Command {
	var opts searchOptions

	cmd := &cobra.Command{
		Use:   "search <keyword>",
		Short: "Search text files under a directory",
		Long: `Search for a keyword in the text files under a directory.

Builds a throwaway in-memory index for this run, prints the ranked
matches, and discards the index. Nothing is cached between runs.

Examples:
  scoutmcp search TODO
  scoutmcp search handleRequest --dir ~/code/project
  scoutmcp search "frobnicate" --dir ./src --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd.Context(), cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.dir, "dir", "d", ".", "Directory to search")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output results as JSON")

	return cmd
}

func runSearch(ctx context.Context, cmd *cobra.Command, keyword string, opts searchOptions) error {
	cleanup := setupCLILogging()
	defer cleanup()

	c := effectiveConfig()
	out := output.New(cmd.ErrOrStderr(), output.WithNoColor(noColor))

	pl := pipeline.New(
		pipeline.WithLogger(slog.Default()),
		pipeline.WithWalker(corpus.NewWalker(
			corpus.WithWorkers(c.Walk.Workers),
			corpus.WithLogger(slog.Default()),
		)),
	)

	if !opts.jsonOutput {
		out.Statusf("🔍", "Searching for %q in %s", keyword, opts.dir)
	}

	result, err := pl.Run(ctx, pipeline.Request{Directory: opts.dir, Keyword: keyword})
	if err != nil {
		return err
	}

	if opts.jsonOutput {
		return printSearchJSON(cmd, result)
	}

	// The report is the payload and goes to stdout; status stays on stderr.
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), result.Report)

	out.Statusf("", "%d files found, %d indexed, %d skipped in %s",
		result.Stats.Found, result.Stats.Indexed, result.Stats.Skipped,
		result.Duration.Round(time.Millisecond))
	return nil
}

// printSearchJSON writes the result in the same shape the MCP tool
// returns as structured content.
func printSearchJSON(cmd *cobra.Command, result *pipeline.Result) error {
	type jsonHit struct {
		Path  string  `json:"path"`
		Score float64 `json:"score"`
	}
	type jsonResult struct {
		Report     string    `json:"report"`
		Outcome    string    `json:"outcome"`
		Hits       []jsonHit `json:"hits"`
		Found      int       `json:"found"`
		Indexed    int       `json:"indexed"`
		Skipped    int       `json:"skipped"`
		DurationMS int64     `json:"duration_ms"`
	}

	payload := jsonResult{
		Report:     result.Report,
		Outcome:    string(result.Outcome),
		Hits:       make([]jsonHit, 0, len(result.Hits)),
		Found:      result.Stats.Found,
		Indexed:    result.Stats.Indexed,
		Skipped:    result.Stats.Skipped,
		DurationMS: result.Duration.Milliseconds(),
	}
	for _, h := range result.Hits {
		payload.Hits = append(payload.Hits, jsonHit{Path: h.Path, Score: h.Score})
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}
