package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/scoutmcp/scoutmcp/internal/telemetry"
)

func newStatsCmd() *cobra.Command {
	var jsonOutput bool
	var limit int

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show search telemetry",
		Long: `Display search telemetry from the local history database:
totals, outcome breakdown, top keywords, and recent searches.

History is recorded by the MCP server unless disabled in config. All
data stays on this machine.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStats(cmd, jsonOutput, limit)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of keywords and recent searches to show")

	return cmd
}

// StatsOutput is the JSON output format for stats.
type StatsOutput struct {
	Path          string           `json:"path"`
	TotalSearches int64            `json:"total_searches"`
	ByOutcome     map[string]int64 `json:"by_outcome"`
	TopKeywords   []StatsKeyword   `json:"top_keywords"`
	Recent        []StatsSearch    `json:"recent"`
}

// StatsKeyword is a keyword and its search count.
type StatsKeyword struct {
	Keyword string `json:"keyword"`
	Count   int64  `json:"count"`
}

// StatsSearch is one recorded search.
type StatsSearch struct {
	Timestamp  string `json:"ts"`
	Directory  string `json:"directory"`
	Keyword    string `json:"keyword"`
	Outcome    string `json:"outcome"`
	Hits       int    `json:"hits"`
	Indexed    int    `json:"indexed"`
	DurationMS int64  `json:"duration_ms"`
}

func runStats(cmd *cobra.Command, jsonOutput bool, limit int) error {
	cleanup := setupCLILogging()
	defer cleanup()

	c := effectiveConfig()
	path := c.Telemetry.Path
	if path == "" {
		path = telemetry.DefaultHistoryPath()
	}

	// Opening would create an empty database; report the absence instead.
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("no search history at %s\nRun searches through 'scoutmcp serve' first", path)
	}

	history, err := telemetry.OpenHistory(path)
	if err != nil {
		return err
	}
	defer func() { _ = history.Close() }()

	totals, err := history.Totals()
	if err != nil {
		return err
	}
	keywords, err := history.TopKeywords(limit)
	if err != nil {
		return err
	}
	recent, err := history.Recent(limit)
	if err != nil {
		return err
	}

	stats := buildStatsOutput(path, totals, keywords, recent)

	if jsonOutput {
		return printStatsJSON(cmd, stats)
	}
	return printStatsFormatted(cmd, stats)
}

func buildStatsOutput(path string, totals *telemetry.Totals, keywords []telemetry.KeywordCount, recent []telemetry.Event) *StatsOutput {
	stats := &StatsOutput{
		Path:          path,
		TotalSearches: totals.Searches,
		ByOutcome:     totals.ByOutcome,
		TopKeywords:   make([]StatsKeyword, 0, len(keywords)),
		Recent:        make([]StatsSearch, 0, len(recent)),
	}

	for _, kc := range keywords {
		stats.TopKeywords = append(stats.TopKeywords, StatsKeyword{
			Keyword: kc.Keyword,
			Count:   kc.Count,
		})
	}

	for _, e := range recent {
		stats.Recent = append(stats.Recent, StatsSearch{
			Timestamp:  e.Timestamp.Format("2006-01-02 15:04:05"),
			Directory:  e.Directory,
			Keyword:    e.Keyword,
			Outcome:    e.Outcome,
			Hits:       e.Hits,
			Indexed:    e.Indexed,
			DurationMS: e.Duration.Milliseconds(),
		})
	}

	return stats
}

func printStatsJSON(cmd *cobra.Command, stats *StatsOutput) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(stats)
}

func printStatsFormatted(cmd *cobra.Command, stats *StatsOutput) error {
	w := cmd.OutOrStdout()

	fmt.Fprintln(w, "Search History")
	fmt.Fprintln(w, "==============")
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Database:       %s\n", stats.Path)
	fmt.Fprintf(w, "Total Searches: %d\n", stats.TotalSearches)
	fmt.Fprintln(w)

	// Outcome breakdown
	if len(stats.ByOutcome) > 0 {
		fmt.Fprintln(w, "By Outcome:")
		for _, outcome := range []string{"hits", "no_matches", "no_files"} {
			if count, ok := stats.ByOutcome[outcome]; ok {
				fmt.Fprintf(w, "  %s: %d\n", outcome, count)
			}
		}
		fmt.Fprintln(w)
	}

	// Top keywords
	if len(stats.TopKeywords) > 0 {
		fmt.Fprintln(w, "Top Keywords:")
		for i, kc := range stats.TopKeywords {
			fmt.Fprintf(w, "  %d. %s (%d)\n", i+1, kc.Keyword, kc.Count)
		}
		fmt.Fprintln(w)
	} else {
		fmt.Fprintln(w, "Top Keywords: (none recorded yet)")
		fmt.Fprintln(w)
	}

	// Recent searches
	if len(stats.Recent) > 0 {
		fmt.Fprintln(w, "Recent Searches:")
		for _, s := range stats.Recent {
			fmt.Fprintf(w, "  %s  %q in %s: %s (%d hits, %d indexed, %dms)\n",
				s.Timestamp, s.Keyword, s.Directory, s.Outcome,
				s.Hits, s.Indexed, s.DurationMS)
		}
	} else {
		fmt.Fprintln(w, "Recent Searches: (none)")
	}

	return nil
}
