package pipeline

import (
	"fmt"
	"strings"

	"github.com/scoutmcp/scoutmcp/internal/classify"
	"github.com/scoutmcp/scoutmcp/internal/corpus"
	"github.com/scoutmcp/scoutmcp/internal/search"
)

// formatHits renders the ranked hit list.
func formatHits(hits []search.Hit) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Search results (%d hits):", len(hits)))
	for _, h := range hits {
		sb.WriteString(fmt.Sprintf("\nHit: %s (Score: %.2f)", h.Path, h.Score))
	}
	return sb.String()
}

// formatNoMatches renders the zero-hit notice. Zero hits is a success,
// not an error, so the report names the keyword and the corpus size the
// query ran against.
func formatNoMatches(keyword string, indexed int) string {
	return fmt.Sprintf("No results for keyword '%s'. Indexed files: %d.", keyword, indexed)
}

// formatNoFiles renders the empty-corpus notice, including the extension
// denylist so callers can tell why their files were skipped.
func formatNoFiles(dir string, stats corpus.Stats) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("No indexable text files were found in directory '%s'.", dir))
	sb.WriteString(fmt.Sprintf("\nFound files: %d, Skipped: %d", stats.Found, stats.Skipped))
	sb.WriteString(fmt.Sprintf("\nBinary extensions excluded from indexing: %s",
		strings.Join(classify.BinaryExtensions(), ", ")))
	return sb.String()
}
