package mcp

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scoutmcp/scoutmcp/internal/corpus"
	"github.com/scoutmcp/scoutmcp/internal/pipeline"
	"github.com/scoutmcp/scoutmcp/internal/search"
	"github.com/scoutmcp/scoutmcp/internal/telemetry"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	pl := pipeline.New(pipeline.WithLogger(logger))
	srv, err := NewServer(nil, pl, logger)
	require.NoError(t, err)
	return srv
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestNewServer_RequiresPipeline(t *testing.T) {
	_, err := NewServer(nil, nil, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "pipeline")
}

func TestNewServer_NilConfigUsesDefaults(t *testing.T) {
	pl := pipeline.New()

	srv, err := NewServer(nil, pl, nil)

	require.NoError(t, err)
	require.NotNil(t, srv)
	name, _ := srv.Info()
	assert.Equal(t, "scoutmcp", name)
	assert.NotNil(t, srv.MCPServer())
	assert.NotNil(t, srv.Collector())
}

func TestServer_SearchTool_Hits(t *testing.T) {
	// Given: a directory with one matching file
	srv := newTestServer(t)
	dir := t.TempDir()
	file := writeFile(t, dir, "notes.txt", "the quick brown fox")

	// When: calling the search tool
	callResult, output, err := srv.mcpSearchHandler(context.Background(), nil, SearchInput{
		Directory: dir,
		Keyword:   "fox",
	})

	// Then: the text content is the report and the structured output
	// carries the same data
	require.NoError(t, err)
	require.NotNil(t, callResult)
	require.Len(t, callResult.Content, 1)
	text, ok := callResult.Content[0].(*mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", callResult.Content[0])
	assert.Equal(t, output.Report, text.Text)

	assert.Equal(t, string(pipeline.OutcomeHits), output.Outcome)
	assert.Contains(t, output.Report, "Search results (1 hits):")
	assert.Contains(t, output.Report, "Hit: "+file)
	require.Len(t, output.Hits, 1)
	assert.Equal(t, file, output.Hits[0].Path)
	assert.Greater(t, output.Hits[0].Score, 0.0)
	assert.Equal(t, 1, output.Found)
	assert.Equal(t, 1, output.Indexed)
	assert.Equal(t, 0, output.Skipped)
	assert.GreaterOrEqual(t, output.DurationMS, int64(0))
}

func TestServer_SearchTool_NoMatches(t *testing.T) {
	srv := newTestServer(t)
	dir := t.TempDir()
	writeFile(t, dir, "notes.txt", "nothing relevant here")

	_, output, err := srv.mcpSearchHandler(context.Background(), nil, SearchInput{
		Directory: dir,
		Keyword:   "quasar",
	})

	require.NoError(t, err)
	assert.Equal(t, string(pipeline.OutcomeNoMatches), output.Outcome)
	assert.Contains(t, output.Report, "No results for keyword 'quasar'")
	assert.Empty(t, output.Hits)
}

func TestServer_SearchTool_NoFiles(t *testing.T) {
	// Given: an empty directory, so no index is ever built
	srv := newTestServer(t)
	dir := t.TempDir()

	// When: calling the search tool
	_, output, err := srv.mcpSearchHandler(context.Background(), nil, SearchInput{
		Directory: dir,
		Keyword:   "anything",
	})

	// Then: an informational success, not an error
	require.NoError(t, err)
	assert.Equal(t, string(pipeline.OutcomeNoFiles), output.Outcome)
	assert.Contains(t, output.Report, "No indexable text files were found")
	assert.Equal(t, 0, output.Indexed)
}

func TestServer_SearchTool_MissingDirectory(t *testing.T) {
	srv := newTestServer(t)

	_, _, err := srv.mcpSearchHandler(context.Background(), nil, SearchInput{
		Keyword: "fox",
	})

	require.Error(t, err)
	var mcpErr *MCPError
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, ErrCodeInvalidParams, mcpErr.Code)
	assert.Contains(t, mcpErr.Message, "directory")
}

func TestServer_SearchTool_MissingKeyword(t *testing.T) {
	srv := newTestServer(t)

	_, _, err := srv.mcpSearchHandler(context.Background(), nil, SearchInput{
		Directory: t.TempDir(),
	})

	require.Error(t, err)
	var mcpErr *MCPError
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, ErrCodeInvalidParams, mcpErr.Code)
	assert.Contains(t, mcpErr.Message, "keyword")
}

func TestServer_SearchTool_NotADirectory(t *testing.T) {
	// Given: a path that exists but is a regular file
	srv := newTestServer(t)
	file := writeFile(t, t.TempDir(), "plain.txt", "content")

	// When: calling the search tool
	_, _, err := srv.mcpSearchHandler(context.Background(), nil, SearchInput{
		Directory: file,
		Keyword:   "content",
	})

	// Then: invalid params, not an internal error
	require.Error(t, err)
	var mcpErr *MCPError
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, ErrCodeInvalidParams, mcpErr.Code)
	assert.Contains(t, mcpErr.Message, "not a directory")
}

func TestServer_SearchTool_RecordsCollectorEvents(t *testing.T) {
	// Given: one search with hits and one without
	srv := newTestServer(t)
	dir := t.TempDir()
	writeFile(t, dir, "notes.txt", "alpha beta")

	ctx := context.Background()
	_, _, err := srv.mcpSearchHandler(ctx, nil, SearchInput{Directory: dir, Keyword: "alpha"})
	require.NoError(t, err)
	_, _, err = srv.mcpSearchHandler(ctx, nil, SearchInput{Directory: dir, Keyword: "gamma"})
	require.NoError(t, err)

	// Then: the collector saw both outcomes
	snap := srv.Collector().Snapshot()
	assert.Equal(t, int64(2), snap.TotalSearches)
	assert.Equal(t, int64(1), snap.Outcomes[string(pipeline.OutcomeHits)])
	assert.Equal(t, int64(1), snap.Outcomes[string(pipeline.OutcomeNoMatches)])
	assert.Equal(t, int64(1), snap.ZeroHitCount)
}

func TestServer_SearchTool_RecordsHistory(t *testing.T) {
	// Given: a server with an attached history store
	srv := newTestServer(t)
	history, err := telemetry.OpenHistory(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = history.Close() })
	srv.SetHistory(history)

	dir := t.TempDir()
	writeFile(t, dir, "notes.txt", "alpha beta")

	// When: a search completes
	_, _, err = srv.mcpSearchHandler(context.Background(), nil, SearchInput{
		Directory: dir,
		Keyword:   "alpha",
	})
	require.NoError(t, err)

	// Then: the event is persisted
	events, err := history.Recent(10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, dir, events[0].Directory)
	assert.Equal(t, "alpha", events[0].Keyword)
	assert.Equal(t, string(pipeline.OutcomeHits), events[0].Outcome)
	assert.Equal(t, 1, events[0].Hits)
}

func TestServer_SearchTool_HistoryFailureDoesNotFailSearch(t *testing.T) {
	// Given: a history store that can no longer accept writes
	srv := newTestServer(t)
	history, err := telemetry.OpenHistory(":memory:")
	require.NoError(t, err)
	require.NoError(t, history.Close())
	srv.SetHistory(history)

	dir := t.TempDir()
	writeFile(t, dir, "notes.txt", "alpha beta")

	// When: a search completes
	_, output, err := srv.mcpSearchHandler(context.Background(), nil, SearchInput{
		Directory: dir,
		Keyword:   "alpha",
	})

	// Then: the search still succeeds
	require.NoError(t, err)
	assert.Equal(t, string(pipeline.OutcomeHits), output.Outcome)
}

func TestServer_Close(t *testing.T) {
	srv := newTestServer(t)

	assert.NoError(t, srv.Close())
}

func TestToSearchOutput_MapsAllFields(t *testing.T) {
	result := &pipeline.Result{
		Report:  "Search results (2 hits):",
		Outcome: pipeline.OutcomeHits,
		Hits: []search.Hit{
			{Path: "a.txt", Score: 1.5},
			{Path: "b.txt", Score: 0.7},
		},
		Stats:    corpus.Stats{Found: 5, Indexed: 3, Skipped: 2},
		Duration: 1500 * time.Millisecond,
	}

	output := toSearchOutput(result)

	assert.Equal(t, result.Report, output.Report)
	assert.Equal(t, "hits", output.Outcome)
	require.Len(t, output.Hits, 2)
	assert.Equal(t, "a.txt", output.Hits[0].Path)
	assert.InDelta(t, 1.5, output.Hits[0].Score, 0.0001)
	assert.Equal(t, 5, output.Found)
	assert.Equal(t, 3, output.Indexed)
	assert.Equal(t, 2, output.Skipped)
	assert.Equal(t, int64(1500), output.DurationMS)
}
