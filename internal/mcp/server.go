package mcp

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/scoutmcp/scoutmcp/internal/config"
	"github.com/scoutmcp/scoutmcp/internal/pipeline"
	"github.com/scoutmcp/scoutmcp/internal/telemetry"
	"github.com/scoutmcp/scoutmcp/pkg/version"
)

// ServerName is the implementation name announced to MCP clients.
const ServerName = "scoutmcp"

// serverInstructions tells AI clients what this server is for.
const serverInstructions = "Searches for keywords in text files within a specified directory."

// searchToolDescription documents the search tool for AI clients.
const searchToolDescription = "Searches for a keyword in text files under a directory and returns ranked matches."

// DefaultSearchTimeout bounds one search tool call. Each call walks the
// directory and builds a fresh index, so large trees take real time.
const DefaultSearchTimeout = 60 * time.Second

// Server is the MCP server shell around the search pipeline.
// Every search tool call runs the full pipeline: walk the directory,
// build an ephemeral index, query it once, discard it.
type Server struct {
	mcp       *mcp.Server
	pipeline  *pipeline.Pipeline
	collector *telemetry.Collector
	config    *config.Config
	logger    *slog.Logger
	timeout   time.Duration

	// Persistent search history (optional, set via SetHistory)
	history *telemetry.History

	mu sync.RWMutex
}

// SearchInput defines the input schema for the search tool.
type SearchInput struct {
	Directory string `json:"directory" jsonschema:"path of the directory to search"`
	Keyword   string `json:"keyword" jsonschema:"the keyword to search for"`
}

// SearchOutput defines the structured output of the search tool.
// The text content of the tool result carries the same information as a
// human-readable report.
type SearchOutput struct {
	Report     string      `json:"report" jsonschema:"human-readable search report"`
	Outcome    string      `json:"outcome" jsonschema:"hits, no_matches, or no_files"`
	Hits       []HitOutput `json:"hits" jsonschema:"ranked matches, best first"`
	Found      int         `json:"found" jsonschema:"files discovered during the walk"`
	Indexed    int         `json:"indexed" jsonschema:"files classified as text and indexed"`
	Skipped    int         `json:"skipped" jsonschema:"files excluded from indexing"`
	DurationMS int64       `json:"duration_ms" jsonschema:"wall time of the search in milliseconds"`
}

// HitOutput is one ranked match in the structured output.
type HitOutput struct {
	Path  string  `json:"path" jsonschema:"file path of the match"`
	Score float64 `json:"score" jsonschema:"relevance score"`
}

// NewServer creates a new MCP server around the given pipeline.
// A nil config falls back to defaults; a nil logger falls back to
// slog.Default(). The in-process telemetry collector is always active
// and feeds the metrics resource.
func NewServer(cfg *config.Config, pl *pipeline.Pipeline, logger *slog.Logger) (*Server, error) {
	if pl == nil {
		return nil, errors.New("search pipeline is required")
	}
	if cfg == nil {
		cfg = config.NewConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		pipeline:  pl,
		collector: telemetry.NewCollector(),
		config:    cfg,
		logger:    logger,
		timeout:   DefaultSearchTimeout,
	}

	s.mcp = mcp.NewServer(
		&mcp.Implementation{
			Name:    ServerName,
			Version: version.Version,
		},
		&mcp.ServerOptions{
			Instructions: serverInstructions,
		},
	)

	s.registerTools()
	s.registerMetricsResource()

	return s, nil
}

// SetHistory attaches the persistent search history store.
// Recording is best-effort: a history failure is logged at warn and
// never fails a search.
func (s *Server) SetHistory(h *telemetry.History) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = h
}

// MCPServer returns the underlying MCP server instance.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcp
}

// Info returns the server name and version.
func (s *Server) Info() (name, ver string) {
	return ServerName, version.Version
}

// Collector returns the in-process telemetry collector.
func (s *Server) Collector() *telemetry.Collector {
	return s.collector
}

// registerTools registers all tools with the MCP server.
func (s *Server) registerTools() {
	s.logger.Debug("Registering MCP tools")

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "search",
		Description: searchToolDescription,
	}, s.mcpSearchHandler)
	s.logger.Debug("Registered tool", slog.String("name", "search"))

	s.logger.Info("MCP tools registered", slog.Int("count", 1))
}

// mcpSearchHandler is the MCP SDK handler for the search tool.
// The tool result text is the pipeline report verbatim; the structured
// output carries the same data plus counters for programmatic use.
func (s *Server) mcpSearchHandler(ctx context.Context, _ *mcp.CallToolRequest, input SearchInput) (
	*mcp.CallToolResult,
	SearchOutput,
	error,
) {
	if input.Directory == "" {
		return nil, SearchOutput{}, NewInvalidParamsError("directory parameter is required")
	}
	if input.Keyword == "" {
		return nil, SearchOutput{}, NewInvalidParamsError("keyword parameter is required")
	}

	start := time.Now()
	requestID := generateRequestID()

	s.logger.Info("search started",
		slog.String("request_id", requestID),
		slog.String("directory", input.Directory),
		slog.String("keyword", input.Keyword))

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	result, err := s.pipeline.Run(ctx, pipeline.Request{
		Directory: input.Directory,
		Keyword:   input.Keyword,
	})
	duration := time.Since(start)

	if err != nil {
		s.logger.Error("search failed",
			slog.String("request_id", requestID),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		return nil, SearchOutput{}, MapError(err)
	}

	s.logger.Info("search completed",
		slog.String("request_id", requestID),
		slog.String("outcome", string(result.Outcome)),
		slog.Duration("duration", duration),
		slog.Int("hits", len(result.Hits)))

	s.recordTelemetry(input, result)

	callResult := &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: result.Report},
		},
	}
	return callResult, toSearchOutput(result), nil
}

// recordTelemetry feeds the collector and, when attached, the history
// store. Only successful runs carry an outcome to record.
func (s *Server) recordTelemetry(input SearchInput, result *pipeline.Result) {
	event := telemetry.Event{
		Directory: input.Directory,
		Keyword:   input.Keyword,
		Outcome:   string(result.Outcome),
		Found:     result.Stats.Found,
		Indexed:   result.Stats.Indexed,
		Skipped:   result.Stats.Skipped,
		Hits:      len(result.Hits),
		Duration:  result.Duration,
		Timestamp: time.Now(),
	}
	s.collector.Record(event)

	s.mu.RLock()
	history := s.history
	s.mu.RUnlock()

	if history == nil {
		return
	}
	if err := history.Record(event); err != nil {
		s.logger.Warn("history record failed", slog.String("error", err.Error()))
	}
}

// toSearchOutput converts a pipeline result to the tool output schema.
func toSearchOutput(result *pipeline.Result) SearchOutput {
	out := SearchOutput{
		Report:     result.Report,
		Outcome:    string(result.Outcome),
		Hits:       make([]HitOutput, 0, len(result.Hits)),
		Found:      result.Stats.Found,
		Indexed:    result.Stats.Indexed,
		Skipped:    result.Stats.Skipped,
		DurationMS: result.Duration.Milliseconds(),
	}
	for _, h := range result.Hits {
		out.Hits = append(out.Hits, HitOutput{Path: h.Path, Score: h.Score})
	}
	return out
}

// Serve runs the server on the stdio transport until the client
// disconnects or the context is canceled. Stdout carries JSON-RPC
// exclusively; a clean client disconnect is a normal shutdown, not an
// error.
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Info("Starting MCP server",
		slog.String("name", ServerName),
		slog.String("version", version.Version))

	err := s.mcp.Run(ctx, &mcp.StdioTransport{})
	switch {
	case err == nil,
		errors.Is(err, io.EOF),
		errors.Is(err, context.Canceled),
		strings.Contains(err.Error(), "server is closing"):
		s.logger.Info("MCP server stopped gracefully")
		return nil
	default:
		s.logger.Error("MCP server stopped with error",
			slog.String("error", err.Error()))
		return err
	}
}

// Close releases server resources.
func (s *Server) Close() error {
	// The MCP server stops when its context is canceled; the history
	// store is owned and closed by the caller.
	return nil
}

// generateRequestID creates a short unique request ID for log correlation.
func generateRequestID() string {
	b := make([]byte, 4)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
