package mcp

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// MetricsURI is the URI of the telemetry metrics resource.
const MetricsURI = "scoutmcp://metrics"

// registerMetricsResource registers the metrics resource backed by the
// in-process telemetry collector.
func (s *Server) registerMetricsResource() {
	s.mcp.AddResource(
		&mcp.Resource{
			Name:        "metrics",
			URI:         MetricsURI,
			Description: "Search telemetry for the current server session",
			MIMEType:    "application/json",
		},
		s.makeMetricsHandler(),
	)
}

// makeMetricsHandler creates a read handler for the metrics resource.
func (s *Server) makeMetricsHandler() mcp.ResourceHandler {
	return func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		snapshot := s.collector.Snapshot()

		content, err := json.MarshalIndent(snapshot, "", "  ")
		if err != nil {
			return nil, MapError(err)
		}

		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{
				{
					URI:      MetricsURI,
					MIMEType: "application/json",
					Text:     string(content),
				},
			},
		}, nil
	}
}
