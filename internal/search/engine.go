// Package search runs one keyword query against a committed index and
// returns the ranked hits.
package search

import (
	"context"
	"log/slog"
	"strings"

	"github.com/blevesearch/bleve/v2"

	scouterrors "github.com/scoutmcp/scoutmcp/internal/errors"
	"github.com/scoutmcp/scoutmcp/internal/index"
)

const (
	// DefaultLimit caps results at the top ten hits.
	DefaultLimit = 10

	// UnknownPath is the sentinel used when a hit carries no stored path.
	// A hit is never dropped for a missing path.
	UnknownPath = "Unknown path"
)

// Hit is one ranked search result.
type Hit struct {
	// Path is the stored file path of the matching document.
	Path string
	// Score is the positive relevance score assigned by the index.
	Score float64
}

// Engine executes keyword queries.
type Engine struct {
	limit  int
	logger *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLimit overrides the result cap. Values below 1 keep the default.
func WithLimit(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.limit = n
		}
	}
}

// WithLogger sets the logger for query traces.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine creates an Engine with the given options.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		limit:  DefaultLimit,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Search runs one keyword query against a committed index.
//
// The keyword is parsed with the query-string grammar, so quoted phrases
// and +must/-mustnot operators work; a bare term matches content directly.
// Zero hits is a success with an empty slice. Ties in score resolve to
// insertion order via the ordinal document IDs.
func (e *Engine) Search(ctx context.Context, ix *index.Index, keyword string) ([]Hit, error) {
	if strings.TrimSpace(keyword) == "" {
		return nil, scouterrors.EmptyKeyword()
	}

	parsed, err := bleve.NewQueryStringQuery(keyword).Parse()
	if err != nil {
		return nil, scouterrors.QueryParse(keyword, err)
	}

	req := bleve.NewSearchRequestOptions(parsed, e.limit, 0, false)
	req.Fields = []string{index.PathField}
	req.SortBy([]string{"-_score", "_id"})

	res, err := ix.Search(ctx, req)
	if err != nil {
		if scouterrors.CodeOf(err) != "" {
			return nil, err
		}
		return nil, scouterrors.SearchFailed(err)
	}

	hits := make([]Hit, 0, len(res.Hits))
	for _, match := range res.Hits {
		path, _ := match.Fields[index.PathField].(string)
		if path == "" {
			path = UnknownPath
		}
		hits = append(hits, Hit{Path: path, Score: match.Score})
	}

	e.logger.Debug("query executed",
		slog.String("keyword", keyword),
		slog.Int("hits", len(hits)),
		slog.Uint64("total", res.Total),
		slog.Duration("took", res.Took))

	return hits, nil
}
