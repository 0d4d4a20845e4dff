// Package pipeline orchestrates one search request end to end: walk the
// directory, build and commit an ephemeral index, run the query, render
// the report, and tear everything down.
//
// A Pipeline value is safe for concurrent use; every Run builds its own
// index and shares nothing with other runs.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/scoutmcp/scoutmcp/internal/corpus"
	"github.com/scoutmcp/scoutmcp/internal/index"
	"github.com/scoutmcp/scoutmcp/internal/search"
)

// Stage identifies where in the request lifecycle an error occurred.
type Stage string

const (
	StageWalk   Stage = "walk"
	StageBuild  Stage = "build"
	StageCommit Stage = "commit"
	StageQuery  Stage = "query"
)

// Outcome classifies a successful run.
type Outcome string

const (
	// OutcomeHits means the query matched at least one document.
	OutcomeHits Outcome = "hits"
	// OutcomeNoMatches means the index was built but nothing matched.
	OutcomeNoMatches Outcome = "no_matches"
	// OutcomeNoFiles means the walk produced no indexable documents,
	// so no index was ever created.
	OutcomeNoFiles Outcome = "no_files"
)

// Request is one search request.
type Request struct {
	// Directory is the root to walk.
	Directory string
	// Keyword is the search expression.
	Keyword string
}

// Result is the outcome of one successful run.
type Result struct {
	// Report is the human-readable response text.
	Report string
	// Outcome classifies the result.
	Outcome Outcome
	// Hits holds the ranked matches (empty unless Outcome is hits).
	Hits []search.Hit
	// Stats carries the walk counters.
	Stats corpus.Stats
	// Duration is the wall time of the whole run.
	Duration time.Duration
}

// StageError tags an error with the stage that produced it.
// The first error aborts the run; there are no retries.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// StageOf extracts the failing stage from an error chain.
// Returns the empty Stage for errors without a stage tag.
func StageOf(err error) Stage {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage
	}
	return ""
}

// Pipeline wires the walker, builder, and engine together.
type Pipeline struct {
	walker  *corpus.Walker
	builder *index.Builder
	engine  *search.Engine
	logger  *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithWalker replaces the default walker.
func WithWalker(w *corpus.Walker) Option {
	return func(p *Pipeline) {
		if w != nil {
			p.walker = w
		}
	}
}

// WithBuilder replaces the default index builder.
func WithBuilder(b *index.Builder) Option {
	return func(p *Pipeline) {
		if b != nil {
			p.builder = b
		}
	}
}

// WithEngine replaces the default query engine.
func WithEngine(e *search.Engine) Option {
	return func(p *Pipeline) {
		if e != nil {
			p.engine = e
		}
	}
}

// WithLogger sets the logger for stage traces.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// New creates a Pipeline with the given options.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.walker == nil {
		p.walker = corpus.NewWalker(corpus.WithLogger(p.logger))
	}
	if p.builder == nil {
		p.builder = index.NewBuilder(index.WithLogger(p.logger))
	}
	if p.engine == nil {
		p.engine = search.NewEngine(search.WithLogger(p.logger))
	}
	return p
}

// Run executes one request.
//
// Stage order is fixed: walk, build, commit, query, format. A walk that
// yields no indexable files short-circuits to an informational result
// before any index exists. Zero query hits is a success. Every created
// index is closed before Run returns, on success and on error.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()

	p.logger.Debug("stage started", slog.String("stage", string(StageWalk)), slog.String("directory", req.Directory))
	c, err := p.walker.Walk(ctx, req.Directory)
	if err != nil {
		return nil, p.fail(StageWalk, err)
	}

	if c.Stats.Indexed == 0 {
		result := &Result{
			Report:   formatNoFiles(req.Directory, c.Stats),
			Outcome:  OutcomeNoFiles,
			Stats:    c.Stats,
			Duration: time.Since(start),
		}
		p.logComplete(req, result)
		return result, nil
	}

	p.logger.Debug("stage started", slog.String("stage", string(StageBuild)), slog.Int("documents", c.Stats.Indexed))
	ix, err := p.builder.Open()
	if err != nil {
		return nil, p.fail(StageBuild, err)
	}
	defer func() { _ = ix.Close() }()

	for _, doc := range c.Docs {
		select {
		case <-ctx.Done():
			return nil, p.fail(StageBuild, ctx.Err())
		default:
		}
		if err := ix.Add(doc); err != nil {
			return nil, p.fail(StageBuild, err)
		}
	}

	p.logger.Debug("stage started", slog.String("stage", string(StageCommit)))
	if err := ix.Commit(); err != nil {
		return nil, p.fail(StageCommit, err)
	}

	p.logger.Debug("stage started", slog.String("stage", string(StageQuery)), slog.String("keyword", req.Keyword))
	hits, err := p.engine.Search(ctx, ix, req.Keyword)
	if err != nil {
		return nil, p.fail(StageQuery, err)
	}

	result := &Result{
		Hits:     hits,
		Stats:    c.Stats,
		Duration: time.Since(start),
	}
	if len(hits) == 0 {
		result.Outcome = OutcomeNoMatches
		result.Report = formatNoMatches(req.Keyword, c.Stats.Indexed)
	} else {
		result.Outcome = OutcomeHits
		result.Report = formatHits(hits)
	}

	p.logComplete(req, result)
	return result, nil
}

func (p *Pipeline) fail(stage Stage, err error) error {
	p.logger.Error("stage failed",
		slog.String("stage", string(stage)),
		slog.String("error", err.Error()))
	return &StageError{Stage: stage, Err: err}
}

func (p *Pipeline) logComplete(req Request, result *Result) {
	p.logger.Info("search complete",
		slog.String("directory", req.Directory),
		slog.String("keyword", req.Keyword),
		slog.String("outcome", string(result.Outcome)),
		slog.Int("found", result.Stats.Found),
		slog.Int("indexed", result.Stats.Indexed),
		slog.Int("skipped", result.Stats.Skipped),
		slog.Int("hits", len(result.Hits)),
		slog.Duration("duration", result.Duration))
}
