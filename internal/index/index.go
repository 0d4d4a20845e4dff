// Package index builds the ephemeral in-memory inverted index for one
// search request.
//
// The index lives for a single request: open, add every corpus document,
// commit exactly once, query, close. There are no deletes, no updates,
// and no reopening. Both fields are stored; only content is searchable.
package index

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/unicode"
	"github.com/blevesearch/bleve/v2/mapping"

	"github.com/scoutmcp/scoutmcp/internal/corpus"
	scouterrors "github.com/scoutmcp/scoutmcp/internal/errors"
)

const (
	// ContentField is the searchable field holding file content.
	ContentField = "content"
	// PathField is the stored, non-searchable field holding the file path.
	PathField = "path"

	// contentAnalyzerName names the custom analyzer: unicode tokenizer
	// plus lowercasing, no stop words, no stemming.
	contentAnalyzerName = "content_lowercase"

	// FlushThresholdBytes is the write-buffer capacity. A pending batch
	// whose accumulated document bytes reach this bound is flushed into
	// the index before more documents are added.
	FlushThresholdBytes = 50 * 1000 * 1000
)

// indexDoc is the document structure handed to bleve.
type indexDoc struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// Builder creates ephemeral in-memory indexes.
type Builder struct {
	flushBytes uint64
	logger     *slog.Logger
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithFlushThreshold overrides the write-buffer capacity in bytes.
// Values below 1 keep the default.
func WithFlushThreshold(bytes uint64) BuilderOption {
	return func(b *Builder) {
		if bytes > 0 {
			b.flushBytes = bytes
		}
	}
}

// WithLogger sets the logger for index lifecycle events.
func WithLogger(logger *slog.Logger) BuilderOption {
	return func(b *Builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// NewBuilder creates a Builder with the given options.
func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{
		flushBytes: FlushThresholdBytes,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Open creates a fresh in-memory index ready for additions.
func (b *Builder) Open() (*Index, error) {
	indexMapping, err := createIndexMapping()
	if err != nil {
		return nil, scouterrors.WriterInit(err)
	}

	idx, err := bleve.NewMemOnly(indexMapping)
	if err != nil {
		return nil, scouterrors.WriterInit(err)
	}

	return &Index{
		index:      idx,
		batch:      idx.NewBatch(),
		flushBytes: b.flushBytes,
		logger:     b.logger,
	}, nil
}

// createIndexMapping builds the two-field schema.
//
// path: stored verbatim, never indexed, so it can round-trip into results
// without ever matching a query term. content: analyzed with the custom
// lowercase analyzer and stored. Unqualified query terms resolve to
// content via the mapping's default field.
func createIndexMapping() (*mapping.IndexMappingImpl, error) {
	indexMapping := bleve.NewIndexMapping()

	err := indexMapping.AddCustomAnalyzer(contentAnalyzerName, map[string]interface{}{
		"type":      custom.Name,
		"tokenizer": unicode.Name,
		"token_filters": []string{
			lowercase.Name,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add custom analyzer: %w", err)
	}

	pathMapping := bleve.NewTextFieldMapping()
	pathMapping.Index = false
	pathMapping.Store = true
	pathMapping.IncludeInAll = false

	contentMapping := bleve.NewTextFieldMapping()
	contentMapping.Analyzer = contentAnalyzerName
	contentMapping.Store = true
	contentMapping.IncludeInAll = false

	docMapping := bleve.NewDocumentStaticMapping()
	docMapping.AddFieldMappingsAt(PathField, pathMapping)
	docMapping.AddFieldMappingsAt(ContentField, contentMapping)

	indexMapping.DefaultMapping = docMapping
	indexMapping.DefaultAnalyzer = contentAnalyzerName
	indexMapping.DefaultField = ContentField

	return indexMapping, nil
}

// Index is one ephemeral in-memory index with a commit-once lifecycle.
type Index struct {
	mu         sync.RWMutex
	index      bleve.Index
	batch      *bleve.Batch
	flushBytes uint64
	added      int
	committed  bool
	closed     bool
	logger     *slog.Logger
}

// Add appends one document to the index.
//
// Documents get 6-digit zero-padded insertion ordinals as IDs, which makes
// bleve's score-tie ordering equal insertion order. The pending batch is
// flushed whenever its accumulated bytes reach the flush threshold.
func (ix *Index) Add(doc corpus.Document) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if ix.closed {
		return scouterrors.New(scouterrors.ErrCodeIndexClosed, "cannot add to a closed index", nil)
	}
	if ix.committed {
		return scouterrors.New(scouterrors.ErrCodeIndexClosed, "cannot add after commit", nil)
	}

	ix.added++
	id := fmt.Sprintf("%06d", ix.added)

	if err := ix.batch.Index(id, indexDoc{Path: doc.Path, Content: doc.Content}); err != nil {
		return scouterrors.AddDocument(doc.Path, err)
	}

	if ix.batch.TotalDocsSize() >= ix.flushBytes {
		if err := ix.flushLocked(); err != nil {
			return scouterrors.AddDocument(doc.Path, err)
		}
	}

	return nil
}

// Commit flushes all pending documents and makes the index searchable.
// It must be called exactly once, after all adds and before any search.
func (ix *Index) Commit() error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if ix.closed {
		return scouterrors.New(scouterrors.ErrCodeIndexClosed, "cannot commit a closed index", nil)
	}
	if ix.committed {
		return scouterrors.InternalError("index already committed", nil)
	}

	if err := ix.flushLocked(); err != nil {
		return scouterrors.CommitFailed(err)
	}

	ix.committed = true
	ix.logger.Debug("index committed", slog.Int("documents", ix.added))
	return nil
}

// Search executes a search request against the committed index.
func (ix *Index) Search(ctx context.Context, req *bleve.SearchRequest) (*bleve.SearchResult, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if ix.closed {
		return nil, scouterrors.New(scouterrors.ErrCodeIndexClosed, "cannot search a closed index", nil)
	}
	if !ix.committed {
		return nil, scouterrors.New(scouterrors.ErrCodeIndexClosed, "cannot search before commit", nil)
	}

	return ix.index.SearchInContext(ctx, req)
}

// DocCount returns the number of documents added to the index.
func (ix *Index) DocCount() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.added
}

// Committed reports whether Commit has completed.
func (ix *Index) Committed() bool {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.committed
}

// Close releases the index. It is idempotent and safe to defer on every
// request path.
func (ix *Index) Close() error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if ix.closed {
		return nil
	}
	ix.closed = true

	if ix.index != nil {
		return ix.index.Close()
	}
	return nil
}

// flushLocked executes the pending batch. Callers hold ix.mu.
func (ix *Index) flushLocked() error {
	if ix.batch.Size() == 0 {
		return nil
	}

	size := ix.batch.TotalDocsSize()
	if err := ix.index.Batch(ix.batch); err != nil {
		return err
	}
	ix.batch.Reset()

	ix.logger.Debug("index batch flushed", slog.Uint64("bytes", size))
	return nil
}
