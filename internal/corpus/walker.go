// Package corpus discovers the indexable text files under a directory.
//
// A walk has two phases: a sequential enumeration pass that records file
// entries in lexical order, and a parallel load pass that samples,
// classifies, and reads each candidate. Results are merged back in
// enumeration order, so the corpus is deterministic regardless of the
// worker count.
package corpus

import (
	"context"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/scoutmcp/scoutmcp/internal/classify"
	scouterrors "github.com/scoutmcp/scoutmcp/internal/errors"
)

// Skip reasons reported in debug traces.
const (
	reasonNonText   = "non-text"
	reasonEmptyFile = "empty file"
	reasonReadError = "read error"
)

// Walker discovers and loads the text files under a root directory.
type Walker struct {
	workers int
	logger  *slog.Logger
}

// Option configures a Walker.
type Option func(*Walker)

// WithWorkers sets the number of parallel load workers.
// Values below 1 fall back to the default.
func WithWorkers(n int) Option {
	return func(w *Walker) {
		if n > 0 {
			w.workers = n
		}
	}
}

// WithLogger sets the logger used for per-file traces.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Walker) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// NewWalker creates a Walker with the given options.
func NewWalker(opts ...Option) *Walker {
	w := &Walker{
		workers: runtime.NumCPU(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// candidate is one enumerated file entry awaiting load.
type candidate struct {
	ordinal int
	path    string
}

// loadResult is the outcome of loading one candidate.
// doc is nil when the file was skipped; reason says why.
type loadResult struct {
	doc    *Document
	rule   string
	reason string
}

// Walk traverses root and returns the corpus of indexable text files.
//
// The only fatal error is a root that is not a directory (or a cancelled
// context). Per-file problems are counted as skips, never returned.
func (w *Walker) Walk(ctx context.Context, root string) (*Corpus, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, scouterrors.NotADirectory(root, err)
	}
	if !info.IsDir() {
		return nil, scouterrors.NotADirectory(root, nil)
	}

	// Phase 1: enumerate file entries in lexical walk order.
	var candidates []candidate
	unreadable := 0

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil {
			// Traverse failures are skips, not fatal. A failed file entry
			// still counts as found; a failed directory just isn't descended.
			if d != nil && !d.IsDir() {
				unreadable++
				w.logger.Debug("skipped", slog.String("path", path), slog.String("reason", reasonReadError))
			} else {
				w.logger.Debug("skipping unreadable directory", slog.String("path", path), slog.String("error", err.Error()))
			}
			return nil
		}

		if d.IsDir() {
			return nil
		}

		// Symlinks are not followed and not counted, matching the
		// traversal semantics of the walk itself.
		if !d.Type().IsRegular() {
			w.logger.Debug("skipping non-regular entry", slog.String("path", path))
			return nil
		}

		candidates = append(candidates, candidate{ordinal: len(candidates), path: path})
		return nil
	})
	if walkErr != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, scouterrors.Wrap(scouterrors.ErrCodeWalkFailed, walkErr)
	}

	// Phase 2: load candidates in parallel. Each worker writes only its
	// own ordinal slot, so the merge needs no locking and preserves
	// enumeration order exactly.
	results := make([]loadResult, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.workers)

	for _, c := range candidates {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			results[c.ordinal] = load(c.path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Merge in enumeration order.
	corpus := &Corpus{}
	corpus.Stats.Found = len(candidates) + unreadable
	corpus.Stats.Skipped = unreadable

	for i, res := range results {
		if res.doc != nil {
			corpus.Docs = append(corpus.Docs, *res.doc)
			corpus.Stats.Indexed++
			w.logger.Debug("indexed", slog.String("path", candidates[i].path))
			continue
		}
		corpus.Stats.Skipped++
		w.logger.Debug("skipped",
			slog.String("path", candidates[i].path),
			slog.String("reason", res.reason),
			slog.String("rule", res.rule))
	}

	w.logger.Info("walk complete",
		slog.String("root", root),
		slog.Int("found", corpus.Stats.Found),
		slog.Int("indexed", corpus.Stats.Indexed),
		slog.Int("skipped", corpus.Stats.Skipped))

	return corpus, nil
}

// load samples, classifies, and reads one file.
func load(path string) loadResult {
	verdict := classify.Classify(path, readSample(path))
	if !verdict.Text {
		reason := reasonNonText
		if verdict.Rule == classify.RuleEmpty {
			reason = reasonEmptyFile
		}
		return loadResult{rule: verdict.Rule, reason: reason}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return loadResult{rule: verdict.Rule, reason: reasonReadError}
	}

	// The sample can pass while the rest of the file does not decode;
	// reading "as text" means the whole file must be valid UTF-8.
	if !utf8.Valid(data) {
		return loadResult{rule: verdict.Rule, reason: reasonReadError}
	}

	content := string(data)
	if strings.TrimSpace(content) == "" {
		return loadResult{rule: verdict.Rule, reason: reasonEmptyFile}
	}

	return loadResult{doc: &Document{Path: path, Content: content}}
}

// readSample reads up to classify.SampleSize leading bytes.
// Any read failure yields an empty sample, which classifies as binary.
func readSample(path string) []byte {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer func() { _ = f.Close() }()

	buf := make([]byte, classify.SampleSize)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil
	}
	return buf[:n]
}
