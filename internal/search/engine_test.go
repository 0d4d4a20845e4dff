package search

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scoutmcp/scoutmcp/internal/corpus"
	scouterrors "github.com/scoutmcp/scoutmcp/internal/errors"
	"github.com/scoutmcp/scoutmcp/internal/index"
)

func committedIndex(t *testing.T, docs []corpus.Document) *index.Index {
	t.Helper()

	ix, err := index.NewBuilder().Open()
	require.NoError(t, err)
	t.Cleanup(func() { _ = ix.Close() })

	for _, doc := range docs {
		require.NoError(t, ix.Add(doc))
	}
	require.NoError(t, ix.Commit())
	return ix
}

func TestEngine_Search_EmptyKeyword(t *testing.T) {
	ix := committedIndex(t, []corpus.Document{
		{Path: "/tmp/notes.txt", Content: "the quick brown fox"},
	})
	e := NewEngine()

	for _, keyword := range []string{"", "   ", "\t\n"} {
		hits, err := e.Search(context.Background(), ix, keyword)

		require.Error(t, err, "keyword %q", keyword)
		assert.Nil(t, hits)
		assert.Equal(t, scouterrors.ErrCodeEmptyKeyword, scouterrors.CodeOf(err))
	}
}

func TestEngine_Search_EmptyKeywordIndependentOfCorpusSize(t *testing.T) {
	// The keyword check happens before the index is touched, so an empty
	// index and a populated one behave identically.
	empty := committedIndex(t, nil)
	e := NewEngine()

	_, err := e.Search(context.Background(), empty, "  ")

	require.Error(t, err)
	assert.Equal(t, scouterrors.ErrCodeEmptyKeyword, scouterrors.CodeOf(err))
}

func TestEngine_Search_SingleTerm(t *testing.T) {
	// Given: one document containing the keyword
	ix := committedIndex(t, []corpus.Document{
		{Path: "/tmp/notes.txt", Content: "the quick brown fox"},
		{Path: "/tmp/other.txt", Content: "nothing relevant here"},
	})
	e := NewEngine()

	// When: searching
	hits, err := e.Search(context.Background(), ix, "fox")

	// Then: exactly that document, with a positive score
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "/tmp/notes.txt", hits[0].Path)
	assert.Greater(t, hits[0].Score, 0.0)
}

func TestEngine_Search_CaseInsensitive(t *testing.T) {
	ix := committedIndex(t, []corpus.Document{
		{Path: "/tmp/guide.md", Content: "Installation Guide for Linux"},
	})
	e := NewEngine()

	for _, keyword := range []string{"installation", "INSTALLATION", "Guide"} {
		hits, err := e.Search(context.Background(), ix, keyword)

		require.NoError(t, err)
		assert.Len(t, hits, 1, "keyword %q should match", keyword)
	}
}

func TestEngine_Search_ZeroHitsIsSuccess(t *testing.T) {
	ix := committedIndex(t, []corpus.Document{
		{Path: "/tmp/notes.txt", Content: "the quick brown fox"},
	})
	e := NewEngine()

	hits, err := e.Search(context.Background(), ix, "zebra")

	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestEngine_Search_ParseFailure(t *testing.T) {
	ix := committedIndex(t, []corpus.Document{
		{Path: "/tmp/notes.txt", Content: "the quick brown fox"},
	})
	e := NewEngine()

	hits, err := e.Search(context.Background(), ix, `"unterminated phrase`)

	require.Error(t, err)
	assert.Nil(t, hits)
	assert.Equal(t, scouterrors.ErrCodeQueryParse, scouterrors.CodeOf(err))
}

func TestEngine_Search_PhraseQuery(t *testing.T) {
	ix := committedIndex(t, []corpus.Document{
		{Path: "/tmp/a.txt", Content: "the quick brown fox jumps"},
		{Path: "/tmp/b.txt", Content: "brown paper, quick delivery"},
	})
	e := NewEngine()

	hits, err := e.Search(context.Background(), ix, `"quick brown"`)

	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "/tmp/a.txt", hits[0].Path)
}

func TestEngine_Search_BooleanOperators(t *testing.T) {
	ix := committedIndex(t, []corpus.Document{
		{Path: "/tmp/both.txt", Content: "fox and dog together"},
		{Path: "/tmp/foxonly.txt", Content: "a lonely fox"},
	})
	e := NewEngine()

	hits, err := e.Search(context.Background(), ix, "+fox -dog")

	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "/tmp/foxonly.txt", hits[0].Path)
}

func TestEngine_Search_RanksByRelevance(t *testing.T) {
	// Given: one document repeating the term, one mentioning it once
	ix := committedIndex(t, []corpus.Document{
		{Path: "/tmp/sparse.txt", Content: "fox appears once in a long text about other animals entirely"},
		{Path: "/tmp/dense.txt", Content: "fox fox fox fox"},
	})
	e := NewEngine()

	hits, err := e.Search(context.Background(), ix, "fox")

	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "/tmp/dense.txt", hits[0].Path)
	assert.GreaterOrEqual(t, hits[0].Score, hits[1].Score)
}

func TestEngine_Search_CapsAtLimit(t *testing.T) {
	var docs []corpus.Document
	for i := 0; i < 15; i++ {
		docs = append(docs, corpus.Document{
			Path:    fmt.Sprintf("/tmp/file%02d.txt", i),
			Content: "alpha content",
		})
	}
	ix := committedIndex(t, docs)
	e := NewEngine()

	hits, err := e.Search(context.Background(), ix, "alpha")

	require.NoError(t, err)
	assert.Len(t, hits, DefaultLimit)
}

func TestEngine_Search_EqualScoresKeepInsertionOrder(t *testing.T) {
	// Given: ten identical documents
	var docs []corpus.Document
	for i := 0; i < 10; i++ {
		docs = append(docs, corpus.Document{
			Path:    fmt.Sprintf("/tmp/file%02d.txt", i),
			Content: "alpha",
		})
	}
	ix := committedIndex(t, docs)
	e := NewEngine()

	// When: searching the shared term
	hits, err := e.Search(context.Background(), ix, "alpha")

	// Then: all ten hits, equal scores, insertion order preserved
	require.NoError(t, err)
	require.Len(t, hits, 10)
	for i, hit := range hits {
		assert.Equal(t, fmt.Sprintf("/tmp/file%02d.txt", i), hit.Path)
		assert.InDelta(t, hits[0].Score, hit.Score, 1e-9)
	}
}

func TestEngine_Search_IsIdempotent(t *testing.T) {
	ix := committedIndex(t, []corpus.Document{
		{Path: "/tmp/a.txt", Content: "shared words in here"},
		{Path: "/tmp/b.txt", Content: "shared words over there"},
	})
	e := NewEngine()

	first, err := e.Search(context.Background(), ix, "shared")
	require.NoError(t, err)
	second, err := e.Search(context.Background(), ix, "shared")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestEngine_Search_CustomLimit(t *testing.T) {
	var docs []corpus.Document
	for i := 0; i < 5; i++ {
		docs = append(docs, corpus.Document{
			Path:    fmt.Sprintf("/tmp/file%d.txt", i),
			Content: "beta",
		})
	}
	ix := committedIndex(t, docs)
	e := NewEngine(WithLimit(3))

	hits, err := e.Search(context.Background(), ix, "beta")

	require.NoError(t, err)
	assert.Len(t, hits, 3)
}

func TestEngine_Search_UncommittedIndexFails(t *testing.T) {
	ix, err := index.NewBuilder().Open()
	require.NoError(t, err)
	defer func() { _ = ix.Close() }()

	e := NewEngine()

	_, err = e.Search(context.Background(), ix, "term")

	require.Error(t, err)
	assert.Equal(t, scouterrors.ErrCodeIndexClosed, scouterrors.CodeOf(err))
}
