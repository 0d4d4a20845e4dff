package corpus

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	scouterrors "github.com/scoutmcp/scoutmcp/internal/errors"
)

func writeFile(t *testing.T, dir, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, content, 0o644))
	return path
}

func TestWalker_Walk_NotADirectory(t *testing.T) {
	// Given: a regular file instead of a directory
	dir := t.TempDir()
	filePath := writeFile(t, dir, "notes.txt", []byte("content"))

	w := NewWalker()

	// When: walking the file path
	corpus, err := w.Walk(context.Background(), filePath)

	// Then: a typed not-a-directory error, no corpus
	require.Error(t, err)
	assert.Nil(t, corpus)
	assert.Equal(t, scouterrors.ErrCodeNotADirectory, scouterrors.CodeOf(err))
	assert.Contains(t, err.Error(), filePath)
}

func TestWalker_Walk_MissingPath(t *testing.T) {
	w := NewWalker()

	corpus, err := w.Walk(context.Background(), filepath.Join(t.TempDir(), "does-not-exist"))

	require.Error(t, err)
	assert.Nil(t, corpus)
	assert.Equal(t, scouterrors.ErrCodeNotADirectory, scouterrors.CodeOf(err))
}

func TestWalker_Walk_EmptyDirectory(t *testing.T) {
	w := NewWalker()

	corpus, err := w.Walk(context.Background(), t.TempDir())

	require.NoError(t, err)
	assert.Empty(t, corpus.Docs)
	assert.Equal(t, Stats{}, corpus.Stats)
}

func TestWalker_Walk_MixedDirectory(t *testing.T) {
	// Given: one text file, one denylisted extension, one empty file,
	// and one NUL-carrying blob
	dir := t.TempDir()
	textPath := writeFile(t, dir, "notes.txt", []byte("the quick brown fox"))
	writeFile(t, dir, "image.png", []byte{0x89, 0x50, 0x4E, 0x47})
	writeFile(t, dir, "empty.log", nil)
	writeFile(t, dir, "blob.dat", []byte("abc\x00def"))

	w := NewWalker()

	// When: walking
	corpus, err := w.Walk(context.Background(), dir)

	// Then: only the text file is indexed, counters add up
	require.NoError(t, err)
	require.Len(t, corpus.Docs, 1)
	assert.Equal(t, textPath, corpus.Docs[0].Path)
	assert.Equal(t, "the quick brown fox", corpus.Docs[0].Content)

	assert.Equal(t, 4, corpus.Stats.Found)
	assert.Equal(t, 1, corpus.Stats.Indexed)
	assert.Equal(t, 3, corpus.Stats.Skipped)
	assert.Equal(t, corpus.Stats.Found, corpus.Stats.Indexed+corpus.Stats.Skipped)
}

func TestWalker_Walk_RecursesSubdirectories(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "top.txt", []byte("top level"))
	writeFile(t, dir, filepath.Join("sub", "nested.txt"), []byte("nested"))
	writeFile(t, dir, filepath.Join("sub", "deeper", "leaf.md"), []byte("leaf"))

	w := NewWalker()

	corpus, err := w.Walk(context.Background(), dir)

	require.NoError(t, err)
	assert.Equal(t, 3, corpus.Stats.Indexed)

	var paths []string
	for _, doc := range corpus.Docs {
		paths = append(paths, doc.Path)
	}
	assert.Contains(t, paths, filepath.Join(dir, "sub", "deeper", "leaf.md"))
}

func TestWalker_Walk_OrderIsDeterministic(t *testing.T) {
	// Given: several files created in non-lexical order
	dir := t.TempDir()
	for _, name := range []string{"zeta.txt", "alpha.txt", "mid.txt", "beta.txt"} {
		writeFile(t, dir, name, []byte("shared token"))
	}

	w := NewWalker(WithWorkers(4))

	// When: walking twice
	first, err := w.Walk(context.Background(), dir)
	require.NoError(t, err)
	second, err := w.Walk(context.Background(), dir)
	require.NoError(t, err)

	// Then: both walks produce the same lexical order
	require.Len(t, first.Docs, 4)
	assert.Equal(t, first.Docs, second.Docs)
	assert.Equal(t, filepath.Join(dir, "alpha.txt"), first.Docs[0].Path)
	assert.Equal(t, filepath.Join(dir, "zeta.txt"), first.Docs[3].Path)
}

func TestWalker_Walk_BlankContentIsSkipped(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "blank.txt", []byte("  \n\t \n"))

	w := NewWalker()

	corpus, err := w.Walk(context.Background(), dir)

	require.NoError(t, err)
	assert.Empty(t, corpus.Docs)
	assert.Equal(t, Stats{Found: 1, Indexed: 0, Skipped: 1}, corpus.Stats)
}

func TestWalker_Walk_InvalidUTF8PastSampleIsSkipped(t *testing.T) {
	// Given: a file whose first 8 KB sample is clean ASCII but whose tail
	// is not valid UTF-8
	dir := t.TempDir()
	content := append([]byte(strings.Repeat("a", 9000)), 0xFF, 0xFE)
	writeFile(t, dir, "tail.txt", content)

	w := NewWalker()

	// When: walking
	corpus, err := w.Walk(context.Background(), dir)

	// Then: the classifier accepts it but the full read rejects it
	require.NoError(t, err)
	assert.Empty(t, corpus.Docs)
	assert.Equal(t, Stats{Found: 1, Indexed: 0, Skipped: 1}, corpus.Stats)
}

func TestWalker_Walk_SymlinksAreNotCounted(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks unreliable on windows")
	}

	dir := t.TempDir()
	target := writeFile(t, dir, "target.txt", []byte("real file"))
	require.NoError(t, os.Symlink(target, filepath.Join(dir, "link.txt")))

	w := NewWalker()

	corpus, err := w.Walk(context.Background(), dir)

	require.NoError(t, err)
	assert.Equal(t, Stats{Found: 1, Indexed: 1, Skipped: 0}, corpus.Stats)
}

func TestWalker_Walk_CancelledContext(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "notes.txt", []byte("content"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w := NewWalker()

	corpus, err := w.Walk(ctx, dir)

	require.Error(t, err)
	assert.Nil(t, corpus)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewWalker_Defaults(t *testing.T) {
	w := NewWalker()

	assert.GreaterOrEqual(t, w.workers, 1)
	assert.NotNil(t, w.logger)
}

func TestNewWalker_WorkersOptionIgnoresInvalid(t *testing.T) {
	w := NewWalker(WithWorkers(0))
	assert.GreaterOrEqual(t, w.workers, 1)

	w = NewWalker(WithWorkers(2))
	assert.Equal(t, 2, w.workers)
}
