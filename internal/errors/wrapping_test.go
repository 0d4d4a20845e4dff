package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The pipeline tags errors with its own wrapper types before they reach
// the MCP layer and the CLI. Code and category extraction must therefore
// work through arbitrary fmt.Errorf %w chains, not just on a bare
// ScoutError.

func TestCodeOf_ThroughWrapChain(t *testing.T) {
	inner := NotADirectory("/tmp/notes.txt", nil)
	wrapped := fmt.Errorf("walk stage: %w", inner)
	doubleWrapped := fmt.Errorf("request failed: %w", wrapped)

	assert.Equal(t, ErrCodeNotADirectory, CodeOf(wrapped))
	assert.Equal(t, ErrCodeNotADirectory, CodeOf(doubleWrapped))
	assert.Equal(t, CategoryWalk, CategoryOf(doubleWrapped))
}

func TestCodeOf_NoScoutErrorInChain(t *testing.T) {
	err := fmt.Errorf("outer: %w", errors.New("inner"))

	assert.Equal(t, "", CodeOf(err))
	assert.Equal(t, Category(""), CategoryOf(err))
	assert.Equal(t, "", CodeOf(nil))
}

func TestAsScoutError_ReturnsFirstInChain(t *testing.T) {
	inner := EmptyKeyword()
	wrapped := fmt.Errorf("query stage: %w", inner)

	se := AsScoutError(wrapped)
	require.NotNil(t, se)
	assert.Equal(t, ErrCodeEmptyKeyword, se.Code)
	assert.Nil(t, AsScoutError(errors.New("plain")))
}

func TestIsFatal_ThroughWrapChain(t *testing.T) {
	fatal := fmt.Errorf("build stage: %w", CommitFailed(errors.New("boom")))
	nonFatal := fmt.Errorf("query stage: %w", EmptyKeyword())

	assert.True(t, IsFatal(fatal))
	assert.False(t, IsFatal(nonFatal))
	assert.False(t, IsFatal(errors.New("plain")))
}

func TestErrorsIs_MatchesByCode(t *testing.T) {
	// Two independently constructed errors with the same code compare
	// equal under errors.Is, even through a wrap.
	err := fmt.Errorf("query stage: %w", EmptyKeyword())

	assert.True(t, errors.Is(err, EmptyKeyword()))
	assert.False(t, errors.Is(err, QueryParse("x", nil)))
}
