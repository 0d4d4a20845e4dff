package errors

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatForUser_BasicError(t *testing.T) {
	// Given: a ScoutError
	err := New(ErrCodeNotADirectory, "path is not a directory: /tmp/notes.txt", nil)

	// When: formatting for user (no debug)
	result := FormatForUser(err, false)

	// Then: contains message
	assert.Contains(t, result, "path is not a directory: /tmp/notes.txt")
	// And: contains error code at end
	assert.Contains(t, result, "[ERR_201_NOT_A_DIRECTORY]")
}

func TestFormatForUser_WithSuggestion(t *testing.T) {
	// Given: an error with suggestion
	err := New(ErrCodeEmptyKeyword, "Search keyword is empty. Please provide a keyword to search.", nil).
		WithSuggestion("Pass a non-empty keyword, for example: scoutmcp search fox")

	// When: formatting for user
	result := FormatForUser(err, false)

	// Then: contains suggestion
	assert.Contains(t, result, "Suggestion:")
	assert.Contains(t, result, "non-empty keyword")
}

func TestFormatForUser_DebugIncludesCause(t *testing.T) {
	// Given: an error with a cause
	cause := errors.New("open /tmp/x: permission denied")
	err := New(ErrCodeWalkFailed, "walk failed", cause)

	// When: formatting with and without debug
	plain := FormatForUser(err, false)
	debug := FormatForUser(err, true)

	// Then: only the debug variant carries the cause
	assert.NotContains(t, plain, "permission denied")
	assert.Contains(t, debug, "permission denied")
}

func TestFormatForUser_StandardError(t *testing.T) {
	// Given: a standard Go error
	err := errors.New("something went wrong")

	// When: formatting for user
	result := FormatForUser(err, false)

	// Then: shows generic message
	assert.Contains(t, result, "something went wrong")
}

func TestFormatForUser_NilError(t *testing.T) {
	// When: formatting nil
	result := FormatForUser(nil, false)

	// Then: returns empty string
	assert.Empty(t, result)
}

func TestFormatJSON_BasicError(t *testing.T) {
	// Given: a ScoutError with details
	err := New(ErrCodeNotADirectory, "path is not a directory", nil).
		WithDetail("path", "/foo/bar.txt").
		WithSuggestion("Check the directory path")

	// When: formatting as JSON
	data, jsonErr := FormatJSON(err)

	// Then: valid JSON
	require.NoError(t, jsonErr)

	var result map[string]any
	require.NoError(t, json.Unmarshal(data, &result))

	// And: contains expected fields
	assert.Equal(t, ErrCodeNotADirectory, result["code"])
	assert.Equal(t, "path is not a directory", result["message"])
	assert.Equal(t, string(CategoryWalk), result["category"])
	assert.Equal(t, string(SeverityError), result["severity"])
	assert.Equal(t, "Check the directory path", result["suggestion"])

	details, ok := result["details"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "/foo/bar.txt", details["path"])
}

func TestFormatJSON_StandardError(t *testing.T) {
	// Given: a standard error
	err := errors.New("generic error")

	// When: formatting as JSON
	data, jsonErr := FormatJSON(err)

	// Then: valid JSON with internal error code
	require.NoError(t, jsonErr)

	var result map[string]any
	require.NoError(t, json.Unmarshal(data, &result))

	assert.Equal(t, ErrCodeInternal, result["code"])
	assert.Equal(t, "generic error", result["message"])
}

func TestFormatJSON_NilError(t *testing.T) {
	// When: formatting nil
	data, err := FormatJSON(nil)

	// Then: returns empty result
	assert.NoError(t, err)
	assert.Equal(t, "null", strings.TrimSpace(string(data)))
}

func TestFormatJSON_WithCause(t *testing.T) {
	// Given: an error with cause
	cause := errors.New("underlying error")
	err := New(ErrCodeInternal, "operation failed", cause)

	// When: formatting as JSON
	data, jsonErr := FormatJSON(err)

	// Then: includes cause
	require.NoError(t, jsonErr)

	var result map[string]any
	require.NoError(t, json.Unmarshal(data, &result))

	assert.Equal(t, "underlying error", result["cause"])
}

func TestFormatForCLI_BasicError(t *testing.T) {
	// Given: a fatal error
	err := New(ErrCodeCommitFailed, "failed to commit index", nil).
		WithSuggestion("Retry the search; the index is rebuilt from scratch each run")

	// When: formatting for CLI
	result := FormatForCLI(err)

	// Then: contains error info
	assert.Contains(t, result, "failed to commit index")
	assert.Contains(t, result, "ERR_303_COMMIT_FAILED")
	assert.Contains(t, result, "Hint:")
}

func TestFormatForCLI_ShortFormat(t *testing.T) {
	// Given: a simple error
	err := New(ErrCodeNotADirectory, "path is not a directory", nil)

	// When: formatting for CLI
	result := FormatForCLI(err)

	// Then: is concise
	lines := strings.Split(strings.TrimSpace(result), "\n")
	assert.LessOrEqual(t, len(lines), 5, "Should be concise")
}

func TestFormatForLog_KeyValuePairs(t *testing.T) {
	// Given: an error with details and cause
	cause := errors.New("disk full")
	err := New(ErrCodeAddDocument, "failed to add document", cause).
		WithDetail("path", "/tmp/big.txt")

	// When: formatting for log
	result := FormatForLog(err)

	// Then: carries code, severity, cause, and prefixed details
	assert.Equal(t, ErrCodeAddDocument, result["error_code"])
	assert.Equal(t, string(SeverityFatal), result["severity"])
	assert.Equal(t, "disk full", result["cause"])
	assert.Equal(t, "/tmp/big.txt", result["detail_path"])
}

func TestFormatForLog_StandardError(t *testing.T) {
	result := FormatForLog(errors.New("plain"))

	assert.Equal(t, map[string]any{"error": "plain"}, result)
}

func TestFormatForLog_NilError(t *testing.T) {
	assert.Nil(t, FormatForLog(nil))
}
