package errors

import (
	"errors"
	"fmt"
)

// ScoutError is the structured error type for ScoutMCP.
// It provides rich context for error handling, logging, and user presentation.
type ScoutError struct {
	// Code is the unique error code (e.g., "ERR_201_NOT_A_DIRECTORY").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (Config, Walk, Index, etc.).
	Category Category

	// Severity is the error severity level.
	Severity Severity

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error

	// Suggestion is an actionable suggestion for the user.
	Suggestion string
}

// Error implements the error interface.
func (e *ScoutError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *ScoutError) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches the target error by code.
// This enables errors.Is() to work with ScoutError.
func (e *ScoutError) Is(target error) bool {
	if t, ok := target.(*ScoutError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
// Returns the error for method chaining.
func (e *ScoutError) WithDetail(key, value string) *ScoutError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// WithSuggestion adds an actionable suggestion for the user.
// Returns the error for method chaining.
func (e *ScoutError) WithSuggestion(suggestion string) *ScoutError {
	e.Suggestion = suggestion
	return e
}

// New creates a new ScoutError with the given code and message.
// Category and severity are derived from the code.
func New(code string, message string, cause error) *ScoutError {
	return &ScoutError{
		Code:     code,
		Message:  message,
		Category: categoryFromCode(code),
		Severity: severityFromCode(code),
		Cause:    cause,
	}
}

// Wrap creates a ScoutError from an existing error.
// The error's message becomes the ScoutError message.
func Wrap(code string, err error) *ScoutError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// NotADirectory reports that the requested search root is not a directory.
func NotADirectory(path string, cause error) *ScoutError {
	return New(ErrCodeNotADirectory,
		fmt.Sprintf("path is not a directory: %s", path), cause).
		WithDetail("path", path).
		WithSuggestion("Provide the path of an existing directory to search in.")
}

// EmptyKeyword reports a blank search keyword.
func EmptyKeyword() *ScoutError {
	return New(ErrCodeEmptyKeyword,
		"Search keyword is empty. Please provide a keyword to search.", nil)
}

// QueryParse reports that the keyword could not be parsed as a query.
func QueryParse(keyword string, cause error) *ScoutError {
	return New(ErrCodeQueryParse,
		fmt.Sprintf("failed to parse query %q", keyword), cause).
		WithDetail("keyword", keyword)
}

// WriterInit reports that the in-memory index could not be created.
func WriterInit(cause error) *ScoutError {
	return New(ErrCodeWriterInit, "failed to initialize index writer", cause)
}

// AddDocument reports a failed document addition.
func AddDocument(path string, cause error) *ScoutError {
	return New(ErrCodeAddDocument,
		fmt.Sprintf("failed to add document: %s", path), cause).
		WithDetail("path", path)
}

// CommitFailed reports that the index commit did not complete.
func CommitFailed(cause error) *ScoutError {
	return New(ErrCodeCommitFailed, "failed to commit index", cause)
}

// SearchFailed reports a query execution failure.
func SearchFailed(cause error) *ScoutError {
	return New(ErrCodeSearchFailed, "search execution failed", cause)
}

// ConfigError creates a configuration-related error.
func ConfigError(message string, cause error) *ScoutError {
	return New(ErrCodeConfigInvalid, message, cause)
}

// InternalError creates an internal error.
func InternalError(message string, cause error) *ScoutError {
	return New(ErrCodeInternal, message, cause)
}

// IsFatal checks if an error has fatal severity.
// Fatal errors abort the current request.
func IsFatal(err error) bool {
	if se := AsScoutError(err); se != nil {
		return se.Severity == SeverityFatal
	}
	return false
}

// CodeOf extracts the error code from a ScoutError anywhere in the chain.
// Returns empty string if the chain holds no ScoutError.
func CodeOf(err error) string {
	if se := AsScoutError(err); se != nil {
		return se.Code
	}
	return ""
}

// CategoryOf extracts the category from a ScoutError anywhere in the chain.
// Returns empty string if the chain holds no ScoutError.
func CategoryOf(err error) Category {
	if se := AsScoutError(err); se != nil {
		return se.Category
	}
	return ""
}

// AsScoutError unwraps err to the first ScoutError in its chain.
// Returns nil when there is none.
func AsScoutError(err error) *ScoutError {
	var se *ScoutError
	if errors.As(err, &se) {
		return se
	}
	return nil
}
