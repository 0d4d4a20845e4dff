// Package errors provides structured error handling for ScoutMCP.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Configuration errors
//   - 2XX: Directory walk errors
//   - 3XX: Index build errors
//   - 4XX: Query and validation errors
//   - 5XX: Internal errors
package errors

// Category defines error categories for classification.
type Category string

const (
	// CategoryConfig indicates configuration-related errors.
	CategoryConfig Category = "CONFIG"
	// CategoryWalk indicates directory traversal errors.
	CategoryWalk Category = "WALK"
	// CategoryIndex indicates index construction errors.
	CategoryIndex Category = "INDEX"
	// CategoryQuery indicates query and input validation errors.
	CategoryQuery Category = "QUERY"
	// CategoryInternal indicates unexpected internal errors.
	CategoryInternal Category = "INTERNAL"
)

// Severity defines error severity levels.
type Severity string

const (
	// SeverityFatal indicates unrecoverable error, must abort the request.
	SeverityFatal Severity = "FATAL"
	// SeverityError indicates the operation failed.
	SeverityError Severity = "ERROR"
	// SeverityWarning indicates degraded operation, continuing.
	SeverityWarning Severity = "WARNING"
)

// Error codes organized by category.
const (
	// Config errors (100-199)
	ErrCodeConfigNotFound = "ERR_101_CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid  = "ERR_102_CONFIG_INVALID"

	// Walk errors (200-299)
	ErrCodeNotADirectory = "ERR_201_NOT_A_DIRECTORY"
	ErrCodeWalkFailed    = "ERR_202_WALK_FAILED"

	// Index errors (300-399)
	ErrCodeWriterInit   = "ERR_301_WRITER_INIT"
	ErrCodeAddDocument  = "ERR_302_ADD_DOCUMENT"
	ErrCodeCommitFailed = "ERR_303_COMMIT_FAILED"
	ErrCodeIndexClosed  = "ERR_304_INDEX_CLOSED"

	// Query and validation errors (400-499)
	ErrCodeEmptyKeyword = "ERR_401_EMPTY_KEYWORD"
	ErrCodeQueryParse   = "ERR_402_QUERY_PARSE"
	ErrCodeSearchFailed = "ERR_403_SEARCH_FAILED"

	// Internal errors (500-599)
	ErrCodeInternal  = "ERR_501_INTERNAL"
	ErrCodeTelemetry = "ERR_502_TELEMETRY"
)

// categoryFromCode extracts category from error code.
func categoryFromCode(code string) Category {
	if len(code) < 7 {
		return CategoryInternal
	}

	// Extract numeric portion (e.g., "201" from "ERR_201_NOT_A_DIRECTORY")
	switch code[4] {
	case '1':
		return CategoryConfig
	case '2':
		return CategoryWalk
	case '3':
		return CategoryIndex
	case '4':
		return CategoryQuery
	default:
		return CategoryInternal
	}
}

// severityFromCode determines severity based on error code.
func severityFromCode(code string) Severity {
	switch code {
	// Index failures abort the whole request: the writer cannot be salvaged.
	case ErrCodeWriterInit, ErrCodeAddDocument, ErrCodeCommitFailed:
		return SeverityFatal
	// Telemetry must never take a search down with it.
	case ErrCodeTelemetry:
		return SeverityWarning
	default:
		return SeverityError
	}
}
