// Package mcp implements the Model Context Protocol (MCP) server for ScoutMCP.
package mcp

import (
	"context"
	"errors"
	"fmt"

	scouterrors "github.com/scoutmcp/scoutmcp/internal/errors"
)

// MCP error codes.
const (
	// ErrCodeTimeout indicates the request timed out or was canceled.
	ErrCodeTimeout = -32001

	// Standard JSON-RPC error codes.
	ErrCodeInvalidRequest = -32600
	ErrCodeMethodNotFound = -32601
	ErrCodeInvalidParams  = -32602
	ErrCodeInternalError  = -32603
)

// MCPError represents an MCP protocol error with code and message.
type MCPError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// MapError converts internal errors to MCP errors.
// Validation failures (bad directory, empty keyword, unparseable query)
// map to invalid params; index and query execution failures map to
// internal errors.
func MapError(err error) *MCPError {
	if err == nil {
		return nil
	}

	if se := scouterrors.AsScoutError(err); se != nil {
		return mapScoutError(se)
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &MCPError{
			Code:    ErrCodeTimeout,
			Message: "Request timed out.",
		}
	case errors.Is(err, context.Canceled):
		return &MCPError{
			Code:    ErrCodeTimeout,
			Message: "Request was canceled.",
		}
	default:
		return &MCPError{
			Code:    ErrCodeInternalError,
			Message: "Internal server error.",
		}
	}
}

// NewInvalidParamsError creates an error for invalid parameters with a custom message.
func NewInvalidParamsError(msg string) *MCPError {
	return &MCPError{
		Code:    ErrCodeInvalidParams,
		Message: msg,
	}
}

// NewResourceNotFoundError creates an error for unknown resources.
func NewResourceNotFoundError(uri string) *MCPError {
	return &MCPError{
		Code:    ErrCodeMethodNotFound,
		Message: fmt.Sprintf("Resource '%s' not found.", uri),
	}
}

// mapScoutError converts a ScoutError to an MCPError. The suggestion,
// when present, rides along in the message so MCP clients surface it.
func mapScoutError(se *scouterrors.ScoutError) *MCPError {
	message := se.Message
	if se.Suggestion != "" {
		message = fmt.Sprintf("%s %s", se.Message, se.Suggestion)
	}

	switch se.Code {
	case scouterrors.ErrCodeNotADirectory,
		scouterrors.ErrCodeEmptyKeyword,
		scouterrors.ErrCodeQueryParse:
		return &MCPError{
			Code:    ErrCodeInvalidParams,
			Message: message,
		}
	default:
		return &MCPError{
			Code:    ErrCodeInternalError,
			Message: message,
		}
	}
}
