package mcp

import (
	"errors"
	"fmt"

	"github.com/aigameforge/forge/internal/domain/engine"
	"github.com/aigameforge/forge/internal/domain/project"
	"github.com/aigameforge/forge/internal/domain/session"
	"github.com/aigameforge/forge/internal/flow"
	"github.com/aigameforge/forge/internal/repository"
)

// APIError represents an MCP error response.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	Details      any    `json:"details,omitempty"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// MapError maps domain errors to MCP error codes.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, project.ErrProjectNotFound):
		return &APIError{Code: "PROJECT_NOT_FOUND", Message: "project not found", RecoveryHint: "Check the project id against list_projects"}
	case errors.Is(err, session.ErrAuthRequired):
		return &APIError{Code: "AUTH_REQUIRED", Message: "authentication required", RecoveryHint: "Sign in and retry; local projects remain available"}
	case errors.Is(err, repository.ErrUnauthorized):
		return &APIError{Code: "UNAUTHORIZED", Message: "invalid or expired credentials", RecoveryHint: "Sign in again"}
	case errors.Is(err, flow.ErrInvalidInput):
		return &APIError{Code: "INVALID_INPUT", Message: err.Error(), RecoveryHint: "Fix the request arguments"}
	case errors.Is(err, flow.ErrSchemaInvalid):
		return &APIError{Code: "SCHEMA_INVALID", Message: "model response did not match the expected schema", RecoveryHint: "Retry the request"}
	case errors.Is(err, flow.ErrUpstream), errors.Is(err, repository.ErrUpstream):
		return &APIError{Code: "UPSTREAM_ERROR", Message: err.Error(), RecoveryHint: "Retry later"}
	case errors.Is(err, project.ErrInvalidInput):
		return &APIError{Code: "INVALID_INPUT", Message: err.Error(), RecoveryHint: "Fix the request arguments"}
	case errors.Is(err, engine.ErrUnknownEngine):
		return &APIError{Code: "UNKNOWN_ENGINE", Message: "unknown engine", RecoveryHint: "Use an id from list_engines"}
	default:
		return &APIError{Code: "INTERNAL_ERROR", Message: err.Error()}
	}
}
