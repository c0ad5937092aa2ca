package advisor

import (
	"fmt"
	"strings"
)

// APICallError represents a failed or timed out oracle call
type APICallError struct {
	Operation string
	Message   string
	Cause     error
}

func (e *APICallError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("advisor %s failed: %s: %v", e.Operation, e.Message, e.Cause)
	}
	return fmt.Sprintf("advisor %s failed: %s", e.Operation, e.Message)
}

func (e *APICallError) Unwrap() error {
	return e.Cause
}

// ParseError represents an oracle response that is not valid JSON
type ParseError struct {
	Operation string
	Message   string
	Cause     error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("advisor %s parse error: %s: %v", e.Operation, e.Message, e.Cause)
	}
	return fmt.Sprintf("advisor %s parse error: %s", e.Operation, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// ValidationError represents an oracle response that violates its contract
type ValidationError struct {
	Operation string
	Problems  []string
	Cause     error
}

func (e *ValidationError) Error() string {
	if len(e.Problems) == 0 && e.Cause != nil {
		return fmt.Sprintf("advisor %s returned an invalid payload: %v", e.Operation, e.Cause)
	}
	return fmt.Sprintf("advisor %s returned an invalid payload: %s", e.Operation, strings.Join(e.Problems, "; "))
}

func (e *ValidationError) Unwrap() error {
	return e.Cause
}
