package tools

import (
	"errors"
	"fmt"
)

var (
	ErrToolNotFound   = errors.New("tool not found")
	ErrDuplicateTool  = errors.New("tool already registered")
	ErrNilTool        = errors.New("cannot register nil tool")
	ErrPanicRecovered = errors.New("panic recovered during execution")
	ErrTimeout        = errors.New("execution timed out")
	ErrCancelled      = errors.New("execution cancelled")
)

// ToolError describes a failed registry or execution operation.
type ToolError struct {
	Operation string
	ToolName  string
	Cause     error
}

// Error implements error
func (e *ToolError) Error() string {
	if e.ToolName == "" {
		return fmt.Sprintf("%s: %v", e.Operation, e.Cause)
	}
	return fmt.Sprintf("%s %q: %v", e.Operation, e.ToolName, e.Cause)
}

// Unwrap returns the underlying cause
func (e *ToolError) Unwrap() error {
	return e.Cause
}

func newToolError(op, name string, cause error) *ToolError {
	return &ToolError{Operation: op, ToolName: name, Cause: cause}
}
