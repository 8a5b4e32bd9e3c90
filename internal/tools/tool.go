// Package tools registers and executes the server-side tools an agent
// workflow can call to gather context before answering.
package tools

import (
	"context"
)

// Tool is a named operation an agent workflow can execute.
type Tool interface {
	// Name returns the identifier the tool is registered under.
	Name() string

	// Description returns a human-readable summary of the tool.
	Description() string

	// Execute runs the tool. Implementations must honor ctx cancellation.
	Execute(ctx context.Context, input *Input) (*Output, error)
}

// Input carries the parameters of a tool call.
type Input struct {
	Params map[string]any
}

// NewInput creates an empty Input.
func NewInput() *Input {
	return &Input{Params: make(map[string]any)}
}

// WithParam sets a parameter and returns the Input for chaining.
func (i *Input) WithParam(key string, value any) *Input {
	if i.Params == nil {
		i.Params = make(map[string]any)
	}
	i.Params[key] = value
	return i
}

// GetParamString returns the string parameter for key, or "" when missing
// or not a string.
func (i *Input) GetParamString(key string) string {
	if i == nil || i.Params == nil {
		return ""
	}
	s, _ := i.Params[key].(string)
	return s
}

// Output is the result of a tool call.
type Output struct {
	Result   map[string]any
	Metadata map[string]string
	Message  string
}

// NewOutput creates an empty Output.
func NewOutput() *Output {
	return &Output{
		Result:   make(map[string]any),
		Metadata: make(map[string]string),
	}
}

// WithResult sets a result entry and returns the Output for chaining.
func (o *Output) WithResult(key string, value any) *Output {
	if o.Result == nil {
		o.Result = make(map[string]any)
	}
	o.Result[key] = value
	return o
}

// WithMetadata sets a metadata entry and returns the Output for chaining.
func (o *Output) WithMetadata(key, value string) *Output {
	if o.Metadata == nil {
		o.Metadata = make(map[string]string)
	}
	o.Metadata[key] = value
	return o
}

// WithMessage sets the message and returns the Output for chaining.
func (o *Output) WithMessage(message string) *Output {
	o.Message = message
	return o
}
