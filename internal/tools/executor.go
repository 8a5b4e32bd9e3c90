package tools

import (
	"context"
	"errors"
	"time"
)

// DefaultTimeout bounds a single tool call when the caller sets no deadline.
const DefaultTimeout = 10 * time.Second

// Executor runs registered tools through a middleware chain.
type Executor struct {
	registry *Registry
	timeout  time.Duration
	run      ToolFunc
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithTimeout sets the per-call timeout. Zero disables it.
func WithTimeout(d time.Duration) ExecutorOption {
	return func(e *Executor) {
		e.timeout = d
	}
}

// NewExecutor creates an executor over registry. Middlewares wrap every
// call with the first one outermost.
func NewExecutor(registry *Registry, middlewares []Middleware, opts ...ExecutorOption) *Executor {
	e := &Executor{registry: registry, timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(e)
	}
	e.run = chain(e.execute, middlewares...)
	return e
}

// Registry returns the registry the executor resolves tools from.
func (e *Executor) Registry() *Registry {
	return e.registry
}

// Execute runs the tool registered under toolName.
func (e *Executor) Execute(ctx context.Context, toolName string, input *Input) (*Output, error) {
	if e.timeout > 0 {
		if _, ok := ctx.Deadline(); !ok {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, e.timeout)
			defer cancel()
		}
	}
	if input == nil {
		input = NewInput()
	}
	return e.run(ctx, toolName, input)
}

func (e *Executor) execute(ctx context.Context, toolName string, input *Input) (*Output, error) {
	tool, err := e.registry.Get(toolName)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, contextError(toolName, err)
	}

	out, err := tool.Execute(ctx, input)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, contextError(toolName, ctxErr)
		}
		return nil, newToolError("execute", toolName, err)
	}
	return out, nil
}

func contextError(toolName string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return newToolError("execute", toolName, ErrTimeout)
	}
	return newToolError("execute", toolName, ErrCancelled)
}
