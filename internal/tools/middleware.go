package tools

import (
	"context"
	"fmt"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

// ToolFunc executes the named tool.
type ToolFunc func(ctx context.Context, toolName string, input *Input) (*Output, error)

// Middleware decorates a ToolFunc.
type Middleware func(next ToolFunc) ToolFunc

// chain applies middlewares so the first one is the outermost.
func chain(fn ToolFunc, middlewares ...Middleware) ToolFunc {
	for i := len(middlewares) - 1; i >= 0; i-- {
		fn = middlewares[i](fn)
	}
	return fn
}

// Recovery converts a panic inside the tool into an error wrapping
// ErrPanicRecovered.
func Recovery(logger zerolog.Logger) Middleware {
	return func(next ToolFunc) ToolFunc {
		return func(ctx context.Context, toolName string, input *Input) (out *Output, err error) {
			defer func() {
				if r := recover(); r != nil {
					logger.Error().
						Str("tool", toolName).
						Interface("panic", r).
						Bytes("stack", debug.Stack()).
						Msg("tool panicked")
					out = nil
					err = newToolError("execute", toolName, fmt.Errorf("%w: %v", ErrPanicRecovered, r))
				}
			}()
			return next(ctx, toolName, input)
		}
	}
}

// Timing records the execution time in the output metadata as
// "duration_ms".
func Timing() Middleware {
	return func(next ToolFunc) ToolFunc {
		return func(ctx context.Context, toolName string, input *Input) (*Output, error) {
			start := time.Now()
			out, err := next(ctx, toolName, input)
			if out != nil {
				ms := float64(time.Since(start).Microseconds()) / 1000
				out.WithMetadata("duration_ms", strconv.FormatFloat(ms, 'f', 3, 64))
			}
			return out, err
		}
	}
}

// Logging logs every tool call at debug level and failures at warn.
func Logging(logger zerolog.Logger) Middleware {
	return func(next ToolFunc) ToolFunc {
		return func(ctx context.Context, toolName string, input *Input) (*Output, error) {
			start := time.Now()
			out, err := next(ctx, toolName, input)
			if err != nil {
				logger.Warn().Err(err).Str("tool", toolName).Dur("duration", time.Since(start)).Msg("tool failed")
				return out, err
			}
			logger.Debug().Str("tool", toolName).Dur("duration", time.Since(start)).Msg("tool executed")
			return out, nil
		}
	}
}
