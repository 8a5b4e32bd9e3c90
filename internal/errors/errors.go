// Package errors provides custom error types for the chatbot client and API.
package errors

import (
	"context"
	"errors"
	"fmt"
)

// Sentinel errors for common cases
var (
	ErrEmptyBody            = errors.New("response body is empty")
	ErrInvalidQuery         = errors.New("invalid query provided")
	ErrBusy                 = errors.New("a message is already being sent")
	ErrStreamingUnsupported = errors.New("response writer does not support streaming")
	ErrInvalidResponse      = errors.New("invalid response format")
)

// Error codes carried by ChatbotError
const (
	CodeUnknown       = "UNKNOWN_ERROR"
	CodeInvalidQuery  = "INVALID_QUERY"
	CodeInvalidBody   = "INVALID_BODY"
	CodeAgentFailure  = "AGENT_FAILURE"
	CodeMissingConfig = "MISSING_CONFIG"
)

// APIError represents a non-success HTTP response from the chat API
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
	Body       string
}

func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("API error [%d] at %s: %s", e.StatusCode, e.Endpoint, e.Message)
	}
	return fmt.Sprintf("API error at %s: %s", e.Endpoint, e.Message)
}

// NewAPIError creates a new APIError
func NewAPIError(statusCode int, endpoint, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		Endpoint:   endpoint,
		Message:    message,
	}
}

// NewAPIErrorWithBody creates a new APIError keeping the response body for diagnostics
func NewAPIErrorWithBody(statusCode int, endpoint, message, body string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		Endpoint:   endpoint,
		Message:    message,
		Body:       body,
	}
}

// NetworkError represents a transport failure before or during the stream
type NetworkError struct {
	Operation string
	Endpoint  string
	Err       error
}

func (e *NetworkError) Error() string {
	if e.Endpoint != "" {
		return fmt.Sprintf("network error during %s at %s: %v", e.Operation, e.Endpoint, e.Err)
	}
	return fmt.Sprintf("network error during %s: %v", e.Operation, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// NewNetworkError creates a new NetworkError
func NewNetworkError(operation string, err error) *NetworkError {
	return &NetworkError{Operation: operation, Err: err}
}

// NewNetworkErrorWithEndpoint creates a new NetworkError bound to an endpoint
func NewNetworkErrorWithEndpoint(operation, endpoint string, err error) *NetworkError {
	return &NetworkError{Operation: operation, Endpoint: endpoint, Err: err}
}

// ParseError represents a malformed SSE payload
type ParseError struct {
	Message string
	Payload string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error: %s", e.Message)
}

// NewParseError creates a new ParseError
func NewParseError(message, payload string) *ParseError {
	return &ParseError{Message: message, Payload: payload}
}

// Is allows comparison with sentinel errors
func (e *ParseError) Is(target error) bool {
	if target == ErrInvalidResponse {
		return true
	}
	_, ok := target.(*ParseError)
	return ok
}

// StreamError is an explicit error event sent by the backend
type StreamError struct {
	Message string
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("stream error: %s", e.Message)
}

// NewStreamError creates a new StreamError
func NewStreamError(message string) *StreamError {
	return &StreamError{Message: message}
}

// ChatbotError is the backend's catch-all error with a code and HTTP status
type ChatbotError struct {
	Message    string
	Code       string
	StatusCode int
	Details    map[string]any
	Err        error
}

func (e *ChatbotError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("chatbot error [%s]: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("chatbot error: %s", e.Message)
}

func (e *ChatbotError) Unwrap() error { return e.Err }

// NewChatbotError creates a new ChatbotError
func NewChatbotError(message, code string, statusCode int, details map[string]any) *ChatbotError {
	return &ChatbotError{
		Message:    message,
		Code:       code,
		StatusCode: statusCode,
		Details:    details,
	}
}

// HandleChatbotError normalises any error into a ChatbotError.
// generalMessage is used when err carries no message of its own.
func HandleChatbotError(err error, generalMessage string) *ChatbotError {
	var ce *ChatbotError
	if errors.As(err, &ce) {
		return ce
	}
	if err == nil {
		return &ChatbotError{Message: generalMessage, Code: CodeUnknown, StatusCode: 500}
	}
	return &ChatbotError{
		Message:    err.Error(),
		Code:       CodeUnknown,
		StatusCode: 500,
		Details:    map[string]any{"originalError": err.Error()},
		Err:        err,
	}
}

// GetHTTPStatus extracts the HTTP status code from an error chain, or 0
func GetHTTPStatus(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	var ce *ChatbotError
	if errors.As(err, &ce) {
		return ce.StatusCode
	}
	return 0
}

// GetEndpoint extracts the endpoint from an error chain
func GetEndpoint(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Endpoint
	}
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return netErr.Endpoint
	}
	return ""
}

// GetResponseBody extracts the response body kept on an APIError
func GetResponseBody(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Body
	}
	return ""
}

// IsAPIError reports whether err is a non-success HTTP response
func IsAPIError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr)
}

// IsNetworkError reports whether err is a transport failure
func IsNetworkError(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}

// IsParseError reports whether err is a malformed payload
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

// IsStreamError reports whether err is a backend error event
func IsStreamError(err error) bool {
	var se *StreamError
	return errors.As(err, &se)
}

// IsCanceled reports whether err comes from a cancelled or expired context
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
