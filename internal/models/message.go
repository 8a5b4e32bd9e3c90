package models

import "strings"

// Role identifies the author of a message
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	}
	return false
}

// Message represents a chat message, both on the wire and in the widget
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the body of POST /api/chat
type ChatRequest struct {
	Messages []Message `json:"messages"`
}

// Stream event payload types
const (
	EventText  = "text"
	EventError = "error"
)

// StreamEvent is one decoded SSE payload
type StreamEvent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

const (
	streamErrorPrefix    = "\n[Error]: "
	transportErrorPrefix = "Error: "
)

// FormatStreamError formats the suffix appended when the backend sends an error event
func FormatStreamError(value string) string {
	return streamErrorPrefix + value
}

// FormatTransportError formats the assistant content that replaces a failed turn
func FormatTransportError(err error) string {
	if err == nil {
		return ""
	}
	return transportErrorPrefix + err.Error()
}

// IsErrorContent reports whether assistant content is a failed-turn bubble
func IsErrorContent(content string) bool {
	return strings.HasPrefix(content, strings.TrimSpace(transportErrorPrefix))
}
