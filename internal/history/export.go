// Package history exports the in-memory conversation of a chat session.
// Nothing is persisted unless the user asks for an export.
package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/diogo/tobchat/internal/models"
)

// ExportFormat represents the format for exporting conversations
type ExportFormat string

const (
	ExportFormatMarkdown ExportFormat = "markdown"
	ExportFormatJSON     ExportFormat = "json"
)

// Transcript is a conversation snapshot ready for export
type Transcript struct {
	SessionID  string
	ExportedAt time.Time
	Messages   []models.Message
}

// NewTranscript snapshots msgs at the current time
func NewTranscript(sessionID string, msgs []models.Message) Transcript {
	out := make([]models.Message, len(msgs))
	copy(out, msgs)
	return Transcript{SessionID: sessionID, ExportedAt: time.Now(), Messages: out}
}

// FormatFromPath picks the export format from a file extension
func FormatFromPath(path string) ExportFormat {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return ExportFormatJSON
	}
	return ExportFormatMarkdown
}

// DefaultFileName returns a file name for a transcript in the given format
func DefaultFileName(t Transcript, format ExportFormat) string {
	ext := ".md"
	if format == ExportFormatJSON {
		ext = ".json"
	}
	id := t.SessionID
	if len(id) > 8 {
		id = id[:8]
	}
	name := "tobchat-" + t.ExportedAt.Format("20060102-150405")
	if id != "" {
		name += "-" + id
	}
	return name + ext
}

func roleLabel(r models.Role) string {
	switch r {
	case models.RoleAssistant:
		return "Assistant"
	case models.RoleSystem:
		return "System"
	default:
		return "User"
	}
}

// ToMarkdown renders the transcript as Markdown
func ToMarkdown(t Transcript) string {
	var sb strings.Builder

	sb.WriteString("# ")
	sb.WriteString(models.ChatbotName)
	sb.WriteString(" conversation\n\n")

	if t.SessionID != "" {
		sb.WriteString("**Session:** ")
		sb.WriteString(t.SessionID)
		sb.WriteString("\n")
	}
	sb.WriteString("**Exported:** ")
	sb.WriteString(t.ExportedAt.Format("2006-01-02 15:04:05"))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("**Messages:** %d\n\n---\n\n", len(t.Messages)))

	for i, msg := range t.Messages {
		sb.WriteString("## ")
		sb.WriteString(roleLabel(msg.Role))
		sb.WriteString("\n\n")

		content := msg.Content
		if content == "" {
			content = "_(no reply)_"
		}
		sb.WriteString(content)
		sb.WriteString("\n")

		if i < len(t.Messages)-1 {
			sb.WriteString("\n---\n\n")
		}
	}

	return sb.String()
}

// exportDocument is the JSON shape of an exported transcript
type exportDocument struct {
	Name       string           `json:"name"`
	Version    string           `json:"version"`
	SessionID  string           `json:"session_id,omitempty"`
	ExportedAt time.Time        `json:"exported_at"`
	Messages   []models.Message `json:"messages"`
}

// ToJSON renders the transcript as indented JSON. Messages keep the
// role/content shape of the chat API request.
func ToJSON(t Transcript) ([]byte, error) {
	msgs := t.Messages
	if msgs == nil {
		msgs = []models.Message{}
	}
	return json.MarshalIndent(exportDocument{
		Name:       models.ChatbotName,
		Version:    models.ChatbotVersion,
		SessionID:  t.SessionID,
		ExportedAt: t.ExportedAt,
		Messages:   msgs,
	}, "", "  ")
}

// Export renders the transcript in the given format
func Export(t Transcript, format ExportFormat) ([]byte, error) {
	switch format {
	case ExportFormatJSON:
		return ToJSON(t)
	case ExportFormatMarkdown, "":
		return []byte(ToMarkdown(t)), nil
	default:
		return nil, fmt.Errorf("unknown export format %q", format)
	}
}

// Save writes the transcript to path, choosing the format from its extension
func Save(path string, t Transcript) error {
	if len(t.Messages) == 0 {
		return fmt.Errorf("conversation is empty")
	}

	data, err := Export(t, FormatFromPath(path))
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create export directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	return nil
}
