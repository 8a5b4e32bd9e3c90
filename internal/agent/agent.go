// Package agent contains the chat backends behind the chat API and the
// company-info workflow that grounds them.
package agent

import (
	"context"
	"strings"

	"github.com/diogo/tobchat/internal/models"
)

// Instructions is the system prompt of the company-info assistant
const Instructions = `You are a helpful company information assistant that can provide accurate information about the company.
You can provide information about: company profile, company structure, partner workshops, services, contact information, and policies.
Always be professional and accurate in your responses.`

// EmitFunc receives one text delta. Returning an error stops the stream.
type EmitFunc func(delta string) error

// Agent streams a reply to a conversation history
type Agent interface {
	Name() string
	Stream(ctx context.Context, messages []models.Message, emit EmitFunc) error
}

// splitSystem separates system messages from the dialogue.
// The system parts are joined with blank lines, Instructions first.
func splitSystem(messages []models.Message) (string, []models.Message) {
	system := []string{Instructions}
	dialogue := make([]models.Message, 0, len(messages))
	for _, m := range messages {
		if m.Role == models.RoleSystem {
			system = append(system, m.Content)
			continue
		}
		dialogue = append(dialogue, m)
	}
	return strings.Join(system, "\n\n"), dialogue
}

// lastUserQuery returns the content of the most recent user message
func lastUserQuery(messages []models.Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == models.RoleUser {
			return messages[i].Content
		}
	}
	return ""
}
