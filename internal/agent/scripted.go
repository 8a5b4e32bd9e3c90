package agent

import (
	"context"
	"strings"
	"time"

	"github.com/diogo/tobchat/internal/models"
)

const scriptedGreeting = "Hello! I'm the " + models.ChatbotName + ". I can answer questions about our company profile, " +
	"company structure, partner workshops, services, contact information and policies."

// ScriptedAgent replies without a model. It answers from injected company
// information when present, so the whole pipeline can run offline.
type ScriptedAgent struct {
	// Reply builds the full answer; nil uses the default script
	Reply func(messages []models.Message) string
	// Delay is slept between deltas
	Delay time.Duration
	// Err, when set, is returned after FailAfter deltas
	Err       error
	FailAfter int
}

// NewScriptedAgent returns the default offline agent
func NewScriptedAgent() *ScriptedAgent {
	return &ScriptedAgent{}
}

// Name implements Agent
func (a *ScriptedAgent) Name() string {
	return "mock"
}

// defaultReply echoes retrieved knowledge as a markdown list
func defaultReply(messages []models.Message) string {
	for _, m := range messages {
		if m.Role != models.RoleSystem || !strings.HasPrefix(m.Content, "Company information") {
			continue
		}
		var facts []string
		for _, line := range strings.Split(m.Content, "\n") {
			if !strings.HasPrefix(line, "- [") {
				continue
			}
			if i := strings.Index(line, "] "); i >= 0 {
				facts = append(facts, "- "+line[i+2:])
			}
		}
		if len(facts) > 0 {
			return "Here is what I found:\n\n" + strings.Join(facts, "\n")
		}
	}
	if lastUserQuery(messages) == "" {
		return models.ErrMsgInvalidQuery
	}
	return scriptedGreeting
}

// Stream implements Agent, emitting the reply word by word
func (a *ScriptedAgent) Stream(ctx context.Context, messages []models.Message, emit EmitFunc) error {
	reply := a.Reply
	if reply == nil {
		reply = defaultReply
	}

	for i, delta := range strings.SplitAfter(reply(messages), " ") {
		if a.Err != nil && i == a.FailAfter {
			return a.Err
		}
		if a.Delay > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(a.Delay):
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}
		if err := emit(delta); err != nil {
			return err
		}
	}
	if a.Err != nil {
		return a.Err
	}
	return nil
}
