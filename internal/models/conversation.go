package models

// Conversation is the ordered message list of one widget session.
// It is append-only apart from ReplaceLast, which the streaming path uses
// to swap in the growing assistant reply. Not safe for concurrent use.
type Conversation struct {
	messages []Message
}

// NewConversation creates a conversation seeded with msgs
func NewConversation(msgs ...Message) *Conversation {
	c := &Conversation{}
	c.messages = append(c.messages, msgs...)
	return c
}

// Append adds a message at the end
func (c *Conversation) Append(msg Message) {
	c.messages = append(c.messages, msg)
}

// ReplaceLast swaps the last message; it returns false on an empty conversation
func (c *Conversation) ReplaceLast(msg Message) bool {
	if len(c.messages) == 0 {
		return false
	}
	c.messages[len(c.messages)-1] = msg
	return true
}

// Last returns the last message
func (c *Conversation) Last() (Message, bool) {
	if len(c.messages) == 0 {
		return Message{}, false
	}
	return c.messages[len(c.messages)-1], true
}

// LastByRole returns the most recent message with the given role
func (c *Conversation) LastByRole(role Role) (Message, bool) {
	for i := len(c.messages) - 1; i >= 0; i-- {
		if c.messages[i].Role == role {
			return c.messages[i], true
		}
	}
	return Message{}, false
}

// Len returns the number of messages
func (c *Conversation) Len() int {
	return len(c.messages)
}

// Messages returns a copy of the messages in order
func (c *Conversation) Messages() []Message {
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Clear drops every message
func (c *Conversation) Clear() {
	c.messages = nil
}
