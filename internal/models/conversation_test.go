package models

import "testing"

func TestConversation_AppendAndReplaceLast(t *testing.T) {
	c := NewConversation()

	if c.ReplaceLast(Message{Role: RoleAssistant}) {
		t.Error("ReplaceLast on empty conversation should return false")
	}

	c.Append(Message{Role: RoleUser, Content: "hi"})
	c.Append(Message{Role: RoleAssistant, Content: ""})

	if !c.ReplaceLast(Message{Role: RoleAssistant, Content: "Hel"}) {
		t.Fatal("ReplaceLast should succeed")
	}
	c.ReplaceLast(Message{Role: RoleAssistant, Content: "Hello"})

	if c.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", c.Len())
	}
	last, ok := c.Last()
	if !ok || last.Content != "Hello" {
		t.Errorf("Last() = %+v, want Hello", last)
	}

	user, ok := c.LastByRole(RoleUser)
	if !ok || user.Content != "hi" {
		t.Errorf("LastByRole(user) = %+v", user)
	}
}

func TestConversation_MessagesIsCopy(t *testing.T) {
	c := NewConversation(Message{Role: RoleUser, Content: "a"})

	msgs := c.Messages()
	msgs[0].Content = "mutated"

	if got, _ := c.Last(); got.Content != "a" {
		t.Errorf("Messages() leaked internal slice, got %q", got.Content)
	}
}

func TestConversation_Clear(t *testing.T) {
	c := NewConversation(
		Message{Role: RoleUser, Content: "a"},
		Message{Role: RoleAssistant, Content: "b"},
	)
	c.Clear()

	if c.Len() != 0 {
		t.Errorf("Len() after Clear = %d", c.Len())
	}
	if _, ok := c.Last(); ok {
		t.Error("Last() should report empty after Clear")
	}
}
