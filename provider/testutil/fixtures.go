package testutil

import (
	"time"

	"chatrelay/model"
)

// TestTranscript returns a short completed conversation for testing.
func TestTranscript() []model.Turn {
	now := time.Now()
	return []model.Turn{
		{Role: model.RoleUser, Content: "Hello, how are you?", Timestamp: now},
		{Role: model.RoleAssistant, Content: "I'm doing well, thank you!", Timestamp: now},
		{Role: model.RoleUser, Content: "Can you help me with a task?", Timestamp: now},
		{Role: model.RoleAssistant, Content: "Of course. What do you need?", Timestamp: now},
	}
}

// Exchange returns a user turn followed by an assistant turn.
func Exchange(user, assistant string) []model.Turn {
	return []model.Turn{
		model.NewTurn(model.RoleUser, user),
		model.NewTurn(model.RoleAssistant, assistant),
	}
}
