package model

import "time"

// Role identifies who produced a turn in a transcript.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one entry of a session transcript.
type Turn struct {
	Role      Role
	Content   string
	Timestamp time.Time
}

// NewTurn returns a turn stamped with the current time.
func NewTurn(role Role, content string) Turn {
	return Turn{
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// CopyTurns returns an independent copy of a transcript.
// A nil or empty input yields an empty, non-nil slice.
func CopyTurns(turns []Turn) []Turn {
	out := make([]Turn, len(turns))
	copy(out, turns)
	return out
}
