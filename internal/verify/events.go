package verify

import "encoding/json"

// Event types emitted during a verification run.
const (
	EventIteration  = "iteration"
	EventText       = "text"
	EventToolUse    = "tool_use"
	EventToolResult = "tool_result"
	EventDone       = "done"
	EventError      = "error"
)

// Event represents a step of agent execution for streaming to a UI.
type Event struct {
	Type      string
	Content   string
	Tool      string
	Input     json.RawMessage
	Iteration int
}

func truncateForDisplay(s string) string {
	if len(s) > 500 {
		return s[:500] + "..."
	}
	return s
}
