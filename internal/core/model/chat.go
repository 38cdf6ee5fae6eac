package model

import "time"

type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// ChatMessage is one turn of an assistant conversation. Messages live in the
// client session only; the server never stores them.
type ChatMessage struct {
	ID        string    `json:"id"`
	Sender    Sender    `json:"sender" binding:"omitempty,oneof=user assistant"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// GeneratedWorkflow is the parsed result of a generation request.
type GeneratedWorkflow struct {
	Name        string         `json:"name"`
	Nodes       []any          `json:"nodes"`
	Connections map[string]any `json:"connections"`
	Document    map[string]any `json:"-"`
	Raw         string         `json:"-"`
}

// NewGeneratedWorkflow lifts the well-known fields out of a parsed document.
func NewGeneratedWorkflow(doc map[string]any, raw string) *GeneratedWorkflow {
	w := &GeneratedWorkflow{Document: doc, Raw: raw}
	if name, ok := doc["name"].(string); ok {
		w.Name = name
	}
	if nodes, ok := doc["nodes"].([]any); ok {
		w.Nodes = nodes
	}
	if conns, ok := doc["connections"].(map[string]any); ok {
		w.Connections = conns
	}
	return w
}
