package llm

import (
	"context"

	"github.com/gnames/dwcagent/pkg/ent/model"
)

// ToolSpec describes one tool the model may call. Parameters is a JSON
// Schema object with "properties" and "required" keys.
type ToolSpec struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// Response is the model's answer to one completion request.
type Response struct {
	// Content is the concatenated text of the answer.
	Content string

	// ToolCalls are the tool invocations the model requested, in order.
	ToolCalls []model.ToolCall

	// StopReason is the provider's reason for ending the turn.
	StopReason string
}

// Completer sends a conversation to a language model and returns its
// next message.
type Completer interface {
	// Complete requests a completion. The system prompt travels
	// separately from the conversation messages. Transient provider
	// failures are retried internally.
	Complete(
		ctx context.Context,
		system string,
		messages []model.Message,
		tools []ToolSpec,
	) (Response, error)
}
