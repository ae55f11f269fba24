package toolio

import (
	"context"

	"github.com/gnames/dwcagent/internal/ent/llm"
	"github.com/gnames/dwcagent/pkg/ent/model"
)

// notifyTool lets the agent flag a dataset for human attention.
// Delivery is best effort; a failed notification never becomes a tool
// failure.
type notifyTool struct {
	*deps
}

func (t *notifyTool) Spec() llm.ToolSpec {
	return llm.ToolSpec{
		Name: "Notify",
		Description: "Send a message to the site operators. Use when " +
			"something needs human attention, for example data that " +
			"looks sensitive or a workflow you cannot move forward. " +
			"Always succeeds from the conversation's point of view.",
		Parameters: map[string]any{
			"properties": map[string]any{
				"message": map[string]any{
					"type":        "string",
					"description": "What the operators should know.",
				},
				"urgent": map[string]any{
					"type": "boolean",
					"description": "Optional, defaults to false. Set " +
						"to true when the issue needs prompt attention.",
				},
			},
			"required": []string{"message"},
		},
	}
}

type notifyArgs struct {
	Message string `json:"message"`
	Urgent  bool   `json:"urgent"`
}

func (t *notifyTool) Run(
	ctx context.Context, ag *model.Agent, args string,
) string {
	var a notifyArgs
	if err := t.decode(args, &a); err != nil {
		return errText(err)
	}
	event := "attention"
	if a.Urgent {
		event = "urgent"
	}
	t.notifier.Notify(ctx, ag.DatasetID, event, a.Message)
	return "Operators have been notified."
}
