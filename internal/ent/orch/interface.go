package orch

import (
	"context"

	"github.com/gnames/dwcagent/pkg/ent/model"
)

// Orchestrator moves datasets through the task sequence by creating
// agents and driving their conversations.
type Orchestrator interface {
	// NextAgent returns the dataset's active agent, creating one for the
	// next task when the previous agent finished. A nil agent with a nil
	// error means the workflow is over: the dataset was published or
	// rejected.
	NextAgent(ctx context.Context, datasetID uint) (*model.Agent, error)

	// NextMessage advances the agent's conversation one step: it asks
	// the model for the next assistant turn and dispatches any tool
	// calls it requests. The new transcript entries come back. A nil
	// slice means the agent is waiting for the user or already
	// completed; driving a busy agent is a no-op that returns the last
	// transcript entry.
	NextMessage(ctx context.Context, agentID uint) ([]model.Message, error)

	// AddUserMessage appends the user's reply to an agent's transcript.
	AddUserMessage(agentID uint, content string) (*model.Message, error)
}
