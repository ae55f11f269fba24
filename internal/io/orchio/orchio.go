package orchio

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gnames/dwcagent/internal/ent/llm"
	"github.com/gnames/dwcagent/internal/ent/orch"
	"github.com/gnames/dwcagent/internal/ent/store"
	"github.com/gnames/dwcagent/internal/ent/tool"
	"github.com/gnames/dwcagent/pkg/config"
	"github.com/gnames/dwcagent/pkg/ent/model"
	"github.com/gnames/gnfmt"
)

type orchio struct {
	cfg       config.Config
	st        store.Store
	completer llm.Completer
	registry  tool.Registry
	enc       gnfmt.Encoder
}

// New returns an Orchestrator.
func New(
	cfg config.Config,
	st store.Store,
	completer llm.Completer,
	registry tool.Registry,
) orch.Orchestrator {
	return &orchio{
		cfg:       cfg,
		st:        st,
		completer: completer,
		registry:  registry,
		enc:       gnfmt.GNjson{},
	}
}

func (o *orchio) NextAgent(
	ctx context.Context, datasetID uint,
) (*model.Agent, error) {
	for {
		ds, err := o.st.Dataset(datasetID)
		if err != nil {
			return nil, err
		}
		if ds.Rejected() {
			slog.Info("Dataset is rejected, no further agents",
				"dataset", datasetID)
			return nil, nil
		}

		agents, err := o.st.Agents(datasetID)
		if err != nil {
			return nil, err
		}
		for i := range agents {
			if !agents[i].Completed() {
				return &agents[i], nil
			}
		}

		tasks, err := o.st.Tasks()
		if err != nil {
			return nil, err
		}
		if len(tasks) == 0 {
			return nil, fmt.Errorf(
				"no tasks are configured in the system")
		}

		var next *model.Task
		if len(agents) == 0 {
			tables, err := o.st.Tables(datasetID)
			if err != nil {
				return nil, err
			}
			if len(tables) == 0 {
				return nil, fmt.Errorf(
					"no tables found for dataset %d", datasetID)
			}
			next = &tasks[0]
		} else {
			last := agents[len(agents)-1]
			next = taskAfter(tasks, last.TaskID)
			if next == nil {
				slog.Info("All tasks completed",
					"dataset", datasetID,
					"published", ds.PublishedAt != nil)
				return nil, nil
			}
		}

		if err = o.createAgent(ds, next, len(tasks)); err != nil {
			return nil, err
		}
		// Loop so the freshly created agent goes through the same
		// selection path.
	}
}

// taskAfter returns the task following the given one in the total
// order.
func taskAfter(tasks []model.Task, taskID uint) *model.Task {
	for i := range tasks {
		if tasks[i].ID == taskID && i+1 < len(tasks) {
			return &tasks[i+1]
		}
	}
	return nil
}

// createAgent starts a working session for one task and seeds its
// transcript with the rendered system prompt.
func (o *orchio) createAgent(
	ds *model.Dataset, task *model.Task, taskCount int,
) error {
	ag := model.Agent{DatasetID: ds.ID, TaskID: task.ID}
	if err := o.st.CreateAgent(&ag); err != nil {
		return err
	}
	prompt, err := o.systemPrompt(ds, task, taskCount)
	if err != nil {
		return err
	}
	msg := model.Message{
		AgentID: ag.ID,
		Role:    model.RoleSystem,
		Content: prompt,
	}
	if err = o.st.AddMessage(&msg); err != nil {
		return err
	}
	slog.Info("Created agent", "agent", ag.ID, "dataset", ds.ID,
		"task", task.Name)
	return nil
}

func (o *orchio) NextMessage(
	ctx context.Context, agentID uint,
) ([]model.Message, error) {
	ag, err := o.st.Agent(agentID)
	if err != nil {
		return nil, err
	}
	msgs, err := o.st.Messages(agentID)
	if err != nil {
		return nil, err
	}
	if len(msgs) == 0 {
		return nil, fmt.Errorf("agent %d has no transcript", agentID)
	}
	last := msgs[len(msgs)-1]
	if last.Role == model.RoleAssistant || ag.Completed() {
		return nil, nil
	}
	if ag.Busy {
		return []model.Message{last}, nil
	}

	ag.Busy = true
	if err = o.st.SaveAgent(ag); err != nil {
		return nil, err
	}

	task, err := o.st.Task(ag.TaskID)
	if err != nil {
		o.clearBusy(ag.ID)
		return nil, err
	}
	system, convo := splitSystem(msgs)
	if len(convo) == 0 {
		// The provider rejects an empty conversation; a fresh agent has
		// only its system prompt so far.
		convo = []model.Message{{
			Role:    model.RoleUser,
			Content: "Please begin working on your task.",
		}}
	}

	resp, err := o.completer.Complete(
		ctx, system, convo, o.registry.Specs(task.Tools),
	)
	if err != nil {
		// The failure goes into the transcript so the conversation can
		// continue after the provider recovers.
		o.clearBusy(ag.ID)
		errMsg := model.Message{
			AgentID: ag.ID,
			Role:    model.RoleAssistant,
			Content: fmt.Sprintf(
				"Unfortunately there was a problem querying the "+
					"language model API. Try again later, and please "+
					"report this error to the developers. Full error: %v",
				err),
		}
		if addErr := o.st.AddMessage(&errMsg); addErr != nil {
			return nil, addErr
		}
		return []model.Message{errMsg}, nil
	}

	assistant := model.Message{
		AgentID:   ag.ID,
		Role:      model.RoleAssistant,
		Content:   resp.Content,
		ToolCalls: resp.ToolCalls,
	}
	if err = o.st.AddMessage(&assistant); err != nil {
		o.clearBusy(ag.ID)
		return nil, err
	}
	res := []model.Message{assistant}

	if len(resp.ToolCalls) == 0 {
		o.clearBusy(ag.ID)
		return res, nil
	}

	for _, tc := range resp.ToolCalls {
		result := o.dispatch(ctx, ag, tc)
		toolMsg := model.Message{
			AgentID:    ag.ID,
			Role:       model.RoleTool,
			Content:    result,
			ToolCallID: tc.ID,
		}
		if err = o.st.AddMessage(&toolMsg); err != nil {
			o.clearBusy(ag.ID)
			return nil, err
		}
		res = append(res, toolMsg)
	}

	// Re-read before clearing busy: a tool may have completed the agent
	// and that must not be overwritten.
	fresh, err := o.st.Agent(ag.ID)
	if err != nil {
		return nil, err
	}
	fresh.Busy = false
	if err = o.st.SaveAgent(fresh); err != nil {
		return nil, err
	}
	return res, nil
}

// dispatch runs one requested tool call; every failure mode turns into
// conversation text.
func (o *orchio) dispatch(
	ctx context.Context, ag *model.Agent, tc model.ToolCall,
) string {
	t, ok := o.registry.Tool(tc.Name)
	if !ok {
		return fmt.Sprintf(
			"Error: unknown tool %q requested in call %s", tc.Name, tc.ID)
	}
	args := tc.Arguments
	if tc.Name == "Transform" {
		args = o.wrapTransformArgs(args)
	}
	result := t.Run(ctx, ag, args)
	slog.Info("Dispatched tool", "tool", tc.Name, "agent", ag.ID)
	return result
}

// wrapTransformArgs tolerates the model sending a bare script instead
// of a JSON object with a "code" key.
func (o *orchio) wrapTransformArgs(args string) string {
	stripped := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r', '"', '\'':
			return -1
		}
		return r
	}, args)
	if strings.HasPrefix(stripped, "{code") {
		return args
	}
	wrapped, err := o.enc.Encode(map[string]string{"code": args})
	if err != nil {
		return args
	}
	return string(wrapped)
}

func (o *orchio) AddUserMessage(
	agentID uint, content string,
) (*model.Message, error) {
	ag, err := o.st.Agent(agentID)
	if err != nil {
		return nil, err
	}
	if ag.Completed() {
		return nil, fmt.Errorf(
			"agent %d already completed its task", agentID)
	}
	msg := model.Message{
		AgentID: agentID,
		Role:    model.RoleUser,
		Content: content,
	}
	if err = o.st.AddMessage(&msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (o *orchio) clearBusy(agentID uint) {
	ag, err := o.st.Agent(agentID)
	if err != nil {
		slog.Error("Cannot clear busy flag", "error", err,
			"agent", agentID)
		return
	}
	ag.Busy = false
	if err = o.st.SaveAgent(ag); err != nil {
		slog.Error("Cannot clear busy flag", "error", err,
			"agent", agentID)
	}
}

// splitSystem separates the seeded system prompt from the rest of the
// conversation.
func splitSystem(msgs []model.Message) (string, []model.Message) {
	var system string
	convo := make([]model.Message, 0, len(msgs))
	for _, m := range msgs {
		if m.Role == model.RoleSystem {
			if system == "" {
				system = m.Content
			}
			continue
		}
		convo = append(convo, m)
	}
	return system, convo
}
