package orchio_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/gnames/dwcagent/internal/ent/llm"
	"github.com/gnames/dwcagent/internal/ent/orch"
	"github.com/gnames/dwcagent/internal/ent/store"
	"github.com/gnames/dwcagent/internal/ent/tool"
	"github.com/gnames/dwcagent/internal/io/memio"
	"github.com/gnames/dwcagent/internal/io/orchio"
	"github.com/gnames/dwcagent/pkg/config"
	"github.com/gnames/dwcagent/pkg/ent/grid"
	"github.com/gnames/dwcagent/pkg/ent/model"
)

// fakeCompleter replays scripted responses in order.
type fakeCompleter struct {
	responses []llm.Response
	calls     int
	err       error
}

func (f *fakeCompleter) Complete(
	_ context.Context, _ string, _ []model.Message, _ []llm.ToolSpec,
) (llm.Response, error) {
	if f.err != nil {
		return llm.Response{}, f.err
	}
	if f.calls >= len(f.responses) {
		return llm.Response{Content: "nothing left to say"}, nil
	}
	res := f.responses[f.calls]
	f.calls++
	return res, nil
}

// finishTool marks the agent done, the way CompleteTask does.
type finishTool struct {
	st store.Store
}

func (t *finishTool) Spec() llm.ToolSpec {
	return llm.ToolSpec{
		Name:        "Finish",
		Description: "Marks the task as complete.",
		Parameters:  map[string]any{},
	}
}

func (t *finishTool) Run(
	_ context.Context, ag *model.Agent, _ string,
) string {
	now := time.Now()
	ag.CompletedAt = &now
	if err := t.st.SaveAgent(ag); err != nil {
		return "Error: " + err.Error()
	}
	return "done"
}

// echoTool returns its raw arguments under a configurable name.
type echoTool struct {
	name string
}

func (t *echoTool) Spec() llm.ToolSpec {
	return llm.ToolSpec{
		Name:        t.name,
		Description: "Returns the arguments unchanged.",
		Parameters:  map[string]any{},
	}
}

func (t *echoTool) Run(
	_ context.Context, _ *model.Agent, args string,
) string {
	return args
}

var _ = Describe("Orchio", func() {
	var (
		ctx  context.Context
		st   store.Store
		comp *fakeCompleter
		o    orch.Orchestrator
		ds   model.Dataset
	)

	newOrch := func() orch.Orchestrator {
		registry := tool.NewRegistry(
			&finishTool{st: st},
			&echoTool{name: "Echo"},
			&echoTool{name: "Transform"},
		)
		return orchio.New(config.New(), st, comp, registry)
	}

	addTask := func(name string, order int) uint {
		t := model.Task{
			Name:  name,
			Text:  "Work on " + name + ".",
			Order: order,
			Tools: []string{"Echo", "Finish"},
		}
		Expect(st.UpsertTask(&t)).To(Succeed())
		return t.ID
	}

	BeforeEach(func() {
		ctx = context.Background()
		st = memio.New()
		comp = &fakeCompleter{}
		ds = model.Dataset{}
		Expect(st.CreateDataset(&ds)).To(Succeed())
		t := model.Table{
			DatasetID: ds.ID,
			Title:     "Observations",
			Grid: grid.New(
				[]string{"species"},
				[][]string{{"Puma concolor"}},
			),
		}
		Expect(st.CreateTable(&t)).To(Succeed())
		o = newOrch()
	})

	Describe("NextAgent", func() {
		It("fails when no tasks are configured", func() {
			_, err := o.NextAgent(ctx, ds.ID)
			Expect(err).To(HaveOccurred())
		})

		It("creates an agent for the first task with a system prompt",
			func() {
				taskID := addTask("clean_tables", 1)

				ag, err := o.NextAgent(ctx, ds.ID)
				Expect(err).NotTo(HaveOccurred())
				Expect(ag).NotTo(BeNil())
				Expect(ag.TaskID).To(Equal(taskID))

				msgs, err := st.Messages(ag.ID)
				Expect(err).NotTo(HaveOccurred())
				Expect(msgs).To(HaveLen(1))
				Expect(msgs[0].Role).To(Equal(model.RoleSystem))
				Expect(msgs[0].Content).To(
					ContainSubstring("clean_tables"))
				Expect(msgs[0].Content).To(
					ContainSubstring("Table id"))
			})

		It("returns the incomplete agent instead of creating another",
			func() {
				addTask("clean_tables", 1)

				first, err := o.NextAgent(ctx, ds.ID)
				Expect(err).NotTo(HaveOccurred())
				second, err := o.NextAgent(ctx, ds.ID)
				Expect(err).NotTo(HaveOccurred())
				Expect(second.ID).To(Equal(first.ID))
			})

		It("advances to the next task after completion", func() {
			addTask("clean_tables", 1)
			nextID := addTask("basic_metadata", 2)

			ag, err := o.NextAgent(ctx, ds.ID)
			Expect(err).NotTo(HaveOccurred())
			now := time.Now()
			ag.CompletedAt = &now
			Expect(st.SaveAgent(ag)).To(Succeed())

			next, err := o.NextAgent(ctx, ds.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(next).NotTo(BeNil())
			Expect(next.TaskID).To(Equal(nextID))
			Expect(next.ID).NotTo(Equal(ag.ID))
		})

		It("returns nil when every task is done", func() {
			addTask("clean_tables", 1)
			ag, err := o.NextAgent(ctx, ds.ID)
			Expect(err).NotTo(HaveOccurred())
			now := time.Now()
			ag.CompletedAt = &now
			Expect(st.SaveAgent(ag)).To(Succeed())

			next, err := o.NextAgent(ctx, ds.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(next).To(BeNil())
		})

		It("returns nil for a rejected dataset", func() {
			addTask("clean_tables", 1)
			now := time.Now()
			ds.RejectedAt = &now
			Expect(st.SaveDataset(&ds)).To(Succeed())

			ag, err := o.NextAgent(ctx, ds.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(ag).To(BeNil())
		})
	})

	Describe("NextMessage", func() {
		var agentID uint

		BeforeEach(func() {
			addTask("clean_tables", 1)
			ag, err := o.NextAgent(ctx, ds.ID)
			Expect(err).NotTo(HaveOccurred())
			agentID = ag.ID
		})

		It("persists a plain assistant reply and stops", func() {
			comp.responses = []llm.Response{
				{Content: "Looks clean.", StopReason: "end_turn"},
			}
			msgs, err := o.NextMessage(ctx, agentID)
			Expect(err).NotTo(HaveOccurred())
			Expect(msgs).To(HaveLen(1))
			Expect(msgs[0].Role).To(Equal(model.RoleAssistant))
			Expect(msgs[0].Content).To(Equal("Looks clean."))

			// The assistant is now waiting for the user.
			msgs, err = o.NextMessage(ctx, agentID)
			Expect(err).NotTo(HaveOccurred())
			Expect(msgs).To(BeNil())

			ag, err := st.Agent(agentID)
			Expect(err).NotTo(HaveOccurred())
			Expect(ag.Busy).To(BeFalse())
		})

		It("dispatches tool calls and records their results", func() {
			comp.responses = []llm.Response{{
				Content: "Echoing.",
				ToolCalls: []model.ToolCall{{
					ID:        "call_1",
					Name:      "Echo",
					Arguments: `{"x":1}`,
				}},
				StopReason: "tool_use",
			}}
			msgs, err := o.NextMessage(ctx, agentID)
			Expect(err).NotTo(HaveOccurred())
			Expect(msgs).To(HaveLen(2))
			Expect(msgs[0].ToolCalls).To(HaveLen(1))
			Expect(msgs[1].Role).To(Equal(model.RoleTool))
			Expect(msgs[1].ToolCallID).To(Equal("call_1"))
			Expect(msgs[1].Content).To(Equal(`{"x":1}`))
		})

		It("wraps bare Transform arguments into a code object", func() {
			comp.responses = []llm.Response{{
				ToolCalls: []model.ToolCall{{
					ID:        "call_1",
					Name:      "Transform",
					Arguments: `print("hi")`,
				}},
			}}
			msgs, err := o.NextMessage(ctx, agentID)
			Expect(err).NotTo(HaveOccurred())
			Expect(msgs[1].Content).To(
				Equal(`{"code":"print(\"hi\")"}`))
		})

		It("passes well-formed Transform arguments through", func() {
			comp.responses = []llm.Response{{
				ToolCalls: []model.ToolCall{{
					ID:        "call_1",
					Name:      "Transform",
					Arguments: `{"code": "print(1)"}`,
				}},
			}}
			msgs, err := o.NextMessage(ctx, agentID)
			Expect(err).NotTo(HaveOccurred())
			Expect(msgs[1].Content).To(Equal(`{"code": "print(1)"}`))
		})

		It("reports unknown tools in the conversation", func() {
			comp.responses = []llm.Response{{
				ToolCalls: []model.ToolCall{{
					ID:   "call_1",
					Name: "Nope",
				}},
			}}
			msgs, err := o.NextMessage(ctx, agentID)
			Expect(err).NotTo(HaveOccurred())
			Expect(msgs[1].Content).To(
				ContainSubstring(`Error: unknown tool "Nope"`))
		})

		It("keeps the completion a tool set on the agent", func() {
			comp.responses = []llm.Response{{
				ToolCalls: []model.ToolCall{{
					ID:   "call_1",
					Name: "Finish",
				}},
			}}
			_, err := o.NextMessage(ctx, agentID)
			Expect(err).NotTo(HaveOccurred())

			ag, err := st.Agent(agentID)
			Expect(err).NotTo(HaveOccurred())
			Expect(ag.Completed()).To(BeTrue())
			Expect(ag.Busy).To(BeFalse())
		})

		It("turns provider failures into an assistant message", func() {
			comp.err = context.DeadlineExceeded
			msgs, err := o.NextMessage(ctx, agentID)
			Expect(err).NotTo(HaveOccurred())
			Expect(msgs).To(HaveLen(1))
			Expect(msgs[0].Content).To(ContainSubstring(
				"problem querying the language model API"))
		})

		It("returns only the last message for a busy agent", func() {
			ag, err := st.Agent(agentID)
			Expect(err).NotTo(HaveOccurred())
			ag.Busy = true
			Expect(st.SaveAgent(ag)).To(Succeed())

			msgs, err := o.NextMessage(ctx, agentID)
			Expect(err).NotTo(HaveOccurred())
			Expect(msgs).To(HaveLen(1))
			Expect(msgs[0].Role).To(Equal(model.RoleSystem))
			Expect(comp.calls).To(BeZero())
		})
	})

	Describe("AddUserMessage", func() {
		It("appends a user message", func() {
			addTask("clean_tables", 1)
			ag, err := o.NextAgent(ctx, ds.ID)
			Expect(err).NotTo(HaveOccurred())

			msg, err := o.AddUserMessage(ag.ID, "please continue")
			Expect(err).NotTo(HaveOccurred())
			Expect(msg.Role).To(Equal(model.RoleUser))

			msgs, err := st.Messages(ag.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(msgs[len(msgs)-1].Content).To(
				Equal("please continue"))
		})

		It("refuses a completed agent", func() {
			addTask("clean_tables", 1)
			ag, err := o.NextAgent(ctx, ds.ID)
			Expect(err).NotTo(HaveOccurred())
			now := time.Now()
			ag.CompletedAt = &now
			Expect(st.SaveAgent(ag)).To(Succeed())

			_, err = o.AddUserMessage(ag.ID, "hello?")
			Expect(err).To(HaveOccurred())
		})
	})
})
