// Package tool defines the operations an agent may invoke and the
// closed registry that maps tool names to implementations. Tools never
// return Go errors to the conversation: failures come back as strings
// with an "Error: " prefix so the model can react to them.
package tool

import (
	"context"

	"github.com/gnames/dwcagent/internal/ent/llm"
	"github.com/gnames/dwcagent/pkg/ent/model"
)

// MaxResult bounds the length of a tool result relayed to the model.
const MaxResult = 3000

// Tool is one operation an agent can call.
type Tool interface {
	// Spec describes the tool for the model.
	Spec() llm.ToolSpec

	// Run executes the tool with raw JSON arguments on behalf of an
	// agent. The result is conversation text, never longer than
	// MaxResult.
	Run(ctx context.Context, ag *model.Agent, args string) string
}

// Registry is the closed set of available tools. Tasks reference tools
// by name; a name outside the registry is a configuration error.
type Registry struct {
	tools map[string]Tool
}

// NewRegistry builds a registry from a fixed set of tools.
func NewRegistry(tools ...Tool) Registry {
	res := Registry{tools: make(map[string]Tool, len(tools))}
	for _, t := range tools {
		res.tools[t.Spec().Name] = t
	}
	return res
}

// Tool looks a tool up by name.
func (r Registry) Tool(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// Specs returns the specs of the named tools, skipping unknown names.
func (r Registry) Specs(names []string) []llm.ToolSpec {
	res := make([]llm.ToolSpec, 0, len(names))
	for _, name := range names {
		if t, ok := r.tools[name]; ok {
			res = append(res, t.Spec())
		}
	}
	return res
}

// Names lists every registered tool name.
func (r Registry) Names() []string {
	res := make([]string, 0, len(r.tools))
	for name := range r.tools {
		res = append(res, name)
	}
	return res
}
