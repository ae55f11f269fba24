package llmio

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/gnames/dwcagent/internal/ent/llm"
	"github.com/gnames/dwcagent/pkg/config"
	"github.com/gnames/dwcagent/pkg/ent/model"
)

type llmio struct {
	cfg    config.Config
	client *anthropic.Client
}

// New returns a Completer backed by the Anthropic API.
func New(cfg config.Config) llm.Completer {
	client := anthropic.NewClient(option.WithAPIKey(cfg.LLMAPIKey))
	return &llmio{cfg: cfg, client: &client}
}

func (l *llmio) Complete(
	ctx context.Context,
	system string,
	messages []model.Message,
	tools []llm.ToolSpec,
) (llm.Response, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(l.cfg.LLMModel),
		MaxTokens: int64(l.cfg.LLMMaxTokens),
		System: []anthropic.TextBlockParam{
			{Text: system},
		},
		Messages: convertMessages(messages),
		Tools:    convertTools(tools),
	}

	msg, err := l.complete(ctx, params)
	if err != nil {
		slog.Error("Cannot get completion", "error", err,
			"model", l.cfg.LLMModel)
		return llm.Response{}, err
	}
	return convertResponse(msg), nil
}

// complete retries transient provider failures with a fixed delay. The
// model being overloaded is routine during long runs, so the retry
// count is generous.
func (l *llmio) complete(
	ctx context.Context, params anthropic.MessageNewParams,
) (*anthropic.Message, error) {
	var lastErr error
	for attempt := 0; attempt < l.cfg.LLMRetries; attempt++ {
		if attempt > 0 {
			slog.Warn("Retrying completion",
				"attempt", attempt+1, "error", lastErr)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(l.cfg.LLMRetryDelay):
			}
		}
		msg, err := l.client.Messages.New(ctx, params)
		if err == nil {
			return msg, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

func convertMessages(messages []model.Message) []anthropic.MessageParam {
	res := make([]anthropic.MessageParam, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case model.RoleUser:
			res = append(res, anthropic.NewUserMessage(
				anthropic.NewTextBlock(msg.Content),
			))

		case model.RoleAssistant:
			if len(msg.ToolCalls) == 0 {
				res = append(res, anthropic.NewAssistantMessage(
					anthropic.NewTextBlock(msg.Content),
				))
				continue
			}
			blocks := make(
				[]anthropic.ContentBlockParamUnion, 0, len(msg.ToolCalls)+1,
			)
			if msg.Content != "" {
				blocks = append(blocks, anthropic.NewTextBlock(msg.Content))
			}
			for _, tc := range msg.ToolCalls {
				blocks = append(blocks, anthropic.ContentBlockParamUnion{
					OfToolUse: &anthropic.ToolUseBlockParam{
						ID:    tc.ID,
						Name:  tc.Name,
						Input: json.RawMessage(tc.Arguments),
					},
				})
			}
			res = append(res, anthropic.NewAssistantMessage(blocks...))

		case model.RoleTool:
			res = append(res, anthropic.NewUserMessage(
				anthropic.NewToolResultBlock(
					msg.ToolCallID, msg.Content, false,
				),
			))
		}
	}
	return res
}

func convertTools(tools []llm.ToolSpec) []anthropic.ToolUnionParam {
	res := make([]anthropic.ToolUnionParam, len(tools))
	for i, t := range tools {
		res[i] = anthropic.ToolUnionParam{
			OfTool: &anthropic.ToolParam{
				Name:        t.Name,
				Description: anthropic.String(t.Description),
				InputSchema: inputSchema(t.Parameters),
			},
		}
	}
	return res
}

func inputSchema(params map[string]any) anthropic.ToolInputSchemaParam {
	return anthropic.ToolInputSchemaParam{
		Type:       "object",
		Properties: params["properties"],
		Required:   requiredFields(params),
	}
}

func requiredFields(params map[string]any) []string {
	switch req := params["required"].(type) {
	case []string:
		return req
	case []any:
		res := make([]string, 0, len(req))
		for _, r := range req {
			if s, ok := r.(string); ok {
				res = append(res, s)
			}
		}
		return res
	}
	return nil
}

func convertResponse(msg *anthropic.Message) llm.Response {
	var res llm.Response
	for _, block := range msg.Content {
		switch b := block.AsAny().(type) {
		case anthropic.TextBlock:
			res.Content += b.Text
		case anthropic.ToolUseBlock:
			args, _ := b.Input.MarshalJSON()
			res.ToolCalls = append(res.ToolCalls, model.ToolCall{
				ID:        b.ID,
				Name:      b.Name,
				Arguments: string(args),
			})
		}
	}
	res.StopReason = string(msg.StopReason)
	return res
}
