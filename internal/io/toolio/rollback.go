package toolio

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gnames/dwcagent/internal/ent/llm"
	"github.com/gnames/dwcagent/pkg/ent/model"
)

// rollBackTool resets the dataset tables to the originally uploaded
// files. It also digs the past transform scripts out of the transcripts
// so the agent can replay the useful ones.
type rollBackTool struct {
	*deps
}

func (t *rollBackTool) Spec() llm.ToolSpec {
	return llm.ToolSpec{
		Name: "RollBack",
		Description: "USE WITH EXTREME CAUTION! RESETS TABLES " +
			"COMPLETELY to the tables originally loaded from the files " +
			"uploaded by the user. ALL CHANGES WILL BE UNDONE. Use as a " +
			"last resort if data columns have been accidentally deleted " +
			"or lost. Returns the IDs of the new reloaded tables, and a " +
			"list of all transform scripts run on the old tables up till " +
			"now together with their results. NOTE: scripts may not have " +
			"executed fully due to errors, so check the results as well.",
		Parameters: map[string]any{
			"properties": map[string]any{},
			"required":   []string{},
		},
	}
}

type snippet struct {
	CodeRun string `json:"code_run"`
	Results string `json:"results"`
}

type rollBackResult struct {
	NewTableIDs []uint    `json:"new_table_ids"`
	Snippets    []snippet `json:"code_snippets"`
}

func (t *rollBackTool) Run(
	ctx context.Context, ag *model.Agent, _ string,
) string {
	files, err := t.st.SourceFiles(ag.DatasetID)
	if err != nil {
		return errText(err)
	}
	if len(files) == 0 {
		return "Error: no source files are stored for this dataset, " +
			"cannot roll back"
	}

	if _, err = t.st.DeleteTables(ag.DatasetID); err != nil {
		return errText(err)
	}

	var res rollBackResult
	for _, f := range files {
		r, err := t.blob.GetSource(ctx, ag.DatasetID, f.Name)
		if err != nil {
			return errText(err)
		}
		ids, err := t.ingestor.IngestFile(ctx, ag.DatasetID, f.Name, r)
		r.Close()
		if err != nil {
			return errText(
				fmt.Errorf("cannot reload %s: %w", f.Name, err))
		}
		res.NewTableIDs = append(res.NewTableIDs, ids...)
	}

	res.Snippets = t.transformHistory(ag.DatasetID)

	t.notifier.Notify(ctx, ag.DatasetID, "rollback",
		fmt.Sprintf("Dataset tables rolled back for dataset id %d.",
			ag.DatasetID))
	slog.Warn("Rolled back dataset tables", "dataset", ag.DatasetID)

	out, err := t.enc.Encode(res)
	if err != nil {
		return errText(err)
	}
	return trunc(string(out))
}

// transformHistory pairs every past Transform call with the result
// message that answered it.
func (t *rollBackTool) transformHistory(datasetID uint) []snippet {
	msgs, err := t.st.DatasetMessages(datasetID)
	if err != nil {
		slog.Warn("Cannot collect transform history",
			"error", err, "dataset", datasetID)
		return nil
	}
	resultByCall := make(map[string]string)
	for _, m := range msgs {
		if m.Role == model.RoleTool && m.ToolCallID != "" {
			resultByCall[m.ToolCallID] = m.Content
		}
	}
	var res []snippet
	for _, m := range msgs {
		if m.Role != model.RoleAssistant {
			continue
		}
		for _, tc := range m.ToolCalls {
			if tc.Name != "Transform" {
				continue
			}
			res = append(res, snippet{
				CodeRun: tc.Arguments,
				Results: resultByCall[tc.ID],
			})
		}
	}
	return res
}
