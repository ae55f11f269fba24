package toolio

import (
	"context"

	"github.com/gnames/dwcagent/internal/ent/llm"
	"github.com/gnames/dwcagent/pkg/ent/model"
)

// validateTool runs the automatic checks over every table of the
// agent's dataset and relays the report.
type validateTool struct {
	*deps
}

func (t *validateTool) Spec() llm.ToolSpec {
	return llm.ToolSpec{
		Name: "Validate",
		Description: "Run automatic basic checks of all the dataset's " +
			"tables against the Darwin Core standard: column vocabulary, " +
			"schema classification, controlled values, coordinates, " +
			"counts, event dates and scientific names. Parseable dates " +
			"are normalized to ISO 8601 and confidently misspelled " +
			"names are corrected in place. Returns a validation report.",
		Parameters: map[string]any{
			"properties": map[string]any{},
			"required":   []string{},
		},
	}
}

func (t *validateTool) Run(
	ctx context.Context, ag *model.Agent, _ string,
) string {
	rep, err := t.validator.ValidateDataset(ctx, ag.DatasetID)
	if err != nil {
		return errText(err)
	}
	return trunc("validation report:\n" + rep.Render())
}
