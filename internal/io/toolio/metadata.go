package toolio

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gnames/dwcagent/internal/ent/llm"
	"github.com/gnames/dwcagent/pkg/ent/model"
)

// setBasicMetadataTool records the dataset's title, description and
// related notes, and can mark the dataset as unsuitable for
// publication.
type setBasicMetadataTool struct {
	*deps
}

func (t *setBasicMetadataTool) Spec() llm.ToolSpec {
	return llm.ToolSpec{
		Name: "SetBasicMetadata",
		Description: "Set the title and description (Metadata) for the " +
			"dataset. Returns a success or error message.",
		Parameters: map[string]any{
			"properties": map[string]any{
				"title": map[string]any{
					"type": "string",
					"description": "A short but descriptive title for " +
						"the dataset as a whole",
				},
				"description": map[string]any{
					"type": "string",
					"description": "A longer description of what the " +
						"dataset contains, including any important " +
						"information about why the data was gathered " +
						"(e.g. for a study) as well as how it was " +
						"gathered.",
				},
				"user_language": map[string]any{
					"type": "string",
					"description": "Note down if the user wants to " +
						"speak in a particular language. Default is " +
						"English.",
				},
				"structure_notes": map[string]any{
					"type": "string",
					"description": "Optional. Use to note any " +
						"significant data structural problems or " +
						"oddities.",
				},
				"core_type": map[string]any{
					"type": "string",
					"enum": []string{"occurrence", "event", "taxon"},
					"description": "Optional. The Darwin Core core the " +
						"dataset should be published under.",
				},
				"suitable_for_publication": map[string]any{
					"type": "boolean",
					"description": "Optional, defaults to true. Set to " +
						"false if the data is deemed unsuitable for " +
						"publication.",
				},
			},
			"required": []string{"title", "description"},
		},
	}
}

type basicMetadataArgs struct {
	Title          string `json:"title"`
	Description    string `json:"description"`
	UserLanguage   string `json:"user_language"`
	StructureNotes string `json:"structure_notes"`
	CoreType       string `json:"core_type"`
	Suitable       *bool  `json:"suitable_for_publication"`
}

func (t *setBasicMetadataTool) Run(
	ctx context.Context, ag *model.Agent, args string,
) string {
	var a basicMetadataArgs
	if err := t.decode(args, &a); err != nil {
		return errText(err)
	}
	ds, err := t.st.Dataset(ag.DatasetID)
	if err != nil {
		return errText(err)
	}
	ds.Title = a.Title
	ds.Description = a.Description
	if a.StructureNotes != "" {
		if ds.StructureNotes != "" {
			ds.StructureNotes += "\n"
		}
		ds.StructureNotes += a.StructureNotes
	}
	if a.UserLanguage != "" && a.UserLanguage != "English" {
		ds.UserLanguage = a.UserLanguage
	}
	if a.CoreType != "" {
		ds.CoreType = model.CoreType(a.CoreType)
	}
	if a.Suitable != nil && !*a.Suitable {
		now := time.Now()
		ds.RejectedAt = &now
		slog.Warn("Dataset rejected", "dataset", ds.ID)
		t.notifier.Notify(ctx, ds.ID, "rejected",
			fmt.Sprintf("Dataset %d was marked unsuitable for "+
				"publication.", ds.ID))
	}
	if err = t.st.SaveDataset(ds); err != nil {
		return errText(err)
	}
	return "Basic Metadata has been successfully set."
}

// setEMLTool merges metadata fields into the dataset's EML block. Only
// the supplied fields change.
type setEMLTool struct {
	*deps
}

func (t *setEMLTool) Spec() llm.ToolSpec {
	return llm.ToolSpec{
		Name: "SetEML",
		Description: "Set the EML (Metadata) for the dataset. Returns " +
			"a success or error message. Note that SetBasicMetadata " +
			"should be used to set the dataset Title and Description.",
		Parameters: map[string]any{
			"properties": map[string]any{
				"temporal_scope": map[string]any{
					"type": "string",
					"description": "Optional temporal coverage of the " +
						"dataset (e.g. 1990-2020)",
				},
				"geographic_scope": map[string]any{
					"type": "string",
					"description": "Optional geographic coverage of " +
						"the dataset (e.g. Amazon Basin, Brazil)",
				},
				"taxonomic_scope": map[string]any{
					"type": "string",
					"description": "Optional taxonomic coverage " +
						"(e.g. Lepidoptera, Aves)",
				},
				"methodology": map[string]any{
					"type": "string",
					"description": "Optional description of the " +
						"sampling / data collection methodology",
				},
				"users": map[string]any{
					"type": "array",
					"description": "Optional list of people involved " +
						"in the dataset. Each entry should be an object " +
						"with first_name, last_name, email, and orcid " +
						"keys.",
					"items": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"first_name": map[string]any{
								"type": "string",
							},
							"last_name": map[string]any{
								"type": "string",
							},
							"email": map[string]any{
								"type": "string",
							},
							"orcid": map[string]any{
								"type": "string",
							},
						},
						"required": []string{
							"first_name", "last_name", "email",
						},
					},
				},
			},
			"required": []string{},
		},
	}
}

type emlArgs struct {
	TemporalScope   *string         `json:"temporal_scope"`
	GeographicScope *string         `json:"geographic_scope"`
	TaxonomicScope  *string         `json:"taxonomic_scope"`
	Methodology     *string         `json:"methodology"`
	Users           []model.EMLUser `json:"users"`
}

func (t *setEMLTool) Run(
	_ context.Context, ag *model.Agent, args string,
) string {
	var a emlArgs
	if err := t.decode(args, &a); err != nil {
		return errText(err)
	}
	ds, err := t.st.Dataset(ag.DatasetID)
	if err != nil {
		return errText(err)
	}
	if a.TemporalScope != nil {
		ds.EML.TemporalScope = *a.TemporalScope
	}
	if a.GeographicScope != nil {
		ds.EML.GeographicScope = *a.GeographicScope
	}
	if a.TaxonomicScope != nil {
		ds.EML.TaxonomicScope = *a.TaxonomicScope
	}
	if a.Methodology != nil {
		ds.EML.Methodology = *a.Methodology
	}
	if a.Users != nil {
		ds.EML.Users = a.Users
	}
	if err = t.st.SaveDataset(ds); err != nil {
		return errText(err)
	}
	return "EML has been successfully set."
}

// completeTaskTool freezes the agent. The orchestrator starts the next
// task on the following drive.
type completeTaskTool struct {
	*deps
}

func (t *completeTaskTool) Spec() llm.ToolSpec {
	return llm.ToolSpec{
		Name:        "CompleteTask",
		Description: "Mark the current task as complete.",
		Parameters: map[string]any{
			"properties": map[string]any{},
			"required":   []string{},
		},
	}
}

func (t *completeTaskTool) Run(
	_ context.Context, ag *model.Agent, _ string,
) string {
	now := time.Now()
	ag.CompletedAt = &now
	if err := t.st.SaveAgent(ag); err != nil {
		return errText(err)
	}
	slog.Info("Task marked complete", "agent", ag.ID,
		"dataset", ag.DatasetID)
	return fmt.Sprintf("Task marked as complete for agent id %d.", ag.ID)
}
