package toolio

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gnames/dwcagent/internal/ent/llm"
	"github.com/gnames/dwcagent/pkg/ent/model"
)

// buildArchiveTool assembles the Darwin Core Archive and uploads it to
// public object storage.
type buildArchiveTool struct {
	*deps
}

func (t *buildArchiveTool) Spec() llm.ToolSpec {
	return llm.ToolSpec{
		Name: "BuildArchive",
		Description: "Generate a Darwin Core Archive from the dataset " +
			"and upload it to object storage. The dataset needs a title, " +
			"a description, a core type and cleanly classified tables " +
			"first. Returns the publicly accessible archive URL.",
		Parameters: map[string]any{
			"properties": map[string]any{},
			"required":   []string{},
		},
	}
}

func (t *buildArchiveTool) Run(
	ctx context.Context, ag *model.Agent, _ string,
) string {
	url, err := t.builder.BuildArchive(ctx, ag.DatasetID)
	if err != nil {
		return errText(err)
	}
	ds, err := t.st.Dataset(ag.DatasetID)
	if err != nil {
		return errText(err)
	}
	ds.ArchiveURL = url
	if err = t.st.SaveDataset(ds); err != nil {
		return errText(err)
	}
	return fmt.Sprintf(
		"DwCA successfully created and uploaded: %s", url)
}

// publishTool registers the built archive with the aggregator.
type publishTool struct {
	*deps
}

func (t *publishTool) Spec() llm.ToolSpec {
	return llm.ToolSpec{
		Name: "Publish",
		Description: "Register an existing Darwin Core Archive " +
			"(previously uploaded with BuildArchive) with the GBIF API. " +
			"Returns the GBIF dataset URL on success.",
		Parameters: map[string]any{
			"properties": map[string]any{},
			"required":   []string{},
		},
	}
}

func (t *publishTool) Run(
	ctx context.Context, ag *model.Agent, _ string,
) string {
	ds, err := t.st.Dataset(ag.DatasetID)
	if err != nil {
		return errText(err)
	}
	if ds.ArchiveURL == "" {
		return "Error: Dataset has no archive URL. Please run " +
			"BuildArchive first."
	}
	key, err := t.registry.RegisterDataset(
		ctx, ds.Title, ds.Description,
	)
	if err != nil {
		return errText(err)
	}
	url, err := t.registry.RegisterEndpoint(ctx, key, ds.ArchiveURL)
	if err != nil {
		return errText(err)
	}
	now := time.Now()
	ds.RegistryURL = url
	ds.PublishedAt = &now
	if err = t.st.SaveDataset(ds); err != nil {
		return errText(err)
	}
	slog.Info("Published dataset", "dataset", ds.ID, "url", url)
	t.notifier.Notify(ctx, ds.ID, "published",
		fmt.Sprintf("Dataset %d published: %s", ds.ID, url))

	// Publishing before the last task ends the current one; the next
	// drive picks up the remaining tasks. On the last task the
	// conversation stays open for follow-up questions.
	final, err := t.onFinalTask(ag)
	if err != nil {
		return errText(err)
	}
	if !final {
		ag.CompletedAt = &now
		if err = t.st.SaveAgent(ag); err != nil {
			return errText(err)
		}
		slog.Info("Publish completed the current task",
			"agent", ag.ID, "dataset", ds.ID)
	}
	return fmt.Sprintf(
		"Successfully registered dataset with GBIF. URL: %s", url)
}

// onFinalTask reports whether the agent works on the last task of the
// configured sequence.
func (d *deps) onFinalTask(ag *model.Agent) (bool, error) {
	tasks, err := d.st.Tasks()
	if err != nil {
		return false, err
	}
	if len(tasks) == 0 {
		return true, nil
	}
	return tasks[len(tasks)-1].ID == ag.TaskID, nil
}

// validateArchiveTool submits the archive to the external validator and
// polls until the job ends.
type validateArchiveTool struct {
	*deps
}

func (t *validateArchiveTool) Spec() llm.ToolSpec {
	return llm.ToolSpec{
		Name: "ValidateArchive",
		Description: "Submit the dataset's archive URL to the GBIF " +
			"validator, then poll the validator until the job finishes. " +
			"This can take a long time (often >10 min). The polling " +
			"interval can be customised via poll_interval_seconds; " +
			"default is 240 seconds (4 min).",
		Parameters: map[string]any{
			"properties": map[string]any{
				"poll_interval_seconds": map[string]any{
					"type": "integer",
					"description": "Seconds to wait between polling " +
						"attempts.",
				},
			},
			"required": []string{},
		},
	}
}

type validateArchiveArgs struct {
	PollIntervalSeconds int `json:"poll_interval_seconds"`
}

// maxPolls keeps a stuck validator job from pinning the agent forever.
const maxPolls = 1000

func (t *validateArchiveTool) Run(
	ctx context.Context, ag *model.Agent, args string,
) string {
	var a validateArchiveArgs
	if args != "" {
		_ = t.decode(args, &a)
	}
	if a.PollIntervalSeconds <= 0 {
		a.PollIntervalSeconds = 240
	}

	ds, err := t.st.Dataset(ag.DatasetID)
	if err != nil {
		return errText(err)
	}
	if ds.ArchiveURL == "" {
		return "Error: No archive URL found. Run BuildArchive first."
	}

	key, err := t.checker.SubmitValidation(ctx, ds.ArchiveURL)
	if err != nil {
		return errText(err)
	}
	slog.Info("Submitted archive for validation",
		"dataset", ds.ID, "job", key)

	interval := time.Duration(a.PollIntervalSeconds) * time.Second
	var lastErr error
	for i := 0; i < maxPolls; i++ {
		select {
		case <-ctx.Done():
			return errText(ctx.Err())
		case <-time.After(interval):
		}
		job, err := t.checker.ValidationJob(ctx, key)
		if err != nil {
			lastErr = err
			continue
		}
		if job.Terminal() {
			return trunc(job.Raw)
		}
	}
	return trunc(fmt.Sprintf(
		"Validation polling stopped after many attempts. "+
			"Last error: %v", lastErr))
}
