// Package taskio loads the embedded task fixture into the store.
package taskio

import (
	_ "embed"
	"fmt"
	"log/slog"

	"github.com/gnames/dwcagent/internal/ent/store"
	"github.com/gnames/dwcagent/pkg/ent/model"
	"gopkg.in/yaml.v3"
)

//go:embed tasks.yaml
var tasksYAML []byte

type taskEntry struct {
	Name  string   `yaml:"name"`
	Text  string   `yaml:"text"`
	Tools []string `yaml:"tools"`
}

// Load upserts the fixture tasks in order. Position in the fixture
// becomes the task order; existing tasks keep their IDs so past agents
// stay linked.
func Load(st store.Store) error {
	var entries []taskEntry
	if err := yaml.Unmarshal(tasksYAML, &entries); err != nil {
		slog.Error("Cannot parse task fixture", "error", err)
		return err
	}
	for i, e := range entries {
		if e.Name == "" {
			return fmt.Errorf("task %d in fixture has no name", i+1)
		}
		t := model.Task{
			Name:  e.Name,
			Text:  e.Text,
			Order: i + 1,
			Tools: e.Tools,
		}
		if err := st.UpsertTask(&t); err != nil {
			slog.Error("Cannot upsert task", "error", err,
				"task", e.Name)
			return err
		}
	}
	slog.Info("Loaded tasks", "tasks", len(entries))
	return nil
}
