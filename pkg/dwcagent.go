package dwcagent

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/gnames/dwcagent/internal/ent/blob"
	"github.com/gnames/dwcagent/internal/ent/ingest"
	"github.com/gnames/dwcagent/internal/ent/orch"
	"github.com/gnames/dwcagent/internal/ent/store"
	"github.com/gnames/dwcagent/internal/io/taskio"
	"github.com/gnames/dwcagent/pkg/config"
	"github.com/gnames/dwcagent/pkg/ent/model"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// dwcagent is an implementation of DwCAgent interface.
type dwcagent struct {
	cfg      config.Config
	st       store.Store
	orch     orch.Orchestrator
	ingestor ingest.Ingestor
	blob     blob.Store
}

// New creates a new instance of DwCAgent.
func New(
	cfg config.Config,
	st store.Store,
	o orch.Orchestrator,
	ing ingest.Ingestor,
	bl blob.Store,
) DwCAgent {
	res := dwcagent{
		cfg:      cfg,
		st:       st,
		orch:     o,
		ingestor: ing,
		blob:     bl,
	}
	return &res
}

func (d *dwcagent) LoadTasks() error {
	return taskio.Load(d.st)
}

func (d *dwcagent) NewDataset(
	ctx context.Context, files map[string]io.Reader,
) (*model.Dataset, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("no files given")
	}
	ds := model.Dataset{}
	if err := d.st.CreateDataset(&ds); err != nil {
		return nil, err
	}
	var first string
	for name, r := range files {
		data, err := io.ReadAll(r)
		if err != nil {
			slog.Error("Cannot read upload", "error", err, "file", name)
			return nil, err
		}
		err = d.blob.PutSource(
			ctx, ds.ID, name, bytes.NewReader(data), int64(len(data)),
		)
		if err != nil {
			return nil, err
		}
		sf := model.SourceFile{DatasetID: ds.ID, Name: name}
		if err = d.st.AddSourceFile(&sf); err != nil {
			return nil, err
		}
		_, err = d.ingestor.IngestFile(
			ctx, ds.ID, name, bytes.NewReader(data),
		)
		if err != nil {
			return nil, err
		}
		if ds.Title == "" || name < first {
			first = name
			ds.Title = defaultTitle(name)
		}
	}
	if err := d.st.SaveDataset(&ds); err != nil {
		return nil, err
	}
	slog.Info("Created dataset", "dataset", ds.ID, "files", len(files))
	return &ds, nil
}

// defaultTitle derives a working dataset title from an upload name. The
// agent replaces it during the metadata task.
func defaultTitle(name string) string {
	s := strings.TrimSuffix(name, filepath.Ext(name))
	s = strings.NewReplacer("_", " ", "-", " ", ".", " ").Replace(s)
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return "Untitled Dataset"
	}
	return cases.Title(language.English).String(s)
}

func (d *dwcagent) Process(ctx context.Context, datasetID uint) error {
	for {
		ag, err := d.orch.NextAgent(ctx, datasetID)
		if err != nil {
			return err
		}
		if ag == nil {
			slog.Info("Workflow finished", "dataset", datasetID)
			return nil
		}
		msgs, err := d.orch.NextMessage(ctx, ag.ID)
		if err != nil {
			return err
		}
		if msgs != nil {
			continue
		}
		// Nothing to drive: either the agent completed mid-dispatch or
		// it is waiting for the user.
		fresh, err := d.st.Agent(ag.ID)
		if err != nil {
			return err
		}
		if fresh.Completed() {
			continue
		}
		slog.Info("Waiting for user", "dataset", datasetID,
			"agent", ag.ID)
		return nil
	}
}

func (d *dwcagent) Reply(
	ctx context.Context, datasetID uint, text string,
) error {
	ag, err := d.orch.NextAgent(ctx, datasetID)
	if err != nil {
		return err
	}
	if ag == nil {
		return fmt.Errorf(
			"dataset %d has no active agent to reply to", datasetID)
	}
	if _, err = d.orch.AddUserMessage(ag.ID, text); err != nil {
		return err
	}
	return d.Process(ctx, datasetID)
}

func (d *dwcagent) Transcript(
	datasetID uint,
) ([]model.Message, error) {
	return d.st.DatasetMessages(datasetID)
}
