// Package toolio implements the agent tools. Every tool catches its own
// failures and reports them as conversation text, keeping the agent
// loop alive no matter what goes wrong underneath.
package toolio

import (
	"fmt"
	"log/slog"

	"github.com/gnames/dwcagent/internal/ent/archive"
	"github.com/gnames/dwcagent/internal/ent/blob"
	"github.com/gnames/dwcagent/internal/ent/gbif"
	"github.com/gnames/dwcagent/internal/ent/ingest"
	"github.com/gnames/dwcagent/internal/ent/notify"
	"github.com/gnames/dwcagent/internal/ent/sandbox"
	"github.com/gnames/dwcagent/internal/ent/store"
	"github.com/gnames/dwcagent/internal/ent/tool"
	"github.com/gnames/dwcagent/internal/ent/validate"
	"github.com/gnames/dwcagent/pkg/config"
	"github.com/gnames/gnfmt"
)

// deps carries everything the tools touch.
type deps struct {
	cfg       config.Config
	st        store.Store
	validator validate.Validator
	runner    sandbox.Runner
	builder   archive.Builder
	registry  gbif.Registry
	checker   gbif.Validator
	blob      blob.Store
	ingestor  ingest.Ingestor
	notifier  notify.Notifier
	enc       gnfmt.Encoder
}

// NewRegistry wires every tool into a closed registry.
func NewRegistry(
	cfg config.Config,
	st store.Store,
	validator validate.Validator,
	runner sandbox.Runner,
	builder archive.Builder,
	registry gbif.Registry,
	checker gbif.Validator,
	bl blob.Store,
	ingestor ingest.Ingestor,
	notifier notify.Notifier,
) tool.Registry {
	d := &deps{
		cfg:       cfg,
		st:        st,
		validator: validator,
		runner:    runner,
		builder:   builder,
		registry:  registry,
		checker:   checker,
		blob:      bl,
		ingestor:  ingestor,
		notifier:  notifier,
		enc:       gnfmt.GNjson{},
	}
	return tool.NewRegistry(
		&validateTool{d},
		&transformTool{d},
		&rollBackTool{d},
		&setBasicMetadataTool{d},
		&setEMLTool{d},
		&completeTaskTool{d},
		&buildArchiveTool{d},
		&publishTool{d},
		&validateArchiveTool{d},
		&notifyTool{d},
	)
}

// errText formats a failure for the conversation. The "Error: " prefix
// is load-bearing; agents are told to watch for it.
func errText(err error) string {
	return trunc(fmt.Sprintf("Error: %v", err))
}

func trunc(s string) string {
	if len(s) > tool.MaxResult {
		return s[:tool.MaxResult]
	}
	return s
}

// decode parses tool arguments. Tools log bad arguments but still
// answer the model in text.
func (d *deps) decode(args string, target any) error {
	err := d.enc.Decode([]byte(args), target)
	if err != nil {
		slog.Warn("Cannot decode tool arguments",
			"error", err, "args", trunc(args))
	}
	return err
}
