/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"log/slog"
	"os"

	"github.com/gnames/dwcagent/internal/io/archio"
	"github.com/gnames/dwcagent/internal/io/blobio"
	"github.com/gnames/dwcagent/internal/io/gbifio"
	"github.com/gnames/dwcagent/internal/io/ingestio"
	"github.com/gnames/dwcagent/internal/io/kvio"
	"github.com/gnames/dwcagent/internal/io/llmio"
	"github.com/gnames/dwcagent/internal/io/notifyio"
	"github.com/gnames/dwcagent/internal/io/orchio"
	"github.com/gnames/dwcagent/internal/io/pgio"
	"github.com/gnames/dwcagent/internal/io/sandboxio"
	"github.com/gnames/dwcagent/internal/io/toolio"
	"github.com/gnames/dwcagent/internal/io/validio"
	"github.com/gnames/dwcagent/internal/io/verifio"
	dwcagent "github.com/gnames/dwcagent/pkg"
	"github.com/gnames/dwcagent/pkg/config"
)

// wire assembles the full dependency graph behind the DwCAgent facade.
// The returned function releases held resources and must be called when
// the command is done.
func wire(cfg config.Config) (dwcagent.DwCAgent, func()) {
	st, err := pgio.New(cfg)
	if err != nil {
		slog.Error("Cannot connect to PostgreSQL", "error", err)
		os.Exit(1)
	}

	cache, err := kvio.New(cfg.MatchKVDir)
	if err != nil {
		slog.Error("Cannot create Key-Value store", "error", err)
		os.Exit(1)
	}
	if err = cache.Open(); err != nil {
		slog.Error("Cannot open Key-Value store", "error", err,
			"dir", cfg.MatchKVDir)
		os.Exit(1)
	}

	bl, err := blobio.New(cfg)
	if err != nil {
		slog.Error("Cannot connect to object storage", "error", err)
		os.Exit(1)
	}

	gb := gbifio.New(cfg)
	matcher := verifio.New(gb, cache)
	validator := validio.New(cfg, st, matcher)
	runner := sandboxio.New(st)
	builder := archio.New(cfg, st, bl)
	ingestor := ingestio.New(cfg, st)
	notifier := notifyio.New(cfg)
	completer := llmio.New(cfg)

	registry := toolio.NewRegistry(
		cfg, st, validator, runner, builder, gb, gb, bl, ingestor, notifier,
	)
	o := orchio.New(cfg, st, completer, registry)

	done := func() {
		if err := cache.Close(); err != nil {
			slog.Warn("Cannot close Key-Value store", "error", err)
		}
	}
	return dwcagent.New(cfg, st, o, ingestor, bl), done
}
